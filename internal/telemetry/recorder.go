package telemetry

import (
	"strings"
	"sync"
)

type Report struct {
	Id     string
	Params []any
}

// Recorder is an API that keeps everything reported to it, it is meant for
// asserting on reports in tests.
type Recorder struct {
	mutex    sync.Mutex
	Broken   []Report
	Warnings []Report
	Counts   map[string]int64
}

func (r *Recorder) ReportBroken(id string, params ...any) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.Broken = append(r.Broken, Report{Id: id, Params: params})
}

func (r *Recorder) ReportWarning(id string, params ...any) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.Warnings = append(r.Warnings, Report{Id: id, Params: params})
}

func (r *Recorder) ReportDebug(string, ...any) {}

func (r *Recorder) ReportCount(id string, count int64) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.Counts == nil {
		r.Counts = map[string]int64{}
	}
	r.Counts[id] = count
}

// BrokenWithPrefix returns the broken reports whose id starts with prefix.
func (r *Recorder) BrokenWithPrefix(prefix string) []Report {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	var out []Report
	for _, report := range r.Broken {
		if strings.HasPrefix(report.Id, prefix) {
			out = append(out, report)
		}
	}
	return out
}
