package telemetry

import (
	"fmt"
)

// API is an abstraction over logging/metrics.
// This allows for assertions and tests for working logging/metrics to exist.
//
// note: fault injection point
type API interface {
	// ReportBroken reports a component that has broken in a way that should be addressed.
	//
	// The `id` is an identifier that should indicate what **component** broke, not what specific
	// piece of the component's implementation broke. Picture coming across the report in a
	// production dashboard: the id alone should tell you where to look.
	//
	// ex. Suppose the chapel iframe of the portal stops carrying a source in the `Chapel` method
	// of the extractor. The id should be `chapel` (scoped as `extract: chapel`), no more granular
	// than that. If you need to say that it was the iframe that failed, add a param or wrap the
	// error with fmt.Errorf.
	//
	// The `report_...` string constants in each package are the ids in use.
	//
	// Formatting rules:
	// 1) all lowercase
	// 2) use underscores for large components
	// 3) use dashes for methods part of a larger component
	//
	// Note 1: The package does not belong in the id, ScopedAPI already attaches it, so
	// `<struct or intf>.<method>` (ex. `session.create`) is usually all that is needed.
	//
	// Note 2: An id only locates something. Whether it broke is already said by calling
	// ReportBroken instead of ReportWarning, so `session.broken-login` should just be
	// `session.create`.
	ReportBroken(id string, params ...any)

	// ReportWarning reports a scenario that does not necessarily indicate brokenness but may be
	// subject to investigation, like the portal rejecting a user's password or serving the login
	// page to an expired session.
	//
	// For what value to provide as `id` refer to ReportBroken.
	ReportWarning(id string, params ...any)

	// ReportDebug reports debug information that is ignored in production.
	ReportDebug(msg string, params ...any)

	// ReportCount reports the current count of a specific event at the current time, these
	// counts should not be summed but interpreted as points of data over time.
	//
	// For what value to provide as `id` refer to ReportBroken.
	ReportCount(id string, count int64)
}

// ScopedAPI attaches a namespace to every id reported through it, kind of
// like a sub logger.
type ScopedAPI struct {
	namespace string
	inner     API
}

func NewScopedAPI(namespace string, inner API) ScopedAPI {
	return ScopedAPI{namespace: namespace, inner: inner}
}

func (s ScopedAPI) ReportBroken(id string, params ...any) {
	s.inner.ReportBroken(fmt.Sprintf("%s: %s", s.namespace, id), params...)
}

func (s ScopedAPI) ReportWarning(id string, params ...any) {
	s.inner.ReportWarning(fmt.Sprintf("%s: %s", s.namespace, id), params...)
}

func (s ScopedAPI) ReportDebug(msg string, params ...any) {
	s.inner.ReportDebug(fmt.Sprintf("%s: %s", s.namespace, msg), params...)
}

func (s ScopedAPI) ReportCount(id string, count int64) {
	s.inner.ReportCount(fmt.Sprintf("%s: %s", s.namespace, id), count)
}
