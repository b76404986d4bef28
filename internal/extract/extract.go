// Package extract turns portal pages into typed records, one extractor per
// resource. Parsing is kept apart from fetching so each parser can run
// against saved pages.
package extract

import (
	"context"
	"fmt"

	"mygcc-backend/internal/assert"
	"mygcc-backend/internal/failure"
	"mygcc-backend/internal/portal"
	"mygcc-backend/internal/telemetry"
)

const (
	report_extract_schedule      = "schedule"
	report_extract_homework      = "homework"
	report_extract_chapel        = "chapel"
	report_extract_crimson_cash  = "crimson-cash"
	report_extract_contact       = "contact"
	report_extract_insurance     = "insurance"
	report_extract_biography     = "biography"
	report_extract_files         = "files"
	report_extract_collaboration = "collaboration"
)

// Extractor reads resources on behalf of the user a session belongs to.
type Extractor struct {
	session *portal.Session
	tel     telemetry.API
}

func New(session *portal.Session, tel telemetry.API) Extractor {
	assert.NotNil("session", session)
	assert.NotNil("tel", tel)
	return Extractor{
		session: session,
		tel:     telemetry.NewScopedAPI("extract", tel),
	}
}

func (e Extractor) Session() *portal.Session {
	return e.session
}

// report files broken markup under `id`, failures that are about the user
// (a wrong class, an expired session) are only warnings.
func (e Extractor) report(id string, err error, params ...any) {
	switch failure.KindOf(err) {
	case failure.KindUnexpectedResponse, failure.KindNetworkError:
		e.tel.ReportBroken(id, append([]any{err}, params...)...)
	default:
		e.tel.ReportWarning(id, append([]any{err}, params...)...)
	}
}

// coursePage fetches one of a course's pages and checks the user may see it.
func (e Extractor) coursePage(ctx context.Context, report, path string) (*portal.Page, error) {
	page, err := e.session.Fetch(ctx, path)
	if err != nil {
		e.report(report, err, path)
		return nil, err
	}
	err = portal.CheckEnrollment(page.Document, notFoundSelector)
	if err != nil {
		e.report(report, err, path)
		return nil, err
	}
	return page, nil
}

// framePage fetches a page that only hosts an iframe, then the iframe's
// document.
func (e Extractor) framePage(ctx context.Context, report, path, frame string) (*portal.Page, error) {
	host, err := e.session.Fetch(ctx, path)
	if err != nil {
		e.report(report, err, path)
		return nil, err
	}
	src, err := portal.FrameSource(host, frame)
	if err != nil {
		e.report(report, err, path)
		return nil, err
	}
	page, err := e.session.Fetch(ctx, src)
	if err != nil {
		e.report(report, fmt.Errorf("fetch iframe: %w", err), src)
		return nil, err
	}
	return page, nil
}
