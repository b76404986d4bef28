package portal

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"mygcc-backend/internal/failure"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

// Page is a fetched portal page.
type Page struct {
	// Url is the url the page was finally served from, after redirects.
	Url      *url.URL
	Body     []byte
	Document *goquery.Document
}

func (s *Session) resolve(ref string) (*url.URL, error) {
	target, err := s.client.Resolve(ref)
	if err != nil {
		return nil, failure.WithKind(failure.KindUnexpectedResponse, fmt.Sprintf("bad url '%s'", ref), err)
	}
	return target, nil
}

func finalUrl(res *resty.Response, fallback *url.URL) *url.URL {
	if res.RawResponse != nil && res.RawResponse.Request != nil && res.RawResponse.Request.URL != nil {
		return res.RawResponse.Request.URL
	}
	return fallback
}

func (s *Session) get(ctx context.Context, report string, target *url.URL) (*resty.Response, error) {
	res, err := s.client.Http.R().
		SetContext(ctx).
		SetHeader("Cookie", s.cookieHeader()).
		Get(target.String())
	if err != nil {
		s.client.tel.ReportBroken(report, fmt.Errorf("fetch: %w", err), target.String())
		return nil, failure.WithKind(failure.KindNetworkError, "fetch "+target.Path, err)
	}
	if res.StatusCode() >= http.StatusInternalServerError {
		s.client.tel.ReportBroken(report, fmt.Errorf("fetch: status %d", res.StatusCode()), target.String())
		return nil, failure.Newf(failure.KindUnexpectedResponse, "fetch %s: status %d", target.Path, res.StatusCode())
	}
	return res, nil
}

func newPage(u *url.URL, body []byte) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, failure.WithKind(failure.KindUnexpectedResponse, "parse page", err)
	}
	return &Page{Url: u, Body: body, Document: doc}, nil
}

// Fetch performs an authenticated GET, logging in first if needed. `ref`
// may be absolute or relative to the portal base url.
func (s *Session) Fetch(ctx context.Context, ref string) (*Page, error) {
	err := s.Create(ctx)
	if err != nil {
		return nil, err
	}
	target, err := s.resolve(ref)
	if err != nil {
		return nil, err
	}
	s.client.tel.ReportDebug(report_session_fetch, target.String())

	res, err := s.get(ctx, report_session_fetch, target)
	if err != nil {
		return nil, err
	}
	page, err := newPage(finalUrl(res, target), res.Body())
	if err != nil {
		s.client.tel.ReportBroken(report_session_fetch, err, target.String())
		return nil, err
	}
	if s.authCookie != "" && loggedOut(page.Document) {
		return nil, s.expired(report_session_fetch, target)
	}
	return page, nil
}

func (s *Session) expired(report string, target *url.URL) error {
	s.client.tel.ReportWarning(report, fmt.Errorf("served the login page"), target.Path)
	return failure.Newf(failure.KindExpiredSession, "%s: served the login page", target.Path)
}

// FetchJSON performs an authenticated GET against one of the portal's json
// endpoints. A literal `null` body means the record does not exist.
func (s *Session) FetchJSON(ctx context.Context, ref string) ([]byte, error) {
	err := s.Create(ctx)
	if err != nil {
		return nil, err
	}
	target, err := s.resolve(ref)
	if err != nil {
		return nil, err
	}
	s.client.tel.ReportDebug(report_session_fetch, target.String())

	res, err := s.get(ctx, report_session_fetch, target)
	if err != nil {
		return nil, err
	}
	body := bytes.TrimSpace(res.Body())
	if bytes.HasPrefix(body, []byte("<")) {
		page, err := newPage(target, body)
		if err == nil && loggedOut(page.Document) {
			return nil, s.expired(report_session_fetch, target)
		}
		s.client.tel.ReportBroken(report_session_fetch, fmt.Errorf("expected json, got markup"), target.Path)
		return nil, failure.Newf(failure.KindUnexpectedResponse, "%s: expected json, got markup", target.Path)
	}
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		s.client.tel.ReportWarning(report_session_fetch, fmt.Errorf("record not found"), target.Path)
		return nil, failure.Newf(failure.KindUnexpectedResponse, "%s: record not found", target.Path)
	}
	return body, nil
}

// Navigate performs an ASP.NET postback against the page at `ref`, carrying
// the current page state and replacing it with the state in the response.
// When the session holds no page state yet, the page is fetched first.
func (s *Session) Navigate(ctx context.Context, ref, eventTarget, eventArgument string, extra []Field) (*Page, error) {
	err := s.Create(ctx)
	if err != nil {
		return nil, err
	}
	target, err := s.resolve(ref)
	if err != nil {
		return nil, err
	}

	if s.viewState == "" {
		page, err := s.Fetch(ctx, target.String())
		if err != nil {
			return nil, err
		}
		if !s.syncPageState(page.Body) {
			s.client.tel.ReportBroken(report_session_navigate, fmt.Errorf("no page state on %s", target.Path))
			return nil, failure.Newf(failure.KindUnexpectedResponse, "no page state on %s", target.Path)
		}
	}

	s.client.tel.ReportDebug(report_session_navigate, target.String(), eventTarget)

	fields := postbackFields(eventTarget, eventArgument, s.viewState, s.browserRefresh, extra)
	res, err := s.client.Http.R().
		SetContext(ctx).
		SetHeader("Cookie", s.cookieHeader()).
		SetHeader("Content-Type", multipartContentType+s.boundary).
		SetBody(encodeForm(s.boundary, fields)).
		Post(target.String())
	if err != nil {
		s.client.tel.ReportBroken(report_session_navigate, fmt.Errorf("postback: %w", err), target.String())
		return nil, failure.WithKind(failure.KindNetworkError, "postback "+target.Path, err)
	}
	if res.StatusCode() >= http.StatusBadRequest {
		s.client.tel.ReportBroken(report_session_navigate, fmt.Errorf("postback: status %d", res.StatusCode()), target.String())
		return nil, failure.Newf(failure.KindUnexpectedResponse, "postback %s: status %d", target.Path, res.StatusCode())
	}

	body := res.Body()
	markup := body
	if deltas, ok := parseDelta(body); ok {
		markup = []byte(deltaMarkup(deltas))
	}
	page, err := newPage(finalUrl(res, target), markup)
	if err != nil {
		return nil, err
	}
	if loggedOut(page.Document) {
		return nil, s.expired(report_session_navigate, target)
	}

	if !s.syncPageState(body) {
		s.client.tel.ReportBroken(report_session_navigate, fmt.Errorf("postback response carried no page state"), target.String())
		return nil, failure.Newf(failure.KindUnexpectedResponse, "postback %s: response carried no page state", target.Path)
	}
	s.state = StatePageStateSynced
	return page, nil
}

// syncPageState stores the view state and browser refresh values found in
// a full page or a partial postback response. It reports whether a view
// state was found.
func (s *Session) syncPageState(body []byte) bool {
	var viewState, browserRefresh string
	var found bool

	if deltas, ok := parseDelta(body); ok {
		for _, d := range deltas {
			if d.Type != "hiddenField" {
				continue
			}
			switch d.Id {
			case fieldViewState:
				viewState, found = d.Content, true
			case fieldBrowserRefresh:
				browserRefresh = d.Content
			}
		}
	} else {
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
		if err != nil {
			return false
		}
		viewState, found = doc.Find("input[name=__VIEWSTATE]").Attr("value")
		browserRefresh = doc.Find("input[name=___BrowserRefresh]").AttrOr("value", "")
	}

	if !found || viewState == "" {
		return false
	}
	s.viewState = viewState
	s.browserRefresh = browserRefresh
	return true
}

// delta is one entry of an ASP.NET AJAX partial postback response, which is
// a sequence of `length|type|id|content|` records.
type delta struct {
	Type    string
	Id      string
	Content string
}

func parseDelta(body []byte) ([]delta, bool) {
	text := []rune(strings.TrimRight(string(body), " \t\r\n"))
	if len(text) == 0 || text[0] < '0' || text[0] > '9' {
		return nil, false
	}

	readField := func(pos int) (string, int, bool) {
		for i := pos; i < len(text); i++ {
			if text[i] == '|' {
				return string(text[pos:i]), i + 1, true
			}
		}
		return "", pos, false
	}

	var out []delta
	pos := 0
	for pos < len(text) {
		lengthStr, next, ok := readField(pos)
		if !ok {
			return nil, false
		}
		length, err := strconv.Atoi(strings.TrimSpace(lengthStr))
		if err != nil || length < 0 {
			return nil, false
		}
		typ, next, ok := readField(next)
		if !ok {
			return nil, false
		}
		id, next, ok := readField(next)
		if !ok {
			return nil, false
		}
		end := next + length
		if end >= len(text) || text[end] != '|' {
			return nil, false
		}
		out = append(out, delta{Type: typ, Id: id, Content: string(text[next:end])})
		pos = end + 1
	}
	return out, len(out) > 0
}

// deltaMarkup joins the markup of every updated panel in a partial
// postback, wrapping each in a div carrying the panel's id.
func deltaMarkup(deltas []delta) string {
	var out strings.Builder
	out.WriteString("<html><body>")
	for _, d := range deltas {
		if d.Type != "updatePanel" {
			continue
		}
		fmt.Fprintf(&out, `<div id="%s">%s</div>`, html.EscapeString(d.Id), d.Content)
	}
	out.WriteString("</body></html>")
	return out.String()
}
