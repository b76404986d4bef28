package portal

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"mygcc-backend/internal/failure"
	"mygcc-backend/internal/token"
	"mygcc-backend/lib/htmlutil"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type State int

const (
	StateUnstarted State = iota
	StateSessionIdAcquired
	StateAuthenticated
	StatePageStateSynced
)

func (s State) String() string {
	switch s {
	case StateSessionIdAcquired:
		return "session_id_acquired"
	case StateAuthenticated:
		return "authenticated"
	case StatePageStateSynced:
		return "page_state_synced"
	default:
		return "unstarted"
	}
}

const (
	sessionIdMarker  = "ASP.NET_SessionId="
	authCookieMarker = ".ASPXAUTH="
	cookieEnd        = ";"
	expectedCookies  = 2
)

// Session is the handshake state of one user against the portal. It is
// created per request and must not be shared between goroutines.
type Session struct {
	client *Client
	cred   token.Credential
	state  State

	sessionId      string
	authCookie     string
	viewState      string
	browserRefresh string
	boundary       string
}

func (s *Session) State() State {
	return s.state
}

func (s *Session) Credential() token.Credential {
	return s.cred
}

func (s *Session) Client() *Client {
	return s.client
}

// Cached returns the cookies that let a later request resume this session.
func (s *Session) Cached() token.CachedSession {
	return token.CachedSession{
		SessionId:  s.sessionId,
		AuthCookie: s.authCookie,
	}
}

func (s *Session) cookieHeader() string {
	if s.authCookie == "" {
		return fmt.Sprintf("%s%s;", sessionIdMarker, s.sessionId)
	}
	return fmt.Sprintf("%s%s; %s%s", sessionIdMarker, s.sessionId, authCookieMarker, s.authCookie)
}

func findCookie(setCookies []string, marker string) (string, bool) {
	for _, c := range setCookies {
		value, ok := htmlutil.SubstringBetween(c, marker, cookieEnd)
		if ok {
			return value, true
		}
		// a cookie without attributes has no trailing semicolon
		value, ok = htmlutil.SubstringBetween(c, marker, "")
		if ok && value != "" {
			return strings.TrimSpace(value), true
		}
	}
	return "", false
}

// Create performs the login handshake. It is a no-op for sessions that are
// already authenticated, including ones resumed from a token.
func (s *Session) Create(ctx context.Context) (err error) {
	if s.authCookie != "" {
		return nil
	}

	ctx, span := tracer.Start(ctx, "Session.Create")
	defer span.End()
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, failure.KindOf(err).String())
		}
		span.SetAttributes(attribute.String("state", s.state.String()))
	}()

	err = s.requestSessionId(ctx)
	if err != nil {
		return err
	}
	return s.authenticate(ctx)
}

func (s *Session) requestSessionId(ctx context.Context) error {
	res, err := s.client.Http.R().
		SetContext(ctx).
		Get(LoginPath)
	if err != nil {
		s.client.tel.ReportBroken(
			report_session_create,
			fmt.Errorf("get login page: %w", err),
		)
		return failure.WithKind(failure.KindNetworkError, "get login page", err)
	}

	setCookies := res.Header().Values("Set-Cookie")
	if len(setCookies) != expectedCookies {
		s.client.tel.ReportBroken(
			report_session_create,
			fmt.Errorf("expected %d cookies on login page, got %d", expectedCookies, len(setCookies)),
			res.StatusCode(),
		)
		return failure.Newf(
			failure.KindNetworkError,
			"expected %d cookies on login page, got %d", expectedCookies, len(setCookies),
		)
	}

	sessionId, ok := findCookie(setCookies, sessionIdMarker)
	if !ok || sessionId == "" {
		s.client.tel.ReportBroken(
			report_session_create,
			fmt.Errorf("session id cookie not found"),
		)
		return failure.New(failure.KindUnexpectedResponse, "session id cookie not found")
	}

	s.sessionId = sessionId
	s.state = StateSessionIdAcquired
	return nil
}

func (s *Session) authenticate(ctx context.Context) error {
	res, err := s.client.Http.R().
		SetContext(ctx).
		SetHeader("Cookie", s.cookieHeader()).
		SetHeader("Content-Type", multipartContentType+s.boundary).
		SetBody(encodeForm(s.boundary, loginFields(s.cred.Username, s.cred.Password))).
		Post(LoginPath)
	if err != nil {
		s.client.tel.ReportBroken(
			report_session_create,
			fmt.Errorf("post login form: %w", err),
		)
		return failure.WithKind(failure.KindNetworkError, "post login form", err)
	}

	setCookies := res.Header().Values("Set-Cookie")
	if len(setCookies) != expectedCookies {
		s.client.tel.ReportWarning(
			report_session_create,
			fmt.Errorf("login rejected, got %d cookies", len(setCookies)),
		)
		return failure.Newf(
			failure.KindInvalidCredentials,
			"expected %d cookies after login, got %d", expectedCookies, len(setCookies),
		)
	}

	authCookie, ok := findCookie(setCookies, authCookieMarker)
	if !ok || authCookie == "" {
		s.client.tel.ReportBroken(
			report_session_create,
			fmt.Errorf("auth cookie not found"),
		)
		return failure.New(failure.KindUnexpectedResponse, "auth cookie not found")
	}
	s.authCookie = authCookie
	s.state = StateAuthenticated

	body := res.Body()
	location := res.Header().Get("Location")
	if isRedirect(res) && location != "" {
		page, err := s.Fetch(ctx, location)
		if err != nil {
			s.authCookie = ""
			s.state = StateSessionIdAcquired
			return err
		}
		body = page.Body
	}
	s.syncPageState(body)

	return nil
}

func isRedirect(res *resty.Response) bool {
	code := res.StatusCode()
	return code >= http.StatusMultipleChoices && code < http.StatusBadRequest
}
