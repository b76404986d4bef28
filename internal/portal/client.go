// Package portal emulates a browser against the myGCC portal: the login
// handshake, authenticated page fetches and ASP.NET postback navigation.
package portal

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mygcc-backend/internal/assert"
	"mygcc-backend/internal/telemetry"
	"mygcc-backend/internal/token"
	"mygcc-backend/lib/restyutil"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("mygcc.portal")

const (
	LoginPath = "/ICS/"
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"
)

const (
	report_session_create   = "session.create"
	report_session_fetch    = "session.fetch"
	report_session_navigate = "session.navigate"
)

// Term identifies the academic term course urls are built for.
type Term struct {
	Year int
	// Number is the portal's term code, ex. "10".
	Number string
}

type Options struct {
	BaseUrl string
	Timeout time.Duration
	Term    Term
	// Output receives a dump of every http message, it may be nil.
	Output restyutil.InstrumentOutput
}

// Client holds everything that can be shared between users. It carries no
// cookies, each Session attaches its own.
type Client struct {
	BaseUrl *url.URL
	Http    *resty.Client
	Term    Term

	tel telemetry.API
}

func NewClient(opts Options, tel telemetry.API) (*Client, error) {
	assert.NotNil("tel", tel)
	assert.NotEmptyStr("base url", opts.BaseUrl)

	tel = telemetry.NewScopedAPI("portal", tel)

	baseUrl, err := url.Parse(strings.TrimSuffix(opts.BaseUrl, "/"))
	if err != nil {
		return nil, fmt.Errorf("portal: parse base url: %w", err)
	}
	if baseUrl.Scheme == "" || baseUrl.Host == "" {
		return nil, fmt.Errorf("portal: base url '%s' must be absolute", opts.BaseUrl)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = time.Second * 30
	}

	httpClient := resty.New()
	httpClient.SetBaseURL(baseUrl.String())
	httpClient.SetCookieJar(nil)
	httpClient.SetTransport(cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport))
	httpClient.SetHeader("user-agent", userAgent)
	httpClient.SetRedirectPolicy(redirectPolicy(baseUrl.Hostname()))
	httpClient.SetTimeout(opts.Timeout)

	telemetry.InstrumentResty(httpClient, tel)
	restyutil.InstrumentClient(httpClient, tracer, opts.Output)

	return &Client{
		BaseUrl: baseUrl,
		Http:    httpClient,
		Term:    opts.Term,
		tel:     tel,
	}, nil
}

// redirectPolicy follows same-host redirects for page fetches but never for
// form posts, the login response's own cookies are what matter.
func redirectPolicy(hostname string) resty.RedirectPolicy {
	domainCheck := resty.DomainCheckRedirectPolicy(hostname)
	limit := resty.FlexibleRedirectPolicy(10)
	return resty.RedirectPolicyFunc(func(req *http.Request, via []*http.Request) error {
		if len(via) > 0 && via[0].Method == http.MethodPost {
			return http.ErrUseLastResponse
		}
		err := limit.Apply(req, via)
		if err != nil {
			return err
		}
		return domainCheck.Apply(req, via)
	})
}

// Resolve turns a portal relative path into an absolute url.
func (c *Client) Resolve(ref string) (*url.URL, error) {
	parsed, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return nil, err
	}
	return c.BaseUrl.ResolveReference(parsed), nil
}

func (c *Client) NewSession(cred token.Credential) *Session {
	return &Session{
		client:   c,
		cred:     cred,
		boundary: newBoundary(),
		state:    StateUnstarted,
	}
}

// ResumeSession restores a session whose cookies were carried by a token,
// it starts out authenticated.
func (c *Client) ResumeSession(cred token.Credential, cached token.CachedSession) *Session {
	s := c.NewSession(cred)
	s.sessionId = cached.SessionId
	s.authCookie = cached.AuthCookie
	s.state = StateAuthenticated
	return s
}
