package testutil

import (
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

const (
	FakeSessionId      = "fakesessionid0123"
	FakeAuthCookie     = "FAKEAUTHCOOKIE4567"
	FakeLoginViewState = "vs-after-login"
	FakeLoginRefresh   = "br-after-login"
)

// FormField is a submitted multipart field, in submission order.
type FormField struct {
	Name  string
	Value string
}

// Postback answers a postback made to a page with the submitted fields.
type Postback func(fields []FormField) string

// FakePortal is an in-memory stand-in for the portal's login handshake and
// pages, it counts every request made to it.
type FakePortal struct {
	Server *httptest.Server

	Username string
	Password string
	// LoginPageCookies is the number of cookies the login page sets, the
	// real portal sets two.
	LoginPageCookies int
	// RedirectAfterLogin makes a successful login answer with a redirect to
	// this path instead of a page.
	RedirectAfterLogin string

	mutex      sync.Mutex
	pages      map[string]string
	postbacks  map[string]Postback
	hits       map[string]int
	loginForms [][]FormField
	cookies    []string
}

func NewFakePortal(t testing.TB, username, password string) *FakePortal {
	p := &FakePortal{
		Username:         username,
		Password:         password,
		LoginPageCookies: 2,
		pages:            map[string]string{},
		postbacks:        map[string]Postback{},
		hits:             map[string]int{},
	}
	p.Server = httptest.NewServer(http.HandlerFunc(p.serve))
	t.Cleanup(p.Server.Close)
	return p
}

func (p *FakePortal) URL() string {
	return p.Server.URL
}

// SetPage serves body to authenticated GETs of uri, which is a path with an
// optional query.
func (p *FakePortal) SetPage(uri, body string) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.pages[uri] = body
}

func (p *FakePortal) SetPostback(path string, handler Postback) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.postbacks[path] = handler
}

// Hits returns the number of requests for a "METHOD /path" key.
func (p *FakePortal) Hits(key string) int {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.hits[key]
}

func (p *FakePortal) TotalHits() int {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	total := 0
	for _, n := range p.hits {
		total += n
	}
	return total
}

// LoginForms returns every login form submitted so far.
func (p *FakePortal) LoginForms() [][]FormField {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return append([][]FormField{}, p.loginForms...)
}

// Cookies returns the Cookie header of every request, in order.
func (p *FakePortal) Cookies() []string {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return append([]string{}, p.cookies...)
}

func readForm(r *http.Request) ([]FormField, error) {
	_, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return nil, err
	}
	reader := multipart.NewReader(r.Body, params["boundary"])

	var fields []FormField
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			return fields, nil
		}
		if err != nil {
			return nil, err
		}
		value, err := io.ReadAll(part)
		if err != nil {
			return nil, err
		}
		fields = append(fields, FormField{Name: part.FormName(), Value: string(value)})
	}
}

func FieldValue(fields []FormField, name string) string {
	for _, f := range fields {
		if f.Name == name {
			return f.Value
		}
	}
	return ""
}

func HiddenStatePage(viewState, browserRefresh, body string) string {
	return fmt.Sprintf(`<html><body><form id="MAINFORM">
<input type="hidden" name="__VIEWSTATE" id="__VIEWSTATE" value="%s" />
<input type="hidden" name="___BrowserRefresh" id="___BrowserRefresh" value="%s" />
%s
</form></body></html>`, viewState, browserRefresh, body)
}

func (p *FakePortal) authenticated(r *http.Request) bool {
	cookie := r.Header.Get("Cookie")
	return strings.Contains(cookie, "ASP.NET_SessionId="+FakeSessionId) &&
		strings.Contains(cookie, ".ASPXAUTH="+FakeAuthCookie)
}

func (p *FakePortal) serve(w http.ResponseWriter, r *http.Request) {
	p.mutex.Lock()
	p.hits[fmt.Sprintf("%s %s", r.Method, r.URL.Path)]++
	p.cookies = append(p.cookies, r.Header.Get("Cookie"))
	p.mutex.Unlock()

	if r.URL.Path == "/ICS/" && r.URL.RawQuery == "" {
		switch r.Method {
		case http.MethodGet:
			p.serveLoginPage(w)
		case http.MethodPost:
			p.serveLogin(w, r)
		}
		return
	}

	if !p.authenticated(r) {
		w.Header().Add("Set-Cookie", "ASP.NET_SessionId="+FakeSessionId+"; path=/; HttpOnly")
		fmt.Fprint(w, HiddenStatePage("vs-anonymous", "br-anonymous", `<div id="loginForm"><input name="userName" /><input name="password" type="password" /></div>`))
		return
	}

	if r.Method == http.MethodPost {
		fields, err := readForm(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		p.mutex.Lock()
		handler, ok := p.postbacks[r.URL.Path]
		p.mutex.Unlock()
		if !ok {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, handler(fields))
		return
	}

	p.mutex.Lock()
	body, ok := p.pages[r.URL.RequestURI()]
	if !ok {
		body, ok = p.pages[r.URL.Path]
	}
	p.mutex.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	fmt.Fprint(w, body)
}

func (p *FakePortal) serveLoginPage(w http.ResponseWriter) {
	cookies := []string{
		"BIGipServerpool_my.gcc.edu=1234.5678.0000; path=/; Httponly; Secure",
		"ASP.NET_SessionId=" + FakeSessionId + "; path=/; HttpOnly",
	}
	for i := 0; i < p.LoginPageCookies; i++ {
		w.Header().Add("Set-Cookie", cookies[i%len(cookies)])
	}
	fmt.Fprint(w, HiddenStatePage("vs-login-page", "br-login-page", `<input name="userName" />`))
}

func (p *FakePortal) serveLogin(w http.ResponseWriter, r *http.Request) {
	fields, err := readForm(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	p.mutex.Lock()
	p.loginForms = append(p.loginForms, fields)
	p.mutex.Unlock()

	validSession := strings.Contains(r.Header.Get("Cookie"), "ASP.NET_SessionId="+FakeSessionId)
	if !validSession || FieldValue(fields, "userName") != p.Username || FieldValue(fields, "password") != p.Password {
		w.Header().Add("Set-Cookie", "heartbeat=1; path=/")
		fmt.Fprint(w, HiddenStatePage("vs-login-failed", "br-login-failed", `<div class="ValidationError">Invalid login</div>`))
		return
	}

	w.Header().Add("Set-Cookie", ".ASPXAUTH="+FakeAuthCookie+"; path=/; HttpOnly")
	w.Header().Add("Set-Cookie", "heartbeat=1; path=/")
	if p.RedirectAfterLogin != "" {
		w.Header().Set("Location", p.RedirectAfterLogin)
		w.WriteHeader(http.StatusFound)
		return
	}
	fmt.Fprint(w, HiddenStatePage(FakeLoginViewState, FakeLoginRefresh, `<div id="welcome">Welcome back</div>`))
}
