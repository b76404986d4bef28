package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mygcc-backend/internal/chrono"
	"mygcc-backend/internal/portal"
	"mygcc-backend/internal/telemetry"
	"mygcc-backend/internal/token"
	"mygcc-backend/lib/testutil"

	"github.com/stretchr/testify/require"
)

var (
	testCredential = token.Credential{Username: "smithjr18", Password: "hunter2"}
	testNow        = time.Date(2018, time.March, 5, 12, 0, 0, 0, time.UTC)
)

const chapelFrame = `<table id="grd"><tbody><tr>
<td>Smith, John R</td><td>2018-19</td><td>Fall Term</td><td>Chapel Credit</td>
<td>12</td><td>2</td><td>8</td><td>2</td><td>0</td>
</tr></tbody></table>`

type testEnv struct {
	handler Handler
	fake    *testutil.FakePortal
	codec   token.Codec
}

func newTestEnv(t testing.TB, opts Options) testEnv {
	fake := testutil.NewFakePortal(t, testCredential.Username, testCredential.Password)
	recorder := &telemetry.Recorder{}

	client, err := portal.NewClient(portal.Options{
		BaseUrl: fake.URL(),
		Timeout: time.Second * 5,
		Term:    portal.Term{Year: 2018, Number: "10"},
	}, recorder)
	require.NoError(t, err)
	codec, err := token.NewCodec([]byte("0123456789abcdef"), []byte("fedcba9876543210"))
	require.NoError(t, err)

	service := NewService(codec, client, chrono.FixedTime{At: testNow}, recorder, opts)
	return testEnv{handler: NewHandler(service), fake: fake, codec: codec}
}

func (e testEnv) do(t testing.TB, method, path, authorization, body string) (*httptest.ResponseRecorder, map[string]any) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	res := httptest.NewRecorder()
	e.handler.ServeHTTP(res, req)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &decoded), res.Body.String())
	return res, decoded
}

func (e testEnv) token(t testing.TB, cred token.Credential) string {
	tok, err := e.codec.Encode(cred)
	require.NoError(t, err)
	return tok
}

func TestWelcome(t *testing.T) {
	env := newTestEnv(t, Options{})
	res, body := env.do(t, http.MethodGet, "/", "", "")
	require.Equal(t, http.StatusOK, res.Code)
	require.Equal(t, WelcomeMessage, body["message"])
	require.Equal(t, float64(testNow.Unix()), body["date"])
	require.NotEmpty(t, res.Header().Get(requestIdHeader))
}

func TestMissingAuthorization(t *testing.T) {
	env := newTestEnv(t, Options{})

	for _, path := range []string{
		"/1/auth/verify",
		"/1/user/",
		"/1/user/schedule",
		"/1/user/chapel",
		"/1/user/ccash",
		"/1/user/contact",
		"/1/user/insurance",
		"/1/class/COMP141A/homework",
		"/1/class/COMP141A/files",
		"/1/class/COMP141A/collaboration",
	} {
		res, body := env.do(t, http.MethodGet, path, "", "")
		require.Equal(t, http.StatusUnauthorized, res.Code, path)
		require.NotEmpty(t, body["message"], path)
		require.Equal(t, float64(testNow.Unix()), body["date"], path)
	}
	require.Zero(t, env.fake.TotalHits())
}

func TestInvalidToken(t *testing.T) {
	env := newTestEnv(t, Options{})

	testCases := []struct {
		path string
	}{
		{path: "/1/auth/verify"},
		{path: "/1/user/chapel"},
		{path: "/1/class/COMP141A/homework"},
	}
	for _, test := range testCases {
		res, body := env.do(t, http.MethodGet, test.path, "Bearer garbage", "")
		require.Equal(t, http.StatusUnauthorized, res.Code, test.path)
		require.Equal(t, "Invalid token", body["message"], test.path)
	}
	require.Zero(t, env.fake.TotalHits())
}

func TestLogin(t *testing.T) {
	testCases := []struct {
		name         string
		cacheSession bool
	}{
		{name: "plain token"},
		{name: "token with session", cacheSession: true},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			env := newTestEnv(t, Options{CacheSession: test.cacheSession})
			res, body := env.do(t, http.MethodPost, "/1/auth", "", `{"username": "smithjr18", "password": "hunter2"}`)
			require.Equal(t, http.StatusOK, res.Code)

			payload, err := env.codec.Decode(body["token"].(string))
			require.NoError(t, err)
			require.Equal(t, testCredential, payload.Credential)
			if !test.cacheSession {
				require.Nil(t, payload.Cached)
				return
			}
			require.Equal(t, &token.CachedSession{
				SessionId:  testutil.FakeSessionId,
				AuthCookie: testutil.FakeAuthCookie,
			}, payload.Cached)
		})
	}
}

func TestLoginFailures(t *testing.T) {
	testCases := []struct {
		name     string
		body     string
		status   int
		message  string
		upstream bool
	}{
		{
			name:     "wrong password",
			body:     `{"username": "smithjr18", "password": "wrong"}`,
			status:   http.StatusUnauthorized,
			message:  "Invalid myGCC credentials",
			upstream: true,
		},
		{
			name:    "missing password",
			body:    `{"username": "smithjr18"}`,
			status:  http.StatusUnauthorized,
			message: "Invalid myGCC credentials",
		},
		{
			name:    "unencodable password",
			body:    `{"username": "smithjr18", "password": "a&#124;b"}`,
			status:  http.StatusUnauthorized,
			message: "Invalid myGCC credentials",
		},
		{
			name:    "malformed body",
			body:    `username=smithjr18`,
			status:  http.StatusBadRequest,
			message: "Malformed request body",
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			env := newTestEnv(t, Options{})
			res, body := env.do(t, http.MethodPost, "/1/auth", "", test.body)
			require.Equal(t, test.status, res.Code)
			require.Equal(t, test.message, body["message"])
			require.Equal(t, test.upstream, env.fake.TotalHits() > 0)
		})
	}
}

func TestVerify(t *testing.T) {
	env := newTestEnv(t, Options{})
	tok := env.token(t, testCredential)

	for _, header := range []string{tok, "Bearer " + tok} {
		res, body := env.do(t, http.MethodGet, "/1/auth/verify", header, "")
		require.Equal(t, http.StatusOK, res.Code)
		require.Equal(t, true, body["isValid"])
	}
	require.Zero(t, env.fake.TotalHits())
}

func TestResourceWithPlainToken(t *testing.T) {
	env := newTestEnv(t, Options{})
	env.fake.SetPage("/ICS/Student/Default_Page.jnz", `<iframe id="pg0_V_iframe" src="/ICS/Portlets/Chapel/view.aspx"></iframe>`)
	env.fake.SetPage("/ICS/Portlets/Chapel/view.aspx", chapelFrame)

	res, body := env.do(t, http.MethodGet, "/1/user/chapel", "Bearer "+env.token(t, testCredential), "")
	require.Equal(t, http.StatusOK, res.Code, body)
	require.Equal(t, map[string]any{
		"required":  float64(12),
		"makeups":   float64(2),
		"attended":  float64(8),
		"remaining": float64(2),
		"special":   float64(0),
	}, body)
	require.Equal(t, 1, env.fake.Hits("POST /ICS/"))
}

func TestResourceWithSessionToken(t *testing.T) {
	env := newTestEnv(t, Options{})
	env.fake.SetPage("/ICS/Student/Default_Page.jnz", `<iframe id="pg0_V_iframe" src="/ICS/Portlets/Chapel/view.aspx"></iframe>`)
	env.fake.SetPage("/ICS/Portlets/Chapel/view.aspx", chapelFrame)

	tok, err := env.codec.EncodeSession(testCredential, token.CachedSession{
		SessionId:  testutil.FakeSessionId,
		AuthCookie: testutil.FakeAuthCookie,
	})
	require.NoError(t, err)

	res, body := env.do(t, http.MethodGet, "/1/user/chapel", tok, "")
	require.Equal(t, http.StatusOK, res.Code, body)
	require.Equal(t, float64(8), body["attended"])
	require.Zero(t, env.fake.Hits("GET /ICS/"))
	require.Zero(t, env.fake.Hits("POST /ICS/"))
}

func TestResourceErrors(t *testing.T) {
	testCases := []struct {
		name    string
		path    string
		setup   func(fake *testutil.FakePortal)
		status  int
		message string
	}{
		{
			name: "student not in class",
			path: "/1/class/COMP141A/homework",
			setup: func(fake *testutil.FakePortal) {
				fake.SetPage(
					"/ICS/Academics/COMP/COMP_141/2018_10-COMP_141-A/Coursework.jnz",
					`<div class="notFound">You do not have permissions to view this page.</div>`,
				)
			},
			status:  http.StatusForbidden,
			message: "Student not enrolled in class",
		},
		{
			name:    "malformed course code",
			path:    "/1/class/COMP/files",
			setup:   func(*testutil.FakePortal) {},
			status:  http.StatusNotFound,
			message: "Class does not exist",
		},
		{
			name: "expired session",
			path: "/1/user/ccash",
			setup: func(fake *testutil.FakePortal) {
				fake.SetPage("/ICS/Financial_Info/Default_Page.jnz", `<iframe id="pg0_V_iframe"></iframe>`)
			},
			status:  http.StatusBadRequest,
			message: "Session expired",
		},
		{
			name: "record not found",
			path: "/1/user/insurance",
			setup: func(fake *testutil.FakePortal) {
				fake.SetPage("/html5/apps/fin/models/JSON.ashx", "null")
			},
			status:  http.StatusBadGateway,
			message: "Unexpected response from myGCC",
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			env := newTestEnv(t, Options{})
			test.setup(env.fake)

			res, body := env.do(t, http.MethodGet, test.path, env.token(t, testCredential), "")
			require.Equal(t, test.status, res.Code)
			require.Equal(t, test.message, body["message"])
			require.Equal(t, float64(testNow.Unix()), body["date"])
		})
	}
}

func TestResourceListsAreWrapped(t *testing.T) {
	env := newTestEnv(t, Options{})
	env.fake.SetPage("/ICS/Academics/Home.jnz", `<table><tbody class="gbody"></tbody></table>`)

	res, body := env.do(t, http.MethodGet, "/1/user/schedule", env.token(t, testCredential), "")
	require.Equal(t, http.StatusOK, res.Code)
	require.Equal(t, map[string]any{"data": []any{}}, body)
}

func TestResourceWithExpiredSessionToken(t *testing.T) {
	env := newTestEnv(t, Options{})
	env.fake.SetPage("/ICS/Academics/Home.jnz", `<table><tbody class="gbody"></tbody></table>`)

	tok, err := env.codec.EncodeSession(testCredential, token.CachedSession{
		SessionId:  testutil.FakeSessionId,
		AuthCookie: "EXPIRED",
	})
	require.NoError(t, err)

	for _, path := range []string{"/1/user/schedule", "/1/class/COMP141A/homework", "/1/user/contact"} {
		res, body := env.do(t, http.MethodGet, path, tok, "")
		require.Equal(t, http.StatusBadRequest, res.Code, path)
		require.Equal(t, "Session expired", body["message"], path)
	}
	require.Zero(t, env.fake.Hits("POST /ICS/"))
}
