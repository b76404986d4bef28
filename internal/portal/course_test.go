package portal

import (
	"net/url"
	"strings"
	"testing"

	"mygcc-backend/internal/failure"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func TestCourseURL(t *testing.T) {
	client, _ := newTestClient(t, "https://my.gcc.edu")

	testCases := []struct {
		code     string
		expected string
	}{
		{code: "COMP141A", expected: "/ICS/Academics/COMP/COMP_141/2018_10-COMP_141-A/"},
		{code: "comp 141 a", expected: "/ICS/Academics/comp/comp_141/2018_10-comp_141-a/"},
		{code: "HUMA-200-AB", expected: "/ICS/Academics/HUMA/HUMA_200/2018_10-HUMA_200-A____L/"},
		{code: "PHYS 101 CL", expected: "/ICS/Academics/PHYS/PHYS_101/2018_10-PHYS_101-C____L/"},
	}
	for _, test := range testCases {
		got, err := client.CourseURL(test.code)
		require.NoError(t, err, test.code)
		require.Equal(t, test.expected, got)
	}

	for _, invalid := range []string{"", "COMP", "COMP141", "141COMPA", "COMP141A2", "!!!"} {
		_, err := client.CourseURL(invalid)
		require.ErrorIs(t, err, failure.ErrClassDoesNotExist, invalid)
	}

	coursework, err := client.CourseworkURL("COMP141A")
	require.NoError(t, err)
	require.Equal(t, "/ICS/Academics/COMP/COMP_141/2018_10-COMP_141-A/Coursework.jnz", coursework)

	files, err := client.FilesURL("COMP141A")
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(files, "Main_Page.jnz?portlet=Handouts&screen=MainView&screenType=next&viewType=Card"))

	collaboration, err := client.CollaborationURL("COMP141A")
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(collaboration, "Collaboration.jnz?portlet=Coursemates"))
}

func mustPage(t testing.TB, rawUrl, markup string) *Page {
	u, err := url.Parse(rawUrl)
	require.NoError(t, err)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	require.NoError(t, err)
	return &Page{Url: u, Body: []byte(markup), Document: doc}
}

func TestCheckEnrollment(t *testing.T) {
	testCases := []struct {
		markup   string
		expected error
	}{
		{
			markup:   `<div class="notFound">The page you requested is not available. Some pages require you to be logged in.</div>`,
			expected: failure.ErrClassDoesNotExist,
		},
		{
			markup:   `<div class="notFound">You do not have permissions to view this page.</div>`,
			expected: failure.ErrStudentNotInClass,
		},
		{markup: `<div class="assignments"></div>`},
		{markup: `<div class="notFound">Something else entirely</div>`},
	}

	for _, test := range testCases {
		page := mustPage(t, "https://my.gcc.edu/", test.markup)
		err := CheckEnrollment(page.Document, ".notFound")
		if test.expected == nil {
			require.NoError(t, err)
			continue
		}
		require.ErrorIs(t, err, test.expected)
	}
}

func TestFrameSource(t *testing.T) {
	page := mustPage(t, "https://my.gcc.edu/ICS/Student/Default_Page.jnz?portlet=Chapel_Attendance",
		`<iframe id="pg0_V_iframe" src="/ICS/Portlets/Chapel Attendance/view.aspx?id=1"></iframe>`)
	src, err := FrameSource(page, "#pg0_V_iframe")
	require.NoError(t, err)
	require.Equal(t, "https://my.gcc.edu/ICS/Portlets/Chapel%20Attendance/view.aspx?id=1", src)

	expired := mustPage(t, "https://my.gcc.edu/", `<iframe id="pg0_V_iframe" src=""></iframe>`)
	_, err = FrameSource(expired, "#pg0_V_iframe")
	require.ErrorIs(t, err, failure.ErrExpiredSession)

	missing := mustPage(t, "https://my.gcc.edu/", `<div></div>`)
	_, err = FrameSource(missing, "#pg0_V_iframe")
	require.ErrorIs(t, err, failure.ErrExpiredSession)
}

func TestExactFields(t *testing.T) {
	fields, err := ExactFields(" a b\n c ", 3)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, fields)

	_, err = ExactFields("a b", 3)
	require.ErrorIs(t, err, failure.ErrUnexpectedResponse)
}
