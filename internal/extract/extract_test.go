package extract

import (
	"context"
	"testing"
	"time"

	"mygcc-backend/internal/failure"
	"mygcc-backend/internal/portal"
	"mygcc-backend/internal/telemetry"
	"mygcc-backend/internal/token"
	"mygcc-backend/lib/testutil"

	"github.com/stretchr/testify/require"
)

var testCredential = token.Credential{Username: "smithjr18", Password: "hunter2"}

func newTestExtractor(t testing.TB) (Extractor, *testutil.FakePortal, *telemetry.Recorder) {
	fake := testutil.NewFakePortal(t, testCredential.Username, testCredential.Password)
	recorder := &telemetry.Recorder{}
	client, err := portal.NewClient(portal.Options{
		BaseUrl: fake.URL(),
		Timeout: time.Second * 5,
		Term:    portal.Term{Year: 2018, Number: "10"},
	}, recorder)
	require.NoError(t, err)
	return New(client.NewSession(testCredential), recorder), fake, recorder
}

func TestExtractSchedule(t *testing.T) {
	extractor, fake, _ := newTestExtractor(t)
	fake.SetPage(schedulePage.Url, string(scheduleHtml))

	courses, err := extractor.Schedule(context.Background())
	require.NoError(t, err)
	require.Len(t, courses, 2)
	require.Equal(t, "ACCT 201 A", courses[0].Code)
	require.Equal(t, 1, fake.Hits("POST /ICS/"))
}

func TestExtractChapel(t *testing.T) {
	extractor, fake, _ := newTestExtractor(t)
	fake.SetPage(chapelPage.Url, `<iframe id="pg0_V_iframe" src="/ICS/Portlets/Chapel Attendance/view.aspx"></iframe>`)
	fake.SetPage("/ICS/Portlets/Chapel%20Attendance/view.aspx", string(chapelHtml))

	chapel, err := extractor.Chapel(context.Background())
	require.NoError(t, err)
	require.Equal(t, Chapel{Required: 12, Makeups: 2, Attended: 8, Remaining: 2}, chapel)
}

func TestExtractFrameExpiredSession(t *testing.T) {
	extractor, fake, recorder := newTestExtractor(t)
	fake.SetPage(crimsonCashPage.Url, `<iframe id="pg0_V_iframe"></iframe>`)

	_, err := extractor.CrimsonCash(context.Background())
	require.ErrorIs(t, err, failure.ErrExpiredSession)
	require.Empty(t, recorder.BrokenWithPrefix("extract"))
	require.NotEmpty(t, recorder.Warnings)
}

func TestExtractCrimsonCash(t *testing.T) {
	extractor, fake, _ := newTestExtractor(t)
	fake.SetPage(crimsonCashPage.Url, `<iframe id="pg0_V_iframe" src="/ICS/Portlets/CCash/balance.aspx"></iframe>`)
	fake.SetPage("/ICS/Portlets/CCash/balance.aspx", string(crimsonCashHtml))

	balance, err := extractor.CrimsonCash(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1204.57, balance.Balance)
}

func TestExtractCoursePages(t *testing.T) {
	testCases := []struct {
		name     string
		notFound string
		expected error
	}{
		{
			name:     "class does not exist",
			notFound: "The page you requested is not available. Some pages require you to be logged in.",
			expected: failure.ErrClassDoesNotExist,
		},
		{
			name:     "student not in class",
			notFound: "You do not have permissions to view this page.",
			expected: failure.ErrStudentNotInClass,
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			extractor, fake, _ := newTestExtractor(t)
			markup := `<div class="notFound">` + test.notFound + `</div>`
			fake.SetPage("/ICS/Academics/COMP/COMP_141/2018_10-COMP_141-A/Coursework.jnz", markup)
			fake.SetPage("/ICS/Academics/COMP/COMP_141/2018_10-COMP_141-A/Main_Page.jnz", markup)
			fake.SetPage("/ICS/Academics/COMP/COMP_141/2018_10-COMP_141-A/Collaboration.jnz", markup)

			_, err := extractor.Homework(context.Background(), "COMP 141 A")
			require.ErrorIs(t, err, test.expected)
			_, err = extractor.Files(context.Background(), "COMP 141 A")
			require.ErrorIs(t, err, test.expected)
			_, err = extractor.Collaboration(context.Background(), "COMP 141 A")
			require.ErrorIs(t, err, test.expected)
		})
	}
}

func TestExtractHomework(t *testing.T) {
	extractor, fake, _ := newTestExtractor(t)
	fake.SetPage("/ICS/Academics/COMP/COMP_141/2018_10-COMP_141-A/Coursework.jnz", string(homeworkHtml))

	sections, err := extractor.Homework(context.Background(), "COMP141A")
	require.NoError(t, err)
	require.Len(t, sections, 3)
	require.Equal(t,
		fake.URL()+"/ICS/Academics/COMP/COMP_141/2018_10-COMP_141-A/Coursework.jnz",
		sections[0].Assignments[0].CourseUrl,
	)

	_, err = extractor.Homework(context.Background(), "not a course")
	require.ErrorIs(t, err, failure.ErrClassDoesNotExist)
}

func TestExtractJSONRecords(t *testing.T) {
	extractor, fake, _ := newTestExtractor(t)
	fake.SetPage(contactEndpoint+testCredential.Username, string(contactJson))
	fake.SetPage(insuranceEndpoint+testCredential.Username, "null")

	contact, err := extractor.Contact(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Grove City", contact.Student.Address.City)

	_, err = extractor.Insurance(context.Background())
	require.ErrorIs(t, err, failure.ErrUnexpectedResponse)
}

func TestExtractBiographyThroughTabs(t *testing.T) {
	extractor, fake, _ := newTestExtractor(t)
	fake.SetPage(profilePage.Url, string(profileHtml))

	var targets []string
	fake.SetPostback("/ICS/", func(fields []testutil.FormField) string {
		target := testutil.FieldValue(fields, "__EVENTTARGET")
		targets = append(targets, target)
		switch target {
		case "ctl00$CP$V$tabContact":
			return testutil.HiddenStatePage("vs-contact", "br-contact", string(profileContactHtml))
		case "ctl00$CP$V$tabAcademic":
			return testutil.HiddenStatePage("vs-academic", "br-academic", string(profileAcademicHtml))
		}
		return "unknown tab"
	})

	bio, err := extractor.Biography(context.Background())
	require.NoError(t, err)
	require.Equal(t, "smithjr18@gcc.edu", bio.Email)
	require.Equal(t, "Computer Science", bio.Major)
	require.Equal(t, []string{"ctl00$CP$V$tabContact", "ctl00$CP$V$tabAcademic"}, targets)
	require.Equal(t, portal.StatePageStateSynced, extractor.Session().State())
}

func TestExtractBiographyFallsBackToScreens(t *testing.T) {
	extractor, fake, recorder := newTestExtractor(t)
	fake.SetPage(profilePage.Url, string(profileHtml))
	fake.SetPage(profilePage.ContactUrl, string(profileContactHtml))
	fake.SetPage(profilePage.AcademicUrl, string(profileAcademicHtml))
	fake.SetPostback("/ICS/", func([]testutil.FormField) string {
		return "<html><body>postbacks are broken today</body></html>"
	})

	bio, err := extractor.Biography(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Bachelor of Science", bio.Degree)
	require.Len(t, recorder.Warnings, 2)
}

func TestExtractExpiredAuthCookie(t *testing.T) {
	fake := testutil.NewFakePortal(t, testCredential.Username, testCredential.Password)
	fake.SetPage(schedulePage.Url, string(scheduleHtml))
	fake.SetPage("/ICS/Academics/COMP/COMP_141/2018_10-COMP_141-A/Coursework.jnz", string(homeworkHtml))
	recorder := &telemetry.Recorder{}
	client, err := portal.NewClient(portal.Options{
		BaseUrl: fake.URL(),
		Timeout: time.Second * 5,
		Term:    portal.Term{Year: 2018, Number: "10"},
	}, recorder)
	require.NoError(t, err)

	session := client.ResumeSession(testCredential, token.CachedSession{
		SessionId:  testutil.FakeSessionId,
		AuthCookie: "EXPIRED",
	})
	extractor := New(session, recorder)
	ctx := context.Background()

	testCases := []struct {
		name string
		run  func() error
	}{
		{"schedule", func() error { _, err := extractor.Schedule(ctx); return err }},
		{"homework", func() error { _, err := extractor.Homework(ctx, "COMP141A"); return err }},
		{"files", func() error { _, err := extractor.Files(ctx, "COMP141A"); return err }},
		{"collaboration", func() error { _, err := extractor.Collaboration(ctx, "COMP141A"); return err }},
		{"chapel", func() error { _, err := extractor.Chapel(ctx); return err }},
		{"crimson cash", func() error { _, err := extractor.CrimsonCash(ctx); return err }},
		{"contact", func() error { _, err := extractor.Contact(ctx); return err }},
		{"insurance", func() error { _, err := extractor.Insurance(ctx); return err }},
		{"biography", func() error { _, err := extractor.Biography(ctx); return err }},
	}
	for _, test := range testCases {
		require.ErrorIs(t, test.run(), failure.ErrExpiredSession, test.name)
	}
	require.Zero(t, fake.Hits("POST /ICS/"))
	require.Empty(t, recorder.BrokenWithPrefix("extract"))
}
