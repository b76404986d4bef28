package extract

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"mygcc-backend/internal/failure"
	"mygcc-backend/internal/portal"
	"mygcc-backend/lib/htmlutil"
	"mygcc-backend/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

// tab labels are matched loosely, the portal has renamed them before
const tabSimilarity = 0.85

var postBackPattern = regexp.MustCompile(`__doPostBack\('([^']*)'\s*,\s*'([^']*)'\)`)

type Biography struct {
	Id        string `json:"ID"`
	Name      string `json:"name"`
	NameShort string `json:"name_short"`
	NameLong  string `json:"name_long"`
	Major     string `json:"major"`
	Degree    string `json:"degree"`
	Email     string `json:"email"`
	Birth     string `json:"birth"`
	Marital   string `json:"marital"`
	Gender    string `json:"gender"`
	Ethnicity string `json:"ethnicity"`
}

func inputValue(doc *goquery.Document, selector string) string {
	return htmlutil.Clean(doc.Find(selector).First().AttrOr("value", ""))
}

func selectedOption(doc *goquery.Document, selector string) string {
	selected := doc.Find(selector).FilterFunction(func(_ int, option *goquery.Selection) bool {
		_, ok := option.Attr("selected")
		return ok
	})
	return htmlutil.Text(selected.First())
}

func joinNonEmpty(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}

func parseBiography(about, contact, academic *goquery.Document) (Biography, error) {
	header := htmlutil.Text(about.Find(profilePage.Header))
	if header == "" {
		return Biography{}, failure.New(failure.KindUnexpectedResponse, "profile header is missing")
	}
	name, _ := htmlutil.SubstringBetween(header, profilePage.HeaderPrefix, ",")
	id, _ := htmlutil.SubstringBetween(header, "#", "")

	emailCells := contact.Find(profilePage.EmailCells)
	if emailCells.Length() < 2 {
		return Biography{}, failure.Newf(
			failure.KindUnexpectedResponse,
			"email table has %d cells", emailCells.Length(),
		)
	}

	first := inputValue(about, profilePage.FirstName)
	middle := inputValue(about, profilePage.MiddleName)
	last := inputValue(about, profilePage.LastName)

	return Biography{
		Id:        strings.TrimSpace(id),
		Name:      strings.TrimSpace(name),
		NameShort: joinNonEmpty(first, last),
		NameLong:  joinNonEmpty(first, middle, last),
		Major:     htmlutil.Text(academic.Find(profilePage.Major)),
		Degree:    htmlutil.Text(academic.Find(profilePage.Degree)),
		Email:     htmlutil.Text(emailCells.Eq(1)),
		Birth:     inputValue(about, profilePage.Birth),
		Marital:   selectedOption(about, profilePage.Marital),
		Gender:    selectedOption(about, profilePage.Gender),
		Ethnicity: selectedOption(about, profilePage.Ethnicity),
	}, nil
}

type postBack struct {
	Target   string
	Argument string
}

// findTab looks for the postback link of the tab labelled closest to label.
func findTab(doc *goquery.Document, label string) (postBack, bool) {
	var names []string
	var postBacks []postBack
	doc.Find(profilePage.TabLinks).Each(func(_ int, link *goquery.Selection) {
		match := postBackPattern.FindStringSubmatch(link.AttrOr("href", ""))
		if match == nil {
			return
		}
		names = append(names, htmlutil.Text(link))
		postBacks = append(postBacks, postBack{Target: match[1], Argument: match[2]})
	})

	idx := textutil.MostSimilar(label, names, tabSimilarity)
	if idx < 0 {
		return postBack{}, false
	}
	return postBacks[idx], true
}

// openTab switches the profile page to one of its tabs, through the tab's
// postback when the page offers one and through the tab's own url otherwise.
func (e Extractor) openTab(ctx context.Context, about *portal.Page, label, fallback string) (*goquery.Document, error) {
	tab, ok := findTab(about.Document, label)
	if ok {
		page, err := e.session.Navigate(ctx, about.Url.String(), tab.Target, tab.Argument, nil)
		if err == nil {
			return page.Document, nil
		}
		if failure.KindOf(err) == failure.KindExpiredSession {
			return nil, err
		}
		e.tel.ReportWarning(
			report_extract_biography,
			fmt.Errorf("navigate to tab '%s': %w", label, err),
		)
	}

	page, err := e.session.Fetch(ctx, fallback)
	if err != nil {
		return nil, err
	}
	return page.Document, nil
}

// Biography returns the user's profile, it spans the profile page and its
// contact and academic tabs.
func (e Extractor) Biography(ctx context.Context) (Biography, error) {
	about, err := e.session.Fetch(ctx, profilePage.Url)
	if err != nil {
		e.report(report_extract_biography, err)
		return Biography{}, err
	}
	contact, err := e.openTab(ctx, about, profilePage.ContactTab, profilePage.ContactUrl)
	if err != nil {
		e.report(report_extract_biography, err, profilePage.ContactTab)
		return Biography{}, err
	}
	academic, err := e.openTab(ctx, about, profilePage.AcademicTab, profilePage.AcademicUrl)
	if err != nil {
		e.report(report_extract_biography, err, profilePage.AcademicTab)
		return Biography{}, err
	}

	bio, err := parseBiography(about.Document, contact, academic)
	if err != nil {
		e.report(report_extract_biography, err)
		return Biography{}, err
	}
	return bio, nil
}
