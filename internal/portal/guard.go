package portal

import (
	"strings"

	"mygcc-backend/internal/failure"
	"mygcc-backend/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

const (
	enrollmentPhrase = "require you to be"
	permissionPhrase = "permissions to view"
	// the anonymous page carries the login box in its header
	loginFieldSelector = "input[name='userName']"
)

// loggedOut reports whether doc is the anonymous page the portal serves in
// place of any page once the auth cookie is no longer accepted.
func loggedOut(doc *goquery.Document) bool {
	return doc.Find(loginFieldSelector).Length() > 0
}

// CheckEnrollment inspects the not-found marker the portal renders in place
// of course content.
func CheckEnrollment(doc *goquery.Document, selector string) error {
	text := htmlutil.Text(doc.Find(selector))
	if text == "" {
		return nil
	}
	switch {
	case strings.Contains(text, enrollmentPhrase):
		return failure.New(failure.KindClassDoesNotExist, text)
	case strings.Contains(text, permissionPhrase):
		return failure.New(failure.KindStudentNotInClass, text)
	}
	return nil
}

// FrameSource returns the absolute url the iframe at selector points to.
// The portal renders the iframe without a source once the session expired.
func FrameSource(page *Page, selector string) (string, error) {
	src := strings.TrimSpace(page.Document.Find(selector).AttrOr("src", ""))
	if src == "" {
		return "", failure.Newf(failure.KindExpiredSession, "iframe '%s' has no source", selector)
	}
	src = strings.ReplaceAll(src, " ", "%20")

	ref, err := page.Url.Parse(src)
	if err != nil {
		return "", failure.WithKind(failure.KindUnexpectedResponse, "parse iframe source", err)
	}
	return ref.String(), nil
}

// ExactFields splits text on whitespace and requires exactly n fields.
func ExactFields(text string, n int) ([]string, error) {
	fields := strings.Fields(text)
	if len(fields) != n {
		return nil, failure.Newf(
			failure.KindUnexpectedResponse,
			"expected %d fields, got %d", n, len(fields),
		)
	}
	return fields, nil
}
