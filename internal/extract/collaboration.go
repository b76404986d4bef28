package extract

import (
	"context"
	"net/url"
	"strings"

	"mygcc-backend/lib/htmlutil"
	"mygcc-backend/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

type Classmate struct {
	Name      string `json:"name"`
	Id        string `json:"id"`
	Image     string `json:"image"`
	IsFaculty bool   `json:"isFaculty"`
}

// displayName turns "Smith, John" into "John Smith".
func displayName(raw string) string {
	last, first, found := strings.Cut(raw, ", ")
	if !found {
		return raw
	}
	return strings.TrimSpace(first) + " " + strings.TrimSpace(last)
}

// photoId is the photo's file name without its extension, the portal names
// photos after the person's id.
func photoId(src string) string {
	name := src[strings.LastIndex(src, "/")+1:]
	if idx := strings.Index(name, ".jpg"); idx >= 0 {
		name = name[:idx]
	}
	return name
}

func parseCollaboration(doc *goquery.Document, base *url.URL) []Classmate {
	classmates := []Classmate{}
	doc.Find(collaborationPage.Cells).Each(func(_ int, cell *goquery.Selection) {
		src := strings.TrimSpace(cell.Find(collaborationPage.Photo).AttrOr("src", ""))
		if src == "" {
			return
		}
		classmates = append(classmates, Classmate{
			Name:      displayName(htmlutil.Text(cell.Find(collaborationPage.Name))),
			Id:        photoId(src),
			Image:     resolveHref(base, src),
			IsFaculty: textutil.MatchName(htmlutil.Text(cell.Find(collaborationPage.Role)), collaborationPage.Faculty),
		})
	})
	return classmates
}

// Collaboration returns the people enrolled in a course, faculty included.
func (e Extractor) Collaboration(ctx context.Context, courseCode string) ([]Classmate, error) {
	path, err := e.session.Client().CollaborationURL(courseCode)
	if err != nil {
		e.report(report_extract_collaboration, err, courseCode)
		return nil, err
	}
	page, err := e.coursePage(ctx, report_extract_collaboration, path)
	if err != nil {
		return nil, err
	}
	return parseCollaboration(page.Document, page.Url), nil
}
