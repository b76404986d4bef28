package extract

import (
	"context"
	"net/url"
	"strings"

	"mygcc-backend/internal/failure"
	"mygcc-backend/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

type File struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Size string `json:"size"`
	Url  string `json:"url"`
}

// parseFileInfo reads the "(PDF, 12 KB)" that follows a handout's link.
func parseFileInfo(raw string) (string, string, bool) {
	raw = strings.NewReplacer("(", "", ")", "").Replace(raw)
	fileType, size, found := strings.Cut(raw, ", ")
	if !found {
		return "", "", false
	}
	return strings.TrimSpace(fileType), strings.TrimSpace(size), true
}

func parseFiles(doc *goquery.Document, base *url.URL) ([]File, error) {
	files := []File{}

	var parseErr error
	doc.Find(filesPage.Rows).EachWithBreak(func(i int, row *goquery.Selection) bool {
		anchor := row.Find("a").First()
		info := htmlutil.OwnText(row.Find("td").First())
		fileType, size, ok := parseFileInfo(info)
		if !ok {
			parseErr = failure.Newf(failure.KindUnexpectedResponse, "handout %d has no type and size: '%s'", i, info)
			return false
		}
		files = append(files, File{
			Name: htmlutil.Text(anchor),
			Type: fileType,
			Size: size,
			Url:  resolveHref(base, anchor.AttrOr("href", "")),
		})
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return files, nil
}

// Files returns the handouts posted to a course.
func (e Extractor) Files(ctx context.Context, courseCode string) ([]File, error) {
	path, err := e.session.Client().FilesURL(courseCode)
	if err != nil {
		e.report(report_extract_files, err, courseCode)
		return nil, err
	}
	page, err := e.coursePage(ctx, report_extract_files, path)
	if err != nil {
		return nil, err
	}
	files, err := parseFiles(page.Document, page.Url)
	if err != nil {
		e.report(report_extract_files, err, courseCode)
		return nil, err
	}
	return files, nil
}
