package extract

import (
	"context"
	"net/url"
	"strings"
	"time"

	"mygcc-backend/internal/failure"
	"mygcc-backend/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

const (
	dueDateLayout  = "Monday January 2 2006 3:04 PM"
	dueDateOutput  = "2006-01-02T15:04:05Z"
	gradeSeparator = "()/,"
)

type Grade struct {
	Received string `json:"received,omitempty"`
	Points   string `json:"points,omitempty"`
	Letter   string `json:"letter,omitempty"`
	Percent  string `json:"percent,omitempty"`
}

type Assignment struct {
	Title       string `json:"title"`
	Url         string `json:"assignment_url"`
	Grade       Grade  `json:"grade"`
	Due         string `json:"due"`
	Description string `json:"description"`
	Open        bool   `json:"open"`
	CourseUrl   string `json:"course_url"`
}

type HomeworkSection struct {
	Title       string       `json:"title"`
	Assignments []Assignment `json:"assignments"`
}

// parseDueDate converts the portal's "Monday, March 5, 2018 11:59 PM" into
// an ISO-8601 timestamp, an empty date stays empty.
func parseDueDate(raw string) (string, error) {
	normalized := strings.Join(strings.Fields(strings.ReplaceAll(raw, ",", " ")), " ")
	if normalized == "" {
		return "", nil
	}
	due, err := time.Parse(dueDateLayout, normalized)
	if err != nil {
		return "", failure.WithKind(failure.KindUnexpectedResponse, "due date '"+raw+"'", err)
	}
	return due.Format(dueDateOutput), nil
}

// parseGrade reads "(9/10, A, 90%)" style grades, ungraded assignments give a
// zero Grade.
func parseGrade(raw string) Grade {
	fields := strings.Fields(strings.Map(func(r rune) rune {
		if strings.ContainsRune(gradeSeparator, r) {
			return ' '
		}
		return r
	}, raw))
	if len(fields) < 2 {
		return Grade{}
	}
	if !isDigits(fields[1]) {
		return Grade{}
	}

	grade := Grade{
		Received: fields[0],
		Points:   fields[1],
	}
	switch {
	case len(fields) >= 4:
		grade.Letter = fields[2]
		grade.Percent = strings.TrimSuffix(fields[3], "%")
	case len(fields) == 3:
		grade.Percent = strings.TrimSuffix(fields[2], "%")
	}
	return grade
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func resolveHref(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || base == nil {
		return href
	}
	ref, err := base.Parse(href)
	if err != nil {
		return href
	}
	return ref.String()
}

// parseHomework reads the coursework page, `courseUrl` is the page's own
// absolute url.
func parseHomework(doc *goquery.Document, courseUrl *url.URL) ([]HomeworkSection, error) {
	sections := []HomeworkSection{}

	var parseErr error
	doc.Find(homeworkPage.Sections).EachWithBreak(func(_ int, heading *goquery.Selection) bool {
		section := HomeworkSection{
			Title:       htmlutil.Text(heading),
			Assignments: []Assignment{},
		}

		container := heading.Next()
		displays := container.Filter(homeworkPage.Assignments).AddSelection(container.Find(homeworkPage.Assignments))
		displays.EachWithBreak(func(_ int, display *goquery.Selection) bool {
			due, err := parseDueDate(htmlutil.Text(display.Find(homeworkPage.Due)))
			if err != nil {
				parseErr = err
				return false
			}
			title := display.Find(homeworkPage.Title).First()
			section.Assignments = append(section.Assignments, Assignment{
				Title:       htmlutil.Text(title),
				Url:         resolveHref(courseUrl, title.AttrOr("href", "")),
				Grade:       parseGrade(htmlutil.Text(display.Find(homeworkPage.Grade))),
				Due:         due,
				Description: htmlutil.Text(display.Find(homeworkPage.Description)),
				Open:        display.HasClass(homeworkPage.OpenClass),
				CourseUrl:   courseUrl.String(),
			})
			return true
		})
		if parseErr != nil {
			return false
		}

		sections = append(sections, section)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return sections, nil
}

// Homework returns the assignments of a course, grouped the way the course's
// coursework page groups them.
func (e Extractor) Homework(ctx context.Context, courseCode string) ([]HomeworkSection, error) {
	path, err := e.session.Client().CourseworkURL(courseCode)
	if err != nil {
		e.report(report_extract_homework, err, courseCode)
		return nil, err
	}
	page, err := e.coursePage(ctx, report_extract_homework, path)
	if err != nil {
		return nil, err
	}
	courseUrl, err := e.session.Client().Resolve(path)
	if err != nil {
		return nil, failure.Wrap(err)
	}

	sections, err := parseHomework(page.Document, courseUrl)
	if err != nil {
		e.report(report_extract_homework, err, courseCode)
		return nil, err
	}
	return sections, nil
}
