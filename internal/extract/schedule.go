package extract

import (
	"context"
	"strconv"
	"strings"

	"mygcc-backend/internal/failure"
	"mygcc-backend/internal/telemetry"
	"mygcc-backend/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

type MeetingTime struct {
	Day   string `json:"day"`
	Start string `json:"start"`
	End   string `json:"end"`
}

type Course struct {
	Code          string        `json:"course"`
	Title         string        `json:"title"`
	ReadableTitle string        `json:"readable_title"`
	Credits       float64       `json:"credits"`
	Professors    []string      `json:"professor"`
	Times         []MeetingTime `json:"times"`
	Locations     []string      `json:"location"`
}

func listItems(cell *goquery.Selection) []string {
	items := []string{}
	cell.Find(schedulePage.ListItems).Each(func(_ int, li *goquery.Selection) {
		text := htmlutil.Text(li)
		if text != "" {
			items = append(items, text)
		}
	})
	return items
}

// parseMeetingTimes expands "MWF 10:00 - 10:50 AM" into one entry per day.
func parseMeetingTimes(raw string) ([]MeetingTime, bool) {
	replacer := strings.NewReplacer("-", " ", "AM", " ", "PM", " ")
	fields := strings.Fields(replacer.Replace(raw))
	if len(fields) < 3 {
		return nil, false
	}
	var times []MeetingTime
	for _, day := range fields[0] {
		times = append(times, MeetingTime{
			Day:   string(day),
			Start: fields[1],
			End:   fields[2],
		})
	}
	return times, true
}

func parseSchedule(doc *goquery.Document, tel telemetry.API) ([]Course, error) {
	courses := []Course{}

	var rowErr error
	doc.Find(schedulePage.Rows).EachWithBreak(func(i int, row *goquery.Selection) bool {
		cells := row.Find(schedulePage.Cells)
		if cells.Length() < schedulePage.MinCells {
			rowErr = failure.Newf(
				failure.KindUnexpectedResponse,
				"schedule row %d has %d cells", i, cells.Length(),
			)
			return false
		}

		creditText := htmlutil.Text(cells.Eq(schedulePage.CreditCell))
		credits, err := strconv.ParseFloat(creditText, 64)
		if err != nil {
			rowErr = failure.WithKind(
				failure.KindUnexpectedResponse,
				"schedule row credits '"+creditText+"'",
				err,
			)
			return false
		}

		course := Course{
			Code:       htmlutil.Text(cells.Eq(schedulePage.CodeCell)),
			Title:      htmlutil.Text(cells.Eq(schedulePage.TitleCell)),
			Credits:    credits,
			Professors: listItems(cells.Eq(schedulePage.ProfCell)),
			Times:      []MeetingTime{},
			Locations:  []string{},
		}
		course.ReadableTitle = ReadableCourseName(course.Title)

		for _, raw := range listItems(cells.Eq(schedulePage.TimeCell)) {
			times, ok := parseMeetingTimes(raw)
			if !ok {
				tel.ReportWarning(report_extract_schedule, "skipped meeting time", course.Code, raw)
				continue
			}
			course.Times = append(course.Times, times...)
		}
		for _, location := range listItems(cells.Eq(schedulePage.PlaceCell)) {
			course.Locations = append(course.Locations, strings.TrimSpace(strings.ReplaceAll(location, "/", "-")))
		}

		courses = append(courses, course)
		return true
	})
	if rowErr != nil {
		return nil, rowErr
	}
	return courses, nil
}

// Schedule returns the courses the user is registered for this term.
func (e Extractor) Schedule(ctx context.Context) ([]Course, error) {
	page, err := e.session.Fetch(ctx, schedulePage.Url)
	if err != nil {
		e.report(report_extract_schedule, err)
		return nil, err
	}
	courses, err := parseSchedule(page.Document, e.tel)
	if err != nil {
		e.report(report_extract_schedule, err)
		return nil, err
	}
	return courses, nil
}
