package extract

import (
	"context"
	"strconv"
	"strings"

	"mygcc-backend/internal/failure"
	"mygcc-backend/internal/portal"
	"mygcc-backend/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

type Chapel struct {
	Required  int `json:"required"`
	Makeups   int `json:"makeups"`
	Attended  int `json:"attended"`
	Remaining int `json:"remaining"`
	Special   int `json:"special"`
}

// cellText joins the text of every cell in sel with single spaces.
func cellText(sel *goquery.Selection) string {
	var cells []string
	sel.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
		text := htmlutil.Text(cell)
		if text != "" {
			cells = append(cells, text)
		}
	})
	return strings.Join(cells, " ")
}

func parseChapel(doc *goquery.Document) (Chapel, error) {
	fields, err := portal.ExactFields(cellText(doc.Find(chapelPage.Rows)), chapelPage.TokenCount)
	if err != nil {
		return Chapel{}, err
	}

	counters := make([]int, 5)
	for i := range counters {
		raw := fields[chapelPage.FirstCounter+i]
		counters[i], err = strconv.Atoi(raw)
		if err != nil {
			return Chapel{}, failure.WithKind(failure.KindUnexpectedResponse, "chapel counter '"+raw+"'", err)
		}
	}
	return Chapel{
		Required:  counters[0],
		Makeups:   counters[1],
		Attended:  counters[2],
		Remaining: counters[3],
		Special:   counters[4],
	}, nil
}

// Chapel returns the user's chapel attendance for the current term.
func (e Extractor) Chapel(ctx context.Context) (Chapel, error) {
	page, err := e.framePage(ctx, report_extract_chapel, chapelPage.Url, chapelPage.Frame)
	if err != nil {
		return Chapel{}, err
	}
	chapel, err := parseChapel(page.Document)
	if err != nil {
		e.report(report_extract_chapel, err)
		return Chapel{}, err
	}
	return chapel, nil
}
