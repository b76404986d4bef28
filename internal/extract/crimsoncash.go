package extract

import (
	"context"
	"strconv"
	"strings"

	"mygcc-backend/internal/failure"
	"mygcc-backend/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

type CrimsonCash struct {
	Balance float64 `json:"balance"`
}

func parseCrimsonCash(doc *goquery.Document) (CrimsonCash, error) {
	box := doc.Find(crimsonCashPage.Box).First()
	if box.Length() == 0 {
		return CrimsonCash{}, failure.New(failure.KindUnexpectedResponse, "crimson cash balance box is missing")
	}
	raw := htmlutil.Text(box.Find(crimsonCashPage.Balance))
	balance, err := strconv.ParseFloat(strings.NewReplacer("$", "", ",", "").Replace(raw), 64)
	if err != nil {
		return CrimsonCash{}, failure.WithKind(failure.KindUnexpectedResponse, "crimson cash balance '"+raw+"'", err)
	}
	return CrimsonCash{Balance: balance}, nil
}

// CrimsonCash returns the user's campus currency balance.
func (e Extractor) CrimsonCash(ctx context.Context) (CrimsonCash, error) {
	page, err := e.framePage(ctx, report_extract_crimson_cash, crimsonCashPage.Url, crimsonCashPage.Frame)
	if err != nil {
		return CrimsonCash{}, err
	}
	balance, err := parseCrimsonCash(page.Document)
	if err != nil {
		e.report(report_extract_crimson_cash, err)
		return CrimsonCash{}, err
	}
	return balance, nil
}
