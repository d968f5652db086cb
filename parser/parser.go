// Package parser extracts historical price rows from the external source's
// HTML documents. The markup is untrusted input: a malformed row is skipped
// and logged, never allowed to invalidate the rest of the document.
package parser

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/Stargazers-Consulting-LLC/creampie-sub000/models"
)

// tableSelector is the stable structural marker for the one data table in a
// historical-prices document. Its absence is a hard parse failure.
const tableSelector = `table[data-test="historical-prices"]`

const columnCount = 7

// ParseError reports a document-level failure (no table, unreadable markup).
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string { return "parse: " + e.Reason }

type Parser struct {
	log *zap.Logger
}

func New(log *zap.Logger) *Parser {
	return &Parser{log: log}
}

// Parse converts one HTML document into the ordered sequence of raw price
// rows it contains. Row order is preserved as encountered; it is not
// guaranteed chronological. Rows with too few columns or unparseable values
// are skipped with a warning.
func (p *Parser) Parse(htmlText string) ([]models.RawRow, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlText))
	if err != nil {
		return nil, &ParseError{Reason: fmt.Sprintf("unreadable document: %v", err)}
	}

	table := doc.Find(tableSelector)
	if table.Length() == 0 {
		return nil, &ParseError{Reason: "historical prices table not found"}
	}

	var rows []models.RawRow
	table.First().Find("tr").Each(func(i int, tr *goquery.Selection) {
		cells := tr.Find("td")
		if cells.Length() == 0 {
			return // header row
		}
		if cells.Length() < columnCount {
			p.log.Warn("skipping row with too few columns",
				zap.Int("row", i), zap.Int("columns", cells.Length()))
			return
		}

		values := make([]string, columnCount)
		for j := 0; j < columnCount; j++ {
			values[j] = strings.TrimSpace(cells.Eq(j).Text())
		}

		row, err := sanitizeRow(values)
		if err != nil {
			p.log.Warn("skipping malformed row", zap.Int("row", i), zap.Error(err))
			return
		}
		rows = append(rows, row)
	})

	return rows, nil
}

// sanitizeRow verifies every cell parses as its expected type and returns the
// row with thousands separators stripped from the numeric fields.
func sanitizeRow(values []string) (models.RawRow, error) {
	var row models.RawRow

	if _, err := time.Parse(models.DateLayout, values[0]); err != nil {
		return row, fmt.Errorf("bad date %q: %w", values[0], err)
	}

	nums := make([]string, 0, columnCount-1)
	for _, v := range values[1:6] {
		n := stripSeparators(v)
		if _, err := strconv.ParseFloat(n, 64); err != nil {
			return row, fmt.Errorf("bad price %q: %w", v, err)
		}
		nums = append(nums, n)
	}

	vol := stripSeparators(values[6])
	if _, err := strconv.ParseInt(vol, 10, 64); err != nil {
		return row, fmt.Errorf("bad volume %q: %w", values[6], err)
	}

	row = models.RawRow{
		Date:     values[0],
		Open:     nums[0],
		High:     nums[1],
		Low:      nums[2],
		Close:    nums[3],
		AdjClose: nums[4],
		Volume:   vol,
	}
	return row, nil
}

func stripSeparators(s string) string {
	return strings.ReplaceAll(s, ",", "")
}
