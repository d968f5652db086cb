package parser

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func doc(rows ...string) string {
	return fmt.Sprintf(`<html><body>
<table data-test="historical-prices">
<thead><tr><th>Date</th><th>Open</th><th>High</th><th>Low</th><th>Close</th><th>Adj Close</th><th>Volume</th></tr></thead>
<tbody>%s</tbody>
</table>
</body></html>`, strings.Join(rows, "\n"))
}

func tr(cells ...string) string {
	var b strings.Builder
	b.WriteString("<tr>")
	for _, c := range cells {
		b.WriteString("<td>" + c + "</td>")
	}
	b.WriteString("</tr>")
	return b.String()
}

func TestParseWellFormedDocument(t *testing.T) {
	p := New(zap.NewNop())

	html := doc(
		tr("Jun 17, 2025", "198.50", "199.10", "197.80", "198.90", "198.90", "38,500,000"),
		tr("Jun 16, 2025", "197.30", "198.69", "196.56", "198.42", "198.42", "43,020,700"),
	)

	rows, err := p.Parse(html)
	if err != nil {
		t.Fatalf("Failed to parse document: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}

	// Order preserved as encountered.
	if rows[0].Date != "Jun 17, 2025" {
		t.Errorf("Expected first row date Jun 17, 2025, got %s", rows[0].Date)
	}
	if rows[1].Open != "197.30" {
		t.Errorf("Expected open 197.30, got %s", rows[1].Open)
	}
	if rows[1].Volume != "43020700" {
		t.Errorf("Expected separators stripped from volume, got %s", rows[1].Volume)
	}
}

func TestParseSkipsMalformedRows(t *testing.T) {
	p := New(zap.NewNop())

	html := doc(
		tr("Jun 16, 2025", "197.30", "198.69", "196.56", "198.42", "198.42", "43,020,700"),
		tr("Jun 13, 2025", "0.26 Dividend"), // too few columns
		tr("not a date", "1.00", "1.10", "0.90", "1.05", "1.05", "100"),
		tr("Jun 12, 2025", "??", "1.10", "0.90", "1.05", "1.05", "100"),
		tr("Jun 11, 2025", "195.00", "196.00", "194.00", "195.50", "195.50", "30,000,000"),
	)

	rows, err := p.Parse(html)
	if err != nil {
		t.Fatalf("Failed to parse document: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected exactly the 2 valid rows, got %d", len(rows))
	}
}

func TestParseMissingTable(t *testing.T) {
	p := New(zap.NewNop())

	_, err := p.Parse("<html><body><p>rate limited</p></body></html>")
	if err == nil {
		t.Fatal("Expected error for missing table")
	}

	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("Expected ParseError, got %T", err)
	}
	if !strings.Contains(pe.Reason, "table not found") {
		t.Errorf("Expected reason to name the missing table, got %q", pe.Reason)
	}
}

func TestParseEmptyTable(t *testing.T) {
	p := New(zap.NewNop())

	rows, err := p.Parse(doc())
	if err != nil {
		t.Fatalf("Failed to parse document: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("Expected no rows, got %d", len(rows))
	}
}
