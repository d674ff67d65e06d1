// Package report renders session summaries as the plain-text extraction
// summary consumed by downstream narrative tooling.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"intradayProcessor/internal/domain"
)

const (
	timeLayout = "15:04"
	notAvail   = "N/A"
)

// price formats a price as $X.XX, or N/A when unavailable.
func price(p domain.NullPrice) string {
	if !p.Valid {
		return notAvail
	}
	return "$" + decimal.NewFromFloat(p.Float64).StringFixed(2)
}

func clock(p domain.NullPrice, t time.Time) string {
	if !p.Valid {
		return notAvail
	}
	return t.Format(timeLayout)
}

// RenderText renders one summary in the "Data Extraction Summary" layout.
func RenderText(s domain.SessionSummary) string {
	var b strings.Builder
	ext := s.Extremes

	fmt.Fprintf(&b, "Data Extraction Summary: %s | %s\n", s.Symbol, s.Date)
	b.WriteString("==================================================\n\n")

	b.WriteString("1. Session Extremes & Timing:\n")
	fmt.Fprintf(&b, "   - Open: %s\n", price(ext.Open))
	fmt.Fprintf(&b, "   - Close: %s\n", price(ext.Close))
	fmt.Fprintf(&b, "   - High of Day (HOD): %s (Set at %s)\n", price(ext.High), clock(ext.High, ext.HighTime))
	fmt.Fprintf(&b, "   - Low of Day (LOD): %s (Set at %s)\n", price(ext.Low), clock(ext.Low, ext.LowTime))
	fmt.Fprintf(&b, "   - Range Position: %s\n\n", s.RangePosition)

	b.WriteString("2. Volume Profile (Value References):\n")
	fmt.Fprintf(&b, "   - Point of Control (POC): %s (Highest volume traded)\n", price(s.Profile.POC))
	fmt.Fprintf(&b, "   - Value Area High (VAH): %s\n", price(s.Profile.VAH))
	fmt.Fprintf(&b, "   - Value Area Low (VAL): %s\n\n", price(s.Profile.VAL))

	b.WriteString("3. Key Intraday Volume Events:\n")
	if len(s.KeyEvents) == 0 {
		b.WriteString("   - No significant volume events detected.\n")
	}
	for _, e := range s.KeyEvents {
		fmt.Fprintf(&b, "   - %s\n", e.Description())
	}
	b.WriteString("\n")

	b.WriteString("4. VWAP Relationship:\n")
	fmt.Fprintf(&b, "   - Session VWAP: %s\n", price(s.VWAP))
	fmt.Fprintf(&b, "   - Close vs. VWAP: %s\n", s.CloseVsVWAP)
	fmt.Fprintf(&b, "   - Key Interactions: VWAP primarily acted as %s.\n\n", s.VWAPInteraction)

	or := s.OpeningRange
	fmt.Fprintf(&b, "5. Opening Range Analysis (First %d Mins):\n", int(or.Window.Minutes()))
	fmt.Fprintf(&b, "   - Opening Range: %s - %s\n", price(or.Low), price(or.High))
	fmt.Fprintf(&b, "   - Outcome Narrative: %s\n", or.Narrative)

	return b.String()
}

// CombineText joins rendered summaries and appends an errors section when
// any ticker failed.
func CombineText(summaries []string, errs []string) string {
	text := strings.Join(summaries, "\n\n")
	if len(errs) == 0 {
		return text
	}
	var b strings.Builder
	b.WriteString(text)
	if text != "" {
		b.WriteString("\n\n")
	}
	b.WriteString("--- ERRORS ---\n")
	b.WriteString(strings.Join(errs, "\n"))
	return b.String()
}
