// Package renderer turns valuation results into markdown reports.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"github.com/etnz/cartera"
	"github.com/etnz/cartera/date"
)

//go:embed templates/*.md
var templates embed.FS

// Holding is the data behind every report: a valuation result on a given day.
type Holding struct {
	Date      date.Date
	Currency  string
	Rate      cartera.Rate
	Positions []cartera.Position
	Totals    cartera.Totals
	Anomalies []cartera.Anomaly
}

// NewHolding wraps a result computed on day with rate.
func NewHolding(on date.Date, currency string, rate cartera.Rate, res cartera.Result) *Holding {
	return &Holding{
		Date:      on,
		Currency:  currency,
		Rate:      rate,
		Positions: res.Positions,
		Totals:    res.Totals,
		Anomalies: res.Anomalies,
	}
}

// RenderHolding renders the positions table, the totals and the anomalies.
func RenderHolding(h *Holding) string {
	partials := map[string]string{
		"holding_title":     "holding_title.md",
		"holding_positions": "holding_positions.md",
		"holding_totals":    "holding_totals.md",
		"holding_anomalies": "holding_anomalies.md",
	}
	return renderTemplate("holding", "holding.md", partials, h)
}

// RenderSummary renders only the totals.
func RenderSummary(h *Holding) string {
	partials := map[string]string{
		"holding_title":  "holding_title.md",
		"holding_totals": "holding_totals.md",
	}
	return renderTemplate("summary", "summary.md", partials, h)
}

// RenderAnomalies renders the data quality report.
func RenderAnomalies(h *Holding) string {
	partials := map[string]string{
		"holding_title":     "holding_title.md",
		"holding_anomalies": "holding_anomalies.md",
	}
	return renderTemplate("anomalies", "anomalies.md", partials, h)
}

// Funds is the data behind the mutual funds report.
type Funds struct {
	Date      date.Date
	Currency  string
	Rate      cartera.Rate
	Funds     []cartera.FundPosition
	Totals    cartera.FundTotals
	Anomalies []cartera.Anomaly
}

// NewFunds wraps a fund result computed on day with rate.
func NewFunds(on date.Date, currency string, rate cartera.Rate, res cartera.FundResult) *Funds {
	return &Funds{
		Date:      on,
		Currency:  currency,
		Rate:      rate,
		Funds:     res.Funds,
		Totals:    res.Totals,
		Anomalies: res.Anomalies,
	}
}

// RenderFunds renders the funds, their lots and the totals.
func RenderFunds(f *Funds) string {
	partials := map[string]string{
		"holding_title":     "holding_title.md",
		"funds_positions":   "funds_positions.md",
		"funds_totals":      "funds_totals.md",
		"holding_anomalies": "holding_anomalies.md",
	}
	return renderTemplate("funds", "funds.md", partials, f)
}

// Funding is the data behind the funding report.
type Funding struct {
	From, To date.Date
	Currency string
	cartera.Funding
}

// NewFunding wraps a funding computed over a period.
func NewFunding(from, to date.Date, currency string, res cartera.Funding) *Funding {
	return &Funding{From: from, To: to, Currency: currency, Funding: res}
}

// RenderFunding renders the carry summary and the daily details.
func RenderFunding(f *Funding) string {
	return renderTemplate("funding", "funding.md", nil, f)
}

// renderTemplate renders a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, "templates/"+mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		var content []byte
		// An empty file name results in an empty template.
		if file != "" {
			content, err = fs.ReadFile(templates, "templates/"+file)
			if err != nil {
				return fmt.Sprintf("error reading partial template %q: %v", file, err)
			}
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
