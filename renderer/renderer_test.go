package renderer

import (
	"strings"
	"testing"

	"github.com/etnz/cartera"
	"github.com/etnz/cartera/date"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

func sample(t *testing.T) *Holding {
	t.Helper()
	on := date.New(2025, 3, 10)
	trades := []cartera.Trade{
		cartera.NewTrade(date.New(2025, 1, 2), cartera.Buy, "GGAL", cartera.Q(10), cartera.M(1000, "ARS")),
		cartera.NewTrade(date.New(2025, 1, 3), cartera.Buy, "YPFD", cartera.Q(5), cartera.M(20000, "ARS")),
		cartera.NewTrade(date.New(2025, 1, 4), cartera.Sell, "AL30", cartera.Q(1), cartera.M(70, "ARS")),
	}
	change := cartera.Percent(2)
	quotes := cartera.Quotes{
		"GGAL": {Price: cartera.M(1200, "ARS"), DailyChange: &change, Class: "ACCION"},
	}
	res := cartera.Compute(trades, quotes, cartera.R(1100), nil, cartera.DefaultOptions())
	return NewHolding(on, "ARS", cartera.R(1100), res)
}

// tables parses markdown and returns the number of body rows of each table.
func tables(t *testing.T, md string) []int {
	t.Helper()
	src := []byte(md)
	root := goldmark.New(goldmark.WithExtensions(extension.GFM)).Parser().Parse(text.NewReader(src))

	var rows []int
	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if table, ok := n.(*east.Table); ok {
			count := 0
			for c := table.FirstChild(); c != nil; c = c.NextSibling() {
				if _, ok := c.(*east.TableRow); ok {
					count++
				}
			}
			rows = append(rows, count)
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	require.NoError(t, err)
	return rows
}

// headings returns the text of every heading in md.
func headings(t *testing.T, md string) []string {
	t.Helper()
	src := []byte(md)
	root := goldmark.DefaultParser().Parse(text.NewReader(src))
	var titles []string
	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if h, ok := n.(*ast.Heading); ok && entering {
			var b strings.Builder
			for i := 0; i < h.Lines().Len(); i++ {
				line := h.Lines().At(i)
				b.Write(line.Value(src))
			}
			titles = append(titles, b.String())
		}
		return ast.WalkContinue, nil
	})
	require.NoError(t, err)
	return titles
}

func TestRenderHolding(t *testing.T) {
	md := RenderHolding(sample(t))
	require.NotContains(t, md, "error ")

	assert.Equal(t, []string{"Portfolio on 2025-03-10", "Positions", "Totals", "Anomalies"}, headings(t, md))
	// Two positions, seven totals lines, two anomalies: the over-sell and the missing YPFD price.
	assert.Equal(t, []int{2, 7, 2}, tables(t, md))

	assert.Contains(t, md, "| YPFD |")
	assert.Contains(t, md, "| GGAL | ACCION | 10 |")
	assert.Contains(t, md, "**1100.0000** ARS per USD")
	assert.Contains(t, md, "| over-sell | AL30 | 2025-01-04 |")
	assert.Contains(t, md, "| USD Result |")
}

func TestRenderHolding_Empty(t *testing.T) {
	h := NewHolding(date.New(2025, 3, 10), "ARS", cartera.R(1100), cartera.Compute(nil, nil, cartera.R(1100), nil, cartera.DefaultOptions()))
	md := RenderHolding(h)
	assert.Contains(t, md, "No open positions.")
	assert.Equal(t, []string{"Portfolio on 2025-03-10", "Totals"}, headings(t, md))
	assert.Equal(t, []int{7}, tables(t, md))
}

func TestRenderSummary(t *testing.T) {
	md := RenderSummary(sample(t))
	assert.Equal(t, []string{"Portfolio on 2025-03-10", "Totals"}, headings(t, md))
	assert.NotContains(t, md, "GGAL")
}

func TestRenderAnomalies(t *testing.T) {
	md := RenderAnomalies(sample(t))
	assert.Equal(t, []string{"Portfolio on 2025-03-10", "Anomalies"}, headings(t, md))
	assert.Equal(t, []int{2}, tables(t, md))
	assert.Contains(t, md, "missing-price")
}

func TestRenderFunds(t *testing.T) {
	movements := []cartera.Trade{
		cartera.NewTrade(date.New(2025, 3, 3), cartera.Buy, "ALPHA", cartera.Q(100), cartera.M(100, "ARS")),
		cartera.NewTrade(date.New(2025, 3, 7), cartera.Buy, "ALPHA", cartera.Q(50), cartera.M(104, "ARS")),
		cartera.NewTrade(date.New(2025, 3, 7), cartera.Buy, "BETA", cartera.Q(10), cartera.M(50, "ARS")),
	}
	prices := cartera.NewFundPrices().
		Append("ALPHA", date.New(2025, 3, 7), cartera.M(104, "ARS")).
		Append("ALPHA", date.New(2025, 3, 10), cartera.M(105, "ARS"))
	on := date.New(2025, 3, 10)
	res := cartera.ComputeFunds(movements, prices, on, cartera.R(1000), nil, cartera.DefaultOptions())
	md := RenderFunds(NewFunds(on, "ARS", cartera.R(1000), res))
	require.NotContains(t, md, "error ")

	assert.Equal(t, []string{"Portfolio on 2025-03-10", "Funds", "Lots", "Totals", "Anomalies"}, headings(t, md))
	// Two funds, three lots, five totals lines, BETA has no unit value.
	assert.Equal(t, []int{2, 3, 5, 1}, tables(t, md))
	assert.Contains(t, md, "| ALPHA | 2025-03-03 | 100 |")
}

func TestRenderFunds_Empty(t *testing.T) {
	on := date.New(2025, 3, 10)
	res := cartera.ComputeFunds(nil, nil, on, cartera.R(1000), nil, cartera.DefaultOptions())
	md := RenderFunds(NewFunds(on, "ARS", cartera.R(1000), res))
	assert.Contains(t, md, "No open fund.")
	assert.Equal(t, []int{5}, tables(t, md))
}

func TestRenderFunding(t *testing.T) {
	from, to := date.New(2025, 3, 3), date.New(2025, 3, 5)
	loans := []cartera.Caucion{{Start: from, End: to, Capital: cartera.M(1_000_000, "ARS"), TNA: 36.5}}
	movements := []cartera.Trade{cartera.NewTrade(from, cartera.Buy, "ALPHA", cartera.Q(10_000), cartera.M(100, "ARS"))}
	prices := cartera.NewFundPrices().Append("ALPHA", from, cartera.M(100, "ARS"))
	res := cartera.ComputeFunding(loans, movements, prices, from, to, cartera.DefaultOptions())

	md := RenderFunding(NewFunding(from, to, "ARS", res))
	require.NotContains(t, md, "error ")
	assert.Equal(t, []string{"Funding from 2025-03-03 to 2025-03-05", "Days"}, headings(t, md))
	assert.Equal(t, []int{5, 3}, tables(t, md))
	assert.Contains(t, md, "| 2025-03-04 |")
}

func TestRenderTemplate_Errors(t *testing.T) {
	assert.Contains(t, renderTemplate("x", "nothing.md", nil, nil), "error reading main template")
	assert.Contains(t, renderTemplate("holding", "holding.md", map[string]string{"holding_title": "nothing.md"}, nil), "error reading partial template")
}
