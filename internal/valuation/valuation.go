// Package valuation joins recorded positions with the latest quotes.
// Everything here is a pure function of its inputs.
package valuation

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/trogers1052/investment-tracker/internal/models"
)

var hundred = decimal.NewFromInt(100)

// Tickers returns the distinct tickers of positions in sorted order
func Tickers(positions []models.Position) []string {
	seen := make(map[string]struct{}, len(positions))
	tickers := make([]string, 0, len(positions))
	for _, p := range positions {
		if _, ok := seen[p.Ticker]; ok {
			continue
		}
		seen[p.Ticker] = struct{}{}
		tickers = append(tickers, p.Ticker)
	}
	sort.Strings(tickers)
	return tickers
}

// Enrich values each position against quotes, preserving input order.
// Positions without a quote are kept with nil derived fields.
func Enrich(positions []models.Position, quotes models.Quotes) []models.EnrichedPosition {
	out := make([]models.EnrichedPosition, 0, len(positions))
	for _, p := range positions {
		out = append(out, enrichOne(p, quotes))
	}
	return out
}

func enrichOne(p models.Position, quotes models.Quotes) models.EnrichedPosition {
	e := models.EnrichedPosition{Position: p}

	price, ok := quotes.Price(p.Ticker)
	if !ok {
		return e
	}

	profitLoss := price.Sub(p.AmountInvested)
	// AmountInvested > 0 is guaranteed by models.NewPosition.
	changePercent := profitLoss.Div(p.AmountInvested).Mul(hundred)

	e.CurrentPrice = &price
	e.ProfitLoss = &profitLoss
	e.ChangePercent = &changePercent
	return e
}
