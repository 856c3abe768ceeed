package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is the latest observed price for a ticker
type Quote struct {
	Ticker string          `json:"ticker"`
	Price  decimal.Decimal `json:"price"`
	At     time.Time       `json:"at"`
}

// Quotes maps a ticker to its latest quote. A missing ticker means the price is unknown.
type Quotes map[string]Quote

// Price returns the quoted price for ticker, if any
func (q Quotes) Price(ticker string) (decimal.Decimal, bool) {
	quote, ok := q[ticker]
	if !ok {
		return decimal.Decimal{}, false
	}
	return quote.Price, true
}

// EnrichedPosition is a Position valued against the current quotes.
// The derived fields are nil when no quote exists for the ticker.
type EnrichedPosition struct {
	Position
	CurrentPrice  *decimal.Decimal `json:"current_price"`
	ProfitLoss    *decimal.Decimal `json:"profit_loss"`
	ChangePercent *decimal.Decimal `json:"change_percent"`
}

// Priced reports whether a quote was found for the position
func (e EnrichedPosition) Priced() bool {
	return e.CurrentPrice != nil
}
