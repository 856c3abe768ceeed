package valuation

import (
	"github.com/shopspring/decimal"
	"github.com/trogers1052/investment-tracker/internal/models"
)

// Trend classifies an enriched position for display
type Trend int

const (
	Unpriced Trend = iota
	Gain
	Loss
	Neutral
)

func (t Trend) String() string {
	switch t {
	case Gain:
		return "gain"
	case Loss:
		return "loss"
	case Neutral:
		return "neutral"
	default:
		return "unpriced"
	}
}

// MarshalText lets Trend appear by name in JSON
func (t Trend) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Classify returns the sign of the position's change
func Classify(e models.EnrichedPosition) Trend {
	if e.ProfitLoss == nil {
		return Unpriced
	}
	switch e.ProfitLoss.Sign() {
	case 1:
		return Gain
	case -1:
		return Loss
	default:
		return Neutral
	}
}

// Summary aggregates a valuation batch
type Summary struct {
	Positions       int             `json:"positions"`
	Priced          int             `json:"priced"`
	Unpriced        int             `json:"unpriced"`
	TotalInvested   decimal.Decimal `json:"total_invested"`
	TotalFees       decimal.Decimal `json:"total_fees"`
	PricedInvested  decimal.Decimal `json:"priced_invested"`
	PricedValue     decimal.Decimal `json:"priced_value"`
	TotalProfitLoss decimal.Decimal `json:"total_profit_loss"`
	AllUnpriced     bool            `json:"all_unpriced"`
}

// Summarize totals a batch. Value and profit/loss only cover priced positions.
func Summarize(enriched []models.EnrichedPosition) Summary {
	s := Summary{
		Positions:       len(enriched),
		TotalInvested:   decimal.Zero,
		TotalFees:       decimal.Zero,
		PricedInvested:  decimal.Zero,
		PricedValue:     decimal.Zero,
		TotalProfitLoss: decimal.Zero,
	}

	for _, e := range enriched {
		s.TotalInvested = s.TotalInvested.Add(e.AmountInvested)
		s.TotalFees = s.TotalFees.Add(e.Fees)
		if !e.Priced() {
			s.Unpriced++
			continue
		}
		s.Priced++
		s.PricedInvested = s.PricedInvested.Add(e.AmountInvested)
		s.PricedValue = s.PricedValue.Add(*e.CurrentPrice)
		s.TotalProfitLoss = s.TotalProfitLoss.Add(*e.ProfitLoss)
	}

	s.AllUnpriced = s.Positions > 0 && s.Priced == 0
	return s
}
