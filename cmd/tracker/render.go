package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"
	"github.com/trogers1052/investment-tracker/internal/dashboard"
	"github.com/trogers1052/investment-tracker/internal/valuation"
)

const (
	rowFormat   = "%-8s %-10s %-8s %12s %8s %12s %12s %9s\n"
	watchFormat = "%-8s %12s\n"
)

// renderSnapshot writes the snapshot as a colored table
func renderSnapshot(w io.Writer, snap *dashboard.Snapshot) {
	header := color.New(color.FgYellow, color.Bold)
	header.Fprintf(w, "*** Portfolio (%s) ***\n", snap.Currency)

	if len(snap.Positions) == 0 {
		fmt.Fprintln(w, "No positions recorded yet.")
	} else {
		fmt.Fprintf(w, rowFormat, "TICKER", "DATE", "TIME", "INVESTED", "FEES", "PRICE", "P/L", "CHANGE")
		for _, row := range snap.Positions {
			rowColor(row.Trend).Fprintf(w, rowFormat,
				row.Ticker,
				row.Date(),
				row.Time(),
				row.AmountInvested.StringFixed(2),
				row.Fees.StringFixed(2),
				money(row.CurrentPrice, false),
				money(row.ProfitLoss, true),
				percent(row.ChangePercent),
			)
		}
	}

	s := snap.Summary
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Invested: %s  Fees: %s  Priced: %d/%d\n",
		s.TotalInvested.StringFixed(2), s.TotalFees.StringFixed(2), s.Priced, s.Positions)
	if s.Priced > 0 {
		total := color.New(color.FgWhite)
		switch s.TotalProfitLoss.Sign() {
		case 1:
			total = color.New(color.FgGreen)
		case -1:
			total = color.New(color.FgRed)
		}
		total.Fprintf(w, "Value: %s  P/L: %s\n", s.PricedValue.StringFixed(2), signed(s.TotalProfitLoss))
	}

	if len(snap.Watchlist) > 0 {
		tickers := make([]string, 0, len(snap.Watchlist))
		for t := range snap.Watchlist {
			tickers = append(tickers, t)
		}
		sort.Strings(tickers)

		fmt.Fprintln(w)
		header.Fprintln(w, "*** Watchlist ***")
		for _, t := range tickers {
			fmt.Fprintf(w, watchFormat, t, snap.Watchlist[t].Price.StringFixed(2))
		}
	}

	for _, warning := range snap.Warnings {
		color.New(color.FgYellow).Fprintf(w, "! %s\n", warning)
	}
}

func rowColor(t valuation.Trend) *color.Color {
	switch t {
	case valuation.Gain:
		return color.New(color.FgGreen)
	case valuation.Loss:
		return color.New(color.FgRed)
	case valuation.Unpriced:
		return color.New(color.FgYellow)
	default:
		return color.New(color.Reset)
	}
}

func money(d *decimal.Decimal, withSign bool) string {
	if d == nil {
		return "-"
	}
	if withSign {
		return signed(*d)
	}
	return d.StringFixed(2)
}

func percent(d *decimal.Decimal) string {
	if d == nil {
		return "-"
	}
	return signed(*d) + "%"
}

func signed(d decimal.Decimal) string {
	if d.IsPositive() {
		return "+" + d.StringFixed(2)
	}
	return d.StringFixed(2)
}
