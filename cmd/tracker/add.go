package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/trogers1052/investment-tracker/internal/models"
)

type addFlags struct {
	ticker string
	amount string
	fees   string
	date   string
	time   string
}

func addCmd(g *globals) *cobra.Command {
	f := &addFlags{}
	now := time.Now()

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a buy transaction",
		Example: "  tracker add --ticker AAPL --amount 100\n" +
			"  tracker add --ticker TSLA --amount 250.50 --fees 1 --date 2026-01-02 --time 15:30",
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := f.input()
			if err != nil {
				return err
			}

			a, err := newApp(g.cfg, g.log)
			if err != nil {
				return err
			}
			defer a.Close()

			snap, err := a.dash.Submit(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s\n\n", strings.ToUpper(strings.TrimSpace(in.Ticker)))
			renderSnapshot(cmd.OutOrStdout(), snap)
			return nil
		},
	}

	cmd.Flags().StringVar(&f.ticker, "ticker", "", "ticker symbol, e.g. AAPL")
	cmd.Flags().StringVar(&f.amount, "amount", "", "amount invested")
	cmd.Flags().StringVar(&f.fees, "fees", "0", "transaction fees")
	cmd.Flags().StringVar(&f.date, "date", now.Format(models.DateLayout), "investment date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.time, "time", now.Format(models.TimeLayout), "investment time (HH:MM[:SS])")
	return cmd
}

// input parses the numeric flags; everything else is validated by the dashboard
func (f *addFlags) input() (models.PositionInput, error) {
	amount, err := decimal.NewFromString(f.amount)
	if err != nil {
		return models.PositionInput{}, fmt.Errorf("invalid --amount %q: %w", f.amount, err)
	}
	fees, err := decimal.NewFromString(f.fees)
	if err != nil {
		return models.PositionInput{}, fmt.Errorf("invalid --fees %q: %w", f.fees, err)
	}
	return models.PositionInput{
		Ticker: f.ticker,
		Amount: amount,
		Fees:   fees,
		Date:   f.date,
		Time:   f.time,
	}, nil
}
