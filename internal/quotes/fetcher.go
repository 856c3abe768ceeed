// Package quotes turns a set of tickers into their latest known prices.
// Provider failures never escape this package: they degrade to an empty or
// partial mapping plus warnings.
package quotes

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
	"github.com/trogers1052/investment-tracker/internal/metrics"
	"github.com/trogers1052/investment-tracker/internal/models"
)

// Sample is one sampled close price
type Sample struct {
	At    time.Time
	Close decimal.Decimal
}

// Table holds the samples returned per symbol
type Table map[string][]Sample

// Source is a market data provider queried by symbols and a period/interval pair
type Source interface {
	Download(ctx context.Context, symbols []string, period, interval string) (Table, error)
}

// Options configures a Fetcher
type Options struct {
	Period   string
	Interval string
	Timeout  time.Duration
	Metrics  *metrics.Registry
}

// Result is the outcome of one fetch
type Result struct {
	Quotes   models.Quotes
	Missing  []string
	Warnings []string
}

// Fetcher resolves the latest price of each requested ticker
type Fetcher struct {
	source   Source
	period   string
	interval string
	timeout  time.Duration
	breaker  *gobreaker.CircuitBreaker
	metrics  *metrics.Registry
	log      zerolog.Logger
}

// NewFetcher creates a Fetcher over source
func NewFetcher(source Source, opts Options, log zerolog.Logger) *Fetcher {
	if opts.Period == "" {
		opts.Period = "1d"
	}
	if opts.Interval == "" {
		opts.Interval = "1h"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}

	st := gobreaker.Settings{Name: "quotes"}
	st.Interval = 60 * time.Second
	st.Timeout = 30 * time.Second
	st.ReadyToTrip = func(counts gobreaker.Counts) bool {
		return counts.ConsecutiveFailures >= 3
	}

	return &Fetcher{
		source:   source,
		period:   opts.Period,
		interval: opts.Interval,
		timeout:  opts.Timeout,
		breaker:  gobreaker.NewCircuitBreaker(st),
		metrics:  opts.Metrics,
		log:      log.With().Str("component", "quotes").Logger(),
	}
}

// Latest returns the chronologically last sampled price of each ticker.
// An empty ticker set returns an empty mapping without contacting the source.
func (f *Fetcher) Latest(ctx context.Context, tickers []string) Result {
	symbols := normalize(tickers)
	if len(symbols) == 0 {
		f.metrics.ObserveFetch(metrics.FetchSkipped)
		return Result{Quotes: models.Quotes{}}
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	v, err := f.breaker.Execute(func() (interface{}, error) {
		return f.source.Download(ctx, symbols, f.period, f.interval)
	})
	if err != nil {
		f.log.Warn().Err(err).Strs("symbols", symbols).Msg("Quote fetch failed")
		f.metrics.ObserveFetch(metrics.FetchFailed)
		return Result{
			Quotes:   models.Quotes{},
			Missing:  symbols,
			Warnings: []string{fmt.Sprintf("market data unavailable: %v", err)},
		}
	}

	table, _ := v.(Table)
	quotes := latest(table, symbols)

	var missing []string
	for _, s := range symbols {
		if _, ok := quotes[s]; !ok {
			missing = append(missing, s)
		}
	}

	result := Result{Quotes: quotes, Missing: missing}
	switch {
	case len(quotes) == 0:
		result.Warnings = []string{"no market data available for any ticker"}
		f.metrics.ObserveFetch(metrics.FetchEmpty)
	case len(missing) > 0:
		result.Warnings = []string{"no market data for " + strings.Join(missing, ", ")}
		f.metrics.ObserveFetch(metrics.FetchPartial)
	default:
		f.metrics.ObserveFetch(metrics.FetchOK)
	}

	f.log.Debug().
		Int("requested", len(symbols)).
		Int("priced", len(quotes)).
		Strs("missing", missing).
		Msg("Fetched quotes")

	return result
}

// latest keeps the newest sample of each requested symbol
func latest(table Table, symbols []string) models.Quotes {
	quotes := make(models.Quotes, len(symbols))
	for _, symbol := range symbols {
		samples := table[symbol]
		if len(samples) == 0 {
			continue
		}
		newest := samples[0]
		for _, s := range samples[1:] {
			if s.At.After(newest.At) {
				newest = s
			}
		}
		quotes[symbol] = models.Quote{Ticker: symbol, Price: newest.Close, At: newest.At}
	}
	return quotes
}

func normalize(tickers []string) []string {
	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		if t = strings.ToUpper(strings.TrimSpace(t)); t != "" {
			out = append(out, t)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
