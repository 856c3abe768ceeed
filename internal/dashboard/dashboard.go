// Package dashboard runs the portfolio pipeline: load the recorded
// positions, fetch quotes for their tickers, value them and summarize.
// Hosts call Refresh on every interaction and Submit to record a buy.
package dashboard

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/trogers1052/investment-tracker/internal/metrics"
	"github.com/trogers1052/investment-tracker/internal/models"
	"github.com/trogers1052/investment-tracker/internal/quotes"
	"github.com/trogers1052/investment-tracker/internal/valuation"
	"golang.org/x/time/rate"
)

// AllUnpricedWarning is added when no position could be priced
const AllUnpricedWarning = "no market data available: showing positions without current prices"

// PositionStore is the persisted position list
type PositionStore interface {
	Positions(ctx context.Context) ([]models.Position, error)
	Submit(ctx context.Context, p models.Position) error
}

// QuoteFetcher resolves the latest price of a ticker set
type QuoteFetcher interface {
	Latest(ctx context.Context, tickers []string) quotes.Result
}

// EventPublisher announces newly recorded positions
type EventPublisher interface {
	PublishPositionAdded(ctx context.Context, p models.Position) error
}

// QuoteRecorder keeps a log of fetched quotes
type QuoteRecorder interface {
	RecordQuotes(ctx context.Context, q models.Quotes) error
}

// DefaultPublishTimeout bounds a position event publish when Options leaves it unset
const DefaultPublishTimeout = 3 * time.Second

// Options configures a Dashboard. Publisher and Recorder are optional.
// Watchlist tickers are quoted alongside the positions on every fetch.
type Options struct {
	Publisher          EventPublisher
	Recorder           QuoteRecorder
	Watchlist          []string
	MinRefreshInterval time.Duration
	PublishTimeout     time.Duration
	Currency           string
	Metrics            *metrics.Registry
}

// Row is one enriched position with its display classification
type Row struct {
	models.EnrichedPosition
	Trend valuation.Trend `json:"trend"`
}

// Snapshot is the result of one pipeline run
type Snapshot struct {
	Positions    []Row             `json:"positions"`
	Summary      valuation.Summary `json:"summary"`
	Watchlist    models.Quotes     `json:"watchlist"`
	Warnings     []string          `json:"warnings"`
	Currency     string            `json:"currency"`
	QuotesReused bool              `json:"quotes_reused"`
	GeneratedAt  time.Time         `json:"generated_at"`
}

// Dashboard owns the pipeline for one process
type Dashboard struct {
	store     PositionStore
	fetcher   QuoteFetcher
	publisher EventPublisher
	recorder  QuoteRecorder
	watchlist []string
	currency  string
	metrics   *metrics.Registry
	log       zerolog.Logger
	now       func() time.Time

	publishTimeout time.Duration

	// mu serializes quote fetches and guards the last result
	mu      sync.Mutex
	limiter *rate.Limiter
	last    *quotes.Result
}

// New creates a Dashboard
func New(store PositionStore, fetcher QuoteFetcher, opts Options, log zerolog.Logger) *Dashboard {
	limit := rate.Inf
	if opts.MinRefreshInterval > 0 {
		limit = rate.Every(opts.MinRefreshInterval)
	}
	if opts.Currency == "" {
		opts.Currency = "USD"
	}
	if opts.PublishTimeout <= 0 {
		opts.PublishTimeout = DefaultPublishTimeout
	}

	return &Dashboard{
		store:     store,
		fetcher:   fetcher,
		publisher: opts.Publisher,
		recorder:  opts.Recorder,
		watchlist: union(opts.Watchlist),
		currency:  opts.Currency,
		metrics:   opts.Metrics,
		log:       log.With().Str("component", "dashboard").Logger(),
		now:       time.Now,
		limiter:   rate.NewLimiter(limit, 1),

		publishTimeout: opts.PublishTimeout,
	}
}

// Refresh runs the pipeline. Refreshes closer together than the minimum
// interval reuse the previous quotes. Only persistence errors are returned.
func (d *Dashboard) Refresh(ctx context.Context) (*Snapshot, error) {
	return d.run(ctx, false)
}

// Submit validates input, records the position and returns a freshly
// fetched snapshot. Validation failures are returned as *models.ValidationError
// and leave the store untouched.
func (d *Dashboard) Submit(ctx context.Context, in models.PositionInput) (*Snapshot, error) {
	p, err := models.NewPosition(in)
	if err != nil {
		d.metrics.ObserveSubmit(metrics.SubmitRejected)
		d.log.Info().Err(err).Str("ticker", in.Ticker).Msg("Rejected position")
		return nil, err
	}

	if err := d.store.Submit(ctx, p); err != nil {
		d.metrics.ObserveSubmit(metrics.SubmitFailed)
		d.log.Error().Err(err).Str("ticker", p.Ticker).Msg("Failed to record position")
		return nil, fmt.Errorf("failed to record position: %w", err)
	}
	d.metrics.ObserveSubmit(metrics.SubmitAccepted)
	d.log.Info().
		Str("ticker", p.Ticker).
		Str("amount", p.AmountInvested.String()).
		Str("fees", p.Fees.String()).
		Time("invested_at", p.InvestedAt).
		Msg("Recorded position")

	if d.publisher != nil {
		d.publish(ctx, p)
	}

	return d.run(ctx, true)
}

func (d *Dashboard) run(ctx context.Context, force bool) (*Snapshot, error) {
	start := d.now()

	positions, err := d.store.Positions(ctx)
	if err != nil {
		d.log.Error().Err(err).Msg("Failed to load positions")
		return nil, err
	}

	tickers := union(valuation.Tickers(positions), d.watchlist)
	result, reused := d.quotes(ctx, tickers, force)
	enriched := valuation.Enrich(positions, result.Quotes)

	rows := make([]Row, len(enriched))
	for i, e := range enriched {
		rows[i] = Row{EnrichedPosition: e, Trend: valuation.Classify(e)}
	}

	summary := valuation.Summarize(enriched)
	warnings := append([]string{}, result.Warnings...)
	if summary.AllUnpriced {
		warnings = append(warnings, AllUnpricedWarning)
	}

	snap := &Snapshot{
		Positions:    rows,
		Summary:      summary,
		Watchlist:    watched(result.Quotes, d.watchlist),
		Warnings:     warnings,
		Currency:     d.currency,
		QuotesReused: reused,
		GeneratedAt:  d.now(),
	}
	d.metrics.ObservePipeline(snap.GeneratedAt.Sub(start).Seconds())
	return snap, nil
}

// publish announces p without letting a slow broker hold up the request
func (d *Dashboard) publish(ctx context.Context, p models.Position) {
	ctx, cancel := context.WithTimeout(ctx, d.publishTimeout)
	defer cancel()

	if err := d.publisher.PublishPositionAdded(ctx, p); err != nil {
		d.log.Warn().Err(err).Str("ticker", p.Ticker).Msg("Failed to publish position event")
	}
}

// quotes fetches unless the refresh is throttled and a previous result exists
func (d *Dashboard) quotes(ctx context.Context, tickers []string, force bool) (quotes.Result, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	allowed := d.limiter.AllowN(d.now(), 1)
	if !force && !allowed && d.last != nil {
		d.log.Debug().Msg("Refresh throttled, reusing previous quotes")
		return *d.last, true
	}

	result := d.fetcher.Latest(ctx, tickers)
	d.last = &result

	if d.recorder != nil && len(result.Quotes) > 0 {
		if err := d.recorder.RecordQuotes(ctx, result.Quotes); err != nil {
			d.log.Warn().Err(err).Msg("Failed to record quotes")
		}
	}
	return result, false
}

// union merges ticker lists into one sorted, upper-cased set
func union(lists ...[]string) []string {
	seen := make(map[string]struct{})
	for _, list := range lists {
		for _, t := range list {
			if t = strings.ToUpper(strings.TrimSpace(t)); t != "" {
				seen[t] = struct{}{}
			}
		}
	}

	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// watched picks the watchlist entries out of a quote mapping
func watched(q models.Quotes, watchlist []string) models.Quotes {
	out := make(models.Quotes, len(watchlist))
	for _, t := range watchlist {
		if quote, ok := q[t]; ok {
			out[t] = quote
		}
	}
	return out
}
