package quotes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	timestampPath = "$.chart.result[0].timestamp"
	closePath     = "$.chart.result[0].indicators.quote[0].close"
	errorPath     = "$.chart.error"
)

// YahooSource downloads sampled prices from the Yahoo Finance chart API
type YahooSource struct {
	client  *http.Client
	baseURL string
	log     zerolog.Logger
}

// NewYahooSource creates a source rooted at baseURL (e.g. https://query1.finance.yahoo.com).
// Request deadlines come from the caller's context.
func NewYahooSource(baseURL string, log zerolog.Logger) *YahooSource {
	return &YahooSource{
		client:  &http.Client{},
		baseURL: baseURL,
		log:     log.With().Str("source", "yahoo").Logger(),
	}
}

// Download fetches every symbol's samples. Symbols that fail or return no
// samples are left out; an error is only returned when nothing could be fetched.
func (y *YahooSource) Download(ctx context.Context, symbols []string, period, interval string) (Table, error) {
	table := make(Table, len(symbols))
	var errs error

	for _, symbol := range symbols {
		if err := ctx.Err(); err != nil {
			errs = errors.Join(errs, err)
			break
		}

		samples, err := y.chart(ctx, symbol, period, interval)
		if err != nil {
			y.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to fetch chart")
			errs = errors.Join(errs, fmt.Errorf("%s: %w", symbol, err))
			continue
		}
		if len(samples) == 0 {
			y.log.Debug().Str("symbol", symbol).Msg("No samples returned")
			continue
		}
		table[symbol] = samples
	}

	if len(table) == 0 && errs != nil {
		return nil, errs
	}
	return table, nil
}

func (y *YahooSource) chart(ctx context.Context, symbol, period, interval string) ([]Sample, error) {
	params := url.Values{}
	params.Add("range", period)
	params.Add("interval", interval)
	reqURL := y.baseURL + "/v8/finance/chart/" + url.PathEscape(symbol) + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := y.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chart: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chart API returned status %d: %s", resp.StatusCode, string(body))
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return parseChart(doc)
}

// parseChart pairs timestamps with close prices, skipping null closes
func parseChart(doc any) ([]Sample, error) {
	if apiErr, err := jsonpath.Get(errorPath, doc); err == nil && apiErr != nil {
		return nil, fmt.Errorf("chart API error: %v", apiErr)
	}

	rawTimestamps, err := jsonpath.Get(timestampPath, doc)
	if err != nil {
		return nil, fmt.Errorf("no timestamps in chart: %w", err)
	}
	rawCloses, err := jsonpath.Get(closePath, doc)
	if err != nil {
		return nil, fmt.Errorf("no close prices in chart: %w", err)
	}

	timestamps, _ := rawTimestamps.([]any)
	closes, _ := rawCloses.([]any)

	n := min(len(timestamps), len(closes))
	samples := make([]Sample, 0, n)
	for i := 0; i < n; i++ {
		ts, ok := timestamps[i].(float64)
		if !ok {
			continue
		}
		c, ok := closes[i].(float64)
		if !ok {
			// Yahoo reports bars without trades as null
			continue
		}
		samples = append(samples, Sample{
			At:    time.Unix(int64(ts), 0).UTC(),
			Close: decimal.NewFromFloat(c),
		})
	}
	return samples, nil
}
