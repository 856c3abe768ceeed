package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/trogers1052/investment-tracker/internal/models"
)

// ErrNoQuoteSample is returned when a ticker has no recorded sample
var ErrNoQuoteSample = errors.New("quote sample not found")

// RecordQuotes upserts the fetched quotes into the quote_samples log
func (db *DB) RecordQuotes(ctx context.Context, quotes models.Quotes) error {
	if len(quotes) == 0 {
		return nil
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO quote_samples (ticker, sampled_at, price)
		VALUES ($1, $2, $3)
		ON CONFLICT (ticker, sampled_at) DO UPDATE SET
			price = EXCLUDED.price,
			fetched_at = NOW()
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	tickers := make([]string, 0, len(quotes))
	for t := range quotes {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	for _, t := range tickers {
		q := quotes[t]
		if _, err := stmt.ExecContext(ctx, q.Ticker, q.At, q.Price); err != nil {
			return fmt.Errorf("failed to insert quote sample for %s: %w", q.Ticker, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetLatestQuoteSample returns the most recent recorded sample of ticker
func (db *DB) GetLatestQuoteSample(ctx context.Context, ticker string) (*models.Quote, error) {
	query := `
		SELECT ticker, price, sampled_at
		FROM quote_samples
		WHERE ticker = $1
		ORDER BY sampled_at DESC
		LIMIT 1
	`
	var q models.Quote
	err := db.conn.QueryRowContext(ctx, query, ticker).Scan(&q.Ticker, &q.Price, &q.At)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNoQuoteSample, ticker)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get quote sample: %w", err)
	}
	return &q, nil
}
