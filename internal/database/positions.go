package database

import (
	"context"
	"fmt"
	"time"

	"github.com/trogers1052/investment-tracker/internal/models"
)

// invested_at is stored as a TIMESTAMP without zone holding local wall time
const timestampLayout = "2006-01-02 15:04:05"

// GetAllPositions returns every position in insertion order
func (db *DB) GetAllPositions(ctx context.Context) ([]models.Position, error) {
	query := `
		SELECT ticker, amount_invested, fees, invested_at
		FROM positions
		ORDER BY id ASC
	`
	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get positions: %w", err)
	}
	defer rows.Close()

	positions := []models.Position{}
	for rows.Next() {
		var p models.Position
		var investedAt time.Time
		if err := rows.Scan(&p.Ticker, &p.AmountInvested, &p.Fees, &investedAt); err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		p.InvestedAt = localWallTime(investedAt)
		positions = append(positions, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate positions: %w", err)
	}
	return positions, nil
}

// ReplaceAllPositions overwrites the positions table with the given
// sequence inside a single transaction
func (db *DB) ReplaceAllPositions(ctx context.Context, positions []models.Position) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM positions`); err != nil {
		return fmt.Errorf("failed to delete existing positions: %w", err)
	}

	query := `
		INSERT INTO positions (ticker, amount_invested, fees, invested_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	now := time.Now()
	for _, p := range positions {
		_, err := tx.ExecContext(ctx, query,
			p.Ticker, p.AmountInvested, p.Fees, p.InvestedAt.Format(timestampLayout), now,
		)
		if err != nil {
			return fmt.Errorf("failed to insert position %s: %w", p.Ticker, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Load implements store.Backend
func (db *DB) Load(ctx context.Context) ([]models.Position, error) {
	return db.GetAllPositions(ctx)
}

// Save implements store.Backend
func (db *DB) Save(ctx context.Context, positions []models.Position) error {
	return db.ReplaceAllPositions(ctx, positions)
}

// lib/pq returns zone-less timestamps in UTC; reinterpret the wall clock as local
func localWallTime(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.Local)
}
