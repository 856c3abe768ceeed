package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	"github.com/trogers1052/investment-tracker/internal/models"
)

// positionRecord is the on-disk shape of a Position
type positionRecord struct {
	Ticker         string      `json:"ticker"`
	AmountInvested json.Number `json:"amount_invested"`
	Fees           json.Number `json:"fees"`
	Date           string      `json:"date"`
	Time           string      `json:"time"`
}

// FileBackend persists positions as a single JSON document (an array of records)
type FileBackend struct {
	path string
}

// NewFileBackend creates a backend storing positions at path
func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

// Path returns the document location
func (f *FileBackend) Path() string {
	return f.path
}

// Load reads the document. A missing file is an empty portfolio.
func (f *FileBackend) Load(ctx context.Context) ([]models.Position, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []models.Position{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.path, err)
	}

	var records []positionRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptState, f.path, err)
	}

	positions := make([]models.Position, 0, len(records))
	for i, r := range records {
		p, err := r.toPosition()
		if err != nil {
			return nil, fmt.Errorf("%w: %s: record %d: %v", ErrCorruptState, f.path, i, err)
		}
		positions = append(positions, p)
	}
	return positions, nil
}

// Save overwrites the document with all positions.
// The write goes to a temporary file first, so a failed save leaves the previous document intact.
func (f *FileBackend) Save(ctx context.Context, positions []models.Position) error {
	records := make([]positionRecord, 0, len(positions))
	for _, p := range positions {
		records = append(records, positionRecord{
			Ticker:         p.Ticker,
			AmountInvested: json.Number(p.AmountInvested.String()),
			Fees:           json.Number(p.Fees.String()),
			Date:           p.Date(),
			Time:           p.Time(),
		})
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode positions: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write positions: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync positions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", f.path, err)
	}
	return nil
}

// toPosition only checks that the record parses; the value invariants
// were enforced when the position was accepted.
func (r positionRecord) toPosition() (models.Position, error) {
	amount, err := decimal.NewFromString(r.AmountInvested.String())
	if err != nil {
		return models.Position{}, fmt.Errorf("invalid amount_invested %q: %w", r.AmountInvested, err)
	}

	fees := decimal.Zero
	if r.Fees != "" {
		fees, err = decimal.NewFromString(r.Fees.String())
		if err != nil {
			return models.Position{}, fmt.Errorf("invalid fees %q: %w", r.Fees, err)
		}
	}

	investedAt, err := models.ParseInvestedAt(r.Date, r.Time)
	if err != nil {
		return models.Position{}, err
	}

	return models.Position{
		Ticker:         r.Ticker,
		AmountInvested: amount,
		Fees:           fees,
		InvestedAt:     investedAt,
	}, nil
}
