// Package store holds the recorded positions of the current session and
// persists them through a Backend after every mutation.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/trogers1052/investment-tracker/internal/models"
)

// ErrCorruptState is returned when persisted positions cannot be decoded.
// Callers must not treat it as an empty portfolio.
var ErrCorruptState = errors.New("persisted positions are corrupt")

// Backend loads and saves the full sequence of positions
type Backend interface {
	Load(ctx context.Context) ([]models.Position, error)
	Save(ctx context.Context, positions []models.Position) error
}

// Store is the session's position list. It is created once per process and
// shared by every pipeline run; all methods are safe for concurrent use.
type Store struct {
	backend Backend

	mu        sync.Mutex
	loaded    bool
	positions []models.Position
}

// New creates a Store over backend. Nothing is read until first access.
func New(backend Backend) *Store {
	return &Store{backend: backend}
}

// Load reads the persisted positions on first access; later calls are no-ops
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureLoaded(ctx)
}

// Positions returns a copy of the positions in insertion order
func (s *Store) Positions(ctx context.Context) ([]models.Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	out := make([]models.Position, len(s.positions))
	copy(out, s.positions)
	return out, nil
}

// Len returns the number of recorded positions
func (s *Store) Len(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return 0, err
	}
	return len(s.positions), nil
}

// Append adds an already validated position in memory. It must be followed by Save.
func (s *Store) Append(ctx context.Context, p models.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}
	s.positions = append(s.positions, p)
	return nil
}

// Save persists the full current sequence, overwriting previous contents
func (s *Store) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}
	return s.save(ctx)
}

// Submit appends p and saves in one step. If the save fails the position is
// dropped again, so memory never runs ahead of what was persisted.
func (s *Store) Submit(ctx context.Context, p models.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}

	s.positions = append(s.positions, p)
	if err := s.save(ctx); err != nil {
		s.positions = s.positions[:len(s.positions)-1]
		return err
	}
	return nil
}

func (s *Store) ensureLoaded(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	positions, err := s.backend.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load positions: %w", err)
	}
	s.positions = positions
	s.loaded = true
	return nil
}

func (s *Store) save(ctx context.Context) error {
	if err := s.backend.Save(ctx, s.positions); err != nil {
		return fmt.Errorf("failed to save positions: %w", err)
	}
	return nil
}
