package models

import "time"

// Event type constants
const (
	EventPositionAdded = "POSITION_ADDED"
)

// PositionEvent represents a Kafka event for a newly recorded position
type PositionEvent struct {
	EventType string    `json:"event_type"`
	Ticker    string    `json:"ticker"`
	Position  *Position `json:"position,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
