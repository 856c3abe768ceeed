package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Layouts used for the date and time-of-day of a position
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

// Validation sentinels returned (wrapped) by NewPosition
var (
	ErrInvalidTicker    = errors.New("ticker must not be empty")
	ErrInvalidAmount    = errors.New("amount invested must be greater than zero")
	ErrInvalidFees      = errors.New("fees must not be negative")
	ErrInvalidTimestamp = errors.New("invalid investment date or time")
)

// ValidationError reports which input field was rejected
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Position represents one recorded buy transaction
type Position struct {
	Ticker         string          `json:"ticker"`
	AmountInvested decimal.Decimal `json:"amount_invested"`
	Fees           decimal.Decimal `json:"fees"`
	InvestedAt     time.Time       `json:"invested_at"`
}

// Date returns the calendar date of the investment
func (p Position) Date() string {
	return p.InvestedAt.Format(DateLayout)
}

// Time returns the time of day of the investment
func (p Position) Time() string {
	return p.InvestedAt.Format(TimeLayout)
}

// PositionInput is the raw form submitted by the user.
// Date and Time are strings so the form can be passed through unparsed.
type PositionInput struct {
	Ticker string          `json:"ticker"`
	Amount decimal.Decimal `json:"amount"`
	Fees   decimal.Decimal `json:"fees"`
	Date   string          `json:"date"`
	Time   string          `json:"time"`
}

// NewPosition validates user input and builds a Position.
// It is the only way positions are admitted into the store.
func NewPosition(in PositionInput) (Position, error) {
	ticker := strings.ToUpper(strings.TrimSpace(in.Ticker))
	if ticker == "" {
		return Position{}, &ValidationError{Field: "ticker", Err: ErrInvalidTicker}
	}
	if !in.Amount.IsPositive() {
		return Position{}, &ValidationError{Field: "amount", Err: ErrInvalidAmount}
	}
	if in.Fees.IsNegative() {
		return Position{}, &ValidationError{Field: "fees", Err: ErrInvalidFees}
	}

	investedAt, err := ParseInvestedAt(in.Date, in.Time)
	if err != nil {
		return Position{}, err
	}

	return Position{
		Ticker:         ticker,
		AmountInvested: in.Amount,
		Fees:           in.Fees,
		InvestedAt:     investedAt,
	}, nil
}

// clockLayouts are the accepted time-of-day forms; hours may have one digit
var clockLayouts = []string{TimeLayout, "15:04"}

// ParseInvestedAt combines a calendar date and an optional time of day
// (H:MM:SS or H:MM) into a local timestamp truncated to the second.
// Failures are *ValidationError naming the offending field.
func ParseInvestedAt(date, clock string) (time.Time, error) {
	date = strings.TrimSpace(date)
	clock = strings.TrimSpace(clock)
	if date == "" {
		return time.Time{}, &ValidationError{Field: "date", Err: fmt.Errorf("%w: date is required", ErrInvalidTimestamp)}
	}

	day, err := time.ParseInLocation(DateLayout, date, time.Local)
	if err != nil {
		return time.Time{}, &ValidationError{Field: "date", Err: fmt.Errorf("%w: %v", ErrInvalidTimestamp, err)}
	}
	if clock == "" {
		return day, nil
	}

	var tod time.Time
	for _, layout := range clockLayouts {
		if tod, err = time.Parse(layout, clock); err == nil {
			break
		}
	}
	if err != nil {
		return time.Time{}, &ValidationError{Field: "time", Err: fmt.Errorf("%w: %q is not H:MM or H:MM:SS", ErrInvalidTimestamp, clock)}
	}

	return time.Date(day.Year(), day.Month(), day.Day(), tod.Hour(), tod.Minute(), tod.Second(), 0, time.Local), nil
}
