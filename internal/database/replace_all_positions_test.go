package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trogers1052/investment-tracker/internal/models"
)

func samplePositions() []models.Position {
	at := time.Date(2026, 1, 2, 9, 30, 0, 0, time.Local)
	return []models.Position{
		{Ticker: "AAPL", AmountInvested: decimal.NewFromInt(100), Fees: decimal.NewFromInt(1), InvestedAt: at},
		{Ticker: "TSLA", AmountInvested: decimal.NewFromInt(200), Fees: decimal.Zero, InvestedAt: at.Add(time.Hour)},
	}
}

func TestReplaceAllPositions_Success(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db := &DB{conn: sqlDB}
	positions := samplePositions()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM positions").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO positions").
		WithArgs("AAPL", positions[0].AmountInvested, positions[0].Fees, "2026-01-02 09:30:00", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO positions").
		WithArgs("TSLA", positions[1].AmountInvested, positions[1].Fees, "2026-01-02 10:30:00", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()
	// the deferred Rollback after Commit never reaches the driver

	err = db.ReplaceAllPositions(context.Background(), positions)
	require.NoError(t, err)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceAllPositions_EmptyClearsTable(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db := &DB{conn: sqlDB}

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM positions").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	require.NoError(t, db.Save(context.Background(), nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceAllPositions_ReturnsErrorIfBeginFails(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db := &DB{conn: sqlDB}

	mock.ExpectBegin().WillReturnError(errors.New("begin failed"))

	err = db.ReplaceAllPositions(context.Background(), samplePositions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to begin transaction")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceAllPositions_ReturnsErrorIfDeleteFails(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db := &DB{conn: sqlDB}

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM positions").WillReturnError(errors.New("delete failed"))
	mock.ExpectRollback()

	err = db.ReplaceAllPositions(context.Background(), samplePositions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to delete existing positions")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceAllPositions_RollsBackIfInsertFails(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db := &DB{conn: sqlDB}

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM positions").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO positions").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO positions").WillReturnError(errors.New("check constraint"))
	mock.ExpectRollback()

	err = db.ReplaceAllPositions(context.Background(), samplePositions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert position TSLA")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAllPositions_Scans(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db := &DB{conn: sqlDB}

	rows := sqlmock.NewRows([]string{"ticker", "amount_invested", "fees", "invested_at"}).
		AddRow("AAPL", "100.50", "0", time.Date(2026, 1, 2, 9, 30, 0, 0, time.UTC)).
		AddRow("TSLA", "200", "1.25", time.Date(2026, 1, 3, 15, 0, 5, 0, time.UTC))
	mock.ExpectQuery("SELECT ticker, amount_invested, fees, invested_at FROM positions").WillReturnRows(rows)

	positions, err := db.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, positions, 2)

	assert.Equal(t, "AAPL", positions[0].Ticker)
	assert.True(t, decimal.RequireFromString("100.50").Equal(positions[0].AmountInvested))
	assert.Equal(t, "2026-01-02", positions[0].Date())
	assert.Equal(t, "09:30:00", positions[0].Time())
	assert.Equal(t, time.Local, positions[0].InvestedAt.Location())
	assert.True(t, decimal.RequireFromString("1.25").Equal(positions[1].Fees))
	assert.Equal(t, "15:00:05", positions[1].Time())

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAllPositions_EmptyTable(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db := &DB{conn: sqlDB}

	mock.ExpectQuery("SELECT ticker").
		WillReturnRows(sqlmock.NewRows([]string{"ticker", "amount_invested", "fees", "invested_at"}))

	positions, err := db.GetAllPositions(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, positions)
	assert.Empty(t, positions)
}

func TestGetAllPositions_QueryError(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db := &DB{conn: sqlDB}

	mock.ExpectQuery("SELECT ticker").WillReturnError(errors.New("connection reset"))

	_, err = db.GetAllPositions(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get positions")
}
