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

func sampleQuotes() models.Quotes {
	at := time.Date(2026, 1, 2, 15, 30, 0, 0, time.UTC)
	return models.Quotes{
		"TSLA": {Ticker: "TSLA", Price: decimal.NewFromInt(150), At: at},
		"AAPL": {Ticker: "AAPL", Price: decimal.NewFromInt(150), At: at},
	}
}

func TestRecordQuotes_Upserts(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db := &DB{conn: sqlDB}
	quotes := sampleQuotes()

	mock.ExpectBegin()
	prep := mock.ExpectPrepare("INSERT INTO quote_samples")
	prep.ExpectExec().WithArgs("AAPL", quotes["AAPL"].At, quotes["AAPL"].Price).WillReturnResult(sqlmock.NewResult(1, 1))
	prep.ExpectExec().WithArgs("TSLA", quotes["TSLA"].At, quotes["TSLA"].Price).WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	require.NoError(t, db.RecordQuotes(context.Background(), quotes))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordQuotes_EmptyIsNoop(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db := &DB{conn: sqlDB}

	require.NoError(t, db.RecordQuotes(context.Background(), models.Quotes{}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordQuotes_InsertFails(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db := &DB{conn: sqlDB}

	mock.ExpectBegin()
	prep := mock.ExpectPrepare("INSERT INTO quote_samples")
	prep.ExpectExec().WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err = db.RecordQuotes(context.Background(), sampleQuotes())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert quote sample for AAPL")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetLatestQuoteSample_NotFound(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db := &DB{conn: sqlDB}

	mock.ExpectQuery("SELECT ticker, price, sampled_at FROM quote_samples").
		WithArgs("XXXX").
		WillReturnRows(sqlmock.NewRows([]string{"ticker", "price", "sampled_at"}))

	_, err = db.GetLatestQuoteSample(context.Background(), "XXXX")
	assert.ErrorIs(t, err, ErrNoQuoteSample)
}

func TestQuoteSamplesRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)
	ctx := context.Background()

	t.Run("latest sample wins", func(t *testing.T) {
		testDB.TruncateAll(t)

		older := time.Date(2026, 1, 2, 14, 30, 0, 0, time.UTC)
		newer := older.Add(time.Hour)
		require.NoError(t, testDB.RecordQuotes(ctx, models.Quotes{
			"AAPL": {Ticker: "AAPL", Price: decimal.NewFromInt(149), At: older},
		}))
		require.NoError(t, testDB.RecordQuotes(ctx, models.Quotes{
			"AAPL": {Ticker: "AAPL", Price: decimal.NewFromInt(150), At: newer},
		}))

		q, err := testDB.GetLatestQuoteSample(ctx, "AAPL")
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(150).Equal(q.Price))
		assert.True(t, newer.Equal(q.At))
	})

	t.Run("same sample updates price", func(t *testing.T) {
		testDB.TruncateAll(t)

		at := time.Date(2026, 1, 2, 14, 30, 0, 0, time.UTC)
		require.NoError(t, testDB.RecordQuotes(ctx, models.Quotes{
			"AAPL": {Ticker: "AAPL", Price: decimal.NewFromInt(149), At: at},
		}))
		require.NoError(t, testDB.RecordQuotes(ctx, models.Quotes{
			"AAPL": {Ticker: "AAPL", Price: decimal.RequireFromString("149.5"), At: at},
		}))

		var count int
		require.NoError(t, testDB.GetRawConn().QueryRow(`SELECT COUNT(*) FROM quote_samples`).Scan(&count))
		assert.Equal(t, 1, count)

		q, err := testDB.GetLatestQuoteSample(ctx, "AAPL")
		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("149.5").Equal(q.Price))
	})
}
