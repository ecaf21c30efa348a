package repo

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/arb-bet-tracker/internal/bet-service/bets"
)

var betCols = []string{
	"id", "sport", "event_name", "bet_type", "selection",
	"sportsbook_id", "name", "account_id", "account_identifier", "name", "arbitrage_id",
	"odds", "stake", "status", "potential_payout", "actual_payout", "profit_loss",
	"date_placed", "date_settled", "kickoff", "notes",
}

func TestList_PendingFirstWithFilters(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	placed := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE b.status = $1 AND b.sport = $2 ORDER BY CASE WHEN b.status = 'pending' THEN 0 ELSE 1 END, b.date_placed DESC")).
		WithArgs("pending", "Football").
		WillReturnRows(sqlmock.NewRows(betCols).AddRow(
			"b1", "Football", "A vs B", "1X2", "A",
			"sb1", "bet365", nil, nil, nil, "arb1",
			1.9, "52.50", "pending", "99.75", "0", "0",
			placed, nil, nil, "",
		))

	list, err := NewPostgres(db).List(context.Background(), ListFilter{Status: "pending", Sport: "Football"})
	require.NoError(t, err)
	require.Len(t, list, 1)

	b := list[0]
	assert.Equal(t, bets.StatusPending, b.Status)
	assert.True(t, decimal.RequireFromString("52.5").Equal(b.Stake))
	require.NotNil(t, b.Sportsbook)
	assert.Equal(t, "bet365", *b.Sportsbook)
	assert.Nil(t, b.AccountID)
	require.NotNil(t, b.ArbitrageID)
	assert.Nil(t, b.DateSettled)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGet_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("WHERE b.id = \\$1").WithArgs("nope").WillReturnRows(sqlmock.NewRows(betCols))

	_, err = NewPostgres(db).Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateMany_SingleTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO bets").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO bets").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	list := []*bets.Bet{
		{Sport: "Football", Odds: 2.1, Stake: decimal.NewFromInt(50), Status: bets.StatusPending},
		{Sport: "Football", Odds: 2.1, Stake: decimal.NewFromInt(50), Status: bets.StatusPending},
	}
	require.NoError(t, NewPostgres(db).CreateMany(context.Background(), list))
	assert.NotEmpty(t, list[0].ID)
	assert.NotEqual(t, list[0].ID, list[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateMany_RollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO bets").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO bets").WillReturnError(errors.New("fk violation"))
	mock.ExpectRollback()

	err = NewPostgres(db).CreateMany(context.Background(), []*bets.Bet{{}, {}})
	assert.ErrorContains(t, err, "insert bet 1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateAndDelete_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE bets SET").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM bets").WithArgs("b1").WillReturnResult(sqlmock.NewResult(0, 1))

	r := NewPostgres(db)
	assert.ErrorIs(t, r.Update(context.Background(), &bets.Bet{ID: "x"}), ErrNotFound)
	assert.NoError(t, r.Delete(context.Background(), "b1"))
}
