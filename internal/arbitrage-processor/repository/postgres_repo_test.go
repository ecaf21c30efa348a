package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/arb-bet-tracker/pkg/contracts/events"
)

func TestUpsertArbitrage(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ev := events.ArbitrageFound{
		MatchSignature:  "A vs B",
		Profit:          1.5,
		KickoffDatetime: "2024-03-15 20:00:00",
		CombinationDetails: []events.LegDetail{
			{Bookmaker: "x", Odds: 2.1, Name: "A"},
			{Bookmaker: "y", Odds: 2.1, Name: "B"},
		},
	}

	mock.ExpectQuery("INSERT INTO arbitrages").
		WithArgs(sqlmock.AnyArg(), "A vs B", ev.CombinationKey(), 1.5, "2024-03-15 20:00:00", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("existing-id"))

	id, err := NewPostgresRepo(db).UpsertArbitrage(context.Background(), ev)
	require.NoError(t, err)
	assert.Equal(t, "existing-id", id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertArbitrage_Error(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("INSERT INTO arbitrages").WillReturnError(errors.New("boom"))

	_, err = NewPostgresRepo(db).UpsertArbitrage(context.Background(), events.ArbitrageFound{})
	assert.ErrorContains(t, err, "upsert arbitrage")
}
