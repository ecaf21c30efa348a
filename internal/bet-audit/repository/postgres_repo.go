package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/radieske/arb-bet-tracker/pkg/contracts/events"
)

// PostgresRepo grava a trilha de auditoria das apostas registradas
type PostgresRepo struct {
	DB *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{DB: db}
}

// RecordBetPlaced insere o evento uma única vez por aposta.
// Retorna false quando o evento já havia sido gravado (reentrega do Kafka)
func (r *PostgresRepo) RecordBetPlaced(ctx context.Context, e events.BetPlaced) (bool, error) {
	placedAt := time.UnixMilli(e.TsUnixMs).UTC()
	if e.TsUnixMs == 0 {
		placedAt = time.Now().UTC()
	}

	const q = `
		INSERT INTO bet_events
		  (bet_id, arbitrage_id, match_signature, leg_index, event_name, selection,
		   sportsbook_id, account_id, odds, stake, placed_at, recorded_at)
		VALUES
		  ($1, NULLIF($2,''), NULLIF($3,''), $4, $5, $6, NULLIF($7,''), NULLIF($8,''), $9, $10, $11, NOW())
		ON CONFLICT (bet_id) DO NOTHING`

	res, err := r.DB.ExecContext(ctx, q,
		e.BetID, e.ArbitrageID, e.MatchSignature, e.LegIndex, e.EventName, e.Selection,
		e.SportsbookID, e.AccountID, e.Odds, e.Stake, placedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert bet event: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
