package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/radieske/arb-bet-tracker/pkg/contracts/events"
)

// PostgresRepo persiste as arbitragens recebidas do scanner
type PostgresRepo struct {
	DB *sql.DB
}

// NewPostgresRepo retorna uma instância de repositório Postgres
func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{DB: db}
}

// UpsertArbitrage insere ou atualiza a arbitragem de uma combinação.
// A chave é (match_signature, combination_hash); odds novas atualizam profit e pernas.
// Retorna o id do registro (novo ou existente)
func (r *PostgresRepo) UpsertArbitrage(ctx context.Context, e events.ArbitrageFound) (string, error) {
	details, err := json.Marshal(e.CombinationDetails)
	if err != nil {
		return "", fmt.Errorf("marshal combination details: %w", err)
	}

	const q = `
		INSERT INTO arbitrages
		  (id, match_signature, combination_hash, profit, kickoff_datetime, combination_details, created_at, updated_at)
		VALUES
		  ($1,$2,$3,$4,$5,$6,NOW(),NOW())
		ON CONFLICT (match_signature, combination_hash) DO UPDATE SET
		  profit              = EXCLUDED.profit,
		  kickoff_datetime    = EXCLUDED.kickoff_datetime,
		  combination_details = EXCLUDED.combination_details,
		  updated_at          = NOW()
		RETURNING id
	`
	var id string
	err = r.DB.QueryRowContext(ctx, q,
		uuid.NewString(), e.MatchSignature, e.CombinationKey(),
		e.Profit, e.KickoffDatetime, details,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("upsert arbitrage: %w", err)
	}
	return id, nil
}
