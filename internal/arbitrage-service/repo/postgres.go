package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/radieske/arb-bet-tracker/internal/arbitrage-service/dto"
)

var ErrNotFound = errors.New("arbitrage not found")

// Filtros do GET /v1/arbitrages
type ListFilter struct {
	MinProfit *float64
	MaxProfit *float64
	SortBy    string // profit | kickoff_datetime | created_at
	SortOrder string // asc | desc
}

// colunas liberadas para ORDER BY
var sortColumns = map[string]string{
	"profit":           "profit",
	"kickoff_datetime": "kickoff_datetime",
	"created_at":       "created_at",
	"updated_at":       "updated_at",
}

// OrderBy monta a cláusula de ordenação só com colunas conhecidas
func (f ListFilter) OrderBy() string {
	col, ok := sortColumns[f.SortBy]
	if !ok {
		col = "profit"
	}
	dir := "DESC"
	if strings.EqualFold(f.SortOrder, "asc") {
		dir = "ASC"
	}
	return fmt.Sprintf("ORDER BY %s %s, id", col, dir)
}

type ArbitrageRepo struct {
	DB *sql.DB
}

const selectCols = `id, match_signature, profit, kickoff_datetime, combination_details, created_at, updated_at`

func (r *ArbitrageRepo) List(ctx context.Context, f ListFilter) ([]dto.Arbitrage, error) {
	var (
		where []string
		args  []any
	)
	if f.MinProfit != nil {
		args = append(args, *f.MinProfit)
		where = append(where, fmt.Sprintf("profit >= $%d", len(args)))
	}
	if f.MaxProfit != nil {
		args = append(args, *f.MaxProfit)
		where = append(where, fmt.Sprintf("profit <= $%d", len(args)))
	}

	q := "SELECT " + selectCols + " FROM arbitrages"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " " + f.OrderBy()

	return r.query(ctx, q, args...)
}

func (r *ArbitrageRepo) ListBySignature(ctx context.Context, signature string, f ListFilter) ([]dto.Arbitrage, error) {
	q := "SELECT " + selectCols + " FROM arbitrages WHERE match_signature = $1 " + f.OrderBy()
	return r.query(ctx, q, signature)
}

func (r *ArbitrageRepo) Get(ctx context.Context, id string) (dto.Arbitrage, error) {
	list, err := r.query(ctx, "SELECT "+selectCols+" FROM arbitrages WHERE id = $1", id)
	if err != nil {
		return dto.Arbitrage{}, err
	}
	if len(list) == 0 {
		return dto.Arbitrage{}, ErrNotFound
	}
	return list[0], nil
}

// Create insere uma arbitragem manual (sem deduplicação por combinação)
func (r *ArbitrageRepo) Create(ctx context.Context, a dto.Arbitrage) (dto.Arbitrage, error) {
	details, err := json.Marshal(a.CombinationDetails)
	if err != nil {
		return dto.Arbitrage{}, fmt.Errorf("marshal combination details: %w", err)
	}
	a.ID = uuid.NewString()

	const q = `
		INSERT INTO arbitrages
		  (id, match_signature, combination_hash, profit, kickoff_datetime, combination_details, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,NOW(),NOW())
		RETURNING created_at, updated_at
	`
	// combination_hash recebe o próprio id: cadastro manual nunca colide com o scanner
	err = r.DB.QueryRowContext(ctx, q,
		a.ID, a.MatchSignature, a.ID, a.Profit, a.KickoffDatetime, details,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return dto.Arbitrage{}, fmt.Errorf("insert arbitrage: %w", err)
	}
	return a, nil
}

// Update grava os campos editáveis. combination_hash não muda: o registro
// continua sendo o mesmo para o upsert do scanner
func (r *ArbitrageRepo) Update(ctx context.Context, a dto.Arbitrage) (dto.Arbitrage, error) {
	details, err := json.Marshal(a.CombinationDetails)
	if err != nil {
		return dto.Arbitrage{}, fmt.Errorf("marshal combination details: %w", err)
	}

	const q = `
		UPDATE arbitrages SET
		  match_signature = $2, profit = $3, kickoff_datetime = $4, combination_details = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at
	`
	err = r.DB.QueryRowContext(ctx, q,
		a.ID, a.MatchSignature, a.Profit, a.KickoffDatetime, details,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return dto.Arbitrage{}, ErrNotFound
	}
	if err != nil {
		return dto.Arbitrage{}, fmt.Errorf("update arbitrage: %w", err)
	}
	return a, nil
}

func (r *ArbitrageRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM arbitrages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete arbitrage: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ArbitrageRepo) query(ctx context.Context, q string, args ...any) ([]dto.Arbitrage, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []dto.Arbitrage{}
	for rows.Next() {
		var (
			a       dto.Arbitrage
			details []byte
		)
		if err := rows.Scan(&a.ID, &a.MatchSignature, &a.Profit, &a.KickoffDatetime, &details, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &a.CombinationDetails); err != nil {
				return nil, fmt.Errorf("arbitrage %s: decode combination details: %w", a.ID, err)
			}
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
