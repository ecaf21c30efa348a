package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/radieske/arb-bet-tracker/internal/bet-service/bets"
)

var ErrNotFound = errors.New("bet not found")

// Filtros do GET /bets
type ListFilter struct {
	Status string
	Sport  string
}

// Postgres implementa operações de persistência de apostas em banco Postgres
type Postgres struct{ db *sql.DB }

// NewPostgres retorna uma instância do repositório de apostas
func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

const selectBets = `
	SELECT b.id, b.sport, b.event_name, b.bet_type, b.selection,
	       b.sportsbook_id, s.name, b.account_id, a.account_identifier, a.name, b.arbitrage_id,
	       b.odds, b.stake, b.status, b.potential_payout, b.actual_payout, b.profit_loss,
	       b.date_placed, b.date_settled, b.kickoff, COALESCE(b.notes, '')
	FROM bets b
	LEFT JOIN sportsbooks s ON s.id = b.sportsbook_id
	LEFT JOIN accounts a ON a.id = b.account_id
`

// List devolve as apostas com as pendentes primeiro e depois as mais recentes
func (p *Postgres) List(ctx context.Context, f ListFilter) ([]bets.Bet, error) {
	var (
		where []string
		args  []any
	)
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("b.status = $%d", len(args)))
	}
	if f.Sport != "" {
		args = append(args, f.Sport)
		where = append(where, fmt.Sprintf("b.sport = $%d", len(args)))
	}

	q := selectBets
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY CASE WHEN b.status = 'pending' THEN 0 ELSE 1 END, b.date_placed DESC"

	rows, err := p.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []bets.Bet{}
	for rows.Next() {
		b, err := scanBet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (p *Postgres) Get(ctx context.Context, id string) (bets.Bet, error) {
	b, err := scanBet(p.db.QueryRowContext(ctx, selectBets+" WHERE b.id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return bets.Bet{}, ErrNotFound
	}
	return b, err
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

const insertBet = `
	INSERT INTO bets
	  (id, sport, event_name, bet_type, selection, sportsbook_id, account_id, arbitrage_id,
	   odds, stake, status, potential_payout, actual_payout, profit_loss,
	   date_placed, date_settled, kickoff, notes)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
`

func insert(ctx context.Context, ex execer, b *bets.Bet) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	_, err := ex.ExecContext(ctx, insertBet,
		b.ID, b.Sport, b.EventName, b.BetType, b.Selection, b.SportsbookID, b.AccountID, b.ArbitrageID,
		b.Odds, b.Stake, string(b.Status), b.PotentialPayout, b.ActualPayout, b.ProfitLoss,
		b.DatePlaced, b.DateSettled, b.Kickoff, b.Notes,
	)
	return err
}

// Create insere uma aposta e preenche o id
func (p *Postgres) Create(ctx context.Context, b *bets.Bet) error {
	if err := insert(ctx, p.db, b); err != nil {
		return fmt.Errorf("insert bet: %w", err)
	}
	return nil
}

// CreateMany insere todas as apostas na mesma transação (uma por perna da arbitragem)
func (p *Postgres) CreateMany(ctx context.Context, list []*bets.Bet) error {
	tx, err := p.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for i, b := range list {
		if err := insert(ctx, tx, b); err != nil {
			return fmt.Errorf("insert bet %d: %w", i, err)
		}
	}
	return tx.Commit()
}

func (p *Postgres) Update(ctx context.Context, b *bets.Bet) error {
	res, err := p.db.ExecContext(ctx, `
		UPDATE bets SET
		  sport=$2, event_name=$3, bet_type=$4, selection=$5, sportsbook_id=$6, account_id=$7,
		  odds=$8, stake=$9, status=$10, potential_payout=$11, actual_payout=$12, profit_loss=$13,
		  date_settled=$14, kickoff=$15, notes=$16
		WHERE id=$1`,
		b.ID, b.Sport, b.EventName, b.BetType, b.Selection, b.SportsbookID, b.AccountID,
		b.Odds, b.Stake, string(b.Status), b.PotentialPayout, b.ActualPayout, b.ProfitLoss,
		b.DateSettled, b.Kickoff, b.Notes,
	)
	if err != nil {
		return fmt.Errorf("update bet: %w", err)
	}
	return mustAffect(res)
}

func (p *Postgres) Delete(ctx context.Context, id string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM bets WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete bet: %w", err)
	}
	return mustAffect(res)
}

func mustAffect(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBet(s scanner) (bets.Bet, error) {
	var (
		b                                      bets.Bet
		status                                 string
		sbID, sbName, accID, accIdent, accName sql.NullString
		arbID                                  sql.NullString
		settled, kickoff                       sql.NullTime
	)
	err := s.Scan(&b.ID, &b.Sport, &b.EventName, &b.BetType, &b.Selection,
		&sbID, &sbName, &accID, &accIdent, &accName, &arbID,
		&b.Odds, &b.Stake, &status, &b.PotentialPayout, &b.ActualPayout, &b.ProfitLoss,
		&b.DatePlaced, &settled, &kickoff, &b.Notes)
	if err != nil {
		return bets.Bet{}, err
	}
	b.Status = bets.Status(status)
	b.SportsbookID, b.Sportsbook = strPtr(sbID), strPtr(sbName)
	b.AccountID, b.Account, b.AccountName = strPtr(accID), strPtr(accIdent), strPtr(accName)
	b.ArbitrageID = strPtr(arbID)
	b.DateSettled, b.Kickoff = timePtr(settled), timePtr(kickoff)
	return b, nil
}

func strPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

func timePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	return &v.Time
}
