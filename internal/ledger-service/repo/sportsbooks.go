package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/radieske/arb-bet-tracker/internal/ledger-service/model"
)

type SportsbookFilter struct {
	ActiveOnly bool
	Country    string
	Search     string
	SortBy     string
	SortOrder  string
	Page
}

var sportsbookSort = map[string]string{
	"name":       "name",
	"created_at": "created_at",
	"country":    "country",
}

const selectSportsbooks = `
	SELECT id, name, display_name, website_url, logo_url, is_active, country, description, created_at, updated_at
	FROM sportsbooks`

func (f SportsbookFilter) where() (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.ActiveOnly {
		conds = append(conds, "is_active")
	}
	if f.Country != "" {
		args = append(args, "%"+f.Country+"%")
		conds = append(conds, fmt.Sprintf("country ILIKE $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(name ILIKE $%d OR display_name ILIKE $%d)", n, n))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (p *Postgres) ListSportsbooks(ctx context.Context, f SportsbookFilter) ([]model.Sportsbook, int, error) {
	f.Page = f.Page.Norm()
	if f.SortOrder == "" {
		f.SortOrder = "asc"
	}
	where, args := f.where()

	var total int
	if err := p.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sportsbooks"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count sportsbooks: %w", err)
	}

	q := selectSportsbooks + where + orderBy(sportsbookSort, f.SortBy, "name", f.SortOrder) +
		fmt.Sprintf(" LIMIT %d OFFSET %d", f.PerPage, f.offset())
	list, err := p.querySportsbooks(ctx, q, args...)
	return list, total, err
}

// ActiveSportsbooks alimenta os dropdowns: só ativas, por nome
func (p *Postgres) ActiveSportsbooks(ctx context.Context) ([]model.Sportsbook, error) {
	return p.querySportsbooks(ctx, selectSportsbooks+" WHERE is_active ORDER BY name")
}

func (p *Postgres) querySportsbooks(ctx context.Context, q string, args ...any) ([]model.Sportsbook, error) {
	rows, err := p.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list sportsbooks: %w", err)
	}
	defer rows.Close()

	out := []model.Sportsbook{}
	for rows.Next() {
		s, err := scanSportsbook(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (p *Postgres) GetSportsbook(ctx context.Context, id string) (model.Sportsbook, error) {
	s, err := scanSportsbook(p.db.QueryRowContext(ctx, selectSportsbooks+" WHERE id = $1", id))
	return s, notFound(err)
}

func sportsbookByName(ctx context.Context, q querier, name string) (model.Sportsbook, error) {
	s, err := scanSportsbook(q.QueryRowContext(ctx, selectSportsbooks+" WHERE lower(name) = lower($1)", name))
	return s, notFound(err)
}

func insertSportsbook(ctx context.Context, q querier, s *model.Sportsbook) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO sportsbooks (id, name, display_name, website_url, logo_url, is_active, country, description, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		s.ID, s.Name, s.DisplayName, s.WebsiteURL, s.LogoURL, s.IsActive, s.Country, s.Description, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert sportsbook: %w", err)
	}
	return nil
}

// CreateSportsbook falha com ErrConflict se o nome já existe (sem diferenciar maiúsculas)
func (p *Postgres) CreateSportsbook(ctx context.Context, s *model.Sportsbook) error {
	existing, err := sportsbookByName(ctx, p.db, s.Name)
	if err == nil && existing.ID != s.ID {
		return fmt.Errorf("%w: sportsbook with this name", ErrConflict)
	}
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return insertSportsbook(ctx, p.db, s)
}

// CreateSportsbooks cria em lote numa transação, pulando nomes já existentes
func (p *Postgres) CreateSportsbooks(ctx context.Context, list []*model.Sportsbook) (created []*model.Sportsbook, skipped []string, err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = tx.Rollback() }()

	seen := map[string]bool{}
	for _, s := range list {
		key := strings.ToLower(s.Name)
		_, err := sportsbookByName(ctx, tx, s.Name)
		switch {
		case err == nil || seen[key]:
			skipped = append(skipped, s.Name)
			continue
		case !errors.Is(err, ErrNotFound):
			return nil, nil, err
		}
		if err := insertSportsbook(ctx, tx, s); err != nil {
			return nil, nil, err
		}
		seen[key] = true
		created = append(created, s)
	}
	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}
	return created, skipped, nil
}

func (p *Postgres) UpdateSportsbook(ctx context.Context, s *model.Sportsbook) error {
	existing, err := sportsbookByName(ctx, p.db, s.Name)
	if err == nil && existing.ID != s.ID {
		return fmt.Errorf("%w: sportsbook with this name", ErrConflict)
	}
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	res, err := p.db.ExecContext(ctx, `
		UPDATE sportsbooks SET name=$2, display_name=$3, website_url=$4, logo_url=$5, is_active=$6,
		       country=$7, description=$8, updated_at=$9
		WHERE id=$1`,
		s.ID, s.Name, s.DisplayName, s.WebsiteURL, s.LogoURL, s.IsActive, s.Country, s.Description, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update sportsbook: %w", err)
	}
	return mustAffect(res)
}

// DeleteSportsbook recusa com ErrInUse quando há apostas na casa
func (p *Postgres) DeleteSportsbook(ctx context.Context, id string) error {
	var bets int
	if err := p.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bets WHERE sportsbook_id = $1`, id).Scan(&bets); err != nil {
		return fmt.Errorf("count bets: %w", err)
	}
	if bets > 0 {
		return fmt.Errorf("%w: referenced by %d bet(s), deactivate it instead", ErrInUse, bets)
	}
	res, err := p.db.ExecContext(ctx, `DELETE FROM sportsbooks WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete sportsbook: %w", err)
	}
	return mustAffect(res)
}

func (p *Postgres) ToggleSportsbook(ctx context.Context, id string, now time.Time) (model.Sportsbook, error) {
	s, err := scanSportsbook(p.db.QueryRowContext(ctx, `
		UPDATE sportsbooks SET is_active = NOT is_active, updated_at = $2 WHERE id = $1
		RETURNING id, name, display_name, website_url, logo_url, is_active, country, description, created_at, updated_at`,
		id, now))
	return s, notFound(err)
}

// ResolveSportsbook acha a casa por id ou nome e cria quando não existe
func (p *Postgres) ResolveSportsbook(ctx context.Context, input string, now time.Time) (model.Sportsbook, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Sportsbook{}, err
	}
	defer func() { _ = tx.Rollback() }()

	s, err := resolveSportsbook(ctx, tx, input, now)
	if err != nil {
		return model.Sportsbook{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Sportsbook{}, err
	}
	return s, nil
}

func resolveSportsbook(ctx context.Context, q querier, input string, now time.Time) (model.Sportsbook, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return model.Sportsbook{}, ErrNotFound
	}
	if _, err := uuid.Parse(input); err == nil {
		s, err := scanSportsbook(q.QueryRowContext(ctx, selectSportsbooks+" WHERE id = $1", input))
		if err == nil {
			return s, nil
		}
		if notFound(err) != ErrNotFound {
			return model.Sportsbook{}, err
		}
	}

	s, err := sportsbookByName(ctx, q, input)
	if !errors.Is(err, ErrNotFound) {
		return s, err
	}
	s = model.Sportsbook{Name: input, IsActive: true, CreatedAt: now, UpdatedAt: now}
	if err := insertSportsbook(ctx, q, &s); err != nil {
		return model.Sportsbook{}, err
	}
	return s, nil
}

// SportsbookStats conta casas e lista as 10 mais usadas nas apostas
func (p *Postgres) SportsbookStats(ctx context.Context) (model.SportsbookStats, error) {
	var st model.SportsbookStats
	if err := p.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE is_active) FROM sportsbooks`).
		Scan(&st.TotalSportsbooks, &st.ActiveSportsbooks); err != nil {
		return st, fmt.Errorf("sportsbook stats: %w", err)
	}
	st.InactiveSportsbooks = st.TotalSportsbooks - st.ActiveSportsbooks

	rows, err := p.db.QueryContext(ctx, `
		SELECT s.id, s.name, COUNT(b.id), COALESCE(SUM(b.stake), 0), COALESCE(AVG(b.odds), 0)
		FROM sportsbooks s
		JOIN bets b ON b.sportsbook_id = s.id
		GROUP BY s.id, s.name
		ORDER BY COUNT(b.id) DESC
		LIMIT 10`)
	if err != nil {
		return st, fmt.Errorf("sportsbook usage: %w", err)
	}
	defer rows.Close()

	st.TopUsed = []model.SportsbookUsage{}
	for rows.Next() {
		var u model.SportsbookUsage
		if err := rows.Scan(&u.SportsbookID, &u.SportsbookName, &u.BetCount, &u.TotalStake, &u.AvgOdds); err != nil {
			return st, err
		}
		st.TopUsed = append(st.TopUsed, u)
	}
	return st, rows.Err()
}

func scanSportsbook(s scanner) (model.Sportsbook, error) {
	var (
		sb                                  model.Sportsbook
		display, site, logo, country, descr sql.NullString
	)
	err := s.Scan(&sb.ID, &sb.Name, &display, &site, &logo, &sb.IsActive, &country, &descr, &sb.CreatedAt, &sb.UpdatedAt)
	if err != nil {
		return model.Sportsbook{}, err
	}
	sb.DisplayName, sb.WebsiteURL, sb.LogoURL = strPtr(display), strPtr(site), strPtr(logo)
	sb.Country, sb.Description = strPtr(country), strPtr(descr)
	return sb, nil
}
