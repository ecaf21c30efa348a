package repo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/radieske/arb-bet-tracker/internal/ledger-service/model"
)

type AccountFilter struct {
	Search      string
	AccountType string
	IsActive    *bool
	SortBy      string
	SortOrder   string
	Page
}

var accountSort = map[string]string{
	"created_at":         "created_at",
	"account_identifier": "account_identifier",
	"name":               "name",
}

const selectAccounts = `
	SELECT id, account_identifier, account_type, name, is_active, notes, created_at, updated_at
	FROM accounts`

func (f AccountFilter) where() (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(account_identifier ILIKE $%d OR name ILIKE $%d OR notes ILIKE $%d)", n, n, n))
	}
	if f.AccountType != "" {
		args = append(args, f.AccountType)
		conds = append(conds, fmt.Sprintf("account_type = $%d", len(args)))
	}
	if f.IsActive != nil {
		args = append(args, *f.IsActive)
		conds = append(conds, fmt.Sprintf("is_active = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ListAccounts devolve a página pedida e o total que casa com o filtro
func (p *Postgres) ListAccounts(ctx context.Context, f AccountFilter) ([]model.Account, int, error) {
	f.Page = f.Page.Norm()
	where, args := f.where()

	var total int
	if err := p.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM accounts"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count accounts: %w", err)
	}

	q := selectAccounts + where + orderBy(accountSort, f.SortBy, "created_at", f.SortOrder) +
		fmt.Sprintf(" LIMIT %d OFFSET %d", f.PerPage, f.offset())
	rows, err := p.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	out := []model.Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, a)
	}
	return out, total, rows.Err()
}

func (p *Postgres) GetAccount(ctx context.Context, id string) (model.Account, error) {
	a, err := scanAccount(p.db.QueryRowContext(ctx, selectAccounts+" WHERE id = $1", id))
	return a, notFound(err)
}

// ResolveAccount acha a conta por id ou identificador; nunca cria
func (p *Postgres) ResolveAccount(ctx context.Context, input string) (model.Account, error) {
	return resolveAccount(ctx, p.db, input)
}

func resolveAccount(ctx context.Context, q querier, input string) (model.Account, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return model.Account{}, ErrNotFound
	}
	if _, err := uuid.Parse(input); err == nil {
		a, err := scanAccount(q.QueryRowContext(ctx, selectAccounts+" WHERE id = $1", input))
		if err == nil {
			return a, nil
		}
		if notFound(err) != ErrNotFound {
			return model.Account{}, err
		}
	}
	a, err := scanAccount(q.QueryRowContext(ctx, selectAccounts+" WHERE account_identifier = $1", input))
	return a, notFound(err)
}

// checkAccountUnique devolve ErrConflict se outro registro já usa o identificador ou o nome
func (p *Postgres) checkAccountUnique(ctx context.Context, a *model.Account) error {
	var sameIdent bool
	err := p.db.QueryRowContext(ctx, `
		SELECT account_identifier = $1 FROM accounts
		WHERE (account_identifier = $1 OR name = $2) AND id <> $3
		LIMIT 1`, a.AccountIdentifier, a.Name, a.ID).Scan(&sameIdent)
	if err != nil {
		return notFoundOK(err)
	}
	if sameIdent {
		return fmt.Errorf("%w: account with this identifier", ErrConflict)
	}
	return fmt.Errorf("%w: account with this name", ErrConflict)
}

// notFoundOK transforma "nenhuma linha" em sucesso
func notFoundOK(err error) error {
	if notFound(err) == ErrNotFound {
		return nil
	}
	return err
}

func (p *Postgres) CreateAccount(ctx context.Context, a *model.Account) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if err := p.checkAccountUnique(ctx, a); err != nil {
		return err
	}
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO accounts (id, account_identifier, account_type, name, is_active, notes, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		a.ID, a.AccountIdentifier, a.AccountType, a.Name, a.IsActive, a.Notes, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (p *Postgres) UpdateAccount(ctx context.Context, a *model.Account) error {
	if err := p.checkAccountUnique(ctx, a); err != nil {
		return err
	}
	res, err := p.db.ExecContext(ctx, `
		UPDATE accounts SET account_identifier=$2, account_type=$3, name=$4, is_active=$5, notes=$6, updated_at=$7
		WHERE id=$1`,
		a.ID, a.AccountIdentifier, a.AccountType, a.Name, a.IsActive, a.Notes, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	return mustAffect(res)
}

func (p *Postgres) DeleteAccount(ctx context.Context, id string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM accounts WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return mustAffect(res)
}

func (p *Postgres) AccountStats(ctx context.Context) (model.AccountStats, error) {
	var s model.AccountStats
	err := p.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE is_active),
		       COUNT(*) FILTER (WHERE account_type = 'email'),
		       COUNT(*) FILTER (WHERE account_type = 'phone')
		FROM accounts`).Scan(&s.TotalAccounts, &s.ActiveAccounts, &s.EmailAccounts, &s.PhoneAccounts)
	if err != nil {
		return s, fmt.Errorf("account stats: %w", err)
	}
	s.InactiveAccounts = s.TotalAccounts - s.ActiveAccounts
	return s, nil
}

func scanAccount(s scanner) (model.Account, error) {
	var a model.Account
	var notes sql.NullString
	if err := s.Scan(&a.ID, &a.AccountIdentifier, &a.AccountType, &a.Name, &a.IsActive, &notes, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return model.Account{}, err
	}
	a.Notes = strPtr(notes)
	return a, nil
}
