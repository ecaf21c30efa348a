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

type TxFilter struct {
	Type         string
	SportsbookID string
	AccountID    string
	Status       string
	Start, End   *time.Time
	Page
}

// TxRefs carrega casa/conta informadas por id ou nome; nil mantém o valor atual
type TxRefs struct {
	Sportsbook *string
	Account    *string
}

const selectTransactions = `
	SELECT t.id, t.transaction_type, t.sportsbook_id, s.name, t.account_id, a.account_identifier, a.name,
	       t.amount, t.tax, t.transaction_charges, t.payment_method, t.reference_id, t.status,
	       t.date_created, t.date_processed, t.notes
	FROM transactions t
	LEFT JOIN sportsbooks s ON s.id = t.sportsbook_id
	LEFT JOIN accounts a ON a.id = t.account_id`

func (f TxFilter) where(dateCol string) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.Type != "" {
		add("t.transaction_type = $%d", f.Type)
	}
	if f.SportsbookID != "" {
		add("t.sportsbook_id = $%d", f.SportsbookID)
	}
	if f.AccountID != "" {
		add("t.account_id = $%d", f.AccountID)
	}
	if f.Status != "" {
		add("t.status = $%d", f.Status)
	}
	if f.Start != nil {
		add(dateCol+" >= $%d", *f.Start)
	}
	if f.End != nil {
		add(dateCol+" <= $%d", *f.End)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ListTransactions ordena das mais recentes para as mais antigas
func (p *Postgres) ListTransactions(ctx context.Context, f TxFilter) ([]model.Transaction, int, error) {
	f.Page = f.Page.Norm()
	where, args := f.where("t.date_created")

	var total int
	if err := p.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM transactions t"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	q := selectTransactions + where + " ORDER BY t.date_created DESC" +
		fmt.Sprintf(" LIMIT %d OFFSET %d", f.PerPage, f.offset())
	list, err := p.queryTransactions(ctx, q, args...)
	return list, total, err
}

// CompletedTransactions é a base das estatísticas; datas filtram date_processed
func (p *Postgres) CompletedTransactions(ctx context.Context, f TxFilter) ([]model.Transaction, error) {
	f.Status = model.TxCompleted
	where, args := f.where("t.date_processed")
	return p.queryTransactions(ctx, selectTransactions+where, args...)
}

func (p *Postgres) queryTransactions(ctx context.Context, q string, args ...any) ([]model.Transaction, error) {
	rows, err := p.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	out := []model.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (p *Postgres) GetTransaction(ctx context.Context, id string) (model.Transaction, error) {
	t, err := scanTransaction(p.db.QueryRowContext(ctx, selectTransactions+" WHERE t.id = $1", id))
	return t, notFound(err)
}

// applyRefs resolve casa (criando se preciso) e conta (nil se não existe) dentro da transação
func applyRefs(ctx context.Context, q querier, t *model.Transaction, refs TxRefs, now time.Time) error {
	if refs.Sportsbook != nil {
		t.SportsbookID, t.Sportsbook = nil, nil
		if strings.TrimSpace(*refs.Sportsbook) != "" {
			sb, err := resolveSportsbook(ctx, q, *refs.Sportsbook, now)
			if err != nil {
				return err
			}
			t.SportsbookID, t.Sportsbook = &sb.ID, &sb.Name
		}
	}
	if refs.Account != nil {
		t.AccountID, t.Account, t.AccountName = nil, nil, nil
		a, err := resolveAccount(ctx, q, *refs.Account)
		switch {
		case err == nil:
			t.AccountID, t.Account, t.AccountName = &a.ID, &a.AccountIdentifier, &a.Name
		case !errors.Is(err, ErrNotFound):
			return err
		}
	}
	return nil
}

func (p *Postgres) CreateTransaction(ctx context.Context, t *model.Transaction, refs TxRefs) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := applyRefs(ctx, tx, t, refs, t.DateCreated); err != nil {
		return err
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO transactions (id, transaction_type, sportsbook_id, account_id, amount, tax, transaction_charges,
		       payment_method, reference_id, status, date_created, date_processed, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		t.ID, t.TransactionType, t.SportsbookID, t.AccountID, t.Amount, t.Tax, t.TransactionCharges,
		t.PaymentMethod, t.ReferenceID, t.Status, t.DateCreated, t.DateProcessed, t.Notes); err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return tx.Commit()
}

func (p *Postgres) UpdateTransaction(ctx context.Context, t *model.Transaction, refs TxRefs, now time.Time) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := applyRefs(ctx, tx, t, refs, now); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `
		UPDATE transactions SET transaction_type=$2, sportsbook_id=$3, account_id=$4, amount=$5, tax=$6,
		       transaction_charges=$7, payment_method=$8, reference_id=$9, status=$10, date_processed=$11, notes=$12
		WHERE id=$1`,
		t.ID, t.TransactionType, t.SportsbookID, t.AccountID, t.Amount, t.Tax, t.TransactionCharges,
		t.PaymentMethod, t.ReferenceID, t.Status, t.DateProcessed, t.Notes)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	if err := mustAffect(res); err != nil {
		return err
	}
	return tx.Commit()
}

func (p *Postgres) DeleteTransaction(ctx context.Context, id string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM transactions WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return mustAffect(res)
}

func scanTransaction(s scanner) (model.Transaction, error) {
	var (
		t                                      model.Transaction
		sbID, sbName, accID, accIdent, accName sql.NullString
		method, ref, notes                     sql.NullString
		processed                              sql.NullTime
	)
	err := s.Scan(&t.ID, &t.TransactionType, &sbID, &sbName, &accID, &accIdent, &accName,
		&t.Amount, &t.Tax, &t.TransactionCharges, &method, &ref, &t.Status,
		&t.DateCreated, &processed, &notes)
	if err != nil {
		return model.Transaction{}, err
	}
	t.SportsbookID, t.Sportsbook = strPtr(sbID), strPtr(sbName)
	t.AccountID, t.Account, t.AccountName = strPtr(accID), strPtr(accIdent), strPtr(accName)
	t.PaymentMethod, t.ReferenceID, t.Notes = strPtr(method), strPtr(ref), strPtr(notes)
	t.DateProcessed = timePtr(processed)
	return t, nil
}
