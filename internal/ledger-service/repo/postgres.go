package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrConflict: nome ou identificador já usado por outro registro
	ErrConflict = errors.New("already exists")
	// ErrInUse: casa referenciada por apostas não pode ser apagada
	ErrInUse = errors.New("in use")
)

const (
	DefaultPerPage = 50
	MaxPerPage     = 100
)

// Postgres implementa contas, casas e transações em banco
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// Page normaliza page/per_page vindos da query string
type Page struct {
	Page    int
	PerPage int
}

func (p Page) Norm() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	return p
}

func (p Page) offset() int { return (p.Page - 1) * p.PerPage }

// querier é satisfeito por *sql.DB e *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
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

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func orderBy(allowed map[string]string, sortBy, def, sortOrder string) string {
	col, ok := allowed[sortBy]
	if !ok {
		col = allowed[def]
	}
	dir := "DESC"
	if sortOrder == "asc" {
		dir = "ASC"
	}
	return " ORDER BY " + col + " " + dir
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
