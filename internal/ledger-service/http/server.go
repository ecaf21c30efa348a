package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/arb-bet-tracker/internal/ledger-service/model"
	"github.com/radieske/arb-bet-tracker/internal/ledger-service/repo"
)

// Repo define as operações de contas, casas e transações usadas pelos handlers
type Repo interface {
	ListAccounts(ctx context.Context, f repo.AccountFilter) ([]model.Account, int, error)
	GetAccount(ctx context.Context, id string) (model.Account, error)
	ResolveAccount(ctx context.Context, input string) (model.Account, error)
	CreateAccount(ctx context.Context, a *model.Account) error
	UpdateAccount(ctx context.Context, a *model.Account) error
	DeleteAccount(ctx context.Context, id string) error
	AccountStats(ctx context.Context) (model.AccountStats, error)

	ListSportsbooks(ctx context.Context, f repo.SportsbookFilter) ([]model.Sportsbook, int, error)
	ActiveSportsbooks(ctx context.Context) ([]model.Sportsbook, error)
	GetSportsbook(ctx context.Context, id string) (model.Sportsbook, error)
	CreateSportsbook(ctx context.Context, s *model.Sportsbook) error
	CreateSportsbooks(ctx context.Context, list []*model.Sportsbook) ([]*model.Sportsbook, []string, error)
	UpdateSportsbook(ctx context.Context, s *model.Sportsbook) error
	DeleteSportsbook(ctx context.Context, id string) error
	ToggleSportsbook(ctx context.Context, id string, now time.Time) (model.Sportsbook, error)
	ResolveSportsbook(ctx context.Context, input string, now time.Time) (model.Sportsbook, error)
	SportsbookStats(ctx context.Context) (model.SportsbookStats, error)

	ListTransactions(ctx context.Context, f repo.TxFilter) ([]model.Transaction, int, error)
	CompletedTransactions(ctx context.Context, f repo.TxFilter) ([]model.Transaction, error)
	GetTransaction(ctx context.Context, id string) (model.Transaction, error)
	CreateTransaction(ctx context.Context, t *model.Transaction, refs repo.TxRefs) error
	UpdateTransaction(ctx context.Context, t *model.Transaction, refs repo.TxRefs, now time.Time) error
	DeleteTransaction(ctx context.Context, id string) error
}

// Server expõe contas, casas de apostas e transações (depósitos/saques)
type Server struct {
	log  *zap.Logger
	repo Repo
	now  func() time.Time
}

func NewServer(log *zap.Logger, repo Repo) *Server {
	return &Server{log: log, repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /accounts", s.listAccounts)
	mux.HandleFunc("POST /accounts", s.createAccount)
	mux.HandleFunc("GET /accounts/stats", s.accountStats)
	mux.HandleFunc("GET /accounts/resolve", s.resolveAccount)
	mux.HandleFunc("GET /accounts/{id}", s.getAccount)
	mux.HandleFunc("PUT /accounts/{id}", s.updateAccount)
	mux.HandleFunc("DELETE /accounts/{id}", s.deleteAccount)

	mux.HandleFunc("GET /sportsbooks", s.listSportsbooks)
	mux.HandleFunc("POST /sportsbooks", s.createSportsbook)
	mux.HandleFunc("GET /sportsbooks/active", s.activeSportsbooks)
	mux.HandleFunc("GET /sportsbooks/stats", s.sportsbookStats)
	mux.HandleFunc("POST /sportsbooks/resolve", s.resolveSportsbook)
	mux.HandleFunc("POST /sportsbooks/bulk-create", s.bulkCreateSportsbooks)
	mux.HandleFunc("GET /sportsbooks/{id}", s.getSportsbook)
	mux.HandleFunc("PUT /sportsbooks/{id}", s.updateSportsbook)
	mux.HandleFunc("DELETE /sportsbooks/{id}", s.deleteSportsbook)
	mux.HandleFunc("PATCH /sportsbooks/{id}/toggle-active", s.toggleSportsbook)

	mux.HandleFunc("GET /transactions", s.listTransactions)
	mux.HandleFunc("POST /transactions", s.createTransaction)
	mux.HandleFunc("GET /transactions/stats", s.transactionStats)
	mux.HandleFunc("GET /transactions/{id}", s.getTransaction)
	mux.HandleFunc("PUT /transactions/{id}", s.updateTransaction)
	mux.HandleFunc("DELETE /transactions/{id}", s.deleteTransaction)
	return mux
}

// badRequest é erro de validação do corpo ou da query
type badRequest string

func (e badRequest) Error() string { return string(e) }

// fail mapeia erros do repositório para status HTTP
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	var br badRequest
	switch {
	case errors.As(err, &br):
		writeError(w, http.StatusBadRequest, br.Error())
	case errors.Is(err, repo.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, repo.ErrConflict), errors.Is(err, repo.ErrInUse):
		writeError(w, http.StatusConflict, err.Error())
	default:
		s.log.Error("request failed", zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return badRequest("bad json")
	}
	return nil
}

func page(r *http.Request) repo.Page {
	q := r.URL.Query()
	p, _ := strconv.Atoi(q.Get("page"))
	pp, _ := strconv.Atoi(q.Get("per_page"))
	return repo.Page{Page: p, PerPage: pp}
}

// parseTime aceita RFC3339 e data simples (YYYY-MM-DD)
func parseTime(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return &t, nil
		}
	}
	return nil, badRequest("invalid date: " + v)
}

// trimmed devolve nil para texto vazio
func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeMessage(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusOK, map[string]string{"message": msg})
}
