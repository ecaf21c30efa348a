package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/arb-bet-tracker/internal/bet-service/bets"
	"github.com/radieske/arb-bet-tracker/internal/bet-service/odds"
	"github.com/radieske/arb-bet-tracker/internal/bet-service/repo"
	"github.com/radieske/arb-bet-tracker/internal/bet-service/service"
	"github.com/radieske/arb-bet-tracker/pkg/stakes"
)

type Repository interface {
	List(ctx context.Context, f repo.ListFilter) ([]bets.Bet, error)
	Get(ctx context.Context, id string) (bets.Bet, error)
	Create(ctx context.Context, b *bets.Bet) error
	Update(ctx context.Context, b *bets.Bet) error
	Delete(ctx context.Context, id string) error
}

type Confirmer interface {
	Confirm(ctx context.Context, req service.ConfirmRequest) (service.ConfirmResult, error)
}

type Server struct {
	log     *zap.Logger
	repo    Repository
	confirm Confirmer
	now     func() time.Time
}

func NewServer(log *zap.Logger, r Repository, c Confirmer) *Server {
	return &Server{log: log, repo: r, confirm: c, now: func() time.Time { return time.Now().UTC() }}
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /bets", s.listBets)
	mux.HandleFunc("POST /bets", s.createBet)
	mux.HandleFunc("POST /bets/from-arbitrage", s.fromArbitrage)
	mux.HandleFunc("GET /bets/{id}", s.getBet)
	mux.HandleFunc("PUT /bets/{id}", s.updateBet)
	mux.HandleFunc("DELETE /bets/{id}", s.deleteBet)
	mux.HandleFunc("GET /stats", s.stats)
	return mux
}

func (s *Server) listBets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := s.repo.List(r.Context(), repo.ListFilter{Status: q.Get("status"), Sport: q.Get("sport")})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) createBet(w http.ResponseWriter, r *http.Request) {
	var req bets.CreateBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	b, err := req.New(s.now())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.repo.Create(r.Context(), b); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (s *Server) getBet(w http.ResponseWriter, r *http.Request) {
	b, err := s.repo.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// updateBet altera campos e, quando vem status, liquida a aposta
func (s *Server) updateBet(w http.ResponseWriter, r *http.Request) {
	var req bets.UpdateBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	b, err := s.repo.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := req.Apply(&b, s.now()); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.repo.Update(r.Context(), &b); err != nil {
		s.fail(w, r, err)
		return
	}
	if req.Status != nil {
		s.log.Info("bet settled", zap.String("bet_id", b.ID), zap.String("status", string(b.Status)),
			zap.String("profit_loss", b.ProfitLoss.String()))
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) deleteBet(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "bet deleted"})
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	list, err := s.repo.List(r.Context(), repo.ListFilter{})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bets.ComputeStats(list))
}

// fromArbitrage cria uma aposta por perna a partir da calculadora
func (s *Server) fromArbitrage(w http.ResponseWriter, r *http.Request) {
	var req service.ConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	res, err := s.confirm.Confirm(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// fail mapeia erros de domínio para status HTTP
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	var (
		ve    *service.ValidationError
		drift *odds.DriftError
	)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, ve.Error())
	case errors.As(err, &drift):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":     drift.Error(),
			"leg_index": drift.LegIndex,
			"current":   drift.Current,
		})
	case errors.Is(err, service.ErrLedger):
		s.log.Warn("ledger call failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "ledger unavailable")
	default:
		if p, ok := stakes.Describe(err); ok {
			writeJSON(w, http.StatusUnprocessableEntity, p)
			return
		}
		s.log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
