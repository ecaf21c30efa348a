package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/radieske/arb-bet-tracker/internal/arbitrage-service/dto"
	"github.com/radieske/arb-bet-tracker/internal/arbitrage-service/repo"
	"github.com/radieske/arb-bet-tracker/internal/arbitrage-service/view"
	"github.com/radieske/arb-bet-tracker/pkg/contracts/events"
	"github.com/radieske/arb-bet-tracker/pkg/stakes"
)

// GroupedTTL é o tempo que a listagem agrupada fica no Redis
const GroupedTTL = 30 * time.Second

type Repository interface {
	List(ctx context.Context, f repo.ListFilter) ([]dto.Arbitrage, error)
	ListBySignature(ctx context.Context, signature string, f repo.ListFilter) ([]dto.Arbitrage, error)
	Get(ctx context.Context, id string) (dto.Arbitrage, error)
	Create(ctx context.Context, a dto.Arbitrage) (dto.Arbitrage, error)
	Update(ctx context.Context, a dto.Arbitrage) (dto.Arbitrage, error)
	Delete(ctx context.Context, id string) error
}

type Cache interface {
	GetCurrent(ctx context.Context, id string) (events.ArbitrageFound, bool, error)
	SetCurrent(ctx context.Context, id string, ev events.ArbitrageFound, ttl time.Duration) error
	DeleteCurrent(ctx context.Context, id string) error
	GetQuery(ctx context.Context, key string, dst any) (bool, error)
	SetQuery(ctx context.Context, key string, v any, ttl time.Duration) error
}

// API expõe os endpoints REST de arbitragens e a calculadora de stakes
// Utiliza um repositório (Postgres) e cache (Redis)
type API struct {
	Repo   Repository
	Cache  Cache
	Source *Source
	Log    *zap.Logger
	WS     http.HandlerFunc // calculadora ao vivo; opcional
}

// Router retorna o roteador HTTP com os endpoints REST
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/arbitrages", a.listArbitrages)
		r.Post("/arbitrages", a.createArbitrage)
		r.Get("/arbitrages/grouped", a.groupedArbitrages)
		r.Get("/arbitrages/stats", a.stats)
		r.Get("/arbitrages/match/{signature}", a.byMatch)
		r.Get("/arbitrages/{id}", a.getArbitrage)
		r.Put("/arbitrages/{id}", a.updateArbitrage)
		r.Delete("/arbitrages/{id}", a.deleteArbitrage)
		r.Post("/arbitrages/{id}/stakes", a.arbitrageStakes)
		r.Post("/stakes", a.adhocStakes)
		if a.WS != nil {
			r.Get("/ws", a.WS)
		}
	})
	return r
}

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (a *API) internalError(w http.ResponseWriter, r *http.Request, err error) {
	a.Log.Error("request failed",
		zap.String("path", r.URL.Path),
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}

// allocationError responde 422 para erros do alocador; outros viram 500
func (a *API) allocationError(w http.ResponseWriter, r *http.Request, err error) {
	if p, ok := stakes.Describe(err); ok {
		writeJSON(w, http.StatusUnprocessableEntity, p)
		return
	}
	a.internalError(w, r, err)
}

func parseFilter(r *http.Request) (repo.ListFilter, error) {
	q := r.URL.Query()
	f := repo.ListFilter{
		SortBy:    q.Get("sort_by"),
		SortOrder: q.Get("sort_order"),
	}
	for name, dst := range map[string]**float64{"min_profit": &f.MinProfit, "max_profit": &f.MaxProfit} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) {
			return f, fmt.Errorf("%s must be a number", name)
		}
		*dst = &v
	}
	return f, nil
}

func intParam(r *http.Request, name string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return def
	}
	return v
}

func (a *API) listArbitrages(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	list, err := a.Repo.List(r.Context(), f)
	if err != nil {
		a.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// groupedArbitrages retorna a melhor arbitragem por partida, paginada,
// preferencialmente do cache
func (a *API) groupedArbitrages(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	page := intParam(r, "page", 1)
	perPage := intParam(r, "per_page", view.DefaultPerPage)

	key := groupedKey(f, page, perPage)
	var cached dto.GroupedPage
	if ok, _ := a.Cache.GetQuery(r.Context(), key, &cached); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	// agrupamento é feito sobre a lista filtrada; a ordenação dos grupos é do view
	list, err := a.Repo.List(r.Context(), repo.ListFilter{MinProfit: f.MinProfit, MaxProfit: f.MaxProfit})
	if err != nil {
		a.internalError(w, r, err)
		return
	}
	out := view.Grouped(list, f.SortBy, f.SortOrder, page, perPage)

	if err := a.Cache.SetQuery(r.Context(), key, out, GroupedTTL); err != nil {
		a.Log.Warn("grouped cache set failed", zap.Error(err))
	}
	writeJSON(w, http.StatusOK, out)
}

func groupedKey(f repo.ListFilter, page, perPage int) string {
	num := func(p *float64) string {
		if p == nil {
			return "-"
		}
		return strconv.FormatFloat(*p, 'f', -1, 64)
	}
	return strings.Join([]string{
		"grouped", num(f.MinProfit), num(f.MaxProfit), f.SortBy, f.SortOrder,
		strconv.Itoa(page), strconv.Itoa(perPage),
	}, ":")
}

func (a *API) byMatch(w http.ResponseWriter, r *http.Request) {
	sig := chi.URLParam(r, "signature")
	f, _ := parseFilter(r)

	list, err := a.Repo.ListBySignature(r.Context(), sig, f)
	if err != nil {
		a.internalError(w, r, err)
		return
	}
	v, ok := view.Match(sig, list)
	if !ok {
		writeError(w, http.StatusNotFound, "no arbitrages found for this match signature")
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (a *API) stats(w http.ResponseWriter, r *http.Request) {
	list, err := a.Repo.List(r.Context(), repo.ListFilter{})
	if err != nil {
		a.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view.Stats(list))
}

func (a *API) getArbitrage(w http.ResponseWriter, r *http.Request) {
	arb, err := a.Repo.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		a.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, arb)
}

func (a *API) createArbitrage(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateArbitrageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	switch {
	case strings.TrimSpace(req.MatchSignature) == "":
		writeError(w, http.StatusBadRequest, "match_signature is required")
		return
	case req.KickoffDatetime == "":
		writeError(w, http.StatusBadRequest, "kickoff_datetime is required")
		return
	}

	// valida as pernas pelo alocador; o lucro vem da combinação quando não informado
	pct, err := events.Combination(req.CombinationDetails).ProfitPercentage()
	if err != nil {
		a.allocationError(w, r, err)
		return
	}
	profit := math.Round(pct*100) / 100
	if req.Profit != nil {
		profit = *req.Profit
	}

	arb, err := a.Repo.Create(r.Context(), dto.Arbitrage{
		MatchSignature:     req.MatchSignature,
		Profit:             profit,
		KickoffDatetime:    req.KickoffDatetime,
		CombinationDetails: req.CombinationDetails,
	})
	if err != nil {
		a.internalError(w, r, err)
		return
	}
	a.Log.Info("arbitrage created", zap.String("arbitrage_id", arb.ID), zap.String("match_signature", arb.MatchSignature))
	writeJSON(w, http.StatusCreated, arb)
}

// updateArbitrage aplica uma edição parcial. Pernas novas passam pelo alocador
// e, sem profit explícito, o lucro é recalculado
func (a *API) updateArbitrage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req dto.UpdateArbitrageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	arb, err := a.Repo.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		a.internalError(w, r, err)
		return
	}

	if req.MatchSignature != nil {
		if strings.TrimSpace(*req.MatchSignature) == "" {
			writeError(w, http.StatusBadRequest, "match_signature cannot be empty")
			return
		}
		arb.MatchSignature = *req.MatchSignature
	}
	if req.KickoffDatetime != nil {
		arb.KickoffDatetime = *req.KickoffDatetime
	}
	if req.CombinationDetails != nil {
		pct, err := events.Combination(*req.CombinationDetails).ProfitPercentage()
		if err != nil {
			a.allocationError(w, r, err)
			return
		}
		arb.CombinationDetails = *req.CombinationDetails
		arb.Profit = math.Round(pct*100) / 100
	}
	if req.Profit != nil {
		if math.IsNaN(*req.Profit) || math.IsInf(*req.Profit, 0) {
			writeError(w, http.StatusBadRequest, "profit must be a number")
			return
		}
		arb.Profit = *req.Profit
	}

	arb, err = a.Repo.Update(r.Context(), arb)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		a.internalError(w, r, err)
		return
	}
	// o registro corrente no Redis ficou velho; a próxima leitura aquece de novo
	if err := a.Cache.DeleteCurrent(r.Context(), id); err != nil {
		a.Log.Warn("cache delete failed", zap.String("arbitrage_id", id), zap.Error(err))
	}
	a.Log.Info("arbitrage updated", zap.String("arbitrage_id", id))
	writeJSON(w, http.StatusOK, arb)
}

func (a *API) deleteArbitrage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := a.Repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		a.internalError(w, r, err)
		return
	}
	if err := a.Cache.DeleteCurrent(r.Context(), id); err != nil {
		a.Log.Warn("cache delete failed", zap.String("arbitrage_id", id), zap.Error(err))
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "arbitrage deleted"})
}

// arbitrageStakes roda a calculadora sobre as pernas de uma arbitragem salva
func (a *API) arbitrageStakes(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req dto.StakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	ev, err := a.Source.Load(r.Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		a.internalError(w, r, err)
		return
	}
	a.allocate(w, r, id, events.Combination(ev.CombinationDetails), req.Mode)
}

// adhocStakes roda a calculadora sobre uma combinação enviada no corpo
func (a *API) adhocStakes(w http.ResponseWriter, r *http.Request) {
	var req dto.StakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	a.allocate(w, r, "", req.Combination, req.Mode)
}

func (a *API) allocate(w http.ResponseWriter, r *http.Request, id string, c stakes.Combination, spec stakes.ModeSpec) {
	mode, err := spec.Mode()
	if err != nil {
		a.allocationError(w, r, err)
		return
	}
	b, err := stakes.Allocate(c, mode)
	if err != nil {
		a.allocationError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.StakeResponse{
		ArbitrageID: id,
		Mode:        spec,
		Breakdown:   b,
		Allocations: b.Allocations(),
	})
}
