package gateway

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Targets são as URLs base dos serviços atrás do gateway
type Targets struct {
	Arbitrage string
	Bet       string
	Ledger    string
}

func rp(to string, log *zap.Logger) (*httputil.ReverseProxy, error) {
	u, err := url.Parse(to)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid upstream url %q", to)
	}
	p := httputil.NewSingleHostReverseProxy(u)
	p.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		log.Warn("upstream failed", zap.String("upstream", u.Host), zap.String("path", r.URL.Path), zap.Error(err))
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	}
	return p, nil
}

// withPrefix antepõe um prefixo ao path antes de repassar (ex.: /v1)
func withPrefix(prefix string, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r2 := r.Clone(r.Context())
		r2.URL.Path = prefix + r.URL.Path
		r2.URL.RawPath = ""
		h.ServeHTTP(w, r2)
	})
}

// New monta o roteamento /api/* para os serviços:
//
//	/api/arbitrages/*, /api/stakes, /api/ws -> arbitrage-service (/v1/...)
//	/api/bets/*, /api/stats                  -> bet-service
//	/api/accounts/*, /api/sportsbooks/*,
//	/api/transactions/*                      -> ledger-service
//
// requests (opcional) conta requisições por upstream.
func New(t Targets, log *zap.Logger, requests *prometheus.CounterVec) (http.Handler, error) {
	arb, err := rp(t.Arbitrage, log)
	if err != nil {
		return nil, err
	}
	bet, err := rp(t.Bet, log)
	if err != nil {
		return nil, err
	}
	ledger, err := rp(t.Ledger, log)
	if err != nil {
		return nil, err
	}

	count := func(upstream string, h http.Handler) http.Handler {
		if requests == nil {
			return h
		}
		c := requests.WithLabelValues(upstream)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c.Inc()
			h.ServeHTTP(w, r)
		})
	}

	toArb := count("arbitrage", http.StripPrefix("/api", withPrefix("/v1", arb)))
	toBet := count("bet", http.StripPrefix("/api", bet))
	toLedger := count("ledger", http.StripPrefix("/api", ledger))

	mux := http.NewServeMux()
	for _, p := range []string{"/api/arbitrages", "/api/arbitrages/", "/api/stakes", "/api/ws"} {
		mux.Handle(p, toArb)
	}
	for _, p := range []string{"/api/bets", "/api/bets/", "/api/stats"} {
		mux.Handle(p, toBet)
	}
	for _, p := range []string{"/api/accounts", "/api/accounts/", "/api/sportsbooks", "/api/sportsbooks/", "/api/transactions", "/api/transactions/"} {
		mux.Handle(p, toLedger)
	}
	return WithCORS(mux), nil
}

// WithCORS libera qualquer origem; preflight responde 204 sem tocar os serviços
func WithCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", strings.Join([]string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions,
		}, ", "))
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.ServeHTTP(w, r)
	})
}
