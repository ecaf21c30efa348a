package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/radieske/arb-bet-tracker/internal/api-gateway/gateway"
	"github.com/radieske/arb-bet-tracker/internal/shared/config"
	"github.com/radieske/arb-bet-tracker/internal/shared/logger"
	"github.com/radieske/arb-bet-tracker/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_requests_total", Help: "requisições por serviço de destino",
	}, []string{"upstream"})
	prometheus.MustRegister(requests)

	h, err := gateway.New(gateway.Targets{
		Arbitrage: cfg.ArbitrageURL,
		Bet:       cfg.BetURL,
		Ledger:    cfg.LedgerURL,
	}, log, requests)
	if err != nil {
		log.Fatal("gateway config", zap.Error(err))
	}

	// sem WriteTimeout: /api/ws mantém a conexão aberta
	apiSrv := &http.Server{Addr: ":" + cfg.HTTPPort, Handler: h, ReadHeaderTimeout: 5 * time.Second}
	metricsSrv := metrics.NewMetricsServer(cfg.MetricsPort)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range []*http.Server{apiSrv, metricsSrv} {
		srv := srv
		g.Go(func() error {
			log.Info("api-gateway listening", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		shCtx, shCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shCancel()
		_ = metricsSrv.Shutdown(shCtx)
		return apiSrv.Shutdown(shCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("gateway stopped with error", zap.Error(err))
	}
}
