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

	"github.com/radieske/arb-bet-tracker/internal/scanner-simulator/sim"
	"github.com/radieske/arb-bet-tracker/internal/shared/config"
	"github.com/radieske/arb-bet-tracker/internal/shared/logger"
	"github.com/radieske/arb-bet-tracker/internal/shared/metrics"
)

// Simula o scanner externo: publica em /ws as arbitragens encontradas a cada rodada
func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	connections := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "scanner_ws_connections",
		Help: "Clientes WebSocket conectados",
	})
	sent := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "scanner_ws_messages_sent_total",
		Help: "Total de mensagens WS enviadas",
	})
	found := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "scanner_arbitrages_generated_total",
		Help: "Arbitragens geradas pelo simulador",
	})
	prometheus.MustRegister(connections, sent, found)

	hub := sim.NewHub(log, connections, sent)
	gen := sim.NewGenerator(time.Now().UnixNano(), time.Now())

	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", hub.HandleWS)
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	msrv := metrics.NewMetricsServer(cfg.MetricsPort)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ticker := time.NewTicker(cfg.ScanInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case now := <-ticker.C:
				arbs := gen.Next(now)
				if len(arbs) == 0 || hub.Len() == 0 {
					continue
				}
				found.Add(float64(len(arbs)))
				hub.Broadcast(arbs)
				log.Debug("round broadcast", zap.Int("arbitrages", len(arbs)))
			}
		}
	})
	g.Go(func() error {
		log.Info("scanner-simulator listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		log.Info("metrics/health listening", zap.String("addr", msrv.Addr))
		if err := msrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shCtx, shCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shCancel()
		_ = srv.Shutdown(shCtx)
		return msrv.Shutdown(shCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("scanner-simulator stopped with error", zap.Error(err))
	}
	log.Info("scanner-simulator stopped")
}
