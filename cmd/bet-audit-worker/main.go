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

	"github.com/radieske/arb-bet-tracker/internal/bet-audit/consumer"
	"github.com/radieske/arb-bet-tracker/internal/bet-audit/repository"
	"github.com/radieske/arb-bet-tracker/internal/shared/config"
	"github.com/radieske/arb-bet-tracker/internal/shared/db"
	"github.com/radieske/arb-bet-tracker/internal/shared/kafka"
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

	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	// Consumer group próprio: não concorre com outros consumidores de bet_placed
	reader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicBetPlaced, "bet-audit")
	defer reader.Close()
	dlq := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetPlacedDLQ)
	defer dlq.Close()

	recorded := prometheus.NewCounter(prometheus.CounterOpts{Name: "bet_audit_recorded_total", Help: "eventos gravados"})
	duplicates := prometheus.NewCounter(prometheus.CounterOpts{Name: "bet_audit_duplicates_total", Help: "reentregas ignoradas"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "bet_audit_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(recorded, duplicates, errorsBy)

	auditor := &consumer.Auditor{
		Log:         log,
		Reader:      reader,
		DLQ:         dlq,
		Repo:        repository.NewPostgresRepo(pg),
		OnRecorded:  recorded.Inc,
		OnDuplicate: duplicates.Inc,
		OnError:     func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	}

	msrv := metrics.NewMetricsServer(cfg.MetricsPort, pg.PingContext)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("metrics/health listening", zap.String("addr", msrv.Addr))
		if err := msrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		log.Info("bet-audit-worker started", zap.String("topic", cfg.TopicBetPlaced))
		err := auditor.Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		shCtx, shCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shCancel()
		return msrv.Shutdown(shCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("bet-audit-worker stopped with error", zap.Error(err))
	}
	log.Info("bet-audit-worker stopped")
}
