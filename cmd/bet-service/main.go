package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	bhttp "github.com/radieske/arb-bet-tracker/internal/bet-service/http"
	"github.com/radieske/arb-bet-tracker/internal/bet-service/ledger"
	"github.com/radieske/arb-bet-tracker/internal/bet-service/odds"
	kpub "github.com/radieske/arb-bet-tracker/internal/bet-service/producer"
	"github.com/radieske/arb-bet-tracker/internal/bet-service/repo"
	"github.com/radieske/arb-bet-tracker/internal/bet-service/service"
	sharedcache "github.com/radieske/arb-bet-tracker/internal/shared/cache"
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
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	// Postgres
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	// Redis (odds correntes gravadas pelo processor)
	rdb, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("failed to connect redis", zap.Error(err))
	}
	defer rdb.Close()

	// Kafka writer (topic bet_placed)
	writer := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetPlaced)
	defer writer.Close()

	repository := repo.NewPostgres(pg)
	confirmer := &service.Confirmer{
		Store:  repository,
		Odds:   odds.NewValidator(rdb),
		Ledger: ledger.New(cfg.LedgerURL),
		Pub:    kpub.NewKafkaPublisher(writer),
		Log:    log,
	}

	api := bhttp.NewServer(log, repository, confirmer)
	apiSrv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	metricsSrv := metrics.NewMetricsServer(cfg.MetricsPort,
		pg.PingContext,
		func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range []*http.Server{apiSrv, metricsSrv} {
		srv := srv
		g.Go(func() error {
			log.Info("http server listening", zap.String("addr", srv.Addr))
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
		log.Error("server stopped with error", zap.Error(err))
	}
	log.Info("bet-service stopped")
}
