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

	"github.com/radieske/arb-bet-tracker/internal/arbitrage-service/cache"
	httpapi "github.com/radieske/arb-bet-tracker/internal/arbitrage-service/http"
	"github.com/radieske/arb-bet-tracker/internal/arbitrage-service/repo"
	"github.com/radieske/arb-bet-tracker/internal/arbitrage-service/ws"
	sharedcache "github.com/radieske/arb-bet-tracker/internal/shared/cache"
	"github.com/radieske/arb-bet-tracker/internal/shared/config"
	"github.com/radieske/arb-bet-tracker/internal/shared/db"
	"github.com/radieske/arb-bet-tracker/internal/shared/logger"
	"github.com/radieske/arb-bet-tracker/internal/shared/metrics"
)

func main() {
	// carrega config
	cfg := config.Load()

	// inicia logger
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	log.Info("starting service", zap.String("service", cfg.ServiceName), zap.String("env", cfg.Env))

	// conecta com db Postgres
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()
	log.Info("postgres connected")

	// conecta com cache Redis
	redisClient, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("failed to connect redis", zap.Error(err))
	}
	defer redisClient.Close()
	log.Info("redis connected")

	arbRepo := &repo.ArbitrageRepo{DB: pg}
	arbCache := cache.New(redisClient)
	source := &httpapi.Source{Repo: arbRepo, Cache: arbCache, TTL: cfg.ArbCacheTTL, Log: log}

	// calculadora ao vivo: sessões WS alimentadas pelo pub/sub do processor
	hub := ws.NewHub(source, cfg.DefaultStake, log, func(r *http.Request) bool { return true })

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	ws.StartRedisSubscriber(ctx, redisClient, cfg.RedisPubSubChannel, hub, log)

	api := &httpapi.API{
		Repo:   arbRepo,
		Cache:  arbCache,
		Source: source,
		Log:    log,
		WS:     hub.HandleWS,
	}

	apiSrv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	metricsSrv := metrics.NewMetricsServer(cfg.MetricsPort,
		pg.PingContext,
		func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
	)

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
	log.Info("arbitrage-service stopped")
}
