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

	"github.com/radieske/arb-bet-tracker/internal/arbitrage-processor/cache"
	"github.com/radieske/arb-bet-tracker/internal/arbitrage-processor/consumer"
	"github.com/radieske/arb-bet-tracker/internal/arbitrage-processor/pubsub"
	"github.com/radieske/arb-bet-tracker/internal/arbitrage-processor/repository"
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
		panic(err)
	}
	defer log.Sync()

	// Inicializa dependências: Postgres e Redis
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	redisClient, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	// Consumer group arbitrage-processor + DLQ para combinações inválidas
	reader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicArbitrageFound, "arbitrage-processor")
	defer reader.Close()
	dlq := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicArbitrageFoundDLQ)
	defer dlq.Close()

	// Métricas Prometheus para monitoramento do processamento
	consumed := prometheus.NewCounter(prometheus.CounterOpts{Name: "arb_proc_messages_consumed_total", Help: "mensagens consumidas"})
	cached := prometheus.NewCounter(prometheus.CounterOpts{Name: "arb_proc_cache_sets_total", Help: "sets no cache"})
	persist := prometheus.NewCounter(prometheus.CounterOpts{Name: "arb_proc_db_writes_total", Help: "upserts no banco"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "arb_proc_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(consumed, cached, persist, errorsBy)

	proc := &consumer.Processor{
		Log:        log,
		Reader:     reader,
		DLQ:        dlq,
		Repo:       repository.NewPostgresRepo(pg),
		Cache:      cache.NewRedisCache(redisClient, cfg.ArbCacheTTL),
		Pub:        pubsub.NewRedisBroadcaster(redisClient, cfg.RedisPubSubChannel),
		Stake:      cfg.DefaultStake,
		OnConsumed: func() { consumed.Inc() },
		OnCached:   func() { cached.Inc() },
		OnPersist:  func() { persist.Inc() },
		OnError:    func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	}

	// Servidor HTTP para métricas e health check
	msrv := metrics.NewMetricsServer(cfg.MetricsPort,
		pg.PingContext,
		func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
	)

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
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
		log.Info("arbitrage-processor started", zap.String("topic", cfg.TopicArbitrageFound))
		err := proc.Run(gctx)
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
		log.Error("processor stopped with error", zap.Error(err))
	}
	log.Info("arbitrage-processor stopped")
}
