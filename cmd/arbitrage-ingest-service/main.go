package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/radieske/arb-bet-tracker/internal/arbitrage-ingest/publisher"
	"github.com/radieske/arb-bet-tracker/internal/arbitrage-ingest/service"
	"github.com/radieske/arb-bet-tracker/internal/shared/config"
	"github.com/radieske/arb-bet-tracker/internal/shared/kafka"
	"github.com/radieske/arb-bet-tracker/internal/shared/logger"
	"github.com/radieske/arb-bet-tracker/internal/shared/metrics"
)

func main() {
	importPath := flag.String("import", "", "publica um arquivo JSON de arbitragens e sai")
	flag.Parse()

	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	brokers := kafka.Brokers(cfg.KafkaBrokers)
	log.Info("kafka brokers", zap.Strings("brokers", brokers))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Em local/dev o tópico é criado pelo próprio serviço
	if (cfg.Env == "local" || cfg.Env == "dev") && len(brokers) > 0 {
		if err := publisher.EnsureTopic(ctx, brokers[0], cfg.TopicArbitrageFound, log); err != nil {
			log.Warn("ensure topic failed", zap.Error(err))
		}
	}

	pub, err := publisher.NewKafkaPublisher(brokers, cfg.TopicArbitrageFound, log)
	if err != nil {
		log.Fatal("kafka publisher", zap.Error(err))
	}
	defer pub.Close()

	if *importPath != "" {
		if _, err := service.ImportFile(ctx, *importPath, pub, "import", log); err != nil {
			log.Fatal("import failed", zap.Error(err))
		}
		return
	}

	published := prometheus.NewCounter(prometheus.CounterOpts{Name: "arb_ingest_published_total", Help: "arbitragens publicadas"})
	invalid := prometheus.NewCounter(prometheus.CounterOpts{Name: "arb_ingest_invalid_total", Help: "mensagens descartadas"})
	failed := prometheus.NewCounter(prometheus.CounterOpts{Name: "arb_ingest_publish_errors_total", Help: "falhas ao publicar"})
	prometheus.MustRegister(published, invalid, failed)

	wsClient := &service.WSClient{
		URL:         cfg.ScannerWSURL,
		Log:         log,
		Publisher:   pub,
		Source:      "scanner",
		OnPublished: published.Inc,
		OnInvalid:   invalid.Inc,
		OnFailed:    failed.Inc,
	}

	msrv := metrics.NewMetricsServer(cfg.MetricsPort)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		wsClient.Start(gctx)
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
		return msrv.Shutdown(shCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("ingest stopped with error", zap.Error(err))
	}
	log.Info("arbitrage-ingest-service stopped")
}
