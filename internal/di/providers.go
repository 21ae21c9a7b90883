package di

import (
	"context"
	"fmt"
	"time"

	"SentiPulse/internal/domain/repository"
	"SentiPulse/internal/handler/api"
	internalrepo "SentiPulse/internal/repository"
	"SentiPulse/internal/service/birdcli"
	"SentiPulse/internal/service/reddit"
	"SentiPulse/internal/service/stocktwits"
	"SentiPulse/internal/usecase"
	pkgch "SentiPulse/pkg/clickhouse"
	"SentiPulse/pkg/config"
	xhttp "SentiPulse/pkg/http"
	pkgkafka "SentiPulse/pkg/kafka"
	applogger "SentiPulse/pkg/logger"
	"SentiPulse/pkg/metrics"
	"SentiPulse/pkg/server"
)

// ProvideLogger creates the application logger. Production gets JSON,
// everything else console.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	format := "console"
	level := "debug"
	if cfg.Environment == "production" {
		format = "json"
		level = "info"
	}
	return applogger.New(&applogger.Config{Level: level, Format: format, Output: "stdout"})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideStore creates the bounded store backend selected by config.
func ProvideStore(cfg *config.Config) (repository.Store, error) {
	switch cfg.Store.Type {
	case "redis":
		return internalrepo.NewRedisStore(&internalrepo.RedisStoreConfig{
			Host:         cfg.Store.Redis.Host,
			Port:         cfg.Store.Redis.Port,
			Password:     cfg.Store.Redis.Password,
			DB:           cfg.Store.Redis.DB,
			Prefix:       cfg.Store.Redis.Prefix,
			PoolSize:     cfg.Store.Redis.PoolSize,
			MinIdleConns: cfg.Store.Redis.MinIdleConns,
			PoolTimeout:  cfg.Store.Redis.PoolTimeout,
		}, cfg.Store.ReadingsCap, cfg.Store.AggregatesCap, cfg.Store.AlertsCap)
	case "memory":
		return internalrepo.NewMemoryStore(cfg.Store.ReadingsCap, cfg.Store.AggregatesCap, cfg.Store.AlertsCap), nil
	default:
		return nil, fmt.Errorf("unknown store type %q", cfg.Store.Type)
	}
}

// ProvideAdapters builds the enabled source adapters in collection order.
func ProvideAdapters(cfg *config.Config, logger *applogger.Logger) []repository.SourceAdapter {
	var adapters []repository.SourceAdapter
	if cfg.Sources.StockTwits.Enabled {
		adapters = append(adapters, stocktwits.New(
			logger,
			cfg.Sources.StockTwits.BaseURL,
			cfg.Sources.Tickers,
			cfg.Sources.StockTwits.Limit,
			cfg.Scheduler.AdapterDelay,
			cfg.Scheduler.AdapterTimeout,
		))
	}
	if cfg.Sources.Reddit.Enabled {
		adapters = append(adapters, reddit.New(
			logger,
			cfg.Sources.Reddit.BaseURL,
			cfg.Sources.Reddit.Subreddits,
			cfg.Sources.SearchTerms,
			cfg.Sources.Reddit.Limit,
			cfg.Scheduler.AdapterDelay,
			cfg.Scheduler.AdapterTimeout,
		))
	}
	if cfg.Sources.Twitter.Enabled {
		adapters = append(adapters, birdcli.New(
			logger,
			cfg.Sources.Twitter.Command,
			cfg.Sources.Twitter.Terms,
			cfg.Sources.Twitter.Limit,
			cfg.Sources.Twitter.Timeout,
			cfg.Scheduler.AdapterDelay,
		))
	}
	return adapters
}

// ProvideClickHouseClient creates the ClickHouse client for the archive.
// Returns nil when archiving is disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.Archive.Enabled {
		return nil, nil
	}
	ch := cfg.Archive.ClickHouse
	client, err := pkgch.NewClient(
		pkgch.WithHost(ch.Host),
		pkgch.WithPort(ch.Port),
		pkgch.WithDatabase(ch.Database),
		pkgch.WithCredentials(ch.User, ch.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(ch.UseHTTP),
		pkgch.WithAsyncInsert(ch.AsyncInsert, ch.WaitForAsync),
		pkgch.WithTimeouts(ch.DialTimeout, ch.ReadTimeout, ch.WriteTimeout),
		pkgch.WithMaxExecutionTime(ch.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	readings, aggregates := archiveTables(cfg)
	if err := client.InitSchema(ctx, internalrepo.ArchiveSchema(ch.Database, readings, aggregates)); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvideArchive creates the long-term archive. Nil when disabled.
func ProvideArchive(chClient *pkgch.Client, cfg *config.Config) repository.Archive {
	if chClient == nil {
		return nil
	}
	readings, aggregates := archiveTables(cfg)
	return internalrepo.NewClickHouseArchive(chClient.DB(), readings, aggregates)
}

func archiveTables(cfg *config.Config) (string, string) {
	db := cfg.Archive.ClickHouse.Database
	return db + ".sentiment_readings", db + ".sentiment_aggregates"
}

// ProvideAlertSink creates the Kafka alert sink. Nil when disabled.
func ProvideAlertSink(cfg *config.Config) (repository.AlertSink, error) {
	k := cfg.Alerts.Kafka
	if !k.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(k.Brokers),
		pkgkafka.WithCompression(k.Compression),
		pkgkafka.WithRequiredAcks(k.RequiredAcks),
		pkgkafka.WithMaxAttempts(k.MaxAttempts),
		pkgkafka.WithTimeouts(k.WriteTimeout, k.ReadTimeout),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaAlertSink(producer, k.Topic), nil
}

// ProvideAggregator creates the collection cycle engine.
func ProvideAggregator(
	adapters []repository.SourceAdapter,
	store repository.Store,
	archive repository.Archive,
	sink repository.AlertSink,
	m repository.Metrics,
	logger *applogger.Logger,
	cfg *config.Config,
) *usecase.SentimentAggregator {
	return usecase.NewSentimentAggregator(
		adapters, store, archive, sink, m, logger,
		cfg.Scheduler.AdapterTimeout,
		cfg.Scheduler.AdapterDelay,
		cfg.Alerts.Dedup,
	)
}

// ProvideScheduler creates the interval scheduler around the aggregator.
func ProvideScheduler(agg *usecase.SentimentAggregator, logger *applogger.Logger, cfg *config.Config) *usecase.Scheduler {
	return usecase.NewScheduler(agg, logger, cfg.Scheduler.Interval)
}

// ProvideHTTPHandler creates the Echo API handler.
func ProvideHTTPHandler(logger *applogger.Logger, agg *usecase.SentimentAggregator, store repository.Store) xhttp.Handler {
	return api.NewSentimentEchoHandler(logger, agg, store)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	logger *applogger.Logger,
	scheduler *usecase.Scheduler,
	store repository.Store,
	sink repository.AlertSink,
	chClient *pkgch.Client,
	handler xhttp.Handler,
) *server.App {
	return server.New(cfg, logger, scheduler, store, sink, chClient, handler)
}
