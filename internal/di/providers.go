package di

import (
	"fmt"
	"time"

	"SigPulse/internal/domain/repository"
	"SigPulse/internal/handler/api"
	"SigPulse/internal/service/exchange"
	"SigPulse/internal/service/notify"
	"SigPulse/internal/service/ratelimit"
	"SigPulse/internal/services/alerts"
	"SigPulse/internal/services/indicators"
	"SigPulse/internal/services/risk"
	"SigPulse/internal/services/scoring"
	"SigPulse/internal/services/throttle"
	"SigPulse/internal/usecase"
	pkgcache "SigPulse/pkg/cache"
	"SigPulse/pkg/config"
	apphttp "SigPulse/pkg/http"
	pkgkafka "SigPulse/pkg/kafka"
	applogger "SigPulse/pkg/logger"
	"SigPulse/pkg/metrics"
	"SigPulse/pkg/queue"
	"SigPulse/pkg/server"

	"github.com/redis/go-redis/v9"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideHTTPClient creates the shared outbound HTTP client.
func ProvideHTTPClient() *apphttp.Client {
	return apphttp.NewClient()
}

// ProvideCache builds the response cache: layered over Redis when
// configured, in-process otherwise.
func ProvideCache(cfg *config.Config) (pkgcache.Service, error) {
	if !cfg.Redis.Enabled {
		return pkgcache.NewMemoryCache(), nil
	}
	rc, err := pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(cfg.Redis.Host),
		pkgcache.WithRedisPort(cfg.Redis.Port),
		pkgcache.WithRedisPassword(cfg.Redis.Password),
		pkgcache.WithRedisDB(cfg.Redis.DB),
		pkgcache.WithRedisPrefix("sigpulse"),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return pkgcache.NewLayeredCache(rc), nil
}

// ProvideMarketData creates the Gate.io REST client.
func ProvideMarketData(cfg *config.Config, httpClient *apphttp.Client, cache pkgcache.Service) repository.MarketData {
	return exchange.NewRESTClient(httpClient,
		exchange.WithBaseURL(cfg.Exchange.BaseURL),
		exchange.WithCache(cache),
		exchange.WithRateLimiter(ratelimit.New()),
		exchange.WithCacheTTLs(cfg.Exchange.CandleCacheTTL, cfg.Exchange.TickerCacheTTL),
	)
}

// ProvideTickerStream creates the Gate.io WebSocket stream.
func ProvideTickerStream(cfg *config.Config) repository.TickerStream {
	return exchange.NewStream(
		cfg.Exchange.WebSocketURL,
		cfg.Exchange.Pair,
		cfg.Exchange.ReconnectDelay,
		cfg.Exchange.PingInterval,
	)
}

// ProvideScoringEngine builds the scoring engine from config.
func ProvideScoringEngine(cfg *config.Config) (*scoring.Engine, error) {
	sc := scoring.DefaultConfig()
	sc.Weights = scoring.Weights{
		Trend:      cfg.Scoring.Weights.Trend,
		Momentum:   cfg.Scoring.Weights.Momentum,
		Volatility: cfg.Scoring.Weights.Volatility,
		Volume:     cfg.Scoring.Weights.Volume,
		Levels:     cfg.Scoring.Weights.Levels,
	}
	sc.SignalThreshold = cfg.Scoring.SignalThreshold
	if cfg.Scoring.CounterTrendFilter != nil {
		sc.CounterTrendFilter = *cfg.Scoring.CounterTrendFilter
	}
	return scoring.NewEngine(sc)
}

// ProvideRiskCalculator builds the risk calculator from config.
func ProvideRiskCalculator(cfg *config.Config) (*risk.Calculator, error) {
	return risk.NewCalculator(cfg.Risk.StopMultiplier, cfg.Risk.ProfitMultiplier)
}

// ProvideEvaluator wires scoring, risk and throttling together.
func ProvideEvaluator(cfg *config.Config, engine *scoring.Engine, calc *risk.Calculator) *usecase.Evaluator {
	intervals := make(map[repository.Timeframe]time.Duration, len(cfg.Evaluation.SignalIntervals))
	for tf, d := range cfg.Evaluation.SignalIntervals {
		intervals[repository.Timeframe(tf)] = d
	}
	return usecase.NewEvaluator(engine, calc, throttle.New(), intervals)
}

// ProvideKafkaProducer creates a Kafka producer, or nil when disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.BatchTimeout),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideNotifyChannels assembles every enabled delivery channel.
func ProvideNotifyChannels(cfg *config.Config, httpClient *apphttp.Client, producer *pkgkafka.Producer) []notify.Channel {
	var channels []notify.Channel
	n := cfg.Notifications
	if n.Telegram.Enabled {
		channels = append(channels, notify.NewTelegram(httpClient, n.Telegram.Token, n.Telegram.ChatID))
	}
	if n.ServerChan.Enabled {
		channels = append(channels, notify.NewServerChan(httpClient, n.ServerChan.SendKey))
	}
	if n.Webhook.Enabled {
		channels = append(channels, notify.NewWebhook(httpClient, n.Webhook.URL, n.Webhook.Headers))
	}
	if n.Email.Enabled {
		channels = append(channels, notify.NewEmail(
			n.Email.Host, n.Email.Port, n.Email.Username, n.Email.Password, n.Email.From, n.Email.To))
	}
	if producer != nil {
		channels = append(channels, notify.NewKafka(producer, cfg.Kafka.Topic))
	}
	return channels
}

// ProvideNotifyQueue creates the Redis-backed retry queue, or nil when
// Redis is not configured.
func ProvideNotifyQueue(cfg *config.Config, log *applogger.Logger, channels []notify.Channel) *queue.RedisQueue {
	if !cfg.Redis.Enabled {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	q := queue.NewRedisQueue(log, &queue.QueueConfig{
		Workers:    cfg.Notifications.Queue.Workers,
		RetryLimit: cfg.Notifications.Queue.RetryLimit,
		RetryDelay: cfg.Notifications.Queue.RetryDelay,
	}, client, queue.ModeProducerConsumer, queue.WithKeyPrefix("sigpulse:queue"))
	q.RegisterJob(notify.NewRetryJob(log, channels...))

	// Operator-facing channels only; the Kafka topic carries decisions.
	var alertChannels []notify.Channel
	for _, ch := range channels {
		if ch.Name() != "kafka" {
			alertChannels = append(alertChannels, ch)
		}
	}
	q.RegisterJob(notify.NewLogAlertJob(log, alertChannels...))
	return q
}

// ProvideNotifier creates the dispatcher over the channel set.
func ProvideNotifier(log *applogger.Logger, q *queue.RedisQueue, channels []notify.Channel) repository.Notifier {
	var qs queue.QueueService
	if q != nil {
		qs = q
	}
	return notify.NewDispatcher(log, qs, channels...)
}

// ProvideLatestStore creates the latest-decision store.
func ProvideLatestStore() *usecase.LatestStore {
	return usecase.NewLatestStore()
}

// ProvideTickerCollector creates the live ticker consumer.
func ProvideTickerCollector(stream repository.TickerStream, m repository.Metrics) *usecase.TickerCollector {
	return usecase.NewTickerCollector(stream, m)
}

// ProvideIndicatorBuilder creates the snapshot builder.
func ProvideIndicatorBuilder() *indicators.Builder {
	return indicators.NewBuilder(indicators.DefaultConfig())
}

// ProvideAlertDetector creates the market anomaly detector, or nil
// when alerts are disabled.
func ProvideAlertDetector(cfg *config.Config) *alerts.Detector {
	if cfg.Alerts.Enabled != nil && !*cfg.Alerts.Enabled {
		return nil
	}
	return alerts.NewDetector(alerts.DefaultConfig())
}

// ProvideRunner creates the evaluation loop.
func ProvideRunner(
	cfg *config.Config,
	market repository.MarketData,
	builder *indicators.Builder,
	eval *usecase.Evaluator,
	notifier repository.Notifier,
	m repository.Metrics,
	store *usecase.LatestStore,
	tickers *usecase.TickerCollector,
	detector *alerts.Detector,
	log *applogger.Logger,
) *usecase.Runner {
	tfs := make([]repository.Timeframe, 0, len(cfg.Evaluation.Timeframes))
	for _, tf := range cfg.Evaluation.Timeframes {
		tfs = append(tfs, repository.NormalizeTimeframe(tf))
	}
	return usecase.NewRunner(usecase.RunnerParams{
		Pair:        cfg.Exchange.Pair,
		Timeframes:  tfs,
		Market:      market,
		Builder:     builder,
		Evaluator:   eval,
		Notifier:    notifier,
		Metrics:     m,
		Store:       store,
		Tickers:     tickers,
		Logger:      log,
		PollEvery:   cfg.Evaluation.PollInterval,
		HistoryBars: cfg.Evaluation.HistoryBars,

		Detector:      detector,
		AlertCooldown: cfg.Alerts.Cooldown,
	})
}

// ProvideHTTPHandler creates the decisions API handler.
func ProvideHTTPHandler(log *applogger.Logger, store *usecase.LatestStore, tickers *usecase.TickerCollector) apphttp.Handler {
	return api.NewDecisionsHandler(log, store, tickers)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *applogger.Logger,
	runner *usecase.Runner,
	collector *usecase.TickerCollector,
	q *queue.RedisQueue,
	producer *pkgkafka.Producer,
	handler apphttp.Handler,
) *server.App {
	return server.New(cfg, log, runner, collector, q, producer, handler)
}
