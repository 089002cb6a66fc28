package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigurationError marks a config failure that must abort startup.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &ConfigurationError{Field: field, Reason: reason}
}

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Exchange struct {
		BaseURL        string        `yaml:"base_url"`
		WebSocketURL   string        `yaml:"websocket_url"`
		Pair           string        `yaml:"pair"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay"`
		PingInterval   time.Duration `yaml:"ping_interval"`
		CandleCacheTTL time.Duration `yaml:"candle_cache_ttl"`
		TickerCacheTTL time.Duration `yaml:"ticker_cache_ttl"`
	} `yaml:"exchange"`
	Evaluation struct {
		Timeframes      []string                 `yaml:"timeframes"`
		PollInterval    time.Duration            `yaml:"poll_interval"`
		HistoryBars     int                      `yaml:"history_bars"`
		SignalIntervals map[string]time.Duration `yaml:"signal_intervals"`
	} `yaml:"evaluation"`
	Scoring struct {
		Weights struct {
			Trend      float64 `yaml:"trend"`
			Momentum   float64 `yaml:"momentum"`
			Volatility float64 `yaml:"volatility"`
			Volume     float64 `yaml:"volume"`
			Levels     float64 `yaml:"levels"`
		} `yaml:"weights"`
		SignalThreshold    float64 `yaml:"signal_threshold"`
		CounterTrendFilter *bool   `yaml:"counter_trend_filter"`
	} `yaml:"scoring"`
	Risk struct {
		StopMultiplier   float64 `yaml:"stop_multiplier"`
		ProfitMultiplier float64 `yaml:"profit_multiplier"`
	} `yaml:"risk"`
	Alerts struct {
		Enabled  *bool         `yaml:"enabled"`
		Cooldown time.Duration `yaml:"cooldown"`
	} `yaml:"alerts"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			BatchSize    int           `yaml:"batch_size"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchTimeout time.Duration `yaml:"batch_timeout"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
	Notifications struct {
		Queue struct {
			Workers    int           `yaml:"workers"`
			RetryLimit int           `yaml:"retry_limit"`
			RetryDelay time.Duration `yaml:"retry_delay"`
		} `yaml:"queue"`
		Telegram struct {
			Enabled bool   `yaml:"enabled"`
			Token   string `yaml:"token"`
			ChatID  string `yaml:"chat_id"`
		} `yaml:"telegram"`
		ServerChan struct {
			Enabled bool   `yaml:"enabled"`
			SendKey string `yaml:"send_key"`
		} `yaml:"serverchan"`
		Webhook struct {
			Enabled bool              `yaml:"enabled"`
			URL     string            `yaml:"url"`
			Headers map[string]string `yaml:"headers"`
		} `yaml:"webhook"`
		Email struct {
			Enabled  bool     `yaml:"enabled"`
			Host     string   `yaml:"host"`
			Port     int      `yaml:"port"`
			Username string   `yaml:"username"`
			Password string   `yaml:"password"`
			From     string   `yaml:"from"`
			To       []string `yaml:"to"`
		} `yaml:"email"`
	} `yaml:"notifications"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logging"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("PAIR"); v != "" {
		c.Exchange.Pair = v
	}
	if v := os.Getenv("TIMEFRAMES"); v != "" {
		c.Evaluation.Timeframes = strings.Split(v, ",")
	}
	if v := os.Getenv("TELEGRAM_TOKEN"); v != "" {
		c.Notifications.Telegram.Token = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
	if v := os.Getenv("SERVERCHAN_SEND_KEY"); v != "" {
		c.Notifications.ServerChan.SendKey = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		c.Notifications.Email.Password = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Exchange.BaseURL == "" {
		c.Exchange.BaseURL = "https://api.gateio.ws/api/v4"
	}
	if c.Exchange.WebSocketURL == "" {
		c.Exchange.WebSocketURL = "wss://api.gateio.ws/ws/v4/"
	}
	if c.Exchange.ReconnectDelay <= 0 {
		c.Exchange.ReconnectDelay = 5 * time.Second
	}
	if c.Exchange.PingInterval <= 0 {
		c.Exchange.PingInterval = 20 * time.Second
	}
	if c.Evaluation.PollInterval <= 0 {
		c.Evaluation.PollInterval = time.Minute
	}
	if c.Evaluation.HistoryBars <= 0 {
		c.Evaluation.HistoryBars = 250
	}
	if c.Alerts.Enabled == nil {
		on := true
		c.Alerts.Enabled = &on
	}
	if c.Alerts.Cooldown <= 0 {
		c.Alerts.Cooldown = 5 * time.Minute
	}
	if len(c.Evaluation.Timeframes) == 0 {
		c.Evaluation.Timeframes = []string{"1h"}
	}
	if c.Scoring.SignalThreshold == 0 {
		c.Scoring.SignalThreshold = 60
	}
	w := &c.Scoring.Weights
	if w.Trend == 0 && w.Momentum == 0 && w.Volatility == 0 && w.Volume == 0 && w.Levels == 0 {
		w.Trend, w.Momentum, w.Volatility, w.Volume, w.Levels = 0.30, 0.25, 0.15, 0.15, 0.15
	}
	if c.Risk.StopMultiplier == 0 {
		c.Risk.StopMultiplier = 2.0
	}
	if c.Risk.ProfitMultiplier == 0 {
		c.Risk.ProfitMultiplier = 3.0
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return invalid("environment", "is required")
	}
	if c.Exchange.Pair == "" {
		return invalid("exchange.pair", "is required")
	}
	if len(c.Evaluation.Timeframes) == 0 {
		return invalid("evaluation.timeframes", "cannot be empty")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return invalid("kafka.brokers", "required when kafka is enabled")
	}
	if c.Kafka.Enabled && c.Kafka.Topic == "" {
		return invalid("kafka.topic", "required when kafka is enabled")
	}
	n := &c.Notifications
	if n.Telegram.Enabled && (n.Telegram.Token == "" || n.Telegram.ChatID == "") {
		return invalid("notifications.telegram", "token and chat_id required when enabled")
	}
	if n.ServerChan.Enabled && n.ServerChan.SendKey == "" {
		return invalid("notifications.serverchan", "send_key required when enabled")
	}
	if n.Webhook.Enabled && n.Webhook.URL == "" {
		return invalid("notifications.webhook", "url required when enabled")
	}
	if n.Email.Enabled {
		if n.Email.Host == "" || n.Email.From == "" || len(n.Email.To) == 0 {
			return invalid("notifications.email", "host, from and to required when enabled")
		}
	}
	return nil
}
