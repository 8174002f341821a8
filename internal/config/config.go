package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	App      App
	HTTP     HTTP
	Probe    Probe
	Metrics  Metrics
	Postgres Postgres
	Redis    Redis
	Sources  Sources
	Crawler  Crawler
	Bot      Bot
}

type App struct {
	Name      string `env:"APP_NAME" envDefault:"memescan"`
	Version   string `env:"APP_VERSION" envDefault:"dev"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

type HTTP struct {
	ListenAddress     string        `env:"HTTP_LISTEN_ADDRESS" envDefault:":8080"`
	ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" envDefault:"5s"`
	ShutdownTimeout   time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	LogFieldMaxLen    int           `env:"HTTP_LOG_FIELD_MAX_LEN" envDefault:"4096"`
}

type Probe struct {
	ListenAddress string `env:"PROBE_LISTEN_ADDRESS" envDefault:":8081"`
}

type Metrics struct {
	ListenAddress string `env:"METRICS_LISTEN_ADDRESS" envDefault:":9090"`
}

// Bot алерты краулера. Пустой токен отключает отправку.
type Bot struct {
	Token  string `env:"BOT_TOKEN" json:"-"`
	ChatID int64  `env:"BOT_CHAT_ID"`
}

func (b Bot) Enabled() bool {
	return b.Token != ""
}

func Load() (Config, error) {
	_ = godotenv.Load()

	var config Config

	if err := env.Parse(&config); err != nil {
		return Config{}, fmt.Errorf("env.Parse: %w", err)
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}

// Validate проверяет связи между полями, которые не выразить тегами env.
func (c Config) Validate() error {
	var errs []error

	if c.Bot.Enabled() && c.Bot.ChatID == 0 {
		errs = append(errs, errors.New("BOT_CHAT_ID is required when BOT_TOKEN is set"))
	}

	if c.Sources.GeckoMinInterval < 0 {
		errs = append(errs, errors.New("GECKO_MIN_INTERVAL must not be negative"))
	}

	if c.Sources.Timeout <= 0 {
		errs = append(errs, errors.New("SOURCES_TIMEOUT must be positive"))
	}

	if c.Crawler.Interval <= 0 {
		errs = append(errs, errors.New("CRAWLER_INTERVAL must be positive"))
	}

	if c.Crawler.RugCheckEvery <= 0 {
		errs = append(errs, errors.New("CRAWLER_RUGCHECK_EVERY must be positive"))
	}

	if c.Crawler.Concurrency <= 0 {
		errs = append(errs, errors.New("CRAWLER_CONCURRENCY must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}

	return nil
}
