package config

import "time"

// Sources настройки рыночных апстримов. GeckoTerminal на бесплатном тарифе
// допускает около 30 запросов в минуту, отсюда интервал по умолчанию.
type Sources struct {
	StonfiBaseURL    string        `env:"STONFI_BASE_URL" envDefault:"https://api.ston.fi"`
	TonAPIBaseURL    string        `env:"TONAPI_BASE_URL" envDefault:"https://tonapi.io/v2"`
	TonAPIKey        string        `env:"TONAPI_KEY" json:"-"`
	GeckoBaseURL     string        `env:"GECKO_BASE_URL" envDefault:"https://api.geckoterminal.com/api/v2"`
	GeckoNetwork     string        `env:"GECKO_NETWORK" envDefault:"ton"`
	GeckoMinInterval time.Duration `env:"GECKO_MIN_INTERVAL" envDefault:"2s"`
	Timeout          time.Duration `env:"SOURCES_TIMEOUT" envDefault:"15s"`
	BreakerFailures  uint32        `env:"SOURCES_BREAKER_FAILURES" envDefault:"5"`
	BreakerTimeout   time.Duration `env:"SOURCES_BREAKER_TIMEOUT" envDefault:"30s"`
}

type Crawler struct {
	Enabled        bool          `env:"CRAWLER_ENABLED" envDefault:"true"`
	Interval       time.Duration `env:"CRAWLER_INTERVAL" envDefault:"1m"`
	ReanalyzeAfter time.Duration `env:"CRAWLER_REANALYZE_AFTER" envDefault:"1h"`
	RugCheckEvery  int           `env:"CRAWLER_RUGCHECK_EVERY" envDefault:"10"`
	Concurrency    int           `env:"CRAWLER_CONCURRENCY" envDefault:"4"`
	Watchlist      []string      `env:"CRAWLER_WATCHLIST" envSeparator:","`
}
