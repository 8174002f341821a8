package entity

import (
	"time"

	"memescan/internal/domain/value"
)

const (
	UnknownSymbol   = "?"
	UnknownName     = "Unknown"
	DefaultDecimals = 9
)

// Token снимок торгуемого джеттона. Числовые поля по умолчанию 0.
type Token struct {
	Address          string
	PoolAddress      string
	Symbol           string
	Name             string
	Decimals         int
	TotalSupply      float64
	HolderCount      int
	PriceUSD         float64
	PriceTON         float64
	PriceChange24h   float64
	LiquidityUSD     float64
	LiquidityTON     float64
	Volume24h        float64
	CreatedAt        *time.Time
	SafetyLevel      value.SafetyLevel
	SafetyWarnings   []string
	DevWalletPercent float64
}

type Pool struct {
	Address      string
	DEX          string
	Token0       string
	Token1       string
	Token0Symbol string
	Token1Symbol string
	LiquidityUSD float64
	Volume24h    float64
	Price0USD    float64
	Price1USD    float64
	APR          float64
	CreatedAt    *time.Time
}

type JettonBalance struct {
	Jetton   string
	Symbol   string
	Name     string
	Decimals int
	Balance  float64
	Verified bool
}

type AccountEvent struct {
	EventID    string
	Timestamp  time.Time
	Actions    []string
	IsScam     bool
	InProgress bool
}

type DexStats struct {
	TVL       float64
	Volume24h float64
	Trades24h int
	Users24h  int
}
