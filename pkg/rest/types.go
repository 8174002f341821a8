// Данный файл должен быть сгенерирован из openapi спецификации и называться types.gen.go
package rest

import "time"

// ScoreResponse Оценка доверия адреса
type ScoreResponse struct {
	Address          string      `json:"address"`
	Score            int         `json:"score"`
	Grade            string      `json:"grade"`
	GradeColor       string      `json:"gradeColor"`
	GradeDescription string      `json:"gradeDescription"`
	RiskLevel        string      `json:"riskLevel"`
	Recommendation   string      `json:"recommendation"`
	Warnings         []string    `json:"warnings"`
	EntityInfo       *EntityInfo `json:"entityInfo,omitempty"`
}

// EntityInfo Сведения о размеченном адресе
type EntityInfo struct {
	Category     string   `json:"category"`
	Label        string   `json:"label"`
	Organization string   `json:"organization"`
	Website      string   `json:"website,omitempty"`
	Tags         []string `json:"tags"`
	TrustFlags   []string `json:"trustFlags"`
	Notes        string   `json:"notes,omitempty"`
}

type BatchScoreRequest struct {
	Addresses []string `json:"addresses" validate:"required,min=1,max=50,dive,required"`
}

type BatchScoreResponse struct {
	Results []ScoreResponse `json:"results"`
}

// Token Снимок торгуемого джеттона
type Token struct {
	Address          string     `json:"address"`
	PoolAddress      string     `json:"poolAddress,omitempty"`
	Symbol           string     `json:"symbol"`
	Name             string     `json:"name"`
	Decimals         int        `json:"decimals"`
	TotalSupply      float64    `json:"totalSupply"`
	HolderCount      int        `json:"holderCount"`
	PriceUSD         float64    `json:"priceUsd"`
	PriceTON         float64    `json:"priceTon"`
	PriceChange24h   float64    `json:"priceChange24h"`
	LiquidityUSD     float64    `json:"liquidityUsd"`
	LiquidityTON     float64    `json:"liquidityTon"`
	Volume24h        float64    `json:"volume24h"`
	CreatedAt        *time.Time `json:"createdAt"`
	SafetyLevel      string     `json:"safetyLevel"`
	SafetyWarnings   []string   `json:"safetyWarnings"`
	DevWalletPercent float64    `json:"devWalletPercent"`
}

type TokenList struct {
	Tokens []Token `json:"tokens"`
}

// Pool Снимок пула ликвидности
type Pool struct {
	Address      string     `json:"address"`
	DEX          string     `json:"dex"`
	Token0       string     `json:"token0"`
	Token1       string     `json:"token1"`
	Token0Symbol string     `json:"token0Symbol"`
	Token1Symbol string     `json:"token1Symbol"`
	LiquidityUSD float64    `json:"liquidityUsd"`
	Volume24h    float64    `json:"volume24h"`
	Price0USD    float64    `json:"price0Usd"`
	Price1USD    float64    `json:"price1Usd"`
	APR          float64    `json:"apr"`
	CreatedAt    *time.Time `json:"createdAt"`
}

type PoolList struct {
	Pools []Pool `json:"pools"`
}

// Jetton Запись справочника джеттонов
type Jetton struct {
	Address     string  `json:"address"`
	Symbol      string  `json:"symbol"`
	Name        string  `json:"name"`
	Decimals    int     `json:"decimals"`
	TotalSupply float64 `json:"totalSupply"`
	HolderCount int     `json:"holderCount"`
	Verified    bool    `json:"verified"`
}

type JettonList struct {
	Jettons []Jetton `json:"jettons"`
}

type JettonBalance struct {
	Jetton   string  `json:"jetton"`
	Symbol   string  `json:"symbol"`
	Name     string  `json:"name"`
	Decimals int     `json:"decimals"`
	Balance  float64 `json:"balance"`
	Verified bool    `json:"verified"`
}

type JettonBalanceList struct {
	Balances []JettonBalance `json:"balances"`
}

type AccountEvent struct {
	EventID    string    `json:"eventId"`
	Timestamp  time.Time `json:"timestamp"`
	Actions    []string  `json:"actions"`
	IsScam     bool      `json:"isScam"`
	InProgress bool      `json:"inProgress"`
}

type AccountEventList struct {
	Events []AccountEvent `json:"events"`
}

// TrackedToken Токен, найденный краулером
type TrackedToken struct {
	Address             string     `json:"address"`
	Symbol              string     `json:"symbol"`
	Name                string     `json:"name"`
	Decimals            int        `json:"decimals"`
	TotalSupply         float64    `json:"totalSupply"`
	FirstSeenAt         time.Time  `json:"firstSeenAt"`
	InitialHolders      int        `json:"initialHolders"`
	InitialTopHolderPct float64    `json:"initialTopHolderPct"`
	InitialLiquidityUSD float64    `json:"initialLiquidityUsd"`
	CurrentHolders      int        `json:"currentHolders"`
	CurrentTopHolderPct float64    `json:"currentTopHolderPct"`
	CurrentPriceUSD     float64    `json:"currentPriceUsd"`
	SafetyLevel         string     `json:"safetyLevel"`
	SafetyScore         int        `json:"safetyScore"`
	Rugged              bool       `json:"rugged"`
	RuggedAt            *time.Time `json:"ruggedAt,omitempty"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

type TrackedTokenList struct {
	Tokens []TrackedToken `json:"tokens"`
}

type TokenEvent struct {
	ID        int64          `json:"id"`
	Kind      string         `json:"kind"`
	Payload   map[string]any `json:"payload"`
	CreatedAt time.Time      `json:"createdAt"`
}

type TokenEventList struct {
	Events []TokenEvent `json:"events"`
}

// DexStats Сводка STON.fi. Available=false, если источник недоступен.
type DexStats struct {
	Available bool    `json:"available"`
	TVL       float64 `json:"tvl"`
	Volume24h float64 `json:"volume24h"`
	Trades24h int     `json:"trades24h"`
	Users24h  int     `json:"users24h"`
}

// Error Модель ошибок
type Error struct {
	// Code Код ошибки
	Code ErrorCode `json:"code"`

	// Message Сообщение об ошибке (для отображения в UI в будущем)
	Message string `json:"message"`
}

// ErrorCode Код ошибки
type ErrorCode string
