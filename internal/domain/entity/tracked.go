package entity

import (
	"time"

	"memescan/internal/domain/value"
)

// TrackedToken снимок токена, найденного краулером. Поля Initial* пишутся
// один раз при первом обнаружении.
type TrackedToken struct {
	Address             string
	Symbol              string
	Name                string
	Decimals            int
	TotalSupply         float64
	FirstSeenAt         time.Time
	InitialHolders      int
	InitialTopHolderPct float64
	InitialLiquidityUSD float64
	CurrentHolders      int
	CurrentTopHolderPct float64
	CurrentPriceUSD     float64
	SafetyLevel         value.SafetyLevel
	SafetyScore         int
	Rugged              bool
	RuggedAt            *time.Time
	UpdatedAt           time.Time
}

type TokenEventKind string

const (
	TokenEventDeploy TokenEventKind = "deploy"
	TokenEventRug    TokenEventKind = "rug"
)

type TokenEvent struct {
	ID           int64
	TokenAddress string
	Kind         TokenEventKind
	Payload      map[string]any
	CreatedAt    time.Time
}

type AlertKind string

const (
	AlertDangerousLaunch AlertKind = "dangerous_launch"
	AlertRug             AlertKind = "rug"
)

// Alert событие для оповещения в Telegram.
type Alert struct {
	Kind     AlertKind
	Token    TrackedToken
	Reason   string
	Warnings []string
}
