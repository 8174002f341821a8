package persistence

import (
	"database/sql"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"

	"memescan/internal/domain/entity"
	"memescan/internal/domain/value"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

// labelSchema строка known_wallets.
type labelSchema struct {
	Address   string         `db:"address"`
	Label     string         `db:"label"`
	OwnerName sql.NullString `db:"owner_name"`
	Notes     sql.NullString `db:"notes"`
	CreatedAt time.Time      `db:"created_at"`
}

func fromLabelRecord(r *entity.LabelRecord) *labelSchema {
	return &labelSchema{
		Address:   r.Address,
		Label:     string(r.Category),
		OwnerName: nullString(r.OwnerName),
		Notes:     nullString(r.Notes),
		CreatedAt: r.CreatedAt,
	}
}

func (s *labelSchema) toDomain() *entity.LabelRecord {
	return &entity.LabelRecord{
		Address:   s.Address,
		Category:  value.Category(s.Label),
		OwnerName: s.OwnerName.String,
		Notes:     s.Notes.String,
		CreatedAt: s.CreatedAt,
	}
}

// trackedTokenSchema строка tracked_tokens.
type trackedTokenSchema struct {
	Address             string       `db:"address"`
	Symbol              string       `db:"symbol"`
	Name                string       `db:"name"`
	Decimals            int          `db:"decimals"`
	TotalSupply         float64      `db:"total_supply"`
	FirstSeenAt         time.Time    `db:"first_seen_at"`
	InitialHolders      int          `db:"initial_holders"`
	InitialTopHolderPct float64      `db:"initial_top_holder_pct"`
	InitialLiquidityUSD float64      `db:"initial_liquidity_usd"`
	CurrentHolders      int          `db:"current_holders"`
	CurrentTopHolderPct float64      `db:"current_top_holder_pct"`
	CurrentPriceUSD     float64      `db:"current_price_usd"`
	SafetyLevel         string       `db:"safety_level"`
	SafetyScore         int          `db:"safety_score"`
	Rugged              bool         `db:"rugged"`
	RuggedAt            sql.NullTime `db:"rugged_at"`
	UpdatedAt           time.Time    `db:"updated_at"`
}

func fromTrackedToken(t *entity.TrackedToken) *trackedTokenSchema {
	s := &trackedTokenSchema{
		Address:             t.Address,
		Symbol:              t.Symbol,
		Name:                t.Name,
		Decimals:            t.Decimals,
		TotalSupply:         t.TotalSupply,
		FirstSeenAt:         t.FirstSeenAt,
		InitialHolders:      t.InitialHolders,
		InitialTopHolderPct: t.InitialTopHolderPct,
		InitialLiquidityUSD: t.InitialLiquidityUSD,
		CurrentHolders:      t.CurrentHolders,
		CurrentTopHolderPct: t.CurrentTopHolderPct,
		CurrentPriceUSD:     t.CurrentPriceUSD,
		SafetyLevel:         string(t.SafetyLevel),
		SafetyScore:         t.SafetyScore,
		Rugged:              t.Rugged,
		UpdatedAt:           t.UpdatedAt,
	}

	if t.RuggedAt != nil {
		s.RuggedAt = sql.NullTime{Time: *t.RuggedAt, Valid: true}
	}

	if s.Symbol == "" {
		s.Symbol = entity.UnknownSymbol
	}

	if s.Name == "" {
		s.Name = entity.UnknownName
	}

	if s.SafetyLevel == "" {
		s.SafetyLevel = string(value.SafetyUnknown)
	}

	return s
}

func (s *trackedTokenSchema) toDomain() *entity.TrackedToken {
	t := &entity.TrackedToken{
		Address:             s.Address,
		Symbol:              s.Symbol,
		Name:                s.Name,
		Decimals:            s.Decimals,
		TotalSupply:         s.TotalSupply,
		FirstSeenAt:         s.FirstSeenAt.UTC(),
		InitialHolders:      s.InitialHolders,
		InitialTopHolderPct: s.InitialTopHolderPct,
		InitialLiquidityUSD: s.InitialLiquidityUSD,
		CurrentHolders:      s.CurrentHolders,
		CurrentTopHolderPct: s.CurrentTopHolderPct,
		CurrentPriceUSD:     s.CurrentPriceUSD,
		SafetyLevel:         value.SafetyLevel(s.SafetyLevel),
		SafetyScore:         s.SafetyScore,
		Rugged:              s.Rugged,
		UpdatedAt:           s.UpdatedAt.UTC(),
	}

	if s.RuggedAt.Valid {
		at := s.RuggedAt.Time.UTC()
		t.RuggedAt = &at
	}

	return t
}

// tokenEventSchema строка token_events. payload хранится в JSONB.
type tokenEventSchema struct {
	ID           int64     `db:"id"`
	TokenAddress string    `db:"token_address"`
	Kind         string    `db:"kind"`
	Payload      []byte    `db:"payload"`
	CreatedAt    time.Time `db:"created_at"`
}

func fromTokenEvent(e *entity.TokenEvent) (*tokenEventSchema, error) {
	payload := []byte("{}")

	if len(e.Payload) > 0 {
		var err error

		payload, err = json.Marshal(e.Payload)
		if err != nil {
			return nil, fmt.Errorf("json.Marshal: %w", err)
		}
	}

	return &tokenEventSchema{
		TokenAddress: e.TokenAddress,
		Kind:         string(e.Kind),
		Payload:      payload,
		CreatedAt:    e.CreatedAt,
	}, nil
}

func (s *tokenEventSchema) toDomain() (*entity.TokenEvent, error) {
	payload := map[string]any{}

	if len(s.Payload) > 0 {
		if err := json.Unmarshal(s.Payload, &payload); err != nil {
			return nil, fmt.Errorf("json.Unmarshal: %w", err)
		}
	}

	return &entity.TokenEvent{
		ID:           s.ID,
		TokenAddress: s.TokenAddress,
		Kind:         entity.TokenEventKind(s.Kind),
		Payload:      payload,
		CreatedAt:    s.CreatedAt.UTC(),
	}, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
