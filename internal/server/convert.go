package server

import (
	"memescan/internal/domain/entity"
	"memescan/pkg/rest"
)

func newRESTScore(result entity.ScoreResult) rest.ScoreResponse {
	warnings := result.Warnings
	if warnings == nil {
		warnings = []string{}
	}

	return rest.ScoreResponse{
		Address:          result.Address,
		Score:            result.Score,
		Grade:            result.Grade,
		GradeColor:       result.GradeColor,
		GradeDescription: result.GradeDescription,
		RiskLevel:        result.RiskLevel.String(),
		Recommendation:   result.Recommendation,
		Warnings:         warnings,
		EntityInfo:       newRESTEntityInfo(result.EntityInfo),
	}
}

func newRESTEntityInfo(info *entity.EntityInfo) *rest.EntityInfo {
	if info == nil {
		return nil
	}

	return &rest.EntityInfo{
		Category:     info.Category.String(),
		Label:        info.Label,
		Organization: info.Organization,
		Website:      info.Website,
		Tags:         nonNil(info.Tags),
		TrustFlags:   nonNil(info.TrustFlags),
		Notes:        info.Notes,
	}
}

func newRESTToken(t entity.Token) rest.Token {
	return rest.Token{
		Address:          t.Address,
		PoolAddress:      t.PoolAddress,
		Symbol:           t.Symbol,
		Name:             t.Name,
		Decimals:         t.Decimals,
		TotalSupply:      t.TotalSupply,
		HolderCount:      t.HolderCount,
		PriceUSD:         t.PriceUSD,
		PriceTON:         t.PriceTON,
		PriceChange24h:   t.PriceChange24h,
		LiquidityUSD:     t.LiquidityUSD,
		LiquidityTON:     t.LiquidityTON,
		Volume24h:        t.Volume24h,
		CreatedAt:        t.CreatedAt,
		SafetyLevel:      t.SafetyLevel.String(),
		SafetyWarnings:   nonNil(t.SafetyWarnings),
		DevWalletPercent: t.DevWalletPercent,
	}
}

func newRESTPool(p entity.Pool) rest.Pool {
	return rest.Pool{
		Address:      p.Address,
		DEX:          p.DEX,
		Token0:       p.Token0,
		Token1:       p.Token1,
		Token0Symbol: p.Token0Symbol,
		Token1Symbol: p.Token1Symbol,
		LiquidityUSD: p.LiquidityUSD,
		Volume24h:    p.Volume24h,
		Price0USD:    p.Price0USD,
		Price1USD:    p.Price1USD,
		APR:          p.APR,
		CreatedAt:    p.CreatedAt,
	}
}

func newRESTJetton(j entity.JettonMeta) rest.Jetton {
	return rest.Jetton{
		Address:     j.Address,
		Symbol:      j.Symbol,
		Name:        j.Name,
		Decimals:    j.Decimals,
		TotalSupply: j.TotalSupply,
		HolderCount: j.HolderCount,
		Verified:    j.Verified,
	}
}

func newRESTJettonBalance(b entity.JettonBalance) rest.JettonBalance {
	return rest.JettonBalance{
		Jetton:   b.Jetton,
		Symbol:   b.Symbol,
		Name:     b.Name,
		Decimals: b.Decimals,
		Balance:  b.Balance,
		Verified: b.Verified,
	}
}

func newRESTAccountEvent(e entity.AccountEvent) rest.AccountEvent {
	return rest.AccountEvent{
		EventID:    e.EventID,
		Timestamp:  e.Timestamp,
		Actions:    nonNil(e.Actions),
		IsScam:     e.IsScam,
		InProgress: e.InProgress,
	}
}

func newRESTTrackedToken(t entity.TrackedToken) rest.TrackedToken {
	return rest.TrackedToken{
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
		SafetyLevel:         t.SafetyLevel.String(),
		SafetyScore:         t.SafetyScore,
		Rugged:              t.Rugged,
		RuggedAt:            t.RuggedAt,
		UpdatedAt:           t.UpdatedAt,
	}
}

func newRESTTokenEvent(e entity.TokenEvent) rest.TokenEvent {
	payload := e.Payload
	if payload == nil {
		payload = map[string]any{}
	}

	return rest.TokenEvent{
		ID:        e.ID,
		Kind:      string(e.Kind),
		Payload:   payload,
		CreatedAt: e.CreatedAt,
	}
}

func newRESTDexStats(stats *entity.DexStats) rest.DexStats {
	if stats == nil {
		return rest.DexStats{}
	}

	return rest.DexStats{
		Available: true,
		TVL:       stats.TVL,
		Volume24h: stats.Volume24h,
		Trades24h: stats.Trades24h,
		Users24h:  stats.Users24h,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}

	return s
}
