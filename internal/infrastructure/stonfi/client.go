package stonfi

import (
	"context"
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"memescan/internal/domain/entity"
	"memescan/internal/infrastructure/upstream"
)

const (
	SourceName = "stonfi"
	DEXTag     = "stonfi"
)

type assetSchema struct {
	ContractAddress string `json:"contract_address"`
	Symbol          string `json:"symbol"`
	DisplayName     string `json:"display_name"`
	Decimals        int    `json:"decimals"`
}

type poolSchema struct {
	Address          string         `json:"address"`
	Token0Address    string         `json:"token0_address"`
	Token1Address    string         `json:"token1_address"`
	LPTotalSupplyUSD upstream.Float `json:"lp_total_supply_usd"`
	Volume24hUSD     upstream.Float `json:"volume_24h_usd"`
	APY1d            upstream.Float `json:"apy_1d"`
}

// toDomain пул без адреса или без одного из токенов пропускается.
func (s poolSchema) toDomain() (entity.Pool, bool) {
	if s.Address == "" || s.Token0Address == "" || s.Token1Address == "" {
		return entity.Pool{}, false
	}

	return entity.Pool{
		Address:      s.Address,
		DEX:          DEXTag,
		Token0:       s.Token0Address,
		Token1:       s.Token1Address,
		LiquidityUSD: s.LPTotalSupplyUSD.Or(0),
		Volume24h:    s.Volume24hUSD.Or(0),
		APR:          s.APY1d.Or(0),
	}, true
}

type dexStatsSchema struct {
	TVL           upstream.Float `json:"tvl"`
	VolumeUSD     upstream.Float `json:"volume_usd"`
	Trades        int            `json:"trades"`
	UniqueWallets int            `json:"unique_wallets"`
}

// Client адаптер STON.fi. Ограничения частоты нет.
type Client struct {
	api *upstream.Client
}

func New(api *upstream.Client) *Client {
	return &Client{api: api}
}

func (c *Client) Assets(ctx context.Context) ([]entity.Asset, error) {
	var envelope struct {
		AssetList []jsoniter.RawMessage `json:"asset_list"`
	}

	if err := c.api.Get(ctx, "/v1/assets", nil, &envelope); err != nil {
		return nil, fmt.Errorf("stonfi.Assets: %w", err)
	}

	schemas := upstream.DecodeList[assetSchema](ctx, SourceName, envelope.AssetList)
	assets := make([]entity.Asset, 0, len(schemas))

	for _, s := range schemas {
		if s.ContractAddress == "" {
			continue
		}

		assets = append(assets, entity.Asset{
			Address:  s.ContractAddress,
			Symbol:   s.Symbol,
			Name:     s.DisplayName,
			Decimals: s.Decimals,
		})
	}

	return assets, nil
}

// Pools пулы в порядке апстрима, не больше limit (limit <= 0 без
// ограничения). Ответ STON.fi не пагинируется, обрезаем на своей стороне.
func (c *Client) Pools(ctx context.Context, limit int) ([]entity.Pool, error) {
	var envelope struct {
		PoolList []jsoniter.RawMessage `json:"pool_list"`
	}

	if err := c.api.Get(ctx, "/v1/pools", nil, &envelope); err != nil {
		return nil, fmt.Errorf("stonfi.Pools: %w", err)
	}

	raw := envelope.PoolList
	if limit > 0 && len(raw) > limit {
		raw = raw[:limit]
	}

	schemas := upstream.DecodeList[poolSchema](ctx, SourceName, raw)
	pools := make([]entity.Pool, 0, len(schemas))

	for _, s := range schemas {
		if p, ok := s.toDomain(); ok {
			pools = append(pools, p)
		}
	}

	return pools, nil
}

func (c *Client) Pool(ctx context.Context, address string) (*entity.Pool, error) {
	var envelope struct {
		Pool *poolSchema `json:"pool"`
	}

	if err := c.api.Get(ctx, "/v1/pools/"+address, nil, &envelope); err != nil {
		return nil, fmt.Errorf("stonfi.Pool: %w", err)
	}

	if envelope.Pool == nil {
		return nil, nil //nolint:nilnil
	}

	pool, ok := envelope.Pool.toDomain()
	if !ok {
		return nil, nil //nolint:nilnil
	}

	return &pool, nil
}

func (c *Client) DexStats(ctx context.Context) (*entity.DexStats, error) {
	var envelope struct {
		Stats *dexStatsSchema `json:"stats"`
	}

	if err := c.api.Get(ctx, "/v1/stats/dex", nil, &envelope); err != nil {
		return nil, fmt.Errorf("stonfi.DexStats: %w", err)
	}

	if envelope.Stats == nil {
		return nil, nil //nolint:nilnil
	}

	return &entity.DexStats{
		TVL:       envelope.Stats.TVL.Or(0),
		Volume24h: envelope.Stats.VolumeUSD.Or(0),
		Trades24h: envelope.Stats.Trades,
		Users24h:  envelope.Stats.UniqueWallets,
	}, nil
}

func (c *Client) Close() {
	c.api.Close()
}
