package gecko

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"memescan/internal/domain/entity"
	"memescan/internal/domain/value"
	"memescan/internal/infrastructure/upstream"
)

const (
	SourceName     = "gecko"
	DefaultNetwork = "ton"
)

type changesSchema struct {
	H24 upstream.Float `json:"h24"`
}

type poolAttributes struct {
	Address              string         `json:"address"`
	Name                 string         `json:"name"`
	BaseTokenPriceUSD    upstream.Float `json:"base_token_price_usd"`
	BaseTokenPriceNative upstream.Float `json:"base_token_price_native_currency"`
	QuoteTokenPriceUSD   upstream.Float `json:"quote_token_price_usd"`
	ReserveInUSD         upstream.Float `json:"reserve_in_usd"`
	PoolCreatedAt        string         `json:"pool_created_at"`
	PriceChange          changesSchema  `json:"price_change_percentage"`
	VolumeUSD            changesSchema  `json:"volume_usd"`
}

type relation struct {
	Data *struct {
		ID string `json:"id"`
	} `json:"data"`
}

// id без префикса сети: "ton_EQabc" -> "EQabc".
func (r relation) id(network string) string {
	if r.Data == nil {
		return ""
	}

	return strings.TrimPrefix(r.Data.ID, network+"_")
}

type poolSchema struct {
	Attributes    poolAttributes `json:"attributes"`
	Relationships struct {
		BaseToken  relation `json:"base_token"`
		QuoteToken relation `json:"quote_token"`
		DEX        relation `json:"dex"`
	} `json:"relationships"`
}

// toToken пул без адреса пропускается. Отсутствующие цена и резерв дают 0:
// у свежих пулов их часто ещё нет. Символ пустой, если его нельзя взять из
// имени пула.
func (s poolSchema) toToken(network string) (entity.Token, bool) {
	attrs := s.Attributes

	address := s.Relationships.BaseToken.id(network)
	if address == "" {
		address = attrs.Address
	}

	if address == "" {
		return entity.Token{}, false
	}

	name := attrs.Name
	if name == "" {
		name = entity.UnknownName
	}

	return entity.Token{
		Address:        address,
		PoolAddress:    attrs.Address,
		Symbol:         pairSide(attrs.Name, 0),
		Name:           name,
		Decimals:       entity.DefaultDecimals,
		PriceUSD:       attrs.BaseTokenPriceUSD.Or(0),
		PriceTON:       attrs.BaseTokenPriceNative.Or(0),
		PriceChange24h: attrs.PriceChange.H24.Or(0),
		LiquidityUSD:   attrs.ReserveInUSD.Or(0),
		Volume24h:      attrs.VolumeUSD.H24.Or(0),
		CreatedAt:      parseTime(attrs.PoolCreatedAt),
		SafetyLevel:    value.SafetyUnknown,
	}, true
}

func (s poolSchema) toPool(network string) (entity.Pool, bool) {
	attrs := s.Attributes

	if attrs.Address == "" || !attrs.ReserveInUSD.Valid {
		return entity.Pool{}, false
	}

	return entity.Pool{
		Address:      attrs.Address,
		DEX:          s.Relationships.DEX.id(network),
		Token0:       s.Relationships.BaseToken.id(network),
		Token1:       s.Relationships.QuoteToken.id(network),
		Token0Symbol: pairSide(attrs.Name, 0),
		Token1Symbol: pairSide(attrs.Name, 1),
		LiquidityUSD: attrs.ReserveInUSD.Value,
		Volume24h:    attrs.VolumeUSD.H24.Or(0),
		Price0USD:    attrs.BaseTokenPriceUSD.Or(0),
		Price1USD:    attrs.QuoteTokenPriceUSD.Or(0),
		CreatedAt:    parseTime(attrs.PoolCreatedAt),
	}, true
}

type tokenSchema struct {
	Attributes struct {
		Address     string         `json:"address"`
		Name        string         `json:"name"`
		Symbol      string         `json:"symbol"`
		Decimals    upstream.Float `json:"decimals"`
		TotalSupply upstream.Float `json:"total_supply"`
		PriceUSD    upstream.Float `json:"price_usd"`
		VolumeUSD   changesSchema  `json:"volume_usd"`
	} `json:"attributes"`
}

// Client адаптер GeckoTerminal. Минимальный интервал между вызовами задаётся
// в upstream.Config.MinInterval (по документации 2s, не больше 30 в минуту).
type Client struct {
	api     *upstream.Client
	network string
}

func New(api *upstream.Client, network string) *Client {
	if network == "" {
		network = DefaultNetwork
	}

	return &Client{api: api, network: network}
}

func (c *Client) Network() string {
	return c.network
}

func (c *Client) TrendingTokens(ctx context.Context) ([]entity.Token, error) {
	return c.tokens(ctx, "trending_pools")
}

func (c *Client) NewTokens(ctx context.Context) ([]entity.Token, error) {
	return c.tokens(ctx, "new_pools")
}

// TopPools первая страница пулов сети, отсортированная апстримом по ликвидности.
func (c *Client) TopPools(ctx context.Context) ([]entity.Pool, error) {
	schemas, err := c.poolList(ctx, "pools", url.Values{"page": {"1"}})
	if err != nil {
		return nil, err
	}

	pools := make([]entity.Pool, 0, len(schemas))

	for _, s := range schemas {
		if p, ok := s.toPool(c.network); ok {
			pools = append(pools, p)
		}
	}

	return pools, nil
}

func (c *Client) Pool(ctx context.Context, address string) (*entity.Pool, error) {
	var envelope struct {
		Data *poolSchema `json:"data"`
	}

	if err := c.api.Get(ctx, c.path("pools", address), nil, &envelope); err != nil {
		return nil, fmt.Errorf("gecko.Pool: %w", err)
	}

	if envelope.Data == nil {
		return nil, nil //nolint:nilnil
	}

	pool, ok := envelope.Data.toPool(c.network)
	if !ok {
		return nil, nil //nolint:nilnil
	}

	return &pool, nil
}

func (c *Client) Token(ctx context.Context, address string) (*entity.Token, error) {
	var envelope struct {
		Data *tokenSchema `json:"data"`
	}

	if err := c.api.Get(ctx, c.path("tokens", address), nil, &envelope); err != nil {
		return nil, fmt.Errorf("gecko.Token: %w", err)
	}

	if envelope.Data == nil {
		return nil, nil //nolint:nilnil
	}

	attrs := envelope.Data.Attributes

	decimals := entity.DefaultDecimals
	if attrs.Decimals.Valid {
		decimals = int(attrs.Decimals.Value)
	}

	if attrs.Address == "" {
		attrs.Address = address
	}

	return &entity.Token{
		Address:     attrs.Address,
		Symbol:      attrs.Symbol,
		Name:        attrs.Name,
		Decimals:    decimals,
		TotalSupply: attrs.TotalSupply.Or(0),
		PriceUSD:    attrs.PriceUSD.Or(0),
		Volume24h:   attrs.VolumeUSD.H24.Or(0),
		SafetyLevel: value.SafetyUnknown,
	}, nil
}

func (c *Client) Close() {
	c.api.Close()
}

func (c *Client) tokens(ctx context.Context, kind string) ([]entity.Token, error) {
	schemas, err := c.poolList(ctx, kind, nil)
	if err != nil {
		return nil, err
	}

	tokens := make([]entity.Token, 0, len(schemas))

	for _, s := range schemas {
		if t, ok := s.toToken(c.network); ok {
			tokens = append(tokens, t)
		}
	}

	return tokens, nil
}

func (c *Client) poolList(ctx context.Context, kind string, query url.Values) ([]poolSchema, error) {
	var envelope struct {
		Data []jsoniter.RawMessage `json:"data"`
	}

	if err := c.api.Get(ctx, c.path(kind), query, &envelope); err != nil {
		return nil, fmt.Errorf("gecko.%s: %w", kind, err)
	}

	return upstream.DecodeList[poolSchema](ctx, SourceName, envelope.Data), nil
}

func (c *Client) path(parts ...string) string {
	return "/networks/" + c.network + "/" + strings.Join(parts, "/")
}

// pairSide символ стороны пары из имени пула вида "PEPE / TON".
func pairSide(name string, side int) string {
	parts := strings.Split(name, "/")
	if side >= len(parts) {
		return ""
	}

	return strings.TrimSpace(parts[side])
}

func parseTime(s string) *time.Time {
	if s == "" {
		return nil
	}

	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}

	t = t.UTC()

	return &t
}
