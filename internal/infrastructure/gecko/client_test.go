package gecko_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"memescan/internal/domain/entity"
	"memescan/internal/domain/value"
	"memescan/internal/infrastructure/gecko"
	"memescan/internal/infrastructure/upstream"
)

const poolsPayload = `{"data":[
	{"attributes":{"address":"P1","name":"PEPE / TON","base_token_price_usd":"0.01","base_token_price_native_currency":"0.002","reserve_in_usd":"5000","pool_created_at":"2024-03-01T10:00:00Z","volume_usd":{"h24":"700"},"price_change_percentage":{"h24":"-3.5"}},
	 "relationships":{"base_token":{"data":{"id":"ton_EQpepe"}},"quote_token":{"data":{"id":"ton_EQton"}},"dex":{"data":{"id":"stonfi"}}}},
	{"attributes":{"address":"P2","name":"NOPRICE / TON","reserve_in_usd":"10"}},
	{"attributes":{"address":"P3","name":"","base_token_price_usd":"1","reserve_in_usd":"1","pool_created_at":"yesterday"}},
	{"attributes":{"address":"P4","name":"BAD / TON","base_token_price_usd":"1","reserve_in_usd":"1","volume_usd":{"h24":"lots"}}},
	{"attributes":{"name":"GHOST / TON","base_token_price_usd":"1","reserve_in_usd":"1"}}
]}`

func newClient(t *testing.T, handler http.HandlerFunc) *gecko.Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	api, err := upstream.New(upstream.Config{Name: gecko.SourceName, BaseURL: srv.URL + "/api/v2"})
	require.NoError(t, err)

	return gecko.New(api, "")
}

func TestTokens(t *testing.T) {
	rq := require.New(t)

	var paths []string

	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		_, _ = w.Write([]byte(poolsPayload))
	})

	ctx := context.Background()

	trending, err := client.TrendingTokens(ctx)
	rq.NoError(err)
	rq.Len(trending, 3)

	pepe := trending[0]
	rq.Equal("EQpepe", pepe.Address)
	rq.Equal("P1", pepe.PoolAddress)
	rq.Equal("PEPE", pepe.Symbol)
	rq.Equal("PEPE / TON", pepe.Name)
	rq.Equal(entity.DefaultDecimals, pepe.Decimals)
	rq.InDelta(0.01, pepe.PriceUSD, 1e-12)
	rq.InDelta(0.002, pepe.PriceTON, 1e-12)
	rq.InDelta(-3.5, pepe.PriceChange24h, 1e-12)
	rq.InDelta(700.0, pepe.Volume24h, 1e-9)
	rq.Equal(value.SafetyUnknown, pepe.SafetyLevel)
	rq.NotNil(pepe.CreatedAt)
	rq.Equal(2024, pepe.CreatedAt.Year())

	fresh := trending[1]
	rq.Equal("P2", fresh.Address)
	rq.Equal("NOPRICE", fresh.Symbol)
	rq.Zero(fresh.PriceUSD)
	rq.InDelta(10.0, fresh.LiquidityUSD, 1e-9)

	fallback := trending[2]
	rq.Equal("P3", fallback.Address)
	rq.Empty(fallback.Symbol)
	rq.Equal(entity.UnknownName, fallback.Name)
	rq.Nil(fallback.CreatedAt)

	_, err = client.NewTokens(ctx)
	rq.NoError(err)

	rq.Equal([]string{
		"/api/v2/networks/ton/trending_pools",
		"/api/v2/networks/ton/new_pools",
	}, paths)
}

func TestTopPools(t *testing.T) {
	rq := require.New(t)

	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		rq.Equal("/api/v2/networks/ton/pools", r.URL.Path)
		rq.Equal("1", r.URL.Query().Get("page"))
		_, _ = w.Write([]byte(poolsPayload))
	})

	pools, err := client.TopPools(context.Background())
	rq.NoError(err)
	rq.Len(pools, 3)
	rq.Equal("stonfi", pools[0].DEX)
	rq.Equal("EQpepe", pools[0].Token0)
	rq.Equal("EQton", pools[0].Token1)
	rq.Equal("PEPE", pools[0].Token0Symbol)
	rq.Equal("TON", pools[0].Token1Symbol)
	rq.InDelta(5000.0, pools[0].LiquidityUSD, 1e-9)
	rq.Equal("P2", pools[1].Address)
}

func TestToken(t *testing.T) {
	rq := require.New(t)

	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		rq.Equal("/api/v2/networks/ton/tokens/EQpepe", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":{"attributes":{"symbol":"PEPE","decimals":6,"price_usd":"0.5","total_supply":"1000"}}}`))
	})

	token, err := client.Token(context.Background(), "EQpepe")
	rq.NoError(err)
	rq.Equal("EQpepe", token.Address)
	rq.Equal("PEPE", token.Symbol)
	rq.Equal(6, token.Decimals)
	rq.InDelta(0.5, token.PriceUSD, 1e-9)
	rq.InDelta(1000.0, token.TotalSupply, 1e-9)
}

func TestUpstreamFailure(t *testing.T) {
	rq := require.New(t)

	client := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	tokens, err := client.TrendingTokens(context.Background())
	rq.Error(err)
	rq.Nil(tokens)

	var statusErr *upstream.StatusError
	rq.ErrorAs(err, &statusErr)
}
