package market_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"memescan/internal/domain/entity"
	"memescan/internal/domain/service/market"
	"memescan/internal/infrastructure/gecko"
	"memescan/internal/infrastructure/stonfi"
	"memescan/internal/infrastructure/tonapi"
	"memescan/internal/infrastructure/upstream"
)

type route struct {
	status int
	body   string
	delay  time.Duration
}

type fakeUpstream struct {
	routes map[string]route
	hits   map[string]*atomic.Int32
}

func newFakeUpstream(t *testing.T, routes map[string]route) (*fakeUpstream, string) {
	t.Helper()

	f := &fakeUpstream{routes: routes, hits: map[string]*atomic.Int32{}}
	for path := range routes {
		f.hits[path] = &atomic.Int32{}
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rt, ok := f.routes[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		f.hits[r.URL.Path].Add(1)

		if rt.delay > 0 {
			select {
			case <-time.After(rt.delay):
			case <-r.Context().Done():
				return
			}
		}

		if rt.status != 0 {
			w.WriteHeader(rt.status)
		}

		_, _ = w.Write([]byte(rt.body))
	}))
	t.Cleanup(srv.Close)

	return f, srv.URL
}

func (f *fakeUpstream) count(path string) int {
	return int(f.hits[path].Load())
}

func newAggregator(t *testing.T, baseURL string) *market.Aggregator {
	t.Helper()

	rq := require.New(t)

	stonAPI, err := upstream.New(upstream.Config{Name: stonfi.SourceName, BaseURL: baseURL + "/ston"})
	rq.NoError(err)

	tonAPI, err := upstream.New(upstream.Config{Name: tonapi.SourceName, BaseURL: baseURL + "/tonapi"})
	rq.NoError(err)

	geckoAPI, err := upstream.New(upstream.Config{Name: gecko.SourceName, BaseURL: baseURL + "/gecko"})
	rq.NoError(err)

	agg, err := market.New(stonfi.New(stonAPI), gecko.New(geckoAPI, ""), tonapi.New(tonAPI))
	rq.NoError(err)
	t.Cleanup(agg.Close)

	return agg
}

func geckoPools(n int, malformedAt int) string {
	items := make([]string, 0, n)

	for i := range n {
		price := `"0.5"`
		if i == malformedAt {
			price = `"not-a-number"`
		}

		items = append(items, fmt.Sprintf(
			`{"attributes":{"address":"P%d","name":"T%d / TON","base_token_price_usd":%s,"reserve_in_usd":"100","pool_created_at":"2024-05-0%dT00:00:00Z"},"relationships":{"base_token":{"data":{"id":"ton_EQ%d"}}}}`,
			i, i, price, i%9+1, i,
		))
	}

	return `{"data":[` + strings.Join(items, ",") + `]}`
}

func TestGetTrendingSkipsMalformedRecord(t *testing.T) {
	rq := require.New(t)

	_, url := newFakeUpstream(t, map[string]route{
		"/gecko/networks/ton/trending_pools": {body: geckoPools(10, 4)},
	})

	tokens, err := newAggregator(t, url).GetTrending(context.Background(), 0)
	rq.NoError(err)
	rq.Len(tokens, 9)

	for _, tok := range tokens {
		rq.NotEqual("EQ4", tok.Address)
	}

	rq.Equal("EQ0", tokens[0].Address)
	rq.Equal("T0", tokens[0].Symbol)

	limited, err := newAggregator(t, url).GetTrending(context.Background(), 3)
	rq.NoError(err)
	rq.Len(limited, 3)
}

func TestGetNewLaunches(t *testing.T) {
	rq := require.New(t)

	_, url := newFakeUpstream(t, map[string]route{
		"/gecko/networks/ton/new_pools": {body: `{"data":[
			{"attributes":{"address":"P1","name":" / TON","base_token_price_usd":"1","reserve_in_usd":"1","pool_created_at":"garbage"},"relationships":{"base_token":{"data":{"id":"ton_EQnew"}}}}
		]}`},
	})

	tokens, err := newAggregator(t, url).GetNewLaunches(context.Background(), 10)
	rq.NoError(err)
	rq.Len(tokens, 1)
	rq.Equal(entity.UnknownSymbol, tokens[0].Symbol)
	rq.Nil(tokens[0].CreatedAt)
}

func TestDegradesToEmpty(t *testing.T) {
	testCases := []struct {
		name string
		rt   route
	}{
		{name: "server error", rt: route{status: http.StatusInternalServerError}},
		{name: "rate limited", rt: route{status: http.StatusTooManyRequests}},
		{name: "missing top-level key", rt: route{body: `{"meta":{}}`}},
		{name: "not json", rt: route{body: `<html>`}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rq := require.New(t)

			_, url := newFakeUpstream(t, map[string]route{
				"/gecko/networks/ton/trending_pools": tc.rt,
				"/ston/v1/pools":                     tc.rt,
				"/tonapi/accounts/EQacc/jettons":     tc.rt,
			})

			agg := newAggregator(t, url)
			ctx := context.Background()

			tokens, err := agg.GetTrending(ctx, 10)
			rq.NoError(err)
			rq.NotNil(tokens)
			rq.Empty(tokens)

			pools, err := agg.GetTopPools(ctx, 10)
			rq.NoError(err)
			rq.NotNil(pools)
			rq.Empty(pools)

			balances, err := agg.GetAccountJettons(ctx, "EQacc")
			rq.NoError(err)
			rq.Empty(balances)
		})
	}
}

func TestGetTopPools(t *testing.T) {
	rq := require.New(t)

	up, url := newFakeUpstream(t, map[string]route{
		"/ston/v1/assets": {body: `{"asset_list":[{"contract_address":"EQa","symbol":"AAA"},{"contract_address":"EQb","symbol":"BBB"}]}`},
		"/ston/v1/pools": {body: `{"pool_list":[
			{"address":"low","token0_address":"EQa","token1_address":"EQb","volume_24h_usd":"10"},
			{"address":"tie1","token0_address":"EQa","token1_address":"EQc","volume_24h_usd":"50"},
			{"address":"broken","token0_address":"EQa","token1_address":"EQb","volume_24h_usd":"NaN?"},
			{"address":"high","token0_address":"EQb","token1_address":"EQa","volume_24h_usd":"99"},
			{"address":"tie2","token0_address":"EQb","token1_address":"EQc","volume_24h_usd":50}
		]}`},
	})

	agg := newAggregator(t, url)
	ctx := context.Background()

	pools, err := agg.GetTopPools(ctx, 3)
	rq.NoError(err)
	rq.Len(pools, 3)
	rq.Equal("high", pools[0].Address)
	rq.Equal("tie1", pools[1].Address)
	rq.Equal("tie2", pools[2].Address)
	rq.Equal("BBB", pools[0].Token0Symbol)
	rq.Equal("AAA", pools[0].Token1Symbol)
	rq.Equal(entity.UnknownSymbol, pools[1].Token1Symbol)
	rq.Equal(stonfi.DEXTag, pools[0].DEX)

	_, err = agg.GetTopPools(ctx, 10)
	rq.NoError(err)

	rq.Equal(1, up.count("/ston/v1/assets"))
	rq.Equal(2, up.count("/ston/v1/pools"))
	rq.Equal(2, agg.Symbols().Len())
}

func TestGetTopPoolsRetriesEmptyCache(t *testing.T) {
	rq := require.New(t)

	up, url := newFakeUpstream(t, map[string]route{
		"/ston/v1/assets": {status: http.StatusBadGateway},
		"/ston/v1/pools":  {body: `{"pool_list":[{"address":"p","token0_address":"EQa","token1_address":"EQb"}]}`},
	})

	agg := newAggregator(t, url)

	for range 2 {
		pools, err := agg.GetTopPools(context.Background(), 10)
		rq.NoError(err)
		rq.Len(pools, 1)
		rq.Equal(entity.UnknownSymbol, pools[0].Token0Symbol)
	}

	rq.Equal(2, up.count("/ston/v1/assets"))
}

func TestGetTopPoolsByLiquidity(t *testing.T) {
	rq := require.New(t)

	_, url := newFakeUpstream(t, map[string]route{
		"/gecko/networks/ton/pools": {body: geckoPools(5, -1)},
	})

	pools, err := newAggregator(t, url).GetTopPoolsByLiquidity(context.Background(), 2)
	rq.NoError(err)
	rq.Len(pools, 2)
	rq.Equal("P0", pools[0].Address)
	rq.Equal("T0", pools[0].Token0Symbol)
}

func TestAccountData(t *testing.T) {
	rq := require.New(t)

	_, url := newFakeUpstream(t, map[string]route{
		"/tonapi/accounts/EQacc/jettons": {body: `{"balances":[{"balance":"1","jetton":{"address":"EQj"}}]}`},
		"/tonapi/accounts/EQacc/events":  {body: `{"events":[{"event_id":"e1","timestamp":1,"actions":[{"type":"TonTransfer"}]}]}`},
		"/ston/v1/stats/dex":             {body: `{"stats":{"tvl":"5"}}`},
	})

	agg := newAggregator(t, url)
	ctx := context.Background()

	balances, err := agg.GetAccountJettons(ctx, "EQacc")
	rq.NoError(err)
	rq.Len(balances, 1)
	rq.Equal(entity.UnknownSymbol, balances[0].Symbol)
	rq.Equal(entity.UnknownName, balances[0].Name)

	events, err := agg.GetAccountEvents(ctx, "EQacc", 5)
	rq.NoError(err)
	rq.Len(events, 1)

	stats, err := agg.DexStats(ctx)
	rq.NoError(err)
	rq.InDelta(5.0, stats.TVL, 1e-9)
}

func TestAnalyzeSafety(t *testing.T) {
	rq := require.New(t)

	_, url := newFakeUpstream(t, map[string]route{
		"/tonapi/jettons/EQpepe":         {body: `{"total_supply":"1000","metadata":{"symbol":"PEPE","name":"Pepe","decimals":"9"}}`},
		"/tonapi/jettons/EQpepe/holders": {body: `{"addresses":[{"address":"a","balance":"600"},{"address":"b","balance":"50"}],"total":120}`},
	})

	token, err := newAggregator(t, url).AnalyzeSafety(context.Background(), "EQpepe")
	rq.NoError(err)
	rq.Equal("DANGER", token.SafetyLevel.String())
	rq.Contains(token.SafetyWarnings[0], "60%")
	rq.Equal(120, token.HolderCount)
}

func TestCancellationIsReturned(t *testing.T) {
	rq := require.New(t)

	_, url := newFakeUpstream(t, map[string]route{
		"/gecko/networks/ton/trending_pools": {body: geckoPools(3, -1), delay: time.Second},
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	tokens, err := newAggregator(t, url).GetTrending(ctx, 10)
	rq.ErrorIs(err, context.DeadlineExceeded)
	rq.Nil(tokens)
}

func TestNewRejectsNilSource(t *testing.T) {
	rq := require.New(t)

	_, err := market.New(nil, nil, nil)
	rq.ErrorIs(err, market.ErrNilSource)
}

func TestCloseIsIdempotent(t *testing.T) {
	rq := require.New(t)

	_, url := newFakeUpstream(t, map[string]route{})
	agg := newAggregator(t, url)

	rq.NotPanics(func() {
		agg.Close()
		agg.Close()
	})
}

func TestGetPool(t *testing.T) {
	rq := require.New(t)

	up, url := newFakeUpstream(t, map[string]route{
		"/ston/v1/assets":                   {body: `{"asset_list":[{"contract_address":"EQa","symbol":"AAA"}]}`},
		"/ston/v1/pools/EQston":             {body: `{"pool":{"address":"EQston","token0_address":"EQa","token1_address":"EQz","volume_24h_usd":"12"}}`},
		"/ston/v1/pools/EQgecko":            {status: http.StatusNotFound},
		"/gecko/networks/ton/pools/EQston":  {status: http.StatusInternalServerError},
		"/gecko/networks/ton/pools/EQgecko": {body: `{"data":{"attributes":{"address":"EQgecko","name":"G / TON","reserve_in_usd":"7"},"relationships":{"base_token":{"data":{"id":"ton_EQg"}}}}}`},
	})

	agg := newAggregator(t, url)
	ctx := context.Background()

	pool, err := agg.GetPool(ctx, "EQston")
	rq.NoError(err)
	rq.NotNil(pool)
	rq.Equal("AAA", pool.Token0Symbol)
	rq.Equal(entity.UnknownSymbol, pool.Token1Symbol)
	rq.InDelta(12.0, pool.Volume24h, 1e-9)
	rq.Zero(up.count("/gecko/networks/ton/pools/EQston"))

	pool, err = agg.GetPool(ctx, "EQgecko")
	rq.NoError(err)
	rq.NotNil(pool)
	rq.Equal("EQg", pool.Token0)
	rq.Equal("G", pool.Token0Symbol)
	rq.InDelta(7.0, pool.LiquidityUSD, 1e-9)

	pool, err = agg.GetPool(ctx, "EQmissing")
	rq.NoError(err)
	rq.Nil(pool)
}

func TestGetToken(t *testing.T) {
	rq := require.New(t)

	_, url := newFakeUpstream(t, map[string]route{
		"/gecko/networks/ton/tokens/EQpepe": {body: `{"data":{"attributes":{"address":"EQpepe","price_usd":"0.25","decimals":6}}}`},
	})

	agg := newAggregator(t, url)
	ctx := context.Background()

	token, err := agg.GetToken(ctx, "EQpepe")
	rq.NoError(err)
	rq.NotNil(token)
	rq.Equal(entity.UnknownSymbol, token.Symbol)
	rq.Equal(entity.UnknownName, token.Name)
	rq.Equal(6, token.Decimals)
	rq.InDelta(0.25, token.PriceUSD, 1e-9)

	token, err = agg.GetToken(ctx, "EQmissing")
	rq.NoError(err)
	rq.Nil(token)
}

func TestListJettonsFillsSymbols(t *testing.T) {
	rq := require.New(t)

	up, url := newFakeUpstream(t, map[string]route{
		"/tonapi/jettons": {body: `{"jettons":[{"metadata":{"address":"EQj1","symbol":"J1","name":"Jet"}},{"metadata":{"address":"EQj2"}}]}`},
		"/ston/v1/assets": {body: `{"asset_list":[{"contract_address":"EQa","symbol":"AAA"}]}`},
		"/ston/v1/pools":  {body: `{"pool_list":[{"address":"p","token0_address":"EQa","token1_address":"EQj1"}]}`},
	})

	agg := newAggregator(t, url)
	ctx := context.Background()

	jettons, err := agg.ListJettons(ctx, 2, 0)
	rq.NoError(err)
	rq.Len(jettons, 2)
	rq.Equal("J1", jettons[0].Symbol)
	rq.Equal(entity.UnknownSymbol, jettons[1].Symbol)
	rq.Equal(entity.UnknownName, jettons[1].Name)
	rq.Equal(1, agg.Symbols().Len())

	pools, err := agg.GetTopPools(ctx, 10)
	rq.NoError(err)
	rq.Len(pools, 1)
	rq.Equal("AAA", pools[0].Token0Symbol)
	rq.Equal("J1", pools[0].Token1Symbol)
	rq.Equal(1, up.count("/ston/v1/assets"))
}
