package tonapi_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"memescan/internal/domain/entity"
	"memescan/internal/infrastructure/tonapi"
	"memescan/internal/infrastructure/upstream"
)

func TestClient(t *testing.T) {
	rq := require.New(t)

	var auth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")

		switch r.URL.Path {
		case "/v2/jettons/EQjetton":
			_, _ = w.Write([]byte(`{"total_supply":"1000","holders_count":20,"verification":"whitelist","metadata":{"symbol":"PEPE","name":"Pepe","decimals":"6"}}`))
		case "/v2/jettons/EQjetton/holders":
			rq.Equal("20", r.URL.Query().Get("limit"))
			_, _ = w.Write([]byte(`{"addresses":[{"address":"h1","owner":{"address":"o1"},"balance":"600"},{"address":"h2","balance":"400"},{"address":"h3","balance":"x"}],"total":20}`))
		case "/v2/accounts/EQwhale/jettons":
			_, _ = w.Write([]byte(`{"balances":[{"balance":"5","jetton":{"address":"EQjetton","symbol":"PEPE"}}]}`))
		case "/v2/accounts/EQwhale/events":
			_, _ = w.Write([]byte(`{"events":[{"event_id":"e1","timestamp":1700000000,"actions":[{"type":"JettonTransfer"},{"type":"TonTransfer"}]}]}`))
		case "/v2/jettons":
			_, _ = w.Write([]byte(`{}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	api, err := upstream.New(upstream.Config{Name: tonapi.SourceName, BaseURL: srv.URL + "/v2", BearerToken: "secret"})
	rq.NoError(err)

	client := tonapi.New(api)
	defer client.Close()

	ctx := context.Background()

	meta, err := client.JettonMeta(ctx, "EQjetton")
	rq.NoError(err)
	rq.Equal("EQjetton", meta.Address)
	rq.Equal("PEPE", meta.Symbol)
	rq.Equal(6, meta.Decimals)
	rq.True(meta.Verified)
	rq.InDelta(1000.0, meta.TotalSupply, 1e-9)
	rq.Equal("Bearer secret", auth)

	page, err := client.Holders(ctx, "EQjetton", 20)
	rq.NoError(err)
	rq.Len(page.Holders, 2)
	rq.Equal("o1", page.Holders[0].Owner)
	rq.Equal(20, page.Total)

	balances, err := client.AccountJettons(ctx, "EQwhale")
	rq.NoError(err)
	rq.Len(balances, 1)
	rq.Equal("EQjetton", balances[0].Jetton)
	rq.Equal(entity.DefaultDecimals, balances[0].Decimals)
	rq.False(balances[0].Verified)

	events, err := client.AccountEvents(ctx, "EQwhale", 5)
	rq.NoError(err)
	rq.Len(events, 1)
	rq.Equal([]string{"JettonTransfer", "TonTransfer"}, events[0].Actions)
	rq.Equal(int64(1700000000), events[0].Timestamp.Unix())

	jettons, err := client.Jettons(ctx, 10, 0)
	rq.NoError(err)
	rq.Empty(jettons)

	_, err = client.JettonMeta(ctx, "EQnope")
	rq.True(upstream.IsNotFound(err))
}
