package httpx_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"memescan/pkg/httpx"
)

func TestAuthBearerRoundTripperStaticToken(t *testing.T) {
	rq := require.New(t)

	testCases := []struct {
		name       string
		token      httpx.StaticToken
		statusCode int
		wantErr    error
	}{
		{
			name:       "Accepted key",
			token:      "good-key",
			statusCode: http.StatusOK,
		},
		{
			name:    "Rejected key",
			token:   "bad-key",
			wantErr: httpx.ErrStaticTokenRejected,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(*testing.T) {
			var gotHeader string

			httpServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotHeader = r.Header.Get("Authorization")

				if gotHeader != "Bearer good-key" {
					w.WriteHeader(http.StatusUnauthorized)
					return
				}

				w.WriteHeader(http.StatusOK)
			}))
			defer httpServer.Close()

			client := &http.Client{
				Transport: httpx.NewAuthBearerRoundTripper(http.DefaultTransport, tc.token),
			}

			req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, httpServer.URL, http.NoBody)
			rq.NoError(err)

			resp, err := client.Do(req)
			rq.Equal("Bearer "+string(tc.token), gotHeader)

			if tc.wantErr != nil {
				rq.ErrorIs(err, tc.wantErr)
				return
			}

			rq.NoError(err)
			defer resp.Body.Close()

			rq.Equal(tc.statusCode, resp.StatusCode)
		})
	}
}
