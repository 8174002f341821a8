package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"memescan/pkg/httpx/reply"
)

func (s Server) RegisterRoutes(r chi.Router) { //nolint:funlen
	r.Route("/", func(r chi.Router) {
		r.Route("/v1", func(r chi.Router) {
			// unauthorized zone
			r.Route("/score", func(r chi.Router) {
				r.Post("/batch", handler(s.postV1ScoreBatch))
				r.Get("/{address}", handler(s.getV1Score))
			})

			r.Route("/tokens", func(r chi.Router) {
				r.Get("/trending", handler(s.getV1TrendingTokens))
				r.Get("/new", handler(s.getV1NewTokens))
				r.Get("/tracked", handler(s.getV1TrackedTokens))
				r.Get("/tracked/{address}/events", handler(s.getV1TrackedTokenEvents))
				r.Get("/{address}", handler(s.getV1Token))
				r.Get("/{address}/safety", handler(s.getV1TokenSafety))
			})

			r.Get("/pools/top", handler(s.getV1TopPools))
			r.Get("/pools/{address}", handler(s.getV1Pool))
			r.Get("/jettons", handler(s.getV1Jettons))
			r.Get("/dex/stats", handler(s.getV1DexStats))

			r.Route("/accounts/{address}", func(r chi.Router) {
				r.Get("/jettons", handler(s.getV1AccountJettons))
				r.Get("/events", handler(s.getV1AccountEvents))
			})
		})
	})
}

func handler(f func(http.ResponseWriter, *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := f(w, r); err != nil {
			reply.Error(r.Context(), w, err)
		}
	}
}
