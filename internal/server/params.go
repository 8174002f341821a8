package server

import (
	"fmt"
	"net/http"
	"strconv"

	"git.appkode.ru/pub/go/failure"
	"github.com/go-chi/chi/v5"

	"memescan/internal/domain/value"
	"memescan/pkg/errcodes"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

const (
	sortByVolume    = "volume"
	sortByLiquidity = "liquidity"
)

// parseLimit читает ?limit=. Отсутствующий параметр даёт defaultLimit.
func parseLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultLimit, nil
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > maxLimit {
		return 0, failure.NewInvalidArgumentError(
			fmt.Sprintf("invalid limit %q", raw),
			failure.WithCode(errcodes.ValidationError),
			failure.WithDescription(fmt.Sprintf("limit must be an integer in [1, %d]", maxLimit)),
		)
	}

	return limit, nil
}

// parseOffset читает ?offset=, по умолчанию 0.
func parseOffset(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("offset")
	if raw == "" {
		return 0, nil
	}

	offset, err := strconv.Atoi(raw)
	if err != nil || offset < 0 {
		return 0, failure.NewInvalidArgumentError(
			fmt.Sprintf("invalid offset %q", raw),
			failure.WithCode(errcodes.ValidationError),
			failure.WithDescription("offset must be a non-negative integer"),
		)
	}

	return offset, nil
}

func parseAddressParam(r *http.Request) (value.Address, error) {
	return parseAddress(chi.URLParam(r, "address"))
}

func parseAddress(raw string) (value.Address, error) {
	address, err := value.ParseAddress(raw)
	if err != nil {
		return "", failure.NewInvalidArgumentErrorFromError(
			fmt.Errorf("value.ParseAddress: %w", err),
			failure.WithCode(errcodes.ValidationError),
			failure.WithDescription("invalid TON address"),
		)
	}

	return address, nil
}

func parseSortBy(r *http.Request) (string, error) {
	by := r.URL.Query().Get("by")

	switch by {
	case "", sortByVolume:
		return sortByVolume, nil
	case sortByLiquidity:
		return sortByLiquidity, nil
	default:
		return "", failure.NewInvalidArgumentError(
			fmt.Sprintf("invalid sort key %q", by),
			failure.WithCode(errcodes.ValidationError),
			failure.WithDescription("by must be one of: volume, liquidity"),
		)
	}
}
