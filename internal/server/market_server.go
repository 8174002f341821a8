package server

import (
	"context"
	"fmt"
	"net/http"

	"memescan/internal/domain"
	"memescan/internal/domain/entity"
	"memescan/pkg/errcodes"
	"memescan/pkg/httpx/reply"
	"memescan/pkg/lox"
	"memescan/pkg/rest"
)

type marketService interface {
	GetTrending(ctx context.Context, limit int) ([]entity.Token, error)
	GetNewLaunches(ctx context.Context, limit int) ([]entity.Token, error)
	GetTopPools(ctx context.Context, limit int) ([]entity.Pool, error)
	GetTopPoolsByLiquidity(ctx context.Context, limit int) ([]entity.Pool, error)
	AnalyzeSafety(ctx context.Context, address string) (entity.Token, error)
	GetAccountJettons(ctx context.Context, account string) ([]entity.JettonBalance, error)
	GetAccountEvents(ctx context.Context, account string, limit int) ([]entity.AccountEvent, error)
	DexStats(ctx context.Context) (*entity.DexStats, error)
	GetPool(ctx context.Context, address string) (*entity.Pool, error)
	GetToken(ctx context.Context, address string) (*entity.Token, error)
	ListJettons(ctx context.Context, limit, offset int) ([]entity.JettonMeta, error)
}

// MarketServer отдаёт рыночные данные. Недоступный апстрим даёт пустой
// список, а не ошибку.
type MarketServer struct {
	marketService marketService
}

func NewMarketServer(marketService marketService) MarketServer {
	return MarketServer{
		marketService: marketService,
	}
}

func (s MarketServer) getV1TrendingTokens(w http.ResponseWriter, r *http.Request) error {
	return s.tokenList(w, r, s.marketService.GetTrending)
}

func (s MarketServer) getV1NewTokens(w http.ResponseWriter, r *http.Request) error {
	return s.tokenList(w, r, s.marketService.GetNewLaunches)
}

func (s MarketServer) tokenList(
	w http.ResponseWriter,
	r *http.Request,
	fetch func(context.Context, int) ([]entity.Token, error),
) error {
	ctx := r.Context()

	limit, err := parseLimit(r)
	if err != nil {
		return err
	}

	tokens, err := fetch(ctx, limit)
	if err != nil {
		return fmt.Errorf("marketService: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, rest.TokenList{Tokens: lox.Map(tokens, newRESTToken)})

	return nil
}

func (s MarketServer) getV1TopPools(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	limit, err := parseLimit(r)
	if err != nil {
		return err
	}

	by, err := parseSortBy(r)
	if err != nil {
		return err
	}

	fetch := s.marketService.GetTopPools
	if by == sortByLiquidity {
		fetch = s.marketService.GetTopPoolsByLiquidity
	}

	pools, err := fetch(ctx, limit)
	if err != nil {
		return fmt.Errorf("marketService.TopPools(%s): %w", by, err)
	}

	reply.JSON(ctx, w, http.StatusOK, rest.PoolList{Pools: lox.Map(pools, newRESTPool)})

	return nil
}

func (s MarketServer) getV1TokenSafety(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	address, err := parseAddressParam(r)
	if err != nil {
		return err
	}

	token, err := s.marketService.AnalyzeSafety(ctx, address.String())
	if err != nil {
		return fmt.Errorf("marketService.AnalyzeSafety: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTToken(token))

	return nil
}

func (s MarketServer) getV1AccountJettons(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	address, err := parseAddressParam(r)
	if err != nil {
		return err
	}

	balances, err := s.marketService.GetAccountJettons(ctx, address.String())
	if err != nil {
		return fmt.Errorf("marketService.GetAccountJettons: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, rest.JettonBalanceList{
		Balances: lox.Map(balances, newRESTJettonBalance),
	})

	return nil
}

func (s MarketServer) getV1AccountEvents(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	address, err := parseAddressParam(r)
	if err != nil {
		return err
	}

	limit, err := parseLimit(r)
	if err != nil {
		return err
	}

	events, err := s.marketService.GetAccountEvents(ctx, address.String(), limit)
	if err != nil {
		return fmt.Errorf("marketService.GetAccountEvents: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, rest.AccountEventList{
		Events: lox.Map(events, newRESTAccountEvent),
	})

	return nil
}

func (s MarketServer) getV1DexStats(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	stats, err := s.marketService.DexStats(ctx)
	if err != nil {
		return fmt.Errorf("marketService.DexStats: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTDexStats(stats))

	return nil
}

func (s MarketServer) getV1Pool(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	address, err := parseAddressParam(r)
	if err != nil {
		return err
	}

	pool, err := s.marketService.GetPool(ctx, address.String())
	if err != nil {
		return fmt.Errorf("marketService.GetPool: %w", err)
	}

	if pool == nil {
		return domain.NewError(errcodes.PoolNotFound, "pool not found")
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTPool(*pool))

	return nil
}

func (s MarketServer) getV1Token(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	address, err := parseAddressParam(r)
	if err != nil {
		return err
	}

	token, err := s.marketService.GetToken(ctx, address.String())
	if err != nil {
		return fmt.Errorf("marketService.GetToken: %w", err)
	}

	if token == nil {
		return domain.NewError(errcodes.TokenNotFound, "token not found")
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTToken(*token))

	return nil
}

func (s MarketServer) getV1Jettons(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	limit, err := parseLimit(r)
	if err != nil {
		return err
	}

	offset, err := parseOffset(r)
	if err != nil {
		return err
	}

	jettons, err := s.marketService.ListJettons(ctx, limit, offset)
	if err != nil {
		return fmt.Errorf("marketService.ListJettons: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, rest.JettonList{Jettons: lox.Map(jettons, newRESTJetton)})

	return nil
}
