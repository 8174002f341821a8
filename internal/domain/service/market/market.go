package market

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"memescan/internal/domain/entity"
	"memescan/internal/domain/service/safety"
	"memescan/pkg/contextx"
	"memescan/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

// TopPoolsFetchLimit сколько пулов STON.fi берём перед сортировкой по объёму.
const TopPoolsFetchLimit = 200

var ErrNilSource = errors.New("market: nil source")

type PoolSource interface {
	Assets(ctx context.Context) ([]entity.Asset, error)
	Pools(ctx context.Context, limit int) ([]entity.Pool, error)
	Pool(ctx context.Context, address string) (*entity.Pool, error)
	DexStats(ctx context.Context) (*entity.DexStats, error)
	Close()
}

type TrendSource interface {
	TrendingTokens(ctx context.Context) ([]entity.Token, error)
	NewTokens(ctx context.Context) ([]entity.Token, error)
	TopPools(ctx context.Context) ([]entity.Pool, error)
	Pool(ctx context.Context, address string) (*entity.Pool, error)
	Token(ctx context.Context, address string) (*entity.Token, error)
	Close()
}

type ChainSource interface {
	safety.Chain
	Jettons(ctx context.Context, limit, offset int) ([]entity.JettonMeta, error)
	AccountJettons(ctx context.Context, account string) ([]entity.JettonBalance, error)
	AccountEvents(ctx context.Context, account string, limit int) ([]entity.AccountEvent, error)
	Close()
}

// Aggregator сводит данные DEX, блокчейна и агрегатора трендов в токены и пулы.
// Недоступный источник даёт пустой результат, ошибкой возвращается только
// отмена ctx.
type Aggregator struct {
	pools    PoolSource
	trends   TrendSource
	chain    ChainSource
	symbols  *SymbolCache
	analyzer *safety.Analyzer

	warmed    atomic.Bool
	closeOnce sync.Once
}

func New(pools PoolSource, trends TrendSource, chain ChainSource) (*Aggregator, error) {
	if pools == nil || trends == nil || chain == nil {
		return nil, fmt.Errorf("market.New: %w", ErrNilSource)
	}

	symbols := NewSymbolCache()

	return &Aggregator{
		pools:    pools,
		trends:   trends,
		chain:    chain,
		symbols:  symbols,
		analyzer: safety.NewAnalyzer(chain, symbols),
	}, nil
}

func (a *Aggregator) GetTrending(ctx context.Context, limit int) ([]entity.Token, error) {
	tokens, err := a.trends.TrendingTokens(ctx)

	tokens, err = degrade(ctx, "trending", tokens, err)
	if err != nil {
		return nil, fmt.Errorf("market.GetTrending: %w", err)
	}

	return a.resolveTokens(truncate(tokens, limit)), nil
}

func (a *Aggregator) GetNewLaunches(ctx context.Context, limit int) ([]entity.Token, error) {
	tokens, err := a.trends.NewTokens(ctx)

	tokens, err = degrade(ctx, "new_launches", tokens, err)
	if err != nil {
		return nil, fmt.Errorf("market.GetNewLaunches: %w", err)
	}

	return a.resolveTokens(truncate(tokens, limit)), nil
}

// GetTopPools пулы STON.fi по убыванию объёма за 24ч. Порядок пулов с равным
// объёмом сохраняется.
func (a *Aggregator) GetTopPools(ctx context.Context, limit int) ([]entity.Pool, error) {
	if err := a.warmSymbols(ctx); err != nil {
		return nil, fmt.Errorf("market.GetTopPools: %w", err)
	}

	pools, err := a.pools.Pools(ctx, TopPoolsFetchLimit)

	pools, err = degrade(ctx, "top_pools", pools, err)
	if err != nil {
		return nil, fmt.Errorf("market.GetTopPools: %w", err)
	}

	slices.SortStableFunc(pools, func(x, y entity.Pool) int {
		return cmp.Compare(y.Volume24h, x.Volume24h)
	})

	pools = truncate(pools, limit)

	for i := range pools {
		pools[i].Token0Symbol = a.symbols.Resolve(pools[i].Token0)
		pools[i].Token1Symbol = a.symbols.Resolve(pools[i].Token1)
	}

	return pools, nil
}

// GetTopPoolsByLiquidity пулы сети в порядке агрегатора трендов (по ликвидности).
func (a *Aggregator) GetTopPoolsByLiquidity(ctx context.Context, limit int) ([]entity.Pool, error) {
	pools, err := a.trends.TopPools(ctx)

	pools, err = degrade(ctx, "top_pools_by_liquidity", pools, err)
	if err != nil {
		return nil, fmt.Errorf("market.GetTopPoolsByLiquidity: %w", err)
	}

	pools = truncate(pools, limit)

	for i := range pools {
		if pools[i].Token0Symbol == "" {
			pools[i].Token0Symbol = a.symbols.Resolve(pools[i].Token0)
		}

		if pools[i].Token1Symbol == "" {
			pools[i].Token1Symbol = a.symbols.Resolve(pools[i].Token1)
		}
	}

	return pools, nil
}

func (a *Aggregator) AnalyzeSafety(ctx context.Context, address string) (entity.Token, error) {
	token, err := a.analyzer.Analyze(ctx, address)
	if err != nil {
		return entity.Token{}, fmt.Errorf("market.AnalyzeSafety: %w", err)
	}

	return token, nil
}

func (a *Aggregator) GetAccountJettons(ctx context.Context, account string) ([]entity.JettonBalance, error) {
	balances, err := a.chain.AccountJettons(ctx, account)

	balances, err = degrade(ctx, "account_jettons", balances, err)
	if err != nil {
		return nil, fmt.Errorf("market.GetAccountJettons: %w", err)
	}

	for i := range balances {
		if balances[i].Symbol == "" {
			balances[i].Symbol = a.symbols.Resolve(balances[i].Jetton)
		}

		if balances[i].Name == "" {
			balances[i].Name = entity.UnknownName
		}
	}

	return balances, nil
}

func (a *Aggregator) GetAccountEvents(ctx context.Context, account string, limit int) ([]entity.AccountEvent, error) {
	events, err := a.chain.AccountEvents(ctx, account, limit)

	events, err = degrade(ctx, "account_events", events, err)
	if err != nil {
		return nil, fmt.Errorf("market.GetAccountEvents: %w", err)
	}

	return events, nil
}

// DexStats nil, если статистика недоступна.
func (a *Aggregator) DexStats(ctx context.Context) (*entity.DexStats, error) {
	stats, err := a.pools.DexStats(ctx)

	stats, err = degradeOne(ctx, "dex_stats", stats, err)
	if err != nil {
		return nil, fmt.Errorf("market.DexStats: %w", err)
	}

	return stats, nil
}

// GetPool пул по адресу: сначала STON.fi, затем GeckoTerminal. nil, если
// пул не нашёлся ни в одном источнике.
func (a *Aggregator) GetPool(ctx context.Context, address string) (*entity.Pool, error) {
	pool, err := a.pools.Pool(ctx, address)

	pool, err = degradeOne(ctx, "pool", pool, err)
	if err != nil {
		return nil, fmt.Errorf("market.GetPool: %w", err)
	}

	if pool == nil {
		pool, err = a.trends.Pool(ctx, address)

		pool, err = degradeOne(ctx, "pool_fallback", pool, err)
		if err != nil {
			return nil, fmt.Errorf("market.GetPool: %w", err)
		}
	}

	if pool == nil {
		return nil, nil //nolint:nilnil
	}

	if err := a.warmSymbols(ctx); err != nil {
		return nil, fmt.Errorf("market.GetPool: %w", err)
	}

	if pool.Token0Symbol == "" {
		pool.Token0Symbol = a.symbols.Resolve(pool.Token0)
	}

	if pool.Token1Symbol == "" {
		pool.Token1Symbol = a.symbols.Resolve(pool.Token1)
	}

	return pool, nil
}

// GetToken рыночная карточка токена из агрегатора трендов, nil если её нет.
func (a *Aggregator) GetToken(ctx context.Context, address string) (*entity.Token, error) {
	token, err := a.trends.Token(ctx, address)

	token, err = degradeOne(ctx, "token", token, err)
	if err != nil {
		return nil, fmt.Errorf("market.GetToken: %w", err)
	}

	if token == nil {
		return nil, nil //nolint:nilnil
	}

	if token.Symbol == "" {
		token.Symbol = a.symbols.Resolve(token.Address)
	}

	if token.Name == "" {
		token.Name = entity.UnknownName
	}

	return token, nil
}

// ListJettons страница справочника джеттонов TonAPI. Символы попадают в кэш.
func (a *Aggregator) ListJettons(ctx context.Context, limit, offset int) ([]entity.JettonMeta, error) {
	jettons, err := a.chain.Jettons(ctx, limit, offset)

	jettons, err = degrade(ctx, "jettons", jettons, err)
	if err != nil {
		return nil, fmt.Errorf("market.ListJettons: %w", err)
	}

	assets := make([]entity.Asset, 0, len(jettons))

	for i := range jettons {
		assets = append(assets, entity.Asset{
			Address:  jettons[i].Address,
			Symbol:   jettons[i].Symbol,
			Name:     jettons[i].Name,
			Decimals: jettons[i].Decimals,
		})

		if jettons[i].Symbol == "" {
			jettons[i].Symbol = a.symbols.Resolve(jettons[i].Address)
		}

		if jettons[i].Name == "" {
			jettons[i].Name = entity.UnknownName
		}
	}

	a.symbols.Load(assets)

	return jettons, nil
}

// Close освобождает соединения всех источников. Повторный вызов ничего не делает.
func (a *Aggregator) Close() {
	a.closeOnce.Do(func() {
		a.pools.Close()
		a.trends.Close()
		a.chain.Close()
	})
}

// warmSymbols заполняет кэш символов, пока он пуст. Ошибка справочника не
// фатальна: символы останутся "?".
func (a *Aggregator) warmSymbols(ctx context.Context) error {
	if a.warmed.Load() {
		return nil
	}

	assets, err := a.pools.Assets(ctx)

	assets, err = degrade(ctx, "assets", assets, err)
	if err != nil {
		return err
	}

	n := a.symbols.Load(assets)
	if n > 0 {
		a.warmed.Store(true)
	}

	logger(ctx).Debug("symbol cache warmed", "symbols", n)

	return nil
}

func (a *Aggregator) resolveTokens(tokens []entity.Token) []entity.Token {
	for i := range tokens {
		if tokens[i].Symbol == "" {
			tokens[i].Symbol = a.symbols.Resolve(tokens[i].Address)
		}
	}

	return tokens
}

// degrade превращает ошибку апстрима в пустой результат. Отмена ctx
// возвращается как есть, частичные данные отбрасываются.
func degrade[T any](ctx context.Context, op string, items []T, err error) ([]T, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	if err != nil {
		logger(ctx).Warn("upstream degraded", logx.FieldSource, op, logx.Error(err))

		return []T{}, nil
	}

	if items == nil {
		return []T{}, nil
	}

	return items, nil
}

// degradeOne то же для одиночного значения: ошибка апстрима даёт nil.
func degradeOne[T any](ctx context.Context, op string, item *T, err error) (*T, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	if err != nil {
		logger(ctx).Warn("upstream degraded", logx.FieldSource, op, logx.Error(err))

		return nil, nil
	}

	return item, nil
}

func truncate[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}

	return items
}
