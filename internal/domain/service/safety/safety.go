package safety

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"memescan/internal/domain/entity"
	"memescan/internal/domain/value"
	"memescan/pkg/contextx"
	"memescan/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

const (
	HolderSampleSize = 20

	dangerTopHolderPct  = 50.0
	warningTopHolderPct = 20.0
	minHolders          = 10

	unavailableWarning = "Could not analyze token"
)

type Chain interface {
	JettonMeta(ctx context.Context, address string) (*entity.JettonMeta, error)
	Holders(ctx context.Context, address string, limit int) (entity.HolderPage, error)
}

type SymbolLookup interface {
	Symbol(address string) (string, bool)
}

// Analyzer оценивает риск rug pull по распределению холдеров джеттона.
type Analyzer struct {
	chain   Chain
	symbols SymbolLookup
}

func NewAnalyzer(chain Chain, symbols SymbolLookup) *Analyzer {
	return &Analyzer{chain: chain, symbols: symbols}
}

// Analyze возвращает ошибку только при отмене ctx. Недоступность апстрима
// даёт токен с уровнем UNKNOWN.
func (a *Analyzer) Analyze(ctx context.Context, address string) (entity.Token, error) {
	var (
		meta    *entity.JettonMeta
		page    entity.HolderPage
		metaErr error
	)

	var g errgroup.Group

	g.Go(func() error {
		meta, metaErr = a.chain.JettonMeta(ctx, address)
		return nil
	})

	g.Go(func() error {
		var err error

		page, err = a.chain.Holders(ctx, address, HolderSampleSize)
		if err != nil && ctx.Err() == nil {
			logger(ctx).Warn("holders unavailable",
				logx.FieldAddress, address,
				logx.Error(err),
			)
		}

		return nil
	})

	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return entity.Token{}, fmt.Errorf("safety.Analyze: %w", err)
	}

	if metaErr != nil || meta == nil {
		if metaErr != nil {
			logger(ctx).Warn("jetton metadata unavailable",
				logx.FieldAddress, address,
				logx.Error(metaErr),
			)
		}

		return Unknown(address), nil
	}

	return a.assess(address, meta, page), nil
}

// Unknown токен, для которого не удалось получить данные.
func Unknown(address string) entity.Token {
	return entity.Token{
		Address:        address,
		Symbol:         entity.UnknownSymbol,
		Name:           entity.UnknownName,
		Decimals:       entity.DefaultDecimals,
		SafetyLevel:    value.SafetyUnknown,
		SafetyWarnings: []string{unavailableWarning},
	}
}

func (a *Analyzer) assess(address string, meta *entity.JettonMeta, page entity.HolderPage) entity.Token {
	level := value.SafetySafe
	warnings := []string{}

	var devPct float64

	if meta.TotalSupply > 0 && len(page.Holders) > 0 {
		devPct = TopHolderPercent(page.Holders, meta.TotalSupply)

		switch {
		case devPct > dangerTopHolderPct:
			warnings = append(warnings, fmt.Sprintf("🚨 Top wallet holds %.0f%%", devPct))
			level = level.Escalate(value.SafetyDanger)
		case devPct > warningTopHolderPct:
			warnings = append(warnings, fmt.Sprintf("⚠️ Top wallet holds %.0f%%", devPct))
			level = level.Escalate(value.SafetyWarning)
		}
	}

	holderCount := page.Total
	if holderCount <= 0 {
		holderCount = len(page.Holders)
	}

	if holderCount < minHolders {
		warnings = append(warnings, fmt.Sprintf("⚠️ Only %d holders", holderCount))
		level = level.Escalate(value.SafetyWarning)
	}

	decimals := meta.Decimals
	if decimals <= 0 {
		decimals = entity.DefaultDecimals
	}

	name := meta.Name
	if name == "" {
		name = entity.UnknownName
	}

	return entity.Token{
		Address:          address,
		Symbol:           a.symbol(address, meta.Symbol),
		Name:             name,
		Decimals:         decimals,
		TotalSupply:      meta.TotalSupply,
		HolderCount:      holderCount,
		SafetyLevel:      level,
		SafetyWarnings:   warnings,
		DevWalletPercent: devPct,
	}
}

func (a *Analyzer) symbol(address, symbol string) string {
	if symbol != "" {
		return symbol
	}

	if a.symbols != nil {
		if s, ok := a.symbols.Symbol(address); ok && s != "" {
			return s
		}
	}

	return entity.UnknownSymbol
}

// TopHolderPercent доля крупнейшего холдера в процентах от supply.
func TopHolderPercent(holders []entity.Holder, supply float64) float64 {
	if supply <= 0 {
		return 0
	}

	var top float64

	for _, h := range holders {
		if h.Balance > top {
			top = h.Balance
		}
	}

	return top / supply * 100
}
