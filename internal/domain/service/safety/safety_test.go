package safety_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"memescan/internal/domain/entity"
	"memescan/internal/domain/service/safety"
	"memescan/internal/domain/value"
)

type fakeChain struct {
	meta       *entity.JettonMeta
	metaErr    error
	page       entity.HolderPage
	holdersErr error
	block      bool
}

func (f *fakeChain) JettonMeta(ctx context.Context, _ string) (*entity.JettonMeta, error) {
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	return f.meta, f.metaErr
}

func (f *fakeChain) Holders(ctx context.Context, _ string, limit int) (entity.HolderPage, error) {
	if f.block {
		<-ctx.Done()
		return entity.HolderPage{}, ctx.Err()
	}

	if limit != safety.HolderSampleSize {
		return entity.HolderPage{}, errors.New("unexpected limit")
	}

	return f.page, f.holdersErr
}

type symbolMap map[string]string

func (m symbolMap) Symbol(address string) (string, bool) {
	s, ok := m[address]
	return s, ok
}

func holders(balances ...float64) []entity.Holder {
	out := make([]entity.Holder, 0, len(balances))
	for _, b := range balances {
		out = append(out, entity.Holder{Balance: b})
	}

	return out
}

func TestAnalyze(t *testing.T) {
	testCases := []struct {
		name         string
		chain        *fakeChain
		wantLevel    value.SafetyLevel
		wantWarnings []string
		wantDevPct   float64
		wantHolders  int
	}{
		{
			name: "dominant holder is danger",
			chain: &fakeChain{
				meta: &entity.JettonMeta{Symbol: "PEPE", Name: "Pepe", Decimals: 9, TotalSupply: 1000},
				page: entity.HolderPage{Holders: holders(600, 100, 50), Total: 150},
			},
			wantLevel:    value.SafetyDanger,
			wantWarnings: []string{"🚨 Top wallet holds 60%"},
			wantDevPct:   60,
			wantHolders:  150,
		},
		{
			name: "large holder is warning",
			chain: &fakeChain{
				meta: &entity.JettonMeta{Symbol: "PEPE", TotalSupply: 1000},
				page: entity.HolderPage{Holders: holders(100, 300), Total: 40},
			},
			wantLevel:    value.SafetyWarning,
			wantWarnings: []string{"⚠️ Top wallet holds 30%"},
			wantDevPct:   30,
			wantHolders:  40,
		},
		{
			name: "few holders do not downgrade danger",
			chain: &fakeChain{
				meta: &entity.JettonMeta{Symbol: "PEPE", TotalSupply: 100},
				page: entity.HolderPage{Holders: holders(90, 10)},
			},
			wantLevel:    value.SafetyDanger,
			wantWarnings: []string{"🚨 Top wallet holds 90%", "⚠️ Only 2 holders"},
			wantDevPct:   90,
			wantHolders:  2,
		},
		{
			name: "few holders escalate safe to warning",
			chain: &fakeChain{
				meta: &entity.JettonMeta{Symbol: "PEPE", TotalSupply: 1000},
				page: entity.HolderPage{Holders: holders(10, 10, 10)},
			},
			wantLevel:    value.SafetyWarning,
			wantWarnings: []string{"⚠️ Only 3 holders"},
			wantDevPct:   1,
			wantHolders:  3,
		},
		{
			name: "zero supply skips concentration check",
			chain: &fakeChain{
				meta: &entity.JettonMeta{Symbol: "PEPE"},
				page: entity.HolderPage{Holders: holders(600), Total: 500},
			},
			wantLevel:    value.SafetySafe,
			wantWarnings: []string{},
			wantHolders:  500,
		},
		{
			name: "holders failure counts as no holders",
			chain: &fakeChain{
				meta:       &entity.JettonMeta{Symbol: "PEPE", TotalSupply: 1000},
				holdersErr: errors.New("boom"),
			},
			wantLevel:    value.SafetyWarning,
			wantWarnings: []string{"⚠️ Only 0 holders"},
		},
		{
			name:         "metadata failure is unknown",
			chain:        &fakeChain{metaErr: errors.New("boom"), page: entity.HolderPage{Holders: holders(1)}},
			wantLevel:    value.SafetyUnknown,
			wantWarnings: []string{"Could not analyze token"},
		},
		{
			name:         "missing metadata is unknown",
			chain:        &fakeChain{},
			wantLevel:    value.SafetyUnknown,
			wantWarnings: []string{"Could not analyze token"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rq := require.New(t)

			token, err := safety.NewAnalyzer(tc.chain, nil).Analyze(context.Background(), "EQtoken")
			rq.NoError(err)
			rq.Equal("EQtoken", token.Address)
			rq.Equal(tc.wantLevel, token.SafetyLevel)
			rq.Equal(tc.wantWarnings, token.SafetyWarnings)
			rq.InDelta(tc.wantDevPct, token.DevWalletPercent, 1e-9)
			rq.Equal(tc.wantHolders, token.HolderCount)
		})
	}
}

func TestAnalyzeTokenFields(t *testing.T) {
	rq := require.New(t)

	chain := &fakeChain{
		meta: &entity.JettonMeta{TotalSupply: 1000},
		page: entity.HolderPage{Holders: holders(10), Total: 200},
	}

	token, err := safety.NewAnalyzer(chain, symbolMap{"EQtoken": "CACHED"}).Analyze(context.Background(), "EQtoken")
	rq.NoError(err)
	rq.Equal("CACHED", token.Symbol)
	rq.Equal(entity.UnknownName, token.Name)
	rq.Equal(entity.DefaultDecimals, token.Decimals)

	token, err = safety.NewAnalyzer(chain, symbolMap{}).Analyze(context.Background(), "EQtoken")
	rq.NoError(err)
	rq.Equal(entity.UnknownSymbol, token.Symbol)
}

func TestAnalyzeCanceled(t *testing.T) {
	rq := require.New(t)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := safety.NewAnalyzer(&fakeChain{block: true}, nil).Analyze(ctx, "EQtoken")
	rq.ErrorIs(err, context.DeadlineExceeded)
}

func TestSeverityIsMonotonicInConcentration(t *testing.T) {
	rq := require.New(t)

	rank := map[value.SafetyLevel]int{value.SafetySafe: 0, value.SafetyWarning: 1, value.SafetyDanger: 2}
	prev := -1

	for top := 0.0; top <= 1000; top += 25 {
		chain := &fakeChain{
			meta: &entity.JettonMeta{Symbol: "X", TotalSupply: 1000},
			page: entity.HolderPage{Holders: holders(top), Total: 100},
		}

		token, err := safety.NewAnalyzer(chain, nil).Analyze(context.Background(), "EQtoken")
		rq.NoError(err)
		rq.GreaterOrEqual(rank[token.SafetyLevel], prev)
		prev = rank[token.SafetyLevel]

		if token.SafetyLevel == value.SafetyDanger {
			rq.True(strings.HasPrefix(token.SafetyWarnings[0], "🚨"))
		}
	}
}

func TestTopHolderPercent(t *testing.T) {
	rq := require.New(t)

	rq.InDelta(60.0, safety.TopHolderPercent(holders(100, 600, 300), 1000), 1e-9)
	rq.Zero(safety.TopHolderPercent(holders(100), 0))
}
