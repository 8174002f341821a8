package tracker

import (
	"context"
	"fmt"
	"time"

	"memescan/internal/domain"
	"memescan/internal/domain/entity"
	"memescan/internal/domain/value"
	"memescan/pkg/contextx"
	"memescan/pkg/errcodes"
	"memescan/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

const (
	RugMethodDevExit      = "dev_exit"
	RugMethodHolderExodus = "holder_exodus"

	devExitCurrentPct  = 5.0
	devExitInitialPct  = 30.0
	holderExodusRatio  = 0.8
	manyHolders        = 100
	fewHolders         = 10
	heavyDevPct        = 50.0
	noticeableDevPct   = 20.0
	defaultRecentLimit = 500
)

type Analyzer interface {
	AnalyzeSafety(ctx context.Context, address string) (entity.Token, error)
}

type TokenRepository interface {
	Get(ctx context.Context, address string) (*entity.TrackedToken, error)
	// Upsert сообщает true, если токен записан впервые.
	Upsert(ctx context.Context, token *entity.TrackedToken) (bool, error)
	MarkRugged(ctx context.Context, address string, at time.Time) error
	AddEvent(ctx context.Context, event *entity.TokenEvent) error
	ListRecent(ctx context.Context, limit int, includeRugged bool) ([]entity.TrackedToken, error)
	ListEvents(ctx context.Context, address string, limit int) ([]entity.TokenEvent, error)
}

// RugVerdict результат проверки на rug pull.
type RugVerdict struct {
	Rugged  bool
	Method  string
	Payload map[string]any
}

// Tracker ведёт историю найденных токенов и ищет признаки rug pull.
type Tracker struct {
	analyzer Analyzer
	repo     TokenRepository
	alerts   chan<- entity.Alert
	now      func() time.Time
}

func NewTracker(analyzer Analyzer, repo TokenRepository) *Tracker {
	return &Tracker{
		analyzer: analyzer,
		repo:     repo,
		now:      time.Now,
	}
}

// WithAlerts включает отправку оповещений. Канал не закрывается трекером.
func (t *Tracker) WithAlerts(ch chan<- entity.Alert) *Tracker {
	t.alerts = ch
	return t
}

func (t *Tracker) WithClock(now func() time.Time) *Tracker {
	t.now = now
	return t
}

// SafetyScore оценка 0-100 по уровню безопасности, числу холдеров и доле
// крупнейшего кошелька.
func SafetyScore(token entity.Token) int {
	var score int

	switch token.SafetyLevel {
	case value.SafetySafe:
		score = 90
	case value.SafetyWarning:
		score = 50
	case value.SafetyDanger:
		score = 20
	default:
		score = 30
	}

	switch {
	case token.HolderCount >= manyHolders:
		score = min(100, score+10)
	case token.HolderCount < fewHolders:
		score = max(0, score-20)
	}

	switch {
	case token.DevWalletPercent > heavyDevPct:
		score = max(0, score-30)
	case token.DevWalletPercent > noticeableDevPct:
		score = max(0, score-15)
	}

	return score
}

// Track анализирует токен и сохраняет снимок. seed несёт рыночные данные
// из списка, в котором токен был найден.
func (t *Tracker) Track(ctx context.Context, seed entity.Token) (*entity.TrackedToken, error) {
	analysis, err := t.analyzer.AnalyzeSafety(ctx, seed.Address)
	if err != nil {
		return nil, fmt.Errorf("tracker.Track: %w", err)
	}

	now := t.now().UTC()

	symbol := analysis.Symbol
	if symbol == entity.UnknownSymbol && seed.Symbol != "" {
		symbol = seed.Symbol
	}

	tracked := &entity.TrackedToken{
		Address:             seed.Address,
		Symbol:              symbol,
		Name:                analysis.Name,
		Decimals:            analysis.Decimals,
		TotalSupply:         analysis.TotalSupply,
		FirstSeenAt:         now,
		InitialHolders:      analysis.HolderCount,
		InitialTopHolderPct: analysis.DevWalletPercent,
		InitialLiquidityUSD: seed.LiquidityUSD,
		CurrentHolders:      analysis.HolderCount,
		CurrentTopHolderPct: analysis.DevWalletPercent,
		CurrentPriceUSD:     seed.PriceUSD,
		SafetyLevel:         analysis.SafetyLevel,
		SafetyScore:         SafetyScore(analysis),
		UpdatedAt:           now,
	}

	created, err := t.repo.Upsert(ctx, tracked)
	if err != nil {
		return nil, fmt.Errorf("tracker.Track: %w", err)
	}

	if !created {
		logger(ctx).Debug("tracked token updated",
			logx.FieldAddress, tracked.Address,
			"safety-score", tracked.SafetyScore,
		)

		return tracked, nil
	}

	err = t.repo.AddEvent(ctx, &entity.TokenEvent{
		TokenAddress: tracked.Address,
		Kind:         entity.TokenEventDeploy,
		Payload: map[string]any{
			"symbol":         tracked.Symbol,
			"holder_count":   tracked.InitialHolders,
			"top_holder_pct": tracked.InitialTopHolderPct,
			"safety_score":   tracked.SafetyScore,
		},
		CreatedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("tracker.Track: %w", err)
	}

	logger(ctx).Info("new token tracked",
		logx.FieldAddress, tracked.Address,
		"symbol", tracked.Symbol,
		"safety-score", tracked.SafetyScore,
	)

	if tracked.SafetyLevel == value.SafetyDanger {
		t.emit(ctx, entity.Alert{
			Kind:     entity.AlertDangerousLaunch,
			Token:    *tracked,
			Reason:   "dangerous launch",
			Warnings: analysis.SafetyWarnings,
		})
	}

	return tracked, nil
}

// CheckRug повторно анализирует отслеживаемый токен. Уже помеченные токены
// и токены без свежих данных не проверяются.
func (t *Tracker) CheckRug(ctx context.Context, address string) (RugVerdict, error) {
	tracked, err := t.repo.Get(ctx, address)
	if err != nil {
		return RugVerdict{}, fmt.Errorf("tracker.CheckRug: %w", err)
	}

	if tracked.Rugged {
		return RugVerdict{Rugged: true}, nil
	}

	analysis, err := t.analyzer.AnalyzeSafety(ctx, address)
	if err != nil {
		return RugVerdict{}, fmt.Errorf("tracker.CheckRug: %w", err)
	}

	if analysis.SafetyLevel == value.SafetyUnknown {
		return RugVerdict{}, nil
	}

	verdict := DetectRug(*tracked, analysis)
	if !verdict.Rugged {
		return verdict, nil
	}

	now := t.now().UTC()

	if err := t.repo.MarkRugged(ctx, address, now); err != nil {
		return RugVerdict{}, fmt.Errorf("tracker.CheckRug: %w", err)
	}

	err = t.repo.AddEvent(ctx, &entity.TokenEvent{
		TokenAddress: address,
		Kind:         entity.TokenEventRug,
		Payload:      verdict.Payload,
		CreatedAt:    now,
	})
	if err != nil {
		return RugVerdict{}, fmt.Errorf("tracker.CheckRug: %w", err)
	}

	tracked.Rugged = true
	tracked.RuggedAt = &now

	logger(ctx).Warn("rug detected",
		logx.FieldAddress, address,
		"symbol", tracked.Symbol,
		"method", verdict.Method,
	)

	t.emit(ctx, entity.Alert{
		Kind:   entity.AlertRug,
		Token:  *tracked,
		Reason: verdict.Method,
	})

	return verdict, nil
}

// DetectRug сравнивает первый снимок токена со свежим анализом.
func DetectRug(tracked entity.TrackedToken, current entity.Token) RugVerdict {
	if current.DevWalletPercent < devExitCurrentPct && tracked.InitialTopHolderPct > devExitInitialPct {
		return RugVerdict{
			Rugged: true,
			Method: RugMethodDevExit,
			Payload: map[string]any{
				"initial_dev_pct":  tracked.InitialTopHolderPct,
				"current_dev_pct":  current.DevWalletPercent,
				"detection_method": RugMethodDevExit,
			},
		}
	}

	if current.HolderCount > 0 && tracked.InitialHolders > 0 {
		drop := 1 - float64(current.HolderCount)/float64(tracked.InitialHolders)
		if drop > holderExodusRatio {
			return RugVerdict{
				Rugged: true,
				Method: RugMethodHolderExodus,
				Payload: map[string]any{
					"initial_holders":  tracked.InitialHolders,
					"current_holders":  current.HolderCount,
					"detection_method": RugMethodHolderExodus,
				},
			}
		}
	}

	return RugVerdict{}
}

// Recent последние отслеживаемые токены, включая помеченные как rug.
func (t *Tracker) Recent(ctx context.Context, limit int) ([]entity.TrackedToken, error) {
	tokens, err := t.repo.ListRecent(ctx, limit, true)
	if err != nil {
		return nil, fmt.Errorf("tracker.Recent: %w", err)
	}

	return tokens, nil
}

// RugCandidates токены, которые ещё имеет смысл проверять на rug pull.
func (t *Tracker) RugCandidates(ctx context.Context, limit int) ([]entity.TrackedToken, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}

	tokens, err := t.repo.ListRecent(ctx, limit, false)
	if err != nil {
		return nil, fmt.Errorf("tracker.RugCandidates: %w", err)
	}

	return tokens, nil
}

// Events история токена. Для неизвестного адреса TokenNotFound.
func (t *Tracker) Events(ctx context.Context, address string, limit int) ([]entity.TokenEvent, error) {
	if _, err := t.repo.Get(ctx, address); err != nil {
		return nil, fmt.Errorf("tracker.Events: %w", err)
	}

	events, err := t.repo.ListEvents(ctx, address, limit)
	if err != nil {
		return nil, fmt.Errorf("tracker.Events: %w", err)
	}

	return events, nil
}

func (t *Tracker) emit(ctx context.Context, alert entity.Alert) {
	if t.alerts == nil {
		return
	}

	select {
	case t.alerts <- alert:
	default:
		logger(ctx).Warn("alert dropped: queue is full",
			logx.FieldAddress, alert.Token.Address,
			"kind", alert.Kind,
		)
	}
}

// IsNotTracked сообщает, что адрес ещё не отслеживается.
func IsNotTracked(err error) bool {
	return domain.HasCode(err, errcodes.TokenNotFound)
}
