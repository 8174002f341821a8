package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	jsoniter "github.com/json-iterator/go"

	"memescan/internal/domain/entity"
	"memescan/internal/domain/service/tracker"
	"memescan/pkg/logx"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

const (
	TypeTrackToken = "token:track"
	TypeRugCheck   = "token:rugcheck"

	QueueTracking = "tracking"

	taskMaxRetry = 3
	taskTimeout  = 2 * time.Minute
)

// TrackPayload рыночные данные токена на момент обнаружения.
type TrackPayload struct {
	Address      string  `json:"address"`
	Symbol       string  `json:"symbol,omitempty"`
	PriceUSD     float64 `json:"price_usd,omitempty"`
	LiquidityUSD float64 `json:"liquidity_usd,omitempty"`
}

type RugCheckPayload struct {
	Address string `json:"address"`
}

func NewTrackTask(token entity.Token) (*asynq.Task, error) {
	payload, err := json.Marshal(TrackPayload{
		Address:      token.Address,
		Symbol:       token.Symbol,
		PriceUSD:     token.PriceUSD,
		LiquidityUSD: token.LiquidityUSD,
	})
	if err != nil {
		return nil, fmt.Errorf("json.Marshal: %w", err)
	}

	return asynq.NewTask(TypeTrackToken, payload,
		asynq.Queue(QueueTracking),
		asynq.MaxRetry(taskMaxRetry),
		asynq.Timeout(taskTimeout),
	), nil
}

func NewRugCheckTask(address string) (*asynq.Task, error) {
	payload, err := json.Marshal(RugCheckPayload{Address: address})
	if err != nil {
		return nil, fmt.Errorf("json.Marshal: %w", err)
	}

	return asynq.NewTask(TypeRugCheck, payload,
		asynq.Queue(QueueTracking),
		asynq.MaxRetry(taskMaxRetry),
		asynq.Timeout(taskTimeout),
	), nil
}

type Tracker interface {
	Track(ctx context.Context, seed entity.Token) (*entity.TrackedToken, error)
	CheckRug(ctx context.Context, address string) (tracker.RugVerdict, error)
}

// TaskHandlers обработчики задач краулера для asynq.
type TaskHandlers struct {
	tracker Tracker
}

func NewTaskHandlers(t Tracker) *TaskHandlers {
	return &TaskHandlers{tracker: t}
}

func (h *TaskHandlers) HandleTrack(ctx context.Context, task *asynq.Task) error {
	var p TrackPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil || p.Address == "" {
		return fmt.Errorf("bad %s payload: %w", TypeTrackToken, asynq.SkipRetry)
	}

	tracked, err := h.tracker.Track(ctx, entity.Token{
		Address:      p.Address,
		Symbol:       p.Symbol,
		PriceUSD:     p.PriceUSD,
		LiquidityUSD: p.LiquidityUSD,
	})
	if err != nil {
		return fmt.Errorf("tracker.Track: %w", err)
	}

	logger(ctx).Debug("token tracked",
		logx.FieldAddress, tracked.Address,
		"safety-level", tracked.SafetyLevel,
		"safety-score", tracked.SafetyScore,
	)

	return nil
}

func (h *TaskHandlers) HandleRugCheck(ctx context.Context, task *asynq.Task) error {
	var p RugCheckPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil || p.Address == "" {
		return fmt.Errorf("bad %s payload: %w", TypeRugCheck, asynq.SkipRetry)
	}

	if _, err := h.tracker.CheckRug(ctx, p.Address); err != nil {
		if tracker.IsNotTracked(err) {
			return fmt.Errorf("%s: %w", p.Address, errors.Join(err, asynq.SkipRetry))
		}

		return fmt.Errorf("tracker.CheckRug: %w", err)
	}

	return nil
}
