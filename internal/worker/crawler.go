package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hibiken/asynq"

	"memescan/internal/domain/entity"
	"memescan/pkg/logx"
)

const (
	NewLaunchesLimit = 20
	TrendingLimit    = 10
	RugCheckLimit    = 500
)

type MarketSource interface {
	GetNewLaunches(ctx context.Context, limit int) ([]entity.Token, error)
	GetTrending(ctx context.Context, limit int) ([]entity.Token, error)
}

type RugCandidates interface {
	RugCandidates(ctx context.Context, limit int) ([]entity.TrackedToken, error)
}

// SeenMarker помечает адрес как недавно проанализированный. MarkSeen
// возвращает false, если метка уже стоит.
type SeenMarker interface {
	MarkSeen(ctx context.Context, address string, ttl time.Duration) (bool, error)
	Forget(ctx context.Context, address string) error
}

// Enqueuer реализуется *asynq.Client.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type CrawlerConfig struct {
	Interval       time.Duration
	ReanalyzeAfter time.Duration
	RugCheckEvery  int
}

// CycleStats итог одного цикла краулера.
type CycleStats struct {
	Discovered int
	Enqueued   int
	Skipped    int
	RugChecks  int
}

// Crawler периодически собирает новые и трендовые токены и ставит их
// анализ в очередь.
type Crawler struct {
	market     MarketSource
	candidates RugCandidates
	seen       SeenMarker
	queue      Enqueuer
	watchlist  *Watchlist
	cfg        CrawlerConfig
	cycle      int

	mu         sync.Mutex
	cancelFunc context.CancelFunc
	isRunning  bool
	wg         sync.WaitGroup
}

func NewCrawler(
	market MarketSource,
	candidates RugCandidates,
	seen SeenMarker,
	queue Enqueuer,
	cfg CrawlerConfig,
) *Crawler {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}

	if cfg.ReanalyzeAfter <= 0 {
		cfg.ReanalyzeAfter = time.Hour
	}

	if cfg.RugCheckEvery <= 0 {
		cfg.RugCheckEvery = 10
	}

	return &Crawler{
		market:     market,
		candidates: candidates,
		seen:       seen,
		queue:      queue,
		watchlist:  NewWatchlist(),
		cfg:        cfg,
	}
}

func (c *Crawler) WithWatchlist(w *Watchlist) *Crawler {
	c.watchlist = w
	return c
}

func (c *Crawler) Watchlist() *Watchlist {
	return c.watchlist
}

func (c *Crawler) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isRunning {
		return errors.New("crawler is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	c.cancelFunc = cancel
	c.isRunning = true

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer func() {
			c.mu.Lock()
			c.isRunning = false
			c.cancelFunc = nil
			c.mu.Unlock()
		}()

		if err := c.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger(ctx).Error("crawler stopped", logx.Error(err))
		}
	}()

	return nil
}

func (c *Crawler) Stop() {
	c.mu.Lock()

	if !c.isRunning {
		c.mu.Unlock()
		return
	}

	if c.cancelFunc != nil {
		c.cancelFunc()
	}
	c.mu.Unlock()

	c.wg.Wait()
}

func (c *Crawler) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isRunning
}

// Run первый цикл сразу, дальше по тикеру до отмены ctx.
func (c *Crawler) Run(ctx context.Context) error {
	logger(ctx).Info("crawler started", "interval", c.cfg.Interval.String())

	ticker := time.NewTicker(c.cfg.Interval)
	defer ticker.Stop()

	for {
		stats, err := c.Cycle(ctx)
		if err != nil {
			if ctx.Err() != nil {
				logger(ctx).Info("crawler stopped")
				return ctx.Err()
			}

			logger(ctx).Error("crawl cycle failed", logx.Error(err))
		} else {
			logger(ctx).Info("crawl cycle completed",
				"discovered", stats.Discovered,
				"enqueued", stats.Enqueued,
				"skipped", stats.Skipped,
				"rug-checks", stats.RugChecks,
			)
		}

		select {
		case <-ctx.Done():
			logger(ctx).Info("crawler stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Cycle один проход: новые токены, трендовые, watchlist и, каждый
// RugCheckEvery-й цикл, проверка отслеживаемых токенов на rug pull.
func (c *Crawler) Cycle(ctx context.Context) (CycleStats, error) {
	var stats CycleStats

	c.cycle++

	launches, err := c.market.GetNewLaunches(ctx, NewLaunchesLimit)
	if err != nil {
		return stats, fmt.Errorf("market.GetNewLaunches: %w", err)
	}

	trending, err := c.market.GetTrending(ctx, TrendingLimit)
	if err != nil {
		return stats, fmt.Errorf("market.GetTrending: %w", err)
	}

	for _, token := range append(launches, trending...) {
		if token.Address == "" {
			continue
		}

		stats.Discovered++

		fresh, err := c.seen.MarkSeen(ctx, token.Address, c.cfg.ReanalyzeAfter)
		if err != nil {
			if ctx.Err() != nil {
				return stats, ctx.Err()
			}

			logger(ctx).Warn("seen marker unavailable", logx.FieldAddress, token.Address, logx.Error(err))
			stats.Skipped++

			continue
		}

		if !fresh {
			stats.Skipped++
			continue
		}

		enqueued, err := c.enqueueTrack(ctx, token)
		if err != nil {
			// задача не попала в очередь, метка не должна прятать токен до ReanalyzeAfter
			if err := c.seen.Forget(ctx, token.Address); err != nil {
				logger(ctx).Warn("forget seen marker", logx.FieldAddress, token.Address, logx.Error(err))
			}

			continue
		}

		if enqueued {
			stats.Enqueued++
		}
	}

	for _, address := range c.watchlist.List() {
		if enqueued, _ := c.enqueueTrack(ctx, entity.Token{Address: address}, asynq.Unique(c.cfg.Interval)); enqueued {
			stats.Enqueued++
		}
	}

	if c.cycle%c.cfg.RugCheckEvery == 0 {
		n, err := c.enqueueRugChecks(ctx)
		if err != nil {
			return stats, err
		}

		stats.RugChecks = n
	}

	return stats, ctx.Err()
}

func (c *Crawler) enqueueTrack(ctx context.Context, token entity.Token, opts ...asynq.Option) (bool, error) {
	task, err := NewTrackTask(token)
	if err != nil {
		logger(ctx).Error("build track task", logx.FieldAddress, token.Address, logx.Error(err))
		return false, err
	}

	return c.enqueue(ctx, task, token.Address, opts...)
}

func (c *Crawler) enqueueRugChecks(ctx context.Context) (int, error) {
	tokens, err := c.candidates.RugCandidates(ctx, RugCheckLimit)
	if err != nil {
		return 0, fmt.Errorf("tracker.RugCandidates: %w", err)
	}

	n := 0

	for _, t := range tokens {
		task, err := NewRugCheckTask(t.Address)
		if err != nil {
			logger(ctx).Error("build rug check task", logx.FieldAddress, t.Address, logx.Error(err))
			continue
		}

		if enqueued, _ := c.enqueue(ctx, task, t.Address, asynq.Unique(c.cfg.Interval*time.Duration(c.cfg.RugCheckEvery))); enqueued {
			n++
		}
	}

	return n, nil
}

// enqueue false без ошибки, если такая задача уже стоит в очереди.
func (c *Crawler) enqueue(ctx context.Context, task *asynq.Task, address string, opts ...asynq.Option) (bool, error) {
	if _, err := c.queue.EnqueueContext(ctx, task, opts...); err != nil {
		if errors.Is(err, asynq.ErrDuplicateTask) {
			return false, nil
		}

		logger(ctx).Error("enqueue task",
			logx.FieldTaskType, task.Type(),
			logx.FieldAddress, address,
			logx.Error(err),
		)

		return false, err
	}

	return true, nil
}
