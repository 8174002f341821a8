package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"memescan/internal/domain/entity"
	"memescan/internal/worker"
)

type fakeMarket struct {
	launches []entity.Token
	trending []entity.Token
	err      error
}

func (f *fakeMarket) GetNewLaunches(_ context.Context, limit int) ([]entity.Token, error) {
	if limit != worker.NewLaunchesLimit {
		return nil, errors.New("unexpected limit")
	}

	return f.launches, f.err
}

func (f *fakeMarket) GetTrending(_ context.Context, limit int) ([]entity.Token, error) {
	if limit != worker.TrendingLimit {
		return nil, errors.New("unexpected limit")
	}

	return f.trending, f.err
}

type fakeCandidates struct {
	tokens []entity.TrackedToken
}

func (f *fakeCandidates) RugCandidates(context.Context, int) ([]entity.TrackedToken, error) {
	return f.tokens, nil
}

type memSeen struct {
	mu   sync.Mutex
	seen map[string]bool
	err  error
}

func (m *memSeen) MarkSeen(_ context.Context, address string, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return false, m.err
	}

	if m.seen[address] {
		return false, nil
	}

	m.seen[address] = true

	return true, nil
}

func (m *memSeen) Forget(_ context.Context, address string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.seen, address)

	return nil
}

type recordingQueue struct {
	mu    sync.Mutex
	tasks []*asynq.Task
	dup   map[string]bool
	err   error
}

func (q *recordingQueue) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.err != nil {
		return nil, q.err
	}

	if q.dup[string(task.Payload())] {
		return nil, asynq.ErrDuplicateTask
	}

	q.tasks = append(q.tasks, task)

	return &asynq.TaskInfo{Type: task.Type()}, nil
}

func (q *recordingQueue) types() []string {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]string, 0, len(q.tasks))
	for _, t := range q.tasks {
		out = append(out, t.Type())
	}

	return out
}

func TestCrawlerCycle(t *testing.T) {
	rq := require.New(t)

	market := &fakeMarket{
		launches: []entity.Token{{Address: "EQa", Symbol: "A"}, {Address: ""}, {Address: "EQb"}},
		trending: []entity.Token{{Address: "EQa"}, {Address: "EQc"}},
	}
	candidates := &fakeCandidates{tokens: []entity.TrackedToken{{Address: "EQold"}}}
	seen := &memSeen{seen: map[string]bool{}}
	queue := &recordingQueue{}

	crawler := worker.NewCrawler(market, candidates, seen, queue, worker.CrawlerConfig{
		Interval:      time.Minute,
		RugCheckEvery: 2,
	}).WithWatchlist(worker.NewWatchlist("EQwatch"))

	stats, err := crawler.Cycle(context.Background())
	rq.NoError(err)
	rq.Equal(4, stats.Discovered)
	rq.Equal(1, stats.Skipped)
	rq.Equal(4, stats.Enqueued)
	rq.Zero(stats.RugChecks)

	stats, err = crawler.Cycle(context.Background())
	rq.NoError(err)
	rq.Equal(4, stats.Skipped)
	rq.Equal(1, stats.Enqueued)
	rq.Equal(1, stats.RugChecks)

	rq.Equal([]string{
		worker.TypeTrackToken, worker.TypeTrackToken, worker.TypeTrackToken, worker.TypeTrackToken,
		worker.TypeTrackToken, worker.TypeRugCheck,
	}, queue.types())

	var first worker.TrackPayload
	rq.NoError(jsonUnmarshal(queue.tasks[0].Payload(), &first))
	rq.Equal("EQa", first.Address)
	rq.Equal("A", first.Symbol)
}

func TestCrawlerCycleSeenMarkerDown(t *testing.T) {
	rq := require.New(t)

	market := &fakeMarket{launches: []entity.Token{{Address: "EQa"}}}
	queue := &recordingQueue{}

	crawler := worker.NewCrawler(market, &fakeCandidates{}, &memSeen{err: errors.New("redis down")}, queue, worker.CrawlerConfig{})

	stats, err := crawler.Cycle(context.Background())
	rq.NoError(err)
	rq.Equal(1, stats.Skipped)
	rq.Empty(queue.types())
}

func TestCrawlerCycleEnqueueFailureReleasesMarker(t *testing.T) {
	rq := require.New(t)

	market := &fakeMarket{launches: []entity.Token{{Address: "EQa"}}}
	seen := &memSeen{seen: map[string]bool{}}
	queue := &recordingQueue{err: errors.New("redis: connection reset")}

	crawler := worker.NewCrawler(market, &fakeCandidates{}, seen, queue, worker.CrawlerConfig{})

	stats, err := crawler.Cycle(context.Background())
	rq.NoError(err)
	rq.Zero(stats.Enqueued)
	rq.False(seen.seen["EQa"])

	queue.err = nil

	stats, err = crawler.Cycle(context.Background())
	rq.NoError(err)
	rq.Equal(1, stats.Enqueued)
	rq.Zero(stats.Skipped)
	rq.Equal([]string{worker.TypeTrackToken}, queue.types())
	rq.True(seen.seen["EQa"])
}

func TestCrawlerCycleDuplicateWatchlistTask(t *testing.T) {
	rq := require.New(t)

	task, err := worker.NewTrackTask(entity.Token{Address: "EQwatch"})
	rq.NoError(err)

	queue := &recordingQueue{dup: map[string]bool{string(task.Payload()): true}}
	crawler := worker.NewCrawler(&fakeMarket{}, &fakeCandidates{}, &memSeen{seen: map[string]bool{}}, queue, worker.CrawlerConfig{}).
		WithWatchlist(worker.NewWatchlist("EQwatch"))

	stats, err := crawler.Cycle(context.Background())
	rq.NoError(err)
	rq.Zero(stats.Enqueued)
}

func TestCrawlerStartStop(t *testing.T) {
	rq := require.New(t)

	crawler := worker.NewCrawler(&fakeMarket{}, &fakeCandidates{}, &memSeen{seen: map[string]bool{}}, &recordingQueue{}, worker.CrawlerConfig{
		Interval: 10 * time.Millisecond,
	})

	rq.NoError(crawler.Start(context.Background()))
	rq.True(crawler.IsRunning())
	rq.Error(crawler.Start(context.Background()))

	crawler.Stop()
	rq.False(crawler.IsRunning())

	crawler.Stop()
}

func TestCrawlerRunStopsOnCancel(t *testing.T) {
	rq := require.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	market := &fakeMarket{err: context.Canceled}

	crawler := worker.NewCrawler(market, &fakeCandidates{}, &memSeen{seen: map[string]bool{}}, &recordingQueue{}, worker.CrawlerConfig{})

	cancel()

	rq.ErrorIs(crawler.Run(ctx), context.Canceled)
}
