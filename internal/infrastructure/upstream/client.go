package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"memescan/pkg/contextx"
	"memescan/pkg/httpx"
	"memescan/pkg/logx"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

const (
	defaultTimeout         = 15 * time.Second
	defaultBreakerFailures = 5
	defaultBreakerTimeout  = 30 * time.Second
	maxBodyBytes           = 16 << 20
)

var (
	ErrInvalidConfig = errors.New("invalid upstream config")
	ErrCircuitOpen   = errors.New("circuit open")
	ErrDecode        = errors.New("decode response")
)

// StatusError non-2xx ответ апстрима.
type StatusError struct {
	Source     string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d", e.Source, e.StatusCode)
}

func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}

type Config struct {
	Name            string
	BaseURL         string
	Timeout         time.Duration
	MinInterval     time.Duration // 0 отключает ограничение
	BearerToken     string
	BreakerFailures uint32
	BreakerTimeout  time.Duration
	LogFieldMaxLen  int
}

type Option func(*Client)

func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// Client JSON-клиент одного апстрима: свой пул соединений, свой интервал
// между вызовами и свой circuit breaker.
type Client struct {
	name       string
	baseURL    *url.URL
	transport  *http.Transport
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	metrics    *Metrics
	closeOnce  sync.Once
}

func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("%w: empty name", ErrInvalidConfig)
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil || (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, fmt.Errorf("%w: %s base url %q", ErrInvalidConfig, cfg.Name, cfg.BaseURL)
	}

	if cfg.MinInterval < 0 {
		return nil, fmt.Errorf("%w: %s negative min interval", ErrInvalidConfig, cfg.Name)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = defaultBreakerFailures
	}

	if cfg.BreakerTimeout <= 0 {
		cfg.BreakerTimeout = defaultBreakerTimeout
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: time.Second,
	}

	var rt http.RoundTripper = httpx.NewLoggingRoundTripper(
		transport,
		httpx.WithSensitiveDataMasker(logx.NewSensitiveDataMasker()),
		httpx.WithLogFieldMaxLen(cfg.LogFieldMaxLen),
	)

	if cfg.BearerToken != "" {
		rt = httpx.NewAuthBearerRoundTripper(rt, httpx.StaticToken(cfg.BearerToken))
	}

	c := &Client{
		name:       cfg.Name,
		baseURL:    base,
		transport:  transport,
		httpClient: &http.Client{Transport: rt, Timeout: cfg.Timeout},
	}

	if cfg.MinInterval > 0 {
		c.limiter = rate.NewLimiter(rate.Every(cfg.MinInterval), 1)
	}

	failures := cfg.BreakerFailures

	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger(context.Background()).Warn("upstream circuit state changed",
				"source", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

func (c *Client) Name() string {
	return c.name
}

type rawResponse struct {
	status int
	body   []byte
	err    error // ошибки контекста не должны размыкать breaker
}

// Get выполняет GET base+path и декодирует JSON-ответ в dest.
func (c *Client) Get(ctx context.Context, path string, query url.Values, dest any) error {
	if err := c.wait(ctx); err != nil {
		return err
	}

	start := time.Now()

	out, err := c.breaker.Execute(func() (any, error) {
		return c.do(ctx, path, query)
	})

	c.metrics.observeDuration(c.name, time.Since(start))

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			c.metrics.countRequest(c.name, outcomeCircuitOpen)
			return fmt.Errorf("%s: %w", c.name, ErrCircuitOpen)
		}

		c.metrics.countRequest(c.name, outcomeFor(err))

		return err
	}

	resp := out.(rawResponse) //nolint:forcetypeassert
	if resp.err != nil {
		c.metrics.countRequest(c.name, outcomeCanceled)
		return resp.err
	}

	if resp.status < http.StatusOK || resp.status >= http.StatusMultipleChoices {
		c.metrics.countRequest(c.name, outcomeStatus)
		return &StatusError{Source: c.name, StatusCode: resp.status}
	}

	if err := json.Unmarshal(resp.body, dest); err != nil {
		c.metrics.countRequest(c.name, outcomeDecode)
		return fmt.Errorf("%s: %w: %w", c.name, ErrDecode, err)
	}

	c.metrics.countRequest(c.name, outcomeOK)

	return nil
}

func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}

	start := time.Now()

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s: limiter.Wait: %w", c.name, err)
	}

	c.metrics.observeThrottle(c.name, time.Since(start))

	return nil
}

func (c *Client) do(ctx context.Context, path string, query url.Values) (rawResponse, error) {
	u := c.baseURL.JoinPath(strings.TrimPrefix(path, "/"))
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return rawResponse{}, fmt.Errorf("http.NewRequestWithContext: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return rawResponse{err: ctx.Err()}, nil
		}

		return rawResponse{}, fmt.Errorf("%s: httpClient.Do: %w", c.name, err)
	}

	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		if ctx.Err() != nil {
			return rawResponse{err: ctx.Err()}, nil
		}

		return rawResponse{}, fmt.Errorf("%s: io.ReadAll: %w", c.name, err)
	}

	// 5xx и 429 считаются отказом апстрима, прочие коды разбираются выше.
	if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
		return rawResponse{}, &StatusError{Source: c.name, StatusCode: resp.StatusCode}
	}

	return rawResponse{status: resp.StatusCode, body: body}, nil
}

// Close освобождает простаивающие соединения. Повторный вызов безопасен.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.transport.CloseIdleConnections()
	})
}
