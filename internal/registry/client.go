package registry

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"

	"autonaver/internal/config"
	apperrors "autonaver/internal/errors"
	"autonaver/internal/infrastructure"
)

const (
	tracerName = "autonaver/registry"

	// maxBodyBytes caps the export size read from the network.
	maxBodyBytes = 8 << 20
)

// Client fetches the CSV export of the registry sheet.
type Client struct {
	url        string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client. Its timeout is used as is.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient returns a Client for cfg.
func NewClient(cfg config.RegistryConfig, logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = config.RegistryTimeout
	}
	c := &Client{
		url:        cfg.ExportURL(),
		httpClient: &http.Client{Timeout: timeout, Transport: otelhttp.NewTransport(http.DefaultTransport)},
		limiter:    newLimiter(cfg),
		logger:     infrastructure.WithComponent(logger, "registry_client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// newLimiter paces fetches at cfg.RatePerMinute. Zero disables pacing.
func newLimiter(cfg config.RegistryConfig) *rate.Limiter {
	if cfg.RatePerMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(cfg.RatePerMinute/60), burst)
}

// Fetch performs one GET of the export and parses it. Any failure yields an
// empty snapshot.
func (c *Client) Fetch(ctx context.Context) Snapshot {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "registry.fetch")
	defer span.End()
	span.SetAttributes(attribute.String("registry.source", "csv"))

	start := time.Now()
	snapshot, err := c.fetch(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.WarnContext(ctx, "Registry fetch failed",
			slog.String("action", "fetch"),
			slog.String("result", "unreachable"),
			slog.Duration("duration", time.Since(start)),
			slog.String("error", err.Error()))
		return Snapshot{}
	}

	span.SetAttributes(attribute.Int("registry.rows", len(snapshot)))
	c.logger.InfoContext(ctx, "Registry fetched",
		slog.String("action", "fetch"),
		slog.String("result", "success"),
		slog.Int("rows", len(snapshot)),
		slog.Duration("duration", time.Since(start)))
	return snapshot
}

func (c *Client) fetch(ctx context.Context) (Snapshot, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrRegistryUnreachable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", apperrors.ErrRegistryUnreachable, err)
	}
	req.Header.Set("Accept", "text/csv")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrRegistryUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, fmt.Errorf("%w: unexpected status %d", apperrors.ErrRegistryUnreachable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", apperrors.ErrRegistryUnreachable, err)
	}
	return Parse(bytes.NewReader(body)), nil
}
