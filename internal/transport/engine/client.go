// Package engine wraps the Elasticsearch client for search and bulk calls. It sends
// already-built request bodies and returns raw response bytes; decoding lives in pkg/engine
// and pkg/bulk.
package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"

	"github.com/kailas-cloud/querykit/internal/metrics"
	"github.com/kailas-cloud/querykit/pkg/bulk"
)

// ErrEngineUnavailable marks transport-level failures talking to the engine.
var ErrEngineUnavailable = errors.New("search engine unavailable")

const maxErrorBody = 4 << 10

// HTTPError is returned when the engine answers with a non-2xx status.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("engine returned %d: %s", e.Status, e.Body)
}

// Config holds the engine endpoint settings.
type Config struct {
	URL      string
	Username string
	Password string
	// Timeout bounds each call; zero means the caller's context decides.
	Timeout time.Duration
	Logger  *zap.Logger
	// Transport overrides the default round tripper, e.g. in tests.
	Transport http.RoundTripper
}

// Client executes search and bulk calls.
type Client struct {
	es      *elasticsearch.Client
	timeout time.Duration
	logger  *zap.Logger
}

// NewClient validates the base URL and builds a client.
func NewClient(cfg *Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("engine url is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.URL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse engine url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("engine url %q: scheme must be http or https", cfg.URL)
	}

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{base.String()},
		Username:  cfg.Username,
		Password:  cfg.Password,
		Transport: cfg.Transport,
	})
	if err != nil {
		return nil, fmt.Errorf("create engine client: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{es: es, timeout: cfg.Timeout, logger: logger}, nil
}

// Search runs body against index (a single name or a comma-joined list).
func (c *Client) Search(ctx context.Context, index string, body map[string]any) ([]byte, error) {
	if index == "" {
		return nil, errors.New("search: index is required")
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode search body: %w", err)
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	return c.read("search", func() (*esapi.Response, error) {
		return c.es.Search(
			c.es.Search.WithContext(ctx),
			c.es.Search.WithIndex(strings.Split(index, ",")...),
			c.es.Search.WithBody(bytes.NewReader(data)),
		)
	})
}

// Bulk sends req as one NDJSON bulk call.
func (c *Client) Bulk(ctx context.Context, req *bulk.Request) ([]byte, error) {
	data, err := req.Body()
	if err != nil {
		return nil, fmt.Errorf("encode bulk body: %w", err)
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	opts := []func(*esapi.BulkRequest){c.es.Bulk.WithContext(ctx)}
	if v, ok := req.Params()["refresh"]; ok {
		opts = append(opts, c.es.Bulk.WithRefresh(v))
	}
	return c.read("bulk", func() (*esapi.Response, error) {
		return c.es.Bulk(bytes.NewReader(data), opts...)
	})
}

// Ping checks that the engine answers on its root endpoint.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	res, err := c.es.Ping(c.es.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("ping: %v: %w", err, ErrEngineUnavailable)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return &HTTPError{Status: res.StatusCode}
	}
	return nil
}

// read performs one call, records its outcome and returns the 2xx body.
func (c *Client) read(op string, call func() (*esapi.Response, error)) ([]byte, error) {
	start := time.Now()
	res, err := call()
	metrics.EngineRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.EngineRequestsTotal.WithLabelValues(op, "error").Inc()
		c.logger.Warn("Engine request failed", zap.String("op", op), zap.Error(err))
		return nil, fmt.Errorf("%s: %v: %w", op, err, ErrEngineUnavailable)
	}
	defer func() { _ = res.Body.Close() }()

	status := strconv.Itoa(res.StatusCode)
	if res.IsError() {
		metrics.EngineRequestsTotal.WithLabelValues(op, status).Inc()
		msg, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		return nil, &HTTPError{Status: res.StatusCode, Body: string(msg)}
	}

	data, err := io.ReadAll(res.Body)
	if err != nil {
		metrics.EngineRequestsTotal.WithLabelValues(op, "error").Inc()
		return nil, fmt.Errorf("read %s response: %w", op, err)
	}
	metrics.EngineRequestsTotal.WithLabelValues(op, status).Inc()
	return data, nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}
