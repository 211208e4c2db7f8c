package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"lifecoo/internal/domain"
	"lifecoo/internal/logging"
	"lifecoo/internal/observability"
	"lifecoo/internal/ports"
)

const (
	EndpointInterpret = "/interpret"
	EndpointOptimize  = "/optimize"
	EndpointRecap     = "/tts-recap"
)

const maxErrorBody = 4 << 10

// Config controls the remote service client.
type Config struct {
	BaseURL             string
	FirstAttemptTimeout time.Duration
	RetryTimeout        time.Duration
	HTTPClient          *http.Client
	Logger              *slog.Logger
	Metrics             *observability.Metrics
}

// Client posts JSON to the Life COO backend. It implements ports.Backend.
type Client struct {
	baseURL      string
	firstTimeout time.Duration
	retryTimeout time.Duration
	http         *http.Client
	logger       *slog.Logger
	metrics      *observability.Metrics
}

func NewClient(cfg Config) *Client {
	if cfg.FirstAttemptTimeout <= 0 {
		cfg.FirstAttemptTimeout = 8 * time.Second
	}
	if cfg.RetryTimeout <= 0 {
		cfg.RetryTimeout = 15 * time.Second
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}
	return &Client{
		baseURL:      strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		firstTimeout: cfg.FirstAttemptTimeout,
		retryTimeout: cfg.RetryTimeout,
		http:         cfg.HTTPClient,
		logger:       logging.OrDiscard(cfg.Logger),
		metrics:      cfg.Metrics,
	}
}

// NetworkError is a transport failure, including an attempt timeout.
type NetworkError struct {
	Endpoint string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", domain.ErrNetwork, e.Endpoint, e.Err)
}

func (e *NetworkError) Unwrap() []error { return []error{domain.ErrNetwork, e.Err} }

// StatusError is a non-2xx HTTP response.
type StatusError struct {
	Endpoint string
	Status   int
	Body     string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: status %d", domain.ErrServer, e.Endpoint, e.Status)
	}
	return fmt.Sprintf("%s %s: status %d: %s", domain.ErrServer, e.Endpoint, e.Status, e.Body)
}

func (e *StatusError) Unwrap() error { return domain.ErrServer }

// IsRetryable reports whether a failed attempt qualifies for the single retry:
// transport errors and 5xx responses do, client errors do not.
func IsRetryable(err error) bool {
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return true
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Status >= 500 && statusErr.Status <= 599
	}
	return false
}

type response struct {
	body        []byte
	contentType string
}

// Interpret turns free text into structured trip fields.
func (c *Client) Interpret(ctx context.Context, text string, onRetry ports.RetryFunc) (domain.InterpretResult, error) {
	res, err := c.call(ctx, EndpointInterpret, map[string]string{"text": text}, true, onRetry)
	if err != nil {
		return domain.InterpretResult{}, err
	}

	var wire interpretWire
	if err := json.Unmarshal(res.body, &wire); err != nil {
		return domain.InterpretResult{}, fmt.Errorf("%w: decode %s response: %v", domain.ErrServer, EndpointInterpret, err)
	}
	return wire.result(), nil
}

// Optimize requests a routing plan for the trip.
func (c *Client) Optimize(ctx context.Context, req domain.TripRequest, onRetry ports.RetryFunc) (domain.OptimizeResult, error) {
	res, err := c.call(ctx, EndpointOptimize, req, true, onRetry)
	if err != nil {
		return domain.OptimizeResult{}, err
	}

	var result domain.OptimizeResult
	if err := json.Unmarshal(res.body, &result); err != nil {
		return domain.OptimizeResult{}, fmt.Errorf("%w: decode %s response: %v", domain.ErrServer, EndpointOptimize, err)
	}
	return result, nil
}

// RecapAudio synthesizes a spoken recap. It makes a single attempt; the recap
// controller owns the masked retry for this endpoint.
func (c *Client) RecapAudio(ctx context.Context, result domain.OptimizeResult) (domain.AudioClip, error) {
	res, err := c.call(ctx, EndpointRecap, result, false, nil)
	if err != nil {
		return domain.AudioClip{}, err
	}
	if len(res.body) == 0 {
		return domain.AudioClip{}, fmt.Errorf("%w: %s returned no audio", domain.ErrServer, EndpointRecap)
	}
	contentType := res.contentType
	if contentType == "" {
		contentType = "audio/mpeg"
	}
	return domain.AudioClip{Data: res.body, ContentType: contentType}, nil
}

func (c *Client) call(ctx context.Context, endpoint string, payload any, retry bool, onRetry ports.RetryFunc) (response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return response{}, fmt.Errorf("marshal %s request: %w", endpoint, err)
	}

	res, err := c.attempt(ctx, endpoint, body, c.firstTimeout)
	if err == nil || !retry || !IsRetryable(err) || ctx.Err() != nil {
		return res, err
	}

	c.logger.Warn("backend call failed, retrying", "endpoint", endpoint, "error", err)
	c.metrics.ObserveRetry(endpoint)
	if onRetry != nil {
		onRetry(endpoint, err)
	}
	return c.attempt(ctx, endpoint, body, c.retryTimeout)
}

func (c *Client) attempt(ctx context.Context, endpoint string, body []byte, timeout time.Duration) (response, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return response{}, fmt.Errorf("create %s request: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	res, err := c.http.Do(req)
	if err != nil {
		c.metrics.ObserveRequest(endpoint, "network_error")
		return response{}, &NetworkError{Endpoint: endpoint, Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		c.metrics.ObserveRequest(endpoint, "status_error")
		return response{}, &StatusError{Endpoint: endpoint, Status: res.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	payload, err := io.ReadAll(res.Body)
	if err != nil {
		c.metrics.ObserveRequest(endpoint, "network_error")
		return response{}, &NetworkError{Endpoint: endpoint, Err: fmt.Errorf("read response: %w", err)}
	}

	c.metrics.ObserveRequest(endpoint, "ok")
	return response{body: payload, contentType: res.Header.Get("Content-Type")}, nil
}
