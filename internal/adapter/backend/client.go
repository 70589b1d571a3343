// Package backend talks to the external events backend and turns its
// payloads into domain events.
package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ledgersplit/internal/core/domain"
	"ledgersplit/internal/core/ledger"
	"ledgersplit/internal/core/ports"
	"ledgersplit/pkg/metrics"

	"github.com/rs/zerolog"
)

// maxPayloadBytes caps how much of a backend response is read.
const maxPayloadBytes = 8 << 20

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client implements ports.EventSource over the backend REST API.
type Client struct {
	baseURL string
	http    HTTPClient
	metrics *metrics.Metrics
	log     zerolog.Logger
}

// NewClient creates a backend client rooted at baseURL.
func NewClient(baseURL string, httpClient HTTPClient, m *metrics.Metrics, log zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		metrics: m,
		log:     log,
	}
}

// GetEvent fetches and parses one event.
func (c *Client) GetEvent(ctx context.Context, caller ports.Caller, eventID string) (*domain.Event, error) {
	body, err := c.FetchEventPayload(ctx, caller, eventID)
	if err != nil {
		return nil, err
	}
	return decodeEvent(body)
}

// decodeEvent parses a backend payload. Payloads that are not JSON events
// at all count as a backend failure; ledger validation errors pass through.
func decodeEvent(body []byte) (*domain.Event, error) {
	event, err := ParseEvent(body)
	if err != nil && !errors.Is(err, ledger.ErrInvalidInput) {
		return nil, fmt.Errorf("%w: %w", ports.ErrBackendUnavailable, err)
	}
	return event, err
}

// FetchEventPayload returns the raw event JSON.
func (c *Client) FetchEventPayload(ctx context.Context, caller ports.Caller, eventID string) ([]byte, error) {
	return c.get(ctx, "get_event", "/events/"+url.PathEscape(eventID), caller.Token)
}

// ListEvents fetches the caller's events.
func (c *Client) ListEvents(ctx context.Context, caller ports.Caller) ([]domain.Event, error) {
	body, err := c.get(ctx, "list_events", "/events", caller.Token)
	if err != nil {
		return nil, err
	}
	events, err := ParseEvents(body)
	if err != nil && !errors.Is(err, ledger.ErrInvalidInput) {
		return nil, fmt.Errorf("%w: %w", ports.ErrBackendUnavailable, err)
	}
	return events, err
}

// Ping implements ports.HealthChecker. Any response below 500 means the
// backend is reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("building health request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ports.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<10))

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: health returned %d", ports.ErrBackendUnavailable, resp.StatusCode)
	}
	return nil
}

// Name returns the dependency name.
func (c *Client) Name() string {
	return "backend"
}

func (c *Client) get(ctx context.Context, op, path, token string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("building %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.Backend(op, 0, time.Since(start))
		c.log.Warn().Err(err).Str("op", op).Str("path", path).Msg("backend: request failed")
		return nil, fmt.Errorf("%w: %w", ports.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()
	c.metrics.Backend(op, resp.StatusCode, time.Since(start))

	switch {
	case resp.StatusCode == http.StatusNotFound, resp.StatusCode == http.StatusForbidden:
		return nil, ports.ErrEventNotFound
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, ports.ErrBackendUnauthorized
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		c.log.Warn().Str("op", op).Str("path", path).Int("status", resp.StatusCode).Msg("backend: unexpected status")
		return nil, fmt.Errorf("%w: %s returned %d", ports.ErrBackendUnavailable, path, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", ports.ErrBackendUnavailable, path, err)
	}
	if len(body) > maxPayloadBytes {
		return nil, fmt.Errorf("%w: %s response exceeds %d bytes", ports.ErrBackendUnavailable, path, maxPayloadBytes)
	}
	return body, nil
}
