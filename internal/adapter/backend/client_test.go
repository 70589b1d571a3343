package backend

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ledgersplit/internal/core/ledger"
	"ledgersplit/internal/core/ports"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockHTTPClient implements HTTPClient for testing.
type mockHTTPClient struct {
	doFunc func(req *http.Request) (*http.Response, error)
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return m.doFunc(req)
}

func newTestLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

var caller = ports.Caller{UserID: "u1", Token: "tok-123"}

func newTestBackend(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", srv.Client(), nil, newTestLogger())
}

func TestClient_GetEvent(t *testing.T) {
	client := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/events/42", r.URL.Path)
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, eventJSON)
	})

	event, err := client.GetEvent(context.Background(), caller, "42")
	require.NoError(t, err)
	assert.Equal(t, "42", event.ID)
	assert.Len(t, event.Participants, 3)
	assert.Len(t, event.Splits, 2)
}

func TestClient_GetEvent_EscapesID(t *testing.T) {
	client := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/events/a%2Fb", r.URL.EscapedPath())
		_, _ = io.WriteString(w, `{"event_id": "a/b"}`)
	})

	event, err := client.GetEvent(context.Background(), caller, "a/b")
	require.NoError(t, err)
	assert.Equal(t, "a/b", event.ID)
}

func TestClient_GetEvent_StatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"not found", http.StatusNotFound, `{}`, ports.ErrEventNotFound},
		{"forbidden hides existence", http.StatusForbidden, `{}`, ports.ErrEventNotFound},
		{"unauthorized", http.StatusUnauthorized, `{}`, ports.ErrBackendUnauthorized},
		{"server error", http.StatusInternalServerError, `oops`, ports.ErrBackendUnavailable},
		{"malformed payload", http.StatusOK, `<html>`, ports.ErrBackendUnavailable},
		{"invalid ledger data", http.StatusOK, `{"splits": [{"amount": -1, "paid_by": "a"}]}`, ledger.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			event, err := client.GetEvent(context.Background(), caller, "e1")
			assert.Nil(t, event)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestClient_TransportError(t *testing.T) {
	client := NewClient("http://backend.invalid", &mockHTTPClient{
		doFunc: func(req *http.Request) (*http.Response, error) {
			return nil, errors.New("connection refused")
		},
	}, nil, newTestLogger())

	_, err := client.GetEvent(context.Background(), caller, "e1")
	assert.ErrorIs(t, err, ports.ErrBackendUnavailable)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestClient_ContextDeadline(t *testing.T) {
	client := NewClient("http://backend.invalid", &mockHTTPClient{
		doFunc: func(req *http.Request) (*http.Response, error) {
			return nil, req.Context().Err()
		},
	}, nil, newTestLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.GetEvent(ctx, caller, "e1")
	assert.ErrorIs(t, err, ports.ErrBackendUnavailable)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_OversizedPayload(t *testing.T) {
	client := NewClient("http://backend.invalid", &mockHTTPClient{
		doFunc: func(req *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(strings.NewReader(strings.Repeat(" ", maxPayloadBytes+10))),
			}, nil
		},
	}, nil, newTestLogger())

	_, err := client.FetchEventPayload(context.Background(), caller, "e1")
	assert.ErrorIs(t, err, ports.ErrBackendUnavailable)
}

func TestClient_ListEvents(t *testing.T) {
	client := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/events", r.URL.Path)
		_, _ = io.WriteString(w, `[{"event_id": "a", "name": "A"}, {"event_id": "b", "name": "B", "dismissed": true}]`)
	})

	events, err := client.ListEvents(context.Background(), caller)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "a", events[0].ID)
	assert.True(t, events[1].Dismissed)
}

func TestClient_NoTokenNoHeader(t *testing.T) {
	client := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `[]`)
	})

	events, err := client.ListEvents(context.Background(), ports.Caller{})
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestClient_Ping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{"ok", http.StatusOK, false},
		{"no health route still reachable", http.StatusNotFound, false},
		{"server error", http.StatusServiceUnavailable, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/health", r.URL.Path)
				w.WriteHeader(tt.status)
			})

			err := client.Ping(context.Background())
			if tt.wantErr {
				assert.ErrorIs(t, err, ports.ErrBackendUnavailable)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, "backend", client.Name())
		})
	}
}
