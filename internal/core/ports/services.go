package ports

//go:generate mockgen -source=services.go -destination=mocks/mock_services.go -package=mocks

import (
	"context"
	"time"

	"ledgersplit/internal/core/domain"
)

// BalanceService derives balances and settlement plans for events.
type BalanceService interface {
	GetEventSummary(ctx context.Context, caller Caller, eventID string) (*domain.EventSummary, error)
	// ListEventSummaries returns one summary per caller event, in backend order.
	ListEventSummaries(ctx context.Context, caller Caller) ([]domain.EventSummary, error)
	GetSettlementPlan(ctx context.Context, caller Caller, eventID string) ([]domain.Transfer, error)
	// ComputeSummary summarizes an event supplied inline instead of fetched.
	ComputeSummary(ctx context.Context, event *domain.Event) (*domain.EventSummary, error)
}

// SnapshotService records and reads balance history.
type SnapshotService interface {
	Record(ctx context.Context, caller Caller, eventID string) (*domain.BalanceSnapshot, error)
	List(ctx context.Context, caller Caller, eventID string, limit int) ([]domain.BalanceSnapshot, error)
	Prune(ctx context.Context, retention time.Duration) (int64, error)
}

// WebhookService reacts to backend change notifications.
type WebhookService interface {
	HandleChange(ctx context.Context, n *domain.ChangeNotification) error
}

// SignatureService handles HMAC-SHA256 signing and verification.
type SignatureService interface {
	Sign(secretKey string, payload string) string
	Verify(secretKey string, payload string, signature string) bool
	BuildCanonicalString(method, path string, timestamp int64, nonce string, body string) string
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(userID string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	UserID string
}

// AuditService records audited actions without blocking the caller.
type AuditService interface {
	Log(ctx context.Context, entry *domain.AuditLog)
}
