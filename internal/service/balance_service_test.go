package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"

	"ledgersplit/internal/core/domain"
	"ledgersplit/internal/core/ledger"
	"ledgersplit/internal/core/ports"
	"ledgersplit/internal/core/ports/mocks"
	"ledgersplit/pkg/apperror"
	"ledgersplit/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var testCaller = ports.Caller{UserID: "alice", Token: "tok"}

func newTestLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// tripEvent: alice paid 30 split three ways.
func tripEvent(id string) *domain.Event {
	return &domain.Event{
		ID:   id,
		Name: "Trip " + id,
		Participants: []domain.Participant{
			{UserID: "alice", DisplayName: "Alice"},
			{UserID: "bob", DisplayName: "Bob"},
			{UserID: "carol", DisplayName: "Carol"},
		},
		Splits: []domain.Split{{
			ID: "s1", Amount: dec("30"), PaidBy: "alice",
			Shares: []domain.Share{
				{UserID: "alice", AmountOwed: dec("10")},
				{UserID: "bob", AmountOwed: dec("10")},
				{UserID: "carol", AmountOwed: dec("10")},
			},
		}},
	}
}

func requireAppCode(t *testing.T, err error, code string, status int) {
	t.Helper()
	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	assert.Equal(t, code, appErr.Code)
	assert.Equal(t, status, appErr.HTTPStatus)
}

func TestBalanceService_GetEventSummary(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	source := mocks.NewMockEventSource(ctrl)
	svc := NewBalanceService(source, 4, nil, newTestLogger())

	source.EXPECT().GetEvent(gomock.Any(), testCaller, "e1").Return(tripEvent("e1"), nil)

	summary, err := svc.GetEventSummary(context.Background(), testCaller, "e1")
	require.NoError(t, err)

	assert.Equal(t, "e1", summary.EventID)
	assert.Equal(t, 1, summary.SplitCount)
	assert.True(t, dec("30").Equal(summary.TotalSpent))
	assert.False(t, summary.IsSettled)

	alice, _ := summary.Balances.Get("alice")
	assert.True(t, dec("20").Equal(alice))

	require.Len(t, summary.Transfers, 2)
	assert.Equal(t, "bob", summary.Transfers[0].From)
	assert.Equal(t, "alice", summary.Transfers[0].To)
	assert.Equal(t, "carol", summary.Transfers[1].From)
}

func TestBalanceService_GetEventSummary_SourceErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"not found", ports.ErrEventNotFound, "EVT_001", http.StatusNotFound},
		{"unauthorized", ports.ErrBackendUnauthorized, "AUTH_001", http.StatusUnauthorized},
		{"unavailable", fmt.Errorf("%w: connection refused", ports.ErrBackendUnavailable), "UPS_001", http.StatusBadGateway},
		{"timeout", fmt.Errorf("%w: %w", ports.ErrBackendUnavailable, context.DeadlineExceeded), "UPS_002", http.StatusGatewayTimeout},
		{"invalid payload", &ledger.ValidationError{SplitID: "s1", Field: "amount", Reason: "missing"}, "BAL_001", http.StatusBadRequest},
		{"unexpected", errors.New("boom"), "SYS_001", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			source := mocks.NewMockEventSource(ctrl)
			svc := NewBalanceService(source, 1, nil, newTestLogger())
			source.EXPECT().GetEvent(gomock.Any(), testCaller, "e1").Return(nil, tt.err)

			_, err := svc.GetEventSummary(context.Background(), testCaller, "e1")
			requireAppCode(t, err, tt.code, tt.status)
		})
	}
}

func TestBalanceService_ComputeSummary_InvalidInput(t *testing.T) {
	svc := NewBalanceService(nil, 1, nil, newTestLogger())

	event := tripEvent("e1")
	event.Splits[0].Shares[0].AmountOwed = dec("-10")

	_, err := svc.ComputeSummary(context.Background(), event)
	requireAppCode(t, err, "BAL_001", http.StatusBadRequest)
	assert.ErrorIs(t, err, ledger.ErrInvalidInput)
	assert.Contains(t, err.Error(), "amount_owed")
}

func TestBalanceService_ComputeSummary_Settled(t *testing.T) {
	svc := NewBalanceService(nil, 1, nil, newTestLogger())

	event := tripEvent("e1")
	event.Splits = append(event.Splits,
		domain.Split{ID: "s2", Amount: dec("10"), PaidBy: "bob", Shares: []domain.Share{{UserID: "alice", AmountOwed: dec("10")}}},
		domain.Split{ID: "s3", Amount: dec("10"), PaidBy: "carol", Shares: []domain.Share{{UserID: "alice", AmountOwed: dec("10")}}},
	)

	summary, err := svc.ComputeSummary(context.Background(), event)
	require.NoError(t, err)
	assert.True(t, summary.IsSettled)
	assert.Empty(t, summary.Transfers)
}

func TestBalanceService_GetSettlementPlan_Imbalanced(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	source := mocks.NewMockEventSource(ctrl)
	svc := NewBalanceService(source, 1, nil, newTestLogger())

	// Payer is not a declared participant, so the credit is lost.
	event := tripEvent("e1")
	event.Splits[0].PaidBy = "mallory"
	source.EXPECT().GetEvent(gomock.Any(), testCaller, "e1").Return(event, nil)

	_, err := svc.GetSettlementPlan(context.Background(), testCaller, "e1")
	requireAppCode(t, err, "BAL_002", http.StatusUnprocessableEntity)
	assert.ErrorIs(t, err, ledger.ErrImbalancedLedger)
}

func TestBalanceService_GetSettlementPlan(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	source := mocks.NewMockEventSource(ctrl)
	svc := NewBalanceService(source, 1, nil, newTestLogger())
	source.EXPECT().GetEvent(gomock.Any(), testCaller, "e1").Return(tripEvent("e1"), nil)

	transfers, err := svc.GetSettlementPlan(context.Background(), testCaller, "e1")
	require.NoError(t, err)
	require.Len(t, transfers, 2)
	assert.True(t, dec("10").Equal(transfers[0].Amount))
}

func TestBalanceService_ListEventSummaries_KeepsOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	source := mocks.NewMockEventSource(ctrl)
	svc := NewBalanceService(source, 3, nil, newTestLogger())

	ids := []string{"e1", "e2", "e3", "e4", "e5"}
	listed := make([]domain.Event, 0, len(ids))
	for _, id := range ids {
		listed = append(listed, domain.Event{ID: id})
	}
	source.EXPECT().ListEvents(gomock.Any(), testCaller).Return(listed, nil)

	var inFlight, peak int32
	source.EXPECT().GetEvent(gomock.Any(), testCaller, gomock.Any()).Times(len(ids)).DoAndReturn(
		func(ctx context.Context, _ ports.Caller, id string) (*domain.Event, error) {
			n := atomic.AddInt32(&inFlight, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			defer atomic.AddInt32(&inFlight, -1)
			return tripEvent(id), nil
		},
	)

	summaries, err := svc.ListEventSummaries(context.Background(), testCaller)
	require.NoError(t, err)
	require.Len(t, summaries, len(ids))
	for i, id := range ids {
		assert.Equal(t, id, summaries[i].EventID)
	}
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(3))
}

func TestBalanceService_ListEventSummaries_SkipsVanished(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	source := mocks.NewMockEventSource(ctrl)
	svc := NewBalanceService(source, 2, nil, newTestLogger())

	source.EXPECT().ListEvents(gomock.Any(), testCaller).Return([]domain.Event{{ID: "e1"}, {ID: "gone"}, {ID: "e3"}}, nil)
	source.EXPECT().GetEvent(gomock.Any(), testCaller, "e1").Return(tripEvent("e1"), nil)
	source.EXPECT().GetEvent(gomock.Any(), testCaller, "gone").Return(nil, ports.ErrEventNotFound)
	source.EXPECT().GetEvent(gomock.Any(), testCaller, "e3").Return(tripEvent("e3"), nil)

	summaries, err := svc.ListEventSummaries(context.Background(), testCaller)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "e1", summaries[0].EventID)
	assert.Equal(t, "e3", summaries[1].EventID)
}

func TestBalanceService_ListEventSummaries_FailsOnBackendError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	source := mocks.NewMockEventSource(ctrl)
	svc := NewBalanceService(source, 1, nil, newTestLogger())

	source.EXPECT().ListEvents(gomock.Any(), testCaller).Return([]domain.Event{{ID: "e1"}, {ID: "e2"}}, nil)
	source.EXPECT().GetEvent(gomock.Any(), testCaller, "e1").Return(nil, ports.ErrBackendUnavailable)
	source.EXPECT().GetEvent(gomock.Any(), testCaller, "e2").Return(tripEvent("e2"), nil).AnyTimes()

	_, err := svc.ListEventSummaries(context.Background(), testCaller)
	requireAppCode(t, err, "UPS_001", http.StatusBadGateway)
}

func TestBalanceService_ListEventSummaries_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	source := mocks.NewMockEventSource(ctrl)
	svc := NewBalanceService(source, 1, nil, newTestLogger())
	source.EXPECT().ListEvents(gomock.Any(), testCaller).Return(nil, nil)

	summaries, err := svc.ListEventSummaries(context.Background(), testCaller)
	require.NoError(t, err)
	assert.NotNil(t, summaries)
	assert.Empty(t, summaries)
}

func TestBalanceService_RecordsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	svc := NewBalanceService(nil, 1, metrics.New(reg), newTestLogger())

	_, err := svc.ComputeSummary(context.Background(), tripEvent("e1"))
	require.NoError(t, err)

	bad := tripEvent("e2")
	bad.Splits[0].Amount = dec("-1")
	_, err = svc.ComputeSummary(context.Background(), bad)
	require.Error(t, err)

	expected := `
# HELP ledgersplit_ledger_summaries_total Event summaries computed, by outcome.
# TYPE ledgersplit_ledger_summaries_total counter
ledgersplit_ledger_summaries_total{outcome="invalid"} 1
ledgersplit_ledger_summaries_total{outcome="unsettled"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "ledgersplit_ledger_summaries_total"))
}
