package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"ledgersplit/internal/core/domain"
	"ledgersplit/internal/core/ports/mocks"
	"ledgersplit/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type snapshotTestDeps struct {
	svc      *SnapshotServiceImpl
	balances *mocks.MockBalanceService
	repo     *mocks.MockSnapshotRepository
	ctrl     *gomock.Controller
	now      time.Time
}

func setupSnapshotService(t *testing.T) *snapshotTestDeps {
	ctrl := gomock.NewController(t)
	d := &snapshotTestDeps{
		balances: mocks.NewMockBalanceService(ctrl),
		repo:     mocks.NewMockSnapshotRepository(ctrl),
		ctrl:     ctrl,
		now:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	d.svc = NewSnapshotService(d.balances, d.repo, 20, nil, newTestLogger())
	d.svc.now = func() time.Time { return d.now }
	return d
}

func settledSummary(eventID string) *domain.EventSummary {
	return &domain.EventSummary{
		EventID:    eventID,
		SplitCount: 1,
		TotalSpent: dec("30"),
		Balances:   domain.Balances{{UserID: "alice", Amount: dec("0")}},
		IsSettled:  true,
		Transfers:  []domain.Transfer{},
	}
}

func TestSnapshotService_Record(t *testing.T) {
	d := setupSnapshotService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.balances.EXPECT().GetEventSummary(ctx, testCaller, "e1").Return(settledSummary("e1"), nil)
	d.repo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, snap *domain.BalanceSnapshot) error {
			assert.Equal(t, "e1", snap.EventID)
			assert.Equal(t, "alice", snap.RecordedBy)
			assert.Equal(t, d.now, snap.CreatedAt)
			assert.NotEqual(t, uuid.Nil, snap.ID)
			return nil
		},
	)

	snap, err := d.svc.Record(ctx, testCaller, "e1")
	require.NoError(t, err)
	assert.True(t, snap.IsSettled)
}

func TestSnapshotService_Record_RefusesImbalanced(t *testing.T) {
	d := setupSnapshotService(t)
	defer d.ctrl.Finish()

	summary := settledSummary("e1")
	imbalance := dec("-20")
	summary.Imbalance = &imbalance
	d.balances.EXPECT().GetEventSummary(gomock.Any(), testCaller, "e1").Return(summary, nil)

	_, err := d.svc.Record(context.Background(), testCaller, "e1")
	requireAppCode(t, err, "BAL_002", http.StatusUnprocessableEntity)
}

func TestSnapshotService_Record_PropagatesSummaryError(t *testing.T) {
	d := setupSnapshotService(t)
	defer d.ctrl.Finish()

	d.balances.EXPECT().GetEventSummary(gomock.Any(), testCaller, "e1").Return(nil, apperror.ErrEventNotFound("e1"))

	_, err := d.svc.Record(context.Background(), testCaller, "e1")
	requireAppCode(t, err, "EVT_001", http.StatusNotFound)
}

func TestSnapshotService_Record_DatabaseError(t *testing.T) {
	d := setupSnapshotService(t)
	defer d.ctrl.Finish()

	d.balances.EXPECT().GetEventSummary(gomock.Any(), testCaller, "e1").Return(settledSummary("e1"), nil)
	d.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("connection reset"))

	_, err := d.svc.Record(context.Background(), testCaller, "e1")
	requireAppCode(t, err, "SYS_001", http.StatusInternalServerError)
}

func TestSnapshotService_List_ClampsLimit(t *testing.T) {
	tests := []struct {
		name      string
		requested int
		want      int
	}{
		{"default", 0, 20},
		{"negative", -5, 20},
		{"within", 5, 5},
		{"above max", 500, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := setupSnapshotService(t)
			defer d.ctrl.Finish()

			d.balances.EXPECT().GetEventSummary(gomock.Any(), testCaller, "e1").Return(settledSummary("e1"), nil)
			d.repo.EXPECT().ListByEvent(gomock.Any(), "e1", tt.want).Return(nil, nil)

			snaps, err := d.svc.List(context.Background(), testCaller, "e1", tt.requested)
			require.NoError(t, err)
			assert.NotNil(t, snaps)
			assert.Empty(t, snaps)
		})
	}
}

func TestSnapshotService_List_RequiresAccess(t *testing.T) {
	d := setupSnapshotService(t)
	defer d.ctrl.Finish()

	d.balances.EXPECT().GetEventSummary(gomock.Any(), testCaller, "e1").Return(nil, apperror.ErrEventNotFound("e1"))

	_, err := d.svc.List(context.Background(), testCaller, "e1", 10)
	requireAppCode(t, err, "EVT_001", http.StatusNotFound)
}

func TestSnapshotService_Prune(t *testing.T) {
	d := setupSnapshotService(t)
	defer d.ctrl.Finish()

	retention := 30 * 24 * time.Hour
	d.repo.EXPECT().DeleteOlderThan(gomock.Any(), d.now.Add(-retention)).Return(int64(7), nil)

	n, err := d.svc.Prune(context.Background(), retention)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
}

func TestSnapshotService_Prune_Disabled(t *testing.T) {
	d := setupSnapshotService(t)
	defer d.ctrl.Finish()

	n, err := d.svc.Prune(context.Background(), 0)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSnapshotService_Prune_DatabaseError(t *testing.T) {
	d := setupSnapshotService(t)
	defer d.ctrl.Finish()

	d.repo.EXPECT().DeleteOlderThan(gomock.Any(), gomock.Any()).Return(int64(0), errors.New("timeout"))

	_, err := d.svc.Prune(context.Background(), time.Hour)
	requireAppCode(t, err, "SYS_001", http.StatusInternalServerError)
}
