package service

import (
	"context"
	"fmt"
	"time"

	"ledgersplit/internal/core/ports"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const pruneTimeout = 5 * time.Minute

// Scheduler runs periodic maintenance jobs, currently snapshot retention.
type Scheduler struct {
	cron      *cron.Cron
	snapshots ports.SnapshotService
	retention time.Duration
	log       zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// NewScheduler registers the prune job on a standard five-field cron schedule.
func NewScheduler(
	snapshots ports.SnapshotService,
	schedule string,
	retention time.Duration,
	log zerolog.Logger,
) (*Scheduler, error) {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		snapshots: snapshots,
		retention: retention,
		log:       log,
		ctx:       ctx,
		cancel:    cancel,
	}

	logger := cronLogger{log: log}
	s.cron = cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	if _, err := s.cron.AddFunc(schedule, s.PruneNow); err != nil {
		cancel()
		return nil, fmt.Errorf("invalid prune schedule %q: %w", schedule, err)
	}
	return s, nil
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Dur("retention", s.retention).Msg("scheduler started")
}

// Stop prevents new runs and waits for a running job, or for ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	defer s.cancel()

	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PruneNow runs the retention job once.
func (s *Scheduler) PruneNow() {
	ctx, cancel := context.WithTimeout(s.ctx, pruneTimeout)
	defer cancel()

	if _, err := s.snapshots.Prune(ctx, s.retention); err != nil {
		s.log.Error().Err(err).Msg("snapshot pruning failed")
	}
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
