// Package scheduler wraps robfig/cron to run the watcher on an
// interval. Runs are serialized: the store has no concurrent-writer
// protection, so a tick that arrives while a run is still going is
// skipped rather than overlapped.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// RunFunc is one reconciliation run.
type RunFunc func(ctx context.Context) error

// Scheduler triggers runs according to a schedule expression.
type Scheduler struct {
	cron    *cron.Cron
	ctx     context.Context
	cancel  context.CancelFunc
	logger  *slog.Logger
	wg      sync.WaitGroup
	running bool
	mu      sync.Mutex
}

// New creates a Scheduler. The context is used for graceful shutdown.
func New(ctx context.Context, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}

	schedCtx, cancel := context.WithCancel(ctx)

	cronLogger := &cronSlogAdapter{logger: logger}
	c := cron.New(
		cron.WithLogger(cronLogger),
		cron.WithChain(
			cron.Recover(cronLogger),
		),
	)

	return &Scheduler{
		cron:   c,
		ctx:    schedCtx,
		cancel: cancel,
		logger: logger,
	}
}

// Schedule registers the run function against the schedule expression.
func (s *Scheduler) Schedule(expr string, run RunFunc) error {
	schedule, err := ParseSchedule(expr)
	if err != nil {
		return err
	}

	s.cron.Schedule(schedule, cron.FuncJob(func() {
		s.mu.Lock()
		if s.running {
			s.mu.Unlock()
			s.logger.Warn("previous run still in progress, skipping tick")
			return
		}
		s.running = true
		s.mu.Unlock()

		s.wg.Add(1)
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			s.running = false
			s.mu.Unlock()
		}()

		start := time.Now()
		if err := run(s.ctx); err != nil {
			s.logger.Error("run failed",
				slog.String("error", err.Error()),
				slog.Duration("duration", time.Since(start)))
			return
		}
		s.logger.Info("run completed", slog.Duration("duration", time.Since(start)))
	}))

	s.logger.Info("run scheduled",
		slog.String("schedule", expr),
		slog.Time("next_run", schedule.Next(time.Now())))
	return nil
}

// Start begins triggering runs.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops scheduling new runs and waits for an in-flight run to
// finish, bounded by the parent context.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cancel()
	<-s.cron.Stop().Done()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("scheduler stopped")
	case <-time.After(30 * time.Second):
		s.logger.Warn("shutdown timeout reached, abandoning in-flight run")
	}
}

// cronSlogAdapter bridges robfig/cron's logger to slog.
type cronSlogAdapter struct {
	logger *slog.Logger
}

func (a *cronSlogAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Debug(msg, keysAndValues...)
}

func (a *cronSlogAdapter) Error(err error, msg string, keysAndValues ...interface{}) {
	args := append([]interface{}{"error", err}, keysAndValues...)
	a.logger.Error(msg, args...)
}
