package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/recall-api/internal/platform/clock"
)

// DailyScheduler runs a job once a day at a fixed UTC wall-clock time.
type DailyScheduler struct {
	job   Job
	runAt string
	clock clock.Clock
	after func(time.Duration) <-chan time.Time

	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	started    bool
	mu         sync.Mutex

	logger     *slog.Logger
	errHandler func(job Job, err error)
}

// NewDailyScheduler creates a scheduler for job at runAt ("HH:MM", UTC).
func NewDailyScheduler(job Job, runAt string, clk clock.Clock, logger *slog.Logger) (*DailyScheduler, error) {
	if job == nil {
		return nil, fmt.Errorf("job cannot be nil")
	}
	if clk == nil {
		clk = clock.Real{}
	}
	if _, err := clock.NextDailyRun(clk.Now(), runAt); err != nil {
		return nil, fmt.Errorf("invalid run time %q: %w", runAt, err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "daily_scheduler"), slog.String("job", job.Name()))

	ctx, cancel := context.WithCancel(context.Background())
	return &DailyScheduler{
		job:        job,
		runAt:      runAt,
		clock:      clk,
		after:      time.After,
		ctx:        ctx,
		cancelFunc: cancel,
		logger:     logger,
		errHandler: func(job Job, err error) {
			logger.Error("scheduled job failed", slog.String("error", err.Error()))
		},
	}, nil
}

// SetErrorHandler replaces the default handler, which logs the error.
func (s *DailyScheduler) SetErrorHandler(handler func(job Job, err error)) {
	s.errHandler = handler
}

// Start launches the scheduling loop. Calling Start twice is a no-op.
func (s *DailyScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true

	s.wg.Add(1)
	go s.loop()
}

// Stop cancels any running job and waits for the loop to exit.
func (s *DailyScheduler) Stop() {
	s.cancelFunc()
	s.wg.Wait()
}

func (s *DailyScheduler) loop() {
	defer s.wg.Done()

	for {
		next, _ := clock.NextDailyRun(s.clock.Now(), s.runAt)
		wait := next.Sub(s.clock.Now())
		s.logger.Debug("next run scheduled", slog.Time("at", next), slog.Duration("in", wait))

		select {
		case <-s.ctx.Done():
			s.logger.Debug("scheduler stopped")
			return
		case <-s.after(wait):
		}

		start := time.Now()
		if err := s.job.Run(s.ctx); err != nil {
			s.errHandler(s.job, err)
			continue
		}
		s.logger.Info("scheduled job completed", slog.Duration("duration", time.Since(start)))
	}
}
