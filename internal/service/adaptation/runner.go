// Package adaptation runs the daily retuning batch over every onboarded
// user.
package adaptation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/domain/adapt"
	"github.com/phrazzld/recall-api/internal/platform/clock"
	"github.com/phrazzld/recall-api/internal/platform/lock"
	"github.com/phrazzld/recall-api/internal/platform/logger"
	"github.com/phrazzld/recall-api/internal/store"
	"golang.org/x/sync/errgroup"
)

// ErrBatchInProgress is returned when another run for the same day holds
// the batch lock.
var ErrBatchInProgress = errors.New("daily adaptation already in progress")

// Defaults applied by NewRunner for zero config values.
const (
	DefaultWorkerCount = 4
	DefaultLockTTL     = 30 * time.Minute
)

// Config tunes a Runner.
type Config struct {
	WorkerCount int
	LockTTL     time.Duration
}

// Summary counts what one batch run did.
type Summary struct {
	Date      string `json:"date"`
	Processed int    `json:"processed"`
	// Adapted counts users whose multiplier moved.
	Adapted int `json:"adapted"`
	// Unchanged counts users evaluated without a multiplier change.
	Unchanged int                      `json:"unchanged"`
	Skipped   int                      `json:"skipped"`
	Failed    int                      `json:"failed"`
	Skips     map[adapt.SkipReason]int `json:"skips,omitempty"`
}

type outcome struct {
	decision adapt.Decision
}

// Runner retunes every onboarded user once per UTC day.
type Runner struct {
	stores     *store.Stores
	transactor store.Transactor
	locker     lock.Locker
	clock      clock.Clock
	config     Config
	logger     *slog.Logger
}

// NewRunner creates a Runner.
func NewRunner(
	stores *store.Stores,
	transactor store.Transactor,
	locker lock.Locker,
	clk clock.Clock,
	config Config,
	logger *slog.Logger,
) *Runner {
	if stores == nil {
		panic("stores cannot be nil")
	}
	if transactor == nil {
		panic("transactor cannot be nil")
	}
	if locker == nil {
		locker = lock.NewMemory()
	}
	if clk == nil {
		clk = clock.Real{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if config.WorkerCount <= 0 {
		config.WorkerCount = DefaultWorkerCount
	}
	if config.LockTTL <= 0 {
		config.LockTTL = DefaultLockTTL
	}
	return &Runner{
		stores:     stores,
		transactor: transactor,
		locker:     locker,
		clock:      clk,
		config:     config,
		logger:     logger.With(slog.String("component", "adaptation_runner")),
	}
}

// Name identifies the job to the scheduler.
func (r *Runner) Name() string { return "daily_adaptation" }

// Run executes one batch and discards the summary. It lets the Runner be
// scheduled as a job.
func (r *Runner) Run(ctx context.Context) error {
	_, err := r.RunDailyAdaptation(ctx)
	return err
}

// RunDailyAdaptation retunes every onboarded user. A failure for one user is
// logged and counted; the batch continues. The returned error is non-nil
// only when the batch as a whole could not run or ctx was cancelled.
func (r *Runner) RunDailyAdaptation(ctx context.Context) (*Summary, error) {
	now := r.clock.Now()
	date := now.Format(time.DateOnly)
	log := logger.FromContextOrDefault(ctx, r.logger).With(slog.String("date", date))

	held, err := r.locker.TryLock(ctx, "adaptation:"+date, r.config.LockTTL)
	if err != nil {
		if errors.Is(err, lock.ErrNotAcquired) {
			log.Warn("daily adaptation already running")
			return nil, ErrBatchInProgress
		}
		return nil, fmt.Errorf("acquire batch lock: %w", err)
	}
	defer func() {
		if err := held.Release(context.WithoutCancel(ctx)); err != nil {
			log.Error("failed to release batch lock", slog.String("error", err.Error()))
		}
	}()

	userIDs, err := r.stores.Profiles.ListOnboardedUserIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list onboarded users: %w", err)
	}
	log.Info("starting daily adaptation",
		slog.Int("users", len(userIDs)),
		slog.Int("workers", r.config.WorkerCount))

	summary := &Summary{Date: date, Skips: make(map[adapt.SkipReason]int)}
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(r.config.WorkerCount)
	for _, userID := range userIDs {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			out, err := r.adaptUser(ctx, userID, now)

			mu.Lock()
			defer mu.Unlock()
			summary.Processed++
			switch {
			case err != nil:
				summary.Failed++
				log.Error("failed to adapt user",
					slog.String("error", err.Error()),
					slog.String("user_id", userID.String()))
			case out.decision.Skipped():
				summary.Skipped++
				summary.Skips[out.decision.Skip]++
			case out.decision.Direction == adapt.Unchanged:
				summary.Unchanged++
			default:
				summary.Adapted++
			}
			return nil
		})
	}
	_ = g.Wait()

	log.Info("daily adaptation finished",
		slog.Int("processed", summary.Processed),
		slog.Int("adapted", summary.Adapted),
		slog.Int("unchanged", summary.Unchanged),
		slog.Int("skipped", summary.Skipped),
		slog.Int("failed", summary.Failed))

	if err := ctx.Err(); err != nil {
		return summary, err
	}
	return summary, nil
}

// adaptUser evaluates one user and persists the result in a single
// transaction. The missed-day counter is refreshed even when the retuning
// itself is skipped.
func (r *Runner) adaptUser(ctx context.Context, userID uuid.UUID, now time.Time) (outcome, error) {
	var out outcome
	err := r.transactor.RunInTx(ctx, func(ctx context.Context, tx *store.Stores) error {
		profile, err := tx.Profiles.GetForUpdate(ctx, userID)
		if err != nil {
			return fmt.Errorf("load profile: %w", err)
		}
		if !profile.OnboardingCompleted {
			out.decision = adapt.Decision{Skip: adapt.SkipNotOnboarded}
			return nil
		}

		lastActive, err := tx.Activity.LastActiveDay(ctx, userID)
		if err != nil {
			return fmt.Errorf("load last activity: %w", err)
		}
		missed := adapt.MissedDays(lastActive, profile.CreatedAt, now)
		dirty := missed != profile.ConsecutiveMissedDays
		profile.ConsecutiveMissedDays = missed

		if adapt.AlreadyAdapted(profile, now) {
			out.decision = adapt.Decision{Skip: adapt.SkipAlreadyAdaptedToday}
			return r.saveIfDirty(ctx, tx, profile, dirty, now)
		}

		config, err := tx.Configs.Get(ctx, userID)
		if err != nil && !errors.Is(err, store.ErrReviewConfigNotFound) {
			return fmt.Errorf("load review config: %w", err)
		}
		stats, err := tx.Stats.Get(ctx, userID)
		if err != nil && !errors.Is(err, store.ErrStatsNotFound) {
			return fmt.Errorf("load stats: %w", err)
		}

		out.decision = adapt.Decide(stats, profile, config)
		if out.decision.Skipped() {
			return r.saveIfDirty(ctx, tx, profile, dirty, now)
		}

		at := now
		profile.IntervalMultiplier = out.decision.MultiplierAfter
		profile.AverageRecallRate = out.decision.RecallRate
		profile.LastAdaptationAt = &at
		profile.UpdatedAt = now
		if err := tx.Profiles.Update(ctx, profile); err != nil {
			return fmt.Errorf("update profile: %w", err)
		}

		record := &domain.AdaptationRecord{
			ID:               uuid.New(),
			UserID:           userID,
			RecallRate:       out.decision.RecallRate,
			TotalReviews:     out.decision.TotalReviews,
			MultiplierBefore: out.decision.MultiplierBefore,
			MultiplierAfter:  out.decision.MultiplierAfter,
			CreatedAt:        now,
		}
		if err := tx.Adaptations.Create(ctx, record); err != nil {
			return fmt.Errorf("record adaptation: %w", err)
		}
		return nil
	})
	if err != nil {
		return outcome{}, err
	}

	if !out.decision.Skipped() {
		logger.FromContextOrDefault(ctx, r.logger).Debug("user adapted",
			slog.String("user_id", userID.String()),
			slog.Float64("recall_rate", out.decision.RecallRate),
			slog.Float64("multiplier_before", out.decision.MultiplierBefore),
			slog.Float64("multiplier_after", out.decision.MultiplierAfter),
			slog.String("direction", string(out.decision.Direction)))
	}
	return out, nil
}

func (r *Runner) saveIfDirty(ctx context.Context, tx *store.Stores, p *domain.Profile, dirty bool, now time.Time) error {
	if !dirty {
		return nil
	}
	p.UpdatedAt = now
	if err := tx.Profiles.Update(ctx, p); err != nil {
		return fmt.Errorf("update missed days: %w", err)
	}
	return nil
}
