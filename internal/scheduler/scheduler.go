// Package scheduler runs the daily check-in reset in-process.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

// Resetter is implemented by streak.Service.
type Resetter interface {
	DailyReset(ctx context.Context) (int64, error)
}

// Config places the reset at a wall-clock time in a location.
type Config struct {
	Hour     uint
	Minute   uint
	Location *time.Location
	Timeout  time.Duration
}

// DailyReset wraps a gocron scheduler with a single daily job.
type DailyReset struct {
	scheduler gocron.Scheduler
	job       gocron.Job
}

// NewDailyReset registers the reset job. Call Start to begin scheduling.
func NewDailyReset(cfg Config, resetter Resetter, logger *zap.Logger) (*DailyReset, error) {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = time.Minute
	}

	sched, err := gocron.NewScheduler(gocron.WithLocation(cfg.Location))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	job, err := sched.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(cfg.Hour, cfg.Minute, 0))),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
			defer cancel()

			processed, err := resetter.DailyReset(ctx)
			if err != nil {
				logger.Error("[Scheduler] daily reset failed", zap.Error(err))
				return
			}
			logger.Info("[Scheduler] daily reset completed", zap.Int64("accounts", processed))
		}),
		gocron.WithName("daily-checkin-reset"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, fmt.Errorf("failed to register daily reset: %w", err)
	}

	return &DailyReset{scheduler: sched, job: job}, nil
}

func (d *DailyReset) Start() { d.scheduler.Start() }

// NextRun reports when the reset runs next.
func (d *DailyReset) NextRun() (time.Time, error) { return d.job.NextRun() }

// RunNow triggers the reset outside its schedule.
func (d *DailyReset) RunNow() error { return d.job.RunNow() }

// Shutdown stops the scheduler and waits for a running reset.
func (d *DailyReset) Shutdown() error { return d.scheduler.Shutdown() }
