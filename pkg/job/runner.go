package job

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/cmdbkit/cmdbkit/pkg/model"
)

// Runner polls for ready jobs and drives them through their handlers with a
// fixed-size worker pool. Claiming happens through a guarded update, so
// multiple runner processes can share one queue without double execution.
type Runner struct {
	db        *gorm.DB
	scheduler *Scheduler
	registry  *Registry
	workers   int
	interval  time.Duration
	log       *zap.Logger
}

// NewRunner creates a new Runner
func NewRunner(db *gorm.DB, scheduler *Scheduler, registry *Registry, workers int, interval time.Duration, log *zap.Logger) *Runner {
	if workers <= 0 {
		workers = 4
	}
	if interval <= 0 {
		interval = time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{db: db, scheduler: scheduler, registry: registry, workers: workers, interval: interval, log: log}
}

// Run blocks until ctx is canceled. Each worker claims jobs independently;
// the stale sweeper runs alongside them on the scheduler timeout.
func (r *Runner) Run(ctx context.Context) error {
	group, ctx := errgroup.WithContext(ctx)

	for i := 0; i < r.workers; i++ {
		group.Go(func() error {
			return r.workerLoop(ctx)
		})
	}
	group.Go(func() error {
		return r.sweepLoop(ctx)
	})

	err := group.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (r *Runner) workerLoop(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		for {
			claimed, err := r.runOne(ctx)
			if err != nil {
				r.log.Error("job run failed", zap.Error(err))
				break
			}
			if !claimed {
				break
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}
	}
}

// runOne claims and runs the oldest ready job. Returns false when the queue
// is empty or another worker won the claim.
func (r *Runner) runOne(ctx context.Context) (bool, error) {
	j, err := r.scheduler.NextReady()
	if err != nil || j == nil {
		return false, err
	}

	if j.DependentJobID != nil {
		jobWaits.Inc()
		if err := r.scheduler.WaitDependentJob(ctx, j); err != nil {
			if errors.Is(err, context.Canceled) {
				return false, err
			}
			r.log.Warn("dependency wait gave up", zap.String("handle", j.Handle), zap.Error(err))
		}
	}

	if err := r.scheduler.Claim(j); err != nil {
		if errors.Is(err, ErrJobConflict) {
			// Canceled or taken by another worker. Either way not ours.
			return true, nil
		}
		return false, err
	}

	r.execute(ctx, j)
	return true, nil
}

func (r *Runner) execute(ctx context.Context, j *model.Job) {
	log := r.log.With(zap.String("handle", j.Handle), zap.String("operation", j.Operation.String()))

	handler, err := r.registry.Resolve(j.Operation)
	if err != nil {
		log.Error("job has no handler", zap.Error(err))
		r.finish(j, model.JobStatusError, err.Error())
		return
	}

	started := time.Now()
	err = handler(ctx, j)
	jobDuration.WithLabelValues(j.Operation.String()).Observe(time.Since(started).Seconds())

	if err != nil {
		log.Error("job failed", zap.Error(err))
		r.finish(j, model.JobStatusError, err.Error())
		return
	}

	log.Info("job done", zap.Duration("elapsed", time.Since(started)))
	r.finish(j, model.JobStatusDone, "")
}

func (r *Runner) finish(j *model.Job, status model.JobStatus, text string) {
	if text != "" {
		if err := r.db.Model(&model.Job{}).Where("id = ?", j.ID).Update("text", text).Error; err != nil {
			r.log.Error("job text update failed", zap.String("handle", j.Handle), zap.Error(err))
		}
	}
	if err := r.scheduler.Finish(j, status); err != nil {
		r.log.Error("job finish failed", zap.String("handle", j.Handle), zap.Error(err))
		return
	}
	jobsProcessed.WithLabelValues(j.Operation.String(), status.String()).Inc()
}

func (r *Runner) sweepLoop(ctx context.Context) error {
	ticker := time.NewTicker(r.scheduler.Timeout())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		expired, err := r.scheduler.ExpireStale()
		if err != nil {
			r.log.Error("stale job sweep failed", zap.Error(err))
			continue
		}
		if expired > 0 {
			jobsExpired.Add(float64(expired))
			r.log.Warn("stale jobs expired", zap.Int64("count", expired))
		}
	}
}
