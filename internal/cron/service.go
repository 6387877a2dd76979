package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
)

const defaultInterval = 6 * time.Hour

// ServiceParams configure the cron service.
type ServiceParams struct {
	Logger   *logger.Logger
	Registry *Registry
	Lock     Lock
	Metrics  *metrics.CronJobMetrics
	// Schedule wins over Interval when both are set.
	Schedule Schedule
	Interval time.Duration
}

// Service runs registered jobs on a schedule. Every cycle holds the
// shared lease so only one worker process executes jobs at a time.
type Service struct {
	logg     *logger.Logger
	registry *Registry
	lock     Lock
	metrics  *metrics.CronJobMetrics
	schedule Schedule
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Lock == nil {
		return nil, fmt.Errorf("lock required")
	}
	registry := params.Registry
	if registry == nil {
		registry, _ = NewRegistry()
	}
	schedule := params.Schedule
	if schedule == nil {
		var err error
		if schedule, err = ParseSchedule("", params.Interval); err != nil {
			return nil, err
		}
	}
	return &Service{
		logg:     params.Logger,
		registry: registry,
		lock:     params.Lock,
		metrics:  params.Metrics,
		schedule: schedule,
	}, nil
}

// Run executes a cycle immediately and then at every scheduled time until ctx
// is canceled. Cycle failures are logged and never stop the loop.
func (s *Service) Run(ctx context.Context) error {
	s.logCycle(ctx, s.RunOnce(ctx))

	timer := time.NewTimer(s.untilNext())
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logg.Info(ctx, "cron loop stopped")
			return ctx.Err()
		case <-timer.C:
			s.logg.Info(ctx, "cron tick")
			s.logCycle(ctx, s.RunOnce(ctx))
			timer.Reset(s.untilNext())
		}
	}
}

func (s *Service) untilNext() time.Duration {
	now := time.Now()
	if wait := s.schedule.Next(now).Sub(now); wait > 0 {
		return wait
	}
	return time.Second
}

// RunOnce executes every registered job. A failing job does not prevent the
// rest from running; failures are combined into the returned error.
func (s *Service) RunOnce(ctx context.Context) error {
	return s.withLease(ctx, func(ctx context.Context) error {
		var errs error
		for _, job := range s.registry.Jobs() {
			errs = multierr.Append(errs, s.runJob(ctx, job))
		}
		return errs
	})
}

// RunJob executes the single job registered under name.
func (s *Service) RunJob(ctx context.Context, name string) error {
	job, ok := s.registry.Lookup(name)
	if !ok {
		return fmt.Errorf("unknown cron job %q (registered: %v)", name, s.registry.Names())
	}
	return s.withLease(ctx, func(ctx context.Context) error {
		return s.runJob(ctx, job)
	})
}

func (s *Service) withLease(ctx context.Context, fn func(context.Context) error) error {
	held, err := s.lock.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire cron lease: %w", err)
	}
	if !held {
		s.logg.Info(ctx, "cron lease held by another worker, skipping")
		return nil
	}
	defer func() {
		switch relErr := s.lock.Release(ctx); {
		case errors.Is(relErr, ErrLeaseLost):
			s.logg.Warn(ctx, "cron lease expired before the cycle finished")
		case relErr != nil:
			s.logg.Error(ctx, "release cron lease", relErr)
		}
	}()
	return fn(ctx)
}

func (s *Service) runJob(ctx context.Context, job Job) error {
	ctx = s.logg.WithField(ctx, "job", job.Name())
	s.logg.Info(ctx, "cron job started")

	start := time.Now()
	err := job.Run(ctx)
	elapsed := time.Since(start)
	s.metrics.Observe(job.Name(), elapsed, err)

	ctx = s.logg.WithField(ctx, "duration_ms", elapsed.Milliseconds())
	if err != nil {
		s.logg.Error(ctx, "cron job failed", err)
		return fmt.Errorf("%s: %w", job.Name(), err)
	}
	s.logg.Info(ctx, "cron job finished")
	return nil
}

func (s *Service) logCycle(ctx context.Context, err error) {
	if err == nil {
		return
	}
	ctx = s.logg.WithField(ctx, "failed_jobs", len(multierr.Errors(err)))
	s.logg.Error(ctx, "cron cycle finished with errors", err)
}
