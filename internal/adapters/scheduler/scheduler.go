// Package scheduler triggers a job once a week at a fixed weekday and hour (UTC).
package scheduler

import (
	"context"
	"time"

	"github.com/okian/cohort/pkg/logger"
)

// Job is invoked at each scheduled instant.
type Job func(ctx context.Context, at time.Time) error

// NextWeekly returns the first instant strictly after now that falls on
// weekday at hour:00 UTC. Hours outside [0,23] are clamped.
func NextWeekly(now time.Time, weekday time.Weekday, hour int) time.Time {
	hour = min(max(hour, 0), 23)
	now = now.UTC()
	y, m, d := now.Date()
	next := time.Date(y, m, d, hour, 0, 0, 0, time.UTC)

	days := (int(weekday) - int(now.Weekday()) + 7) % 7
	next = next.AddDate(0, 0, days)
	if !next.After(now) {
		next = next.AddDate(0, 0, 7)
	}
	return next
}

// Option applies a configuration option to the Scheduler.
type Option func(*Scheduler)

// WithWeekly sets the weekday and hour of the trigger.
func WithWeekly(weekday time.Weekday, hour int) Option {
	return func(s *Scheduler) {
		s.weekday = weekday
		s.hour = hour
	}
}

// WithClock sets the time source used to compute the next trigger.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the scheduler.
func WithLogger(l logger.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// Scheduler runs a Job weekly.
type Scheduler struct {
	job     Job
	weekday time.Weekday
	hour    int
	now     func() time.Time
	logger  logger.Logger
}

// New creates a scheduler for job, by default every Monday at 09:00 UTC.
func New(job Job, opts ...Option) *Scheduler {
	s := &Scheduler{
		job:     job,
		weekday: time.Monday,
		hour:    9,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Named("scheduler")
	}
	return s
}

// Run waits for each trigger and invokes the job until ctx is cancelled.
// Job failures are logged and do not stop the schedule.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		next := NextWeekly(s.now(), s.weekday, s.hour)
		wait := next.Sub(s.now())
		s.logger.Info(ctx, "next matching run scheduled",
			logger.String("at", next.Format(time.RFC3339)),
			logger.Duration("in", wait),
		)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info(ctx, "scheduler stopped")
			return nil
		case <-timer.C:
		}

		if err := s.job(ctx, next); err != nil {
			s.logger.Error(ctx, "scheduled job failed",
				logger.String("at", next.Format(time.RFC3339)),
				logger.Error(err),
			)
		}
	}
}
