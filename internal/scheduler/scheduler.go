// Package scheduler provides job scheduling for recurring background tasks
// such as database maintenance.
package scheduler

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Scheduler wraps gocron with structured logging and UTC scheduling.
type Scheduler struct {
	scheduler gocron.Scheduler
}

// New creates and starts a scheduler instance.
func New(log *slog.Logger) (*Scheduler, error) {
	s, err := gocron.NewScheduler(
		gocron.WithLocation(time.UTC),
		gocron.WithLogger(&logAdapter{log: log.With("component", "scheduler")}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	s.Start()

	return &Scheduler{scheduler: s}, nil
}

// AddJob schedules a named job from a cron expression.
func (s *Scheduler) AddJob(name, cronExpr string, job func()) error {
	if name == "" {
		return errors.New("empty job name")
	}
	if cronExpr == "" {
		return errors.New("empty cron expression")
	}
	if job == nil {
		return errors.New("nil job function")
	}

	_, err := s.scheduler.NewJob(
		gocron.CronJob(cronExpr, false),
		gocron.NewTask(job),
		gocron.WithName(name),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", name, err)
	}

	return nil
}

// Stop gracefully shuts down the scheduler, waiting for running jobs.
func (s *Scheduler) Stop() error {
	if err := s.scheduler.Shutdown(); err != nil {
		return fmt.Errorf("failed to shutdown scheduler: %w", err)
	}

	return nil
}

type logAdapter struct {
	log *slog.Logger
}

func (l *logAdapter) Debug(msg string, args ...any) { l.log.Debug(msg, args...) }
func (l *logAdapter) Info(msg string, args ...any)  { l.log.Info(msg, args...) }
func (l *logAdapter) Warn(msg string, args ...any)  { l.log.Warn(msg, args...) }
func (l *logAdapter) Error(msg string, args ...any) { l.log.Error(msg, args...) }
