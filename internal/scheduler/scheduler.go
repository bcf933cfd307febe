// Package scheduler runs the daily reset on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	_ "time/tzdata"

	"github.com/robfig/cron/v3"
)

// Resetter clears the day's state.
type Resetter interface {
	ResetDay(ctx context.Context) error
}

// Scheduler triggers Resetter.ResetDay on a standard five-field cron spec
// evaluated in a fixed location.
type Scheduler struct {
	cron     *cron.Cron
	schedule cron.Schedule
	resetter Resetter
	timeout  time.Duration
	logger   *slog.Logger
}

// New parses spec in timezone. It does not start the scheduler.
func New(spec, timezone string, resetter Resetter, logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", timezone, err)
	}
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("parse reset schedule %q: %w", spec, err)
	}

	s := &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		schedule: schedule,
		resetter: resetter,
		timeout:  30 * time.Second,
		logger:   logger,
	}
	s.cron.Schedule(schedule, cron.FuncJob(func() { s.Run(context.Background()) }))
	return s, nil
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("daily reset scheduled", "next", s.Next())
}

// Stop halts the scheduler and waits for a running reset, or until ctx
// is done.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("daily reset still running at shutdown")
	}
}

// Next returns the next reset time after now.
func (s *Scheduler) Next() time.Time {
	return s.NextAfter(time.Now())
}

// NextAfter returns the first reset time after t, in the scheduler's
// location.
func (s *Scheduler) NextAfter(t time.Time) time.Time {
	return s.schedule.Next(t.In(s.cron.Location()))
}

// Run performs one reset.
func (s *Scheduler) Run(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	if err := s.resetter.ResetDay(ctx); err != nil {
		s.logger.Error("daily reset failed", "error", err)
		return
	}
	s.logger.Info("daily reset done", "duration", time.Since(start))
}
