// Package scheduler refreshes the listing directory on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"StockLens/internal/model"
)

// Refresher reloads the listing directory.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Scheduler manages the cron tasks.
type Scheduler struct {
	cron      *cron.Cron
	directory Refresher
	timeout   time.Duration
	ctx       context.Context
	log       zerolog.Logger
}

// New creates a Scheduler. Each refresh is bounded by timeout.
func New(ctx context.Context, dir Refresher, timeout time.Duration, log zerolog.Logger) *Scheduler {
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &Scheduler{
		cron:      cron.New(cron.WithSeconds(), cron.WithLocation(model.KST)),
		directory: dir,
		timeout:   timeout,
		ctx:       ctx,
		log:       log.With().Str("component", "scheduler").Logger(),
	}
}

// Register schedules the listing refresh. spec uses the six-field cron
// format with seconds, evaluated in KST.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.refreshTask); err != nil {
		return fmt.Errorf("register listing refresh: %w", err)
	}
	s.log.Info().Str("cron", spec).Msg("listing refresh registered")
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Msg("scheduler started")
}

// Stop stops the scheduler and waits for a running task to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
}

// Next returns the next scheduled run, zero if nothing is registered.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// RefreshNow runs the listing refresh immediately.
func (s *Scheduler) RefreshNow() error {
	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	start := time.Now()
	if err := s.directory.Refresh(ctx); err != nil {
		s.log.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("listing refresh failed")
		return err
	}
	s.log.Info().Dur("elapsed", time.Since(start)).Msg("listing refreshed")
	return nil
}

func (s *Scheduler) refreshTask() {
	_ = s.RefreshNow()
}
