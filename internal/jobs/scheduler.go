// Package jobs runs the enrichment pipeline on a cron schedule for
// long-lived deployments that keep destination imagery fresh.
package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// RunFunc executes one full pipeline run.
type RunFunc func(ctx context.Context) error

type Scheduler struct {
	cron *cron.Cron
	run  RunFunc
	log  zerolog.Logger

	mu     sync.Mutex
	active bool
}

func NewScheduler(run RunFunc, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(),
		run:  run,
		log:  log,
	}
}

// Start registers the cron expression and begins firing. A tick that
// lands while a run is still in flight is dropped.
func (s *Scheduler) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.fire); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info().Str("schedule", spec).Msg("scheduler started")
	return nil
}

// Stop waits up to five seconds for an in-flight run to drain.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
	}
}

func (s *Scheduler) fire() {
	s.mu.Lock()
	if s.active {
		s.mu.Unlock()
		s.log.Warn().Msg("previous run still in progress, skipping tick")
		return
	}
	s.active = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.active = false
		s.mu.Unlock()
	}()

	if err := s.run(context.Background()); err != nil {
		s.log.Error().Err(err).Msg("scheduled run failed")
	}
}
