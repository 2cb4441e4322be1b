package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job is what the scheduler triggers on every tick.
type Job interface {
	RunOnce(ctx context.Context) RunOutcome
}

// Scheduler triggers a Job on a cron expression when the process is kept
// alive instead of being started by an external timer.
type Scheduler struct {
	Cron *cron.Cron
	Job  Job
	Ctx  context.Context
	log  zerolog.Logger
}

// NewScheduler creates a Scheduler evaluating cron expressions in loc.
// Expressions carry a leading seconds field.
func NewScheduler(ctx context.Context, job Job, loc *time.Location, log zerolog.Logger) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithLocation(loc),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		Job: job,
		Ctx: ctx,
		log: log,
	}
}

// Register adds the run task.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.tick); err != nil {
		return fmt.Errorf("register run task: %w", err)
	}
	s.log.Info().Str("cron", spec).Msg("run task registered")
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
}

func (s *Scheduler) tick() {
	if s.Ctx.Err() != nil {
		return
	}
	s.Job.RunOnce(s.Ctx)
}
