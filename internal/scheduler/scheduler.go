package scheduler

import (
	"context"
	"fmt"
	"time"

	"pushpilot-be/internal/pkg/logger"
	"pushpilot-be/internal/service"

	"github.com/robfig/cron/v3"
)

const (
	JobCleanup  = "cleanup"
	JobReminder = "reminder"
	JobReport   = "report"
)

// Job is one housekeeping task with its cron expression, evaluated in UTC.
type Job struct {
	Name string
	Spec string
	Run  func(ctx context.Context) error
}

type Scheduler struct {
	cron   *cron.Cron
	jobs   []Job
	logger logger.ILogger
}

// New builds the housekeeping schedule. The reminder is only registered
// when reminderEnabled is set.
func New(housekeeping service.IHousekeepingService, reminderEnabled bool, log logger.ILogger) *Scheduler {
	jobs := []Job{
		{
			Name: JobCleanup,
			Spec: "0 2 * * *",
			Run: func(ctx context.Context) error {
				_, err := housekeeping.Cleanup(ctx)
				return err
			},
		},
		{
			Name: JobReport,
			Spec: "0 8 * * 1",
			Run: func(ctx context.Context) error {
				_, err := housekeeping.WeeklyReport(ctx)
				return err
			},
		},
	}
	if reminderEnabled {
		jobs = append(jobs, Job{
			Name: JobReminder,
			Spec: "0 9 * * *",
			Run: func(ctx context.Context) error {
				_, err := housekeeping.DailyReminder(ctx)
				return err
			},
		})
	}

	return &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		jobs:   jobs,
		logger: log,
	}
}

func (s *Scheduler) Jobs() []Job {
	return s.jobs
}

// Start registers every job and starts the ticker. Jobs run with ctx, so
// cancelling it aborts in-flight work.
func (s *Scheduler) Start(ctx context.Context) error {
	for _, job := range s.jobs {
		job := job
		if _, err := s.cron.AddFunc(job.Spec, func() { s.run(ctx, job) }); err != nil {
			return fmt.Errorf("schedule %s: %w", job.Name, err)
		}
		s.logger.Info("SCHEDULER", "Job scheduled", map[string]interface{}{"job": job.Name, "spec": job.Spec})
	}
	s.cron.Start()
	return nil
}

// Stop halts the ticker and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// RunNow executes a job by name outside the schedule.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	for _, job := range s.jobs {
		if job.Name == name {
			return s.run(ctx, job)
		}
	}
	return fmt.Errorf("unknown job %q", name)
}

func (s *Scheduler) run(ctx context.Context, job Job) error {
	started := time.Now()
	err := job.Run(ctx)
	if err != nil {
		s.logger.Error("SCHEDULER", "Job failed", map[string]interface{}{"job": job.Name, "error": err.Error()})
		return err
	}
	s.logger.Info("SCHEDULER", "Job finished", map[string]interface{}{
		"job":         job.Name,
		"duration_ms": time.Since(started).Milliseconds(),
	})
	return nil
}
