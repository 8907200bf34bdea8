package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

const priceCheckTimeout = 2 * time.Minute

type Scheduler interface {
	RegisterTasks(priceSchedule string) error
	Run()
	Shutdown()
}

type scheduler struct {
	asynqScheduler *asynq.Scheduler
	log            *slog.Logger
}

func NewScheduler(redisOpt asynq.RedisConnOpt, log *slog.Logger) Scheduler {
	if log == nil {
		log = slog.Default()
	}

	return &scheduler{
		asynqScheduler: asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{Location: time.UTC}),
		log:            log,
	}
}

// RegisterTasks registers the periodic price check on a cron spec. An empty
// spec disables it.
func (s *scheduler) RegisterTasks(priceSchedule string) error {
	if priceSchedule == "" {
		s.log.InfoContext(context.Background(), "scheduler: price check disabled")
		return nil
	}

	task, err := NewPriceCheckTask(SourceSchedule, time.Now(), priceCheckTimeout)
	if err != nil {
		return err
	}

	entryID, err := s.asynqScheduler.Register(priceSchedule, task, asynq.Unique(priceCheckTimeout))
	if err != nil {
		return fmt.Errorf("register price check %q: %w", priceSchedule, err)
	}

	s.log.InfoContext(context.Background(), "scheduler: registered price check task",
		slog.String("schedule", priceSchedule),
		slog.String("entry_id", entryID),
	)

	return nil
}

func (s *scheduler) Run() {
	s.log.InfoContext(context.Background(), "scheduler: starting")

	go func() {
		if err := s.asynqScheduler.Run(); err != nil {
			s.log.ErrorContext(context.Background(), "scheduler: run failed", slog.Any("error", err))
		}
	}()
}

func (s *scheduler) Shutdown() {
	s.log.InfoContext(context.Background(), "scheduler: shutting down")

	s.asynqScheduler.Shutdown()
}
