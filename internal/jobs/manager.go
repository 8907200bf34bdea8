package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

// Manager enqueues background work.
type Manager interface {
	EnqueuePriceCheck(ctx context.Context, source string) error
	Close() error
}

type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

type manager struct {
	client enqueuer
	log    *slog.Logger
}

// NewManager builds a Manager backed by an asynq client.
func NewManager(redisOpt asynq.RedisConnOpt, log *slog.Logger) Manager {
	return newManager(asynq.NewClient(redisOpt), log)
}

func newManager(client enqueuer, log *slog.Logger) *manager {
	if log == nil {
		log = slog.Default()
	}
	return &manager{client: client, log: log}
}

// EnqueuePriceCheck asks the worker for an immediate price check, for example
// after a catalog import. A check already waiting in the queue absorbs the
// request.
func (m *manager) EnqueuePriceCheck(ctx context.Context, source string) error {
	task, err := NewPriceCheckTask(source, time.Now(), priceCheckTimeout)
	if err != nil {
		return err
	}

	info, err := m.client.EnqueueContext(ctx, task, asynq.Unique(priceCheckTimeout))
	if errors.Is(err, asynq.ErrDuplicateTask) {
		m.log.InfoContext(ctx, "price check already queued", slog.String("source", source))
		return nil
	}
	if err != nil {
		return err
	}

	m.log.InfoContext(ctx, "enqueued price check", slog.String("task_id", info.ID), slog.String("source", source))
	return nil
}

func (m *manager) Close() error {
	return m.client.Close()
}
