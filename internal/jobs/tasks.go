package jobs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const TaskTypePriceCheck = "catalog:price_check"

const (
	QueuePrices  = "prices"
	QueueDefault = "default"
)

// Queues is the priority map used by the worker.
var Queues = map[string]int{
	QueuePrices:  4,
	QueueDefault: 1,
}

// Price check sources.
const (
	SourceSchedule = "schedule"
	SourceImport   = "import"
)

// PriceCheckPayload describes why a price check was requested.
type PriceCheckPayload struct {
	Source      string    `json:"source"`
	RequestedAt time.Time `json:"requested_at"`
}

// NewPriceCheckTask builds a price check task. Tasks expire after timeout so a
// backlog never replays stale checks.
func NewPriceCheckTask(source string, requestedAt time.Time, timeout time.Duration) (*asynq.Task, error) {
	if source == "" {
		return nil, fmt.Errorf("price check: empty source")
	}

	payload, err := json.Marshal(PriceCheckPayload{Source: source, RequestedAt: requestedAt.UTC()})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(TaskTypePriceCheck, payload,
		asynq.Queue(QueuePrices),
		asynq.MaxRetry(3),
		asynq.Timeout(timeout),
	), nil
}

// ParsePriceCheckPayload decodes the payload of a price check task.
func ParsePriceCheckPayload(task *asynq.Task) (PriceCheckPayload, error) {
	var payload PriceCheckPayload
	if task.Type() != TaskTypePriceCheck {
		return payload, fmt.Errorf("unexpected task type %q", task.Type())
	}
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, fmt.Errorf("decode payload: %w", err)
	}
	if payload.Source == "" {
		return payload, fmt.Errorf("payload has no source")
	}
	return payload, nil
}
