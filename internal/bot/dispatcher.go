package bot

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"strconv"
	"sync"

	"github.com/Proton-105/storefront-bot/pkg/metrics"
)

var (
	// ErrDispatcherClosed is returned when Submit is called after Close.
	ErrDispatcherClosed = errors.New("dispatcher: closed")
	// ErrNilJob is returned for a nil run function.
	ErrNilJob = errors.New("dispatcher: nil job")
)

// DispatcherOptions controls the worker pool.
type DispatcherOptions struct {
	Workers   int
	QueueSize int
}

type task struct {
	ctx context.Context
	run func(context.Context)
}

// Dispatcher runs update handlers on a fixed pool of workers. Every chat is
// pinned to one worker, so updates of a chat are processed one at a time and
// in arrival order while different chats proceed in parallel.
type Dispatcher struct {
	shards []chan task
	log    *slog.Logger

	mu     sync.RWMutex
	closed bool
	once   sync.Once
	wg     sync.WaitGroup
}

// NewDispatcher starts the workers. Zero options fall back to 4 workers with
// 64 queued updates each.
func NewDispatcher(opts DispatcherOptions, log *slog.Logger) *Dispatcher {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 64
	}
	if log == nil {
		log = slog.Default()
	}

	d := &Dispatcher{
		shards: make([]chan task, opts.Workers),
		log:    log.With(slog.String("component", "dispatcher")),
	}

	d.wg.Add(opts.Workers)
	for i := range d.shards {
		d.shards[i] = make(chan task, opts.QueueSize)
		go d.worker(i, d.shards[i])
	}

	return d
}

// Submit queues run for chatID. It blocks while the chat's queue is full and
// gives up when ctx is done.
func (d *Dispatcher) Submit(ctx context.Context, chatID int64, run func(context.Context)) error {
	if run == nil {
		return ErrNilJob
	}
	if ctx == nil {
		ctx = context.Background()
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return ErrDispatcherClosed
	}

	idx := d.shardOf(chatID)
	select {
	case d.shards[idx] <- task{ctx: ctx, run: run}:
		metrics.SetQueueDepth(strconv.Itoa(idx), len(d.shards[idx]))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting work and waits for queued updates to finish.
func (d *Dispatcher) Close() {
	d.once.Do(func() {
		d.mu.Lock()
		d.closed = true
		for _, shard := range d.shards {
			close(shard)
		}
		d.mu.Unlock()

		d.wg.Wait()
	})
}

func (d *Dispatcher) shardOf(chatID int64) int {
	return int(uint64(chatID) % uint64(len(d.shards)))
}

func (d *Dispatcher) worker(idx int, queue <-chan task) {
	defer d.wg.Done()

	shard := strconv.Itoa(idx)
	for t := range queue {
		metrics.SetQueueDepth(shard, len(queue))
		d.execute(t)
	}
}

func (d *Dispatcher) execute(t task) {
	defer func() {
		if r := recover(); r != nil {
			d.log.ErrorContext(t.ctx, "panic recovered in dispatcher job",
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())),
			)
		}
	}()

	t.run(t.ctx)
}
