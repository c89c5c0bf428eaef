package events

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"sync"
	"time"
)

// Errors returned by AsyncHandler.HandleEvent
var (
	ErrQueueClosed = errors.New("event queue is closed")
	ErrQueueFull   = errors.New("event queue is full")
)

// AsyncConfig holds configuration options for an AsyncHandler
type AsyncConfig struct {
	// Workers is the number of concurrent delivery goroutines.
	// If zero or negative, defaults to 1
	Workers int

	// QueueSize is the buffer size of each worker's queue.
	// If zero or negative, defaults to 1
	QueueSize int

	// HandleTimeout bounds a single delivery. Zero means no limit.
	HandleTimeout time.Duration
}

// DefaultAsyncConfig returns an AsyncConfig with reasonable defaults
func DefaultAsyncConfig() AsyncConfig {
	return AsyncConfig{
		Workers:       2,
		QueueSize:     100,
		HandleTimeout: 10 * time.Second,
	}
}

// AsyncHandler moves delivery to a slow handler, such as a broker publisher,
// off the request path. Events are queued and delivered by a fixed pool of
// workers. Events with the same key always go to the same worker, so their
// relative order is preserved.
type AsyncHandler struct {
	next    EventHandler
	queues  []chan *ContentEvent
	timeout time.Duration
	wg      sync.WaitGroup
	mu      sync.RWMutex
	closed  bool
	logger  *slog.Logger

	// errorHandler is called when delivery fails. If nil, errors are only logged.
	errorHandler func(event *ContentEvent, err error)
}

// NewAsyncHandler starts the workers and returns the handler.
// Stop must be called to drain the queues.
func NewAsyncHandler(next EventHandler, config AsyncConfig, logger *slog.Logger) *AsyncHandler {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "async_event_handler")

	workers := config.Workers
	if workers <= 0 {
		logger.Warn("invalid worker count specified, using default",
			"specified_count", config.Workers,
			"default_count", 1)
		workers = 1
	}
	size := max(config.QueueSize, 1)

	h := &AsyncHandler{
		next:    next,
		queues:  make([]chan *ContentEvent, workers),
		timeout: config.HandleTimeout,
		logger:  logger,
	}
	for i := range h.queues {
		h.queues[i] = make(chan *ContentEvent, size)
		h.wg.Add(1)
		go h.worker(i, h.queues[i])
	}
	return h
}

// SetErrorHandler sets a callback for delivery failures. It must be called
// before any event is handled.
func (h *AsyncHandler) SetErrorHandler(handler func(event *ContentEvent, err error)) {
	h.errorHandler = handler
}

// HandleEvent queues the event and returns immediately. It fails with
// ErrQueueFull when the worker for the event's key is saturated, and with
// ErrQueueClosed after Stop.
func (h *AsyncHandler) HandleEvent(ctx context.Context, event *ContentEvent) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return ErrQueueClosed
	}

	queue := h.queues[h.shard(event.Key)]
	select {
	case queue <- event:
		h.logger.Debug("event enqueued",
			"event_id", event.ID,
			"event_type", event.Type,
			"queue_len", len(queue),
			"queue_cap", cap(queue))
		return nil
	default:
		return fmt.Errorf("%w: queue capacity %d reached", ErrQueueFull, cap(queue))
	}
}

// Stop rejects new events and waits for queued ones to be delivered, or for
// ctx to end. It is safe to call more than once.
func (h *AsyncHandler) Stop(ctx context.Context) error {
	h.mu.Lock()
	if !h.closed {
		h.closed = true
		for _, q := range h.queues {
			close(q)
		}
	}
	h.mu.Unlock()

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		h.logger.Info("event queue drained")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("event queue not drained: %w", ctx.Err())
	}
}

func (h *AsyncHandler) shard(key string) int {
	if len(h.queues) == 1 {
		return 0
	}
	f := fnv.New32a()
	_, _ = f.Write([]byte(key))
	return int(f.Sum32() % uint32(len(h.queues)))
}

func (h *AsyncHandler) worker(id int, queue <-chan *ContentEvent) {
	defer h.wg.Done()
	h.logger.Debug("starting worker", "worker_id", id)

	for event := range queue {
		h.deliver(id, event)
	}
	h.logger.Debug("event queue closed, stopping worker", "worker_id", id)
}

func (h *AsyncHandler) deliver(workerID int, event *ContentEvent) {
	ctx := context.Background()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	if err := h.next.HandleEvent(ctx, event); err != nil {
		h.logger.Error("event delivery failed",
			"event_id", event.ID,
			"event_type", event.Type,
			"event_key", event.Key,
			"worker_id", workerID,
			"error", err)
		if h.errorHandler != nil {
			h.errorHandler(event, err)
		}
	}
}
