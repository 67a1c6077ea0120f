package events

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// DefaultQueueSize bounds how many events may wait for delivery.
const DefaultQueueSize = 256

var (
	ErrQueueFull = errors.New("events: queue full")
	ErrClosed    = errors.New("events: publisher closed")
)

// Async hands events to next from a single background goroutine. Publish only enqueues, so a
// slow or unreachable broker never delays the caller; when the queue is full the event is
// dropped and ErrQueueFull returned.
type Async struct {
	next   Publisher
	queue  chan Event
	done   chan struct{}
	logger *zap.Logger

	mu       sync.RWMutex
	closed   bool
	closeErr error
	once     sync.Once
}

func NewAsync(next Publisher, size int, logger *zap.Logger) *Async {
	if size <= 0 {
		size = DefaultQueueSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	a := &Async{
		next:   next,
		queue:  make(chan Event, size),
		done:   make(chan struct{}),
		logger: logger,
	}
	go a.run()
	return a
}

func (a *Async) Publish(_ context.Context, event Event) error {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.closed {
		return ErrClosed
	}
	select {
	case a.queue <- event:
		return nil
	default:
		return ErrQueueFull
	}
}

func (a *Async) run() {
	defer close(a.done)
	for event := range a.queue {
		if err := a.next.Publish(context.Background(), event); err != nil {
			a.logger.Warn("event delivery failed", zap.String("routing_key", event.RoutingKey()), zap.Error(err))
		}
	}
}

// Close stops accepting events, delivers what is queued and closes next.
func (a *Async) Close() error {
	a.once.Do(func() {
		a.mu.Lock()
		a.closed = true
		close(a.queue)
		a.mu.Unlock()

		<-a.done
		a.closeErr = a.next.Close()
	})
	return a.closeErr
}
