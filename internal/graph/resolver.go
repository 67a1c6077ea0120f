package graph

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/eleven-am/bistro/internal/events"
)

// base is shared by every fragment: per-field deadline, event publishing and logging.
type base struct {
	timeout   time.Duration
	publisher events.Publisher
	logger    *zap.Logger
}

// resolve runs fn under the field deadline and turns any failure into a coded FieldError.
// Each call runs on the executor's goroutine for that field, so sibling query fields overlap
// their storage calls instead of waiting on each other.
func resolve[T any](ctx context.Context, b *base, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	v, err := fn(ctx)
	if err != nil {
		var zero T
		fe := newFieldError(op, err)
		b.logger.Debug("field failed", zap.String("field", op), zap.String("code", string(fe.Code)), zap.Error(err))
		return zero, fe
	}
	return v, nil
}

// publish announces a committed write. The publisher only enqueues; delivery failures never
// fail the mutation.
func (b *base) publish(ctx context.Context, entity string, action events.Action, id int) {
	if b.publisher == nil {
		return
	}
	event := events.New(entity, action, id)
	if err := b.publisher.Publish(context.WithoutCancel(ctx), event); err != nil {
		b.logger.Warn("failed to publish event", zap.String("routing_key", event.RoutingKey()), zap.Error(err))
	}
}
