package orm

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Operation names the kind of statement a repository is about to run
type Operation string

const (
	OpFind   Operation = "find"
	OpInsert Operation = "insert"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// HookContext carries one statement through the middleware chain
type HookContext struct {
	Operation Operation
	TableName string
	Query     string
	Args      []interface{}
	Context   context.Context
	StartTime time.Time
	Duration  time.Duration
	Error     error
}

// Middleware represents a function that wraps database operations
type Middleware func(next MiddlewareFunc) MiddlewareFunc

// MiddlewareFunc represents the signature for middleware functions
type MiddlewareFunc func(ctx *HookContext) error

// chain wraps final with the middleware, first registered outermost
func chain(middleware []Middleware, final MiddlewareFunc) MiddlewareFunc {
	handler := final
	for i := len(middleware) - 1; i >= 0; i-- {
		handler = middleware[i](handler)
	}
	return handler
}

// LoggingMiddleware logs every statement at debug level and failures at warn
func LoggingMiddleware(logger *zap.Logger) Middleware {
	return func(next MiddlewareFunc) MiddlewareFunc {
		return func(ctx *HookContext) error {
			err := next(ctx)

			fields := []zap.Field{
				zap.String("op", string(ctx.Operation)),
				zap.String("table", ctx.TableName),
				zap.Duration("duration", ctx.Duration),
			}
			if err != nil {
				logger.Warn("statement failed", append(fields, zap.String("query", ctx.Query), zap.Error(err))...)
			} else {
				logger.Debug("statement executed", append(fields, zap.String("query", ctx.Query))...)
			}

			return err
		}
	}
}

// MetricsCollector receives one call per executed statement
type MetricsCollector interface {
	RecordOperation(operation, table string, duration time.Duration, hasError bool)
}

// MetricsMiddleware collects operation metrics
func MetricsMiddleware(collector MetricsCollector) Middleware {
	return func(next MiddlewareFunc) MiddlewareFunc {
		return func(ctx *HookContext) error {
			err := next(ctx)
			collector.RecordOperation(string(ctx.Operation), ctx.TableName, ctx.Duration, err != nil)
			return err
		}
	}
}
