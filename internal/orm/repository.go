// Package orm is a small generic table gateway over sqlx and squirrel. Every statement goes
// through a middleware chain and every driver error comes back as an *Error.
package orm

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

// DBExecutor is satisfied by both *sqlx.DB and *sqlx.Tx
type DBExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

var (
	_ DBExecutor = (*sqlx.DB)(nil)
	_ DBExecutor = (*sqlx.Tx)(nil)
)

// Metadata describes the table a Repository maps T onto
type Metadata struct {
	TableName  string
	PrimaryKey string
	Columns    []string
}

// Repository maps rows of one table onto T via sqlx struct scanning
type Repository[T any] struct {
	db         DBExecutor
	meta       Metadata
	middleware []Middleware
}

// NewRepository creates a repository for T
func NewRepository[T any](db DBExecutor, meta Metadata, middleware ...Middleware) (*Repository[T], error) {
	if db == nil {
		return nil, errors.New("orm: nil executor")
	}
	if meta.TableName == "" || meta.PrimaryKey == "" || len(meta.Columns) == 0 {
		return nil, fmt.Errorf("orm: incomplete metadata for table %q", meta.TableName)
	}
	return &Repository[T]{db: db, meta: meta, middleware: middleware}, nil
}

// WithExecutor returns a copy bound to another executor, typically a transaction
func (r *Repository[T]) WithExecutor(db DBExecutor) *Repository[T] {
	return &Repository[T]{db: db, meta: r.meta, middleware: r.middleware}
}

// Use appends middleware to the chain
func (r *Repository[T]) Use(middleware ...Middleware) {
	r.middleware = append(r.middleware, middleware...)
}

// TableName returns the mapped table
func (r *Repository[T]) TableName() string {
	return r.meta.TableName
}

// PrimaryKey returns a column handle on the primary key
func (r *Repository[T]) PrimaryKey() Column[interface{}] {
	return Col[interface{}](r.meta.PrimaryKey)
}

// FindAll returns every row, ordered by orderBy or by primary key when none is given
func (r *Repository[T]) FindAll(ctx context.Context, orderBy ...string) ([]T, error) {
	return r.find(ctx, nil, orderBy...)
}

// FindWhere returns the rows matching condition
func (r *Repository[T]) FindWhere(ctx context.Context, condition Condition, orderBy ...string) ([]T, error) {
	return r.find(ctx, condition.ToSqlizer(), orderBy...)
}

// FindByID returns the row with the given primary key or an error matching ErrNotFound
func (r *Repository[T]) FindByID(ctx context.Context, id interface{}) (*T, error) {
	query, args, err := r.selectBuilder().
		Where(r.PrimaryKey().Eq(id).ToSqlizer()).
		ToSql()
	if err != nil {
		return nil, r.buildError(OpFind, err)
	}

	var record T
	err = r.run(ctx, OpFind, query, args, func() error {
		return r.db.GetContext(ctx, &record, query, args...)
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Insert writes one row and returns it as stored
func (r *Repository[T]) Insert(ctx context.Context, values map[string]interface{}) (*T, error) {
	query, args, err := squirrel.Insert(r.meta.TableName).
		SetMap(values).
		Suffix("RETURNING " + r.columnList()).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, r.buildError(OpInsert, err)
	}

	var record T
	err = r.run(ctx, OpInsert, query, args, func() error {
		return r.db.GetContext(ctx, &record, query, args...)
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// UpdateByID overwrites the given columns and returns the row as stored. A missing row yields
// an error matching ErrNotFound.
func (r *Repository[T]) UpdateByID(ctx context.Context, id interface{}, values map[string]interface{}) (*T, error) {
	query, args, err := squirrel.Update(r.meta.TableName).
		SetMap(values).
		Where(r.PrimaryKey().Eq(id).ToSqlizer()).
		Suffix("RETURNING " + r.columnList()).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, r.buildError(OpUpdate, err)
	}

	var record T
	err = r.run(ctx, OpUpdate, query, args, func() error {
		return r.db.GetContext(ctx, &record, query, args...)
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// DeleteByID removes one row. Zero affected rows yields an error matching ErrNotFound.
func (r *Repository[T]) DeleteByID(ctx context.Context, id interface{}) error {
	query, args, err := squirrel.Delete(r.meta.TableName).
		Where(r.PrimaryKey().Eq(id).ToSqlizer()).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return r.buildError(OpDelete, err)
	}

	return r.run(ctx, OpDelete, query, args, func() error {
		result, err := r.db.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if affected == 0 {
			return sql.ErrNoRows
		}
		return nil
	})
}

func (r *Repository[T]) find(ctx context.Context, where squirrel.Sqlizer, orderBy ...string) ([]T, error) {
	builder := r.selectBuilder()
	if where != nil {
		builder = builder.Where(where)
	}
	if len(orderBy) == 0 {
		orderBy = []string{r.PrimaryKey().Asc()}
	}
	builder = builder.OrderBy(orderBy...)

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, r.buildError(OpFind, err)
	}

	records := make([]T, 0)
	err = r.run(ctx, OpFind, query, args, func() error {
		return r.db.SelectContext(ctx, &records, query, args...)
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *Repository[T]) selectBuilder() squirrel.SelectBuilder {
	return squirrel.Select(r.meta.Columns...).
		From(r.meta.TableName).
		PlaceholderFormat(squirrel.Dollar)
}

func (r *Repository[T]) columnList() string {
	return strings.Join(r.meta.Columns, ", ")
}

func (r *Repository[T]) buildError(op Operation, err error) error {
	return &Error{
		Op:    string(op),
		Table: r.meta.TableName,
		Err:   fmt.Errorf("failed to build query: %w", err),
	}
}

// run executes fn inside the middleware chain and classifies whatever it returns
func (r *Repository[T]) run(ctx context.Context, op Operation, query string, args []interface{}, fn func() error) error {
	hookCtx := &HookContext{
		Operation: op,
		TableName: r.meta.TableName,
		Query:     query,
		Args:      args,
		Context:   ctx,
		StartTime: time.Now(),
	}

	final := func(hc *HookContext) error {
		err := fn()
		hc.Duration = time.Since(hc.StartTime)
		if err != nil {
			err = ParsePostgreSQLError(err, string(op), r.meta.TableName)
			var ormErr *Error
			if errors.As(err, &ormErr) && ormErr.Query == "" {
				ormErr.Query = query
				ormErr.Args = args
			}
		}
		hc.Error = err
		return err
	}

	return chain(r.middleware, final)(hookCtx)
}
