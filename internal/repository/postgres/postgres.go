// Package postgres is the persistent repository backend. Each call is one unit of work; updates
// and deletes re-read the row inside the same transaction before writing.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/eleven-am/bistro/internal/models"
	"github.com/eleven-am/bistro/internal/orm"
	"github.com/eleven-am/bistro/internal/repository"
)

// Table metadata for the three mapped tables.
var (
	categoriesTable   = orm.Metadata{TableName: "categories", PrimaryKey: "id", Columns: models.CategoryColumns}
	menusTable        = orm.Metadata{TableName: "menus", PrimaryKey: "id", Columns: models.MenuColumns}
	reservationsTable = orm.Metadata{TableName: "reservations", PrimaryKey: "id", Columns: models.ReservationColumns}
)

// New binds all three contracts to db. Statements are logged through logger when it is non-nil.
func New(db *sqlx.DB, logger *zap.Logger) (repository.Repositories, error) {
	var middleware []orm.Middleware
	if logger != nil {
		middleware = append(middleware, orm.LoggingMiddleware(logger))
	}
	tm := orm.NewTransactionManager(db)

	categories, err := NewCategoryRepository(tm, middleware...)
	if err != nil {
		return repository.Repositories{}, err
	}
	menus, err := NewMenuRepository(tm, middleware...)
	if err != nil {
		return repository.Repositories{}, err
	}
	reservations, err := NewReservationRepository(tm, middleware...)
	if err != nil {
		return repository.Repositories{}, err
	}

	return repository.Repositories{
		Categories:   categories,
		Menus:        menus,
		Reservations: reservations,
		Ping:         db.PingContext,
	}, nil
}

// translate maps orm errors onto the repository error kinds. Deadline and cancellation keep
// their context sentinels so callers can tell a timeout from a storage failure; constraint
// violations such as a dangling category_id are storage failures.
func translate(op, entity string, id int, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, orm.ErrNotFound):
		return repository.NotFound(entity, id)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, orm.ErrTimeout):
		return fmt.Errorf("%s %s: %w", op, entity, context.DeadlineExceeded)
	case errors.Is(err, context.Canceled), errors.Is(err, orm.ErrCanceled):
		return fmt.Errorf("%s %s: %w", op, entity, context.Canceled)
	}

	return repository.Storage(op+" "+entity, err)
}
