package orm

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError(t *testing.T) {
	baseErr := errors.New("base error")
	ormErr := &Error{
		Op:    "insert",
		Table: "menus",
		Err:   baseErr,
	}

	t.Run("Error method", func(t *testing.T) {
		assert.Equal(t, "orm: insert: table=menus: base error", ormErr.Error())
	})

	t.Run("Unwrap method", func(t *testing.T) {
		assert.Equal(t, baseErr, errors.Unwrap(ormErr))
	})

	t.Run("Is method", func(t *testing.T) {
		assert.True(t, errors.Is(ormErr, baseErr))
		assert.True(t, errors.Is(ormErr, &Error{Op: "insert"}))
		assert.False(t, errors.Is(ormErr, &Error{Op: "delete", Err: ErrNotFound}))
	})
}

func TestParsePostgreSQLError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		op       string
		table    string
		wantType error
		wantMsg  string
	}{
		{
			name: "pq unique violation",
			err: &pq.Error{
				Code:       "23505",
				Message:    "duplicate key value violates unique constraint \"categories_pkey\"",
				Constraint: "categories_pkey",
			},
			op:       "insert",
			table:    "categories",
			wantType: ErrDuplicateKey,
			wantMsg:  "orm: insert: table=categories: constraint=categories_pkey: duplicate key violation",
		},
		{
			name: "pq foreign key violation",
			err: &pq.Error{
				Code:       "23503",
				Message:    "insert or update on table \"menus\" violates foreign key constraint \"fk_menus_category\"",
				Constraint: "fk_menus_category",
			},
			op:       "insert",
			table:    "menus",
			wantType: ErrForeignKey,
			wantMsg:  "orm: insert: table=menus: constraint=fk_menus_category: foreign key violation",
		},
		{
			name: "pgx not null violation",
			err: &pgconn.PgError{
				Code:       "23502",
				Message:    "null value in column \"name\" violates not-null constraint",
				ColumnName: "name",
			},
			op:       "insert",
			table:    "categories",
			wantType: ErrNotNull,
			wantMsg:  "orm: insert: table=categories: column=name: not null constraint violation",
		},
		{
			name: "pgx check violation wrapped",
			err: fmt.Errorf("exec: %w", &pgconn.PgError{
				Code:           "23514",
				ConstraintName: "menus_price_check",
			}),
			op:       "update",
			table:    "menus",
			wantType: ErrCheckConstraint,
			wantMsg:  "orm: update: table=menus: constraint=menus_price_check: check constraint violation",
		},
		{
			name:     "message fallback",
			err:      errors.New("ERROR: insert or update on table \"menus\" violates foreign key constraint \"fk_menus_category\""),
			op:       "insert",
			table:    "menus",
			wantType: ErrForeignKey,
			wantMsg:  "orm: insert: table=menus: constraint=menus: foreign key violation",
		},
		{
			name:     "no rows error",
			err:      sql.ErrNoRows,
			op:       "find",
			table:    "menus",
			wantType: ErrNotFound,
			wantMsg:  "orm: find: table=menus: record not found",
		},
		{
			name:     "connection refused",
			err:      errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"),
			op:       "find",
			table:    "menus",
			wantType: ErrConnectionFailed,
			wantMsg:  "orm: find: table=menus: database connection failed",
		},
		{
			name:     "other error",
			err:      errors.New("some other error"),
			op:       "insert",
			table:    "reservations",
			wantType: nil,
			wantMsg:  "orm: insert: table=reservations: some other error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ParsePostgreSQLError(tt.err, tt.op, tt.table)
			require.Error(t, result)

			var ormErr *Error
			require.ErrorAs(t, result, &ormErr)
			assert.Equal(t, tt.wantMsg, result.Error())
			if tt.wantType != nil {
				assert.ErrorIs(t, result, tt.wantType)
			}
		})
	}

	t.Run("nil error", func(t *testing.T) {
		assert.NoError(t, ParsePostgreSQLError(nil, "find", "menus"))
	})

	t.Run("context errors keep the cause", func(t *testing.T) {
		result := ParsePostgreSQLError(context.DeadlineExceeded, "find", "menus")
		assert.ErrorIs(t, result, ErrTimeout)
		assert.ErrorIs(t, result, context.DeadlineExceeded)
		assert.True(t, IsRetryable(result))

		result = ParsePostgreSQLError(fmt.Errorf("query: %w", context.Canceled), "find", "menus")
		assert.ErrorIs(t, result, ErrCanceled)
		assert.ErrorIs(t, result, context.Canceled)
		assert.False(t, IsRetryable(result))
	})

	t.Run("already classified errors pass through", func(t *testing.T) {
		original := &Error{Op: "delete", Table: "menus", Err: ErrNotFound}
		assert.Same(t, original, ParsePostgreSQLError(original, "tx", "menus"))
	})
}

func TestIsConstraintError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"unique violation", ParsePostgreSQLError(&pq.Error{Code: "23505"}, "insert", "categories"), true},
		{"foreign key violation", ParsePostgreSQLError(&pq.Error{Code: "23503"}, "insert", "menus"), true},
		{"check violation", ParsePostgreSQLError(&pq.Error{Code: "23514"}, "insert", "menus"), true},
		{"undefined table", ParsePostgreSQLError(&pq.Error{Code: "42P01", Message: "relation does not exist"}, "find", "menus"), false},
		{"plain error", errors.New("some error"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsConstraintError(tt.err))
		})
	}
}

func TestGetConstraintName(t *testing.T) {
	err := ParsePostgreSQLError(&pq.Error{Code: "23503", Constraint: "fk_menus_category"}, "insert", "menus")
	assert.Equal(t, "fk_menus_category", GetConstraintName(err))
	assert.Equal(t, "", GetConstraintName(errors.New("some error")))
}
