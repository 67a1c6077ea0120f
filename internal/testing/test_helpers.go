// Package testing provisions throwaway PostgreSQL databases for integration tests.
package testing

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// EnvDatabaseURL points at a server where the tests may create and drop databases.
const EnvDatabaseURL = "BISTRO_TEST_DATABASE_URL"

// TestDB provides a test database connection
type TestDB struct {
	DB      *sqlx.DB
	DBName  string
	ConnStr string

	adminURL string
	t        *testing.T
}

// NewTestDB creates a fresh database on the server named by BISTRO_TEST_DATABASE_URL and drops
// it when the test finishes. The test is skipped when the variable is unset or -short is given.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	adminURL := os.Getenv(EnvDatabaseURL)
	if adminURL == "" {
		t.Skipf("%s not set", EnvDatabaseURL)
	}

	admin, err := sqlx.Open("postgres", adminURL)
	if err != nil {
		t.Fatalf("Failed to connect to postgres: %v", err)
	}
	defer admin.Close()

	dbName := fmt.Sprintf("bistro_test_%d", time.Now().UnixNano())
	if _, err := admin.Exec(fmt.Sprintf("CREATE DATABASE %s", dbName)); err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	connStr, err := withDatabase(adminURL, dbName)
	if err != nil {
		t.Fatalf("Failed to build test database URL: %v", err)
	}

	db, err := sqlx.Open("postgres", connStr)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	tdb := &TestDB{DB: db, DBName: dbName, ConnStr: connStr, adminURL: adminURL, t: t}
	t.Cleanup(tdb.Cleanup)
	return tdb
}

func withDatabase(rawURL, dbName string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	u.Path = "/" + dbName
	return u.String(), nil
}

// Cleanup drops the test database
func (tdb *TestDB) Cleanup() {
	tdb.DB.Close()

	admin, err := sqlx.Open("postgres", tdb.adminURL)
	if err != nil {
		tdb.t.Logf("Failed to connect for cleanup: %v", err)
		return
	}
	defer admin.Close()

	_, err = admin.Exec(`
		SELECT pg_terminate_backend(pg_stat_activity.pid)
		FROM pg_stat_activity
		WHERE pg_stat_activity.datname = $1
		AND pid <> pg_backend_pid()
	`, tdb.DBName)
	if err != nil {
		tdb.t.Logf("Failed to terminate connections: %v", err)
	}

	if _, err := admin.Exec(fmt.Sprintf("DROP DATABASE IF EXISTS %s", tdb.DBName)); err != nil {
		tdb.t.Logf("Failed to drop test database: %v", err)
	}
}

// TableExists checks if a table exists
func (tdb *TestDB) TableExists(ctx context.Context, tableName string) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM information_schema.tables
			WHERE table_schema = 'public'
			AND table_name = $1
		)
	`
	err := tdb.DB.GetContext(ctx, &exists, query, tableName)
	return exists, err
}

// IndexExists checks if an index exists
func (tdb *TestDB) IndexExists(ctx context.Context, indexName string) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM pg_indexes
			WHERE schemaname = 'public'
			AND indexname = $1
		)
	`
	err := tdb.DB.GetContext(ctx, &exists, query, indexName)
	return exists, err
}

// ConstraintExists checks if a constraint exists
func (tdb *TestDB) ConstraintExists(ctx context.Context, tableName, constraintName string) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM information_schema.table_constraints
			WHERE table_schema = 'public'
			AND table_name = $1
			AND constraint_name = $2
		)
	`
	err := tdb.DB.GetContext(ctx, &exists, query, tableName, constraintName)
	return exists, err
}
