// Package migrator applies the embedded schema and seed scripts, recording each one in a
// migrations table so it runs only once per database.
package migrator

import (
	"context"
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

//go:embed sql/*.sql
var scripts embed.FS

// DefaultTable is where applied migrations are recorded.
const DefaultTable = "schema_migrations"

// Migration is one embedded script.
type Migration struct {
	Name     string
	SQL      string
	Checksum string
}

// Status summarizes which embedded migrations a database has seen.
type Status struct {
	Applied []string
	Pending []string
}

type Migrator struct {
	db     *sqlx.DB
	table  string
	logger *zap.Logger
}

func New(db *sqlx.DB, logger *zap.Logger) *Migrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Migrator{db: db, table: DefaultTable, logger: logger}
}

// Migrations returns the embedded scripts in name order.
func Migrations() ([]Migration, error) {
	entries, err := fs.ReadDir(scripts, "sql")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded migrations: %w", err)
	}

	var migrations []Migration
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		content, err := fs.ReadFile(scripts, path.Join("sql", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %s: %w", entry.Name(), err)
		}
		sum := sha256.Sum256(content)
		migrations = append(migrations, Migration{
			Name:     strings.TrimSuffix(entry.Name(), ".sql"),
			SQL:      string(content),
			Checksum: hex.EncodeToString(sum[:]),
		})
	}

	sort.Slice(migrations, func(i, j int) bool { return migrations[i].Name < migrations[j].Name })
	return migrations, nil
}

// Up applies every pending migration, each in its own transaction, and returns the names applied.
func (m *Migrator) Up(ctx context.Context) ([]string, error) {
	migrations, err := Migrations()
	if err != nil {
		return nil, err
	}

	if err := m.createMigrationsTable(ctx); err != nil {
		return nil, fmt.Errorf("failed to create migrations table: %w", err)
	}

	var applied []string
	for i := range migrations {
		ok, err := m.Apply(ctx, &migrations[i])
		if err != nil {
			return applied, err
		}
		if ok {
			applied = append(applied, migrations[i].Name)
		}
	}
	return applied, nil
}

// Apply executes one migration unless it is already recorded. It reports whether it ran.
func (m *Migrator) Apply(ctx context.Context, migration *Migration) (bool, error) {
	applied, err := m.isMigrationApplied(ctx, migration.Name)
	if err != nil {
		return false, fmt.Errorf("failed to check migration status: %w", err)
	}

	if applied {
		m.logger.Debug("migration already applied", zap.String("name", migration.Name))
		return false, nil
	}

	m.logger.Info("applying migration", zap.String("name", migration.Name))

	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, migration.SQL); err != nil {
		return false, fmt.Errorf("failed to execute migration %s: %w", migration.Name, err)
	}

	if err := m.recordMigration(ctx, tx, migration); err != nil {
		return false, fmt.Errorf("failed to record migration: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit migration: %w", err)
	}

	m.logger.Info("migration applied", zap.String("name", migration.Name))
	return true, nil
}

// Status compares the embedded scripts with the migrations table.
func (m *Migrator) Status(ctx context.Context) (*Status, error) {
	migrations, err := Migrations()
	if err != nil {
		return nil, err
	}

	if err := m.createMigrationsTable(ctx); err != nil {
		return nil, fmt.Errorf("failed to create migrations table: %w", err)
	}

	var names []string
	query := fmt.Sprintf(`SELECT name FROM %s ORDER BY name`, m.table)
	if err := m.db.SelectContext(ctx, &names, query); err != nil {
		return nil, fmt.Errorf("failed to get applied migrations: %w", err)
	}

	done := make(map[string]bool, len(names))
	for _, name := range names {
		done[name] = true
	}

	status := &Status{Applied: names}
	for _, migration := range migrations {
		if !done[migration.Name] {
			status.Pending = append(status.Pending, migration.Name)
		}
	}
	return status, nil
}

func (m *Migrator) createMigrationsTable(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			name VARCHAR(255) PRIMARY KEY,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			checksum VARCHAR(64) NOT NULL
		)
	`, m.table)

	_, err := m.db.ExecContext(ctx, query)
	return err
}

func (m *Migrator) isMigrationApplied(ctx context.Context, name string) (bool, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE name = $1`, m.table)

	var count int
	err := m.db.GetContext(ctx, &count, query, name)
	return count > 0, err
}

func (m *Migrator) recordMigration(ctx context.Context, tx *sqlx.Tx, migration *Migration) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (name, applied_at, checksum)
		VALUES ($1, $2, $3)
	`, m.table)

	_, err := tx.ExecContext(ctx, query, migration.Name, time.Now().UTC(), migration.Checksum)
	return err
}
