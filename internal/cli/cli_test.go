package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eleven-am/bistro/internal/config"
	"github.com/eleven-am/bistro/pkg/bistro"
)

// setup isolates a test from the caller's working directory and environment.
func setup(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	for _, key := range []string{config.EnvConfigPath, config.EnvDatabaseURL, config.EnvStorage, config.EnvPort, config.EnvAMQPURL} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	t.Setenv(config.EnvLogLevel, "error")
	return dir
}

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	cmd.SetArgs(args)

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestNewRootCommand(t *testing.T) {
	setup(t)

	t.Run("creates root command", func(t *testing.T) {
		cmd := NewRootCommand()
		require.NotNil(t, cmd)
		assert.Equal(t, "bistro", cmd.Use)
		assert.NotEmpty(t, cmd.Version)
	})

	t.Run("has expected subcommands", func(t *testing.T) {
		cmd := NewRootCommand()
		var names []string
		for _, sub := range cmd.Commands() {
			names = append(names, sub.Name())
		}
		for _, expected := range []string{"init", "serve", "query", "schema", "migrate", "version"} {
			assert.Contains(t, names, expected)
		}
	})

	t.Run("has expected flags", func(t *testing.T) {
		cmd := NewRootCommand()
		for _, flag := range []string{"config", "url", "storage", "debug", "verbose"} {
			assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), flag)
		}
	})

	t.Run("persistent pre-run with valid config", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bistro.yaml")
		require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9090\nlog:\n  level: error\n"), 0644))

		_, _, err := execute(t, "", "--config", path, "version")
		require.NoError(t, err)
		require.NotNil(t, bistroConfig)
		assert.Equal(t, 9090, bistroConfig.Server.Port)
		assert.Equal(t, config.BackendMemory, bistroConfig.Storage.Backend)
	})

	t.Run("persistent pre-run with invalid config", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "invalid.yaml")
		require.NoError(t, os.WriteFile(path, []byte("invalid: yaml: content:\n  - bad\n    - format\n"), 0644))

		stdout, stderr, err := execute(t, "", "--config", path, "--verbose", "version")
		require.NoError(t, err)
		assert.Contains(t, stderr, "Warning: Failed to load config file")
		assert.Contains(t, stdout, "bistro ")

		_, _, err = execute(t, "", "--config", path, "query", "{ menus { id } }")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load configuration")
	})

	t.Run("url flag selects postgres", func(t *testing.T) {
		_, _, err := execute(t, "", "--url", "postgres://localhost/bistro", "version")
		require.NoError(t, err)
		assert.Equal(t, config.BackendPostgres, bistroConfig.Storage.Backend)
		assert.Equal(t, "postgres://localhost/bistro", bistroConfig.Database.URL)
	})

	t.Run("storage flag wins over url", func(t *testing.T) {
		_, _, err := execute(t, "", "--url", "postgres://localhost/bistro", "--storage", "memory", "version")
		require.NoError(t, err)
		assert.Equal(t, config.BackendMemory, bistroConfig.Storage.Backend)
	})
}

func TestVersionCommand(t *testing.T) {
	setup(t)

	stdout, _, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "bistro "+bistro.Version)
	assert.Contains(t, stdout, "platform:")
}

func TestInitCommand(t *testing.T) {
	dir := setup(t)

	stdout, _, err := execute(t, "", "init")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Created bistro.yaml")

	cfg, err := config.Load(filepath.Join(dir, "bistro.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.BackendMemory, cfg.Storage.Backend)

	_, _, err = execute(t, "", "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	stdout, _, err = execute(t, "", "init", "--force", "--backend", "postgres")
	require.NoError(t, err)
	assert.Contains(t, stdout, "bistro migrate")

	cfg, err = config.Load(filepath.Join(dir, "bistro.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.BackendPostgres, cfg.Storage.Backend)
	assert.NotEmpty(t, cfg.Database.URL)

	_, _, err = execute(t, "", "init", "--path", "other.yaml", "--backend", "sqlite")
	require.Error(t, err)
}

func TestSchemaCommand(t *testing.T) {
	dir := setup(t)

	stdout, _, err := execute(t, "", "schema")
	require.NoError(t, err)
	assert.Contains(t, stdout, "type Query {")
	assert.Contains(t, stdout, "addReservation(reservation: ReservationInput!): Reservation")

	_, _, err = execute(t, "", "schema", "-o", "schema.graphql")
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(dir, "schema.graphql"))
	require.NoError(t, err)
	assert.Equal(t, stdout, string(data))
}

func TestQueryCommand(t *testing.T) {
	setup(t)

	t.Run("query argument", func(t *testing.T) {
		stdout, _, err := execute(t, "", "--storage", "memory", "query", "--raw", "{ categories { id name } }")
		require.NoError(t, err)
		assert.Contains(t, stdout, `{"id":1,"name":"Appetizers"}`)
	})

	t.Run("variables and pretty output", func(t *testing.T) {
		stdout, _, err := execute(t, "", "--storage", "memory", "query",
			"--variables", `{"id": 2}`, `query($id: Int!) { menu(menuId: $id) { name } }`)
		require.NoError(t, err)
		assert.Contains(t, stdout, `"name": "Steak"`)
	})

	t.Run("document from stdin", func(t *testing.T) {
		stdout, _, err := execute(t, "{ reservations { customerName } }", "--storage", "memory", "query", "--raw", "-")
		require.NoError(t, err)
		assert.Contains(t, stdout, "John Doe")
	})

	t.Run("document from file", func(t *testing.T) {
		require.NoError(t, os.WriteFile("q.graphql", []byte("{ categories { name } }"), 0644))
		stdout, _, err := execute(t, "", "--storage", "memory", "query", "-f", "q.graphql")
		require.NoError(t, err)
		assert.Contains(t, stdout, "Desserts")
	})

	t.Run("errors are printed and returned", func(t *testing.T) {
		stdout, _, err := execute(t, "", "--storage", "memory", "query", "--raw", "mutation { deleteMenu(menuId: 999) }")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "1 error(s)")
		assert.Contains(t, stdout, "NOT_FOUND")
	})

	t.Run("bad input", func(t *testing.T) {
		_, _, err := execute(t, "", "query")
		assert.Error(t, err)

		_, _, err = execute(t, "", "query", "--variables", "{", "{ menus { id } }")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid --variables")

		_, _, err = execute(t, "", "query", "-f", "missing.graphql", "{ menus { id } }")
		assert.Error(t, err)
	})
}

func TestMigrateCommand(t *testing.T) {
	setup(t)

	_, _, err := execute(t, "", "--storage", "memory", "migrate", "--dry-run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database connection required")
}
