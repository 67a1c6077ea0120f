package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/eleven-am/bistro/internal/config"
	"github.com/eleven-am/bistro/internal/events"
	"github.com/eleven-am/bistro/internal/graph"
	"github.com/eleven-am/bistro/internal/logger"
	"github.com/eleven-am/bistro/internal/models"
	"github.com/eleven-am/bistro/internal/repository/memory"
)

type recordingPublisher struct {
	mu      sync.Mutex
	release chan struct{}
	events  []events.Event
	closed  bool
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	if p.release != nil {
		<-p.release
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func memoryConfig() *config.Config {
	cfg := config.Default()
	cfg.Storage.Backend = config.BackendMemory
	return cfg
}

func TestBuildMemory(t *testing.T) {
	ctx := context.Background()

	t.Run("serves seeded data", func(t *testing.T) {
		a, err := Build(ctx, memoryConfig(), WithMemoryStore(memory.NewStore()))
		require.NoError(t, err)
		defer a.Close()

		resp := a.Schema.Exec(ctx, graph.Request{Query: `{ menus { id } reservations { id } }`})
		require.Empty(t, resp.Errors)
		assert.JSONEq(t, `{"menus":[{"id":1},{"id":2},{"id":3}],"reservations":[{"id":1},{"id":2},{"id":3}]}`, string(resp.Data))
	})

	t.Run("mutations reach the publisher", func(t *testing.T) {
		pub := &recordingPublisher{}
		a, err := Build(ctx, memoryConfig(), WithMemoryStore(memory.NewStore()), WithPublisher(pub))
		require.NoError(t, err)

		resp := a.Schema.Exec(ctx, graph.Request{Query: `mutation { deleteCategory(categoryId: 3) }`})
		require.Empty(t, resp.Errors)

		// Close drains the delivery queue.
		require.NoError(t, a.Close())
		require.Len(t, pub.events, 1)
		assert.Equal(t, "category.deleted", pub.events[0].RoutingKey())
		assert.True(t, pub.closed)
	})

	t.Run("stalled broker does not delay mutations", func(t *testing.T) {
		pub := &recordingPublisher{release: make(chan struct{})}
		cfg := memoryConfig()
		cfg.GraphQL.ResolverTimeout = 200 * time.Millisecond

		a, err := Build(ctx, cfg, WithMemoryStore(memory.NewStore()), WithPublisher(pub))
		require.NoError(t, err)

		start := time.Now()
		resp := a.Schema.Exec(ctx, graph.Request{Query: `mutation {
			a: deleteMenu(menuId: 1)
			b: deleteMenu(menuId: 2)
		}`})
		require.Empty(t, resp.Errors)
		assert.Less(t, time.Since(start), time.Second)

		close(pub.release)
		require.NoError(t, a.Close())
		assert.Len(t, pub.events, 2)
	})

	t.Run("health is always ok", func(t *testing.T) {
		a, err := Build(ctx, memoryConfig(), WithMemoryStore(memory.NewStore()))
		require.NoError(t, err)
		defer a.Close()

		rec := httptest.NewRecorder()
		a.Server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("logs the backend", func(t *testing.T) {
		core, logs := observer.New(zap.InfoLevel)
		logger.Set(zap.New(core))
		t.Cleanup(func() { logger.Set(nil) })

		a, err := Build(ctx, memoryConfig(), WithMemoryStore(memory.NewStore()))
		require.NoError(t, err)
		defer a.Close()

		entries := logs.FilterMessage("using in-memory storage").All()
		require.Len(t, entries, 1)
		assert.Equal(t, "db", entries[0].ContextMap()["component"])
	})
}

func TestBuildPostgres(t *testing.T) {
	ctx := context.Background()

	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	cfg := config.Default()
	cfg.Storage.Backend = config.BackendPostgres
	cfg.Database.URL = "postgres://localhost/bistro"

	a, err := Build(ctx, cfg, WithDB(sqlx.NewDb(db, "postgres")))
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT id, name, image_url FROM categories ORDER BY id ASC`).
		WillReturnRows(sqlmock.NewRows(models.CategoryColumns).AddRow(1, "Appetizers", "a.jpg"))

	body := strings.NewReader(`{"query":"{ categories { name } }"}`)
	req := httptest.NewRequest(http.MethodPost, "/graphql", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.Server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"categories":[{"name":"Appetizers"}]}}`, rec.Body.String())

	mock.ExpectPing()
	rec = httptest.NewRecorder()
	a.Server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	// A pool passed in by the caller stays open.
	require.NoError(t, a.Close())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBuildErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("nil config", func(t *testing.T) {
		_, err := Build(ctx, nil)
		assert.Error(t, err)
	})

	t.Run("unknown backend", func(t *testing.T) {
		cfg := memoryConfig()
		cfg.Storage.Backend = "sqlite"
		pub := &recordingPublisher{}

		_, err := Build(ctx, cfg, WithPublisher(pub))
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown storage backend "sqlite"`)
	})

	t.Run("invalid driver", func(t *testing.T) {
		cfg := config.Default()
		cfg.Storage.Backend = config.BackendPostgres
		cfg.Database.URL = "postgres://localhost/bistro"
		cfg.Database.Driver = "mysql"

		_, err := Build(ctx, cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported database driver")
	})
}
