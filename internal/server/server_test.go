package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eleven-am/bistro/internal/graph"
	"github.com/eleven-am/bistro/internal/repository/memory"
)

type gqlResponse struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors []struct {
		Message    string                 `json:"message"`
		Path       []interface{}          `json:"path"`
		Extensions map[string]interface{} `json:"extensions"`
	} `json:"errors"`
}

func newTestServer(t *testing.T, health HealthFunc, opts Options) *Server {
	t.Helper()
	schema, err := graph.NewSchema(memory.NewStore().Repositories(), graph.Options{})
	require.NoError(t, err)
	return New(schema, health, opts, nil)
}

func do(t *testing.T, s *Server, req *http.Request) (*httptest.ResponseRecorder, gqlResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	var body gqlResponse
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func post(query string, vars map[string]interface{}) *http.Request {
	payload, _ := json.Marshal(map[string]interface{}{"query": query, "variables": vars})
	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(string(payload)))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestPostGraphQL(t *testing.T) {
	s := newTestServer(t, nil, Options{})

	t.Run("query", func(t *testing.T) {
		rec, body := do(t, s, post(`{ categories { id name } }`, nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, body.Errors)
		assert.Contains(t, string(body.Data["categories"]), "Appetizers")
		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	})

	t.Run("mutation with variables", func(t *testing.T) {
		rec, body := do(t, s, post(`mutation($c: CategoryInput!) { addCategory(category: $c) { id } }`,
			map[string]interface{}{"c": map[string]interface{}{"name": "Drinks", "imageUrl": "u"}}))
		assert.Equal(t, http.StatusOK, rec.Code)
		require.Empty(t, body.Errors)
		assert.JSONEq(t, `{"id": 4}`, string(body.Data["addCategory"]))
	})

	t.Run("field error keeps status 200", func(t *testing.T) {
		rec, body := do(t, s, post(`mutation { deleteMenu(menuId: 404) }`, nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, body.Errors, 1)
		assert.Equal(t, "NOT_FOUND", body.Errors[0].Extensions["code"])
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader("{"))
		req.Header.Set("Content-Type", "application/json")
		rec, body := do(t, s, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		require.Len(t, body.Errors, 1)
	})

	t.Run("empty query", func(t *testing.T) {
		rec, _ := do(t, s, post("  ", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("request id is propagated", func(t *testing.T) {
		req := post(`{ menus { id } }`, nil)
		req.Header.Set("X-Request-ID", "abc123")
		rec, _ := do(t, s, req)
		assert.Equal(t, "abc123", rec.Header().Get("X-Request-ID"))
	})
}

func TestGetGraphQL(t *testing.T) {
	t.Run("query string", func(t *testing.T) {
		s := newTestServer(t, nil, Options{})
		q := url.Values{
			"query":     {`query($id: Int!) { menu(menuId: $id) { name } }`},
			"variables": {`{"id": 2}`},
		}
		rec, body := do(t, s, httptest.NewRequest(http.MethodGet, "/graphql?"+q.Encode(), nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		require.Empty(t, body.Errors)
		assert.JSONEq(t, `{"name": "Steak"}`, string(body.Data["menu"]))
	})

	t.Run("mutation over GET is rejected", func(t *testing.T) {
		s := newTestServer(t, nil, Options{})
		q := url.Values{"query": {`mutation { deleteMenu(menuId: 1) }`}}
		rec, _ := do(t, s, httptest.NewRequest(http.MethodGet, "/graphql?"+q.Encode(), nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

		_, body := do(t, s, post(`{ menu(menuId: 1) { id } }`, nil))
		assert.Empty(t, body.Errors)
	})

	t.Run("bad variables", func(t *testing.T) {
		s := newTestServer(t, nil, Options{})
		q := url.Values{"query": {`{ menus { id } }`}, "variables": {`{`}}
		rec, _ := do(t, s, httptest.NewRequest(http.MethodGet, "/graphql?"+q.Encode(), nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("playground", func(t *testing.T) {
		s := newTestServer(t, nil, Options{Playground: true})
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/graphql", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, rec.Body.String(), "Bistro GraphQL")
	})

	t.Run("playground disabled", func(t *testing.T) {
		s := newTestServer(t, nil, Options{Playground: false})
		rec, _ := do(t, s, httptest.NewRequest(http.MethodGet, "/graphql", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHealth(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		s := newTestServer(t, func(context.Context) error { return nil }, Options{})
		rec, _ := do(t, s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	})

	t.Run("backend down", func(t *testing.T) {
		s := newTestServer(t, func(context.Context) error { return errors.New("dial tcp: connection refused") }, Options{})
		rec, _ := do(t, s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "connection refused")
	})
}

func TestRun(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	s := newTestServer(t, nil, Options{Addr: addr, ShutdownTimeout: time.Second})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestIsMutation(t *testing.T) {
	assert.True(t, isMutation(`mutation { deleteMenu(menuId: 1) }`, ""))
	assert.False(t, isMutation(`{ menus { id } }`, ""))
	assert.False(t, isMutation(`query A { menus { id } } mutation B { deleteMenu(menuId: 1) }`, "A"))
	assert.True(t, isMutation(`query A { menus { id } } mutation B { deleteMenu(menuId: 1) }`, "B"))
	assert.False(t, isMutation(`{ menus { `, ""))
}
