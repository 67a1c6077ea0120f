// Package server exposes the GraphQL schema over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/99designs/gqlgen/graphql/playground"
	"github.com/gin-gonic/gin"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
	"go.uber.org/zap"

	"github.com/eleven-am/bistro/internal/graph"
)

const endpoint = "/graphql"

type Options struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	Playground      bool
}

// HealthFunc reports whether the storage backend is reachable.
type HealthFunc func(ctx context.Context) error

type Server struct {
	opts   Options
	schema *graph.Schema
	health HealthFunc
	logger *zap.Logger
	engine *gin.Engine
}

func New(schema *graph.Schema, health HealthFunc, opts Options, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.ShutdownTimeout == 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}

	gin.SetMode(gin.ReleaseMode)
	s := &Server{opts: opts, schema: schema, health: health, logger: logger}

	engine := gin.New()
	engine.Use(gin.Recovery(), requestID(), accessLog(logger))
	engine.POST(endpoint, s.handlePost)
	engine.GET(endpoint, s.handleGet)
	engine.GET("/healthz", s.handleHealth)
	s.engine = engine

	return s
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then drains in-flight requests within ShutdownTimeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.opts.Addr,
		Handler:      s.engine,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
		IdleTimeout:  s.opts.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", s.opts.Addr), zap.Bool("playground", s.opts.Playground))
		serverErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		s.logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped")
		return nil
	}
}

func (s *Server) handlePost(c *gin.Context) {
	var req graph.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusBadRequest, errorBody("invalid request body: "+err.Error()))
		return
	}
	s.execute(c, req)
}

// handleGet runs ?query= documents (queries only) or serves the playground.
func (s *Server) handleGet(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		if !s.opts.Playground {
			c.JSON(http.StatusNotFound, errorBody("playground disabled"))
			return
		}
		gin.WrapH(playground.Handler("Bistro GraphQL", endpoint))(c)
		return
	}

	if isMutation(query, c.Query("operationName")) {
		c.Header("Allow", http.MethodPost)
		c.JSON(http.StatusMethodNotAllowed, errorBody("mutations must be sent with POST"))
		return
	}

	req := graph.Request{Query: query, OperationName: c.Query("operationName")}
	if raw := c.Query("variables"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Variables); err != nil {
			c.JSON(http.StatusBadRequest, errorBody("invalid variables: "+err.Error()))
			return
		}
	}
	s.execute(c, req)
}

func (s *Server) execute(c *gin.Context, req graph.Request) {
	if strings.TrimSpace(req.Query) == "" {
		c.JSON(http.StatusBadRequest, errorBody("query is required"))
		return
	}

	resp := s.schema.Exec(c.Request.Context(), req)
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleHealth(c *gin.Context) {
	if s.health != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := s.health(ctx); err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// isMutation reports whether the selected operation of query is a mutation. Unparseable
// documents are left to the executor to reject.
func isMutation(query, operationName string) bool {
	doc, err := parser.ParseQuery(&ast.Source{Input: query})
	if err != nil {
		return false
	}
	for _, op := range doc.Operations {
		if operationName == "" || op.Name == operationName {
			if op.Operation == ast.Mutation {
				return true
			}
		}
	}
	return false
}

func errorBody(message string) gin.H {
	return gin.H{"errors": []gin.H{{"message": message}}}
}
