// Package graph composes the per-entity query and mutation fragments into the one executable
// GraphQL schema served by bistro.
package graph

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/graph-gophers/graphql-go"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"
	"go.uber.org/zap"

	"github.com/eleven-am/bistro/internal/events"
	"github.com/eleven-am/bistro/internal/repository"
)

// Defaults applied when Options leaves a field zero.
const (
	DefaultResolverTimeout = 10 * time.Second
	DefaultMaxParallelism  = 10
)

type Options struct {
	ResolverTimeout time.Duration
	MaxParallelism  int
	Events          events.Publisher
	Logger          *zap.Logger
}

// Request is one GraphQL operation as posted over HTTP.
type Request struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

// Root is handed to the executor for both root types. Every fragment is embedded exactly once,
// so its resolver methods are promoted onto Root.
type Root struct {
	*CategoryQuery
	*MenuQuery
	*ReservationQuery

	*CategoryMutation
	*MenuMutation
	*ReservationMutation
}

type Schema struct {
	schema *graphql.Schema
	sdl    string
	logger *zap.Logger
}

// NewSchema wires repos into the fragments, composes the SDL and checks every declared field
// against its resolver.
func NewSchema(repos repository.Repositories, opts Options) (*Schema, error) {
	if repos.Categories == nil || repos.Menus == nil || repos.Reservations == nil {
		return nil, errors.New("graph: all three repositories are required")
	}
	if opts.ResolverTimeout <= 0 {
		opts.ResolverTimeout = DefaultResolverTimeout
	}
	if opts.MaxParallelism <= 0 {
		opts.MaxParallelism = DefaultMaxParallelism
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Events == nil {
		opts.Events = events.Noop{}
	}

	b := &base{timeout: opts.ResolverTimeout, publisher: opts.Events, logger: opts.Logger}
	root := &Root{
		CategoryQuery:    &CategoryQuery{base: b, repo: repos.Categories},
		MenuQuery:        &MenuQuery{base: b, repo: repos.Menus},
		ReservationQuery: &ReservationQuery{base: b, repo: repos.Reservations},

		CategoryMutation:    &CategoryMutation{base: b, repo: repos.Categories},
		MenuMutation:        &MenuMutation{base: b, repo: repos.Menus},
		ReservationMutation: &ReservationMutation{base: b, repo: repos.Reservations},
	}

	sdl := ComposeSDL()
	parsed, err := graphql.ParseSchema(sdl, root,
		graphql.MaxParallelism(opts.MaxParallelism),
		graphql.Logger(panicLogger{logger: opts.Logger}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}

	return &Schema{schema: parsed, sdl: sdl, logger: opts.Logger}, nil
}

// ComposeSDL concatenates the type definitions and the root field declarations of every
// fragment. The set of fragments is fixed.
func ComposeSDL() string {
	var sb strings.Builder

	sb.WriteString("schema {\n\tquery: Query\n\tmutation: Mutation\n}\n")
	for _, defs := range []string{scalarTypeDefs, categoryTypeDefs, menuTypeDefs, reservationTypeDefs} {
		sb.WriteString(defs)
	}

	sb.WriteString("\ntype Query {")
	for _, fields := range []string{categoryQueryFields, menuQueryFields, reservationQueryFields} {
		sb.WriteString(fields)
	}
	sb.WriteString("}\n")

	sb.WriteString("\ntype Mutation {")
	for _, fields := range []string{categoryMutationFields, menuMutationFields, reservationMutationFields} {
		sb.WriteString(fields)
	}
	sb.WriteString("}\n")

	return sb.String()
}

// SDL returns the composed schema document.
func (s *Schema) SDL() string {
	return s.sdl
}

// Format pretty-prints the composed schema.
func (s *Schema) Format() (string, error) {
	return FormatSDL(s.sdl)
}

// FormatSDL validates sdl as a standalone schema and prints it in canonical form.
func FormatSDL(sdl string) (string, error) {
	parsed, err := gqlparser.LoadSchema(&ast.Source{Name: "schema.graphql", Input: sdl})
	if err != nil {
		return "", fmt.Errorf("invalid schema: %w", err)
	}

	var buf bytes.Buffer
	formatter.NewFormatter(&buf, formatter.WithIndent("  ")).FormatSchema(parsed)
	return buf.String(), nil
}

// Exec parses, validates and runs one operation. Documents that fail validation produce errors
// without any resolver running; resolver failures become field errors next to partial data.
func (s *Schema) Exec(ctx context.Context, req Request) *graphql.Response {
	resp := s.schema.Exec(ctx, req.Query, req.OperationName, req.Variables)
	if len(resp.Errors) > 0 {
		s.logger.Debug("operation completed with errors",
			zap.String("operation", req.OperationName),
			zap.Int("errors", len(resp.Errors)),
		)
	}
	return resp
}

type panicLogger struct {
	logger *zap.Logger
}

func (l panicLogger) LogPanic(_ context.Context, value interface{}) {
	l.logger.Error("resolver panic", zap.Any("panic", value), zap.Stack("stack"))
}
