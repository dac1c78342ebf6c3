package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/macropower/foldsort/pkg/version"
)

// AddressStdio selects the stdio transport.
const AddressStdio = "stdio"

// Server implements the MCP server for foldsort.
type Server struct {
	server   *mcp.Server
	tracer   trace.Tracer
	address  string
	defaults Defaults
}

// ServerOpt configures a [Server].
type ServerOpt func(*Server)

// WithDefaults sets the values used for inputs a tool call leaves unset.
func WithDefaults(d Defaults) ServerOpt {
	return func(s *Server) {
		s.defaults = d
	}
}

// WithTracer sets the tracer used for tool call spans.
func WithTracer(tracer trace.Tracer) ServerOpt {
	return func(s *Server) {
		s.tracer = tracer
	}
}

// NewServer creates a new MCP server. An empty address or [AddressStdio]
// serves over stdio; anything else is a host:port for streamable HTTP.
func NewServer(address string, opts ...ServerOpt) *Server {
	impl := &mcp.Implementation{
		Name:    name,
		Version: version.GetVersion(),
	}

	s := &Server{
		address: address,
		server:  mcp.NewServer(impl, &mcp.ServerOptions{Instructions: instructions}),
		tracer:  otel.Tracer("mcp-server"),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.registerTools()

	return s
}

// registerTools registers all available tools with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name: "sort_folds",
		Description: "Sort the segments of a text by their key line. Each closed fold is one segment and moves intact; " +
			"every other line is its own segment. Equal keys keep their original order.",
		InputSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: newSortProperties(),
			Required:   []string{"text"},
		},
	}, WithTracing(s.tracer, s.handleSortFolds))

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_segments",
		Description: "List the segments a text is partitioned into, with the line range and key line of each.",
		InputSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: newFoldProperties(),
			Required:   []string{"text"},
		},
	}, WithTracing(s.tracer, s.handleListSegments))
}

func (s *Server) Server() *mcp.Server {
	return s.server
}

// Serve starts the MCP server and blocks until ctx is done.
func (s *Server) Serve(ctx context.Context) error {
	slog.InfoContext(ctx, "starting MCP server", slog.String("address", s.address))

	if s.address == "" || s.address == AddressStdio {
		err := s.serveStdio(ctx)
		if err != nil {
			return fmt.Errorf("serve stdio: %w", err)
		}

		return nil
	}

	err := s.serveHTTP(ctx)
	if err != nil {
		return fmt.Errorf("serve HTTP: %w", err)
	}

	return nil
}

func (s *Server) serveHTTP(ctx context.Context) error {
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.server
	}, nil)

	server := &http.Server{
		Addr:    s.address,
		Handler: handler,

		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()

		err := server.Shutdown(shutdownCtx)
		if err != nil {
			slog.Error("shut down MCP server", slog.Any("err", err))
		}
	}()

	err := server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("MCP server failed: %w", err)
	}

	return nil
}

func (s *Server) serveStdio(ctx context.Context) error {
	t := mcp.NewLoggingTransport(mcp.NewStdioTransport(), os.Stderr)

	err := s.server.Run(ctx, t)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("MCP server failed: %w", err)
	}

	return nil
}
