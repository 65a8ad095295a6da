package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/macropower/folio/pkg/filetype"
	"github.com/macropower/folio/pkg/override"
	"github.com/macropower/folio/pkg/version"
)

// Workspace is the workspace served by a [Server].
type Workspace interface {
	FileID(p string) (override.FileID, error)
	Overrides() *override.Store
	Types() *filetype.Resolver
}

// Server is an MCP server exposing file type override tools.
type Server struct {
	ws       Workspace
	server   *mcp.Server
	detector *filetype.Detector
	tracer   trace.Tracer
	address  string
}

// ServerOpt configures a [Server].
type ServerOpt func(*Server)

// WithAddress serves streamable HTTP on address instead of stdio.
func WithAddress(address string) ServerOpt {
	return func(s *Server) {
		s.address = address
	}
}

// WithDetector sets the detector used to canonicalize type names.
func WithDetector(d *filetype.Detector) ServerOpt {
	return func(s *Server) {
		s.detector = d
	}
}

// NewServer creates a new MCP server for ws.
func NewServer(ws Workspace, opts ...ServerOpt) *Server {
	impl := &mcp.Implementation{
		Name:    name,
		Version: version.GetVersion(),
	}

	s := &Server{
		ws:       ws,
		server:   mcp.NewServer(impl, &mcp.ServerOptions{Instructions: instructions}),
		detector: filetype.NewDetector(),
		tracer:   otel.Tracer("mcp"),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.registerTools()

	return s
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_file_type",
		Description: "Get the effective content type of a file, and whether it comes from an override or from detection.",
	}, WithTracing(s.tracer, s.handleGetFileType))

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_file_type_overrides",
		Description: "List every file type override of the workspace, sorted by path.",
	}, WithTracing(s.tracer, s.handleListOverrides))

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "override_file_type",
		Description: "Assign a content type to one or more files, replacing any existing override.",
	}, WithTracing(s.tracer, s.handleOverride))

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "revert_file_type_overrides",
		Description: "Remove the overrides of the given files so they use their detected types again. Files without an override are skipped.",
	}, WithTracing(s.tracer, s.handleRevert))
}

// Server returns the underlying MCP server.
func (s *Server) Server() *mcp.Server {
	return s.server
}

// Serve runs the server until ctx is done or the client disconnects.
func (s *Server) Serve(ctx context.Context) error {
	slog.InfoContext(ctx, "starting MCP server", slog.String("address", s.address))

	if s.address == "" {
		err := s.server.Run(ctx, &mcp.StdioTransport{})
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
			slog.Warn("shutdown MCP server", slog.Any("err", err))
		}
	}()

	err := server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("MCP server failed: %w", err)
	}

	return nil
}
