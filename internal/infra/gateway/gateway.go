package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"ytfinder/internal/domain"
)

const serverVersion = "0.1.0"

// Transport names accepted by Run.
const (
	TransportStdio          = "stdio"
	TransportStreamableHTTP = "streamable-http"
)

// Engine is the read side of the SWR cache the tools answer from.
type Engine interface {
	Get(ctx context.Context) domain.Snapshot
}

// Gateway exposes the find-a-video tools and widget resources over MCP.
// It is a thin façade: all caching and upstream policy lives behind Engine.
type Gateway struct {
	engine    Engine
	logger    *zap.Logger
	metrics   domain.Metrics
	transport string
	httpAddr  string
	httpPath  string

	server *mcp.Server
}

type Options struct {
	Engine    Engine
	Logger    *zap.Logger
	Metrics   domain.Metrics
	Transport string
	HTTPAddr  string
	HTTPPath  string
}

func NewGateway(opts Options) (*Gateway, error) {
	if opts.Engine == nil {
		return nil, errors.New("engine is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = domain.NopMetrics{}
	}
	transport := opts.Transport
	if transport == "" {
		transport = TransportStdio
	}
	switch transport {
	case TransportStdio, TransportStreamableHTTP:
	default:
		return nil, fmt.Errorf("unsupported transport %q", transport)
	}
	httpAddr := opts.HTTPAddr
	if httpAddr == "" {
		httpAddr = domain.DefaultHTTPAddr
	}
	httpPath := opts.HTTPPath
	if httpPath == "" {
		httpPath = domain.DefaultHTTPPath
	}

	g := &Gateway{
		engine:    opts.Engine,
		logger:    logger.Named("gateway"),
		metrics:   metrics,
		transport: transport,
		httpAddr:  httpAddr,
		httpPath:  httpPath,
	}
	g.server = g.buildServer()
	return g, nil
}

func (g *Gateway) buildServer() *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "ytfinder",
		Version: serverVersion,
	}, &mcp.ServerOptions{
		HasTools:     true,
		HasResources: true,
	})

	mcp.AddTool(server, listVideosTool(), g.listVideosHandler())
	mcp.AddTool(server, searchVideosTool(), g.searchVideosHandler())
	mcp.AddTool(server, latestVideoTool(), g.latestVideoHandler())
	g.registerResources(server)

	return server
}

// Server returns the underlying MCP server, mainly for in-process tests.
func (g *Gateway) Server() *mcp.Server {
	return g.server
}

// Run serves MCP until the context is canceled.
func (g *Gateway) Run(ctx context.Context) error {
	switch g.transport {
	case TransportStreamableHTTP:
		return g.runStreamableHTTP(ctx)
	default:
		g.logger.Info("gateway starting (stdio transport)")
		return g.server.Run(ctx, &mcp.StdioTransport{})
	}
}

func (g *Gateway) runStreamableHTTP(ctx context.Context) error {
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return g.server
	}, &mcp.StreamableHTTPOptions{})

	mux := http.NewServeMux()
	mux.Handle(g.httpPath, handler)

	httpServer := &http.Server{
		Addr:    g.httpAddr,
		Handler: mux,
	}

	errChan := make(chan error, 1)
	go func() {
		g.logger.Info("gateway starting (streamable http transport)",
			zap.String("addr", g.httpAddr),
			zap.String("path", g.httpPath),
		)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("gateway http server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			g.logger.Error("gateway http server shutdown error", zap.Error(err))
			return err
		}
		g.logger.Info("gateway stopped")
		return nil
	}
}
