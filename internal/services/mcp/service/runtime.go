package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Transport selection for Run.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Config selects how the server is exposed.
type Config struct {
	Transport string
	HTTPAddr  string
}

// Run serves the MCP server until context cancellation. Stdio serves one
// session; HTTP serves the streamable transport for remote clients.
func (s *Server) Run(ctx context.Context, cfg Config) error {
	transport := cfg.Transport
	if transport == "" {
		transport = TransportStdio
	}
	switch transport {
	case TransportStdio:
		return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
	case TransportHTTP:
		return s.runHTTP(ctx, cfg.HTTPAddr)
	default:
		return fmt.Errorf("transport %q is not supported", transport)
	}
}

func (s *Server) runHTTP(ctx context.Context, addr string) error {
	if addr == "" {
		// Bind localhost-only by default; this server carries directory
		// credentials and has no authentication of its own yet.
		addr = "localhost:8081"
	}

	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcpServer
	}, nil)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()
	log.Printf("MCP HTTP transport listening on %s", addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
