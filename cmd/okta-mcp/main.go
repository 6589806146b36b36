package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/kapilduraphe/okta-mcp-server/internal/cmd/oktamcp"
	"github.com/kapilduraphe/okta-mcp-server/internal/platform/config"
)

// main starts the Okta MCP server on stdio or HTTP.
func main() {
	cfg, err := oktamcp.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	log.SetPrefix("[okta-mcp] ")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := oktamcp.Run(ctx, cfg); err != nil {
		log.Fatalf("failed to serve MCP: %v", err)
	}
}
