// Package oktamcp parses okta-mcp command flags and wires the directory
// client, onboarding rules, and audit store into the MCP server.
package oktamcp

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/kapilduraphe/okta-mcp-server/internal/audit"
	auditsqlite "github.com/kapilduraphe/okta-mcp-server/internal/audit/sqlite"
	"github.com/kapilduraphe/okta-mcp-server/internal/directory"
	"github.com/kapilduraphe/okta-mcp-server/internal/onboarding"
	"github.com/kapilduraphe/okta-mcp-server/internal/platform/config"
	"github.com/kapilduraphe/okta-mcp-server/internal/platform/otel"
	"github.com/kapilduraphe/okta-mcp-server/internal/services/mcp/service"
)

// Config holds okta-mcp command configuration. Credentials come from the
// environment only; flags cover the operational knobs.
type Config struct {
	OrgURL         string `env:"OKTA_ORG_URL"`
	APIToken       string `env:"OKTA_API_TOKEN"`
	ClientID       string `env:"OKTA_CLIENT_ID"`
	PrivateKey     string `env:"OKTA_PRIVATE_KEY"`
	PrivateKeyFile string `env:"OKTA_PRIVATE_KEY_FILE"`
	Scopes         string `env:"OKTA_SCOPES" envDefault:"okta.users.manage okta.groups.manage okta.apps.manage okta.logs.read"`

	Transport string `env:"OKTA_MCP_TRANSPORT"  envDefault:"stdio"`
	HTTPAddr  string `env:"OKTA_MCP_HTTP_ADDR"  envDefault:"localhost:8081"`
	RulesFile string `env:"OKTA_MCP_RULES_FILE"`
	AuditDB   string `env:"OKTA_MCP_AUDIT_DB"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.OrgURL, "org-url", cfg.OrgURL, "Okta organization URL, e.g. https://acme.okta.com")
	fs.StringVar(&cfg.Transport, "transport", cfg.Transport, "Transport type: stdio or http")
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP server address (for HTTP transport)")
	fs.StringVar(&cfg.RulesFile, "rules-file", cfg.RulesFile, "YAML file with onboarding group assignment rules")
	fs.StringVar(&cfg.AuditDB, "audit-db", cfg.AuditDB, "SQLite file recording onboarding runs")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the MCP server with a live directory client.
func Run(ctx context.Context, cfg Config) error {
	shutdown, err := otel.Setup(ctx, "okta-mcp")
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			log.Printf("otel shutdown: %v", err)
		}
	}()

	auth, err := authorizer(cfg)
	if err != nil {
		return err
	}
	dir, err := directory.NewOktaClient(cfg.OrgURL, auth, nil)
	if err != nil {
		return err
	}

	var rules onboarding.GroupRules
	if cfg.RulesFile != "" {
		rules, err = onboarding.LoadRulesFile(cfg.RulesFile)
		if err != nil {
			return fmt.Errorf("load onboarding rules: %w", err)
		}
	}

	var runs audit.RunStore
	if cfg.AuditDB != "" {
		store, err := auditsqlite.Open(cfg.AuditDB)
		if err != nil {
			return fmt.Errorf("open audit store: %w", err)
		}
		defer func() {
			if err := store.Close(); err != nil {
				log.Printf("close audit store: %v", err)
			}
		}()
		runs = store
	}

	server, err := service.New(service.Deps{Directory: dir, Rules: rules, Runs: runs})
	if err != nil {
		return err
	}
	return server.Run(ctx, service.Config{Transport: cfg.Transport, HTTPAddr: cfg.HTTPAddr})
}

// authorizer picks the credential scheme: a static API token when present,
// otherwise the OAuth2 private-key-JWT flow.
func authorizer(cfg Config) (directory.Authorizer, error) {
	if cfg.APIToken != "" {
		return directory.APITokenAuth{Token: cfg.APIToken}, nil
	}
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("either OKTA_API_TOKEN or OKTA_CLIENT_ID with a private key must be set")
	}

	keyPEM := []byte(cfg.PrivateKey)
	if len(keyPEM) == 0 {
		if cfg.PrivateKeyFile == "" {
			return nil, fmt.Errorf("OKTA_PRIVATE_KEY or OKTA_PRIVATE_KEY_FILE must be set for client %s", cfg.ClientID)
		}
		data, err := os.ReadFile(cfg.PrivateKeyFile)
		if err != nil {
			return nil, fmt.Errorf("read private key file: %w", err)
		}
		keyPEM = data
	}
	key, err := directory.ParseRSAPrivateKey(keyPEM)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return &directory.PrivateKeyJWTAuth{
		OrgURL:   cfg.OrgURL,
		ClientID: cfg.ClientID,
		Scopes:   strings.Fields(cfg.Scopes),
		Key:      key,
	}, nil
}
