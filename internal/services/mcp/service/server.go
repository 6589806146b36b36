package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/kapilduraphe/okta-mcp-server/internal/audit"
	"github.com/kapilduraphe/okta-mcp-server/internal/command"
	"github.com/kapilduraphe/okta-mcp-server/internal/directory"
	"github.com/kapilduraphe/okta-mcp-server/internal/onboarding"
	"github.com/kapilduraphe/okta-mcp-server/internal/schema"
	"github.com/kapilduraphe/okta-mcp-server/internal/services/mcp/domain"
)

const (
	serverName = "okta-mcp-server"
	// serverVersion identifies the MCP server version.
	serverVersion = "0.1.0"
)

// registrationModule groups related commands so startup failures name the
// module that broke.
type registrationModule struct {
	name     string
	register func(*command.Registry) error
}

const (
	userToolsModuleName       = "user-tools"
	groupToolsModuleName      = "group-tools"
	eventToolsModuleName      = "event-tools"
	searchToolsModuleName     = "search-tools"
	onboardingToolsModuleName = "onboarding-tools"
)

// Deps are the collaborators injected into the server at construction time.
// The directory client is created once at process start and shared
// read-only.
type Deps struct {
	Directory directory.Client
	Rules     onboarding.GroupRules
	Runs      audit.RunStore // optional
}

// Server hosts the MCP server over a populated command registry.
type Server struct {
	mcpServer *mcp.Server
	registry  *command.Registry
}

// New builds the registry from the registration modules and binds it to an
// MCP server.
func New(deps Deps) (*Server, error) {
	if deps.Directory == nil {
		return nil, fmt.Errorf("directory client is required")
	}

	registry := command.NewRegistry()
	for _, module := range registrationModules(deps) {
		if err := module.register(registry); err != nil {
			return nil, fmt.Errorf("register module %q: %w", module.name, err)
		}
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)
	for _, cmd := range registry.Commands() {
		mcpServer.AddTool(toolForCommand(cmd), dispatchHandler(registry, cmd.Name))
	}

	return &Server{mcpServer: mcpServer, registry: registry}, nil
}

func registrationModules(deps Deps) []registrationModule {
	return []registrationModule{
		{
			name: userToolsModuleName,
			register: func(registry *command.Registry) error {
				return registerAll(registry,
					domain.UserGetCommand(deps.Directory),
					domain.UserListCommand(deps.Directory),
					domain.UserCreateCommand(deps.Directory),
					domain.UserActivateCommand(deps.Directory),
					domain.UserDeactivateCommand(deps.Directory),
					domain.UserDeleteCommand(deps.Directory),
					domain.ApplicationGrantCommand(deps.Directory),
				)
			},
		},
		{
			name: groupToolsModuleName,
			register: func(registry *command.Registry) error {
				return registerAll(registry,
					domain.GroupListCommand(deps.Directory),
					domain.GroupAddMemberCommand(deps.Directory),
					domain.GroupRemoveMemberCommand(deps.Directory),
				)
			},
		},
		{
			name: eventToolsModuleName,
			register: func(registry *command.Registry) error {
				return registerAll(registry, domain.EventListCommand(deps.Directory))
			},
		},
		{
			name: searchToolsModuleName,
			register: func(registry *command.Registry) error {
				return registerAll(registry, domain.SearchUsersCommand(deps.Directory))
			},
		},
		{
			name: onboardingToolsModuleName,
			register: func(registry *command.Registry) error {
				return registerAll(registry,
					domain.OnboardUsersCommand(deps.Directory, deps.Rules, deps.Runs),
					domain.OnboardingRunsCommand(deps.Runs),
				)
			},
		},
	}
}

func registerAll(registry *command.Registry, commands ...command.Command) error {
	for _, cmd := range commands {
		if err := registry.Register(cmd); err != nil {
			return err
		}
	}
	return nil
}

// toolForCommand advertises a command as an MCP tool, deriving the input
// schema from the same field descriptors the validator enforces.
func toolForCommand(cmd command.Command) *mcp.Tool {
	return &mcp.Tool{
		Name:        cmd.Name,
		Description: cmd.Description,
		InputSchema: schema.InputSchema(cmd.Input),
	}
}

// dispatchHandler routes a tools/call through the dispatcher. Dispatch never
// fails; every fault travels inside the result with IsError set, because MCP
// has no separate error channel for business faults.
func dispatchHandler(registry *command.Registry, name string) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var raw map[string]any
		if req != nil && req.Params != nil && len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, &raw); err != nil {
				return resultToMCP(command.Errorf("%s: arguments are not a JSON object: %v", name, err)), nil
			}
		}
		return resultToMCP(registry.Dispatch(ctx, name, raw)), nil
	}
}

func resultToMCP(result *command.Result) *mcp.CallToolResult {
	content := make([]mcp.Content, 0, len(result.Blocks))
	for _, block := range result.Blocks {
		content = append(content, &mcp.TextContent{Text: block.Text})
	}
	return &mcp.CallToolResult{Content: content, IsError: result.IsError}
}

// Commands exposes the registry snapshot, used by tests and diagnostics.
func (s *Server) Commands() []command.Command {
	return s.registry.Commands()
}
