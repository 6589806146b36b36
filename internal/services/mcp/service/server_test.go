package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/kapilduraphe/okta-mcp-server/internal/directory"
	"github.com/kapilduraphe/okta-mcp-server/internal/testkit/dirfake"
)

func newTestServer(t *testing.T) (*Server, *dirfake.Client) {
	t.Helper()
	dir := dirfake.New()
	server, err := New(Deps{Directory: dir})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return server, dir
}

func TestNewRequiresDirectory(t *testing.T) {
	if _, err := New(Deps{}); err == nil {
		t.Fatal("expected error without a directory client")
	}
}

func TestCommandsAdvertisedOncePerRegistration(t *testing.T) {
	server, _ := newTestServer(t)
	commands := server.Commands()
	if len(commands) != 14 {
		t.Fatalf("expected 14 commands, got %d", len(commands))
	}
	seen := map[string]bool{}
	for _, cmd := range commands {
		if seen[cmd.Name] {
			t.Errorf("duplicate command %q", cmd.Name)
		}
		seen[cmd.Name] = true
	}
	for _, name := range []string{"okta_get_user", "okta_search_users", "okta_onboard_users", "okta_list_onboarding_runs"} {
		if !seen[name] {
			t.Errorf("missing command %q", name)
		}
	}
}

func TestToolForCommandDerivesSchema(t *testing.T) {
	server, _ := newTestServer(t)
	for _, cmd := range server.Commands() {
		if cmd.Name != "okta_search_users" {
			continue
		}
		tool := toolForCommand(cmd)
		inputSchema, ok := tool.InputSchema.(*jsonschema.Schema)
		if !ok || inputSchema == nil || inputSchema.Type != "object" {
			t.Fatalf("expected object input schema, got %+v", tool.InputSchema)
		}
		if _, ok := inputSchema.Properties["operator"]; !ok {
			t.Error("expected operator property in advertised schema")
		}
		return
	}
	t.Fatal("okta_search_users not registered")
}

func callTool(t *testing.T, server *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	registry := server.registry
	handler := dispatchHandler(registry, name)
	payload, err := json.Marshal(args)
	if err != nil {
		t.Fatalf("marshal args: %v", err)
	}
	result, err := handler(context.Background(), &mcp.CallToolRequest{
		Params: &mcp.CallToolParamsRaw{Name: name, Arguments: json.RawMessage(payload)},
	})
	if err != nil {
		t.Fatalf("handler must not raise: %v", err)
	}
	return result
}

func textOf(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	var parts []string
	for _, content := range result.Content {
		text, ok := content.(*mcp.TextContent)
		if !ok {
			t.Fatalf("unexpected content type %T", content)
		}
		parts = append(parts, text.Text)
	}
	return strings.Join(parts, "\n")
}

func TestDispatchHandlerSuccess(t *testing.T) {
	server, dir := newTestServer(t)
	dir.Users["u1"] = directory.Record{ID: "u1", Status: "ACTIVE", Profile: map[string]string{"email": "a@b.com"}}

	result := callTool(t, server, "okta_get_user", map[string]any{"user": "u1"})
	if result.IsError {
		t.Fatalf("unexpected error result: %q", textOf(t, result))
	}
	if !strings.Contains(textOf(t, result), "id: u1") {
		t.Errorf("unexpected text %q", textOf(t, result))
	}
}

func TestDispatchHandlerValidationError(t *testing.T) {
	server, _ := newTestServer(t)
	result := callTool(t, server, "okta_get_user", map[string]any{})
	if !result.IsError {
		t.Fatal("expected error result for missing required argument")
	}
	if !strings.Contains(textOf(t, result), `"user"`) {
		t.Errorf("expected offending field cited, got %q", textOf(t, result))
	}
}

func TestDispatchHandlerMalformedArguments(t *testing.T) {
	server, _ := newTestServer(t)
	handler := dispatchHandler(server.registry, "okta_get_user")
	result, err := handler(context.Background(), &mcp.CallToolRequest{
		Params: &mcp.CallToolParamsRaw{Name: "okta_get_user", Arguments: json.RawMessage(`[1,2]`)},
	})
	if err != nil {
		t.Fatalf("handler must not raise: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result for non-object arguments")
	}
}

func TestRunRejectsUnknownTransport(t *testing.T) {
	server, _ := newTestServer(t)
	if err := server.Run(context.Background(), Config{Transport: "carrier-pigeon"}); err == nil {
		t.Fatal("expected error for unsupported transport")
	}
}
