package command

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/kapilduraphe/okta-mcp-server/internal/directory"
	"github.com/kapilduraphe/okta-mcp-server/internal/schema"
)

func newTestRegistry(t *testing.T, commands ...Command) *Registry {
	t.Helper()
	registry := NewRegistry()
	for _, cmd := range commands {
		if err := registry.Register(cmd); err != nil {
			t.Fatalf("register %q: %v", cmd.Name, err)
		}
	}
	return registry
}

func echoCommand(name string, calls *int) Command {
	return Command{
		Name:        name,
		Description: "echoes its input",
		Input: []schema.Field{
			{Name: "text", Type: schema.TypeString, Required: true},
		},
		Handler: func(ctx context.Context, args map[string]any) (*Result, error) {
			if calls != nil {
				*calls++
			}
			return Text(args["text"].(string)), nil
		},
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	registry := newTestRegistry(t, echoCommand("echo", nil))
	if err := registry.Register(echoCommand("echo", nil)); err == nil {
		t.Fatal("expected error for duplicate registration")
	}
}

func TestCommandsSnapshot(t *testing.T) {
	registry := newTestRegistry(t,
		echoCommand("zeta", nil),
		echoCommand("alpha", nil),
		echoCommand("mid", nil),
	)
	commands := registry.Commands()
	if len(commands) != 3 {
		t.Fatalf("expected 3 commands, got %d", len(commands))
	}
	names := []string{commands[0].Name, commands[1].Name, commands[2].Name}
	if names[0] != "alpha" || names[1] != "mid" || names[2] != "zeta" {
		t.Errorf("expected sorted names, got %v", names)
	}
	seen := map[string]bool{}
	for _, cmd := range commands {
		if seen[cmd.Name] {
			t.Errorf("duplicate descriptor %q", cmd.Name)
		}
		seen[cmd.Name] = true
		if len(cmd.Input) != 1 || cmd.Input[0].Name != "text" {
			t.Errorf("descriptor %q lost its input shape", cmd.Name)
		}
	}
}

func TestDispatchUnknownCommand(t *testing.T) {
	registry := newTestRegistry(t)
	result := registry.Dispatch(context.Background(), "nope", nil)
	if !result.IsError {
		t.Fatal("expected error result")
	}
	if !strings.Contains(result.JoinedText(), `unknown command "nope"`) {
		t.Errorf("expected message naming the unknown command, got %q", result.JoinedText())
	}
}

func TestDispatchValidationFailureSkipsHandler(t *testing.T) {
	calls := 0
	registry := newTestRegistry(t, echoCommand("echo", &calls))

	result := registry.Dispatch(context.Background(), "echo", map[string]any{})
	if !result.IsError {
		t.Fatal("expected error result for missing required field")
	}
	if !strings.Contains(result.JoinedText(), `"text"`) {
		t.Errorf("expected message citing the field, got %q", result.JoinedText())
	}
	if calls != 0 {
		t.Errorf("handler must not run on validation failure, got %d calls", calls)
	}
}

func TestDispatchHandlerErrorBecomesResult(t *testing.T) {
	registry := newTestRegistry(t, Command{
		Name: "boom",
		Handler: func(ctx context.Context, args map[string]any) (*Result, error) {
			return nil, fmt.Errorf("connection reset")
		},
	})
	result := registry.Dispatch(context.Background(), "boom", nil)
	if !result.IsError {
		t.Fatal("expected error result")
	}
	if !strings.Contains(result.JoinedText(), "boom failed: connection reset") {
		t.Errorf("expected annotated failure, got %q", result.JoinedText())
	}
}

func TestDispatchNotFoundKeepsMessage(t *testing.T) {
	registry := newTestRegistry(t, Command{
		Name: "okta_activate_user",
		Handler: func(ctx context.Context, args map[string]any) (*Result, error) {
			return nil, &directory.NotFoundError{Key: "u404"}
		},
	})
	result := registry.Dispatch(context.Background(), "okta_activate_user", nil)
	if !result.IsError {
		t.Fatal("expected error result")
	}
	if !strings.Contains(result.JoinedText(), "u404 not found") {
		t.Errorf("expected not-found detail, got %q", result.JoinedText())
	}
}

func TestDispatchSuccess(t *testing.T) {
	registry := newTestRegistry(t, echoCommand("echo", nil))
	result := registry.Dispatch(context.Background(), "echo", map[string]any{"text": "hello"})
	if result.IsError {
		t.Fatalf("unexpected error result: %q", result.JoinedText())
	}
	if result.JoinedText() != "hello" {
		t.Errorf("expected echoed text, got %q", result.JoinedText())
	}
}
