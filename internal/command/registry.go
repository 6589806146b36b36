package command

import (
	"context"
	"fmt"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/kapilduraphe/okta-mcp-server/internal/directory"
	platformerrors "github.com/kapilduraphe/okta-mcp-server/internal/platform/errors"
	"github.com/kapilduraphe/okta-mcp-server/internal/schema"
)

const tracerName = "okta-mcp/command"

// Registry holds the command set. It is populated at startup and read-only
// afterwards; Register is not safe for concurrent use with Dispatch.
type Registry struct {
	commands map[string]Command
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]Command)}
}

// Register adds a command. Duplicate names are a startup-time programming
// error and are rejected.
func (r *Registry) Register(cmd Command) error {
	if cmd.Name == "" {
		return fmt.Errorf("command name is required")
	}
	if cmd.Handler == nil {
		return fmt.Errorf("command %q has no handler", cmd.Name)
	}
	if _, exists := r.commands[cmd.Name]; exists {
		return fmt.Errorf("command %q is already registered", cmd.Name)
	}
	r.commands[cmd.Name] = cmd
	return nil
}

// Commands returns a name-sorted snapshot of the registered commands.
func (r *Registry) Commands() []Command {
	commands := make([]Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		commands = append(commands, cmd)
	}
	sort.Slice(commands, func(i, j int) bool {
		return commands[i].Name < commands[j].Name
	})
	return commands
}

// Dispatch runs the validate → invoke → normalize pipeline for one
// invocation. It never returns a Go error: unknown names, validation
// failures and handler failures all become well-formed error Results,
// because the carrying protocol has no transport-level error channel.
func (r *Registry) Dispatch(ctx context.Context, name string, raw map[string]any) *Result {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "command.dispatch")
	span.SetAttributes(attribute.String("command.name", name))
	defer span.End()

	cmd, ok := r.commands[name]
	if !ok {
		span.SetStatus(codes.Error, "unknown command")
		return Errorf("unknown command %q", name)
	}

	args, err := validateInput(cmd, raw)
	if err != nil {
		span.SetStatus(codes.Error, "validation failed")
		return Errorf("%s: %s", name, err.Error())
	}

	result, err := cmd.Handler(ctx, args)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return handlerFailure(name, err)
	}
	if result == nil {
		result = Text("")
	}
	if result.IsError {
		span.SetStatus(codes.Error, result.JoinedText())
	}
	return result
}

func validateInput(cmd Command, raw map[string]any) (map[string]any, error) {
	if raw == nil {
		raw = map[string]any{}
	}
	return schema.Validate(cmd.Input, raw)
}

// handlerFailure converts a handler error into an error Result annotated
// with the command name. Directory not-found conditions keep their
// descriptive message so handlers that treat them as hard errors still read
// well.
func handlerFailure(name string, err error) *Result {
	if directory.IsNotFound(err) || platformerrors.HasCode(err, platformerrors.CodeNotFound) {
		return Errorf("%s: %s", name, err.Error())
	}
	return Errorf("%s failed: %s", name, err.Error())
}
