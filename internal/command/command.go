// Package command implements the command registry and the dispatch pipeline
// that turns a name plus untyped arguments into a validated handler
// invocation with a uniform result shape.
package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/kapilduraphe/okta-mcp-server/internal/schema"
)

// Handler executes a command over validated, defaulted arguments.
type Handler func(ctx context.Context, args map[string]any) (*Result, error)

// Command pairs a name and input shape with its handler. Commands are
// immutable once registered.
type Command struct {
	Name        string
	Description string
	Input       []schema.Field
	Handler     Handler
}

// Block is one content block of a result.
type Block struct {
	Kind string
	Text string
}

// Result is the uniform invocation outcome. It is always well-formed; the
// carrying protocol has no separate error channel, so failures travel inside
// it with IsError set.
type Result struct {
	Blocks  []Block
	IsError bool
}

// Text builds a successful single-block text result.
func Text(text string) *Result {
	return &Result{Blocks: []Block{{Kind: "text", Text: text}}}
}

// Textf builds a successful formatted text result.
func Textf(format string, args ...any) *Result {
	return Text(fmt.Sprintf(format, args...))
}

// Errorf builds an error result with a formatted message.
func Errorf(format string, args ...any) *Result {
	return &Result{
		Blocks:  []Block{{Kind: "text", Text: fmt.Sprintf(format, args...)}},
		IsError: true,
	}
}

// JoinedText returns the concatenated text of all blocks, for logging and
// tests.
func (r *Result) JoinedText() string {
	parts := make([]string, 0, len(r.Blocks))
	for _, block := range r.Blocks {
		parts = append(parts, block.Text)
	}
	return strings.Join(parts, "\n")
}
