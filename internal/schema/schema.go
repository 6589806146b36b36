// Package schema declares command input shapes as field descriptors and
// validates untyped argument maps against them before any handler runs.
package schema

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/google/jsonschema-go/jsonschema"

	platformerrors "github.com/kapilduraphe/okta-mcp-server/internal/platform/errors"
)

// Type is the declared type of a field.
type Type string

const (
	TypeString Type = "string"
	TypeInt    Type = "integer"
	TypeBool   Type = "boolean"
)

// Field describes one input field of a command.
type Field struct {
	Name        string
	Type        Type
	Description string
	Required    bool
	Default     any      // applied when an optional field is absent
	Enum        []string // allowed values for string fields
	Min         *int     // inclusive lower bound for integer fields
	Max         *int     // inclusive upper bound for integer fields
}

// IntRange returns inclusive bounds for an integer field.
func IntRange(min, max int) (*int, *int) {
	return &min, &max
}

// Validate checks raw against fields and returns a defaulted, typed argument
// map, or a VALIDATION error naming the first offending field in declaration
// order. Validation is pure: it never touches the directory.
func Validate(fields []Field, raw map[string]any) (map[string]any, error) {
	args := make(map[string]any, len(fields))
	for _, field := range fields {
		value, present := raw[field.Name]
		if !present || value == nil {
			if field.Required {
				return nil, validationError(field.Name, "required field is missing")
			}
			if field.Default != nil {
				args[field.Name] = field.Default
			}
			continue
		}
		typed, err := coerce(field, value)
		if err != nil {
			return nil, err
		}
		args[field.Name] = typed
	}
	return args, nil
}

func coerce(field Field, value any) (any, error) {
	switch field.Type {
	case TypeString:
		text, ok := value.(string)
		if !ok {
			return nil, validationError(field.Name, fmt.Sprintf("expected a string, got %T", value))
		}
		if len(field.Enum) > 0 && !contains(field.Enum, text) {
			return nil, validationError(field.Name, fmt.Sprintf("value %q is not one of %v", text, field.Enum))
		}
		return text, nil
	case TypeInt:
		number, err := intValue(value)
		if err != nil {
			return nil, validationError(field.Name, err.Error())
		}
		if field.Min != nil && number < *field.Min {
			return nil, validationError(field.Name, fmt.Sprintf("value %d is below the minimum %d", number, *field.Min))
		}
		if field.Max != nil && number > *field.Max {
			return nil, validationError(field.Name, fmt.Sprintf("value %d is above the maximum %d", number, *field.Max))
		}
		return number, nil
	case TypeBool:
		flag, ok := value.(bool)
		if !ok {
			return nil, validationError(field.Name, fmt.Sprintf("expected a boolean, got %T", value))
		}
		return flag, nil
	default:
		return nil, validationError(field.Name, fmt.Sprintf("field has unknown declared type %q", field.Type))
	}
}

// intValue accepts int and the float64 JSON decoding produces for numbers,
// rejecting fractional values.
func intValue(value any) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("expected an integer, got %v", v)
		}
		return int(v), nil
	default:
		return 0, fmt.Errorf("expected an integer, got %T", value)
	}
}

func validationError(field, reason string) error {
	return platformerrors.WithMetadata(
		platformerrors.CodeValidation,
		fmt.Sprintf("invalid argument %q: %s", field, reason),
		map[string]string{"field": field},
	)
}

func contains(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}

// InputSchema derives the JSON Schema advertised for a command's input from
// its field descriptors, so tools/list and validation share one declaration.
func InputSchema(fields []Field) *jsonschema.Schema {
	properties := make(map[string]*jsonschema.Schema, len(fields))
	var required []string
	for _, field := range fields {
		property := &jsonschema.Schema{
			Type:        string(field.Type),
			Description: field.Description,
		}
		for _, value := range field.Enum {
			property.Enum = append(property.Enum, value)
		}
		if field.Min != nil {
			minimum := float64(*field.Min)
			property.Minimum = &minimum
		}
		if field.Max != nil {
			maximum := float64(*field.Max)
			property.Maximum = &maximum
		}
		if field.Default != nil {
			property.Default = mustMarshal(field.Default)
		}
		properties[field.Name] = property
		if field.Required {
			required = append(required, field.Name)
		}
	}
	return &jsonschema.Schema{
		Type:       "object",
		Properties: properties,
		Required:   required,
	}
}

// mustMarshal encodes a default value; descriptors are declared at startup
// with plain scalars, so failure here is a programming error.
func mustMarshal(value any) json.RawMessage {
	encoded, err := json.Marshal(value)
	if err != nil {
		panic(fmt.Sprintf("schema: encode default value %v: %v", value, err))
	}
	return encoded
}
