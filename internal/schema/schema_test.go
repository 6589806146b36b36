package schema

import (
	"testing"

	platformerrors "github.com/kapilduraphe/okta-mcp-server/internal/platform/errors"
)

func limitField() Field {
	min, max := IntRange(1, 200)
	return Field{Name: "limit", Type: TypeInt, Default: 50, Min: min, Max: max}
}

func testFields() []Field {
	return []Field{
		{Name: "attribute", Type: TypeString, Required: true},
		{Name: "operator", Type: TypeString, Required: true, Enum: []string{"eq", "sw", "ew", "co", "pr"}},
		{Name: "value", Type: TypeString},
		limitField(),
		{Name: "include_inactive", Type: TypeBool, Default: false},
	}
}

func TestValidateAppliesDefaults(t *testing.T) {
	args, err := Validate(testFields(), map[string]any{
		"attribute": "email",
		"operator":  "eq",
		"value":     "a@b.com",
	})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if args["limit"] != 50 {
		t.Errorf("expected default limit 50, got %v", args["limit"])
	}
	if args["include_inactive"] != false {
		t.Errorf("expected default include_inactive false, got %v", args["include_inactive"])
	}
}

func TestValidateMissingRequired(t *testing.T) {
	_, err := Validate(testFields(), map[string]any{"operator": "eq"})
	if err == nil {
		t.Fatal("expected error for missing attribute")
	}
	if !platformerrors.HasCode(err, platformerrors.CodeValidation) {
		t.Errorf("expected VALIDATION code, got %v", err)
	}
	domainErr := err.(*platformerrors.Error)
	if domainErr.Metadata["field"] != "attribute" {
		t.Errorf("expected offending field attribute, got %q", domainErr.Metadata["field"])
	}
}

func TestValidateWrongType(t *testing.T) {
	_, err := Validate(testFields(), map[string]any{
		"attribute": "email",
		"operator":  "eq",
		"value":     42,
	})
	if err == nil {
		t.Fatal("expected error for non-string value")
	}
}

func TestValidateEnum(t *testing.T) {
	_, err := Validate(testFields(), map[string]any{
		"attribute": "email",
		"operator":  "regex",
	})
	if err == nil {
		t.Fatal("expected error for operator outside enum")
	}
}

func TestValidateIntBounds(t *testing.T) {
	for _, limit := range []any{0, 201} {
		_, err := Validate(testFields(), map[string]any{
			"attribute": "email",
			"operator":  "pr",
			"limit":     limit,
		})
		if err == nil {
			t.Fatalf("expected error for limit %v", limit)
		}
	}
}

func TestValidateAcceptsJSONNumbers(t *testing.T) {
	// JSON decoding yields float64 for numbers; whole values are accepted.
	args, err := Validate(testFields(), map[string]any{
		"attribute": "email",
		"operator":  "pr",
		"limit":     float64(25),
	})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if args["limit"] != 25 {
		t.Errorf("expected limit 25, got %v", args["limit"])
	}

	_, err = Validate(testFields(), map[string]any{
		"attribute": "email",
		"operator":  "pr",
		"limit":     25.5,
	})
	if err == nil {
		t.Fatal("expected error for fractional limit")
	}
}

func TestInputSchema(t *testing.T) {
	s := InputSchema(testFields())
	if s.Type != "object" {
		t.Errorf("expected object schema, got %q", s.Type)
	}
	if len(s.Required) != 2 {
		t.Errorf("expected 2 required fields, got %v", s.Required)
	}
	operator, ok := s.Properties["operator"]
	if !ok || len(operator.Enum) != 5 {
		t.Errorf("expected operator enum of 5, got %+v", operator)
	}
	limit, ok := s.Properties["limit"]
	if !ok || limit.Minimum == nil || *limit.Minimum != 1 || limit.Maximum == nil || *limit.Maximum != 200 {
		t.Errorf("expected limit bounds 1..200, got %+v", limit)
	}
}
