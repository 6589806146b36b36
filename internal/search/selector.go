// Package search resolves attribute queries against the directory through a
// degrading strategy: native server-side filtering, free-text matching, then
// a capped client-side scan, with a verification pass enforcing correctness
// wherever the serving tier cannot guarantee it.
package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/kapilduraphe/okta-mcp-server/internal/directory"
	platformerrors "github.com/kapilduraphe/okta-mcp-server/internal/platform/errors"
)

// Operator is a search comparison operator.
type Operator string

const (
	OpEquals     Operator = "eq"
	OpStartsWith Operator = "sw"
	OpEndsWith   Operator = "ew"
	OpContains   Operator = "co"
	OpPresent    Operator = "pr"
)

// Operators lists the accepted operator tokens for input validation.
func Operators() []string {
	return []string{string(OpEquals), string(OpStartsWith), string(OpEndsWith), string(OpContains), string(OpPresent)}
}

// Tier is one strategy level in the fallback order.
type Tier int

const (
	// TierNativeFilter asks the directory to filter server-side.
	TierNativeFilter Tier = iota + 1
	// TierFreeText asks the directory for attribute-agnostic text matching.
	TierFreeText
	// TierClientSideScan fetches a capped unfiltered listing.
	TierClientSideScan
)

func (t Tier) String() string {
	switch t {
	case TierNativeFilter:
		return "native filter"
	case TierFreeText:
		return "free-text match"
	case TierClientSideScan:
		return "client-side scan"
	default:
		return "unknown"
	}
}

const (
	// DefaultLimit is used when a criterion does not request a limit.
	DefaultLimit = 50
	// MaxLimit bounds a criterion's requested limit.
	MaxLimit = 200
	// scanCap bounds the tier-3 unfiltered fetch against a large directory.
	scanCap = 200
)

// Criterion is one attribute/operator/value search request.
type Criterion struct {
	Attribute       string
	Operator        Operator
	Value           string // ignored when Operator is pr
	Limit           int    // 1..200, default 50
	IncludeInactive bool
}

// Outcome is a resolved search: the verified matches, the tier that served
// them, and an optional warning about tier-3 coverage.
type Outcome struct {
	Tier    Tier
	Matches []directory.Record
	Warning string
}

// Selector resolves criteria against an injected directory client.
type Selector struct {
	dir directory.Client
}

// NewSelector creates a search selector.
func NewSelector(dir directory.Client) *Selector {
	return &Selector{dir: dir}
}

// Run resolves one criterion. Tier selection is unidirectional: each tier is
// attempted at most once, and any tier failure demotes to the next. Only a
// tier-3 failure surfaces as an error.
func (s *Selector) Run(ctx context.Context, criterion Criterion) (Outcome, error) {
	criterion = criterion.normalized()
	if criterion.Attribute == "" {
		return Outcome{}, platformerrors.New(platformerrors.CodeValidation, "search attribute is required")
	}

	if records, err := s.dir.ListFiltered(ctx, criterion.expression(), criterion.Limit); err == nil {
		// The server already applied attribute and operator semantics;
		// only the status rule needs enforcement.
		matches := filterStatus(records, criterion)
		if len(matches) > criterion.Limit {
			matches = matches[:criterion.Limit]
		}
		return Outcome{Tier: TierNativeFilter, Matches: matches}, nil
	}
	// CapabilityError is the expected demotion trigger; any other failure
	// demotes too rather than failing the search outright.

	if records, err := s.dir.ListFreeText(ctx, criterion.Value, criterion.Limit); err == nil {
		return Outcome{Tier: TierFreeText, Matches: s.verify(ctx, records, criterion)}, nil
	}

	records, err := s.dir.ListAll(ctx, scanCap)
	if err != nil {
		return Outcome{}, platformerrors.Wrap(platformerrors.CodeTransport, "all search strategies failed", err)
	}
	return Outcome{
		Tier:    TierClientSideScan,
		Matches: s.verify(ctx, records, criterion),
		Warning: fmt.Sprintf("only the first %d directory entities were considered", scanCap),
	}, nil
}

// verify re-checks candidates the serving tier could not guarantee: each
// candidate's full record is fetched and its target attribute compared under
// the requested operator, case-insensitively. Verification stops once the
// requested limit of verified matches is reached. Candidates that fail to
// fetch are skipped rather than failing the search.
func (s *Selector) verify(ctx context.Context, candidates []directory.Record, criterion Criterion) []directory.Record {
	matches := make([]directory.Record, 0, criterion.Limit)
	for _, candidate := range candidates {
		if len(matches) >= criterion.Limit {
			break
		}
		record, err := s.dir.Get(ctx, candidate.ID)
		if err != nil {
			// A candidate that disappeared or failed to fetch cannot be
			// verified; skip it rather than fail the whole search.
			continue
		}
		if !statusAllowed(record, criterion) {
			continue
		}
		value, present := record.Attribute(criterion.Attribute)
		if !matchValue(criterion.Operator, value, present, criterion.Value) {
			continue
		}
		matches = append(matches, record)
	}
	return matches
}

// matchValue applies operator semantics case-insensitively.
func matchValue(operator Operator, value string, present bool, target string) bool {
	if operator == OpPresent {
		return present
	}
	if !present {
		return false
	}
	left := strings.ToLower(value)
	right := strings.ToLower(target)
	switch operator {
	case OpEquals:
		return left == right
	case OpStartsWith:
		return strings.HasPrefix(left, right)
	case OpEndsWith:
		return strings.HasSuffix(left, right)
	case OpContains:
		return strings.Contains(left, right)
	default:
		return false
	}
}

// filterStatus applies the includeInactive rule to already-filtered records.
func filterStatus(records []directory.Record, criterion Criterion) []directory.Record {
	kept := make([]directory.Record, 0, len(records))
	for _, record := range records {
		if statusAllowed(record, criterion) {
			kept = append(kept, record)
		}
	}
	return kept
}

func statusAllowed(record directory.Record, criterion Criterion) bool {
	return criterion.IncludeInactive || record.Active()
}

// expression builds the native filter expression; pr omits the value.
func (c Criterion) expression() string {
	attribute := "profile." + c.Attribute
	if c.Attribute == "status" {
		attribute = "status"
	}
	if c.Operator == OpPresent {
		return fmt.Sprintf("%s pr", attribute)
	}
	return fmt.Sprintf("%s %s %q", attribute, c.Operator, c.Value)
}

func (c Criterion) normalized() Criterion {
	c.Attribute = strings.TrimSpace(c.Attribute)
	if c.Limit <= 0 {
		c.Limit = DefaultLimit
	}
	if c.Limit > MaxLimit {
		c.Limit = MaxLimit
	}
	return c
}

// Describe narrates the resolved search for the invocation result, masking
// personally identifying values.
func (o Outcome) Describe(criterion Criterion) string {
	var b strings.Builder
	value := criterion.Value
	if criterion.Operator == OpPresent {
		value = ""
	} else if IsPII(criterion.Attribute) {
		value = MaskValue(value)
	}
	if value == "" {
		fmt.Fprintf(&b, "Found %d user(s) where %s %s (served by %s).",
			len(o.Matches), criterion.Attribute, criterion.Operator, o.Tier)
	} else {
		fmt.Fprintf(&b, "Found %d user(s) where %s %s %q (served by %s).",
			len(o.Matches), criterion.Attribute, criterion.Operator, value, o.Tier)
	}
	if o.Warning != "" {
		fmt.Fprintf(&b, " Warning: %s.", o.Warning)
	}
	return b.String()
}
