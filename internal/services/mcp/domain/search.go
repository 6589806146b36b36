package domain

import (
	"context"

	"github.com/kapilduraphe/okta-mcp-server/internal/command"
	"github.com/kapilduraphe/okta-mcp-server/internal/directory"
	"github.com/kapilduraphe/okta-mcp-server/internal/schema"
	"github.com/kapilduraphe/okta-mcp-server/internal/search"
)

// SearchUsersCommand resolves an attribute/operator/value query through the
// degrading strategy selector.
func SearchUsersCommand(dir directory.Client) command.Command {
	minLimit, maxLimit := schema.IntRange(1, search.MaxLimit)
	selector := search.NewSelector(dir)
	return command.Command{
		Name:        "okta_search_users",
		Description: "Searches users by attribute, falling back across filter strategies as needed",
		Input: []schema.Field{
			{Name: "attribute", Type: schema.TypeString, Required: true, Description: "profile attribute to match, e.g. email or department"},
			{Name: "operator", Type: schema.TypeString, Required: true, Enum: search.Operators(), Description: "eq, sw, ew, co or pr"},
			{Name: "value", Type: schema.TypeString, Description: "comparison value; ignored for pr"},
			{Name: "limit", Type: schema.TypeInt, Default: search.DefaultLimit, Min: minLimit, Max: maxLimit, Description: "maximum verified matches"},
			{Name: "include_inactive", Type: schema.TypeBool, Default: false, Description: "include non-active users"},
		},
		Handler: func(ctx context.Context, args map[string]any) (*command.Result, error) {
			criterion := search.Criterion{
				Attribute:       stringArg(args, "attribute"),
				Operator:        search.Operator(stringArg(args, "operator")),
				Value:           stringArg(args, "value"),
				Limit:           intArg(args, "limit"),
				IncludeInactive: boolArg(args, "include_inactive"),
			}
			outcome, err := selector.Run(ctx, criterion)
			if err != nil {
				return nil, err
			}
			text := outcome.Describe(criterion)
			if len(outcome.Matches) > 0 {
				text += "\n\n" + renderRecordList(outcome.Matches)
			}
			return command.Text(text), nil
		},
	}
}
