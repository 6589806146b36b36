package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/kapilduraphe/okta-mcp-server/internal/command"
	"github.com/kapilduraphe/okta-mcp-server/internal/directory"
	"github.com/kapilduraphe/okta-mcp-server/internal/schema"
)

// EventListCommand queries the directory's system log.
func EventListCommand(dir directory.Client) command.Command {
	minLimit, maxLimit := schema.IntRange(1, 200)
	return command.Command{
		Name:        "okta_list_events",
		Description: "Queries the directory system log",
		Input: []schema.Field{
			{Name: "filter", Type: schema.TypeString, Description: "system log filter expression"},
			{Name: "since", Type: schema.TypeString, Description: "RFC3339 lower bound on event time"},
			{Name: "limit", Type: schema.TypeInt, Default: 50, Min: minLimit, Max: maxLimit, Description: "maximum events to return"},
		},
		Handler: func(ctx context.Context, args map[string]any) (*command.Result, error) {
			var since time.Time
			if raw := stringArg(args, "since"); raw != "" {
				parsed, err := time.Parse(time.RFC3339, raw)
				if err != nil {
					return command.Errorf("since must be an RFC3339 timestamp: %v", err), nil
				}
				since = parsed
			}
			events, err := dir.ListSystemEvents(ctx, stringArg(args, "filter"), since, intArg(args, "limit"))
			if err != nil {
				return nil, err
			}
			header := fmt.Sprintf("%d event(s):\n", len(events))
			if len(events) == 0 {
				return command.Text(renderEvents(events)), nil
			}
			return command.Text(header + renderEvents(events)), nil
		},
	}
}
