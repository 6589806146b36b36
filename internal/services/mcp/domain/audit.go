package domain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kapilduraphe/okta-mcp-server/internal/audit"
	"github.com/kapilduraphe/okta-mcp-server/internal/command"
	"github.com/kapilduraphe/okta-mcp-server/internal/schema"
)

// OnboardingRunsCommand lists recorded onboarding runs, newest first. The
// audit store is optional; without one the command reports that runs are not
// recorded instead of failing.
func OnboardingRunsCommand(runs audit.RunStore) command.Command {
	minLimit, maxLimit := schema.IntRange(1, 200)
	return command.Command{
		Name:        "okta_list_onboarding_runs",
		Description: "Lists recorded bulk-onboarding runs, newest first",
		Input: []schema.Field{
			{Name: "limit", Type: schema.TypeInt, Default: 20, Min: minLimit, Max: maxLimit, Description: "maximum runs to return"},
		},
		Handler: func(ctx context.Context, args map[string]any) (*command.Result, error) {
			if runs == nil {
				return command.Text("No audit store is configured; onboarding runs are not recorded."), nil
			}
			records, err := runs.ListRuns(ctx, intArg(args, "limit"))
			if err != nil {
				return nil, err
			}
			return command.Text(renderRuns(records)), nil
		},
	}
}

func renderRuns(records []audit.RunRecord) string {
	if len(records) == 0 {
		return "No onboarding runs recorded."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d onboarding run(s):\n", len(records))
	for i, record := range records {
		fmt.Fprintf(&b, "%d. %s: %d row(s) processed, %d onboarded, failures import %d / groups %d / provisioning %d\n",
			i+1,
			record.CreatedAt.UTC().Format(time.RFC3339),
			record.RowsProcessed,
			record.Onboarded,
			record.ImportFailures,
			record.GroupAssignmentFailures,
			record.ProvisioningFailures,
		)
	}
	return strings.TrimRight(b.String(), "\n")
}
