package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/kapilduraphe/okta-mcp-server/internal/audit"
	"github.com/kapilduraphe/okta-mcp-server/internal/command"
	"github.com/kapilduraphe/okta-mcp-server/internal/directory"
	"github.com/kapilduraphe/okta-mcp-server/internal/onboarding"
	"github.com/kapilduraphe/okta-mcp-server/internal/schema"
)

// OnboardUsersCommand imports users from CSV, assigns groups by the
// configured rule table and provisions the requested applications. The audit
// store is optional; recording failures never fail the run.
func OnboardUsersCommand(dir directory.Client, rules onboarding.GroupRules, runs audit.RunStore) command.Command {
	orchestrator := onboarding.New(dir)
	return command.Command{
		Name:        "okta_onboard_users",
		Description: "Bulk-onboards users from CSV: import, rule-based group assignment, application provisioning",
		Input: []schema.Field{
			{Name: "csv", Type: schema.TypeString, Required: true, Description: "CSV with header row; required columns email, firstName, lastName"},
			{Name: "activate", Type: schema.TypeBool, Default: false, Description: "activate each user after creation"},
			{Name: "send_email", Type: schema.TypeBool, Default: false, Description: "send the welcome notification on activation"},
			{Name: "default_groups", Type: schema.TypeString, Description: "comma-separated group ids assigned to every imported user"},
			{Name: "applications", Type: schema.TypeString, Description: "comma-separated application ids to provision"},
		},
		Handler: func(ctx context.Context, args map[string]any) (*command.Result, error) {
			rows, err := onboarding.ParseCSV(strings.NewReader(stringArg(args, "csv")))
			if err != nil {
				return command.Errorf("csv is not parseable: %v", err), nil
			}

			report := orchestrator.Run(ctx, rows, onboarding.Options{
				Activate:      boolArg(args, "activate"),
				NotifyByEmail: boolArg(args, "send_email"),
				DefaultGroups: splitList(stringArg(args, "default_groups")),
				Rules:         rules,
				Applications:  splitList(stringArg(args, "applications")),
			})

			recordRun(ctx, runs, report)
			return command.Text(renderReport(report)), nil
		},
	}
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}

func recordRun(ctx context.Context, runs audit.RunStore, report *onboarding.Report) {
	if runs == nil {
		return
	}
	payload, err := json.Marshal(report)
	if err != nil {
		log.Printf("encode onboarding report for audit: %v", err)
		return
	}
	record := audit.RunRecord{
		RowsProcessed:           report.Counts.RowsProcessed,
		Onboarded:               report.Counts.Onboarded,
		ImportFailures:          report.Counts.ImportFailures,
		GroupAssignmentFailures: report.Counts.GroupAssignmentFailures,
		ProvisioningFailures:    report.Counts.ProvisioningFailures,
		GroupsAssigned:          report.Counts.GroupsAssigned,
		ApplicationsProvisioned: report.Counts.ApplicationsProvisioned,
		ReportJSON:              string(payload),
	}
	if err := runs.RecordRun(ctx, record); err != nil {
		log.Printf("record onboarding run: %v", err)
	}
}

// renderReport narrates the workflow report stage by stage.
func renderReport(report *onboarding.Report) string {
	var b strings.Builder
	counts := report.Counts
	fmt.Fprintf(&b, "Onboarding finished: %d row(s) processed, %d onboarded, %d group assignment(s), %d application grant(s).\n",
		counts.RowsProcessed, counts.Onboarded, counts.GroupsAssigned, counts.ApplicationsProvisioned)
	fmt.Fprintf(&b, "Failures: import %d, group assignment %d, provisioning %d.\n",
		counts.ImportFailures, counts.GroupAssignmentFailures, counts.ProvisioningFailures)
	if report.Note != "" {
		fmt.Fprintf(&b, "Note: %s.\n", report.Note)
	}

	renderStage(&b, "Import", report.Import)
	renderStage(&b, "Group assignment", report.GroupAssignment)
	renderStage(&b, "Provisioning", report.Provisioning)
	return strings.TrimRight(b.String(), "\n")
}

func renderStage(b *strings.Builder, name string, stage onboarding.StageReport) {
	if len(stage.Successes) == 0 && len(stage.Failures) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s:\n", name)
	for _, outcome := range stage.Successes {
		fmt.Fprintf(b, "  ok   %s: %s\n", outcome.EntityKey, outcome.Detail)
		renderSubResults(b, outcome)
	}
	for _, outcome := range stage.Failures {
		fmt.Fprintf(b, "  fail %s: %s\n", outcome.EntityKey, outcome.Detail)
		renderSubResults(b, outcome)
	}
}

func renderSubResults(b *strings.Builder, outcome onboarding.StageOutcome) {
	for _, sub := range outcome.SubResults {
		if sub.Reason != "" {
			fmt.Fprintf(b, "       %s: %s (%s)\n", sub.TargetID, sub.Status, sub.Reason)
			continue
		}
		fmt.Fprintf(b, "       %s: %s\n", sub.TargetID, sub.Status)
	}
}
