package onboarding

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/kapilduraphe/okta-mcp-server/internal/directory"
)

// Outcome status values.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// ReasonMissingFields is the failure detail for rows lacking required fields.
const ReasonMissingFields = "missing required fields"

// SubResult records one per-application grant outcome inside a provisioning
// stage outcome.
type SubResult struct {
	TargetID string
	Status   string
	Reason   string
}

// StageOutcome is the append-only record of one entity's result in a stage.
type StageOutcome struct {
	EntityKey  string
	Status     string
	Detail     string
	SubResults []SubResult
}

// StageReport pairs a stage's successes and failures.
type StageReport struct {
	Successes []StageOutcome
	Failures  []StageOutcome
}

// Counts aggregates the whole workflow.
type Counts struct {
	RowsProcessed           int
	Onboarded               int
	ImportFailures          int
	GroupAssignmentFailures int
	ProvisioningFailures    int
	GroupsAssigned          int
	ApplicationsProvisioned int
}

// Report is the aggregated workflow result. It is built incrementally during
// a run and immutable once returned.
type Report struct {
	Import          StageReport
	GroupAssignment StageReport
	Provisioning    StageReport
	Counts          Counts
	Note            string
}

// Options configures one onboarding run.
type Options struct {
	// Activate requests immediate activation after creation.
	Activate bool
	// NotifyByEmail sends the welcome notification with activation.
	NotifyByEmail bool
	// DefaultGroups are assigned to every imported entity during import.
	DefaultGroups []string
	// Rules drive the group-assignment stage.
	Rules GroupRules
	// Applications are granted to every imported entity during provisioning.
	Applications []string
}

// Orchestrator sequences Import → Group Assignment → Provisioning over a
// batch of rows. All work is strictly sequential in input order; the report
// structures are owned by the running call and never shared.
type Orchestrator struct {
	dir directory.Client
}

// New creates an onboarding orchestrator over an injected directory client.
func New(dir directory.Client) *Orchestrator {
	return &Orchestrator{dir: dir}
}

// Run executes the three stages. Stages 2 and 3 each consume exactly the
// entity keys that succeeded in stage 1 and never each other's output. A
// failure in a later stage never rolls back an earlier one.
func (o *Orchestrator) Run(ctx context.Context, rows []Row, opts Options) *Report {
	report := &Report{}
	report.Counts.RowsProcessed = len(rows)

	createdKeys := o.runImport(ctx, rows, opts, report)
	report.Counts.Onboarded = len(createdKeys)
	report.Counts.ImportFailures = len(report.Import.Failures)

	if len(createdKeys) == 0 {
		report.Note = "no entities were available for further processing"
		return report
	}

	o.runGroupAssignment(ctx, createdKeys, opts.Rules, report)
	report.Counts.GroupAssignmentFailures = len(report.GroupAssignment.Failures)

	o.runProvisioning(ctx, createdKeys, opts.Applications, report)
	report.Counts.ProvisioningFailures = len(report.Provisioning.Failures)

	return report
}

// runImport creates one entity per complete row, then optionally activates
// it and assigns the default groups. Each row fails independently; the batch
// never aborts.
func (o *Orchestrator) runImport(ctx context.Context, rows []Row, opts Options, report *Report) []string {
	var createdKeys []string
	for _, row := range rows {
		if !row.Complete() {
			report.Import.Failures = append(report.Import.Failures, StageOutcome{
				EntityKey: row.Key(),
				Status:    StatusFailure,
				Detail:    ReasonMissingFields,
			})
			continue
		}

		record, err := o.dir.Create(ctx, row.profile(), false)
		if err != nil {
			report.Import.Failures = append(report.Import.Failures, StageOutcome{
				EntityKey: row.Key(),
				Status:    StatusFailure,
				Detail:    fmt.Sprintf("create failed: %s", err),
			})
			continue
		}

		if opts.Activate {
			if err := o.dir.SetActivation(ctx, record.ID, opts.NotifyByEmail); err != nil {
				report.Import.Failures = append(report.Import.Failures, StageOutcome{
					EntityKey: row.Key(),
					Status:    StatusFailure,
					Detail:    fmt.Sprintf("created as %s but activation failed: %s", record.ID, err),
				})
				continue
			}
			record.Status = "ACTIVE"
		}

		if failed := o.assignDefaultGroups(ctx, record.ID, opts.DefaultGroups); failed != "" {
			report.Import.Failures = append(report.Import.Failures, StageOutcome{
				EntityKey: row.Key(),
				Status:    StatusFailure,
				Detail:    fmt.Sprintf("created as %s but default group assignment failed: %s", record.ID, failed),
			})
			continue
		}

		report.Import.Successes = append(report.Import.Successes, StageOutcome{
			EntityKey: record.ID,
			Status:    StatusSuccess,
			Detail:    fmt.Sprintf("created with status %s", record.Status),
		})
		createdKeys = append(createdKeys, record.ID)
	}
	return createdKeys
}

func (o *Orchestrator) assignDefaultGroups(ctx context.Context, key string, groups []string) string {
	for _, groupID := range groups {
		if err := o.dir.AssignToGroup(ctx, groupID, key); err != nil {
			return fmt.Sprintf("group %s: %s", groupID, err)
		}
	}
	return ""
}

// runGroupAssignment maps each entity's attributes through the rule table
// into a deduplicated group set and assigns each group. Matching zero rules
// is a success with an empty group list. Groups assigned before a failure
// are neither retried nor undone.
func (o *Orchestrator) runGroupAssignment(ctx context.Context, keys []string, rules GroupRules, report *Report) {
	attributes := make([]string, 0, len(rules))
	for attribute := range rules {
		attributes = append(attributes, attribute)
	}
	sort.Strings(attributes)

	for _, key := range keys {
		record, err := o.dir.Get(ctx, key)
		if err != nil {
			report.GroupAssignment.Failures = append(report.GroupAssignment.Failures, StageOutcome{
				EntityKey: key,
				Status:    StatusFailure,
				Detail:    fmt.Sprintf("profile fetch failed: %s", err),
			})
			continue
		}

		groupSet := map[string]bool{}
		for _, attribute := range attributes {
			value, present := record.Attribute(attribute)
			if !present {
				continue
			}
			if groupID, ok := rules[attribute][value]; ok {
				groupSet[groupID] = true
			}
		}
		groups := make([]string, 0, len(groupSet))
		for groupID := range groupSet {
			groups = append(groups, groupID)
		}
		sort.Strings(groups)

		var assigned []string
		var failure string
		for _, groupID := range groups {
			if err := o.dir.AssignToGroup(ctx, groupID, key); err != nil {
				failure = fmt.Sprintf("group %s: %s", groupID, err)
				break
			}
			assigned = append(assigned, groupID)
		}
		report.Counts.GroupsAssigned += len(assigned)

		if failure != "" {
			report.GroupAssignment.Failures = append(report.GroupAssignment.Failures, StageOutcome{
				EntityKey: key,
				Status:    StatusFailure,
				Detail:    fmt.Sprintf("assigned [%s] before failing on %s", strings.Join(assigned, " "), failure),
			})
			continue
		}
		report.GroupAssignment.Successes = append(report.GroupAssignment.Successes, StageOutcome{
			EntityKey: key,
			Status:    StatusSuccess,
			Detail:    fmt.Sprintf("assigned groups [%s]", strings.Join(assigned, " ")),
		})
	}
}

// runProvisioning grants each application independently per entity. One
// failed grant marks the entity failed overall, but every per-application
// sub-result is retained for diagnosis.
func (o *Orchestrator) runProvisioning(ctx context.Context, keys []string, applications []string, report *Report) {
	for _, key := range keys {
		outcome := StageOutcome{EntityKey: key, Status: StatusSuccess}
		granted := 0
		for _, appID := range applications {
			sub := SubResult{TargetID: appID, Status: StatusSuccess}
			if err := o.dir.GrantApplication(ctx, appID, key); err != nil {
				sub.Status = StatusFailure
				sub.Reason = err.Error()
				outcome.Status = StatusFailure
			} else {
				granted++
			}
			outcome.SubResults = append(outcome.SubResults, sub)
		}
		report.Counts.ApplicationsProvisioned += granted
		outcome.Detail = fmt.Sprintf("%d/%d applications granted", granted, len(applications))

		if outcome.Status == StatusFailure {
			report.Provisioning.Failures = append(report.Provisioning.Failures, outcome)
			continue
		}
		report.Provisioning.Successes = append(report.Provisioning.Successes, outcome)
	}
}
