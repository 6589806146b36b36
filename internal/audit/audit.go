// Package audit records onboarding workflow runs for later inspection.
package audit

import (
	"context"
	"time"
)

// RunRecord is one persisted onboarding run summary.
type RunRecord struct {
	ID                      int64
	RowsProcessed           int
	Onboarded               int
	ImportFailures          int
	GroupAssignmentFailures int
	ProvisioningFailures    int
	GroupsAssigned          int
	ApplicationsProvisioned int
	ReportJSON              string
	CreatedAt               time.Time
}

// RunStore persists onboarding run records.
type RunStore interface {
	RecordRun(ctx context.Context, run RunRecord) error
	ListRuns(ctx context.Context, limit int) ([]RunRecord, error)
	Close() error
}
