// Package sqlite provides SQLite-backed onboarding run persistence.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/kapilduraphe/okta-mcp-server/internal/audit"
	"github.com/kapilduraphe/okta-mcp-server/internal/audit/sqlite/migrations"
	"github.com/kapilduraphe/okta-mcp-server/internal/platform/storage/sqlitemigrate"
	_ "modernc.org/sqlite"
)

// Store persists onboarding run records in SQLite.
type Store struct {
	sqlDB *sql.DB
}

// Open opens the audit store at path and applies migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.Apply(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close releases the SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// RecordRun persists one onboarding run summary.
func (s *Store) RecordRun(ctx context.Context, run audit.RunRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO onboarding_runs (
	rows_processed,
	onboarded,
	import_failures,
	group_assignment_failures,
	provisioning_failures,
	groups_assigned,
	applications_provisioned,
	report_json,
	created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
		run.RowsProcessed,
		run.Onboarded,
		run.ImportFailures,
		run.GroupAssignmentFailures,
		run.ProvisioningFailures,
		run.GroupsAssigned,
		run.ApplicationsProvisioned,
		run.ReportJSON,
		run.CreatedAt.UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// ListRuns lists newest-first run records.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]audit.RunRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT
	id,
	rows_processed,
	onboarded,
	import_failures,
	group_assignment_failures,
	provisioning_failures,
	groups_assigned,
	applications_provisioned,
	report_json,
	created_at
FROM onboarding_runs
ORDER BY created_at DESC, id DESC
LIMIT ?
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	records := make([]audit.RunRecord, 0, limit)
	for rows.Next() {
		var record audit.RunRecord
		var createdAt int64
		if err := rows.Scan(
			&record.ID,
			&record.RowsProcessed,
			&record.Onboarded,
			&record.ImportFailures,
			&record.GroupAssignmentFailures,
			&record.ProvisioningFailures,
			&record.GroupsAssigned,
			&record.ApplicationsProvisioned,
			&record.ReportJSON,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		record.CreatedAt = time.UnixMilli(createdAt).UTC()
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return records, nil
}

var _ audit.RunStore = (*Store)(nil)
