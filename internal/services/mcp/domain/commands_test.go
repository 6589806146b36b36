package domain

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/kapilduraphe/okta-mcp-server/internal/audit"
	"github.com/kapilduraphe/okta-mcp-server/internal/command"
	"github.com/kapilduraphe/okta-mcp-server/internal/directory"
	"github.com/kapilduraphe/okta-mcp-server/internal/onboarding"
	"github.com/kapilduraphe/okta-mcp-server/internal/testkit/dirfake"
)

func run(t *testing.T, cmd command.Command, args map[string]any) *command.Result {
	t.Helper()
	result, err := cmd.Handler(context.Background(), args)
	if err != nil {
		t.Fatalf("%s: %v", cmd.Name, err)
	}
	return result
}

func TestUserGetCommand(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		dir := dirfake.New()
		dir.Users["u1"] = directory.Record{ID: "u1", Status: "ACTIVE",
			Profile: map[string]string{"email": "alice@example.com", "department": "Engineering"}}
		result := run(t, UserGetCommand(dir), map[string]any{"user": "u1"})
		if result.IsError {
			t.Fatalf("unexpected error result: %q", result.JoinedText())
		}
		text := result.JoinedText()
		if !strings.Contains(text, "id: u1") || !strings.Contains(text, "department: Engineering") {
			t.Errorf("unexpected rendering: %q", text)
		}
	})

	t.Run("not found is informational", func(t *testing.T) {
		cmd := UserGetCommand(dirfake.New())
		result := run(t, cmd, map[string]any{"user": "ghost"})
		if result.IsError {
			t.Fatal("lookup miss must not be an error result")
		}
		if !strings.Contains(result.JoinedText(), `No user found for "ghost"`) {
			t.Errorf("unexpected text %q", result.JoinedText())
		}
	})
}

func TestUserActivateCommandNotFoundIsHardError(t *testing.T) {
	dir := dirfake.New()
	dir.ActivateErr = &directory.NotFoundError{Key: "ghost"}
	cmd := UserActivateCommand(dir)
	_, err := cmd.Handler(context.Background(), map[string]any{"user": "ghost", "send_email": false})
	if err == nil {
		t.Fatal("expected error for activation of a missing user")
	}
	if !directory.IsNotFound(err) {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestUserCreateCommand(t *testing.T) {
	dir := dirfake.New()
	result := run(t, UserCreateCommand(dir), map[string]any{
		"email":      "bob@example.com",
		"first_name": "Bob",
		"last_name":  "Stone",
		"activate":   true,
	})
	if !strings.Contains(result.JoinedText(), "Created user u1 with status ACTIVE") {
		t.Errorf("unexpected text %q", result.JoinedText())
	}
	if len(dir.Calls) != 1 || !strings.Contains(dir.Calls[0], "create bob@example.com activate=true") {
		t.Errorf("unexpected calls %v", dir.Calls)
	}
}

func TestUserListCommandRoutesFilter(t *testing.T) {
	dir := dirfake.New()
	dir.FilteredResult = []directory.Record{{ID: "u1", Status: "ACTIVE", Profile: map[string]string{}}}
	dir.AllResult = nil

	run(t, UserListCommand(dir), map[string]any{"filter": `profile.department eq "Sales"`, "limit": 10})
	if !strings.Contains(dir.Calls[0], "list-filtered") {
		t.Errorf("expected filtered listing, got %v", dir.Calls)
	}

	result := run(t, UserListCommand(dir), map[string]any{"limit": 10})
	if !strings.Contains(dir.Calls[1], "list-all") {
		t.Errorf("expected unfiltered listing, got %v", dir.Calls)
	}
	if !strings.Contains(result.JoinedText(), "No users matched") {
		t.Errorf("expected empty listing text, got %q", result.JoinedText())
	}
}

func TestGroupCommands(t *testing.T) {
	dir := dirfake.New()
	dir.Groups = []directory.Group{{ID: "g1", Name: "Everyone", Description: "all users"}}

	result := run(t, GroupListCommand(dir), map[string]any{"limit": 25})
	if !strings.Contains(result.JoinedText(), "g1  Everyone") {
		t.Errorf("unexpected listing %q", result.JoinedText())
	}

	run(t, GroupAddMemberCommand(dir), map[string]any{"group_id": "g1", "user": "u1"})
	run(t, GroupRemoveMemberCommand(dir), map[string]any{"group_id": "g1", "user": "u1"})
	if dir.Calls[1] != "assign g1 u1" || dir.Calls[2] != "remove g1 u1" {
		t.Errorf("unexpected calls %v", dir.Calls)
	}
}

func TestEventListCommandRejectsBadSince(t *testing.T) {
	result := run(t, EventListCommand(dirfake.New()), map[string]any{"since": "yesterday", "limit": 10})
	if !result.IsError {
		t.Fatal("expected error result for unparsable since")
	}
}

func TestSearchUsersCommandMasksEcho(t *testing.T) {
	dir := dirfake.New()
	dir.Users["u1"] = directory.Record{ID: "u1", Status: "ACTIVE", Profile: map[string]string{"email": "alice@example.com"}}
	dir.FilteredResult = []directory.Record{dir.Users["u1"]}

	result := run(t, SearchUsersCommand(dir), map[string]any{
		"attribute":        "email",
		"operator":         "eq",
		"value":            "alice@example.com",
		"limit":            50,
		"include_inactive": false,
	})
	text := result.JoinedText()
	if !strings.Contains(text, "Found 1 user(s)") {
		t.Errorf("expected narration, got %q", text)
	}
	if strings.Contains(text, `"alice@example.com"`) {
		t.Errorf("expected masked echo, got %q", text)
	}
}

func TestOnboardUsersCommand(t *testing.T) {
	dir := dirfake.New()
	rules := onboarding.GroupRules{"department": {"Engineering": "G1"}}
	csv := strings.Join([]string{
		"email,firstName,lastName,department",
		"alice@example.com,Alice,Reed,Engineering",
		"bob@example.com,Bob",
		"carol@example.com,Carol,Diaz,Sales",
	}, "\n")

	result := run(t, OnboardUsersCommand(dir, rules, nil), map[string]any{
		"csv":          csv,
		"activate":     false,
		"send_email":   false,
		"applications": "app1",
	})
	text := result.JoinedText()
	if !strings.Contains(text, "3 row(s) processed, 2 onboarded") {
		t.Errorf("unexpected summary %q", text)
	}
	if !strings.Contains(text, "fail bob@example.com: missing required fields") {
		t.Errorf("expected per-row failure, got %q", text)
	}
	if !strings.Contains(text, "app1: success") {
		t.Errorf("expected provisioning sub-results, got %q", text)
	}
}

func TestOnboardUsersCommandBadCSV(t *testing.T) {
	result := run(t, OnboardUsersCommand(dirfake.New(), nil, nil), map[string]any{
		"csv": "", "activate": false, "send_email": false,
	})
	if !result.IsError {
		t.Fatal("expected error result for empty csv")
	}
}

type stubRunStore struct {
	err     error
	records int
	runs    []audit.RunRecord
	listErr error
}

func (s *stubRunStore) RecordRun(context.Context, audit.RunRecord) error {
	s.records++
	return s.err
}

func (s *stubRunStore) ListRuns(context.Context, int) ([]audit.RunRecord, error) {
	return s.runs, s.listErr
}

func (s *stubRunStore) Close() error { return nil }

func TestOnboardUsersCommandAuditFailureDoesNotFailRun(t *testing.T) {
	dir := dirfake.New()
	store := &stubRunStore{err: fmt.Errorf("disk full")}
	result := run(t, OnboardUsersCommand(dir, nil, store), map[string]any{
		"csv":        "email,firstName,lastName\nalice@example.com,Alice,Reed",
		"activate":   false,
		"send_email": false,
	})
	if result.IsError {
		t.Fatalf("audit failure must not fail the run: %q", result.JoinedText())
	}
	if store.records != 1 {
		t.Errorf("expected one record attempt, got %d", store.records)
	}
}

func TestOnboardingRunsCommand(t *testing.T) {
	t.Run("lists newest first as stored", func(t *testing.T) {
		store := &stubRunStore{runs: []audit.RunRecord{
			{RowsProcessed: 3, Onboarded: 2, ImportFailures: 1,
				CreatedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)},
			{RowsProcessed: 1, Onboarded: 1,
				CreatedAt: time.Date(2026, 7, 30, 9, 30, 0, 0, time.UTC)},
		}}
		result := run(t, OnboardingRunsCommand(store), map[string]any{"limit": 20})
		if result.IsError {
			t.Fatalf("unexpected error result: %q", result.JoinedText())
		}
		text := result.JoinedText()
		if !strings.Contains(text, "Found 2 onboarding run(s)") {
			t.Errorf("unexpected summary %q", text)
		}
		if !strings.Contains(text, "1. 2026-08-01T12:00:00Z: 3 row(s) processed, 2 onboarded, failures import 1 / groups 0 / provisioning 0") {
			t.Errorf("unexpected run line %q", text)
		}
	})

	t.Run("empty store", func(t *testing.T) {
		result := run(t, OnboardingRunsCommand(&stubRunStore{}), map[string]any{"limit": 20})
		if !strings.Contains(result.JoinedText(), "No onboarding runs recorded.") {
			t.Errorf("unexpected text %q", result.JoinedText())
		}
	})

	t.Run("no store configured is informational", func(t *testing.T) {
		result := run(t, OnboardingRunsCommand(nil), map[string]any{"limit": 20})
		if result.IsError {
			t.Fatal("missing store must not be an error result")
		}
		if !strings.Contains(result.JoinedText(), "not recorded") {
			t.Errorf("unexpected text %q", result.JoinedText())
		}
	})

	t.Run("list failure surfaces to the dispatcher", func(t *testing.T) {
		cmd := OnboardingRunsCommand(&stubRunStore{listErr: fmt.Errorf("db locked")})
		if _, err := cmd.Handler(context.Background(), map[string]any{"limit": 20}); err == nil {
			t.Fatal("expected list failure to propagate")
		}
	})
}
