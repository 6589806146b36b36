// Package directory defines the identity directory capability surface the
// server depends on, plus an Okta REST implementation of it.
//
// Entities are map-backed records: attribute-driven logic (search
// verification, group-assignment rules) stays a plain key lookup instead of
// reflection over a rigid struct.
package directory

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Record is a directory entity with a free-form profile.
type Record struct {
	ID      string
	Status  string
	Profile map[string]string
}

// Attribute returns the profile value for name and whether it is present
// and non-empty.
func (r Record) Attribute(name string) (string, bool) {
	value, ok := r.Profile[name]
	if !ok || value == "" {
		return "", false
	}
	return value, true
}

// Active reports whether the record's lifecycle status counts as active.
func (r Record) Active() bool {
	return r.Status == "ACTIVE"
}

// Group is a directory group.
type Group struct {
	ID          string
	Name        string
	Description string
}

// Event is one system log entry.
type Event struct {
	ID        string
	Type      string
	Severity  string
	Actor     string
	Message   string
	Published time.Time
}

// Client is the directory capability surface consumed by the command
// handlers, the search selector and the onboarding orchestrator. It is
// constructed once at process start and injected; handlers never reach for
// ambient globals.
type Client interface {
	// Get fetches one entity by key (id or login).
	Get(ctx context.Context, key string) (Record, error)
	// ListFiltered asks the directory to filter server-side.
	ListFiltered(ctx context.Context, expression string, limit int) ([]Record, error)
	// ListFreeText asks the directory for best-effort free-form matching.
	ListFreeText(ctx context.Context, text string, limit int) ([]Record, error)
	// ListAll lists entities with no filter, up to limit.
	ListAll(ctx context.Context, limit int) ([]Record, error)
	// Create creates an entity from a profile; activate may request
	// immediate activation at creation time.
	Create(ctx context.Context, profile map[string]string, activate bool) (Record, error)
	// SetActivation activates an entity, optionally sending a notification.
	SetActivation(ctx context.Context, key string, notify bool) error
	// Deactivate deactivates an entity.
	Deactivate(ctx context.Context, key string) error
	// Delete removes an entity.
	Delete(ctx context.Context, key string) error
	// ListGroups lists directory groups up to limit.
	ListGroups(ctx context.Context, limit int) ([]Group, error)
	// AssignToGroup adds an entity to a group.
	AssignToGroup(ctx context.Context, groupID, key string) error
	// RemoveFromGroup removes an entity from a group.
	RemoveFromGroup(ctx context.Context, groupID, key string) error
	// GrantApplication assigns an application to an entity.
	GrantApplication(ctx context.Context, appID, key string) error
	// ListSystemEvents queries the system log.
	ListSystemEvents(ctx context.Context, filter string, since time.Time, limit int) ([]Event, error)
}

// NotFoundError signals that an entity is absent at the directory.
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("directory: %s not found", e.Key)
}

// CapabilityError signals that the directory backend does not honor the
// requested filter operator. The search selector branches on this type to
// demote tiers instead of sniffing failure text.
type CapabilityError struct {
	Operator string
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("directory: filter operator %q is not supported", e.Operator)
}

// IsNotFound reports whether err is a directory not-found condition.
func IsNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}

// IsCapabilityUnsupported reports whether err signals an unsupported filter
// operator.
func IsCapabilityUnsupported(err error) bool {
	var capErr *CapabilityError
	return errors.As(err, &capErr)
}
