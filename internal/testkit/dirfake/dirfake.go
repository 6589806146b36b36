// Package dirfake provides a configurable in-memory directory.Client fake
// for handler and service tests.
package dirfake

import (
	"context"
	"fmt"
	"time"

	"github.com/kapilduraphe/okta-mcp-server/internal/directory"
)

// Client is a directory fake. Behavior is canned per method; calls are
// recorded for assertions. Unconfigured list methods fail, matching a
// directory that rejects the request.
type Client struct {
	Users  map[string]directory.Record
	Groups []directory.Group
	Events []directory.Event

	FilteredResult []directory.Record
	FilteredErr    error
	FreeTextResult []directory.Record
	FreeTextErr    error
	AllResult      []directory.Record
	AllErr         error

	CreateErr     error
	ActivateErr   error
	DeactivateErr error
	DeleteErr     error
	AssignErr     error
	RemoveErr     error
	GrantErr      error
	EventsErr     error

	Calls []string

	nextID int
}

// New creates an empty fake.
func New() *Client {
	return &Client{Users: map[string]directory.Record{}}
}

func (c *Client) record(format string, args ...any) {
	c.Calls = append(c.Calls, fmt.Sprintf(format, args...))
}

func (c *Client) Get(_ context.Context, key string) (directory.Record, error) {
	c.record("get %s", key)
	user, ok := c.Users[key]
	if !ok {
		return directory.Record{}, &directory.NotFoundError{Key: key}
	}
	return user, nil
}

func (c *Client) ListFiltered(_ context.Context, expression string, limit int) ([]directory.Record, error) {
	c.record("list-filtered %s limit=%d", expression, limit)
	return c.FilteredResult, c.FilteredErr
}

func (c *Client) ListFreeText(_ context.Context, text string, limit int) ([]directory.Record, error) {
	c.record("list-freetext %s limit=%d", text, limit)
	return c.FreeTextResult, c.FreeTextErr
}

func (c *Client) ListAll(_ context.Context, limit int) ([]directory.Record, error) {
	c.record("list-all limit=%d", limit)
	return c.AllResult, c.AllErr
}

func (c *Client) Create(_ context.Context, profile map[string]string, activate bool) (directory.Record, error) {
	c.record("create %s activate=%t", profile["login"], activate)
	if c.CreateErr != nil {
		return directory.Record{}, c.CreateErr
	}
	c.nextID++
	status := "STAGED"
	if activate {
		status = "ACTIVE"
	}
	user := directory.Record{ID: fmt.Sprintf("u%d", c.nextID), Status: status, Profile: profile}
	c.Users[user.ID] = user
	return user, nil
}

func (c *Client) SetActivation(_ context.Context, key string, notify bool) error {
	c.record("activate %s notify=%t", key, notify)
	if c.ActivateErr != nil {
		return c.ActivateErr
	}
	if user, ok := c.Users[key]; ok {
		user.Status = "ACTIVE"
		c.Users[key] = user
	}
	return nil
}

func (c *Client) Deactivate(_ context.Context, key string) error {
	c.record("deactivate %s", key)
	return c.DeactivateErr
}

func (c *Client) Delete(_ context.Context, key string) error {
	c.record("delete %s", key)
	return c.DeleteErr
}

func (c *Client) ListGroups(_ context.Context, limit int) ([]directory.Group, error) {
	c.record("list-groups limit=%d", limit)
	return c.Groups, nil
}

func (c *Client) AssignToGroup(_ context.Context, groupID, key string) error {
	c.record("assign %s %s", groupID, key)
	return c.AssignErr
}

func (c *Client) RemoveFromGroup(_ context.Context, groupID, key string) error {
	c.record("remove %s %s", groupID, key)
	return c.RemoveErr
}

func (c *Client) GrantApplication(_ context.Context, appID, key string) error {
	c.record("grant %s %s", appID, key)
	return c.GrantErr
}

func (c *Client) ListSystemEvents(_ context.Context, filter string, since time.Time, limit int) ([]directory.Event, error) {
	c.record("list-events filter=%q limit=%d", filter, limit)
	return c.Events, c.EventsErr
}

var _ directory.Client = (*Client)(nil)
