package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	platformerrors "github.com/kapilduraphe/okta-mcp-server/internal/platform/errors"
)

const (
	// maxListLimit bounds any single directory listing request.
	maxListLimit = 200
	// rateLimitMaxWait caps how long a single 429 retry will wait.
	rateLimitMaxWait = 30 * time.Second
)

// OktaClient is a directory Client backed by the Okta management REST API.
type OktaClient struct {
	orgURL string
	http   *http.Client
	auth   Authorizer
}

// NewOktaClient creates a directory client for the given Okta org.
func NewOktaClient(orgURL string, auth Authorizer, httpClient *http.Client) (*OktaClient, error) {
	orgURL = strings.TrimRight(strings.TrimSpace(orgURL), "/")
	if orgURL == "" {
		return nil, fmt.Errorf("org url is required")
	}
	if auth == nil {
		return nil, fmt.Errorf("authorizer is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &OktaClient{orgURL: orgURL, http: httpClient, auth: auth}, nil
}

// oktaUser is the wire shape of an Okta user.
type oktaUser struct {
	ID      string         `json:"id"`
	Status  string         `json:"status"`
	Profile map[string]any `json:"profile"`
}

// oktaGroup is the wire shape of an Okta group.
type oktaGroup struct {
	ID      string `json:"id"`
	Profile struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	} `json:"profile"`
}

// oktaEvent is the wire shape of an Okta system log entry.
type oktaEvent struct {
	UUID      string    `json:"uuid"`
	EventType string    `json:"eventType"`
	Severity  string    `json:"severity"`
	Published time.Time `json:"published"`
	Actor     struct {
		DisplayName string `json:"displayName"`
	} `json:"actor"`
	DisplayMessage string `json:"displayMessage"`
}

// oktaError is the wire shape of an Okta API error response.
type oktaError struct {
	ErrorCode    string `json:"errorCode"`
	ErrorSummary string `json:"errorSummary"`
}

func (c *OktaClient) Get(ctx context.Context, key string) (Record, error) {
	var user oktaUser
	if err := c.call(ctx, http.MethodGet, "/api/v1/users/"+url.PathEscape(key), nil, nil, &user); err != nil {
		return Record{}, err
	}
	return recordFromUser(user), nil
}

func (c *OktaClient) ListFiltered(ctx context.Context, expression string, limit int) ([]Record, error) {
	query := url.Values{}
	query.Set("search", expression)
	query.Set("limit", strconv.Itoa(clampLimit(limit)))
	return c.listUsers(ctx, query, operatorOf(expression))
}

func (c *OktaClient) ListFreeText(ctx context.Context, text string, limit int) ([]Record, error) {
	query := url.Values{}
	query.Set("q", text)
	query.Set("limit", strconv.Itoa(clampLimit(limit)))
	return c.listUsers(ctx, query, "")
}

func (c *OktaClient) ListAll(ctx context.Context, limit int) ([]Record, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(clampLimit(limit)))
	return c.listUsers(ctx, query, "")
}

func (c *OktaClient) listUsers(ctx context.Context, query url.Values, operator string) ([]Record, error) {
	var users []oktaUser
	if err := c.callWithOperator(ctx, http.MethodGet, "/api/v1/users", query, nil, &users, operator); err != nil {
		return nil, err
	}
	records := make([]Record, 0, len(users))
	for _, user := range users {
		records = append(records, recordFromUser(user))
	}
	return records, nil
}

func (c *OktaClient) Create(ctx context.Context, profile map[string]string, activate bool) (Record, error) {
	query := url.Values{}
	query.Set("activate", strconv.FormatBool(activate))
	body := map[string]any{"profile": profile}
	var user oktaUser
	if err := c.call(ctx, http.MethodPost, "/api/v1/users", query, body, &user); err != nil {
		return Record{}, err
	}
	return recordFromUser(user), nil
}

func (c *OktaClient) SetActivation(ctx context.Context, key string, notify bool) error {
	query := url.Values{}
	query.Set("sendEmail", strconv.FormatBool(notify))
	path := "/api/v1/users/" + url.PathEscape(key) + "/lifecycle/activate"
	return c.call(ctx, http.MethodPost, path, query, nil, nil)
}

func (c *OktaClient) Deactivate(ctx context.Context, key string) error {
	path := "/api/v1/users/" + url.PathEscape(key) + "/lifecycle/deactivate"
	return c.call(ctx, http.MethodPost, path, nil, nil, nil)
}

func (c *OktaClient) Delete(ctx context.Context, key string) error {
	return c.call(ctx, http.MethodDelete, "/api/v1/users/"+url.PathEscape(key), nil, nil, nil)
}

func (c *OktaClient) ListGroups(ctx context.Context, limit int) ([]Group, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(clampLimit(limit)))
	var wire []oktaGroup
	if err := c.call(ctx, http.MethodGet, "/api/v1/groups", query, nil, &wire); err != nil {
		return nil, err
	}
	groups := make([]Group, 0, len(wire))
	for _, g := range wire {
		groups = append(groups, Group{ID: g.ID, Name: g.Profile.Name, Description: g.Profile.Description})
	}
	return groups, nil
}

func (c *OktaClient) AssignToGroup(ctx context.Context, groupID, key string) error {
	path := "/api/v1/groups/" + url.PathEscape(groupID) + "/users/" + url.PathEscape(key)
	return c.call(ctx, http.MethodPut, path, nil, nil, nil)
}

func (c *OktaClient) RemoveFromGroup(ctx context.Context, groupID, key string) error {
	path := "/api/v1/groups/" + url.PathEscape(groupID) + "/users/" + url.PathEscape(key)
	return c.call(ctx, http.MethodDelete, path, nil, nil, nil)
}

func (c *OktaClient) GrantApplication(ctx context.Context, appID, key string) error {
	path := "/api/v1/apps/" + url.PathEscape(appID) + "/users"
	return c.call(ctx, http.MethodPost, path, nil, map[string]any{"id": key}, nil)
}

func (c *OktaClient) ListSystemEvents(ctx context.Context, filter string, since time.Time, limit int) ([]Event, error) {
	query := url.Values{}
	if filter != "" {
		query.Set("filter", filter)
	}
	if !since.IsZero() {
		query.Set("since", since.UTC().Format(time.RFC3339))
	}
	query.Set("limit", strconv.Itoa(clampLimit(limit)))
	var wire []oktaEvent
	if err := c.call(ctx, http.MethodGet, "/api/v1/logs", query, nil, &wire); err != nil {
		return nil, err
	}
	events := make([]Event, 0, len(wire))
	for _, e := range wire {
		events = append(events, Event{
			ID:        e.UUID,
			Type:      e.EventType,
			Severity:  e.Severity,
			Actor:     e.Actor.DisplayName,
			Message:   e.DisplayMessage,
			Published: e.Published,
		})
	}
	return events, nil
}

func (c *OktaClient) call(ctx context.Context, method, path string, query url.Values, body, out any) error {
	return c.callWithOperator(ctx, method, path, query, body, out, "")
}

// callWithOperator performs one API call. When operator is non-empty,
// an "invalid search criteria" rejection is surfaced as a CapabilityError
// so callers can branch on the type instead of the response text.
func (c *OktaClient) callWithOperator(ctx context.Context, method, path string, query url.Values, body, out any, operator string) error {
	resp, payload, err := c.roundTrip(ctx, method, path, query, body)
	if err != nil {
		return platformerrors.Wrap(platformerrors.CodeTransport, fmt.Sprintf("directory %s %s failed", method, path), err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil || len(payload) == 0 {
			return nil
		}
		if err := json.Unmarshal(payload, out); err != nil {
			return platformerrors.Wrap(platformerrors.CodeTransport, "decode directory response", err)
		}
		return nil
	}

	var apiErr oktaError
	_ = json.Unmarshal(payload, &apiErr)
	summary := apiErr.ErrorSummary
	if summary == "" {
		summary = strings.TrimSpace(string(payload))
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return &NotFoundError{Key: path}
	case resp.StatusCode == http.StatusBadRequest && operator != "" && isSearchCriteriaRejection(summary):
		return &CapabilityError{Operator: operator}
	default:
		return platformerrors.WithMetadata(
			platformerrors.CodeTransport,
			fmt.Sprintf("directory %s %s: %s", method, path, summary),
			map[string]string{"status": strconv.Itoa(resp.StatusCode), "errorCode": apiErr.ErrorCode},
		)
	}
}

// roundTrip executes the HTTP exchange, retrying once on a 429 when the
// advertised reset is near enough to wait out.
func (c *OktaClient) roundTrip(ctx context.Context, method, path string, query url.Values, body any) (*http.Response, []byte, error) {
	for attempt := 0; ; attempt++ {
		req, err := c.newRequest(ctx, method, path, query, body)
		if err != nil {
			return nil, nil, err
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, nil, err
		}
		payload, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			return nil, nil, err
		}

		if resp.StatusCode != http.StatusTooManyRequests || attempt > 0 {
			return resp, payload, nil
		}
		wait, ok := rateLimitWait(resp.Header.Get("X-Rate-Limit-Reset"), time.Now())
		if !ok {
			return resp, payload, nil
		}
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		}
	}
}

func (c *OktaClient) newRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	endpoint := c.orgURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if err := c.auth.Authorize(req); err != nil {
		return nil, fmt.Errorf("authorize request: %w", err)
	}
	return req, nil
}

func recordFromUser(user oktaUser) Record {
	profile := make(map[string]string, len(user.Profile))
	for name, value := range user.Profile {
		if value == nil {
			continue
		}
		switch v := value.(type) {
		case string:
			profile[name] = v
		default:
			profile[name] = fmt.Sprint(v)
		}
	}
	return Record{ID: user.ID, Status: user.Status, Profile: profile}
}

// isSearchCriteriaRejection matches the phrasing Okta uses when a search
// expression's operator is not honored. This is the only place response
// prose is inspected; everything above branches on CapabilityError.
func isSearchCriteriaRejection(summary string) bool {
	lowered := strings.ToLower(summary)
	return strings.Contains(lowered, "invalid search criteria") ||
		strings.Contains(lowered, "operator") && strings.Contains(lowered, "not supported")
}

// operatorOf extracts the operator token from an "attribute op value"
// search expression for CapabilityError reporting.
func operatorOf(expression string) string {
	fields := strings.Fields(expression)
	if len(fields) < 2 {
		return expression
	}
	return fields[1]
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

// rateLimitWait converts an epoch-seconds reset header into a wait duration,
// rejecting absent, unparsable or too-distant resets.
func rateLimitWait(header string, now time.Time) (time.Duration, bool) {
	if header == "" {
		return 0, false
	}
	epoch, err := strconv.ParseInt(header, 10, 64)
	if err != nil {
		return 0, false
	}
	wait := time.Unix(epoch, 0).Sub(now)
	if wait <= 0 {
		wait = time.Second
	}
	if wait > rateLimitMaxWait {
		return 0, false
	}
	return wait, true
}
