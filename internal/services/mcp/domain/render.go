package domain

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kapilduraphe/okta-mcp-server/internal/directory"
)

// renderRecord formats one entity record as indented text, profile
// attributes in name order.
func renderRecord(record directory.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "id: %s\nstatus: %s\n", record.ID, record.Status)

	names := make([]string, 0, len(record.Profile))
	for name := range record.Profile {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, "%s: %s\n", name, record.Profile[name])
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderRecordList formats records as a numbered listing.
func renderRecordList(records []directory.Record) string {
	if len(records) == 0 {
		return "No users matched."
	}
	var b strings.Builder
	for i, record := range records {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "%d. %s", i+1, renderRecord(record))
	}
	return b.String()
}

func renderGroups(groups []directory.Group) string {
	if len(groups) == 0 {
		return "No groups found."
	}
	var b strings.Builder
	for i, group := range groups {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s  %s", group.ID, group.Name)
		if group.Description != "" {
			fmt.Fprintf(&b, " (%s)", group.Description)
		}
	}
	return b.String()
}

func renderEvents(events []directory.Event) string {
	if len(events) == 0 {
		return "No events matched."
	}
	var b strings.Builder
	for i, event := range events {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s [%s] %s actor=%s %s",
			event.Published.Format("2006-01-02T15:04:05Z07:00"),
			event.Severity, event.Type, event.Actor, event.Message)
	}
	return b.String()
}
