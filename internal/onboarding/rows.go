// Package onboarding imports entity rows from tabular data, assigns them to
// groups by attribute rules and provisions application access, isolating
// failures per entity and reporting per stage.
package onboarding

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// Required row fields. Remaining columns become optional profile attributes.
const (
	fieldEmail     = "email"
	fieldFirstName = "firstName"
	fieldLastName  = "lastName"
)

// Row is one raw tabular record: the contact identifier, given and family
// names, plus arbitrary optional attribute columns.
type Row struct {
	Email      string
	FirstName  string
	LastName   string
	Attributes map[string]string
}

// Complete reports whether every required field is present.
func (r Row) Complete() bool {
	return r.Email != "" && r.FirstName != "" && r.LastName != ""
}

// Key identifies the row in reports; creation failures have no entity id yet.
func (r Row) Key() string {
	if r.Email != "" {
		return r.Email
	}
	return fmt.Sprintf("%s %s", r.FirstName, r.LastName)
}

// profile builds the directory profile for entity creation, with the contact
// identifier doubling as the login.
func (r Row) profile() map[string]string {
	profile := make(map[string]string, len(r.Attributes)+4)
	for name, value := range r.Attributes {
		profile[name] = value
	}
	profile["login"] = r.Email
	profile[fieldEmail] = r.Email
	profile[fieldFirstName] = r.FirstName
	profile[fieldLastName] = r.LastName
	return profile
}

// ParseCSV reads header-plus-data tabular input into rows. Unknown columns
// are kept as optional attributes; missing required cells are kept empty so
// the import stage can record the failure per row instead of aborting.
func ParseCSV(reader io.Reader) ([]Row, error) {
	r := csv.NewReader(reader)
	r.TrimLeadingSpace = true
	// Rows with missing trailing cells still import; the gap is recorded as
	// a per-row failure, not a parse error.
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("input has no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("read header row: %w", err)
	}
	columns := make([]string, len(header))
	for i, name := range header {
		columns[i] = strings.TrimSpace(name)
	}

	var rows []Row
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(rows)+2, err)
		}
		row := Row{Attributes: map[string]string{}}
		for i, cell := range record {
			if i >= len(columns) {
				break
			}
			value := strings.TrimSpace(cell)
			switch columns[i] {
			case fieldEmail:
				row.Email = value
			case fieldFirstName:
				row.FirstName = value
			case fieldLastName:
				row.LastName = value
			default:
				if value != "" {
					row.Attributes[columns[i]] = value
				}
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
