package onboarding

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// GroupRules maps attribute name → attribute value → group id. An entity
// whose profile carries a matching attribute value is assigned the mapped
// group during the group-assignment stage.
type GroupRules map[string]map[string]string

// LoadRules reads a YAML rule table, e.g.:
//
//	department:
//	  Engineering: grp-eng
//	  Sales: grp-sales
//	location:
//	  Berlin: grp-emea
func LoadRules(reader io.Reader) (GroupRules, error) {
	payload, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	var rules GroupRules
	if err := yaml.Unmarshal(payload, &rules); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	return rules, nil
}

// LoadRulesFile reads a YAML rule table from disk.
func LoadRulesFile(path string) (GroupRules, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open rules file: %w", err)
	}
	defer file.Close()
	return LoadRules(file)
}
