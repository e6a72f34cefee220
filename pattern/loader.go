package pattern

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tables groups rule tables by category.
type Tables map[Category][]Rule

// Add appends rules to the table of their category.
func (t Tables) Add(rules ...Rule) {
	for _, r := range rules {
		t[r.Category] = append(t[r.Category], r)
	}
}

// Matcher compiles the table for c.
func (t Tables) Matcher(c Category) (*Matcher, error) {
	return Compile(string(c), t[c])
}

// ruleFile is the YAML layout accepted by ParseRules:
//
//	rules:
//	  - id: custom.deep_fry_ice
//	    category: unsafe_cooking
//	    pattern: '\bfrozen\b.{0,30}\bdeep fry'
//	    message: frozen food dropped into hot oil
//	    detail: Thaw and dry food before frying.
type ruleFile struct {
	Rules []Rule `yaml:"rules"`
}

// ParseRules decodes rules from YAML and checks that each one compiles.
func ParseRules(data []byte) ([]Rule, error) {
	var f ruleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("pattern: parse rules: %w", err)
	}
	for i, r := range f.Rules {
		if r.ID == "" {
			return nil, fmt.Errorf("%w: rule %d has no id", ErrInvalidPattern, i)
		}
	}
	if _, err := Compile("file", f.Rules); err != nil {
		return nil, err
	}
	return f.Rules, nil
}

// LoadRules reads a YAML rule file from path.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("pattern: read rules %s: %w", path, err)
	}
	return ParseRules(data)
}

// LoadTables returns the built-in tables extended with the rules in path.
// An empty path yields the built-ins alone.
func LoadTables(path string) (Tables, error) {
	tables := BuiltinRules()
	if path == "" {
		return tables, nil
	}
	extra, err := LoadRules(path)
	if err != nil {
		return nil, err
	}
	tables.Add(extra...)
	for _, c := range Categories {
		if _, err := tables.Matcher(c); err != nil {
			return nil, err
		}
	}
	return tables, nil
}
