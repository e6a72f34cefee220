package pattern

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const customRules = `
rules:
  - id: custom.frozen_fry
    category: unsafe_cooking
    pattern: '\bfrozen\b[^.\n]{0,30}\bdeep[- ]fry'
    message: frozen food dropped into hot oil
    detail: Thaw and dry food before frying.
`

func TestParseRules(t *testing.T) {
	rules, err := ParseRules([]byte(customRules))
	if err != nil {
		t.Fatalf("ParseRules() error = %v", err)
	}
	if len(rules) != 1 {
		t.Fatalf("len(rules) = %d, want 1", len(rules))
	}
	r := rules[0]
	if r.ID != "custom.frozen_fry" || r.Category != CategoryUnsafeCooking {
		t.Errorf("rule = %+v", r)
	}
	if r.Detail != "Thaw and dry food before frying." {
		t.Errorf("Detail = %q", r.Detail)
	}
}

func TestParseRules_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want error
	}{
		{"bad regexp", "rules:\n  - id: x\n    category: security\n    pattern: '(oops'\n", ErrInvalidPattern},
		{"missing id", "rules:\n  - category: security\n    pattern: 'a'\n", ErrInvalidPattern},
		{"bad category", "rules:\n  - id: x\n    category: tasty\n    pattern: 'a'\n", ErrUnknownCategory},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRules([]byte(tt.yaml))
			if !errors.Is(err, tt.want) {
				t.Errorf("ParseRules() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestParseRules_Malformed(t *testing.T) {
	if _, err := ParseRules([]byte("rules: [")); err == nil {
		t.Error("ParseRules() should fail on malformed YAML")
	}
}

func TestLoadTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte(customRules), 0o600); err != nil {
		t.Fatal(err)
	}

	tables, err := LoadTables(path)
	if err != nil {
		t.Fatalf("LoadTables() error = %v", err)
	}
	m, err := tables.Matcher(CategoryUnsafeCooking)
	if err != nil {
		t.Fatalf("Matcher() error = %v", err)
	}
	if m.Len() != len(UnsafeCookingRules())+1 {
		t.Errorf("Len() = %d, want built-ins plus one", m.Len())
	}
	hit, ok := m.First("Drop the frozen fries straight in and deep fry")
	if !ok || hit.RuleID != "custom.frozen_fry" {
		t.Errorf("First() = %+v, %v", hit, ok)
	}
}

func TestLoadTables_NoPath(t *testing.T) {
	tables, err := LoadTables("")
	if err != nil {
		t.Fatalf("LoadTables(\"\") error = %v", err)
	}
	if len(tables[CategorySecurity]) != len(SecurityRules()) {
		t.Error("empty path should return the built-in tables")
	}
}

func TestLoadRules_Missing(t *testing.T) {
	_, err := LoadRules(filepath.Join(t.TempDir(), "nope.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("LoadRules() error = %v, want os.ErrNotExist", err)
	}
}
