package pattern

import (
	"fmt"
	"regexp"
	"strings"
)

// Category names the kind of content a rule detects.
type Category string

const (
	// CategorySecurity covers injection attempts and requests for system access.
	CategorySecurity Category = "security"
	// CategoryInappropriate covers violence, illegal activity, hate and explicit content.
	CategoryInappropriate Category = "inappropriate"
	// CategoryUnsafeCooking covers instructions that endanger whoever follows them.
	CategoryUnsafeCooking Category = "unsafe_cooking"
	// CategorySuspicious covers output that is unusual enough to double check.
	CategorySuspicious Category = "suspicious"
	// CategoryFoodSafety covers food-safety language that deserves a warning.
	CategoryFoodSafety Category = "food_safety"
)

// Categories lists every known category in evaluation order.
var Categories = []Category{
	CategorySecurity,
	CategoryInappropriate,
	CategoryUnsafeCooking,
	CategorySuspicious,
	CategoryFoodSafety,
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Rule is one row of a rule table.
type Rule struct {
	ID       string   `yaml:"id"`
	Category Category `yaml:"category"`
	Pattern  string   `yaml:"pattern"`
	Message  string   `yaml:"message"`
	// Detail is shown alongside the message, e.g. the safety rationale of an
	// unsafe cooking rule.
	Detail string `yaml:"detail,omitempty"`

	// Accept receives the named submatches of a regexp hit, plus the whole hit
	// under the empty name, and decides whether the rule fires. Nil accepts
	// every hit.
	Accept func(groups map[string]string) bool `yaml:"-"`
}

// Match describes a rule that fired against a piece of text.
type Match struct {
	RuleID   string
	Category Category
	Message  string
	Detail   string
	// Text is the matched fragment of the normalized input.
	Text string
}

type compiledRule struct {
	Rule
	re *regexp.Regexp
}

// Matcher is a compiled, immutable rule table. It is safe for concurrent use.
type Matcher struct {
	name  string
	rules []compiledRule
}

// Compile builds a Matcher from rules. Patterns are made case-insensitive
// when they are not already. A rule that fails to compile is reported as
// ErrInvalidPattern wrapped with its ID.
func Compile(name string, rules []Rule) (*Matcher, error) {
	m := &Matcher{name: name, rules: make([]compiledRule, 0, len(rules))}
	seen := make(map[string]struct{}, len(rules))
	for _, r := range rules {
		if !r.Category.Valid() {
			return nil, fmt.Errorf("%w: rule %q: %q", ErrUnknownCategory, r.ID, r.Category)
		}
		if r.ID != "" {
			if _, dup := seen[r.ID]; dup {
				return nil, fmt.Errorf("%w: %q", ErrDuplicateRule, r.ID)
			}
			seen[r.ID] = struct{}{}
		}
		expr := r.Pattern
		if strings.TrimSpace(expr) == "" {
			return nil, fmt.Errorf("%w: rule %q: empty pattern", ErrInvalidPattern, r.ID)
		}
		if !strings.HasPrefix(expr, "(?i)") {
			expr = "(?i)" + expr
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("%w: rule %q: %v", ErrInvalidPattern, r.ID, err)
		}
		m.rules = append(m.rules, compiledRule{Rule: r, re: re})
	}
	return m, nil
}

// MustCompile is Compile for tables known to be valid at init time.
func MustCompile(name string, rules []Rule) *Matcher {
	m, err := Compile(name, rules)
	if err != nil {
		panic(err)
	}
	return m
}

// Name returns the table name given to Compile.
func (m *Matcher) Name() string {
	if m == nil {
		return ""
	}
	return m.name
}

// Len returns the number of rules in the table.
func (m *Matcher) Len() int {
	if m == nil {
		return 0
	}
	return len(m.rules)
}

// Rules returns a copy of the table.
func (m *Matcher) Rules() []Rule {
	if m == nil {
		return nil
	}
	out := make([]Rule, len(m.rules))
	for i, r := range m.rules {
		out[i] = r.Rule
	}
	return out
}

// With returns a new Matcher holding this table followed by extra.
func (m *Matcher) With(extra ...Rule) (*Matcher, error) {
	return Compile(m.Name(), append(m.Rules(), extra...))
}

// Match returns every rule that fires against text, in table order.
func (m *Matcher) Match(text string) []Match {
	if m == nil || text == "" {
		return nil
	}
	normalized := Normalize(text)
	var out []Match
	for i := range m.rules {
		if hit, ok := m.rules[i].find(normalized); ok {
			out = append(out, hit)
		}
	}
	return out
}

// First returns the first rule in table order that fires against text.
func (m *Matcher) First(text string) (Match, bool) {
	if m == nil || text == "" {
		return Match{}, false
	}
	normalized := Normalize(text)
	for i := range m.rules {
		if hit, ok := m.rules[i].find(normalized); ok {
			return hit, true
		}
	}
	return Match{}, false
}

// Matches reports whether any rule fires against text.
func (m *Matcher) Matches(text string) bool {
	_, ok := m.First(text)
	return ok
}

func (r *compiledRule) find(normalized string) (Match, bool) {
	if r.Accept == nil {
		loc := r.re.FindStringIndex(normalized)
		if loc == nil {
			return Match{}, false
		}
		return r.match(normalized[loc[0]:loc[1]]), true
	}

	names := r.re.SubexpNames()
	for _, sub := range r.re.FindAllStringSubmatchIndex(normalized, -1) {
		groups := make(map[string]string, len(names)+1)
		groups[""] = normalized[sub[0]:sub[1]]
		for i, name := range names {
			if name == "" || sub[2*i] < 0 {
				continue
			}
			groups[name] = normalized[sub[2*i]:sub[2*i+1]]
		}
		if r.Accept(groups) {
			return r.match(normalized[sub[0]:sub[1]]), true
		}
	}
	return Match{}, false
}

func (r *compiledRule) match(fragment string) Match {
	return Match{
		RuleID:   r.ID,
		Category: r.Category,
		Message:  r.Message,
		Detail:   r.Detail,
		Text:     fragment,
	}
}
