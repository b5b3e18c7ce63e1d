package guardrail

import (
	_ "embed"
	"fmt"
	"regexp"

	"help-desk/domain"
	"help-desk/errors"
	"help-desk/moderation"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRules []byte

type Severity string

const (
	SeverityBlock    Severity = "block"
	SeverityAdvisory Severity = "advisory"
)

// Rule is one pattern of the table.
type Rule struct {
	ID         string   `yaml:"id"`
	Pattern    string   `yaml:"pattern"`
	Severity   Severity `yaml:"severity"`
	Message    string   `yaml:"message"`
	Suggestion string   `yaml:"suggestion"`
}

// PermissionRule forbids phrases for some roles.
type PermissionRule struct {
	ID         string        `yaml:"id"`
	Roles      []domain.Role `yaml:"roles"`
	Phrases    []string      `yaml:"phrases"`
	Message    string        `yaml:"message"`
	Suggestion string        `yaml:"suggestion"`
}

// RuleTable is the declarative form, as read from YAML.
type RuleTable struct {
	Safety     []Rule           `yaml:"safety"`
	Compliance []Rule           `yaml:"compliance"`
	Tone       []Rule           `yaml:"tone"`
	Soften     []string         `yaml:"soften"`
	Permission []PermissionRule `yaml:"permission"`
}

type compiledRule struct {
	Rule
	re *regexp.Regexp
}

type compiledPermission struct {
	PermissionRule
	matcher *moderation.PhraseMatcher
}

// Rules is the compiled table. It is read-only and shared between sessions.
type Rules struct {
	safety     []compiledRule
	compliance []compiledRule
	tone       []compiledRule
	permission []compiledPermission
	softener   *moderation.PhraseMatcher
}

// ParseRules decodes and compiles a YAML rule table.
func ParseRules(data []byte) (*Rules, error) {
	var table RuleTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidRule, err)
	}
	return CompileRules(table)
}

// CompileRules validates every rule: known severity, valid regex, non-empty phrase lists.
func CompileRules(table RuleTable) (*Rules, error) {
	var (
		r   Rules
		err error
	)
	if r.safety, err = compile(table.Safety); err != nil {
		return nil, err
	}
	if r.compliance, err = compile(table.Compliance); err != nil {
		return nil, err
	}
	if r.tone, err = compile(table.Tone); err != nil {
		return nil, err
	}
	for _, p := range table.Permission {
		if p.ID == "" || len(p.Roles) == 0 || len(p.Phrases) == 0 {
			return nil, fmt.Errorf("%w: permission rule %q needs roles and phrases", errors.ErrInvalidRule, p.ID)
		}
		m, err := moderation.NewPhraseMatcher(p.Phrases)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", errors.ErrInvalidRule, p.ID, err)
		}
		r.permission = append(r.permission, compiledPermission{PermissionRule: p, matcher: m})
	}
	if r.softener, err = moderation.NewPhraseMatcher(table.Soften); err != nil {
		return nil, fmt.Errorf("%w: soften list: %v", errors.ErrInvalidRule, err)
	}
	return &r, nil
}

func compile(rules []Rule) ([]compiledRule, error) {
	out := make([]compiledRule, 0, len(rules))
	for _, rule := range rules {
		if rule.ID == "" {
			return nil, fmt.Errorf("%w: rule without id", errors.ErrInvalidRule)
		}
		switch rule.Severity {
		case SeverityBlock, SeverityAdvisory:
		default:
			return nil, fmt.Errorf("%w: %s: unknown severity %q", errors.ErrInvalidRule, rule.ID, rule.Severity)
		}
		re, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", errors.ErrInvalidRule, rule.ID, err)
		}
		out = append(out, compiledRule{Rule: rule, re: re})
	}
	return out, nil
}

// DefaultRules compiles the embedded table.
func DefaultRules() (*Rules, error) {
	return ParseRules(defaultRules)
}

func MustDefaultRules() *Rules {
	r, err := DefaultRules()
	if err != nil {
		panic(err)
	}
	return r
}

// firstMatch returns the first rule matching text.
func firstMatch(rules []compiledRule, text string) (compiledRule, bool) {
	for _, r := range rules {
		if r.re.MatchString(text) {
			return r, true
		}
	}
	return compiledRule{}, false
}

func allMatches(rules []compiledRule, text string) []compiledRule {
	var out []compiledRule
	for _, r := range rules {
		if r.re.MatchString(text) {
			out = append(out, r)
		}
	}
	return out
}
