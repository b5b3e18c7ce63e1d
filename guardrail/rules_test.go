package guardrail

import (
	"testing"

	"help-desk/errors"

	"github.com/stretchr/testify/require"
)

func TestDefaultRules(t *testing.T) {
	req := require.New(t)

	rules, err := DefaultRules()

	req.NoError(err)
	req.NotEmpty(rules.safety)
	req.NotEmpty(rules.compliance)
	req.NotEmpty(rules.tone)
	req.Len(rules.permission, 2)
}

func TestParseRules_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "Not yaml",
			input: "safety: [",
		},
		{
			name: "Unknown severity",
			input: `
safety:
  - id: x
    pattern: 'abc'
    severity: maybe`,
		},
		{
			name: "Broken regex",
			input: `
tone:
  - id: x
    pattern: '(unclosed'
    severity: block`,
		},
		{
			name: "Rule without id",
			input: `
compliance:
  - pattern: 'abc'
    severity: advisory`,
		},
		{
			name: "Permission without phrases",
			input: `
permission:
  - id: p
    roles: [viewer]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRules([]byte(tt.input))
			require.ErrorIs(t, err, errors.ErrInvalidRule)
		})
	}
}

func TestParseRules_Extensible(t *testing.T) {
	req := require.New(t)

	// Given a table with a single custom safety rule
	rules, err := ParseRules([]byte(`
safety:
  - id: ladders
    pattern: '(?i)\bstand on a chair\b'
    severity: block
    message: Unsafe working at height
`))
	req.NoError(err)

	// Then the rule is matched without touching any control flow
	rule, ok := firstMatch(rules.safety, "Just stand on a chair to reach it.")
	req.True(ok)
	req.Equal("ladders", rule.ID)
	_, ok = firstMatch(rules.safety, "Use a stepladder.")
	req.False(ok)
}
