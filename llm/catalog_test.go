package llm

import (
	"testing"

	"help-desk/domain"
	"help-desk/errors"

	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog_Resolve(t *testing.T) {
	req := require.New(t)
	catalog := MustDefaultCatalog()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "Cheap alias", input: AliasCheap, expected: ModelHaiku3},
		{name: "Fast alias", input: AliasFast, expected: ModelHaiku35},
		{name: "Premium alias", input: AliasPremium, expected: ModelSonnet45},
		{name: "Default alias", input: AliasDefault, expected: ModelHaiku3},
		{name: "Concrete id", input: ModelOpus41, expected: ModelOpus41},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := catalog.Resolve(tt.input)
			req.NoError(err)
			req.Equal(tt.expected, m.ID)
		})
	}

	_, err := catalog.Resolve("gpt-2")
	req.ErrorIs(err, errors.ErrCatalogMisconfigured)
}

func TestModelDescriptor_Credits(t *testing.T) {
	req := require.New(t)
	haiku := ModelDescriptor{ID: ModelHaiku3, InputCostPerMillion: 0.25}

	req.InDelta(1.25, haiku.OutputCostPerMillion(), 1e-9)
	// 2000*0.25 + 400*1.25 = 1000 micro-dollars = 0.1 credit
	req.InDelta(0.1, haiku.Credits(2000, 400), 1e-9)
	req.Zero(haiku.Credits(0, 0))
}

func TestNewCatalog_Misconfigured(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CatalogConfig)
	}{
		{
			name:   "Default model missing",
			mutate: func(c *CatalogConfig) { c.Default = "unknown" },
		},
		{
			name:   "Alias pointing nowhere",
			mutate: func(c *CatalogConfig) { c.Aliases["smart"] = "unknown" },
		},
		{
			name:   "Task candidate missing",
			mutate: func(c *CatalogConfig) { c.Tasks[domain.TaskSynthesis] = []string{"unknown"} },
		},
		{
			name:   "Plan without allow-list",
			mutate: func(c *CatalogConfig) { delete(c.Plans, domain.PlanSchools) },
		},
		{
			name:   "Plan not allowing the default",
			mutate: func(c *CatalogConfig) { c.Plans[domain.PlanFree] = []string{ModelHaiku35} },
		},
		{
			name:   "Duplicate model",
			mutate: func(c *CatalogConfig) { c.Models = append(c.Models, c.Models[0]) },
		},
		{
			name:   "Free model",
			mutate: func(c *CatalogConfig) { c.Models[1].InputCostPerMillion = 0 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultCatalogConfig()
			tt.mutate(&cfg)
			_, err := NewCatalog(cfg)
			require.ErrorIs(t, err, errors.ErrCatalogMisconfigured)
		})
	}
}
