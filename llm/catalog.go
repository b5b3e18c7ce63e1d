package llm

import (
	"fmt"

	"help-desk/domain"
	"help-desk/errors"

	"github.com/samber/lo"
)

const (
	// OutputCostMultiplier prices an output token relative to an input token.
	OutputCostMultiplier = 5.0
	// CreditsPerDollar converts provider cost into credits.
	CreditsPerDollar = 100.0
)

const (
	AliasCheap   = "cheap"
	AliasFast    = "fast"
	AliasPremium = "premium"
	AliasDefault = "default"
)

const (
	ModelHaiku3   = "claude-3-haiku-20240307"
	ModelHaiku35  = "claude-3-5-haiku-latest"
	ModelSonnet45 = "claude-sonnet-4-5"
	ModelOpus41   = "claude-opus-4-1"
)

type Capabilities struct {
	Vision           bool `json:"vision"`
	Streaming        bool `json:"streaming"`
	StructuredOutput bool `json:"structured_output"`
}

// ModelDescriptor prices a model in US dollars per million input tokens.
type ModelDescriptor struct {
	ID                  string       `json:"id"`
	InputCostPerMillion float64      `json:"input_cost_per_million"`
	Capabilities        Capabilities `json:"capabilities"`
}

func (m ModelDescriptor) OutputCostPerMillion() float64 {
	return m.InputCostPerMillion * OutputCostMultiplier
}

// Credits is the credit cost of one call.
func (m ModelDescriptor) Credits(promptTokens, completionTokens int) float64 {
	dollars := (float64(promptTokens)*m.InputCostPerMillion +
		float64(completionTokens)*m.OutputCostPerMillion()) / 1_000_000
	return dollars * CreditsPerDollar
}

// CatalogConfig is the static description of models, aliases and eligibility.
type CatalogConfig struct {
	Models  []ModelDescriptor
	Aliases map[string]string
	// Tasks lists candidates per task, best quality first.
	Tasks map[domain.TaskType][]string
	// Plans lists the models each plan may use.
	Plans map[domain.Plan][]string
	// Default is used when no candidate is eligible. Every plan must allow it.
	Default string
}

// Catalog is read-only once built and shared between sessions.
type Catalog struct {
	models  map[string]ModelDescriptor
	aliases map[string]string
	tasks   map[domain.TaskType][]string
	plans   map[domain.Plan][]string
	def     string
}

// NewCatalog validates cfg. Any dangling reference is a programming error.
func NewCatalog(cfg CatalogConfig) (*Catalog, error) {
	c := &Catalog{
		models:  lo.KeyBy(cfg.Models, func(m ModelDescriptor) string { return m.ID }),
		aliases: cfg.Aliases,
		tasks:   cfg.Tasks,
		plans:   cfg.Plans,
		def:     cfg.Default,
	}
	if len(c.models) != len(cfg.Models) {
		return nil, fmt.Errorf("%w: duplicate model id", errors.ErrCatalogMisconfigured)
	}
	for _, m := range cfg.Models {
		if m.ID == "" || m.InputCostPerMillion <= 0 {
			return nil, fmt.Errorf("%w: invalid model %+v", errors.ErrCatalogMisconfigured, m)
		}
	}
	if _, ok := c.models[c.def]; !ok {
		return nil, fmt.Errorf("%w: default model %q is not in the catalog", errors.ErrCatalogMisconfigured, c.def)
	}
	for alias, id := range c.aliases {
		if _, ok := c.models[id]; !ok {
			return nil, fmt.Errorf("%w: alias %q points to unknown model %q", errors.ErrCatalogMisconfigured, alias, id)
		}
	}
	for task, ids := range c.tasks {
		if err := c.checkIDs(ids); err != nil {
			return nil, fmt.Errorf("%w: task %s: %v", errors.ErrCatalogMisconfigured, task, err)
		}
	}
	for _, plan := range []domain.Plan{domain.PlanFree, domain.PlanSchools, domain.PlanTrusts} {
		ids, ok := c.plans[plan]
		if !ok {
			return nil, fmt.Errorf("%w: plan %s has no allow-list", errors.ErrCatalogMisconfigured, plan)
		}
		if err := c.checkIDs(ids); err != nil {
			return nil, fmt.Errorf("%w: plan %s: %v", errors.ErrCatalogMisconfigured, plan, err)
		}
		if !lo.Contains(ids, c.def) {
			return nil, fmt.Errorf("%w: plan %s does not allow the default model", errors.ErrCatalogMisconfigured, plan)
		}
	}
	return c, nil
}

func (c *Catalog) checkIDs(ids []string) error {
	for _, id := range ids {
		if _, ok := c.models[id]; !ok {
			return fmt.Errorf("unknown model %q", id)
		}
	}
	return nil
}

// Resolve accepts a model id or an alias.
func (c *Catalog) Resolve(name string) (ModelDescriptor, error) {
	if id, ok := c.aliases[name]; ok {
		name = id
	}
	m, ok := c.models[name]
	if !ok {
		return ModelDescriptor{}, fmt.Errorf("%w: unknown model %q", errors.ErrCatalogMisconfigured, name)
	}
	return m, nil
}

func (c *Catalog) Default() ModelDescriptor {
	return c.models[c.def]
}

// DefaultCatalogConfig is the production price list.
func DefaultCatalogConfig() CatalogConfig {
	return CatalogConfig{
		Models: []ModelDescriptor{
			{ID: ModelHaiku3, InputCostPerMillion: 0.25, Capabilities: Capabilities{Vision: true, Streaming: true}},
			{ID: ModelHaiku35, InputCostPerMillion: 0.80, Capabilities: Capabilities{Streaming: true, StructuredOutput: true}},
			{ID: ModelSonnet45, InputCostPerMillion: 3, Capabilities: Capabilities{Vision: true, Streaming: true, StructuredOutput: true}},
			{ID: ModelOpus41, InputCostPerMillion: 15, Capabilities: Capabilities{Vision: true, Streaming: true, StructuredOutput: true}},
		},
		Aliases: map[string]string{
			AliasCheap:   ModelHaiku3,
			AliasDefault: ModelHaiku3,
			AliasFast:    ModelHaiku35,
			AliasPremium: ModelSonnet45,
		},
		Tasks: map[domain.TaskType][]string{
			domain.TaskClassification: {ModelHaiku3, ModelHaiku35},
			domain.TaskSpecialist:     {ModelOpus41, ModelSonnet45, ModelHaiku35, ModelHaiku3},
			domain.TaskPerspective:    {ModelHaiku35, ModelHaiku3},
			domain.TaskSynthesis:      {ModelSonnet45, ModelHaiku35, ModelHaiku3},
			domain.TaskGuardrail:      {ModelHaiku3, ModelHaiku35},
		},
		Plans: map[domain.Plan][]string{
			domain.PlanFree:    {ModelHaiku3, ModelHaiku35},
			domain.PlanSchools: {ModelHaiku3, ModelHaiku35, ModelSonnet45},
			domain.PlanTrusts:  {ModelHaiku3, ModelHaiku35, ModelSonnet45, ModelOpus41},
		},
		Default: ModelHaiku3,
	}
}

func MustDefaultCatalog() *Catalog {
	c, err := NewCatalog(DefaultCatalogConfig())
	if err != nil {
		panic(err)
	}
	return c
}
