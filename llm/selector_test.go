package llm

import (
	"testing"

	"help-desk/domain"

	"github.com/stretchr/testify/require"
)

func TestSelector_Select(t *testing.T) {
	selector := NewSelector(MustDefaultCatalog())

	tests := []struct {
		name     string
		task     domain.TaskType
		plan     domain.Plan
		credits  float64
		expected string
	}{
		{
			name:     "Trusts get the best specialist model",
			task:     domain.TaskSpecialist,
			plan:     domain.PlanTrusts,
			credits:  1000,
			expected: ModelOpus41,
		},
		{
			name:     "Schools stop at sonnet",
			task:     domain.TaskSpecialist,
			plan:     domain.PlanSchools,
			credits:  1000,
			expected: ModelSonnet45,
		},
		{
			name:     "Free plan keeps to haiku",
			task:     domain.TaskSpecialist,
			plan:     domain.PlanFree,
			credits:  1000,
			expected: ModelHaiku35,
		},
		{
			name:     "Credit pressure picks the cheapest eligible",
			task:     domain.TaskSpecialist,
			plan:     domain.PlanTrusts,
			credits:  10,
			expected: ModelHaiku3,
		},
		{
			name:     "Synthesis on schools",
			task:     domain.TaskSynthesis,
			plan:     domain.PlanSchools,
			credits:  500,
			expected: ModelSonnet45,
		},
		{
			name:     "Guardrail checks stay cheap",
			task:     domain.TaskGuardrail,
			plan:     domain.PlanTrusts,
			credits:  500,
			expected: ModelHaiku3,
		},
		{
			name:     "Unknown task falls back to the default",
			task:     "translation",
			plan:     domain.PlanTrusts,
			credits:  500,
			expected: ModelHaiku3,
		},
		{
			name:     "Unknown plan falls back to the default",
			task:     domain.TaskSpecialist,
			plan:     "enterprise",
			credits:  500,
			expected: ModelHaiku3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, selector.Select(tt.task, tt.plan, tt.credits).ID)
		})
	}
}

func TestSelector_AlwaysEligibleForPlan(t *testing.T) {
	req := require.New(t)
	catalog := MustDefaultCatalog()
	selector := NewSelector(catalog)
	tasks := []domain.TaskType{domain.TaskClassification, domain.TaskSpecialist, domain.TaskPerspective, domain.TaskSynthesis, domain.TaskGuardrail}

	for _, plan := range []domain.Plan{domain.PlanFree, domain.PlanSchools, domain.PlanTrusts} {
		for _, task := range tasks {
			for _, credits := range []float64{0, 49, 50, 10_000} {
				m := selector.Select(task, plan, credits)
				req.Contains(catalog.plans[plan], m.ID, "plan=%s task=%s credits=%v", plan, task, credits)
			}
		}
	}
}
