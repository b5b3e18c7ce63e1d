package llm

import (
	"help-desk/domain"
	"help-desk/scoring"

	"github.com/samber/lo"
)

// Selector picks the model for a task. It never fails: an empty candidate set yields the default.
type Selector struct {
	catalog *Catalog
}

func NewSelector(catalog *Catalog) *Selector {
	return &Selector{catalog: catalog}
}

// Select intersects the task candidates with the plan allow-list, keeping the task order.
// Under credit pressure the cheapest eligible model wins, otherwise the first one.
func (s *Selector) Select(task domain.TaskType, plan domain.Plan, creditsRemaining float64) ModelDescriptor {
	allowed := s.catalog.plans[plan]
	eligible := lo.FilterMap(s.catalog.tasks[task], func(id string, _ int) (ModelDescriptor, bool) {
		return s.catalog.models[id], lo.Contains(allowed, id)
	})
	if len(eligible) == 0 {
		return s.catalog.Default()
	}
	if scoring.UnderCreditPressure(creditsRemaining) {
		return lo.MinBy(eligible, func(a, b ModelDescriptor) bool {
			return a.InputCostPerMillion < b.InputCostPerMillion
		})
	}
	return eligible[0]
}
