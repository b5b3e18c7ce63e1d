package domain

type Plan string

const (
	PlanFree    Plan = "free"
	PlanSchools Plan = "schools"
	PlanTrusts  Plan = "trusts"
)

func (p Plan) Valid() bool {
	switch p {
	case PlanFree, PlanSchools, PlanTrusts:
		return true
	}
	return false
}

// SubscriptionState is read at request start and never written by the core.
type SubscriptionState struct {
	Plan             Plan    `json:"plan"`
	CreditsRemaining float64 `json:"credits_remaining"`
	CreditsUsed      float64 `json:"credits_used"`
}
