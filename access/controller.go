// Package access decides which domains a subscription plan may ask about.
package access

import (
	"fmt"

	"help-desk/domain"

	"github.com/samber/lo"
)

// premiumDomains are reserved to the trusts plan.
var premiumDomains = []domain.Domain{domain.DomainGovernance, domain.DomainStrategy}

// freeDomains are the only domains open on the free plan. Operations is always open.
var freeDomains = []domain.Domain{domain.DomainGeneral, domain.DomainOperations}

// Allowed is a pure function of plan and domain. Unknown plans get nothing.
func Allowed(plan domain.Plan, d domain.Domain) bool {
	switch plan {
	case domain.PlanFree:
		return lo.Contains(freeDomains, d)
	case domain.PlanSchools:
		return lo.Contains(domain.AllDomains, d) && !lo.Contains(premiumDomains, d)
	case domain.PlanTrusts:
		return lo.Contains(domain.AllDomains, d)
	default:
		return false
	}
}

// RequiredPlan is the cheapest plan giving access to d.
func RequiredPlan(d domain.Domain) domain.Plan {
	for _, plan := range []domain.Plan{domain.PlanFree, domain.PlanSchools, domain.PlanTrusts} {
		if Allowed(plan, d) {
			return plan
		}
	}
	return domain.PlanTrusts
}

// UpgradeMessage is the terminal answer for a denied domain.
func UpgradeMessage(current domain.Plan, d domain.Domain) string {
	return fmt.Sprintf(
		"Questions about %s are not included in your %s plan. Upgrade to the %s plan to ask our %s specialist.",
		d, current, RequiredPlan(d), d)
}
