package access

import (
	"testing"

	"help-desk/domain"

	"github.com/stretchr/testify/require"
)

func TestAllowed(t *testing.T) {
	tests := []struct {
		plan    domain.Plan
		allowed []domain.Domain
	}{
		{
			plan:    domain.PlanFree,
			allowed: []domain.Domain{domain.DomainGeneral, domain.DomainOperations},
		},
		{
			plan: domain.PlanSchools,
			allowed: []domain.Domain{
				domain.DomainGeneral, domain.DomainOperations, domain.DomainEstates, domain.DomainHR,
				domain.DomainSEND, domain.DomainData, domain.DomainSafeguarding, domain.DomainFinance,
			},
		},
		{
			plan:    domain.PlanTrusts,
			allowed: domain.AllDomains,
		},
		{
			plan:    "enterprise",
			allowed: nil,
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.plan), func(t *testing.T) {
			req := require.New(t)
			for _, d := range domain.AllDomains {
				req.Equal(contains(tt.allowed, d), Allowed(tt.plan, d), "plan=%s domain=%s", tt.plan, d)
			}
			req.False(Allowed(tt.plan, "astrology"))
		})
	}
}

func TestRequiredPlan(t *testing.T) {
	req := require.New(t)

	req.Equal(domain.PlanFree, RequiredPlan(domain.DomainOperations))
	req.Equal(domain.PlanSchools, RequiredPlan(domain.DomainEstates))
	req.Equal(domain.PlanTrusts, RequiredPlan(domain.DomainGovernance))
}

func TestUpgradeMessage(t *testing.T) {
	req := require.New(t)

	msg := UpgradeMessage(domain.PlanFree, domain.DomainEstates)

	req.Equal("Questions about estates are not included in your free plan. Upgrade to the schools plan to ask our estates specialist.", msg)
}

func contains(ds []domain.Domain, d domain.Domain) bool {
	for _, x := range ds {
		if x == d {
			return true
		}
	}
	return false
}
