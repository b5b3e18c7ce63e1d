package domain

// Domain is the knowledge bucket a question is routed to.
type Domain string

const (
	DomainGeneral      Domain = "general"
	DomainOperations   Domain = "operations"
	DomainEstates      Domain = "estates"
	DomainHR           Domain = "hr"
	DomainSEND         Domain = "send"
	DomainData         Domain = "data"
	DomainSafeguarding Domain = "safeguarding"
	DomainFinance      Domain = "finance"
	DomainGovernance   Domain = "governance"
	DomainStrategy     Domain = "strategy"
)

// AllDomains lists every routable domain, general first.
var AllDomains = []Domain{
	DomainGeneral,
	DomainOperations,
	DomainEstates,
	DomainHR,
	DomainSEND,
	DomainData,
	DomainSafeguarding,
	DomainFinance,
	DomainGovernance,
	DomainStrategy,
}

type SpecialistID string

const (
	GeneralAssistant  SpecialistID = "general-assistant"
	OperationsManager SpecialistID = "operations-manager"
	EstatesCompliance SpecialistID = "estates-compliance"
	HRAdvisor         SpecialistID = "hr-advisor"
	SENDSpecialist    SpecialistID = "send-specialist"
	DataProtection    SpecialistID = "data-protection-officer"
	SafeguardingLead  SpecialistID = "safeguarding-lead"
	SchoolBusiness    SpecialistID = "school-business-manager"
	GovernanceClerk   SpecialistID = "governance-clerk"
	TrustStrategist   SpecialistID = "trust-strategist"
)

// SpecialistDefinition is immutable once the registry is built.
type SpecialistDefinition struct {
	ID             SpecialistID
	Domain         Domain
	DisplayName    string
	Qualifications []string
	Keywords       []string
	Template       string
	// Attribution is appended when an answer cites nothing.
	Attribution string
}
