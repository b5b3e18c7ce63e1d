package domain

import "time"

type Role string

const (
	RoleViewer          Role = "viewer"
	RoleStaff           Role = "staff"
	RoleSENCO           Role = "senco"
	RoleDSL             Role = "dsl"
	RoleBusinessManager Role = "business_manager"
	RoleSiteManager     Role = "site_manager"
	RoleHeadteacher     Role = "headteacher"
	RoleTrustLeader     Role = "trust_leader"
	RoleAdmin           Role = "admin"
)

// QueryContext is the optional UI hint sent alongside a question.
type QueryContext struct {
	App  string `json:"app,omitempty"`
	Page string `json:"page,omitempty"`
}

// SchoolContext holds organizational facts used to enrich specialist prompts.
// Every field is optional.
type SchoolContext struct {
	Name               string `json:"name,omitempty"`
	Type               string `json:"type,omitempty"` // maintained, academy, special, independent
	Phase              string `json:"phase,omitempty"`
	LocalAuthority     string `json:"local_authority,omitempty"`
	TrustName          string `json:"trust_name,omitempty"`
	PupilCount         int    `json:"pupil_count,omitempty"`
	OldestBuildingYear int    `json:"oldest_building_year,omitempty"`
}

func (s SchoolContext) IsEmpty() bool {
	return s == SchoolContext{}
}

// Session identifies the caller for the lifetime of one orchestrator.
type Session struct {
	ID                  string
	CallerID            string
	OrganizationID      string
	Role                Role
	Subscription        SubscriptionState
	School              SchoolContext
	PerspectivesEnabled bool
}

// Question is immutable once received.
type Question struct {
	Text       string
	Context    QueryContext
	ReceivedAt time.Time
}
