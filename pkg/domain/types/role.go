package types

import "fmt"

// Role is the access role of a user account
type Role string

const (
	RoleClient          Role = "CLIENT"
	RoleTaxProfessional Role = "TAX_PROFESSIONAL"
	RoleAdmin           Role = "ADMIN"
)

// AllRoles returns all valid roles
func AllRoles() []Role {
	return []Role{
		RoleClient,
		RoleTaxProfessional,
		RoleAdmin,
	}
}

// IsValid checks if the role is valid
func (r Role) IsValid() bool {
	switch r {
	case RoleClient, RoleTaxProfessional, RoleAdmin:
		return true
	default:
		return false
	}
}

// IsStaff reports whether the role belongs to firm staff rather than a taxpayer
func (r Role) IsStaff() bool {
	return r == RoleTaxProfessional || r == RoleAdmin
}

func (r Role) String() string {
	return string(r)
}

// ParseRole parses a string into a Role
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.IsValid() {
		return "", fmt.Errorf("invalid role: %s", s)
	}
	return r, nil
}

// Action is a capability that can be granted to a role
type Action string

const (
	ActionCreateCase       Action = "create_case"
	ActionViewAllCases     Action = "view_all_cases"
	ActionTransitionCase   Action = "transition_case"
	ActionAssignCase       Action = "assign_case"
	ActionUploadDocument   Action = "upload_document"
	ActionVerifyDocument   Action = "verify_document"
	ActionViewActivity     Action = "view_activity"
	ActionManageUsers      Action = "manage_users"
	ActionCreateAssessment Action = "create_assessment"
)

func (a Action) String() string {
	return string(a)
}
