package model

import "github.com/optimatax/reliefdesk/pkg/domain/types"

// Actor is the authenticated principal performing an operation
type Actor struct {
	UserID UserID
	Email  string
	Name   string
	Role   types.Role
}

// SystemActor is used for changes made by background workers
var SystemActor = &Actor{
	UserID: "system",
	Name:   "system",
	Role:   types.RoleAdmin,
}

var capabilities = map[types.Role][]types.Action{
	types.RoleClient: {
		types.ActionCreateCase,
		types.ActionUploadDocument,
		types.ActionCreateAssessment,
	},
	types.RoleTaxProfessional: {
		types.ActionTransitionCase,
		types.ActionUploadDocument,
		types.ActionVerifyDocument,
		types.ActionViewActivity,
		types.ActionCreateAssessment,
	},
	types.RoleAdmin: {
		types.ActionCreateCase,
		types.ActionViewAllCases,
		types.ActionTransitionCase,
		types.ActionAssignCase,
		types.ActionUploadDocument,
		types.ActionVerifyDocument,
		types.ActionViewActivity,
		types.ActionManageUsers,
		types.ActionCreateAssessment,
	},
}

// Can reports whether the role is granted the action. This is the only place
// role capabilities are defined.
func Can(role types.Role, action types.Action) bool {
	for _, a := range capabilities[role] {
		if a == action {
			return true
		}
	}
	return false
}

// Can reports whether the actor's role is granted the action
func (a *Actor) Can(action types.Action) bool {
	if a == nil {
		return false
	}
	return Can(a.Role, action)
}

// CanAccessCase reports whether the actor may see the case: its owner, the
// assigned reviewer, or a role allowed to view all cases.
func (a *Actor) CanAccessCase(c *Case) bool {
	if a == nil || c == nil {
		return false
	}
	if a.Can(types.ActionViewAllCases) {
		return true
	}
	return c.OwnerID == a.UserID || (c.AssignedTo != "" && c.AssignedTo == a.UserID)
}
