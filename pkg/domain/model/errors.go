package model

import "github.com/m-mizutani/goerr/v2"

// Domain rule violations
var (
	ErrInvalidTransition = goerr.New("case status transition is not allowed")
	ErrPermissionDenied  = goerr.New("permission denied")
	ErrInvalidInput      = goerr.New("invalid input")
	ErrInvalidDocument   = goerr.New("document status change is not allowed")
)

// Context keys for error values
const (
	CaseIDKey       = "case_id"
	FromStatusKey   = "from_status"
	ToStatusKey     = "to_status"
	RoleKey         = "role"
	ActionKey       = "action"
	DocumentIDKey   = "document_id"
	AssessmentIDKey = "assessment_id"
	StepKey         = "step"
)
