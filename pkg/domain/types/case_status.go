package types

import "fmt"

// CaseStatus represents the lifecycle status of a relief case
type CaseStatus string

const (
	CaseStatusInitialAssessment  CaseStatus = "INITIAL_ASSESSMENT"
	CaseStatusDocumentCollection CaseStatus = "DOCUMENT_COLLECTION"
	CaseStatusFormPreparation    CaseStatus = "FORM_PREPARATION"
	CaseStatusReview             CaseStatus = "REVIEW"
	CaseStatusSubmission         CaseStatus = "SUBMISSION"
	CaseStatusIRSProcessing      CaseStatus = "IRS_PROCESSING"
	CaseStatusNegotiation        CaseStatus = "NEGOTIATION"
	CaseStatusAccepted           CaseStatus = "ACCEPTED"
	CaseStatusRejected           CaseStatus = "REJECTED"
	CaseStatusWithdrawn          CaseStatus = "WITHDRAWN"
	CaseStatusOnHold             CaseStatus = "ON_HOLD"
	CaseStatusClosed             CaseStatus = "CLOSED"
)

// AllCaseStatuses returns all valid case statuses in lifecycle order
func AllCaseStatuses() []CaseStatus {
	return []CaseStatus{
		CaseStatusInitialAssessment,
		CaseStatusDocumentCollection,
		CaseStatusFormPreparation,
		CaseStatusReview,
		CaseStatusSubmission,
		CaseStatusIRSProcessing,
		CaseStatusNegotiation,
		CaseStatusAccepted,
		CaseStatusRejected,
		CaseStatusWithdrawn,
		CaseStatusOnHold,
		CaseStatusClosed,
	}
}

// IsValid checks if the case status is valid
func (s CaseStatus) IsValid() bool {
	switch s {
	case CaseStatusInitialAssessment,
		CaseStatusDocumentCollection,
		CaseStatusFormPreparation,
		CaseStatusReview,
		CaseStatusSubmission,
		CaseStatusIRSProcessing,
		CaseStatusNegotiation,
		CaseStatusAccepted,
		CaseStatusRejected,
		CaseStatusWithdrawn,
		CaseStatusOnHold,
		CaseStatusClosed:
		return true
	default:
		return false
	}
}

// IsOutcome reports whether the status is a final decision on the case
// (accepted, rejected or withdrawn). Outcome cases can only be closed.
func (s CaseStatus) IsOutcome() bool {
	switch s {
	case CaseStatusAccepted, CaseStatusRejected, CaseStatusWithdrawn:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition is possible
func (s CaseStatus) IsTerminal() bool {
	return s == CaseStatusClosed
}

// IsActive reports whether the case is still being worked on
func (s CaseStatus) IsActive() bool {
	return s.IsValid() && !s.IsOutcome() && !s.IsTerminal()
}

// Normalize returns the status, treating empty as the initial status.
func (s CaseStatus) Normalize() CaseStatus {
	if s == "" {
		return CaseStatusInitialAssessment
	}
	return s
}

// String returns the string representation of the case status
func (s CaseStatus) String() string {
	return string(s)
}

// ParseCaseStatus parses a string into a CaseStatus
func ParseCaseStatus(s string) (CaseStatus, error) {
	status := CaseStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid case status: %s", s)
	}
	return status, nil
}
