package model

import (
	"fmt"
	"time"

	"github.com/optimatax/reliefdesk/pkg/domain/types"
)

// Event is a domain event returned by state changes. Side effects such as the
// activity log and notifications are derived from events outside of the core.
type Event struct {
	Kind         types.EventKind
	ActorID      UserID
	OccurredAt   time.Time
	OwnerID      UserID // Owner of the affected resource
	CaseID       CaseID
	DocumentID   DocumentID
	DocumentType types.DocumentType
	AssessmentID AssessmentID
	AssigneeID   UserID
	FromStatus   types.CaseStatus
	ToStatus     types.CaseStatus
	Note         string
}

// NewCaseEvent creates an event about a case
func NewCaseEvent(kind types.EventKind, actorID UserID, c *Case, now time.Time) *Event {
	return &Event{
		Kind:       kind,
		ActorID:    actorID,
		OccurredAt: now,
		OwnerID:    c.OwnerID,
		CaseID:     c.ID,
		ToStatus:   c.Status,
	}
}

// NewDocumentEvent creates an event about a document
func NewDocumentEvent(kind types.EventKind, actorID UserID, d *Document, now time.Time) *Event {
	return &Event{
		Kind:         kind,
		ActorID:      actorID,
		OccurredAt:   now,
		OwnerID:      d.UserID,
		CaseID:       d.CaseID,
		DocumentID:   d.ID,
		DocumentType: d.Type,
	}
}

// NewAssessmentEvent creates an event about an assessment
func NewAssessmentEvent(kind types.EventKind, actorID UserID, a *Assessment, now time.Time) *Event {
	return &Event{
		Kind:         kind,
		ActorID:      actorID,
		OccurredAt:   now,
		OwnerID:      a.UserID,
		CaseID:       a.CaseID,
		AssessmentID: a.ID,
	}
}

// NewUserEvent creates an event about a user account
func NewUserEvent(kind types.EventKind, u *User, now time.Time) *Event {
	return &Event{
		Kind:       kind,
		ActorID:    u.ID,
		OccurredAt: now,
		OwnerID:    u.ID,
	}
}

// Description renders a human readable summary of the event
func (e *Event) Description() string {
	switch e.Kind {
	case types.EventCaseCreated:
		return fmt.Sprintf("Case %s created", e.CaseID)
	case types.EventCaseStatusChanged:
		return fmt.Sprintf("Case %s moved from %s to %s", e.CaseID, e.FromStatus, e.ToStatus)
	case types.EventCaseAssigned:
		return fmt.Sprintf("Case %s assigned to %s", e.CaseID, e.AssigneeID)
	case types.EventCaseOverdue:
		return fmt.Sprintf("Case %s passed its deadline", e.CaseID)
	case types.EventDocumentUploaded:
		return fmt.Sprintf("Document %s uploaded", e.DocumentType)
	case types.EventDocumentProcessed:
		return fmt.Sprintf("Document %s processed", e.DocumentType)
	case types.EventDocumentVerified:
		return fmt.Sprintf("Document %s verified", e.DocumentType)
	case types.EventDocumentRejected:
		if e.Note != "" {
			return fmt.Sprintf("Document %s rejected: %s", e.DocumentType, e.Note)
		}
		return fmt.Sprintf("Document %s rejected", e.DocumentType)
	case types.EventDocumentDeleted:
		return fmt.Sprintf("Document %s deleted", e.DocumentType)
	case types.EventAssessmentCompleted:
		return "Eligibility assessment completed"
	case types.EventUserRegistered:
		return "Account registered"
	case types.EventUserLoggedIn:
		return "Signed in"
	default:
		return string(e.Kind)
	}
}
