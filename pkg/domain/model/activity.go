package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/optimatax/reliefdesk/pkg/domain/types"
)

// ActivityID is the unique identifier of an activity entry
type ActivityID string

// NewActivityID generates a new activity ID
func NewActivityID() ActivityID {
	return ActivityID(uuid.New().String())
}

// Activity is an audit trail entry
type Activity struct {
	ID          ActivityID
	ActorID     UserID
	Kind        types.EventKind
	Description string
	Context     ActivityContext
	CreatedAt   time.Time
}

// ActivityContext links an activity to the resources it touched
type ActivityContext struct {
	CaseID       CaseID
	DocumentID   DocumentID
	AssessmentID AssessmentID
	FromStatus   types.CaseStatus
	ToStatus     types.CaseStatus
}

// NewActivityFromEvent records an event in the audit trail
func NewActivityFromEvent(ev *Event) *Activity {
	actx := ActivityContext{
		CaseID:       ev.CaseID,
		DocumentID:   ev.DocumentID,
		AssessmentID: ev.AssessmentID,
	}
	if ev.Kind == types.EventCaseStatusChanged {
		actx.FromStatus = ev.FromStatus
		actx.ToStatus = ev.ToStatus
	}
	return &Activity{
		ID:          NewActivityID(),
		ActorID:     ev.ActorID,
		Kind:        ev.Kind,
		Description: ev.Description(),
		Context:     actx,
		CreatedAt:   ev.OccurredAt,
	}
}
