package model

import (
	"slices"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/optimatax/reliefdesk/pkg/domain/types"
)

var transitionGraph = map[types.CaseStatus][]types.CaseStatus{
	types.CaseStatusInitialAssessment:  {types.CaseStatusDocumentCollection},
	types.CaseStatusDocumentCollection: {types.CaseStatusFormPreparation, types.CaseStatusInitialAssessment},
	types.CaseStatusFormPreparation:    {types.CaseStatusReview, types.CaseStatusDocumentCollection},
	types.CaseStatusReview:             {types.CaseStatusSubmission, types.CaseStatusFormPreparation},
	types.CaseStatusSubmission:         {types.CaseStatusIRSProcessing},
	types.CaseStatusIRSProcessing:      {types.CaseStatusNegotiation, types.CaseStatusAccepted, types.CaseStatusRejected},
	types.CaseStatusNegotiation:        {types.CaseStatusAccepted, types.CaseStatusRejected},
	types.CaseStatusAccepted:           {types.CaseStatusClosed},
	types.CaseStatusRejected:           {types.CaseStatusClosed},
	types.CaseStatusWithdrawn:          {types.CaseStatusClosed},
}

var statusProgress = map[types.CaseStatus]int{
	types.CaseStatusInitialAssessment:  10,
	types.CaseStatusDocumentCollection: 25,
	types.CaseStatusFormPreparation:    40,
	types.CaseStatusReview:             55,
	types.CaseStatusSubmission:         70,
	types.CaseStatusIRSProcessing:      80,
	types.CaseStatusNegotiation:        90,
	types.CaseStatusAccepted:           100,
	types.CaseStatusRejected:           100,
	types.CaseStatusWithdrawn:          100,
	types.CaseStatusClosed:             100,
}

// StatusProgress returns the completion percentage of a status. An empty
// status is read as INITIAL_ASSESSMENT. ON_HOLD and unknown values report 0.
func StatusProgress(status types.CaseStatus) int {
	return statusProgress[status.Normalize()]
}

// CalculateProgress returns the completion percentage of the case. A held case
// reports the progress of the status it was held from, or 0 when that status
// is unknown.
func CalculateProgress(c *Case) int {
	status := c.Status.Normalize()
	if status == types.CaseStatusOnHold {
		from := c.HeldFrom()
		if from == "" {
			return 0
		}
		return StatusProgress(from)
	}
	return StatusProgress(status)
}

// HeldFrom returns the status the case was in before it was put on hold, or
// an empty status when the case is not on hold.
func (c *Case) HeldFrom() types.CaseStatus {
	if c.Status != types.CaseStatusOnHold {
		return ""
	}
	for i := len(c.StateHistory) - 1; i >= 0; i-- {
		h := c.StateHistory[i]
		if h.To == types.CaseStatusOnHold && h.From != types.CaseStatusOnHold {
			return h.From
		}
	}
	return ""
}

// AllowedTransitions returns the statuses the case may move to under the strict policy
func (c *Case) AllowedTransitions() []types.CaseStatus {
	status := c.Status.Normalize()
	switch {
	case status == types.CaseStatusClosed:
		return nil
	case status == types.CaseStatusOnHold:
		var next []types.CaseStatus
		if from := c.HeldFrom(); from != "" {
			next = append(next, from)
		}
		return append(next, types.CaseStatusWithdrawn, types.CaseStatusClosed)
	case status.IsOutcome():
		return slices.Clone(transitionGraph[status])
	default:
		next := slices.Clone(transitionGraph[status])
		return append(next, types.CaseStatusOnHold, types.CaseStatusWithdrawn, types.CaseStatusClosed)
	}
}

// CanTransitionTo reports whether the strict policy allows moving to the status
func (c *Case) CanTransitionTo(to types.CaseStatus) bool {
	return slices.Contains(c.AllowedTransitions(), to)
}

// Transition moves the case to a new status and appends exactly one history
// entry. The permissive policy accepts any valid target status.
func (c *Case) Transition(to types.CaseStatus, actor *Actor, policy types.TransitionPolicy, note string, now time.Time) (*Event, error) {
	if !to.IsValid() {
		return nil, goerr.Wrap(ErrInvalidInput, "invalid case status",
			goerr.V(CaseIDKey, c.ID), goerr.V(ToStatusKey, to))
	}
	if !actor.Can(types.ActionTransitionCase) {
		var role types.Role
		if actor != nil {
			role = actor.Role
		}
		return nil, goerr.Wrap(ErrPermissionDenied, "actor cannot transition cases",
			goerr.V(CaseIDKey, c.ID), goerr.V(RoleKey, role))
	}

	from := c.Status.Normalize()
	if policy != types.TransitionPolicyPermissive && !c.CanTransitionTo(to) {
		return nil, goerr.Wrap(ErrInvalidTransition, "transition is not allowed",
			goerr.V(CaseIDKey, c.ID), goerr.V(FromStatusKey, from), goerr.V(ToStatusKey, to))
	}

	c.StateHistory = append(c.StateHistory, StateTransition{
		From:        from,
		To:          to,
		At:          now,
		TriggeredBy: actor.UserID,
		Note:        note,
	})
	c.Status = to
	c.UpdatedAt = now

	ev := NewCaseEvent(types.EventCaseStatusChanged, actor.UserID, c, now)
	ev.FromStatus = from
	ev.ToStatus = to
	ev.Note = note
	return ev, nil
}
