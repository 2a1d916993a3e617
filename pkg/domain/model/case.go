package model

import (
	"slices"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/optimatax/reliefdesk/pkg/domain/types"
	"github.com/shopspring/decimal"
)

// Case represents a taxpayer's relief case
type Case struct {
	ID                CaseID
	OwnerID           UserID
	Program           types.ProgramType
	Status            types.CaseStatus
	Priority          types.CasePriority
	TotalDebt         decimal.Decimal
	TaxYears          []int
	AssignedTo        UserID // Empty when no reviewer is assigned
	StateHistory      []StateTransition
	DocumentsComplete bool
	FormsComplete     bool
	NextDeadline      *time.Time
	OverdueNotifiedAt *time.Time // Set when the current deadline has been reported overdue
	Version           int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// StateTransition is one entry of the append-only status history
type StateTransition struct {
	From        types.CaseStatus
	To          types.CaseStatus
	At          time.Time
	TriggeredBy UserID
	Note        string
}

// NewCase builds a case in its initial status. The ID must already be generated.
func NewCase(id CaseID, owner UserID, program types.ProgramType, debt decimal.Decimal, taxYears []int, priority types.CasePriority, now time.Time) *Case {
	return &Case{
		ID:        id,
		OwnerID:   owner,
		Program:   program,
		Status:    types.CaseStatusInitialAssessment,
		Priority:  priority.Normalize(),
		TotalDebt: debt,
		TaxYears:  NormalizeTaxYears(taxYears),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate checks the case fields that are accepted from user input
func (c *Case) Validate() error {
	if !c.Program.IsValid() {
		return goerr.Wrap(ErrInvalidInput, "invalid program", goerr.V("program", c.Program))
	}
	if err := ValidateAmount("total_debt", c.TotalDebt); err != nil {
		return err
	}
	if !c.Priority.Normalize().IsValid() {
		return goerr.Wrap(ErrInvalidInput, "invalid priority", goerr.V("priority", c.Priority))
	}
	for _, y := range c.TaxYears {
		if y < 1900 || y > 2100 {
			return goerr.Wrap(ErrInvalidInput, "tax year out of range", goerr.V("tax_year", y))
		}
	}
	return nil
}

// NormalizeTaxYears returns the years sorted and de-duplicated
func NormalizeTaxYears(years []int) []int {
	if len(years) == 0 {
		return []int{}
	}
	out := slices.Clone(years)
	slices.Sort(out)
	return slices.Compact(out)
}

// Copy returns a deep copy of the case
func (c *Case) Copy() *Case {
	if c == nil {
		return nil
	}
	dup := *c
	dup.TaxYears = slices.Clone(c.TaxYears)
	dup.StateHistory = slices.Clone(c.StateHistory)
	if c.NextDeadline != nil {
		t := *c.NextDeadline
		dup.NextDeadline = &t
	}
	if c.OverdueNotifiedAt != nil {
		t := *c.OverdueNotifiedAt
		dup.OverdueNotifiedAt = &t
	}
	return &dup
}

// IsOverdue reports whether the case has a deadline strictly before now
func (c *Case) IsOverdue(now time.Time) bool {
	return c.NextDeadline != nil && c.NextDeadline.Before(now)
}

// SetDeadline replaces the next deadline and clears the overdue marker
func (c *Case) SetDeadline(deadline *time.Time, now time.Time) {
	c.NextDeadline = deadline
	c.OverdueNotifiedAt = nil
	c.UpdatedAt = now
}

// MarkOverdue records that the current deadline has been reported. It returns
// the overdue event, or nil when the deadline was already reported or has not passed.
func (c *Case) MarkOverdue(now time.Time) *Event {
	if !c.IsOverdue(now) || c.OverdueNotifiedAt != nil {
		return nil
	}
	c.OverdueNotifiedAt = &now
	return NewCaseEvent(types.EventCaseOverdue, SystemActor.UserID, c, now)
}

// Assign delegates the case to a reviewer
func (c *Case) Assign(reviewer *User, actor *Actor, now time.Time) (*Event, error) {
	if !actor.Can(types.ActionAssignCase) {
		return nil, goerr.Wrap(ErrPermissionDenied, "actor cannot assign cases",
			goerr.V(CaseIDKey, c.ID), goerr.V(ActionKey, types.ActionAssignCase))
	}
	if reviewer == nil || !reviewer.Role.IsStaff() {
		return nil, goerr.Wrap(ErrInvalidInput, "assignee must be staff", goerr.V(CaseIDKey, c.ID))
	}

	c.AssignedTo = reviewer.ID
	c.UpdatedAt = now

	ev := NewCaseEvent(types.EventCaseAssigned, actor.UserID, c, now)
	ev.AssigneeID = reviewer.ID
	return ev, nil
}
