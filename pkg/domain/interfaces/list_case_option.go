package interfaces

import (
	"time"

	"github.com/optimatax/reliefdesk/pkg/domain/model"
	"github.com/optimatax/reliefdesk/pkg/domain/types"
)

// ListCaseOption is a functional option for filtering cases in List
type ListCaseOption func(*listCaseConfig)

type listCaseConfig struct {
	status         *types.CaseStatus
	ownerID        model.UserID
	accessibleBy   model.UserID
	deadlineBefore *time.Time
	limit          int
}

// WithStatus filters cases by status
func WithStatus(status types.CaseStatus) ListCaseOption {
	return func(c *listCaseConfig) {
		c.status = &status
	}
}

// WithOwnerID filters cases owned by the user
func WithOwnerID(id model.UserID) ListCaseOption {
	return func(c *listCaseConfig) {
		c.ownerID = id
	}
}

// WithAccessibleBy filters cases the user owns or is assigned to
func WithAccessibleBy(id model.UserID) ListCaseOption {
	return func(c *listCaseConfig) {
		c.accessibleBy = id
	}
}

// WithDeadlineBefore filters cases whose next deadline is strictly before t
func WithDeadlineBefore(t time.Time) ListCaseOption {
	return func(c *listCaseConfig) {
		c.deadlineBefore = &t
	}
}

// WithLimit caps the number of returned cases
func WithLimit(n int) ListCaseOption {
	return func(c *listCaseConfig) {
		c.limit = n
	}
}

// BuildListCaseConfig builds a listCaseConfig from options
func BuildListCaseConfig(opts ...ListCaseOption) *listCaseConfig {
	cfg := &listCaseConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Status returns the status filter value, or nil if not set
func (c *listCaseConfig) Status() *types.CaseStatus {
	return c.status
}

// OwnerID returns the owner filter, or empty if not set
func (c *listCaseConfig) OwnerID() model.UserID {
	return c.ownerID
}

// AccessibleBy returns the owner-or-assignee filter, or empty if not set
func (c *listCaseConfig) AccessibleBy() model.UserID {
	return c.accessibleBy
}

// DeadlineBefore returns the deadline filter, or nil if not set
func (c *listCaseConfig) DeadlineBefore() *time.Time {
	return c.deadlineBefore
}

// Limit returns the result cap, 0 means unlimited
func (c *listCaseConfig) Limit() int {
	return c.limit
}

// Match reports whether the case satisfies every filter. Backends that
// cannot express a filter natively apply it in memory.
func (c *listCaseConfig) Match(cs *model.Case) bool {
	if c.status != nil && cs.Status != *c.status {
		return false
	}
	if c.ownerID != "" && cs.OwnerID != c.ownerID {
		return false
	}
	if c.accessibleBy != "" && cs.OwnerID != c.accessibleBy && cs.AssignedTo != c.accessibleBy {
		return false
	}
	if c.deadlineBefore != nil && (cs.NextDeadline == nil || !cs.NextDeadline.Before(*c.deadlineBefore)) {
		return false
	}
	return true
}
