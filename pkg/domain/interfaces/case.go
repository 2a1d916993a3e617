package interfaces

import (
	"context"

	"github.com/optimatax/reliefdesk/pkg/domain/model"
)

// CaseRepository defines the interface for Case data access
type CaseRepository interface {
	// Create stores a new case with Version 1.
	// Returns ErrAlreadyExists if the case ID is taken.
	Create(ctx context.Context, c *model.Case) (*model.Case, error)

	// Get retrieves a case by ID. Returns ErrNotFound if it does not exist.
	Get(ctx context.Context, id model.CaseID) (*model.Case, error)

	// List retrieves cases with optional filtering, newest first
	List(ctx context.Context, opts ...ListCaseOption) ([]*model.Case, error)

	// Update saves the case when c.Version matches the stored version and
	// returns it with the incremented version. Returns ErrConflict otherwise.
	Update(ctx context.Context, c *model.Case) (*model.Case, error)
}
