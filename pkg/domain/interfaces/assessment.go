package interfaces

import (
	"context"

	"github.com/optimatax/reliefdesk/pkg/domain/model"
)

// AssessmentRepository defines the interface for Assessment data access.
// Implementations derive disposable income and progress before saving.
type AssessmentRepository interface {
	Create(ctx context.Context, a *model.Assessment) (*model.Assessment, error)

	// Get retrieves an assessment by ID. Returns ErrNotFound if it does not exist.
	Get(ctx context.Context, id model.AssessmentID) (*model.Assessment, error)

	// GetLatestByCase retrieves the most recently created assessment of a case.
	// Returns ErrNotFound if the case has none.
	GetLatestByCase(ctx context.Context, caseID model.CaseID) (*model.Assessment, error)

	// ListByUser retrieves assessments of a user, newest first
	ListByUser(ctx context.Context, userID model.UserID) ([]*model.Assessment, error)

	Update(ctx context.Context, a *model.Assessment) (*model.Assessment, error)
}
