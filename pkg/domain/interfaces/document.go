package interfaces

import (
	"context"

	"github.com/optimatax/reliefdesk/pkg/domain/model"
)

// DocumentRepository defines the interface for Document metadata access.
// Documents are never hard-deleted.
type DocumentRepository interface {
	Create(ctx context.Context, d *model.Document) (*model.Document, error)

	// Get retrieves a document by ID. Returns ErrNotFound if it does not exist.
	Get(ctx context.Context, id model.DocumentID) (*model.Document, error)

	// ListByCase retrieves documents attached to a case, oldest first
	ListByCase(ctx context.Context, caseID model.CaseID) ([]*model.Document, error)

	// ListByUser retrieves documents uploaded by a user, oldest first
	ListByUser(ctx context.Context, userID model.UserID) ([]*model.Document, error)

	Update(ctx context.Context, d *model.Document) (*model.Document, error)
}
