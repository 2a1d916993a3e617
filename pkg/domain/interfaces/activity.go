package interfaces

import (
	"context"

	"github.com/optimatax/reliefdesk/pkg/domain/model"
)

// ActivityRepository defines the interface for the append-only audit trail
type ActivityRepository interface {
	Create(ctx context.Context, a *model.Activity) error

	// ListByCase retrieves activities of a case, newest first.
	// limit <= 0 returns all.
	ListByCase(ctx context.Context, caseID model.CaseID, limit int) ([]*model.Activity, error)

	// ListByActor retrieves activities performed by a user, newest first
	ListByActor(ctx context.Context, actorID model.UserID, limit int) ([]*model.Activity, error)
}
