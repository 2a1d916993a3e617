package interfaces

import (
	"context"

	"github.com/optimatax/reliefdesk/pkg/domain/model"
)

// UserRepository defines the interface for User data access
type UserRepository interface {
	// Create stores a new user. Returns ErrAlreadyExists if the email is taken.
	Create(ctx context.Context, u *model.User) (*model.User, error)

	// Get retrieves a user by ID. Returns ErrNotFound if it does not exist.
	Get(ctx context.Context, id model.UserID) (*model.User, error)

	// GetByEmail retrieves a user by normalized email. Returns ErrNotFound if none.
	GetByEmail(ctx context.Context, email string) (*model.User, error)

	// List retrieves all users
	List(ctx context.Context) ([]*model.User, error)

	// Update replaces an existing user
	Update(ctx context.Context, u *model.User) (*model.User, error)
}
