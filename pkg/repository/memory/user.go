package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/optimatax/reliefdesk/pkg/domain/model"
)

type userRepository struct {
	mu      sync.RWMutex
	users   map[model.UserID]*model.User
	byEmail map[string]model.UserID
}

func newUserRepository() *userRepository {
	return &userRepository{
		users:   make(map[model.UserID]*model.User),
		byEmail: make(map[string]model.UserID),
	}
}

func copyUser(u *model.User) *model.User {
	copied := *u
	return &copied
}

func (r *userRepository) Create(ctx context.Context, u *model.User) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := model.NormalizeEmail(u.Email)
	if _, exists := r.byEmail[email]; exists {
		return nil, goerr.Wrap(ErrAlreadyExists, "email already registered", goerr.V("email", email))
	}

	created := copyUser(u)
	if created.ID == "" {
		created.ID = model.NewUserID()
	}
	if _, exists := r.users[created.ID]; exists {
		return nil, goerr.Wrap(ErrAlreadyExists, "user already exists", goerr.V("id", created.ID))
	}
	created.Email = email
	now := time.Now().UTC()
	if created.CreatedAt.IsZero() {
		created.CreatedAt = now
	}
	created.UpdatedAt = now

	r.users[created.ID] = created
	r.byEmail[email] = created.ID
	return copyUser(created), nil
}

func (r *userRepository) Get(ctx context.Context, id model.UserID) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, exists := r.users[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "user not found", goerr.V("id", id))
	}
	return copyUser(u), nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, exists := r.byEmail[model.NormalizeEmail(email)]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "user not found", goerr.V("email", email))
	}
	return copyUser(r.users[id]), nil
}

func (r *userRepository) List(ctx context.Context) ([]*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]*model.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, copyUser(u))
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}

func (r *userRepository) Update(ctx context.Context, u *model.User) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.users[u.ID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "user not found", goerr.V("id", u.ID))
	}

	email := model.NormalizeEmail(u.Email)
	if owner, taken := r.byEmail[email]; taken && owner != u.ID {
		return nil, goerr.Wrap(ErrAlreadyExists, "email already registered", goerr.V("email", email))
	}

	updated := copyUser(u)
	updated.Email = email
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	delete(r.byEmail, existing.Email)
	r.users[u.ID] = updated
	r.byEmail[email] = u.ID
	return copyUser(updated), nil
}
