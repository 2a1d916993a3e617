package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/optimatax/reliefdesk/pkg/domain/interfaces"
	"github.com/optimatax/reliefdesk/pkg/domain/model"
)

const (
	authCacheTTL = 1 * time.Minute
)

type cachedUser struct {
	user      *model.User
	expiresAt time.Time
}

// authCache keeps recently validated accounts so that every request does not
// read the user store
type authCache struct {
	cache sync.Map
}

func newAuthCache() *authCache {
	return &authCache{}
}

func (c *authCache) get(id model.UserID, now time.Time) (*model.User, bool) {
	val, ok := c.cache.Load(id)
	if !ok {
		return nil, false
	}

	cached := val.(*cachedUser)
	if now.After(cached.expiresAt) {
		c.cache.Delete(id)
		return nil, false
	}

	return cached.user, true
}

func (c *authCache) set(user *model.User, now time.Time) {
	cached := &cachedUser{
		user:      user,
		expiresAt: now.Add(authCacheTTL),
	}
	c.cache.Store(user.ID, cached)
}

func (c *authCache) remove(id model.UserID) {
	c.cache.Delete(id)
}

// cachedUser returns the account of a token subject. Deleted accounts make
// their tokens invalid.
func (uc *AuthUseCase) cachedUser(ctx context.Context, id model.UserID) (*model.User, error) {
	now := uc.now()
	if user, ok := uc.cache.get(id, now); ok {
		return user, nil
	}

	user, err := uc.repo.User().Get(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			uc.cache.remove(id)
			return nil, goerr.Wrap(ErrInvalidToken, "token subject no longer exists", goerr.V(UserIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get token subject", goerr.V(UserIDKey, id))
	}

	uc.cache.set(user, now)
	return user, nil
}
