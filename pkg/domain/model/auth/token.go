package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/optimatax/reliefdesk/pkg/domain/model"
	"github.com/optimatax/reliefdesk/pkg/domain/types"
)

// ErrNoToken is returned when the context carries no authenticated token
var ErrNoToken = goerr.New("no auth token in context")

// TokenID identifies an issued session token
type TokenID string

// NewTokenID generates a new token ID
func NewTokenID() TokenID {
	return TokenID(uuid.New().String())
}

// Token is the verified content of a session token
type Token struct {
	ID        TokenID
	Sub       model.UserID
	Email     string
	Name      string
	Role      types.Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// NewToken creates a token for the user valid for ttl
func NewToken(user *model.User, now time.Time, ttl time.Duration) *Token {
	return &Token{
		ID:        NewTokenID(),
		Sub:       user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role,
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}
}

// IsExpired reports whether the token is no longer valid at now
func (t *Token) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// Actor returns the principal the token authenticates
func (t *Token) Actor() *model.Actor {
	return &model.Actor{
		UserID: t.Sub,
		Email:  t.Email,
		Name:   t.Name,
		Role:   t.Role,
	}
}

type ctxTokenKey struct{}

// ContextWithToken returns a new context that carries the token
func ContextWithToken(ctx context.Context, token *Token) context.Context {
	return context.WithValue(ctx, ctxTokenKey{}, token)
}

// TokenFromContext extracts the token stored by ContextWithToken
func TokenFromContext(ctx context.Context) (*Token, error) {
	token, ok := ctx.Value(ctxTokenKey{}).(*Token)
	if !ok || token == nil {
		return nil, ErrNoToken
	}
	return token, nil
}

// ActorFromContext returns the principal of the authenticated request
func ActorFromContext(ctx context.Context) (*model.Actor, error) {
	token, err := TokenFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return token.Actor(), nil
}
