package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/optimatax/reliefdesk/pkg/domain/interfaces"
	"github.com/optimatax/reliefdesk/pkg/domain/model"
	"github.com/optimatax/reliefdesk/pkg/domain/model/auth"
)

// ErrNoAuthnMode is returned for account operations while authentication is disabled
var ErrNoAuthnMode = errors.New("not available while authentication is disabled")

// NoAuthnUseCase authenticates every request as a fixed existing account
// (for development/testing)
type NoAuthnUseCase struct {
	repo  interfaces.Repository
	email string
}

// NewNoAuthnUseCase creates a new NoAuthnUseCase acting as the account with the email
func NewNoAuthnUseCase(repo interfaces.Repository, email string) *NoAuthnUseCase {
	return &NoAuthnUseCase{
		repo:  repo,
		email: model.NormalizeEmail(email),
	}
}

func (uc *NoAuthnUseCase) user(ctx context.Context) (*model.User, error) {
	user, err := uc.repo.User().GetByEmail(ctx, uc.email)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrInvalidToken, "no-authn account does not exist", goerr.V("email", uc.email))
		}
		return nil, goerr.Wrap(err, "failed to get no-authn account", goerr.V("email", uc.email))
	}
	return user, nil
}

// Register is not available in no-auth mode
func (uc *NoAuthnUseCase) Register(ctx context.Context, in RegisterInput) (*model.User, string, error) {
	return nil, "", goerr.Wrap(ErrNoAuthnMode, "register is disabled")
}

// Login returns the fixed account without checking credentials
func (uc *NoAuthnUseCase) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	user, err := uc.user(ctx)
	if err != nil {
		return nil, "", err
	}
	return user, "", nil
}

// ValidateToken always returns a token for the fixed account
func (uc *NoAuthnUseCase) ValidateToken(ctx context.Context, raw string) (*auth.Token, error) {
	user, err := uc.user(ctx)
	if err != nil {
		return nil, err
	}
	return auth.NewToken(user, time.Now().UTC(), time.Hour), nil
}

func (uc *NoAuthnUseCase) Me(ctx context.Context, token *auth.Token) (*model.User, error) {
	return uc.user(ctx)
}

// IsNoAuthn returns true for NoAuthnUseCase
func (uc *NoAuthnUseCase) IsNoAuthn() bool {
	return true
}
