package usecase

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/m-mizutani/goerr/v2"
	"github.com/optimatax/reliefdesk/pkg/domain/interfaces"
	"github.com/optimatax/reliefdesk/pkg/domain/model"
	"github.com/optimatax/reliefdesk/pkg/domain/model/auth"
	"github.com/optimatax/reliefdesk/pkg/domain/types"
	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultTokenTTL = 24 * time.Hour
	tokenIssuer     = "reliefdesk"

	minPasswordLength = 8
	maxPasswordBytes  = 72 // bcrypt input limit
)

// AuthUseCaseInterface authenticates API requests
type AuthUseCaseInterface interface {
	// Register creates a client account and returns a session token
	Register(ctx context.Context, in RegisterInput) (*model.User, string, error)

	// Login verifies credentials and returns a session token
	Login(ctx context.Context, email, password string) (*model.User, string, error)

	// ValidateToken verifies a session token and returns its content
	ValidateToken(ctx context.Context, raw string) (*auth.Token, error)

	// Me returns the account of the token
	Me(ctx context.Context, token *auth.Token) (*model.User, error)

	// IsNoAuthn reports whether authentication is disabled
	IsNoAuthn() bool
}

// RegisterInput is a new account request
type RegisterInput struct {
	Email    string
	Name     string
	Password string `masq:"secret"`
}

// NewUserInput creates an account with an explicit role
type NewUserInput struct {
	Email    string
	Name     string
	Password string `masq:"secret"`
	Role     types.Role
}

type AuthUseCase struct {
	repo      interfaces.Repository
	publisher interfaces.EventPublisher
	secret    []byte
	ttl       time.Duration
	now       func() time.Time
	cache     *authCache
	dummyHash []byte
}

// AuthOption is a functional option for AuthUseCase
type AuthOption func(*AuthUseCase)

// WithTokenTTL sets the session token lifetime
func WithTokenTTL(ttl time.Duration) AuthOption {
	return func(uc *AuthUseCase) {
		uc.ttl = ttl
	}
}

// WithAuthClock replaces the time source
func WithAuthClock(now func() time.Time) AuthOption {
	return func(uc *AuthUseCase) {
		uc.now = now
	}
}

// WithAuthPublisher sets the receiver of account events
func WithAuthPublisher(p interfaces.EventPublisher) AuthOption {
	return func(uc *AuthUseCase) {
		uc.publisher = p
	}
}

func NewAuthUseCase(repo interfaces.Repository, secret []byte, options ...AuthOption) (*AuthUseCase, error) {
	if len(secret) < 32 {
		return nil, goerr.New("JWT secret must be at least 32 bytes", goerr.V("length", len(secret)))
	}

	uc := &AuthUseCase{
		repo:      repo,
		publisher: nopPublisher{},
		secret:    secret,
		ttl:       DefaultTokenTTL,
		now:       time.Now,
		cache:     newAuthCache(),
	}
	for _, opt := range options {
		opt(uc)
	}

	// Compared against when the email is unknown so that timing does not
	// reveal registered addresses.
	hash, err := bcrypt.GenerateFromPassword([]byte("reliefdesk-dummy-password"), bcrypt.DefaultCost)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to prepare password hash")
	}
	uc.dummyHash = hash

	return uc, nil
}

// IsNoAuthn returns false for regular AuthUseCase
func (uc *AuthUseCase) IsNoAuthn() bool {
	return false
}

func validatePassword(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return goerr.Wrap(model.ErrInvalidInput, "password is too short", goerr.V("min_length", minPasswordLength))
	}
	if len(password) > maxPasswordBytes {
		return goerr.Wrap(model.ErrInvalidInput, "password is too long", goerr.V("max_bytes", maxPasswordBytes))
	}
	return nil
}

// CreateUser creates an account with any role. Callers are responsible for
// authorizing the request.
func (uc *AuthUseCase) CreateUser(ctx context.Context, in NewUserInput) (*model.User, error) {
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}

	now := uc.now().UTC()
	user := &model.User{
		ID:        model.NewUserID(),
		Email:     model.NormalizeEmail(in.Email),
		Name:      strings.TrimSpace(in.Name),
		Role:      in.Role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to hash password")
	}
	user.PasswordHash = string(hash)

	created, err := uc.repo.User().Create(ctx, user)
	if err != nil {
		if errors.Is(err, interfaces.ErrAlreadyExists) {
			return nil, goerr.Wrap(ErrEmailTaken, "email already registered", goerr.V("email", user.Email))
		}
		return nil, goerr.Wrap(err, "failed to create user")
	}

	uc.publisher.Publish(ctx, model.NewUserEvent(types.EventUserRegistered, created, now))
	return created, nil
}

// Register creates a client account. Staff accounts are created by administrators.
func (uc *AuthUseCase) Register(ctx context.Context, in RegisterInput) (*model.User, string, error) {
	user, err := uc.CreateUser(ctx, NewUserInput{
		Email:    in.Email,
		Name:     in.Name,
		Password: in.Password,
		Role:     types.RoleClient,
	})
	if err != nil {
		return nil, "", err
	}

	signed, err := uc.issue(user)
	if err != nil {
		return nil, "", err
	}
	return user, signed, nil
}

func (uc *AuthUseCase) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	user, err := uc.repo.User().GetByEmail(ctx, model.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(uc.dummyHash, []byte(password))
			return nil, "", goerr.Wrap(ErrInvalidCredentials, "unknown email")
		}
		return nil, "", goerr.Wrap(err, "failed to get user by email")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", goerr.Wrap(ErrInvalidCredentials, "password mismatch", goerr.V(UserIDKey, user.ID))
	}

	signed, err := uc.issue(user)
	if err != nil {
		return nil, "", err
	}

	uc.publisher.Publish(ctx, model.NewUserEvent(types.EventUserLoggedIn, user, uc.now().UTC()))
	return user, signed, nil
}

// issue signs an HS256 session token for the user
func (uc *AuthUseCase) issue(user *model.User) (string, error) {
	token := auth.NewToken(user, uc.now().UTC().Truncate(time.Second), uc.ttl)

	t, err := jwt.NewBuilder().
		JwtID(string(token.ID)).
		Issuer(tokenIssuer).
		Subject(string(token.Sub)).
		IssuedAt(token.IssuedAt).
		Expiration(token.ExpiresAt).
		Claim("email", token.Email).
		Claim("name", token.Name).
		Claim("role", string(token.Role)).
		Build()
	if err != nil {
		return "", goerr.Wrap(err, "failed to build token")
	}

	signed, err := jwt.Sign(t, jwt.WithKey(jwa.HS256, uc.secret))
	if err != nil {
		return "", goerr.Wrap(err, "failed to sign token")
	}
	return string(signed), nil
}

// ValidateToken verifies the signature and lifetime of a token. The role is
// taken from the current account so that role changes apply immediately.
func (uc *AuthUseCase) ValidateToken(ctx context.Context, raw string) (*auth.Token, error) {
	if raw == "" {
		return nil, goerr.Wrap(ErrUnauthenticated, "no token")
	}

	t, err := jwt.Parse([]byte(raw),
		jwt.WithKey(jwa.HS256, uc.secret),
		jwt.WithValidate(true),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithClock(jwt.ClockFunc(uc.now)),
	)
	if err != nil {
		return nil, goerr.Wrap(ErrInvalidToken, "token verification failed", goerr.V("reason", err.Error()))
	}

	user, err := uc.cachedUser(ctx, model.UserID(t.Subject()))
	if err != nil {
		return nil, err
	}

	return &auth.Token{
		ID:        auth.TokenID(t.JwtID()),
		Sub:       user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role,
		IssuedAt:  t.IssuedAt(),
		ExpiresAt: t.Expiration(),
	}, nil
}

func (uc *AuthUseCase) Me(ctx context.Context, token *auth.Token) (*model.User, error) {
	user, err := uc.repo.User().Get(ctx, token.Sub)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrUserNotFound, "user not found", goerr.V(UserIDKey, token.Sub))
		}
		return nil, goerr.Wrap(err, "failed to get user", goerr.V(UserIDKey, token.Sub))
	}
	return user, nil
}
