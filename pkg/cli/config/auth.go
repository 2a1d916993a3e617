package config

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/optimatax/reliefdesk/pkg/domain/interfaces"
	"github.com/optimatax/reliefdesk/pkg/usecase"
	"github.com/optimatax/reliefdesk/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Auth holds CLI flags for session authentication
type Auth struct {
	secret      string
	tokenTTL    time.Duration
	noAuthEmail string
}

// Flags returns CLI flags for authentication
func (x *Auth) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "jwt-secret",
			Usage:       "Secret for signing session tokens (at least 32 bytes)",
			Category:    "Authentication",
			Sources:     cli.EnvVars("RELIEFDESK_JWT_SECRET"),
			Destination: &x.secret,
		},
		&cli.DurationFlag{
			Name:        "token-ttl",
			Usage:       "Session token lifetime",
			Category:    "Authentication",
			Value:       usecase.DefaultTokenTTL,
			Sources:     cli.EnvVars("RELIEFDESK_TOKEN_TTL"),
			Destination: &x.tokenTTL,
		},
		&cli.StringFlag{
			Name:        "no-auth",
			Usage:       "Skip authentication and act as the account with this email (development only)",
			Category:    "Authentication",
			Sources:     cli.EnvVars("RELIEFDESK_NO_AUTH"),
			Destination: &x.noAuthEmail,
		},
	}
}

// IsNoAuthMode reports whether authentication is disabled
func (x *Auth) IsNoAuthMode() bool {
	return x.noAuthEmail != ""
}

// NewAuthUseCase builds the token authenticator. It ignores --no-auth.
func (x *Auth) NewAuthUseCase(repo interfaces.Repository, publisher interfaces.EventPublisher) (*usecase.AuthUseCase, error) {
	if x.secret == "" {
		return nil, goerr.Wrap(ErrMissingOption, "jwt-secret is required", goerr.V(OptionKey, "jwt-secret"))
	}

	opts := []usecase.AuthOption{usecase.WithTokenTTL(x.tokenTTL)}
	if publisher != nil {
		opts = append(opts, usecase.WithAuthPublisher(publisher))
	}
	authUC, err := usecase.NewAuthUseCase(repo, []byte(x.secret), opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to configure authentication")
	}
	return authUC, nil
}

// Configure returns NoAuthnUseCase in no-auth mode and AuthUseCase otherwise
func (x *Auth) Configure(repo interfaces.Repository, publisher interfaces.EventPublisher) (usecase.AuthUseCaseInterface, error) {
	if x.IsNoAuthMode() {
		logging.Default().Warn("Running in no-auth mode (development only)", "email", x.noAuthEmail)
		return usecase.NewNoAuthnUseCase(repo, x.noAuthEmail), nil
	}
	authUC, err := x.NewAuthUseCase(repo, publisher)
	if err != nil {
		return nil, err
	}
	return authUC, nil
}
