package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/optimatax/reliefdesk/pkg/cli/config"
	"github.com/optimatax/reliefdesk/pkg/domain/types"
	"github.com/optimatax/reliefdesk/pkg/usecase"
	"github.com/optimatax/reliefdesk/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdUser() *cli.Command {
	return &cli.Command{
		Name:  "user",
		Usage: "Manage accounts",
		Commands: []*cli.Command{
			cmdUserAdd(),
		},
	}
}

// cmdUserAdd creates staff accounts, which cannot self-register
func cmdUserAdd() *cli.Command {
	var email, name, password, role string
	var repoCfg config.Repository
	var authCfg config.Auth

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "email",
			Usage:       "Account email",
			Required:    true,
			Destination: &email,
		},
		&cli.StringFlag{
			Name:        "name",
			Usage:       "Display name",
			Required:    true,
			Destination: &name,
		},
		&cli.StringFlag{
			Name:        "password",
			Usage:       "Initial password",
			Required:    true,
			Sources:     cli.EnvVars("RELIEFDESK_USER_PASSWORD"),
			Destination: &password,
		},
		&cli.StringFlag{
			Name:        "role",
			Usage:       "Account role (CLIENT, TAX_PROFESSIONAL, ADMIN)",
			Value:       string(types.RoleTaxProfessional),
			Destination: &role,
		},
	}
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, authCfg.Flags()...)

	return &cli.Command{
		Name:  "add",
		Usage: "Create an account with any role",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			r, err := types.ParseRole(role)
			if err != nil {
				return goerr.Wrap(err, "invalid role", goerr.V("role", role))
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			authUC, err := authCfg.NewAuthUseCase(repo, nil)
			if err != nil {
				return err
			}

			user, err := authUC.CreateUser(ctx, usecase.NewUserInput{
				Email:    email,
				Name:     name,
				Password: password,
				Role:     r,
			})
			if err != nil {
				return goerr.Wrap(err, "failed to create user")
			}

			logging.Default().Info("User created", "user_id", user.ID, "email", user.Email, "role", user.Role)
			_, _ = fmt.Fprintln(c.Root().Writer, user.ID)
			return nil
		},
	}
}
