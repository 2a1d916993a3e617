package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/optimatax/reliefdesk/pkg/cli/config"
	httpctrl "github.com/optimatax/reliefdesk/pkg/controller/http"
	"github.com/optimatax/reliefdesk/pkg/service/event"
	"github.com/optimatax/reliefdesk/pkg/service/worker"
	"github.com/optimatax/reliefdesk/pkg/usecase"
	"github.com/optimatax/reliefdesk/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe(version string) *cli.Command {
	var addr string
	var baseURL string
	var redeliveryInterval time.Duration
	var deadlineInterval time.Duration
	var policyCfg config.Policy
	var repoCfg config.Repository
	var storageCfg config.Storage
	var authCfg config.Auth
	var slackCfg config.Slack
	var sentryCfg config.Sentry

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("RELIEFDESK_ADDR"),
			Destination: &addr,
		},
		&cli.StringFlag{
			Name:        "base-url",
			Usage:       "Base URL of the web frontend, used for links in notifications (e.g., https://your-domain.com)",
			Sources:     cli.EnvVars("RELIEFDESK_BASE_URL"),
			Destination: &baseURL,
		},
		&cli.DurationFlag{
			Name:        "notification-retry-interval",
			Usage:       "Interval between redelivery attempts of undelivered notifications",
			Category:    "Workers",
			Value:       time.Minute,
			Sources:     cli.EnvVars("RELIEFDESK_NOTIFICATION_RETRY_INTERVAL"),
			Destination: &redeliveryInterval,
		},
		&cli.DurationFlag{
			Name:        "deadline-check-interval",
			Usage:       "Interval between scans for overdue cases",
			Category:    "Workers",
			Value:       time.Hour,
			Sources:     cli.EnvVars("RELIEFDESK_DEADLINE_CHECK_INTERVAL"),
			Destination: &deadlineInterval,
		},
	}

	// Add shared config flags
	flags = append(flags, policyCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, storageCfg.Flags()...)
	flags = append(flags, authCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			flush, err := sentryCfg.Configure(version)
			if err != nil {
				return err
			}
			defer flush()

			policy, err := policyCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load policy")
			}

			// Initialize repository based on backend type
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			blob, err := storageCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize document storage")
			}

			channels, err := slackCfg.Channels(baseURL)
			if err != nil {
				return goerr.Wrap(err, "failed to configure notification channels")
			}

			dispatcher := event.New(repo,
				event.WithChannels(channels...),
				event.WithNotifyStatuses(policy.NotifyStatuses),
			)
			defer dispatcher.Wait()

			authUC, err := authCfg.Configure(repo, dispatcher)
			if err != nil {
				return goerr.Wrap(err, "failed to configure authentication")
			}

			uc := usecase.New(repo,
				usecase.WithAuth(authUC),
				usecase.WithPolicy(policy),
				usecase.WithBlobStorage(blob),
				usecase.WithPublisher(dispatcher),
			)

			redeliveryWorker := worker.NewNotificationRedeliveryWorker(repo, dispatcher, redeliveryInterval)
			if err := redeliveryWorker.Start(ctx); err != nil {
				return goerr.Wrap(err, "failed to start notification redelivery worker")
			}
			deadlineWorker := worker.NewDeadlineWorker(repo, dispatcher, deadlineInterval)
			if err := deadlineWorker.Start(ctx); err != nil {
				redeliveryWorker.Stop()
				return goerr.Wrap(err, "failed to start deadline worker")
			}
			defer func() {
				deadlineWorker.Stop()
				redeliveryWorker.Stop()
			}()

			httpHandler, err := httpctrl.New(uc)
			if err != nil {
				return goerr.Wrap(err, "failed to create http server")
			}
			server := &http.Server{
				Addr:              addr,
				Handler:           httpHandler,
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server",
					"addr", addr,
					"no_auth", authUC.IsNoAuthn(),
					"transition_policy", policy.TransitionPolicy)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
