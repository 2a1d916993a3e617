package cli

import (
	"context"

	"github.com/m-mizutani/fireconf"
	"github.com/m-mizutani/goerr/v2"
	"github.com/optimatax/reliefdesk/pkg/cli/config"
	"github.com/optimatax/reliefdesk/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdMigrate() *cli.Command {
	var repoCfg config.Repository
	var dryRun bool

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "dry-run",
			Usage:       "Preview changes without applying (firestore only)",
			Destination: &dryRun,
		},
	}
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:    "migrate",
		Aliases: []string{"m"},
		Usage:   "Migrate Firestore indexes or the SQL schema",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			switch repoCfg.Backend() {
			case config.BackendFirestore:
				return migrateFirestore(ctx, repoCfg.ProjectID(), repoCfg.DatabaseID(), dryRun)
			case config.BackendPostgres, config.BackendSQLite:
				return migrateSQL(ctx, &repoCfg, dryRun)
			default:
				return goerr.Wrap(config.ErrInvalidBackend, "backend has nothing to migrate",
					goerr.V(config.BackendKey, repoCfg.Backend()))
			}
		},
	}
}

func migrateSQL(ctx context.Context, repoCfg *config.Repository, dryRun bool) error {
	logger := logging.Default()
	if dryRun {
		logger.Info("Dry run is not supported for SQL backends, nothing applied", "backend", repoCfg.Backend())
		return nil
	}

	db, err := repoCfg.ConfigureSQL()
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("failed to close database", "error", err.Error())
		}
	}()

	logger.Info("Applying SQL schema migration", "backend", repoCfg.Backend())
	if err := db.Migrate(ctx); err != nil {
		return err
	}
	logger.Info("Migrations applied successfully")
	return nil
}

func migrateFirestore(ctx context.Context, projectID, databaseID string, dryRun bool) error {
	logger := logging.Default()

	if projectID == "" {
		return goerr.Wrap(config.ErrMissingOption, "firestore-project-id is required",
			goerr.V(config.OptionKey, "firestore-project-id"))
	}

	logger.Info("Migrate configuration",
		"projectID", projectID,
		"databaseID", databaseID,
		"dryRun", dryRun)

	indexConfig := getIndexConfig()

	client, err := fireconf.NewClient(ctx, projectID, databaseID)
	if err != nil {
		return goerr.Wrap(err, "failed to create fireconf client")
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Error("failed to close fireconf client", "error", err.Error())
		}
	}()

	if dryRun {
		logger.Info("Dry run mode - previewing changes")
		plan, err := client.GetMigrationPlan(ctx, indexConfig)
		if err != nil {
			return goerr.Wrap(err, "failed to create migration plan")
		}

		if len(plan.Steps) == 0 {
			logger.Info("No changes required")
			return nil
		}

		for _, step := range plan.Steps {
			logger.Info("Migration step",
				"collection", step.Collection,
				"operation", step.Operation,
				"description", step.Description,
				"destructive", step.Destructive)
		}
		return nil
	}

	logger.Info("Applying migrations")
	if err := client.Migrate(ctx, indexConfig); err != nil {
		return goerr.Wrap(err, "failed to apply migrations")
	}
	logger.Info("Migrations applied successfully")
	return nil
}

// getIndexConfig returns the composite indexes of the activity trail queries.
// Other queries filter on a single field and use automatic indexes.
func getIndexConfig() *fireconf.Config {
	return &fireconf.Config{
		Collections: []fireconf.Collection{
			{
				Name: "activities",
				Indexes: []fireconf.Index{
					// ListByCase: case_id ASC, created_at DESC
					{
						Fields: []fireconf.IndexField{
							{Path: "case_id", Order: fireconf.OrderAscending},
							{Path: "created_at", Order: fireconf.OrderDescending},
						},
					},
					// ListByActor: actor_id ASC, created_at DESC
					{
						Fields: []fireconf.IndexField{
							{Path: "actor_id", Order: fireconf.OrderAscending},
							{Path: "created_at", Order: fireconf.OrderDescending},
						},
					},
				},
			},
		},
	}
}
