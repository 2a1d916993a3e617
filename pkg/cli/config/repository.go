package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/optimatax/reliefdesk/pkg/domain/interfaces"
	"github.com/optimatax/reliefdesk/pkg/repository/database"
	"github.com/optimatax/reliefdesk/pkg/repository/firestore"
	"github.com/optimatax/reliefdesk/pkg/repository/memory"
	"github.com/optimatax/reliefdesk/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

const (
	BackendFirestore = "firestore"
	BackendPostgres  = "postgres"
	BackendSQLite    = "sqlite"
	BackendMemory    = "memory"
)

// Repository holds CLI flags for repository backend configuration
type Repository struct {
	backend     string
	projectID   string
	databaseID  string
	dsn         string
	sqlitePath  string
	autoMigrate bool
}

// Flags returns CLI flags for repository configuration
func (r *Repository) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "repository-backend",
			Usage:       "Repository backend type (firestore, postgres, sqlite or memory)",
			Category:    "Repository",
			Value:       BackendFirestore,
			Sources:     cli.EnvVars("RELIEFDESK_REPOSITORY_BACKEND"),
			Destination: &r.backend,
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Firestore Project ID (required when using firestore backend)",
			Category:    "Repository",
			Sources:     cli.EnvVars("RELIEFDESK_FIRESTORE_PROJECT_ID"),
			Destination: &r.projectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore Database ID",
			Category:    "Repository",
			Sources:     cli.EnvVars("RELIEFDESK_FIRESTORE_DATABASE_ID"),
			Destination: &r.databaseID,
		},
		&cli.StringFlag{
			Name:        "database-dsn",
			Usage:       "PostgreSQL DSN (required when using postgres backend)",
			Category:    "Repository",
			Sources:     cli.EnvVars("RELIEFDESK_DATABASE_DSN"),
			Destination: &r.dsn,
		},
		&cli.StringFlag{
			Name:        "sqlite-path",
			Usage:       "SQLite database file",
			Category:    "Repository",
			Value:       "reliefdesk.db",
			Sources:     cli.EnvVars("RELIEFDESK_SQLITE_PATH"),
			Destination: &r.sqlitePath,
		},
		&cli.BoolFlag{
			Name:        "database-auto-migrate",
			Usage:       "Create or update SQL tables on startup",
			Category:    "Repository",
			Sources:     cli.EnvVars("RELIEFDESK_DATABASE_AUTO_MIGRATE"),
			Destination: &r.autoMigrate,
		},
	}
}

// Backend returns the configured backend type
func (r *Repository) Backend() string {
	return r.backend
}

// ProjectID returns the Firestore project ID
func (r *Repository) ProjectID() string {
	return r.projectID
}

// DatabaseID returns the Firestore database ID
func (r *Repository) DatabaseID() string {
	return r.databaseID
}

// ConfigureSQL opens the SQL backend. It fails for non-SQL backends.
func (r *Repository) ConfigureSQL() (*database.Database, error) {
	opts := []database.Option{database.WithLogger(logging.Default())}
	if r.autoMigrate {
		opts = append(opts, database.WithAutoMigrate())
	}

	switch r.backend {
	case BackendPostgres:
		if r.dsn == "" {
			return nil, goerr.Wrap(ErrMissingOption, "database-dsn is required when using postgres backend",
				goerr.V(OptionKey, "database-dsn"))
		}
		db, err := database.NewPostgres(r.dsn, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize postgres repository")
		}
		logging.Default().Info("Using PostgreSQL repository")
		return db, nil

	case BackendSQLite:
		db, err := database.NewSQLite(r.sqlitePath, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize sqlite repository", goerr.V("path", r.sqlitePath))
		}
		logging.Default().Info("Using SQLite repository", "path", r.sqlitePath)
		return db, nil

	default:
		return nil, goerr.Wrap(ErrInvalidBackend, "not a SQL backend", goerr.V(BackendKey, r.backend))
	}
}

// Configure initializes and returns a repository based on the configured backend.
// The caller is responsible for calling Close() on the returned repository.
func (r *Repository) Configure(ctx context.Context) (interfaces.Repository, error) {
	switch r.backend {
	case BackendFirestore:
		if r.projectID == "" {
			return nil, goerr.Wrap(ErrMissingOption, "firestore-project-id is required when using firestore backend",
				goerr.V(OptionKey, "firestore-project-id"))
		}
		repo, err := firestore.New(ctx, r.projectID, r.databaseID)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize firestore repository")
		}
		logging.Default().Info("Using Firestore repository",
			"project_id", r.projectID,
			"database_id", r.databaseID,
		)
		return repo, nil

	case BackendPostgres, BackendSQLite:
		db, err := r.ConfigureSQL()
		if err != nil {
			return nil, err
		}
		return db, nil

	case BackendMemory:
		logging.Default().Info("Using in-memory repository (development mode)")
		return memory.New(), nil

	default:
		return nil, goerr.Wrap(ErrInvalidBackend, "invalid repository backend", goerr.V(BackendKey, r.backend))
	}
}
