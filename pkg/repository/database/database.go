package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/m-mizutani/goerr/v2"
	"github.com/optimatax/reliefdesk/pkg/domain/interfaces"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var (
	ErrNotFound      = interfaces.ErrNotFound
	ErrAlreadyExists = interfaces.ErrAlreadyExists
	ErrConflict      = interfaces.ErrConflict
)

// Database stores entities in a SQL database through gorm. PostgreSQL is used
// in production and SQLite for single-node deployments and tests.
type Database struct {
	db           *gorm.DB
	user         *userRepository
	caseRepo     *caseRepository
	document     *documentRepository
	assessment   *assessmentRepository
	activity     *activityRepository
	notification *notificationRepository
}

var _ interfaces.Repository = &Database{}

type config struct {
	logger      *slog.Logger
	autoMigrate bool
}

type Option func(*config)

// WithLogger routes slow query and error logs to the logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithAutoMigrate creates or updates tables when the connection is opened
func WithAutoMigrate() Option {
	return func(c *config) {
		c.autoMigrate = true
	}
}

// NewPostgres opens a PostgreSQL database with the DSN
func NewPostgres(dsn string, opts ...Option) (*Database, error) {
	return open(postgres.Open(dsn), false, opts...)
}

// NewSQLite opens a SQLite database file. Use ":memory:" for a private
// in-memory database.
func NewSQLite(path string, opts ...Option) (*Database, error) {
	return open(sqlite.Open(path), path == ":memory:", opts...)
}

func open(dialector gorm.Dialector, inMemory bool, opts ...Option) (*Database, error) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	gormCfg := &gorm.Config{
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
		Logger:         gormlogger.Discard,
	}
	if cfg.logger != nil {
		gormCfg.Logger = gormlogger.New(&slogWriter{logger: cfg.logger}, gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		})
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open database", goerr.V("dialect", dialector.Name()))
	}

	if inMemory {
		// Every pooled connection would otherwise see its own empty database.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, goerr.Wrap(err, "failed to get sql.DB")
		}
		sqlDB.SetMaxOpenConns(1)
	}

	d := &Database{
		db:           db,
		user:         &userRepository{db: db},
		caseRepo:     &caseRepository{db: db},
		document:     &documentRepository{db: db},
		assessment:   &assessmentRepository{db: db},
		activity:     &activityRepository{db: db},
		notification: &notificationRepository{db: db},
	}

	if cfg.autoMigrate {
		if err := d.Migrate(context.Background()); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Migrate creates or updates every table and index
func (d *Database) Migrate(ctx context.Context) error {
	if err := d.db.WithContext(ctx).AutoMigrate(
		&userRecord{},
		&caseRecord{},
		&documentRecord{},
		&assessmentRecord{},
		&activityRecord{},
		&notificationRecord{},
	); err != nil {
		return goerr.Wrap(err, "failed to migrate database schema")
	}
	return nil
}

func (d *Database) User() interfaces.UserRepository {
	return d.user
}

func (d *Database) Case() interfaces.CaseRepository {
	return d.caseRepo
}

func (d *Database) Document() interfaces.DocumentRepository {
	return d.document
}

func (d *Database) Assessment() interfaces.AssessmentRepository {
	return d.assessment
}

func (d *Database) Activity() interfaces.ActivityRepository {
	return d.activity
}

func (d *Database) Notification() interfaces.NotificationRepository {
	return d.notification
}

func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return goerr.Wrap(err, "failed to get sql.DB")
	}
	if err := sqlDB.Close(); err != nil {
		return goerr.Wrap(err, "failed to close database")
	}
	return nil
}

type slogWriter struct {
	logger *slog.Logger
}

func (w *slogWriter) Printf(format string, args ...any) {
	w.logger.Warn(fmt.Sprintf(format, args...))
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
