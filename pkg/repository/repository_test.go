package repository_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/optimatax/reliefdesk/pkg/domain/interfaces"
	"github.com/optimatax/reliefdesk/pkg/repository/database"
	"github.com/optimatax/reliefdesk/pkg/repository/firestore"
	"github.com/optimatax/reliefdesk/pkg/repository/memory"
)

type repositoryFactory func(t *testing.T) interfaces.Repository

func newMemoryRepository(t *testing.T) interfaces.Repository {
	t.Helper()
	return memory.New()
}

func newSQLiteRepository(t *testing.T) interfaces.Repository {
	t.Helper()

	repo, err := database.NewSQLite(":memory:", database.WithAutoMigrate())
	gt.NoError(t, err).Required()
	t.Cleanup(func() {
		gt.NoError(t, repo.Close())
	})
	return repo
}

func newFirestoreRepository(t *testing.T) interfaces.Repository {
	t.Helper()

	projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("TEST_FIRESTORE_PROJECT_ID not set")
	}

	databaseID := os.Getenv("TEST_FIRESTORE_DATABASE_ID")
	if databaseID == "" {
		t.Skip("TEST_FIRESTORE_DATABASE_ID not set")
	}

	prefix := fmt.Sprintf("test_%d", time.Now().UnixNano())
	repo, err := firestore.New(context.Background(), projectID, databaseID, firestore.WithCollectionPrefix(prefix))
	gt.NoError(t, err).Required()
	t.Cleanup(func() {
		gt.NoError(t, repo.Close())
	})
	return repo
}

func newPostgresRepository(t *testing.T) interfaces.Repository {
	t.Helper()

	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}

	repo, err := database.NewPostgres(dsn, database.WithAutoMigrate())
	gt.NoError(t, err).Required()
	t.Cleanup(func() {
		gt.NoError(t, repo.Close())
	})
	return repo
}

// runAllBackends runs the suite against every repository implementation.
// External backends are skipped unless their environment is configured.
func runAllBackends(t *testing.T, suite func(t *testing.T, newRepo repositoryFactory)) {
	t.Run("Memory", func(t *testing.T) {
		suite(t, newMemoryRepository)
	})
	t.Run("SQLite", func(t *testing.T) {
		suite(t, newSQLiteRepository)
	})
	t.Run("Postgres", func(t *testing.T) {
		suite(t, newPostgresRepository)
	})
	t.Run("Firestore", func(t *testing.T) {
		suite(t, newFirestoreRepository)
	})
}

// testTime returns a timestamp every backend stores without precision loss
func testTime(offset time.Duration) time.Time {
	return time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC).Add(offset)
}
