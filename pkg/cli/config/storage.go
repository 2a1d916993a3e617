package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/optimatax/reliefdesk/pkg/domain/interfaces"
	"github.com/optimatax/reliefdesk/pkg/service/storage"
	"github.com/optimatax/reliefdesk/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

const BackendGCS = "gcs"

// Storage holds CLI flags for document blob storage
type Storage struct {
	backend string
	bucket  string
	prefix  string
}

// Flags returns CLI flags for blob storage
func (x *Storage) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "storage-backend",
			Usage:       "Document storage backend (gcs or memory)",
			Category:    "Storage",
			Value:       BackendGCS,
			Sources:     cli.EnvVars("RELIEFDESK_STORAGE_BACKEND"),
			Destination: &x.backend,
		},
		&cli.StringFlag{
			Name:        "gcs-bucket",
			Usage:       "Cloud Storage bucket for uploaded documents",
			Category:    "Storage",
			Sources:     cli.EnvVars("RELIEFDESK_GCS_BUCKET"),
			Destination: &x.bucket,
		},
		&cli.StringFlag{
			Name:        "gcs-prefix",
			Usage:       "Object name prefix inside the bucket",
			Category:    "Storage",
			Sources:     cli.EnvVars("RELIEFDESK_GCS_PREFIX"),
			Destination: &x.prefix,
		},
	}
}

// Configure creates the blob storage for the configured backend
func (x *Storage) Configure(ctx context.Context) (interfaces.BlobStorage, error) {
	switch x.backend {
	case BackendGCS:
		if x.bucket == "" {
			return nil, goerr.Wrap(ErrMissingOption, "gcs-bucket is required when using gcs backend",
				goerr.V(OptionKey, "gcs-bucket"))
		}
		gcs, err := storage.NewGCS(ctx, x.bucket, storage.WithObjectPrefix(x.prefix))
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize Cloud Storage")
		}
		logging.Default().Info("Using Cloud Storage for documents", "bucket", x.bucket, "prefix", x.prefix)
		return gcs, nil

	case BackendMemory:
		logging.Default().Info("Using in-memory document storage (development mode)")
		return storage.NewMemory(), nil

	default:
		return nil, goerr.Wrap(ErrInvalidBackend, "invalid storage backend", goerr.V(BackendKey, x.backend))
	}
}
