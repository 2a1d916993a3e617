package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/optimatax/reliefdesk/pkg/domain/interfaces"
	"google.golang.org/api/option"
)

const gcsScheme = "gs://"

// ErrInvalidLocator is returned for locators that do not belong to the backend
var ErrInvalidLocator = goerr.New("invalid blob locator")

// GCS stores document content in a Cloud Storage bucket
type GCS struct {
	client *storage.Client
	bucket string
	prefix string
}

var _ interfaces.BlobStorage = &GCS{}

// GCSOption is a functional option for GCS
type GCSOption func(*gcsConfig)

type gcsConfig struct {
	prefix     string
	clientOpts []option.ClientOption
}

// WithObjectPrefix stores every object below the prefix
func WithObjectPrefix(prefix string) GCSOption {
	return func(c *gcsConfig) {
		c.prefix = strings.Trim(prefix, "/")
	}
}

// WithClientOptions passes options to the Cloud Storage client
func WithClientOptions(opts ...option.ClientOption) GCSOption {
	return func(c *gcsConfig) {
		c.clientOpts = append(c.clientOpts, opts...)
	}
}

// NewGCS creates a Cloud Storage backed blob store
func NewGCS(ctx context.Context, bucket string, opts ...GCSOption) (*GCS, error) {
	if bucket == "" {
		return nil, goerr.New("bucket name is required")
	}

	cfg := &gcsConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	client, err := storage.NewClient(ctx, cfg.clientOpts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Cloud Storage client", goerr.V("bucket", bucket))
	}

	return &GCS{
		client: client,
		bucket: bucket,
		prefix: cfg.prefix,
	}, nil
}

func (s *GCS) objectName(p string) string {
	p = strings.TrimLeft(p, "/")
	if s.prefix == "" {
		return p
	}
	return path.Join(s.prefix, p)
}

func (s *GCS) parseLocator(locator string) (string, error) {
	rest, ok := strings.CutPrefix(locator, gcsScheme+s.bucket+"/")
	if !ok || rest == "" {
		return "", goerr.Wrap(ErrInvalidLocator, "locator does not belong to bucket",
			goerr.V("locator", locator), goerr.V("bucket", s.bucket))
	}
	return rest, nil
}

// Put writes the content and returns a gs:// locator
func (s *GCS) Put(ctx context.Context, p string, r io.Reader, meta interfaces.BlobMetadata) (string, error) {
	name := s.objectName(p)
	w := s.client.Bucket(s.bucket).Object(name).NewWriter(ctx)
	w.ContentType = meta.ContentType
	w.Metadata = meta.Attributes

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", goerr.Wrap(err, "failed to write object", goerr.V("object", name))
	}
	if err := w.Close(); err != nil {
		return "", goerr.Wrap(err, "failed to finalize object", goerr.V("object", name))
	}

	return gcsScheme + s.bucket + "/" + name, nil
}

// Exists reports whether the object is stored
func (s *GCS) Exists(ctx context.Context, locator string) (bool, error) {
	name, err := s.parseLocator(locator)
	if err != nil {
		return false, err
	}

	if _, err := s.client.Bucket(s.bucket).Object(name).Attrs(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return false, nil
		}
		return false, goerr.Wrap(err, "failed to get object attributes", goerr.V("object", name))
	}
	return true, nil
}

// Delete removes the object. Missing objects are ignored.
func (s *GCS) Delete(ctx context.Context, locator string) error {
	name, err := s.parseLocator(locator)
	if err != nil {
		return err
	}

	if err := s.client.Bucket(s.bucket).Object(name).Delete(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil
		}
		return goerr.Wrap(err, "failed to delete object", goerr.V("object", name))
	}
	return nil
}

// SignedURL returns a V4 signed GET URL valid for ttl
func (s *GCS) SignedURL(ctx context.Context, locator string, ttl time.Duration) (string, error) {
	name, err := s.parseLocator(locator)
	if err != nil {
		return "", err
	}

	url, err := s.client.Bucket(s.bucket).SignedURL(name, &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  "GET",
		Expires: time.Now().Add(ttl),
	})
	if err != nil {
		return "", goerr.Wrap(err, "failed to sign object URL", goerr.V("object", name))
	}
	return url, nil
}

// Close releases the client
func (s *GCS) Close() error {
	return s.client.Close()
}
