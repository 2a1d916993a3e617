package config

import (
	"bytes"
	"errors"
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	domainConfig "github.com/optimatax/reliefdesk/pkg/domain/model/config"
	"github.com/optimatax/reliefdesk/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

// PolicyFile is the TOML representation of the workflow policy. Omitted keys
// keep their defaults.
type PolicyFile struct {
	TransitionPolicy  string       `toml:"transition_policy"`
	NotifyStatuses    []string     `toml:"notify_statuses"`
	CaseIDAttempts    int          `toml:"case_id_attempts"`
	TransitionRetries *int         `toml:"transition_retries"`
	Upload            UploadPolicy `toml:"upload"`
}

// UploadPolicy is the [upload] table of the policy file
type UploadPolicy struct {
	MaxSizeMB    int64    `toml:"max_size_mb"`
	ContentTypes []string `toml:"content_types"`
	SignedURLTTL string   `toml:"signed_url_ttl"`
}

// ToDomainPolicy merges the file over the default policy
func (f *PolicyFile) ToDomainPolicy() (*domainConfig.Policy, error) {
	p := domainConfig.DefaultPolicy()

	if f.TransitionPolicy != "" {
		p.TransitionPolicy = types.TransitionPolicy(f.TransitionPolicy)
	}
	if f.NotifyStatuses != nil {
		statuses := make([]types.CaseStatus, 0, len(f.NotifyStatuses))
		for _, s := range f.NotifyStatuses {
			status, err := types.ParseCaseStatus(s)
			if err != nil {
				return nil, goerr.Wrap(ErrInvalidConfig, "invalid notify status", goerr.V("status", s))
			}
			statuses = append(statuses, status)
		}
		p.NotifyStatuses = statuses
	}
	if f.CaseIDAttempts != 0 {
		p.CaseIDAttempts = f.CaseIDAttempts
	}
	if f.TransitionRetries != nil {
		p.TransitionRetries = *f.TransitionRetries
	}
	if f.Upload.MaxSizeMB != 0 {
		p.MaxUploadSize = f.Upload.MaxSizeMB << 20
	}
	if f.Upload.ContentTypes != nil {
		p.AllowedContentTypes = f.Upload.ContentTypes
	}
	if f.Upload.SignedURLTTL != "" {
		ttl, err := time.ParseDuration(f.Upload.SignedURLTTL)
		if err != nil {
			return nil, goerr.Wrap(ErrInvalidConfig, "invalid signed URL TTL", goerr.V("signed_url_ttl", f.Upload.SignedURLTTL))
		}
		p.SignedURLTTL = ttl
	}

	if err := p.Validate(); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, err.Error())
	}
	return p, nil
}

// LoadPolicy loads the workflow policy from a TOML file
func LoadPolicy(path string) (*domainConfig.Policy, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, goerr.Wrap(ErrConfigNotFound, "policy file does not exist", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read policy file", goerr.V(ConfigPathKey, path))
	}

	var file PolicyFile
	if err := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(&file); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse TOML policy",
			goerr.V(ConfigPathKey, path), goerr.V("cause", err.Error()))
	}

	policy, err := file.ToDomainPolicy()
	if err != nil {
		return nil, goerr.Wrap(err, "policy validation failed", goerr.V(ConfigPathKey, path))
	}
	return policy, nil
}

// Policy holds the CLI flag pointing at the policy file
type Policy struct {
	path string
}

// Flags returns CLI flags for policy configuration
func (x *Policy) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to the workflow policy TOML file",
			Sources:     cli.EnvVars("RELIEFDESK_CONFIG"),
			Destination: &x.path,
		},
	}
}

// Configure loads the policy file, or returns the default policy when no
// file is given
func (x *Policy) Configure() (*domainConfig.Policy, error) {
	if x.path == "" {
		return domainConfig.DefaultPolicy(), nil
	}
	return LoadPolicy(x.path)
}
