package config

import (
	"slices"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/optimatax/reliefdesk/pkg/domain/model"
	"github.com/optimatax/reliefdesk/pkg/domain/types"
)

// Policy holds the operator-tunable rules of the case workflow
type Policy struct {
	TransitionPolicy    types.TransitionPolicy
	NotifyStatuses      []types.CaseStatus
	CaseIDAttempts      int
	TransitionRetries   int
	MaxUploadSize       int64
	AllowedContentTypes []string
	SignedURLTTL        time.Duration
}

const (
	DefaultCaseIDAttempts    = 10
	DefaultTransitionRetries = 3
	DefaultMaxUploadSize     = 25 << 20
	DefaultSignedURLTTL      = 15 * time.Minute
)

// DefaultAllowedContentTypes are the accepted upload media types
func DefaultAllowedContentTypes() []string {
	return []string{
		"application/pdf",
		"image/jpeg",
		"image/png",
		"image/tiff",
	}
}

// DefaultPolicy returns the policy used when no configuration file is given
func DefaultPolicy() *Policy {
	return &Policy{
		TransitionPolicy:    types.TransitionPolicyStrict,
		NotifyStatuses:      model.DefaultNotifyStatuses(),
		CaseIDAttempts:      DefaultCaseIDAttempts,
		TransitionRetries:   DefaultTransitionRetries,
		MaxUploadSize:       DefaultMaxUploadSize,
		AllowedContentTypes: DefaultAllowedContentTypes(),
		SignedURLTTL:        DefaultSignedURLTTL,
	}
}

// Validate checks the policy values
func (p *Policy) Validate() error {
	if !p.TransitionPolicy.IsValid() {
		return goerr.New("invalid transition policy", goerr.V("transition_policy", p.TransitionPolicy))
	}
	for _, s := range p.NotifyStatuses {
		if !s.IsValid() {
			return goerr.New("invalid notify status", goerr.V("status", s))
		}
	}
	if p.CaseIDAttempts < 1 {
		return goerr.New("case ID attempts must be positive", goerr.V("case_id_attempts", p.CaseIDAttempts))
	}
	if p.TransitionRetries < 0 {
		return goerr.New("transition retries must not be negative", goerr.V("transition_retries", p.TransitionRetries))
	}
	if p.MaxUploadSize < 1 {
		return goerr.New("max upload size must be positive", goerr.V("max_upload_size", p.MaxUploadSize))
	}
	if len(p.AllowedContentTypes) == 0 {
		return goerr.New("at least one content type must be allowed")
	}
	if p.SignedURLTTL <= 0 {
		return goerr.New("signed URL TTL must be positive", goerr.V("signed_url_ttl", p.SignedURLTTL.String()))
	}
	return nil
}

// AllowsContentType reports whether uploads of the media type are accepted
func (p *Policy) AllowsContentType(contentType string) bool {
	return slices.Contains(p.AllowedContentTypes, contentType)
}
