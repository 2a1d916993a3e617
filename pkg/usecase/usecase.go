package usecase

import (
	"context"
	"time"

	"github.com/optimatax/reliefdesk/pkg/domain/interfaces"
	"github.com/optimatax/reliefdesk/pkg/domain/model"
	"github.com/optimatax/reliefdesk/pkg/domain/model/config"
	"github.com/optimatax/reliefdesk/pkg/service/storage"
)

type UseCases struct {
	repo             interfaces.Repository
	publisher        interfaces.EventPublisher
	blob             interfaces.BlobStorage
	policy           *config.Policy
	clock            func() time.Time
	inlineProcessing bool

	Case         *CaseUseCase
	Document     *DocumentUseCase
	Assessment   *AssessmentUseCase
	Eligibility  *EligibilityUseCase
	Notification *NotificationUseCase
	Activity     *ActivityUseCase
	Auth         AuthUseCaseInterface
}

type Option func(*UseCases)

// WithPublisher sets the receiver of domain events
func WithPublisher(p interfaces.EventPublisher) Option {
	return func(uc *UseCases) {
		uc.publisher = p
	}
}

// WithBlobStorage sets the document content store
func WithBlobStorage(blob interfaces.BlobStorage) Option {
	return func(uc *UseCases) {
		uc.blob = blob
	}
}

// WithPolicy sets the workflow policy
func WithPolicy(p *config.Policy) Option {
	return func(uc *UseCases) {
		uc.policy = p
	}
}

// WithClock replaces the time source
func WithClock(now func() time.Time) Option {
	return func(uc *UseCases) {
		uc.clock = now
	}
}

// WithInlineProcessing processes uploaded documents before the upload returns
func WithInlineProcessing() Option {
	return func(uc *UseCases) {
		uc.inlineProcessing = true
	}
}

func WithAuth(auth AuthUseCaseInterface) Option {
	return func(uc *UseCases) {
		uc.Auth = auth
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:      repo,
		publisher: nopPublisher{},
		policy:    config.DefaultPolicy(),
		clock:     time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}
	if uc.blob == nil {
		uc.blob = storage.NewMemory()
	}

	now := func() time.Time { return uc.clock().UTC() }

	uc.Case = NewCaseUseCase(repo, uc.publisher, uc.policy, now)
	uc.Document = NewDocumentUseCase(repo, uc.blob, uc.publisher, uc.policy, now, uc.inlineProcessing)
	uc.Assessment = NewAssessmentUseCase(repo, uc.publisher, now)
	uc.Eligibility = NewEligibilityUseCase()
	uc.Notification = NewNotificationUseCase(repo)
	uc.Activity = NewActivityUseCase(repo)

	return uc
}

type nopPublisher struct{}

func (nopPublisher) Publish(ctx context.Context, events ...*model.Event) {}

// Policy returns the workflow policy in effect
func (uc *UseCases) Policy() *config.Policy {
	return uc.policy
}

// Now returns the current time of the use cases' clock in UTC
func (uc *UseCases) Now() time.Time {
	return uc.clock().UTC()
}
