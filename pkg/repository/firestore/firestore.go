package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/optimatax/reliefdesk/pkg/domain/interfaces"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	ErrNotFound      = interfaces.ErrNotFound
	ErrAlreadyExists = interfaces.ErrAlreadyExists
	ErrConflict      = interfaces.ErrConflict
)

const (
	usersCollection         = "users"
	userEmailsCollection    = "user_emails"
	casesCollection         = "cases"
	documentsCollection     = "documents"
	assessmentsCollection   = "assessments"
	activitiesCollection    = "activities"
	notificationsCollection = "notifications"
)

type Firestore struct {
	client       *firestore.Client
	user         *userRepository
	caseRepo     *caseRepository
	document     *documentRepository
	assessment   *assessmentRepository
	activity     *activityRepository
	notification *notificationRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix prefixes every collection name, used to isolate test runs
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.user.collections.prefix = prefix
		f.caseRepo.collections.prefix = prefix
		f.document.collections.prefix = prefix
		f.assessment.collections.prefix = prefix
		f.activity.collections.prefix = prefix
		f.notification.collections.prefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID), goerr.V("databaseID", databaseID))
	}

	f := &Firestore{
		client:       client,
		user:         &userRepository{collections: collections{client: client}},
		caseRepo:     &caseRepository{collections: collections{client: client}},
		document:     &documentRepository{collections: collections{client: client}},
		assessment:   &assessmentRepository{collections: collections{client: client}},
		activity:     &activityRepository{collections: collections{client: client}},
		notification: &notificationRepository{collections: collections{client: client}},
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) User() interfaces.UserRepository {
	return f.user
}

func (f *Firestore) Case() interfaces.CaseRepository {
	return f.caseRepo
}

func (f *Firestore) Document() interfaces.DocumentRepository {
	return f.document
}

func (f *Firestore) Assessment() interfaces.AssessmentRepository {
	return f.assessment
}

func (f *Firestore) Activity() interfaces.ActivityRepository {
	return f.activity
}

func (f *Firestore) Notification() interfaces.NotificationRepository {
	return f.notification
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}

type collections struct {
	client *firestore.Client
	prefix string
}

func (c collections) collection(name string) *firestore.CollectionRef {
	if c.prefix != "" {
		return c.client.Collection(c.prefix + "_" + name)
	}
	return c.client.Collection(name)
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

func isAlreadyExists(err error) bool {
	return status.Code(err) == codes.AlreadyExists
}
