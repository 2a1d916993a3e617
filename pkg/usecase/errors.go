package usecase

import "errors"

// Sentinel errors for use case layer
var (
	// Not found errors. Resources the actor may not see are reported the same way.
	ErrCaseNotFound         = errors.New("case not found")
	ErrDocumentNotFound     = errors.New("document not found")
	ErrAssessmentNotFound   = errors.New("assessment not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrUserNotFound         = errors.New("user not found")

	// Authentication errors
	ErrUnauthenticated    = errors.New("authentication required")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid session token")

	// Consistency errors
	ErrEmailTaken = errors.New("email already registered")
)

// Context keys for error values
const (
	CaseIDKey         = "case_id"
	DocumentIDKey     = "document_id"
	AssessmentIDKey   = "assessment_id"
	NotificationIDKey = "notification_id"
	UserIDKey         = "user_id"
	AttemptsKey       = "attempts"
)
