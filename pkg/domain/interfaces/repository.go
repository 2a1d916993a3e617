package interfaces

// Repository defines the interface for data persistence
type Repository interface {
	User() UserRepository
	Case() CaseRepository
	Document() DocumentRepository
	Assessment() AssessmentRepository
	Activity() ActivityRepository
	Notification() NotificationRepository

	// Close releases the underlying connection
	Close() error
}
