package types

// EventKind identifies a domain event and the activity recorded for it
type EventKind string

const (
	EventCaseCreated         EventKind = "CASE_CREATED"
	EventCaseStatusChanged   EventKind = "CASE_STATUS_CHANGED"
	EventCaseAssigned        EventKind = "CASE_ASSIGNED"
	EventCaseOverdue         EventKind = "CASE_OVERDUE"
	EventDocumentUploaded    EventKind = "DOCUMENT_UPLOADED"
	EventDocumentProcessed   EventKind = "DOCUMENT_PROCESSED"
	EventDocumentVerified    EventKind = "DOCUMENT_VERIFIED"
	EventDocumentRejected    EventKind = "DOCUMENT_REJECTED"
	EventDocumentDeleted     EventKind = "DOCUMENT_DELETED"
	EventAssessmentCompleted EventKind = "ASSESSMENT_COMPLETED"
	EventUserRegistered      EventKind = "USER_REGISTERED"
	EventUserLoggedIn        EventKind = "USER_LOGGED_IN"
)

func (k EventKind) String() string {
	return string(k)
}

// NotificationPriority orders in-app notifications
type NotificationPriority string

const (
	NotificationPriorityLow    NotificationPriority = "LOW"
	NotificationPriorityNormal NotificationPriority = "NORMAL"
	NotificationPriorityHigh   NotificationPriority = "HIGH"
)

func (p NotificationPriority) String() string {
	return string(p)
}

// TransitionPolicy selects how strictly case status changes are checked
type TransitionPolicy string

const (
	// TransitionPolicyStrict only allows edges of the lifecycle graph
	TransitionPolicyStrict TransitionPolicy = "strict"
	// TransitionPolicyPermissive allows any status to any status
	TransitionPolicyPermissive TransitionPolicy = "permissive"
)

// IsValid checks if the policy is known
func (p TransitionPolicy) IsValid() bool {
	return p == TransitionPolicyStrict || p == TransitionPolicyPermissive
}
