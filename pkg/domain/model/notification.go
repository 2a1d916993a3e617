package model

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/optimatax/reliefdesk/pkg/domain/types"
)

// NotificationID is the unique identifier of a notification
type NotificationID string

func (x NotificationID) String() string { return string(x) }

// NewNotificationID generates a new notification ID
func NewNotificationID() NotificationID {
	return NotificationID(uuid.New().String())
}

// Notification is a message addressed to a user. It is persisted for in-app
// display before any external delivery is attempted.
type Notification struct {
	ID          NotificationID
	UserID      UserID
	Kind        types.EventKind
	Priority    types.NotificationPriority
	Title       string
	Message     string
	CaseID      CaseID
	Read        bool
	DeliveredAt *time.Time
	Attempts    int
	CreatedAt   time.Time
}

// Copy returns a deep copy of the notification
func (n *Notification) Copy() *Notification {
	if n == nil {
		return nil
	}
	dup := *n
	if n.DeliveredAt != nil {
		t := *n.DeliveredAt
		dup.DeliveredAt = &t
	}
	return &dup
}

// DefaultNotifyStatuses are the case statuses the owner is told about
func DefaultNotifyStatuses() []types.CaseStatus {
	return []types.CaseStatus{
		types.CaseStatusDocumentCollection,
		types.CaseStatusSubmission,
		types.CaseStatusIRSProcessing,
		types.CaseStatusNegotiation,
		types.CaseStatusAccepted,
		types.CaseStatusRejected,
		types.CaseStatusWithdrawn,
		types.CaseStatusOnHold,
		types.CaseStatusClosed,
	}
}

// NotificationsForEvent derives the notifications an event produces. Apart
// from assessment results, the actor is never notified about their own action.
func NotificationsForEvent(ev *Event, notifyStatuses []types.CaseStatus) []*Notification {
	newNotification := func(to UserID, priority types.NotificationPriority, title, msg string) *Notification {
		return &Notification{
			ID:        NewNotificationID(),
			UserID:    to,
			Kind:      ev.Kind,
			Priority:  priority,
			Title:     title,
			Message:   msg,
			CaseID:    ev.CaseID,
			CreatedAt: ev.OccurredAt,
		}
	}

	var out []*Notification
	add := func(n *Notification) {
		if n.UserID == "" || n.UserID == ev.ActorID {
			return
		}
		out = append(out, n)
	}

	switch ev.Kind {
	case types.EventCaseStatusChanged:
		if !slices.Contains(notifyStatuses, ev.ToStatus) {
			break
		}
		priority := types.NotificationPriorityNormal
		if ev.ToStatus.IsOutcome() {
			priority = types.NotificationPriorityHigh
		}
		add(newNotification(ev.OwnerID, priority,
			"Case status updated",
			fmt.Sprintf("Your case %s is now %s", ev.CaseID, ev.ToStatus)))

	case types.EventCaseAssigned:
		add(newNotification(ev.AssigneeID, types.NotificationPriorityNormal,
			"Case assigned",
			fmt.Sprintf("Case %s has been assigned to you", ev.CaseID)))
		add(newNotification(ev.OwnerID, types.NotificationPriorityLow,
			"Reviewer assigned",
			fmt.Sprintf("A tax professional has been assigned to case %s", ev.CaseID)))

	case types.EventCaseOverdue:
		add(newNotification(ev.OwnerID, types.NotificationPriorityHigh,
			"Deadline passed",
			fmt.Sprintf("Case %s has passed its deadline", ev.CaseID)))

	case types.EventDocumentVerified:
		add(newNotification(ev.OwnerID, types.NotificationPriorityNormal,
			"Document verified",
			fmt.Sprintf("Your %s document has been verified", ev.DocumentType)))

	case types.EventDocumentRejected:
		msg := fmt.Sprintf("Your %s document was rejected", ev.DocumentType)
		if ev.Note != "" {
			msg += ": " + ev.Note
		}
		add(newNotification(ev.OwnerID, types.NotificationPriorityHigh, "Document rejected", msg))

	case types.EventAssessmentCompleted:
		// Results are delivered to the owner even when they finished it themselves.
		if ev.OwnerID != "" {
			out = append(out, newNotification(ev.OwnerID, types.NotificationPriorityNormal,
				"Assessment complete",
				"Your eligibility results are ready"))
		}
	}

	return out
}
