package memory

import (
	"github.com/optimatax/reliefdesk/pkg/domain/interfaces"
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

// Memory keeps every entity in process memory. It is used for tests and
// single-process development runs.
type Memory struct {
	user         *userRepository
	caseRepo     *caseRepository
	document     *documentRepository
	assessment   *assessmentRepository
	activity     *activityRepository
	notification *notificationRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		user:         newUserRepository(),
		caseRepo:     newCaseRepository(),
		document:     newDocumentRepository(),
		assessment:   newAssessmentRepository(),
		activity:     newActivityRepository(),
		notification: newNotificationRepository(),
	}
}

func (m *Memory) User() interfaces.UserRepository {
	return m.user
}

func (m *Memory) Case() interfaces.CaseRepository {
	return m.caseRepo
}

func (m *Memory) Document() interfaces.DocumentRepository {
	return m.document
}

func (m *Memory) Assessment() interfaces.AssessmentRepository {
	return m.assessment
}

func (m *Memory) Activity() interfaces.ActivityRepository {
	return m.activity
}

func (m *Memory) Notification() interfaces.NotificationRepository {
	return m.notification
}

func (m *Memory) Close() error {
	return nil
}
