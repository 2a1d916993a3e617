package database

import (
	"time"

	"github.com/optimatax/reliefdesk/pkg/domain/model"
	"github.com/optimatax/reliefdesk/pkg/domain/types"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type userRecord struct {
	ID           string `gorm:"primaryKey;size:64"`
	Email        string `gorm:"size:320;uniqueIndex"`
	Name         string `gorm:"size:256"`
	PasswordHash string `gorm:"size:128"`
	Role         string `gorm:"size:32"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (userRecord) TableName() string { return "users" }

func toUserRecord(u *model.User) *userRecord {
	return &userRecord{
		ID:           string(u.ID),
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (r *userRecord) toModel() *model.User {
	return &model.User{
		ID:           model.UserID(r.ID),
		Email:        r.Email,
		Name:         r.Name,
		PasswordHash: r.PasswordHash,
		Role:         types.Role(r.Role),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

type stateTransitionJSON struct {
	From        string    `json:"from"`
	To          string    `json:"to"`
	At          time.Time `json:"at"`
	TriggeredBy string    `json:"triggered_by"`
	Note        string    `json:"note,omitempty"`
}

type caseRecord struct {
	ID                string                                    `gorm:"primaryKey;size:16"`
	OwnerID           string                                    `gorm:"size:64;index"`
	Program           string                                    `gorm:"size:16"`
	Status            string                                    `gorm:"size:32;index"`
	Priority          string                                    `gorm:"size:16"`
	TotalDebt         decimal.Decimal                           `gorm:"type:numeric(14,2)"`
	TaxYears          datatypes.JSONType[[]int]                 `gorm:"column:tax_years"`
	AssignedTo        string                                    `gorm:"size:64;index"`
	StateHistory      datatypes.JSONType[[]stateTransitionJSON] `gorm:"column:state_history"`
	DocumentsComplete bool                                      `gorm:"not null"`
	FormsComplete     bool                                      `gorm:"not null"`
	NextDeadline      *time.Time                                `gorm:"index"`
	OverdueNotifiedAt *time.Time                                `gorm:"column:overdue_notified_at"`
	Version           int64                                     `gorm:"not null"`
	CreatedAt         time.Time                                 `gorm:"index"`
	UpdatedAt         time.Time                                 `gorm:"column:updated_at"`
}

func (caseRecord) TableName() string { return "cases" }

func toCaseRecord(c *model.Case) *caseRecord {
	history := make([]stateTransitionJSON, 0, len(c.StateHistory))
	for _, h := range c.StateHistory {
		history = append(history, stateTransitionJSON{
			From:        string(h.From),
			To:          string(h.To),
			At:          h.At,
			TriggeredBy: string(h.TriggeredBy),
			Note:        h.Note,
		})
	}
	years := c.TaxYears
	if years == nil {
		years = []int{}
	}

	return &caseRecord{
		ID:                string(c.ID),
		OwnerID:           string(c.OwnerID),
		Program:           string(c.Program),
		Status:            string(c.Status),
		Priority:          string(c.Priority),
		TotalDebt:         c.TotalDebt,
		TaxYears:          datatypes.NewJSONType(years),
		AssignedTo:        string(c.AssignedTo),
		StateHistory:      datatypes.NewJSONType(history),
		DocumentsComplete: c.DocumentsComplete,
		FormsComplete:     c.FormsComplete,
		NextDeadline:      c.NextDeadline,
		OverdueNotifiedAt: c.OverdueNotifiedAt,
		Version:           c.Version,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
	}
}

func (r *caseRecord) toModel() *model.Case {
	history := make([]model.StateTransition, 0, len(r.StateHistory.Data()))
	for _, h := range r.StateHistory.Data() {
		history = append(history, model.StateTransition{
			From:        types.CaseStatus(h.From),
			To:          types.CaseStatus(h.To),
			At:          h.At,
			TriggeredBy: model.UserID(h.TriggeredBy),
			Note:        h.Note,
		})
	}
	years := r.TaxYears.Data()
	if years == nil {
		years = []int{}
	}

	return &model.Case{
		ID:                model.CaseID(r.ID),
		OwnerID:           model.UserID(r.OwnerID),
		Program:           types.ProgramType(r.Program),
		Status:            types.CaseStatus(r.Status),
		Priority:          types.CasePriority(r.Priority),
		TotalDebt:         r.TotalDebt,
		TaxYears:          years,
		AssignedTo:        model.UserID(r.AssignedTo),
		StateHistory:      history,
		DocumentsComplete: r.DocumentsComplete,
		FormsComplete:     r.FormsComplete,
		NextDeadline:      utcPtr(r.NextDeadline),
		OverdueNotifiedAt: utcPtr(r.OverdueNotifiedAt),
		Version:           r.Version,
		CreatedAt:         r.CreatedAt.UTC(),
		UpdatedAt:         r.UpdatedAt.UTC(),
	}
}

type documentRecord struct {
	ID              string `gorm:"primaryKey;size:64"`
	UserID          string `gorm:"size:64;index"`
	CaseID          string `gorm:"size:16;index"`
	Type            string `gorm:"size:32"`
	Status          string `gorm:"size:16"`
	Verification    string `gorm:"size:16"`
	FileName        string `gorm:"size:512"`
	ContentType     string `gorm:"size:128"`
	Size            int64  `gorm:"not null"`
	Locator         string `gorm:"size:1024"`
	VerifiedBy      string `gorm:"size:64"`
	VerifiedAt      *time.Time
	RejectionReason string
	Version         int64     `gorm:"not null;default:1"`
	CreatedAt       time.Time `gorm:"index"`
	UpdatedAt       time.Time
}

func (documentRecord) TableName() string { return "documents" }

func toDocumentRecord(d *model.Document) *documentRecord {
	return &documentRecord{
		ID:              string(d.ID),
		UserID:          string(d.UserID),
		CaseID:          string(d.CaseID),
		Type:            string(d.Type),
		Status:          string(d.Status),
		Verification:    string(d.Verification),
		FileName:        d.FileName,
		ContentType:     d.ContentType,
		Size:            d.Size,
		Locator:         d.Locator,
		VerifiedBy:      string(d.VerifiedBy),
		VerifiedAt:      d.VerifiedAt,
		RejectionReason: d.RejectionReason,
		Version:         d.Version,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

func (r *documentRecord) toModel() *model.Document {
	return &model.Document{
		ID:              model.DocumentID(r.ID),
		UserID:          model.UserID(r.UserID),
		CaseID:          model.CaseID(r.CaseID),
		Type:            types.DocumentType(r.Type),
		Status:          types.DocumentStatus(r.Status),
		Verification:    types.VerificationStatus(r.Verification),
		FileName:        r.FileName,
		ContentType:     r.ContentType,
		Size:            r.Size,
		Locator:         r.Locator,
		VerifiedBy:      model.UserID(r.VerifiedBy),
		VerifiedAt:      utcPtr(r.VerifiedAt),
		RejectionReason: r.RejectionReason,
		Version:         r.Version,
		CreatedAt:       r.CreatedAt.UTC(),
		UpdatedAt:       r.UpdatedAt.UTC(),
	}
}

type assessmentRecord struct {
	ID                 string                                       `gorm:"primaryKey;size:64"`
	UserID             string                                       `gorm:"size:64;index"`
	CaseID             string                                       `gorm:"size:16;index"`
	FilingStatus       string                                       `gorm:"size:32"`
	AllReturnsFiled    bool                                         `gorm:"not null"`
	UnfiledYears       datatypes.JSONType[[]int]                    `gorm:"column:unfiled_years"`
	TotalTaxDebt       decimal.Decimal                              `gorm:"type:numeric(14,2)"`
	MonthlyIncome      decimal.Decimal                              `gorm:"type:numeric(14,2)"`
	MonthlyExpenses    decimal.Decimal                              `gorm:"type:numeric(14,2)"`
	DisposableIncome   decimal.Decimal                              `gorm:"type:numeric(14,2)"`
	TotalAssets        decimal.Decimal                              `gorm:"type:numeric(14,2)"`
	CompletedSteps     datatypes.JSONType[[]types.AssessmentStep]   `gorm:"column:completed_steps"`
	ProgressPercentage int                                          `gorm:"not null"`
	Status             string                                       `gorm:"size:16"`
	CompletedAt        *time.Time                                   `gorm:"column:completed_at"`
	Eligibility        datatypes.JSONType[*model.EligibilityResult] `gorm:"column:eligibility"`
	CreatedAt          time.Time                                    `gorm:"index"`
	UpdatedAt          time.Time                                    `gorm:"column:updated_at"`
}

func (assessmentRecord) TableName() string { return "assessments" }

func toAssessmentRecord(a *model.Assessment) *assessmentRecord {
	years := a.UnfiledYears
	if years == nil {
		years = []int{}
	}
	steps := a.CompletedSteps
	if steps == nil {
		steps = []types.AssessmentStep{}
	}

	return &assessmentRecord{
		ID:                 string(a.ID),
		UserID:             string(a.UserID),
		CaseID:             string(a.CaseID),
		FilingStatus:       string(a.FilingStatus),
		AllReturnsFiled:    a.AllReturnsFiled,
		UnfiledYears:       datatypes.NewJSONType(years),
		TotalTaxDebt:       a.TotalTaxDebt,
		MonthlyIncome:      a.MonthlyIncome,
		MonthlyExpenses:    a.MonthlyExpenses,
		DisposableIncome:   a.DisposableIncome,
		TotalAssets:        a.TotalAssets,
		CompletedSteps:     datatypes.NewJSONType(steps),
		ProgressPercentage: a.ProgressPercentage,
		Status:             string(a.Status),
		CompletedAt:        a.CompletedAt,
		Eligibility:        datatypes.NewJSONType(a.Eligibility),
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}
}

func (r *assessmentRecord) toModel() *model.Assessment {
	years := r.UnfiledYears.Data()
	if years == nil {
		years = []int{}
	}
	steps := r.CompletedSteps.Data()
	if steps == nil {
		steps = []types.AssessmentStep{}
	}

	return &model.Assessment{
		ID:                 model.AssessmentID(r.ID),
		UserID:             model.UserID(r.UserID),
		CaseID:             model.CaseID(r.CaseID),
		FilingStatus:       types.FilingStatus(r.FilingStatus),
		AllReturnsFiled:    r.AllReturnsFiled,
		UnfiledYears:       years,
		TotalTaxDebt:       r.TotalTaxDebt,
		MonthlyIncome:      r.MonthlyIncome,
		MonthlyExpenses:    r.MonthlyExpenses,
		DisposableIncome:   r.DisposableIncome,
		TotalAssets:        r.TotalAssets,
		CompletedSteps:     steps,
		ProgressPercentage: r.ProgressPercentage,
		Status:             types.AssessmentStatus(r.Status),
		CompletedAt:        utcPtr(r.CompletedAt),
		Eligibility:        r.Eligibility.Data(),
		CreatedAt:          r.CreatedAt.UTC(),
		UpdatedAt:          r.UpdatedAt.UTC(),
	}
}

type activityRecord struct {
	ID           string `gorm:"primaryKey;size:64"`
	ActorID      string `gorm:"size:64;index"`
	Kind         string `gorm:"size:32"`
	Description  string
	CaseID       string    `gorm:"size:16;index"`
	DocumentID   string    `gorm:"size:64"`
	AssessmentID string    `gorm:"size:64"`
	FromStatus   string    `gorm:"size:32"`
	ToStatus     string    `gorm:"size:32"`
	CreatedAt    time.Time `gorm:"index"`
}

func (activityRecord) TableName() string { return "activities" }

func toActivityRecord(a *model.Activity) *activityRecord {
	return &activityRecord{
		ID:           string(a.ID),
		ActorID:      string(a.ActorID),
		Kind:         string(a.Kind),
		Description:  a.Description,
		CaseID:       string(a.Context.CaseID),
		DocumentID:   string(a.Context.DocumentID),
		AssessmentID: string(a.Context.AssessmentID),
		FromStatus:   string(a.Context.FromStatus),
		ToStatus:     string(a.Context.ToStatus),
		CreatedAt:    a.CreatedAt,
	}
}

func (r *activityRecord) toModel() *model.Activity {
	return &model.Activity{
		ID:          model.ActivityID(r.ID),
		ActorID:     model.UserID(r.ActorID),
		Kind:        types.EventKind(r.Kind),
		Description: r.Description,
		Context: model.ActivityContext{
			CaseID:       model.CaseID(r.CaseID),
			DocumentID:   model.DocumentID(r.DocumentID),
			AssessmentID: model.AssessmentID(r.AssessmentID),
			FromStatus:   types.CaseStatus(r.FromStatus),
			ToStatus:     types.CaseStatus(r.ToStatus),
		},
		CreatedAt: r.CreatedAt.UTC(),
	}
}

type notificationRecord struct {
	ID          string `gorm:"primaryKey;size:64"`
	UserID      string `gorm:"size:64;index"`
	Kind        string `gorm:"size:32"`
	Priority    string `gorm:"size:16"`
	Title       string `gorm:"size:256"`
	Message     string
	CaseID      string     `gorm:"size:16"`
	Read        bool       `gorm:"not null"`
	DeliveredAt *time.Time `gorm:"index"`
	Attempts    int        `gorm:"not null"`
	CreatedAt   time.Time  `gorm:"index"`
}

func (notificationRecord) TableName() string { return "notifications" }

func toNotificationRecord(n *model.Notification) *notificationRecord {
	return &notificationRecord{
		ID:          string(n.ID),
		UserID:      string(n.UserID),
		Kind:        string(n.Kind),
		Priority:    string(n.Priority),
		Title:       n.Title,
		Message:     n.Message,
		CaseID:      string(n.CaseID),
		Read:        n.Read,
		DeliveredAt: n.DeliveredAt,
		Attempts:    n.Attempts,
		CreatedAt:   n.CreatedAt,
	}
}

func (r *notificationRecord) toModel() *model.Notification {
	return &model.Notification{
		ID:          model.NotificationID(r.ID),
		UserID:      model.UserID(r.UserID),
		Kind:        types.EventKind(r.Kind),
		Priority:    types.NotificationPriority(r.Priority),
		Title:       r.Title,
		Message:     r.Message,
		CaseID:      model.CaseID(r.CaseID),
		Read:        r.Read,
		DeliveredAt: utcPtr(r.DeliveredAt),
		Attempts:    r.Attempts,
		CreatedAt:   r.CreatedAt.UTC(),
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
