package firestore

import (
	"encoding/json"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/optimatax/reliefdesk/pkg/domain/model"
	"github.com/optimatax/reliefdesk/pkg/domain/types"
	"github.com/shopspring/decimal"
)

// Monetary values are stored as decimal strings to keep cents exact.

type userDoc struct {
	ID           string    `firestore:"id"`
	Email        string    `firestore:"email"`
	Name         string    `firestore:"name"`
	PasswordHash string    `firestore:"password_hash"`
	Role         string    `firestore:"role"`
	CreatedAt    time.Time `firestore:"created_at"`
	UpdatedAt    time.Time `firestore:"updated_at"`
}

func toUserDoc(u *model.User) *userDoc {
	return &userDoc{
		ID:           string(u.ID),
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (d *userDoc) toModel() *model.User {
	return &model.User{
		ID:           model.UserID(d.ID),
		Email:        d.Email,
		Name:         d.Name,
		PasswordHash: d.PasswordHash,
		Role:         types.Role(d.Role),
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
}

type stateTransitionDoc struct {
	From        string    `firestore:"from"`
	To          string    `firestore:"to"`
	At          time.Time `firestore:"at"`
	TriggeredBy string    `firestore:"triggered_by"`
	Note        string    `firestore:"note"`
}

type caseDoc struct {
	ID                string               `firestore:"id"`
	OwnerID           string               `firestore:"owner_id"`
	Program           string               `firestore:"program"`
	Status            string               `firestore:"status"`
	Priority          string               `firestore:"priority"`
	TotalDebt         string               `firestore:"total_debt"`
	TaxYears          []int                `firestore:"tax_years"`
	AssignedTo        string               `firestore:"assigned_to"`
	StateHistory      []stateTransitionDoc `firestore:"state_history"`
	DocumentsComplete bool                 `firestore:"documents_complete"`
	FormsComplete     bool                 `firestore:"forms_complete"`
	NextDeadline      *time.Time           `firestore:"next_deadline"`
	OverdueNotifiedAt *time.Time           `firestore:"overdue_notified_at"`
	Version           int64                `firestore:"version"`
	CreatedAt         time.Time            `firestore:"created_at"`
	UpdatedAt         time.Time            `firestore:"updated_at"`
}

func toCaseDoc(c *model.Case) *caseDoc {
	history := make([]stateTransitionDoc, 0, len(c.StateHistory))
	for _, h := range c.StateHistory {
		history = append(history, stateTransitionDoc{
			From:        string(h.From),
			To:          string(h.To),
			At:          h.At,
			TriggeredBy: string(h.TriggeredBy),
			Note:        h.Note,
		})
	}

	return &caseDoc{
		ID:                string(c.ID),
		OwnerID:           string(c.OwnerID),
		Program:           string(c.Program),
		Status:            string(c.Status),
		Priority:          string(c.Priority),
		TotalDebt:         c.TotalDebt.StringFixed(2),
		TaxYears:          c.TaxYears,
		AssignedTo:        string(c.AssignedTo),
		StateHistory:      history,
		DocumentsComplete: c.DocumentsComplete,
		FormsComplete:     c.FormsComplete,
		NextDeadline:      c.NextDeadline,
		OverdueNotifiedAt: c.OverdueNotifiedAt,
		Version:           c.Version,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
	}
}

func (d *caseDoc) toModel() (*model.Case, error) {
	debt, err := parseDecimal(d.TotalDebt)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid total_debt", goerr.V("id", d.ID))
	}

	history := make([]model.StateTransition, 0, len(d.StateHistory))
	for _, h := range d.StateHistory {
		history = append(history, model.StateTransition{
			From:        types.CaseStatus(h.From),
			To:          types.CaseStatus(h.To),
			At:          h.At.UTC(),
			TriggeredBy: model.UserID(h.TriggeredBy),
			Note:        h.Note,
		})
	}
	years := d.TaxYears
	if years == nil {
		years = []int{}
	}

	return &model.Case{
		ID:                model.CaseID(d.ID),
		OwnerID:           model.UserID(d.OwnerID),
		Program:           types.ProgramType(d.Program),
		Status:            types.CaseStatus(d.Status),
		Priority:          types.CasePriority(d.Priority),
		TotalDebt:         debt,
		TaxYears:          years,
		AssignedTo:        model.UserID(d.AssignedTo),
		StateHistory:      history,
		DocumentsComplete: d.DocumentsComplete,
		FormsComplete:     d.FormsComplete,
		NextDeadline:      utcPtr(d.NextDeadline),
		OverdueNotifiedAt: utcPtr(d.OverdueNotifiedAt),
		Version:           d.Version,
		CreatedAt:         d.CreatedAt.UTC(),
		UpdatedAt:         d.UpdatedAt.UTC(),
	}, nil
}

type documentDoc struct {
	ID              string     `firestore:"id"`
	UserID          string     `firestore:"user_id"`
	CaseID          string     `firestore:"case_id"`
	Type            string     `firestore:"type"`
	Status          string     `firestore:"status"`
	Verification    string     `firestore:"verification"`
	FileName        string     `firestore:"file_name"`
	ContentType     string     `firestore:"content_type"`
	Size            int64      `firestore:"size"`
	Locator         string     `firestore:"locator"`
	VerifiedBy      string     `firestore:"verified_by"`
	VerifiedAt      *time.Time `firestore:"verified_at"`
	RejectionReason string     `firestore:"rejection_reason"`
	Version         int64      `firestore:"version"`
	CreatedAt       time.Time  `firestore:"created_at"`
	UpdatedAt       time.Time  `firestore:"updated_at"`
}

func toDocumentDoc(d *model.Document) *documentDoc {
	return &documentDoc{
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

func (d *documentDoc) toModel() *model.Document {
	return &model.Document{
		ID:              model.DocumentID(d.ID),
		UserID:          model.UserID(d.UserID),
		CaseID:          model.CaseID(d.CaseID),
		Type:            types.DocumentType(d.Type),
		Status:          types.DocumentStatus(d.Status),
		Verification:    types.VerificationStatus(d.Verification),
		FileName:        d.FileName,
		ContentType:     d.ContentType,
		Size:            d.Size,
		Locator:         d.Locator,
		VerifiedBy:      model.UserID(d.VerifiedBy),
		VerifiedAt:      utcPtr(d.VerifiedAt),
		RejectionReason: d.RejectionReason,
		Version:         d.Version,
		CreatedAt:       d.CreatedAt.UTC(),
		UpdatedAt:       d.UpdatedAt.UTC(),
	}
}

type assessmentDoc struct {
	ID                 string     `firestore:"id"`
	UserID             string     `firestore:"user_id"`
	CaseID             string     `firestore:"case_id"`
	FilingStatus       string     `firestore:"filing_status"`
	AllReturnsFiled    bool       `firestore:"all_returns_filed"`
	UnfiledYears       []int      `firestore:"unfiled_years"`
	TotalTaxDebt       string     `firestore:"total_tax_debt"`
	MonthlyIncome      string     `firestore:"monthly_income"`
	MonthlyExpenses    string     `firestore:"monthly_expenses"`
	DisposableIncome   string     `firestore:"disposable_income"`
	TotalAssets        string     `firestore:"total_assets"`
	CompletedSteps     []string   `firestore:"completed_steps"`
	ProgressPercentage int        `firestore:"progress_percentage"`
	Status             string     `firestore:"status"`
	CompletedAt        *time.Time `firestore:"completed_at"`
	Eligibility        string     `firestore:"eligibility"` // JSON encoded EligibilityResult
	CreatedAt          time.Time  `firestore:"created_at"`
	UpdatedAt          time.Time  `firestore:"updated_at"`
}

func toAssessmentDoc(a *model.Assessment) (*assessmentDoc, error) {
	steps := make([]string, 0, len(a.CompletedSteps))
	for _, s := range a.CompletedSteps {
		steps = append(steps, string(s))
	}

	var eligibility string
	if a.Eligibility != nil {
		raw, err := json.Marshal(a.Eligibility)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to encode eligibility", goerr.V("id", a.ID))
		}
		eligibility = string(raw)
	}

	return &assessmentDoc{
		ID:                 string(a.ID),
		UserID:             string(a.UserID),
		CaseID:             string(a.CaseID),
		FilingStatus:       string(a.FilingStatus),
		AllReturnsFiled:    a.AllReturnsFiled,
		UnfiledYears:       a.UnfiledYears,
		TotalTaxDebt:       a.TotalTaxDebt.StringFixed(2),
		MonthlyIncome:      a.MonthlyIncome.StringFixed(2),
		MonthlyExpenses:    a.MonthlyExpenses.StringFixed(2),
		DisposableIncome:   a.DisposableIncome.StringFixed(2),
		TotalAssets:        a.TotalAssets.StringFixed(2),
		CompletedSteps:     steps,
		ProgressPercentage: a.ProgressPercentage,
		Status:             string(a.Status),
		CompletedAt:        a.CompletedAt,
		Eligibility:        eligibility,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}, nil
}

func (d *assessmentDoc) toModel() (*model.Assessment, error) {
	amounts := make([]decimal.Decimal, 5)
	for i, s := range []string{d.TotalTaxDebt, d.MonthlyIncome, d.MonthlyExpenses, d.DisposableIncome, d.TotalAssets} {
		v, err := parseDecimal(s)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid amount in assessment", goerr.V("id", d.ID))
		}
		amounts[i] = v
	}

	steps := make([]types.AssessmentStep, 0, len(d.CompletedSteps))
	for _, s := range d.CompletedSteps {
		steps = append(steps, types.AssessmentStep(s))
	}
	years := d.UnfiledYears
	if years == nil {
		years = []int{}
	}

	var eligibility *model.EligibilityResult
	if d.Eligibility != "" {
		eligibility = &model.EligibilityResult{}
		if err := json.Unmarshal([]byte(d.Eligibility), eligibility); err != nil {
			return nil, goerr.Wrap(err, "failed to decode eligibility", goerr.V("id", d.ID))
		}
	}

	return &model.Assessment{
		ID:                 model.AssessmentID(d.ID),
		UserID:             model.UserID(d.UserID),
		CaseID:             model.CaseID(d.CaseID),
		FilingStatus:       types.FilingStatus(d.FilingStatus),
		AllReturnsFiled:    d.AllReturnsFiled,
		UnfiledYears:       years,
		TotalTaxDebt:       amounts[0],
		MonthlyIncome:      amounts[1],
		MonthlyExpenses:    amounts[2],
		DisposableIncome:   amounts[3],
		TotalAssets:        amounts[4],
		CompletedSteps:     steps,
		ProgressPercentage: d.ProgressPercentage,
		Status:             types.AssessmentStatus(d.Status),
		CompletedAt:        utcPtr(d.CompletedAt),
		Eligibility:        eligibility,
		CreatedAt:          d.CreatedAt.UTC(),
		UpdatedAt:          d.UpdatedAt.UTC(),
	}, nil
}

type activityDoc struct {
	ID           string    `firestore:"id"`
	ActorID      string    `firestore:"actor_id"`
	Kind         string    `firestore:"kind"`
	Description  string    `firestore:"description"`
	CaseID       string    `firestore:"case_id"`
	DocumentID   string    `firestore:"document_id"`
	AssessmentID string    `firestore:"assessment_id"`
	FromStatus   string    `firestore:"from_status"`
	ToStatus     string    `firestore:"to_status"`
	CreatedAt    time.Time `firestore:"created_at"`
}

func toActivityDoc(a *model.Activity) *activityDoc {
	return &activityDoc{
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

func (d *activityDoc) toModel() *model.Activity {
	return &model.Activity{
		ID:          model.ActivityID(d.ID),
		ActorID:     model.UserID(d.ActorID),
		Kind:        types.EventKind(d.Kind),
		Description: d.Description,
		Context: model.ActivityContext{
			CaseID:       model.CaseID(d.CaseID),
			DocumentID:   model.DocumentID(d.DocumentID),
			AssessmentID: model.AssessmentID(d.AssessmentID),
			FromStatus:   types.CaseStatus(d.FromStatus),
			ToStatus:     types.CaseStatus(d.ToStatus),
		},
		CreatedAt: d.CreatedAt.UTC(),
	}
}

type notificationDoc struct {
	ID          string     `firestore:"id"`
	UserID      string     `firestore:"user_id"`
	Kind        string     `firestore:"kind"`
	Priority    string     `firestore:"priority"`
	Title       string     `firestore:"title"`
	Message     string     `firestore:"message"`
	CaseID      string     `firestore:"case_id"`
	Read        bool       `firestore:"read"`
	Delivered   bool       `firestore:"delivered"`
	DeliveredAt *time.Time `firestore:"delivered_at"`
	Attempts    int        `firestore:"attempts"`
	CreatedAt   time.Time  `firestore:"created_at"`
}

func toNotificationDoc(n *model.Notification) *notificationDoc {
	return &notificationDoc{
		ID:          string(n.ID),
		UserID:      string(n.UserID),
		Kind:        string(n.Kind),
		Priority:    string(n.Priority),
		Title:       n.Title,
		Message:     n.Message,
		CaseID:      string(n.CaseID),
		Read:        n.Read,
		Delivered:   n.DeliveredAt != nil,
		DeliveredAt: n.DeliveredAt,
		Attempts:    n.Attempts,
		CreatedAt:   n.CreatedAt,
	}
}

func (d *notificationDoc) toModel() *model.Notification {
	return &model.Notification{
		ID:          model.NotificationID(d.ID),
		UserID:      model.UserID(d.UserID),
		Kind:        types.EventKind(d.Kind),
		Priority:    types.NotificationPriority(d.Priority),
		Title:       d.Title,
		Message:     d.Message,
		CaseID:      model.CaseID(d.CaseID),
		Read:        d.Read,
		DeliveredAt: utcPtr(d.DeliveredAt),
		Attempts:    d.Attempts,
		CreatedAt:   d.CreatedAt.UTC(),
	}
}

func parseDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
