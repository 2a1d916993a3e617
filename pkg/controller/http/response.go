package http

import (
	"time"

	"github.com/optimatax/reliefdesk/pkg/domain/model"
	"github.com/optimatax/reliefdesk/pkg/domain/types"
	"github.com/optimatax/reliefdesk/pkg/usecase"
)

type userResponse struct {
	ID        model.UserID `json:"id"`
	Email     string       `json:"email"`
	Name      string       `json:"name"`
	Role      types.Role   `json:"role"`
	CreatedAt time.Time    `json:"createdAt"`
}

func toUserResponse(u *model.User) *userResponse {
	return &userResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

type sessionResponse struct {
	User  *userResponse `json:"user"`
	Token string        `json:"token"`
}

type transitionResponse struct {
	From        types.CaseStatus `json:"from"`
	To          types.CaseStatus `json:"to"`
	At          time.Time        `json:"at"`
	TriggeredBy model.UserID     `json:"triggeredBy"`
	Note        string           `json:"note,omitempty"`
}

type caseResponse struct {
	ID                 model.CaseID         `json:"id"`
	OwnerID            model.UserID         `json:"ownerId"`
	Program            types.ProgramType    `json:"program"`
	Status             types.CaseStatus     `json:"status"`
	Priority           types.CasePriority   `json:"priority"`
	TotalDebt          string               `json:"totalDebt"`
	TaxYears           []int                `json:"taxYears"`
	AssignedTo         model.UserID         `json:"assignedTo,omitempty"`
	StateHistory       []transitionResponse `json:"stateHistory"`
	DocumentsComplete  bool                 `json:"documentsComplete"`
	FormsComplete      bool                 `json:"formsComplete"`
	NextDeadline       *time.Time           `json:"nextDeadline,omitempty"`
	Overdue            bool                 `json:"overdue"`
	ProgressPercentage int                  `json:"progressPercentage"`
	Version            int64                `json:"version"`
	CreatedAt          time.Time            `json:"createdAt"`
	UpdatedAt          time.Time            `json:"updatedAt"`
}

func toCaseResponse(c *model.Case, now time.Time) *caseResponse {
	resp := &caseResponse{
		ID:                 c.ID,
		OwnerID:            c.OwnerID,
		Program:            c.Program,
		Status:             c.Status,
		Priority:           c.Priority,
		TotalDebt:          c.TotalDebt.StringFixed(2),
		TaxYears:           c.TaxYears,
		AssignedTo:         c.AssignedTo,
		StateHistory:       make([]transitionResponse, len(c.StateHistory)),
		DocumentsComplete:  c.DocumentsComplete,
		FormsComplete:      c.FormsComplete,
		NextDeadline:       c.NextDeadline,
		Overdue:            c.IsOverdue(now),
		ProgressPercentage: model.CalculateProgress(c),
		Version:            c.Version,
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
	if resp.TaxYears == nil {
		resp.TaxYears = []int{}
	}
	for i, st := range c.StateHistory {
		resp.StateHistory[i] = transitionResponse{
			From:        st.From,
			To:          st.To,
			At:          st.At,
			TriggeredBy: st.TriggeredBy,
			Note:        st.Note,
		}
	}
	return resp
}

func toCaseResponses(cases []*model.Case, now time.Time) []*caseResponse {
	out := make([]*caseResponse, len(cases))
	for i, c := range cases {
		out[i] = toCaseResponse(c, now)
	}
	return out
}

type requirementResponse struct {
	CaseID             model.CaseID         `json:"caseId"`
	Program            types.ProgramType    `json:"program"`
	Required           []types.DocumentType `json:"required"`
	Present            []types.DocumentType `json:"present"`
	Missing            []types.DocumentType `json:"missing"`
	Complete           bool                 `json:"complete"`
	ProgressPercentage int                  `json:"progressPercentage"`
}

func toRequirementResponse(r *model.RequirementCheck) *requirementResponse {
	return &requirementResponse{
		CaseID:             r.CaseID,
		Program:            r.Program,
		Required:           r.Required,
		Present:            r.Present,
		Missing:            r.Missing,
		Complete:           r.Complete,
		ProgressPercentage: r.Progress,
	}
}

type caseSummaryResponse struct {
	Case               *caseResponse        `json:"case"`
	Requirements       *requirementResponse `json:"requirements"`
	Documents          []*documentResponse  `json:"documents"`
	Assessment         *assessmentResponse  `json:"assessment,omitempty"`
	AllowedTransitions []types.CaseStatus   `json:"allowedTransitions"`
}

func toCaseSummaryResponse(s *usecase.CaseSummary, now time.Time) *caseSummaryResponse {
	resp := &caseSummaryResponse{
		Case:               toCaseResponse(s.Case, now),
		Requirements:       toRequirementResponse(s.Requirements),
		Documents:          toDocumentResponses(s.Documents),
		AllowedTransitions: s.Allowed,
	}
	if resp.AllowedTransitions == nil {
		resp.AllowedTransitions = []types.CaseStatus{}
	}
	if s.Assessment != nil {
		resp.Assessment = toAssessmentResponse(s.Assessment)
	}
	return resp
}

type documentResponse struct {
	ID              model.DocumentID         `json:"id"`
	UserID          model.UserID             `json:"userId"`
	CaseID          model.CaseID             `json:"caseId,omitempty"`
	Type            types.DocumentType       `json:"type"`
	Status          types.DocumentStatus     `json:"status"`
	Verification    types.VerificationStatus `json:"verificationStatus"`
	FileName        string                   `json:"fileName"`
	ContentType     string                   `json:"contentType"`
	Size            int64                    `json:"size"`
	VerifiedBy      model.UserID             `json:"verifiedBy,omitempty"`
	VerifiedAt      *time.Time               `json:"verifiedAt,omitempty"`
	RejectionReason string                   `json:"rejectionReason,omitempty"`
	CreatedAt       time.Time                `json:"createdAt"`
	UpdatedAt       time.Time                `json:"updatedAt"`
}

func toDocumentResponse(d *model.Document) *documentResponse {
	return &documentResponse{
		ID:              d.ID,
		UserID:          d.UserID,
		CaseID:          d.CaseID,
		Type:            d.Type,
		Status:          d.Status,
		Verification:    d.Verification,
		FileName:        d.FileName,
		ContentType:     d.ContentType,
		Size:            d.Size,
		VerifiedBy:      d.VerifiedBy,
		VerifiedAt:      d.VerifiedAt,
		RejectionReason: d.RejectionReason,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

func toDocumentResponses(docs []*model.Document) []*documentResponse {
	out := make([]*documentResponse, len(docs))
	for i, d := range docs {
		out[i] = toDocumentResponse(d)
	}
	return out
}

type downloadURLResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type programEvaluationResponse struct {
	Program    types.ProgramType `json:"program"`
	Qualified  bool              `json:"qualified"`
	Confidence int               `json:"confidence"`
	Benefit    string            `json:"estimatedBenefit"`
	Reason     string            `json:"reason"`
}

type recommendationResponse struct {
	Kind     types.RecommendationKind     `json:"type"`
	Priority types.RecommendationPriority `json:"priority"`
	Program  types.ProgramType            `json:"program,omitempty"`
	Benefit  string                       `json:"estimatedBenefit"`
	Message  string                       `json:"message"`
}

type outcomeResponse struct {
	Program types.ProgramType `json:"program"`
	Benefit string            `json:"estimatedBenefit"`
}

type eligibilityResponse struct {
	Programs             []programEvaluationResponse `json:"programs"`
	QualifiedPrograms    []types.ProgramType         `json:"qualifiedPrograms"`
	DisqualifiedPrograms []types.ProgramType         `json:"disqualifiedPrograms"`
	Recommendations      []recommendationResponse    `json:"recommendations"`
	EstimatedOutcomes    []outcomeResponse           `json:"estimatedOutcomes"`
	OverallScore         int                         `json:"overallScore"`
	RiskRating           types.RiskRating            `json:"riskRating"`
	SuccessProbability   int                         `json:"successProbability"`
	Flags                []types.EligibilityFlag     `json:"flags"`
}

func toEligibilityResponse(r *model.EligibilityResult) *eligibilityResponse {
	resp := &eligibilityResponse{
		Programs:             make([]programEvaluationResponse, len(r.Programs)),
		QualifiedPrograms:    r.QualifiedPrograms,
		DisqualifiedPrograms: r.DisqualifiedPrograms,
		Recommendations:      make([]recommendationResponse, len(r.Recommendations)),
		EstimatedOutcomes:    make([]outcomeResponse, len(r.EstimatedOutcomes)),
		OverallScore:         r.OverallScore,
		RiskRating:           r.RiskRating,
		SuccessProbability:   r.SuccessProbability,
		Flags:                r.Flags,
	}
	for i, p := range r.Programs {
		resp.Programs[i] = programEvaluationResponse{
			Program:    p.Program,
			Qualified:  p.Qualified,
			Confidence: p.Confidence,
			Benefit:    p.Benefit.StringFixed(2),
			Reason:     p.Reason,
		}
	}
	for i, rec := range r.Recommendations {
		resp.Recommendations[i] = recommendationResponse{
			Kind:     rec.Kind,
			Priority: rec.Priority,
			Program:  rec.Program,
			Benefit:  rec.Benefit.StringFixed(2),
			Message:  rec.Message,
		}
	}
	for i, o := range r.EstimatedOutcomes {
		resp.EstimatedOutcomes[i] = outcomeResponse{
			Program: o.Program,
			Benefit: o.Benefit.StringFixed(2),
		}
	}
	return resp
}

type assessmentResponse struct {
	ID                 model.AssessmentID     `json:"id"`
	UserID             model.UserID           `json:"userId"`
	CaseID             model.CaseID           `json:"caseId,omitempty"`
	FilingStatus       types.FilingStatus     `json:"filingStatus,omitempty"`
	AllReturnsFiled    bool                   `json:"allReturnsFiled"`
	UnfiledYears       []int                  `json:"unfiledYears"`
	TotalTaxDebt       string                 `json:"totalTaxDebt"`
	MonthlyIncome      string                 `json:"monthlyIncome"`
	MonthlyExpenses    string                 `json:"monthlyExpenses"`
	DisposableIncome   string                 `json:"disposableIncome"`
	TotalAssets        string                 `json:"totalAssets"`
	CompletedSteps     []types.AssessmentStep `json:"completedSteps"`
	ProgressPercentage int                    `json:"progressPercentage"`
	Status             types.AssessmentStatus `json:"status"`
	CompletedAt        *time.Time             `json:"completedAt,omitempty"`
	Eligibility        *eligibilityResponse   `json:"eligibilityResults,omitempty"`
	CreatedAt          time.Time              `json:"createdAt"`
	UpdatedAt          time.Time              `json:"updatedAt"`
}

func toAssessmentResponse(a *model.Assessment) *assessmentResponse {
	resp := &assessmentResponse{
		ID:                 a.ID,
		UserID:             a.UserID,
		CaseID:             a.CaseID,
		FilingStatus:       a.FilingStatus,
		AllReturnsFiled:    a.AllReturnsFiled,
		UnfiledYears:       a.UnfiledYears,
		TotalTaxDebt:       a.TotalTaxDebt.StringFixed(2),
		MonthlyIncome:      a.MonthlyIncome.StringFixed(2),
		MonthlyExpenses:    a.MonthlyExpenses.StringFixed(2),
		DisposableIncome:   a.DisposableIncome.StringFixed(2),
		TotalAssets:        a.TotalAssets.StringFixed(2),
		CompletedSteps:     a.CompletedSteps,
		ProgressPercentage: a.ProgressPercentage,
		Status:             a.Status,
		CompletedAt:        a.CompletedAt,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}
	if a.Eligibility != nil {
		resp.Eligibility = toEligibilityResponse(a.Eligibility)
	}
	return resp
}

func toAssessmentResponses(list []*model.Assessment) []*assessmentResponse {
	out := make([]*assessmentResponse, len(list))
	for i, a := range list {
		out[i] = toAssessmentResponse(a)
	}
	return out
}

type programLikelihoodResponse struct {
	Program    types.ProgramType `json:"program"`
	Likelihood types.Likelihood  `json:"likelihood"`
}

type quickCheckResponse struct {
	DisposableIncome      string                      `json:"disposableIncome"`
	DebtToIncomeRatio     *float64                    `json:"debtToIncomeRatio"`
	DisposableIncomeRatio *float64                    `json:"disposableIncomeRatio"`
	NeedsFiling           bool                        `json:"needsFiling"`
	Programs              []programLikelihoodResponse `json:"programs"`
	Message               string                      `json:"message"`
}

func toQuickCheckResponse(r *model.QuickCheckResult) *quickCheckResponse {
	resp := &quickCheckResponse{
		DisposableIncome:      r.DisposableIncome.StringFixed(2),
		DebtToIncomeRatio:     r.DebtToIncomeRatio,
		DisposableIncomeRatio: r.DisposableIncomeRatio,
		NeedsFiling:           r.NeedsFiling,
		Programs:              make([]programLikelihoodResponse, len(r.Programs)),
		Message:               r.Message,
	}
	for i, p := range r.Programs {
		resp.Programs[i] = programLikelihoodResponse{
			Program:    p.Program,
			Likelihood: p.Likelihood,
		}
	}
	return resp
}

type notificationResponse struct {
	ID        model.NotificationID       `json:"id"`
	Kind      types.EventKind            `json:"type"`
	Priority  types.NotificationPriority `json:"priority"`
	Title     string                     `json:"title"`
	Message   string                     `json:"message"`
	CaseID    model.CaseID               `json:"caseId,omitempty"`
	Read      bool                       `json:"read"`
	CreatedAt time.Time                  `json:"createdAt"`
}

func toNotificationResponses(list []*model.Notification) []*notificationResponse {
	out := make([]*notificationResponse, len(list))
	for i, n := range list {
		out[i] = &notificationResponse{
			ID:        n.ID,
			Kind:      n.Kind,
			Priority:  n.Priority,
			Title:     n.Title,
			Message:   n.Message,
			CaseID:    n.CaseID,
			Read:      n.Read,
			CreatedAt: n.CreatedAt,
		}
	}
	return out
}

type activityResponse struct {
	ID           model.ActivityID   `json:"id"`
	ActorID      model.UserID       `json:"userId"`
	Kind         types.EventKind    `json:"action"`
	Description  string             `json:"description"`
	CaseID       model.CaseID       `json:"caseId,omitempty"`
	DocumentID   model.DocumentID   `json:"documentId,omitempty"`
	AssessmentID model.AssessmentID `json:"assessmentId,omitempty"`
	FromStatus   types.CaseStatus   `json:"fromStatus,omitempty"`
	ToStatus     types.CaseStatus   `json:"toStatus,omitempty"`
	CreatedAt    time.Time          `json:"createdAt"`
}

func toActivityResponses(list []*model.Activity) []*activityResponse {
	out := make([]*activityResponse, len(list))
	for i, a := range list {
		out[i] = &activityResponse{
			ID:           a.ID,
			ActorID:      a.ActorID,
			Kind:         a.Kind,
			Description:  a.Description,
			CaseID:       a.Context.CaseID,
			DocumentID:   a.Context.DocumentID,
			AssessmentID: a.Context.AssessmentID,
			FromStatus:   a.Context.FromStatus,
			ToStatus:     a.Context.ToStatus,
			CreatedAt:    a.CreatedAt,
		}
	}
	return out
}
