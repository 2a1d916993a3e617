package model

import (
	"math"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/optimatax/reliefdesk/pkg/domain/types"
	"github.com/shopspring/decimal"
)

// AssessmentID is the unique identifier of an assessment
type AssessmentID string

func (x AssessmentID) String() string { return string(x) }

// NewAssessmentID generates a new assessment ID
func NewAssessmentID() AssessmentID {
	return AssessmentID(uuid.New().String())
}

// Assessment is a step-by-step financial questionnaire used to evaluate
// relief program eligibility
type Assessment struct {
	ID                 AssessmentID
	UserID             UserID
	CaseID             CaseID // Optional
	FilingStatus       types.FilingStatus
	AllReturnsFiled    bool
	UnfiledYears       []int
	TotalTaxDebt       decimal.Decimal
	MonthlyIncome      decimal.Decimal
	MonthlyExpenses    decimal.Decimal
	DisposableIncome   decimal.Decimal // Always MonthlyIncome - MonthlyExpenses
	TotalAssets        decimal.Decimal
	CompletedSteps     []types.AssessmentStep
	ProgressPercentage int
	Status             types.AssessmentStatus
	CompletedAt        *time.Time
	Eligibility        *EligibilityResult
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// StepInput carries the answers of a single assessment step. Only the fields
// of the submitted step are read.
type StepInput struct {
	FilingStatus    types.FilingStatus
	AllReturnsFiled *bool
	UnfiledYears    []int
	TotalTaxDebt    *decimal.Decimal
	MonthlyIncome   *decimal.Decimal
	MonthlyExpenses *decimal.Decimal
	TotalAssets     *decimal.Decimal
}

// NewAssessment starts an empty assessment
func NewAssessment(userID UserID, caseID CaseID, now time.Time) *Assessment {
	return &Assessment{
		ID:              NewAssessmentID(),
		UserID:          userID,
		CaseID:          caseID,
		AllReturnsFiled: true,
		UnfiledYears:    []int{},
		CompletedSteps:  []types.AssessmentStep{},
		Status:          types.AssessmentStatusInProgress,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// Copy returns a deep copy of the assessment
func (a *Assessment) Copy() *Assessment {
	if a == nil {
		return nil
	}
	dup := *a
	dup.UnfiledYears = slices.Clone(a.UnfiledYears)
	dup.CompletedSteps = slices.Clone(a.CompletedSteps)
	if a.CompletedAt != nil {
		t := *a.CompletedAt
		dup.CompletedAt = &t
	}
	dup.Eligibility = a.Eligibility.Copy()
	return &dup
}

func requireAmount(step types.AssessmentStep, v *decimal.Decimal) (decimal.Decimal, error) {
	if v == nil {
		return decimal.Zero, goerr.Wrap(ErrInvalidInput, "amount is required", goerr.V(StepKey, step))
	}
	if err := ValidateAmount(string(step), *v); err != nil {
		return decimal.Zero, goerr.Wrap(err, "invalid step amount", goerr.V(StepKey, step))
	}
	return *v, nil
}

// SubmitStep records the answers of one step and recomputes derived fields.
// It returns true when this submission completed the assessment.
func (a *Assessment) SubmitStep(step types.AssessmentStep, in StepInput, now time.Time) (bool, error) {
	if a.Status == types.AssessmentStatusCompleted {
		return false, goerr.Wrap(ErrInvalidInput, "assessment is already completed",
			goerr.V(AssessmentIDKey, a.ID))
	}

	switch step {
	case types.AssessmentStepFilingStatus:
		if !in.FilingStatus.IsValid() {
			return false, goerr.Wrap(ErrInvalidInput, "invalid filing status",
				goerr.V(StepKey, step), goerr.V("filing_status", in.FilingStatus))
		}
		a.FilingStatus = in.FilingStatus

	case types.AssessmentStepFilingCompliance:
		if in.AllReturnsFiled == nil {
			return false, goerr.Wrap(ErrInvalidInput, "filing compliance answer is required", goerr.V(StepKey, step))
		}
		a.AllReturnsFiled = *in.AllReturnsFiled
		a.UnfiledYears = []int{}
		if !a.AllReturnsFiled {
			a.UnfiledYears = NormalizeTaxYears(in.UnfiledYears)
		}

	case types.AssessmentStepTaxDebt:
		v, err := requireAmount(step, in.TotalTaxDebt)
		if err != nil {
			return false, err
		}
		a.TotalTaxDebt = v

	case types.AssessmentStepIncome:
		v, err := requireAmount(step, in.MonthlyIncome)
		if err != nil {
			return false, err
		}
		a.MonthlyIncome = v

	case types.AssessmentStepExpenses:
		v, err := requireAmount(step, in.MonthlyExpenses)
		if err != nil {
			return false, err
		}
		a.MonthlyExpenses = v

	case types.AssessmentStepAssets:
		v, err := requireAmount(step, in.TotalAssets)
		if err != nil {
			return false, err
		}
		a.TotalAssets = v

	default:
		return false, goerr.Wrap(ErrInvalidInput, "unknown assessment step", goerr.V(StepKey, step))
	}

	if !slices.Contains(a.CompletedSteps, step) {
		a.CompletedSteps = append(a.CompletedSteps, step)
	}
	a.UpdatedAt = now
	a.Derive()

	if a.ProgressPercentage == 100 && a.CompletedAt == nil {
		a.Status = types.AssessmentStatusCompleted
		a.CompletedAt = &now
		a.Eligibility = Evaluate(a)
		return true, nil
	}
	return false, nil
}

// Derive recomputes disposable income and progress from the stored answers.
// Repositories call it before every save.
func (a *Assessment) Derive() {
	a.DisposableIncome = a.MonthlyIncome.Sub(a.MonthlyExpenses)

	distinct := make(map[types.AssessmentStep]bool)
	for _, s := range a.CompletedSteps {
		if s.IsValid() {
			distinct[s] = true
		}
	}
	total := len(types.AllAssessmentSteps())
	a.ProgressPercentage = int(math.Round(100 * float64(len(distinct)) / float64(total)))

	if a.Status == "" {
		a.Status = types.AssessmentStatusInProgress
	}
}

// Reevaluate stores the engine result for the answers given so far. Status
// and CompletedAt are left as they are; only SubmitStep completes an
// assessment. A partial result carries FlagIncompleteAssessment.
func (a *Assessment) Reevaluate(now time.Time) {
	a.Derive()
	a.Eligibility = Evaluate(a)
	if a.ProgressPercentage < 100 {
		a.Eligibility.Flags = append(a.Eligibility.Flags, types.FlagIncompleteAssessment)
	}
	a.UpdatedAt = now
}
