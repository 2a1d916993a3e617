package types

import "fmt"

// FilingStatus is the taxpayer's federal filing status
type FilingStatus string

const (
	FilingStatusSingle            FilingStatus = "SINGLE"
	FilingStatusMarriedJoint      FilingStatus = "MARRIED_JOINT"
	FilingStatusMarriedSeparate   FilingStatus = "MARRIED_SEPARATE"
	FilingStatusHeadOfHousehold   FilingStatus = "HEAD_OF_HOUSEHOLD"
	FilingStatusQualifyingWidower FilingStatus = "QUALIFYING_WIDOWER"
)

// IsValid checks if the filing status is valid
func (s FilingStatus) IsValid() bool {
	switch s {
	case FilingStatusSingle,
		FilingStatusMarriedJoint,
		FilingStatusMarriedSeparate,
		FilingStatusHeadOfHousehold,
		FilingStatusQualifyingWidower:
		return true
	default:
		return false
	}
}

func (s FilingStatus) String() string {
	return string(s)
}

// ParseFilingStatus parses a string into a FilingStatus
func ParseFilingStatus(s string) (FilingStatus, error) {
	fs := FilingStatus(s)
	if !fs.IsValid() {
		return "", fmt.Errorf("invalid filing status: %s", s)
	}
	return fs, nil
}

// AssessmentStep is one page of the intake questionnaire
type AssessmentStep string

const (
	AssessmentStepFilingStatus     AssessmentStep = "FILING_STATUS"
	AssessmentStepFilingCompliance AssessmentStep = "FILING_COMPLIANCE"
	AssessmentStepTaxDebt          AssessmentStep = "TAX_DEBT"
	AssessmentStepIncome           AssessmentStep = "INCOME"
	AssessmentStepExpenses         AssessmentStep = "EXPENSES"
	AssessmentStepAssets           AssessmentStep = "ASSETS"
)

// AllAssessmentSteps returns the fixed questionnaire steps in display order
func AllAssessmentSteps() []AssessmentStep {
	return []AssessmentStep{
		AssessmentStepFilingStatus,
		AssessmentStepFilingCompliance,
		AssessmentStepTaxDebt,
		AssessmentStepIncome,
		AssessmentStepExpenses,
		AssessmentStepAssets,
	}
}

// IsValid checks if the step is one of the fixed steps
func (s AssessmentStep) IsValid() bool {
	for _, v := range AllAssessmentSteps() {
		if v == s {
			return true
		}
	}
	return false
}

func (s AssessmentStep) String() string {
	return string(s)
}

// ParseAssessmentStep parses a string into an AssessmentStep
func ParseAssessmentStep(s string) (AssessmentStep, error) {
	step := AssessmentStep(s)
	if !step.IsValid() {
		return "", fmt.Errorf("invalid assessment step: %s", s)
	}
	return step, nil
}

// AssessmentStatus tracks questionnaire completion
type AssessmentStatus string

const (
	AssessmentStatusInProgress AssessmentStatus = "IN_PROGRESS"
	AssessmentStatusCompleted  AssessmentStatus = "COMPLETED"
)

func (s AssessmentStatus) String() string {
	return string(s)
}
