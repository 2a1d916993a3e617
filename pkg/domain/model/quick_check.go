package model

import (
	"github.com/optimatax/reliefdesk/pkg/domain/types"
	"github.com/shopspring/decimal"
)

// QuickCheckInput is the anonymous pre-screen questionnaire
type QuickCheckInput struct {
	TotalDebt       decimal.Decimal
	MonthlyIncome   decimal.Decimal
	MonthlyExpenses decimal.Decimal
	AllReturnsFiled bool
}

// ProgramLikelihood is a program suggested by the pre-screen
type ProgramLikelihood struct {
	Program    types.ProgramType
	Likelihood types.Likelihood
}

// QuickCheckResult is the stateless pre-screen outcome. Ratios are nil when
// monthly income is zero.
type QuickCheckResult struct {
	DisposableIncome      decimal.Decimal
	DebtToIncomeRatio     *float64
	DisposableIncomeRatio *float64
	NeedsFiling           bool
	Programs              []ProgramLikelihood
	Message               string
}

var (
	quickCheckDebtRatio       = decimal.NewFromInt(1)
	quickCheckDisposableRatio = decimal.New(2, -1)
)

// QuickCheck screens a taxpayer without persisting anything
func QuickCheck(in QuickCheckInput) *QuickCheckResult {
	disposable := in.MonthlyIncome.Sub(in.MonthlyExpenses)
	result := &QuickCheckResult{
		DisposableIncome: disposable,
		Programs:         []ProgramLikelihood{},
	}

	// With no income every positive debt exceeds it and no share is disposable.
	debtHigh := in.TotalDebt.IsPositive()
	disposableLow := true
	if in.MonthlyIncome.IsPositive() {
		debtRatio := in.TotalDebt.Div(in.MonthlyIncome)
		dispRatio := disposable.Div(in.MonthlyIncome)
		f1, _ := debtRatio.Float64()
		f2, _ := dispRatio.Float64()
		result.DebtToIncomeRatio = &f1
		result.DisposableIncomeRatio = &f2
		debtHigh = debtRatio.GreaterThan(quickCheckDebtRatio)
		disposableLow = dispRatio.LessThan(quickCheckDisposableRatio)
	}

	if !in.AllReturnsFiled {
		result.NeedsFiling = true
		result.Message = "File all missing tax returns before applying for relief"
		return result
	}

	if debtHigh && disposableLow {
		result.Programs = append(result.Programs, ProgramLikelihood{Program: types.ProgramOIC, Likelihood: types.LikelihoodLikely})
	}
	if in.TotalDebt.LessThanOrEqual(iaDebtLimit) && disposable.IsPositive() {
		result.Programs = append(result.Programs, ProgramLikelihood{Program: types.ProgramIA, Likelihood: types.LikelihoodLikely})
	}
	if !disposable.IsPositive() {
		result.Programs = append(result.Programs, ProgramLikelihood{Program: types.ProgramCNC, Likelihood: types.LikelihoodPossible})
	}

	if len(result.Programs) == 0 {
		result.Message = "No relief program matched; a full assessment may still find options"
	} else {
		result.Message = "You may qualify for tax relief; complete a full assessment to confirm"
	}
	return result
}
