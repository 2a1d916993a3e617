package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/optimatax/reliefdesk/pkg/domain/model"
	"github.com/optimatax/reliefdesk/pkg/domain/types"
	"github.com/shopspring/decimal"
)

func TestQuickCheck(t *testing.T) {
	tests := []struct {
		name     string
		in       model.QuickCheckInput
		programs []model.ProgramLikelihood
		filing   bool
	}{
		{
			name: "high debt with little disposable income",
			in: model.QuickCheckInput{
				TotalDebt:       decimal.NewFromInt(20000),
				MonthlyIncome:   decimal.NewFromInt(3000),
				MonthlyExpenses: decimal.NewFromInt(2800),
				AllReturnsFiled: true,
			},
			programs: []model.ProgramLikelihood{
				{Program: types.ProgramOIC, Likelihood: types.LikelihoodLikely},
				{Program: types.ProgramIA, Likelihood: types.LikelihoodLikely},
			},
		},
		{
			name: "expenses exceed income",
			in: model.QuickCheckInput{
				TotalDebt:       decimal.NewFromInt(80000),
				MonthlyIncome:   decimal.NewFromInt(2000),
				MonthlyExpenses: decimal.NewFromInt(2500),
				AllReturnsFiled: true,
			},
			programs: []model.ProgramLikelihood{
				{Program: types.ProgramOIC, Likelihood: types.LikelihoodLikely},
				{Program: types.ProgramCNC, Likelihood: types.LikelihoodPossible},
			},
		},
		{
			name: "comfortable budget and small debt",
			in: model.QuickCheckInput{
				TotalDebt:       decimal.NewFromInt(1000),
				MonthlyIncome:   decimal.NewFromInt(5000),
				MonthlyExpenses: decimal.NewFromInt(1000),
				AllReturnsFiled: true,
			},
			programs: []model.ProgramLikelihood{
				{Program: types.ProgramIA, Likelihood: types.LikelihoodLikely},
			},
		},
		{
			name: "zero income",
			in: model.QuickCheckInput{
				TotalDebt:       decimal.NewFromInt(60000),
				AllReturnsFiled: true,
			},
			programs: []model.ProgramLikelihood{
				{Program: types.ProgramOIC, Likelihood: types.LikelihoodLikely},
				{Program: types.ProgramCNC, Likelihood: types.LikelihoodPossible},
			},
		},
		{
			name: "returns not filed",
			in: model.QuickCheckInput{
				TotalDebt:       decimal.NewFromInt(20000),
				MonthlyIncome:   decimal.NewFromInt(3000),
				MonthlyExpenses: decimal.NewFromInt(2800),
			},
			programs: []model.ProgramLikelihood{},
			filing:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := model.QuickCheck(tt.in)
			gt.Value(t, result.Programs).Equal(tt.programs)
			gt.Value(t, result.NeedsFiling).Equal(tt.filing)
			gt.String(t, result.Message).NotEqual("")
		})
	}
}

func TestQuickCheckRatios(t *testing.T) {
	result := model.QuickCheck(model.QuickCheckInput{
		TotalDebt:       decimal.NewFromInt(6000),
		MonthlyIncome:   decimal.NewFromInt(2000),
		MonthlyExpenses: decimal.NewFromInt(1500),
		AllReturnsFiled: true,
	})
	gt.Value(t, result.DebtToIncomeRatio).NotNil()
	gt.Value(t, *result.DebtToIncomeRatio).Equal(3.0)
	gt.Value(t, *result.DisposableIncomeRatio).Equal(0.25)

	zero := model.QuickCheck(model.QuickCheckInput{AllReturnsFiled: true})
	gt.Value(t, zero.DebtToIncomeRatio).Nil()
	gt.Value(t, zero.DisposableIncomeRatio).Nil()
}
