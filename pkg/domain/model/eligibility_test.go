package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/optimatax/reliefdesk/pkg/domain/model"
	"github.com/optimatax/reliefdesk/pkg/domain/types"
	"github.com/shopspring/decimal"
)

func newAssessment(filed bool, debt, income, expenses int64) *model.Assessment {
	a := model.NewAssessment("client-1", "", testNow)
	a.AllReturnsFiled = filed
	a.TotalTaxDebt = decimal.NewFromInt(debt)
	a.MonthlyIncome = decimal.NewFromInt(income)
	a.MonthlyExpenses = decimal.NewFromInt(expenses)
	a.Derive()
	return a
}

func programEval(t *testing.T, r *model.EligibilityResult, p types.ProgramType) model.ProgramEvaluation {
	t.Helper()
	for _, ev := range r.Programs {
		if ev.Program == p {
			return ev
		}
	}
	t.Fatalf("program %s not evaluated", p)
	return model.ProgramEvaluation{}
}

func TestEvaluateScenario(t *testing.T) {
	a := newAssessment(true, 15000, 2000, 1950)
	gt.Value(t, a.DisposableIncome.String()).Equal("50")

	r := model.Evaluate(a)

	gt.Bool(t, programEval(t, r, types.ProgramOIC).Qualified).True()
	gt.Bool(t, programEval(t, r, types.ProgramIA).Qualified).True()
	gt.Bool(t, programEval(t, r, types.ProgramCNC).Qualified).False()
	gt.Bool(t, programEval(t, r, types.ProgramISR).Qualified).False()
	gt.Number(t, r.OverallScore).Equal(78)
	gt.Value(t, r.RiskRating).Equal(types.RiskLow)
	gt.Number(t, r.SuccessProbability).Equal(88)

	// Penalty abatement is reported but not scored.
	pa := programEval(t, r, types.ProgramPA)
	gt.Bool(t, pa.Qualified).True()
	gt.Bool(t, pa.Scored).False()
	gt.Bool(t, r.HasFlag(types.FlagPenaltyAbatementHeuristic)).True()

	gt.Array(t, r.Recommendations).Length(3)
	gt.Value(t, r.Recommendations[0].Program).Equal(types.ProgramOIC)
	gt.Value(t, r.Recommendations[0].Priority).Equal(types.RecommendationHigh)
	gt.Value(t, r.Recommendations[0].Benefit.String()).Equal("9000")
	gt.Value(t, r.Recommendations[1].Program).Equal(types.ProgramPA)
	gt.Value(t, r.Recommendations[1].Priority).Equal(types.RecommendationMedium)
	gt.Value(t, r.Recommendations[2].Program).Equal(types.ProgramIA)
	gt.Value(t, r.Recommendations[2].Benefit.String()).Equal("3000")
}

func TestEvaluateFilingGate(t *testing.T) {
	inputs := []*model.Assessment{
		newAssessment(false, 15000, 2000, 1950),
		newAssessment(false, 0, 0, 0),
		newAssessment(false, 100000, 100, 5000),
	}
	inputs[1].FilingStatus = types.FilingStatusMarriedJoint

	for _, a := range inputs {
		r := model.Evaluate(a)
		gt.Number(t, r.OverallScore).Equal(10)
		gt.Value(t, r.RiskRating).Equal(types.RiskHigh)
		gt.Number(t, r.SuccessProbability).Equal(20)
		gt.Array(t, r.QualifiedPrograms).Length(0)
		gt.Value(t, r.DisqualifiedPrograms).Equal(types.ReliefPrograms())
		gt.Array(t, r.Recommendations).Length(1)
		gt.Value(t, r.Recommendations[0].Kind).Equal(types.RecommendationFileMissingReturns)
		gt.Value(t, r.Recommendations[0].Priority).Equal(types.RecommendationCritical)
	}
}

func TestEvaluateOICRule(t *testing.T) {
	debts := []int64{0, 9999, 10000, 10001, 25000, 1000000}
	incomes := []int64{0, 50, 99, 100, 101, 3000}
	for _, debt := range debts {
		for _, income := range incomes {
			a := newAssessment(true, debt, income, 0)
			want := debt > 10000 && income < 100
			gt.Value(t, programEval(t, model.Evaluate(a), types.ProgramOIC).Qualified).Equal(want)
		}
	}
}

func TestEvaluateRules(t *testing.T) {
	tests := []struct {
		name      string
		assess    *model.Assessment
		qualified []types.ProgramType
		score     int
		risk      types.RiskRating
	}{
		{
			name:      "no disposable income",
			assess:    newAssessment(true, 60000, 1000, 1500),
			qualified: []types.ProgramType{types.ProgramOIC, types.ProgramCNC, types.ProgramPA},
			score:     74,
			risk:      types.RiskLow,
		},
		{
			name:      "only the heuristic qualifies",
			assess:    newAssessment(true, 60000, 5000, 1000),
			qualified: []types.ProgramType{types.ProgramPA},
			score:     10,
			risk:      types.RiskHigh,
		},
		{
			name:      "payment plan only",
			assess:    newAssessment(true, 8000, 4000, 3000),
			qualified: []types.ProgramType{types.ProgramIA, types.ProgramPA},
			score:     73,
			risk:      types.RiskLow,
		},
		{
			name: "joint filer without disposable income",
			assess: func() *model.Assessment {
				a := newAssessment(true, 60000, 1000, 1500)
				a.FilingStatus = types.FilingStatusMarriedJoint
				return a
			}(),
			qualified: []types.ProgramType{types.ProgramOIC, types.ProgramCNC, types.ProgramPA, types.ProgramISR},
			score:     80,
			risk:      types.RiskLow,
		},
		{
			name:      "single low confidence program",
			assess:    newAssessment(true, 5000, 0, 0),
			qualified: []types.ProgramType{types.ProgramCNC, types.ProgramPA},
			score:     66,
			risk:      types.RiskMedium,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := model.Evaluate(tt.assess)
			gt.Value(t, r.QualifiedPrograms).Equal(tt.qualified)
			gt.Number(t, r.OverallScore).Equal(tt.score)
			gt.Value(t, r.RiskRating).Equal(tt.risk)
			gt.Array(t, r.EstimatedOutcomes).Length(len(tt.qualified))
		})
	}
}

func TestEvaluateIsDeterministic(t *testing.T) {
	a := newAssessment(true, 42000, 3100, 2900)
	gt.Value(t, model.Evaluate(a)).Equal(model.Evaluate(a))
}

func TestEvaluateOnlyUnscoredProgram(t *testing.T) {
	r := model.Evaluate(newAssessment(true, 60000, 5000, 1000))
	gt.Value(t, r.QualifiedPrograms).Equal([]types.ProgramType{types.ProgramPA})
	gt.Number(t, r.OverallScore).Equal(10)
	gt.Value(t, r.RiskRating).Equal(types.RiskHigh)
	gt.Value(t, r.Flags).Equal([]types.EligibilityFlag{
		types.FlagPenaltyAbatementHeuristic,
		types.FlagNoScoredProgram,
	})
	gt.Array(t, r.Recommendations).Length(1).Required()
	gt.Value(t, r.Recommendations[0].Program).Equal(types.ProgramPA)

	scored := model.Evaluate(newAssessment(true, 15000, 2000, 1950))
	gt.Bool(t, scored.HasFlag(types.FlagNoScoredProgram)).False()
}
