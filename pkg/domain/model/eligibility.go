package model

import (
	"math"
	"slices"
	"sort"

	"github.com/optimatax/reliefdesk/pkg/domain/types"
	"github.com/shopspring/decimal"
)

var (
	oicDebtThreshold       = decimal.NewFromInt(10000)
	oicDisposableThreshold = decimal.NewFromInt(100)
	iaDebtLimit            = decimal.NewFromInt(50000)
)

// ProgramEvaluation is the outcome of one program's qualification rule
type ProgramEvaluation struct {
	Program    types.ProgramType
	Qualified  bool
	Confidence int
	Benefit    decimal.Decimal // Estimated relief amount when qualified
	Reason     string
	Scored     bool // False when the program does not contribute to the score
}

// Recommendation is an action suggested to the taxpayer
type Recommendation struct {
	Kind     types.RecommendationKind
	Priority types.RecommendationPriority
	Program  types.ProgramType // Empty for non-program recommendations
	Benefit  decimal.Decimal
	Message  string
}

// EstimatedOutcome is the estimated relief of a qualified program
type EstimatedOutcome struct {
	Program types.ProgramType
	Benefit decimal.Decimal
}

// EligibilityResult is the output of the eligibility engine
type EligibilityResult struct {
	Programs             []ProgramEvaluation
	QualifiedPrograms    []types.ProgramType
	DisqualifiedPrograms []types.ProgramType
	Recommendations      []Recommendation
	EstimatedOutcomes    []EstimatedOutcome
	OverallScore         int
	RiskRating           types.RiskRating
	SuccessProbability   int
	Flags                []types.EligibilityFlag
}

// Copy returns a deep copy of the result
func (r *EligibilityResult) Copy() *EligibilityResult {
	if r == nil {
		return nil
	}
	dup := *r
	dup.Programs = slices.Clone(r.Programs)
	dup.QualifiedPrograms = slices.Clone(r.QualifiedPrograms)
	dup.DisqualifiedPrograms = slices.Clone(r.DisqualifiedPrograms)
	dup.Recommendations = slices.Clone(r.Recommendations)
	dup.EstimatedOutcomes = slices.Clone(r.EstimatedOutcomes)
	dup.Flags = slices.Clone(r.Flags)
	return &dup
}

// HasFlag reports whether the result carries the flag
func (r *EligibilityResult) HasFlag(flag types.EligibilityFlag) bool {
	return slices.Contains(r.Flags, flag)
}

func percentOf(v decimal.Decimal, pct int64) decimal.Decimal {
	return v.Mul(decimal.New(pct, -2)).Round(2)
}

func evaluateProgram(program types.ProgramType, a *Assessment) ProgramEvaluation {
	debt := a.TotalTaxDebt
	disposable := a.MonthlyIncome.Sub(a.MonthlyExpenses)

	ev := ProgramEvaluation{Program: program, Scored: true, Benefit: decimal.Zero}
	switch program {
	case types.ProgramOIC:
		ev.Qualified = debt.GreaterThan(oicDebtThreshold) && disposable.LessThan(oicDisposableThreshold)
		ev.Confidence = pick(ev.Qualified, 75, 25)
		ev.Benefit = percentOf(debt, 60)
		ev.Reason = pickStr(ev.Qualified,
			"debt above 10,000 with disposable income below 100",
			"requires debt above 10,000 and disposable income below 100")
	case types.ProgramIA:
		ev.Qualified = debt.LessThanOrEqual(iaDebtLimit) && disposable.IsPositive()
		ev.Confidence = pick(ev.Qualified, 90, 10)
		ev.Benefit = percentOf(debt, 20)
		ev.Reason = pickStr(ev.Qualified,
			"debt within 50,000 with positive disposable income",
			"requires debt within 50,000 and positive disposable income")
	case types.ProgramCNC:
		ev.Qualified = !disposable.IsPositive()
		ev.Confidence = pick(ev.Qualified, 80, 20)
		ev.Benefit = debt.Round(2)
		ev.Reason = pickStr(ev.Qualified,
			"no disposable income",
			"requires no disposable income")
	case types.ProgramPA:
		ev.Qualified = true
		ev.Confidence = 50
		ev.Benefit = percentOf(debt, 25)
		ev.Reason = "penalty abatement is always offered"
		ev.Scored = false
	case types.ProgramISR:
		ev.Qualified = a.FilingStatus == types.FilingStatusMarriedJoint
		ev.Confidence = pick(ev.Qualified, 60, 0)
		ev.Benefit = percentOf(debt, 50)
		ev.Reason = pickStr(ev.Qualified,
			"filed jointly",
			"requires a joint filing status")
	}
	if !ev.Qualified {
		ev.Benefit = decimal.Zero
	}
	return ev
}

func pick(cond bool, a, b int) int {
	if cond {
		return a
	}
	return b
}

func pickStr(cond bool, a, b string) string {
	if cond {
		return a
	}
	return b
}

// Evaluate scores the taxpayer's qualification across the relief programs.
// It is pure and deterministic.
func Evaluate(a *Assessment) *EligibilityResult {
	result := &EligibilityResult{
		Programs:             []ProgramEvaluation{},
		QualifiedPrograms:    []types.ProgramType{},
		DisqualifiedPrograms: []types.ProgramType{},
		Recommendations:      []Recommendation{},
		EstimatedOutcomes:    []EstimatedOutcome{},
		Flags:                []types.EligibilityFlag{},
	}

	if !a.AllReturnsFiled {
		for _, p := range types.ReliefPrograms() {
			result.Programs = append(result.Programs, ProgramEvaluation{
				Program: p,
				Benefit: decimal.Zero,
				Reason:  "all required returns must be filed first",
				Scored:  true,
			})
			result.DisqualifiedPrograms = append(result.DisqualifiedPrograms, p)
		}
		result.Recommendations = append(result.Recommendations, Recommendation{
			Kind:     types.RecommendationFileMissingReturns,
			Priority: types.RecommendationCritical,
			Benefit:  decimal.Zero,
			Message:  "File all missing tax returns before applying for relief",
		})
		result.OverallScore = 10
		result.RiskRating = riskRating(result.OverallScore)
		result.SuccessProbability = successProbability(result.OverallScore)
		return result
	}

	var qualified []ProgramEvaluation
	for _, p := range types.ReliefPrograms() {
		ev := evaluateProgram(p, a)
		result.Programs = append(result.Programs, ev)
		if ev.Qualified {
			qualified = append(qualified, ev)
			result.QualifiedPrograms = append(result.QualifiedPrograms, p)
			result.EstimatedOutcomes = append(result.EstimatedOutcomes, EstimatedOutcome{Program: p, Benefit: ev.Benefit})
			if p == types.ProgramPA {
				result.Flags = append(result.Flags, types.FlagPenaltyAbatementHeuristic)
			}
		} else {
			result.DisqualifiedPrograms = append(result.DisqualifiedPrograms, p)
		}
	}

	if len(qualified) == 0 {
		result.Recommendations = append(result.Recommendations, Recommendation{
			Kind:     types.RecommendationFileMissingReturns,
			Priority: types.RecommendationHigh,
			Benefit:  decimal.Zero,
			Message:  "File any missing tax returns and reassess",
		})
		result.Flags = append(result.Flags, types.FlagFilingRecommendedDespiteCompliance)
	} else {
		ranked := slices.Clone(qualified)
		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].Benefit.GreaterThan(ranked[j].Benefit)
		})
		for i, ev := range ranked {
			if i == 3 {
				break
			}
			priority := types.RecommendationMedium
			if i == 0 {
				priority = types.RecommendationHigh
			}
			result.Recommendations = append(result.Recommendations, Recommendation{
				Kind:     types.RecommendationApplyProgram,
				Priority: priority,
				Program:  ev.Program,
				Benefit:  ev.Benefit,
				Message:  "Apply for " + ev.Program.DisplayName(),
			})
		}
	}

	if len(qualified) > 0 && !slices.ContainsFunc(qualified, func(ev ProgramEvaluation) bool { return ev.Scored }) {
		result.Flags = append(result.Flags, types.FlagNoScoredProgram)
	}

	result.OverallScore = overallScore(qualified)
	result.RiskRating = riskRating(result.OverallScore)
	result.SuccessProbability = successProbability(result.OverallScore)
	return result
}

func overallScore(qualified []ProgramEvaluation) int {
	var sum, count int
	for _, ev := range qualified {
		if !ev.Scored {
			continue
		}
		sum += ev.Confidence
		count++
	}
	if count == 0 {
		return 10
	}
	avg := float64(sum) / float64(count)
	return int(math.Round(0.7*avg + 10*float64(min(count, 5))))
}

func riskRating(score int) types.RiskRating {
	switch {
	case score >= 70:
		return types.RiskLow
	case score >= 40:
		return types.RiskMedium
	default:
		return types.RiskHigh
	}
}

func successProbability(score int) int {
	return max(10, min(95, score+10))
}
