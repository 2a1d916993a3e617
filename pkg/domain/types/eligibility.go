package types

// RiskRating summarizes the overall eligibility score
type RiskRating string

const (
	RiskLow    RiskRating = "LOW"
	RiskMedium RiskRating = "MEDIUM"
	RiskHigh   RiskRating = "HIGH"
)

func (r RiskRating) String() string {
	return string(r)
}

// RecommendationPriority orders recommendations for the taxpayer
type RecommendationPriority string

const (
	RecommendationCritical RecommendationPriority = "CRITICAL"
	RecommendationHigh     RecommendationPriority = "HIGH"
	RecommendationMedium   RecommendationPriority = "MEDIUM"
)

func (p RecommendationPriority) String() string {
	return string(p)
}

// RecommendationKind distinguishes what the taxpayer is asked to do
type RecommendationKind string

const (
	RecommendationFileMissingReturns RecommendationKind = "FILE_MISSING_RETURNS"
	RecommendationApplyProgram       RecommendationKind = "APPLY_PROGRAM"
)

// EligibilityFlag marks rule behavior that is preserved but pending product
// clarification, so callers can surface it instead of trusting it blindly.
type EligibilityFlag string

const (
	// FlagPenaltyAbatementHeuristic is set whenever PA is reported as
	// qualified: PA qualifies unconditionally with a fixed confidence.
	FlagPenaltyAbatementHeuristic EligibilityFlag = "PENALTY_ABATEMENT_HEURISTIC"
	// FlagFilingRecommendedDespiteCompliance is set when the taxpayer
	// confirmed all returns are filed but nothing qualified, and the
	// fallback recommendation still asks to file missing returns.
	FlagFilingRecommendedDespiteCompliance EligibilityFlag = "FILING_RECOMMENDED_DESPITE_COMPLIANCE"
	// FlagNoScoredProgram is set when only unscored programs qualified, so
	// the score matches the nothing-qualified floor.
	FlagNoScoredProgram EligibilityFlag = "NO_SCORED_PROGRAM"
	// FlagIncompleteAssessment is set when the result was computed before
	// every step was answered. Unanswered steps keep their defaults.
	FlagIncompleteAssessment EligibilityFlag = "INCOMPLETE_ASSESSMENT"
)

// Likelihood is the advisory strength of a quick pre-screen match
type Likelihood string

const (
	LikelihoodLikely   Likelihood = "LIKELY"
	LikelihoodPossible Likelihood = "POSSIBLE"
)
