package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/optimatax/reliefdesk/pkg/domain/model"
	"github.com/optimatax/reliefdesk/pkg/domain/types"
	"github.com/shopspring/decimal"
)

type createAssessmentRequest struct {
	CaseID model.CaseID `json:"caseId"`
}

// stepRequest carries the answers of one step. Fields of other steps are ignored.
type stepRequest struct {
	FilingStatus    types.FilingStatus `json:"filingStatus"`
	AllReturnsFiled *bool              `json:"allReturnsFiled"`
	UnfiledYears    []int              `json:"unfiledYears"`
	TotalTaxDebt    *decimal.Decimal   `json:"totalTaxDebt"`
	MonthlyIncome   *decimal.Decimal   `json:"monthlyIncome"`
	MonthlyExpenses *decimal.Decimal   `json:"monthlyExpenses"`
	TotalAssets     *decimal.Decimal   `json:"totalAssets"`
}

func assessmentIDParam(r *http.Request) model.AssessmentID {
	return model.AssessmentID(chi.URLParam(r, "assessmentID"))
}

func (s *Server) createAssessmentHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	var req createAssessmentRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(r.Context(), w, err)
			return
		}
	}

	a, err := s.uc.Assessment.CreateAssessment(r.Context(), actor, req.CaseID)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusCreated, toAssessmentResponse(a))
}

func (s *Server) listAssessmentsHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	list, err := s.uc.Assessment.ListMine(r.Context(), actor)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, toAssessmentResponses(list))
}

func (s *Server) getAssessmentHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	a, err := s.uc.Assessment.GetAssessment(r.Context(), actor, assessmentIDParam(r))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, toAssessmentResponse(a))
}

func (s *Server) submitStepHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	var req stepRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	step := types.AssessmentStep(chi.URLParam(r, "step"))
	a, err := s.uc.Assessment.SubmitStep(r.Context(), actor, assessmentIDParam(r), step, model.StepInput{
		FilingStatus:    req.FilingStatus,
		AllReturnsFiled: req.AllReturnsFiled,
		UnfiledYears:    req.UnfiledYears,
		TotalTaxDebt:    req.TotalTaxDebt,
		MonthlyIncome:   req.MonthlyIncome,
		MonthlyExpenses: req.MonthlyExpenses,
		TotalAssets:     req.TotalAssets,
	})
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, toAssessmentResponse(a))
}

func (s *Server) evaluateHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	a, err := s.uc.Assessment.Evaluate(r.Context(), actor, assessmentIDParam(r))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, toAssessmentResponse(a))
}
