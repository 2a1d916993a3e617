package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/optimatax/reliefdesk/pkg/domain/model"
	"github.com/optimatax/reliefdesk/pkg/domain/types"
	"github.com/optimatax/reliefdesk/pkg/usecase"
	"github.com/shopspring/decimal"
)

type createCaseRequest struct {
	OwnerID      model.UserID       `json:"ownerId"`
	Program      types.ProgramType  `json:"programType"`
	TotalDebt    decimal.Decimal    `json:"totalDebt"`
	TaxYears     []int              `json:"taxYears"`
	Priority     types.CasePriority `json:"priority"`
	NextDeadline *time.Time         `json:"nextDeadline"`
}

type transitionRequest struct {
	Status types.CaseStatus `json:"status"`
	Note   string           `json:"note"`
}

type assignRequest struct {
	UserID model.UserID `json:"userId"`
}

type deadlineRequest struct {
	Deadline *time.Time `json:"deadline"` // Null clears the deadline
}

func caseIDParam(r *http.Request) model.CaseID {
	return model.CaseID(chi.URLParam(r, "caseID"))
}

func (s *Server) createCaseHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	var req createCaseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	c, err := s.uc.Case.CreateCase(r.Context(), actor, usecase.CreateCaseInput{
		OwnerID:      req.OwnerID,
		Program:      req.Program,
		TotalDebt:    req.TotalDebt,
		TaxYears:     req.TaxYears,
		Priority:     req.Priority,
		NextDeadline: req.NextDeadline,
	})
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusCreated, toCaseResponse(c, s.uc.Now()))
}

func (s *Server) listCasesHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	limit, err := queryLimit(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	var status *types.CaseStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		st := types.CaseStatus(raw)
		status = &st
	}

	cases, err := s.uc.Case.ListCases(r.Context(), actor, status, limit)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, toCaseResponses(cases, s.uc.Now()))
}

func (s *Server) getCaseHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	c, err := s.uc.Case.GetCase(r.Context(), actor, caseIDParam(r))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, toCaseResponse(c, s.uc.Now()))
}

func (s *Server) caseSummaryHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	summary, err := s.uc.Case.GetCaseSummary(r.Context(), actor, caseIDParam(r))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, toCaseSummaryResponse(summary, s.uc.Now()))
}

func (s *Server) transitionCaseHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	var req transitionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	c, err := s.uc.Case.TransitionCase(r.Context(), actor, caseIDParam(r), req.Status, req.Note)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, toCaseResponse(c, s.uc.Now()))
}

func (s *Server) assignCaseHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	var req assignRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	c, err := s.uc.Case.AssignCase(r.Context(), actor, caseIDParam(r), req.UserID)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, toCaseResponse(c, s.uc.Now()))
}

func (s *Server) setDeadlineHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	var req deadlineRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	c, err := s.uc.Case.SetDeadline(r.Context(), actor, caseIDParam(r), req.Deadline)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, toCaseResponse(c, s.uc.Now()))
}

func (s *Server) requirementsHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	check, err := s.uc.Case.CheckRequirements(r.Context(), actor, caseIDParam(r))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, toRequirementResponse(check))
}

func (s *Server) caseDocumentsHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	docs, err := s.uc.Document.ListByCase(r.Context(), actor, caseIDParam(r))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, toDocumentResponses(docs))
}

func (s *Server) caseAssessmentHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	a, err := s.uc.Assessment.GetLatestForCase(r.Context(), actor, caseIDParam(r))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, toAssessmentResponse(a))
}

func (s *Server) caseActivitiesHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	limit, err := queryLimit(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	list, err := s.uc.Activity.ListByCase(r.Context(), actor, caseIDParam(r), limit)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, toActivityResponses(list))
}
