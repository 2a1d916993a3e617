package http

import (
	"net/http"

	"github.com/optimatax/reliefdesk/pkg/domain/model"
	"github.com/shopspring/decimal"
)

type quickCheckRequest struct {
	TotalDebt       decimal.Decimal `json:"totalDebt"`
	MonthlyIncome   decimal.Decimal `json:"monthlyIncome"`
	MonthlyExpenses decimal.Decimal `json:"monthlyExpenses"`
	AllReturnsFiled *bool           `json:"allReturnsFiled"` // Defaults to true
}

// quickCheckHandler serves the anonymous pre-screen
func (s *Server) quickCheckHandler(w http.ResponseWriter, r *http.Request) {
	var req quickCheckRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	filed := true
	if req.AllReturnsFiled != nil {
		filed = *req.AllReturnsFiled
	}
	result, err := s.uc.Eligibility.QuickCheck(model.QuickCheckInput{
		TotalDebt:       req.TotalDebt,
		MonthlyIncome:   req.MonthlyIncome,
		MonthlyExpenses: req.MonthlyExpenses,
		AllReturnsFiled: filed,
	})
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, toQuickCheckResponse(result))
}
