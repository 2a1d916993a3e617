package usecase

import (
	"github.com/optimatax/reliefdesk/pkg/domain/model"
	"github.com/shopspring/decimal"
)

// EligibilityUseCase serves the anonymous pre-screen. Nothing is persisted.
type EligibilityUseCase struct{}

func NewEligibilityUseCase() *EligibilityUseCase {
	return &EligibilityUseCase{}
}

// QuickCheck screens the answers. Amounts failing model.ValidateAmount are
// rejected before any arithmetic.
func (uc *EligibilityUseCase) QuickCheck(in model.QuickCheckInput) (*model.QuickCheckResult, error) {
	amounts := []struct {
		name  string
		value decimal.Decimal
	}{
		{"total_debt", in.TotalDebt},
		{"monthly_income", in.MonthlyIncome},
		{"monthly_expenses", in.MonthlyExpenses},
	}
	for _, a := range amounts {
		if err := model.ValidateAmount(a.name, a.value); err != nil {
			return nil, err
		}
	}
	return model.QuickCheck(in), nil
}
