package usecase

import (
	"time"

	"github.com/optimatax/reliefdesk/pkg/domain/model"
)

// SetCaseIDGenerator replaces the case ID generator for testing
func (uc *CaseUseCase) SetCaseIDGenerator(fn func(time.Time) model.CaseID) {
	uc.generateID = fn
}
