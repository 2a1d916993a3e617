package usecase_test

import (
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/optimatax/reliefdesk/pkg/usecase"
)

func TestErrors_ErrorsAreDistinct(t *testing.T) {
	sentinels := []error{
		usecase.ErrCaseNotFound,
		usecase.ErrDocumentNotFound,
		usecase.ErrAssessmentNotFound,
		usecase.ErrNotificationNotFound,
		usecase.ErrUserNotFound,
		usecase.ErrUnauthenticated,
		usecase.ErrInvalidCredentials,
		usecase.ErrInvalidToken,
		usecase.ErrEmailTaken,
	}

	for i, a := range sentinels {
		for j, b := range sentinels {
			gt.Value(t, errors.Is(a, b)).Equal(i == j)
		}
	}
}
