package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/optimatax/reliefdesk/pkg/domain/interfaces"
	"github.com/optimatax/reliefdesk/pkg/domain/model"
	"github.com/optimatax/reliefdesk/pkg/usecase"
	"github.com/optimatax/reliefdesk/pkg/utils/errutil"
)

// Error codes of the JSON error envelope
const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeForbidden         = "FORBIDDEN"
	CodeNotFound          = "NOT_FOUND"
	CodeConflict          = "CONFLICT"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeInternal          = "INTERNAL"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

var errorClasses = []struct {
	targets []error
	status  int
	code    string
}{
	{
		targets: []error{model.ErrInvalidInput},
		status:  http.StatusBadRequest,
		code:    CodeValidation,
	},
	{
		targets: []error{usecase.ErrUnauthenticated, usecase.ErrInvalidToken, usecase.ErrInvalidCredentials},
		status:  http.StatusUnauthorized,
		code:    CodeUnauthorized,
	},
	{
		targets: []error{model.ErrPermissionDenied, usecase.ErrNoAuthnMode},
		status:  http.StatusForbidden,
		code:    CodeForbidden,
	},
	{
		targets: []error{
			usecase.ErrCaseNotFound,
			usecase.ErrDocumentNotFound,
			usecase.ErrAssessmentNotFound,
			usecase.ErrNotificationNotFound,
			usecase.ErrUserNotFound,
			interfaces.ErrNotFound,
		},
		status: http.StatusNotFound,
		code:   CodeNotFound,
	},
	{
		targets: []error{usecase.ErrEmailTaken, interfaces.ErrConflict, interfaces.ErrAlreadyExists},
		status:  http.StatusConflict,
		code:    CodeConflict,
	},
	{
		targets: []error{model.ErrInvalidTransition, model.ErrInvalidDocument},
		status:  http.StatusUnprocessableEntity,
		code:    CodeInvalidTransition,
	},
}

// classifyError maps an error to its HTTP status and error code
func classifyError(err error) (int, string) {
	for _, class := range errorClasses {
		for _, target := range class.targets {
			if errors.Is(err, target) {
				return class.status, class.code
			}
		}
	}
	return http.StatusInternalServerError, CodeInternal
}

// writeError writes the JSON error envelope. Internal errors are logged and
// reported, and their details are not returned to the client.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status, code := classifyError(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		errutil.Handle(ctx, err, "request failed")
		msg = "internal server error"
	}
	writeJSON(ctx, w, status, errorResponse{Error: errorBody{Code: code, Message: msg}})
}

func invalidInput(err error, msg string) error {
	return goerr.Wrap(model.ErrInvalidInput, msg, goerr.V("reason", err.Error()))
}
