package handler

import (
	"errors"
	"net/http"

	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/response"
	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/service"
	"github.com/gin-gonic/gin"
)

// serviceErrors maps domain errors onto HTTP status and error code.
var serviceErrors = []struct {
	err    error
	status int
	code   response.ErrCode
}{
	{service.ErrInvalidCredentials, http.StatusUnauthorized, response.ErrInvalidCredentials},
	{service.ErrInvalidExamToken, http.StatusNotFound, response.ErrInvalidExamToken},
	{service.ErrExamLinkExpired, http.StatusGone, response.ErrExamTokenExpired},
	{service.ErrSessionNotFound, http.StatusNotFound, response.ErrNotFound},
	{service.ErrSessionNotActive, http.StatusConflict, response.ErrExamNotStarted},
	{service.ErrSessionFinished, http.StatusConflict, response.ErrExamFinished},
	{service.ErrSessionInvalidated, http.StatusUnauthorized, response.ErrSessionInvalidated},
	{service.ErrNoQuestions, http.StatusUnprocessableEntity, response.ErrNoQuestions},
	{service.ErrNotEnoughQuestions, http.StatusUnprocessableEntity, response.ErrNotEnoughQuestions},
	{service.ErrQuestionNotFound, http.StatusNotFound, response.ErrNotFound},
	{service.ErrQuestionOutOfRange, http.StatusBadRequest, response.ErrQuestionIndex},
	{service.ErrResultPending, http.StatusAccepted, response.ErrResultPending},
	{service.ErrActionNotAllowed, http.StatusConflict, response.ErrActionRejected},
}

// errorStatus resolves err to a status and code. Unknown errors are internal.
func errorStatus(err error) (int, response.ErrCode) {
	for _, m := range serviceErrors {
		if errors.Is(err, m.err) {
			return m.status, m.code
		}
	}
	return http.StatusInternalServerError, response.ErrInternal
}

// failService writes the error envelope for a service error.
func failService(c *gin.Context, err error) {
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, ve.Fields)
		return
	}

	status, code := errorStatus(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
	}
	response.Fail(c, status, code)
}
