package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/response"
	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   response.ErrCode
	}{
		{service.ErrInvalidExamToken, http.StatusNotFound, response.ErrInvalidExamToken},
		{service.ErrExamLinkExpired, http.StatusGone, response.ErrExamTokenExpired},
		{fmt.Errorf("submit: %w", service.ErrSessionFinished), http.StatusConflict, response.ErrExamFinished},
		{service.ErrSessionInvalidated, http.StatusUnauthorized, response.ErrSessionInvalidated},
		{service.ErrResultPending, http.StatusAccepted, response.ErrResultPending},
		{errors.New("connection reset"), http.StatusInternalServerError, response.ErrInternal},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			status, code := errorStatus(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
		})
	}
}

func failWith(err error) (*httptest.ResponseRecorder, *gin.Context) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	failService(c, err)
	return w, c
}

func TestFailServiceValidation(t *testing.T) {
	w, c := failWith(&service.ValidationError{Fields: map[string]string{"duration_minutes": "must be positive"}})

	require.Equal(t, http.StatusBadRequest, w.Code)
	var body response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	assert.Equal(t, response.ErrValidation, body.Error.Code)
	assert.Equal(t, "must be positive", body.Error.Fields["duration_minutes"])
	assert.Empty(t, c.Errors)
}

func TestFailServiceInternalRecordsError(t *testing.T) {
	w, c := failWith(errors.New("db down"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	require.Len(t, c.Errors, 1)
	assert.EqualError(t, c.Errors[0].Err, "db down")
}
