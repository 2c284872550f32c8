package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/middleware"
	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/model"
	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/response"
	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/service"
	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CandidateHandler handles candidate-facing exam endpoints.
type CandidateHandler struct {
	sessionService *service.ExamSessionService
	runtime        *service.ExamRuntime
}

// NewCandidateHandler creates a new CandidateHandler.
func NewCandidateHandler(sessionService *service.ExamSessionService, runtime *service.ExamRuntime) *CandidateHandler {
	return &CandidateHandler{sessionService: sessionService, runtime: runtime}
}

// candidateSession resolves the exam session bound to the candidate token.
func candidateSession(c *gin.Context) (uuid.UUID, bool) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return uuid.Nil, false
	}
	id, err := claims.ExamSessionID()
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
		return uuid.Nil, false
	}
	return id, true
}

// JoinExam godoc
// POST /api/v1/candidate/join
// Exchanges an exam link token for a candidate JWT scoped to that session.
func (h *CandidateHandler) JoinExam(c *gin.Context) {
	var req model.JoinExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	res, err := h.sessionService.Join(c.Request.Context(), req.ExamToken)
	if err != nil {
		failService(c, err)
		return
	}

	response.Success(c, http.StatusOK, res)
}

// StartExam godoc
// POST /api/v1/candidate/exam/start
// Starts the countdown, or rejoins a running exam with its remaining time and answers.
func (h *CandidateHandler) StartExam(c *gin.Context) {
	sessionID, ok := candidateSession(c)
	if !ok {
		return
	}

	state, err := h.runtime.Start(c.Request.Context(), sessionID)
	if err != nil {
		failService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"state": state})
}

// GetState godoc
// GET /api/v1/candidate/exam/state
func (h *CandidateHandler) GetState(c *gin.Context) {
	sessionID, ok := candidateSession(c)
	if !ok {
		return
	}

	state, err := h.runtime.State(c.Request.Context(), sessionID)
	if err != nil {
		failService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"state": state})
}

// SubmitAnswer godoc
// PUT /api/v1/candidate/exam/answers/:index
// An empty value clears the answer.
func (h *CandidateHandler) SubmitAnswer(c *gin.Context) {
	sessionID, ok := candidateSession(c)
	if !ok {
		return
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrQuestionIndex)
		return
	}

	var req model.SubmitAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	snap, err := h.runtime.Answer(c.Request.Context(), sessionID, index, req.Value)
	if err != nil {
		failService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"snapshot": snap})
}

// Navigate godoc
// POST /api/v1/candidate/exam/navigate
func (h *CandidateHandler) Navigate(c *gin.Context) {
	sessionID, ok := candidateSession(c)
	if !ok {
		return
	}

	var req model.NavigateRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	snap, err := h.runtime.Navigate(c.Request.Context(), sessionID, service.NavigateAction(req.Action), req.Index)
	if err != nil {
		failService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"snapshot": snap})
}

// SubmitExam godoc
// POST /api/v1/candidate/exam/submit
// Finishes the exam. Repeating the call returns the original receipt.
func (h *CandidateHandler) SubmitExam(c *gin.Context) {
	sessionID, ok := candidateSession(c)
	if !ok {
		return
	}

	sub, err := h.runtime.Submit(c.Request.Context(), sessionID)
	if err != nil && !(errors.Is(err, service.ErrSessionFinished) && sub != nil) {
		failService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"receipt":           model.NewSubmissionReceipt(*sub),
		"already_submitted": err != nil,
	})
}

// ReportViolation godoc
// POST /api/v1/candidate/exam/violations
func (h *CandidateHandler) ReportViolation(c *gin.Context) {
	sessionID, ok := candidateSession(c)
	if !ok {
		return
	}

	var req model.ReportViolationRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.runtime.ReportViolation(c.Request.Context(), sessionID, req); err != nil {
		failService(c, err)
		return
	}

	response.Success(c, http.StatusAccepted, gin.H{"status": "recorded"})
}
