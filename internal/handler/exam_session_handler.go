package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/model"
	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/response"
	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/service"
	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ExamSessionHandler handles admin exam session endpoints.
type ExamSessionHandler struct {
	sessionService *service.ExamSessionService
	runtime        *service.ExamRuntime
}

// NewExamSessionHandler creates a new ExamSessionHandler.
func NewExamSessionHandler(sessionService *service.ExamSessionService, runtime *service.ExamRuntime) *ExamSessionHandler {
	return &ExamSessionHandler{sessionService: sessionService, runtime: runtime}
}

func sessionParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

// CreateSession godoc
// POST /api/v1/admin/exam-sessions
// Issues an exam to a candidate and returns the session with its exam link token.
func (h *ExamSessionHandler) CreateSession(c *gin.Context) {
	var req model.CreateExamSessionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	session, err := h.sessionService.Create(c.Request.Context(), &req)
	if err != nil {
		failService(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"session": session})
}

// ListSessions godoc
// GET /api/v1/admin/exam-sessions?status=&page=&per_page=
func (h *ExamSessionHandler) ListSessions(c *gin.Context) {
	status := c.Query("status")
	switch model.SessionStatus(status) {
	case "", model.SessionStatusPending, model.SessionStatusInProgress,
		model.SessionStatusCompleted, model.SessionStatusExpired:
	default:
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
			map[string]string{"status": "status must be one of [pending in_progress completed expired]"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if perPage > 100 {
		perPage = 100
	}

	sessions, pagination, err := h.sessionService.List(c.Request.Context(), status, page, perPage)
	if err != nil {
		failService(c, err)
		return
	}

	if sessions == nil {
		sessions = []model.ExamSession{}
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"sessions": sessions}, pagination)
}

// GetSession godoc
// GET /api/v1/admin/exam-sessions/:id
// Includes the live engine snapshot while the exam is being taken.
func (h *ExamSessionHandler) GetSession(c *gin.Context) {
	id, ok := sessionParam(c)
	if !ok {
		return
	}

	session, err := h.sessionService.Get(c.Request.Context(), id)
	if err != nil {
		failService(c, err)
		return
	}

	data := gin.H{"session": session}
	if state, err := h.runtime.State(c.Request.Context(), id); err == nil {
		data["live"] = state.Snapshot
	}

	response.Success(c, http.StatusOK, data)
}

// GetResult godoc
// GET /api/v1/admin/exam-sessions/:id/result
func (h *ExamSessionHandler) GetResult(c *gin.Context) {
	id, ok := sessionParam(c)
	if !ok {
		return
	}

	result, err := h.sessionService.GetResult(c.Request.Context(), id)
	if err != nil {
		failService(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// ExportResults godoc
// GET /api/v1/admin/results/export?since=2026-01-02
// Responds with an XLSX workbook of results submitted since the given date
// (default: the last 30 days).
func (h *ExamSessionHandler) ExportResults(c *gin.Context) {
	since := time.Now().UTC().AddDate(0, 0, -30)
	if raw := c.Query("since"); raw != "" {
		t, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
				map[string]string{"since": "must be a date in YYYY-MM-DD format"})
			return
		}
		since = t
	}

	var buf bytes.Buffer
	n, err := h.sessionService.ExportResults(c.Request.Context(), since, &buf)
	if err != nil {
		failService(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="exam-results-%s.xlsx"`, since.Format("20060102")))
	c.Header("X-Result-Count", strconv.Itoa(n))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// PauseSession godoc
// POST /api/v1/admin/exam-sessions/:id/pause
func (h *ExamSessionHandler) PauseSession(c *gin.Context) {
	id, ok := sessionParam(c)
	if !ok {
		return
	}

	snap, err := h.runtime.Pause(c.Request.Context(), id)
	if err != nil {
		failService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"snapshot": snap})
}

// ResumeSession godoc
// POST /api/v1/admin/exam-sessions/:id/resume
func (h *ExamSessionHandler) ResumeSession(c *gin.Context) {
	id, ok := sessionParam(c)
	if !ok {
		return
	}

	snap, err := h.runtime.Resume(c.Request.Context(), id)
	if err != nil {
		failService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"snapshot": snap})
}

// ForceSubmit godoc
// POST /api/v1/admin/exam-sessions/:id/submit
// Ends a running exam on the candidate's behalf.
func (h *ExamSessionHandler) ForceSubmit(c *gin.Context) {
	id, ok := sessionParam(c)
	if !ok {
		return
	}

	sub, err := h.runtime.Submit(c.Request.Context(), id)
	if err != nil {
		failService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"submission": sub})
}
