package model

import (
	"time"

	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/engine"
	"github.com/google/uuid"
)

// SessionStatus enumerates persisted exam session states.
type SessionStatus string

const (
	SessionStatusPending    SessionStatus = "pending"
	SessionStatusInProgress SessionStatus = "in_progress"
	SessionStatusCompleted  SessionStatus = "completed"
	SessionStatusExpired    SessionStatus = "expired"
)

// Finished reports whether the session can no longer be taken.
func (s SessionStatus) Finished() bool {
	return s == SessionStatusCompleted || s == SessionStatusExpired
}

// SessionStatusFromEngine maps an engine lifecycle state onto the stored status.
func SessionStatusFromEngine(s engine.Status) SessionStatus {
	switch s {
	case engine.StatusInProgress:
		return SessionStatusInProgress
	case engine.StatusSubmitted:
		return SessionStatusCompleted
	case engine.StatusExpired:
		return SessionStatusExpired
	default:
		return SessionStatusPending
	}
}

// ExamSession is one candidate's exam attempt.
type ExamSession struct {
	ID               uuid.UUID     `json:"id"`
	CandidateID      uuid.UUID     `json:"candidate_id"`
	JobDescriptionID *uuid.UUID    `json:"job_description_id,omitempty"`
	ExamToken        string        `json:"exam_token"`
	DurationMinutes  int           `json:"duration_minutes"`
	TotalQuestions   int           `json:"total_questions"`
	Status           SessionStatus `json:"status"`
	StartedAt        *time.Time    `json:"started_at,omitempty"`
	CompletedAt      *time.Time    `json:"completed_at,omitempty"`
	ExpiresAt        time.Time     `json:"expires_at"`
	CreatedAt        time.Time     `json:"created_at"`
}

// LinkExpired reports whether the exam link can no longer be used to join.
func (s *ExamSession) LinkExpired(now time.Time) bool {
	return s.StartedAt == nil && now.After(s.ExpiresAt)
}

// RemainingSeconds returns the countdown left for a started session.
func (s *ExamSession) RemainingSeconds(now time.Time) int {
	total := s.DurationMinutes * 60
	if s.StartedAt == nil {
		return total
	}
	left := total - int(now.Sub(*s.StartedAt).Seconds())
	if left < 0 {
		return 0
	}
	return left
}

// CreateExamSessionRequest is the admin payload for issuing an exam to a candidate.
// Either QuestionIDs or TotalQuestions (drawn from the job description pool) is used.
type CreateExamSessionRequest struct {
	CandidateID      uuid.UUID   `json:"candidate_id" binding:"required"`
	JobDescriptionID *uuid.UUID  `json:"job_description_id" binding:"omitempty"`
	QuestionIDs      []uuid.UUID `json:"question_ids" binding:"omitempty,max=200"`
	TotalQuestions   int         `json:"total_questions" binding:"omitempty,min=1,max=200"`
	DurationMinutes  int         `json:"duration_minutes" binding:"omitempty,min=1,max=480"`
	ExpiresInHours   int         `json:"expires_in_hours" binding:"omitempty,min=1,max=720"`
}

// JoinExamRequest is the payload for a candidate opening an exam link.
type JoinExamRequest struct {
	ExamToken string `json:"exam_token" binding:"required,notblank,max=64"`
}

// JoinExamResponse carries the candidate token scoped to a single session.
type JoinExamResponse struct {
	Token   string      `json:"token"`
	Session ExamSession `json:"session"`
}

// SubmitAnswerRequest records an answer for the question at the path index.
type SubmitAnswerRequest struct {
	Value string `json:"value" binding:"max=10000"`
}

// NavigateRequest moves the candidate within the question list.
type NavigateRequest struct {
	Action string `json:"action" binding:"required,oneof=goto next previous"`
	Index  int    `json:"index" binding:"min=0"`
}

// CandidateExamState is what a candidate client renders: the engine snapshot
// plus the ordered questions.
type CandidateExamState struct {
	engine.Snapshot
	DurationMinutes int                 `json:"duration_minutes"`
	Questions       []CandidateQuestion `json:"questions"`
}

// TimerState is the countdown of a live session as last recorded on pause,
// resume or shutdown. A running countdown keeps draining from SavedAt; a
// paused one stays frozen.
type TimerState struct {
	RemainingSeconds int       `json:"remaining_seconds"`
	Paused           bool      `json:"paused"`
	SavedAt          time.Time `json:"saved_at"`
}

// RemainingAt returns the seconds left at now.
func (t TimerState) RemainingAt(now time.Time) int {
	if t.Paused {
		return t.RemainingSeconds
	}
	left := t.RemainingSeconds - int(now.Sub(t.SavedAt).Seconds())
	if left < 0 {
		return 0
	}
	return left
}
