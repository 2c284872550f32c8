package model

import (
	"encoding/json"
	"math"
	"time"

	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/engine"
	"github.com/google/uuid"
)

// ExamResponse is a stored answer with its evaluation.
type ExamResponse struct {
	ExamSessionID     uuid.UUID       `json:"exam_session_id"`
	QuestionID        uuid.UUID       `json:"question_id"`
	AnswerText        string          `json:"answer_text"`
	IsCorrect         *bool           `json:"is_correct,omitempty"`
	PointsEarned      int             `json:"points_earned"`
	EvaluationDetails json.RawMessage `json:"evaluation_details,omitempty"`
	AnsweredAt        time.Time       `json:"answered_at"`
}

// ExamResult is the aggregate outcome of a finished session.
type ExamResult struct {
	ExamSessionID       uuid.UUID     `json:"exam_session_id"`
	CandidateID         uuid.UUID     `json:"candidate_id"`
	TotalScore          int           `json:"total_score"`
	MaxScore            int           `json:"max_score"`
	Percentage          float64       `json:"percentage"`
	CorrectAnswers      int           `json:"correct_answers"`
	WrongAnswers        int           `json:"wrong_answers"`
	SkippedQuestions    int           `json:"skipped_questions"`
	PendingManualReview int           `json:"pending_manual_review"`
	TimeTakenSeconds    int           `json:"time_taken_seconds"`
	FinalStatus         SessionStatus `json:"final_status"`
	SubmittedAt         time.Time     `json:"submitted_at"`
}

// NewExamResult aggregates an engine submission into a result row.
func NewExamResult(candidateID uuid.UUID, sub engine.Submission) (ExamResult, error) {
	sid, err := uuid.Parse(sub.SessionID)
	if err != nil {
		return ExamResult{}, err
	}

	var pct float64
	if sub.MaxScore > 0 {
		pct = math.Round(float64(sub.TotalAutoScore)/float64(sub.MaxScore)*10000) / 100
	}

	return ExamResult{
		ExamSessionID:       sid,
		CandidateID:         candidateID,
		TotalScore:          sub.TotalAutoScore,
		MaxScore:            sub.MaxScore,
		Percentage:          pct,
		CorrectAnswers:      sub.CorrectAnswers,
		WrongAnswers:        sub.WrongAnswers,
		SkippedQuestions:    sub.UnansweredQuestions,
		PendingManualReview: sub.PendingManualReview,
		TimeTakenSeconds:    sub.ElapsedSeconds,
		FinalStatus:         SessionStatusFromEngine(sub.Status),
		SubmittedAt:         sub.SubmittedAt,
	}, nil
}

// SubmissionJob is the queue payload handed from the runtime to the submission worker.
type SubmissionJob struct {
	CandidateID uuid.UUID         `json:"candidate_id"`
	Submission  engine.Submission `json:"submission"`
}

// AnswerJob is the queue payload for a durable autosave upsert.
type AnswerJob struct {
	SessionID  uuid.UUID `json:"session_id"`
	QuestionID uuid.UUID `json:"question_id"`
	Index      int       `json:"index"`
	Value      string    `json:"value"`
	AnsweredAt time.Time `json:"answered_at"`
}

// ExamResultDetail is the admin view of a finished session.
type ExamResultDetail struct {
	Result     ExamResult          `json:"result"`
	Responses  []ExamResponse      `json:"responses"`
	Violations []SecurityViolation `json:"violations"`
}

// SubmissionReceipt is what the candidate sees after finishing. Scores stay with the admins.
type SubmissionReceipt struct {
	SessionID      string        `json:"session_id"`
	Status         SessionStatus `json:"status"`
	AnsweredCount  int           `json:"answered_count"`
	TotalQuestions int           `json:"total_questions"`
	ElapsedSeconds int           `json:"elapsed_seconds"`
	SubmittedAt    time.Time     `json:"submitted_at"`
}

// NewSubmissionReceipt summarises sub for the candidate.
func NewSubmissionReceipt(sub engine.Submission) SubmissionReceipt {
	return SubmissionReceipt{
		SessionID:      sub.SessionID,
		Status:         SessionStatusFromEngine(sub.Status),
		AnsweredCount:  len(sub.Answers),
		TotalQuestions: len(sub.Answers) + sub.UnansweredQuestions,
		ElapsedSeconds: sub.ElapsedSeconds,
		SubmittedAt:    sub.SubmittedAt,
	}
}

// ResultExportRow is one line of the results spreadsheet.
type ResultExportRow struct {
	Result     ExamResult
	Violations int64
}
