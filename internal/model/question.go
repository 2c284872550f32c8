package model

import (
	"time"

	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/engine"
	"github.com/google/uuid"
)

// Question is a row of the exam question bank.
type Question struct {
	ID                uuid.UUID           `json:"id"`
	JobDescriptionID  *uuid.UUID          `json:"job_description_id,omitempty"`
	QuestionType      engine.QuestionType `json:"question_type"`
	QuestionText      string              `json:"question_text"`
	Options           []engine.Option     `json:"mcq_options"`
	CorrectAnswer     string              `json:"correct_answer"`
	AnswerExplanation string              `json:"answer_explanation,omitempty"`
	Points            int                 `json:"points"`
	TimeLimitSeconds  int                 `json:"time_limit_seconds"`
	Difficulty        engine.Difficulty   `json:"difficulty_level"`
	Topic             string              `json:"topic,omitempty"`
	CreatedAt         time.Time           `json:"created_at"`
}

// ToEngine converts the row into the engine's immutable question view.
func (q *Question) ToEngine() engine.Question {
	return engine.Question{
		ID:               q.ID.String(),
		Type:             q.QuestionType,
		Text:             q.QuestionText,
		Options:          q.Options,
		CorrectAnswer:    q.CorrectAnswer,
		Points:           q.Points,
		TimeLimitSeconds: q.TimeLimitSeconds,
		Difficulty:       q.Difficulty,
	}
}

// CreateQuestionRequest is the payload for adding a question to the bank.
type CreateQuestionRequest struct {
	JobDescriptionID  *uuid.UUID    `json:"job_description_id" binding:"omitempty"`
	QuestionType      string        `json:"question_type" binding:"required,oneof=mcq text"`
	QuestionText      string        `json:"question_text" binding:"required,notblank,max=5000"`
	Options           []OptionInput `json:"mcq_options" binding:"omitempty,dive"`
	CorrectAnswer     string        `json:"correct_answer" binding:"max=2000"`
	AnswerExplanation string        `json:"answer_explanation" binding:"max=5000"`
	Points            int           `json:"points" binding:"required,min=1,max=100"`
	TimeLimitSeconds  int           `json:"time_limit_seconds" binding:"omitempty,min=1,max=3600"`
	Difficulty        string        `json:"difficulty_level" binding:"omitempty,oneof=easy medium hard"`
	Topic             string        `json:"topic" binding:"max=255"`
}

// OptionInput is one labelled MCQ choice in a create request.
type OptionInput struct {
	Label string `json:"option" binding:"required,notblank,max=10"`
	Text  string `json:"text" binding:"required,max=1000"`
}

// ListQuestionsQuery filters the question bank listing.
type ListQuestionsQuery struct {
	JobDescriptionID string `form:"job_description_id" binding:"omitempty,uuid"`
	QuestionType     string `form:"question_type" binding:"omitempty,oneof=mcq text"`
	Difficulty       string `form:"difficulty_level" binding:"omitempty,oneof=easy medium hard"`
	Page             int    `form:"page" binding:"omitempty,min=1"`
	PerPage          int    `form:"per_page" binding:"omitempty,min=1,max=100"`
}

// CandidateQuestion is a question as sent to candidates: no correct answer
// and the text pre-split into prose and code segments.
type CandidateQuestion struct {
	Index            int                  `json:"index"`
	ID               string               `json:"id"`
	QuestionType     engine.QuestionType  `json:"question_type"`
	QuestionText     string               `json:"question_text"`
	Segments         []engine.TextSegment `json:"segments"`
	Options          []engine.Option      `json:"mcq_options,omitempty"`
	Points           int                  `json:"points"`
	TimeLimitSeconds int                  `json:"time_limit_seconds"`
	Difficulty       engine.Difficulty    `json:"difficulty_level"`
}

// NewCandidateQuestions builds the candidate view of an ordered question list.
func NewCandidateQuestions(qs []engine.Question) []CandidateQuestion {
	out := make([]CandidateQuestion, len(qs))
	for i, q := range qs {
		out[i] = CandidateQuestion{
			Index:            i,
			ID:               q.ID,
			QuestionType:     q.Type,
			QuestionText:     q.Text,
			Segments:         engine.SplitQuestionText(q.Text),
			Options:          q.Options,
			Points:           q.Points,
			TimeLimitSeconds: q.TimeLimitSeconds,
			Difficulty:       q.Difficulty,
		}
	}
	return out
}
