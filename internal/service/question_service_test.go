package service

import (
	"testing"

	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/engine"
	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mcqRequest() *model.CreateQuestionRequest {
	return &model.CreateQuestionRequest{
		QuestionType:  "mcq",
		QuestionText:  "  Which keyword starts a goroutine?  ",
		Options:       []model.OptionInput{{Label: "A", Text: "go"}, {Label: "B", Text: "defer"}},
		CorrectAnswer: "A",
		Points:        2,
	}
}

func TestBuildQuestionMCQ(t *testing.T) {
	q, err := BuildQuestion(mcqRequest())
	require.NoError(t, err)

	assert.Equal(t, engine.QuestionTypeMCQ, q.QuestionType)
	assert.Equal(t, "Which keyword starts a goroutine?", q.QuestionText)
	assert.Equal(t, []engine.Option{{Label: "A", Text: "go"}, {Label: "B", Text: "defer"}}, q.Options)
	assert.Equal(t, defaultTimeLimitSeconds, q.TimeLimitSeconds)
	assert.Equal(t, engine.DifficultyMedium, q.Difficulty)
}

func TestBuildQuestionRejectsBadMCQ(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*model.CreateQuestionRequest)
		field string
	}{
		{"single option", func(r *model.CreateQuestionRequest) { r.Options = r.Options[:1] }, "mcq_options"},
		{"duplicate label", func(r *model.CreateQuestionRequest) { r.Options[1].Label = "a" }, "mcq_options"},
		{"missing key", func(r *model.CreateQuestionRequest) { r.CorrectAnswer = " " }, "correct_answer"},
		{"key not a label", func(r *model.CreateQuestionRequest) { r.CorrectAnswer = "C" }, "correct_answer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := mcqRequest()
			tt.edit(req)

			_, err := BuildQuestion(req)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.field)
		})
	}
}

func TestBuildQuestionCorrectLabelCaseInsensitive(t *testing.T) {
	req := mcqRequest()
	req.CorrectAnswer = "b"
	_, err := BuildQuestion(req)
	assert.NoError(t, err)
}

func TestBuildQuestionText(t *testing.T) {
	req := &model.CreateQuestionRequest{
		QuestionType: "text",
		QuestionText: "Explain channels.",
		Points:       5,
		Difficulty:   "hard",
	}
	q, err := BuildQuestion(req)
	require.NoError(t, err)
	assert.Empty(t, q.Options)
	assert.Equal(t, engine.DifficultyHard, q.Difficulty)

	req.Options = []model.OptionInput{{Label: "A", Text: "x"}}
	_, err = BuildQuestion(req)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "mcq_options")
}
