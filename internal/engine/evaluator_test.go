package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var arithmeticOptions = []Option{
	{Label: "A", Text: "2"},
	{Label: "B", Text: "4"},
	{Label: "C", Text: "6"},
	{Label: "D", Text: "8"},
}

func TestEvaluateExactLabel(t *testing.T) {
	got := Evaluate(" B ", arithmeticOptions, "B")

	assert.True(t, got.IsCorrect)
	assert.Equal(t, 1.0, got.Confidence)
	assert.True(t, got.Details.ExactMatch)
	assert.False(t, got.Details.OptionTextMatch)
	assert.True(t, got.Details.CaseInsensitiveMatch)
	assert.True(t, got.Details.TrimmedMatch)
	assert.Nil(t, got.Details.Similarity)
}

func TestEvaluateOptionText(t *testing.T) {
	got := Evaluate("4", arithmeticOptions, "B")

	assert.True(t, got.IsCorrect)
	assert.Equal(t, 1.0, got.Confidence)
	assert.True(t, got.Details.OptionTextMatch)
	assert.False(t, got.Details.ExactMatch)
}

func TestEvaluateCaseAndWhitespace(t *testing.T) {
	got := Evaluate(" b ", arithmeticOptions, "B")

	assert.True(t, got.IsCorrect)
	assert.Equal(t, 0.9, got.Confidence)
	assert.False(t, got.Details.ExactMatch)
	assert.False(t, got.Details.OptionTextMatch)
	assert.True(t, got.Details.CaseInsensitiveMatch)
	assert.True(t, got.Details.TrimmedMatch)
}

func TestEvaluateTrimmedOnly(t *testing.T) {
	opts := []Option{
		{Label: "A", Text: "hello   world"},
		{Label: "B", Text: "goodbye"},
	}
	got := Evaluate("Hello  World", opts, "A")

	assert.True(t, got.IsCorrect)
	assert.Equal(t, 0.85, got.Confidence)
	assert.False(t, got.Details.CaseInsensitiveMatch)
	assert.True(t, got.Details.TrimmedMatch)
}

func TestEvaluateSimilarityBelowThreshold(t *testing.T) {
	opts := []Option{
		{Label: "A", Text: "Lion"},
		{Label: "B", Text: "Zebra"},
		{Label: "C", Text: "Tiger"},
	}
	got := Evaluate("Z", opts, "B")

	assert.False(t, got.IsCorrect)
	assert.Equal(t, 0.2, got.Confidence)
	require.NotNil(t, got.Details.Similarity)
	assert.Equal(t, 0.2, *got.Details.Similarity)
	assert.False(t, got.Details.ExactMatch)
	assert.False(t, got.Details.OptionTextMatch)
	assert.False(t, got.Details.CaseInsensitiveMatch)
	assert.False(t, got.Details.TrimmedMatch)
}

func TestEvaluateSimilarityAboveThreshold(t *testing.T) {
	opts := []Option{
		{Label: "A", Text: "Photosynthesis"},
		{Label: "B", Text: "Respiration"},
	}
	got := Evaluate("Photosynthesys", opts, "A")

	assert.True(t, got.IsCorrect)
	assert.Equal(t, 0.93, got.Confidence)
	require.NotNil(t, got.Details.Similarity)
}

func TestEvaluateNearMissOnOtherOptionIsWrong(t *testing.T) {
	opts := []Option{
		{Label: "A", Text: "Recursion"},
		{Label: "B", Text: "Recursions"},
	}
	got := Evaluate("Recursions", opts, "A")

	assert.False(t, got.IsCorrect)
	assert.Equal(t, 0.9, got.Confidence)
}

func TestEvaluateCustomThreshold(t *testing.T) {
	opts := []Option{
		{Label: "A", Text: "Photosynthesis"},
		{Label: "B", Text: "Respiration"},
	}
	got := Evaluator{FuzzyThreshold: 0.95}.Evaluate("Photosynthesys", opts, "A")

	assert.False(t, got.IsCorrect)
	assert.Equal(t, 0.93, got.Confidence)
}

func TestEvaluateMalformedQuestion(t *testing.T) {
	tests := []struct {
		name    string
		options []Option
		correct string
	}{
		{"no options", nil, "A"},
		{"unknown key", arithmeticOptions, "E"},
		{"blank key", arithmeticOptions, "  "},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Evaluate("A", tc.options, tc.correct)
			assert.False(t, got.IsCorrect)
			assert.Equal(t, 0.0, got.Confidence)
			assert.Equal(t, MatchDetails{}, got.Details)
		})
	}
}

func TestEvaluateLowercaseKeyResolves(t *testing.T) {
	got := Evaluate("B", arithmeticOptions, "b")

	assert.True(t, got.IsCorrect)
	assert.Equal(t, 1.0, got.Confidence)
}

func TestEvaluateBlankAnswer(t *testing.T) {
	got := Evaluate("   ", arithmeticOptions, "B")

	assert.False(t, got.IsCorrect)
	assert.Equal(t, 0.0, got.Confidence)
}

func TestEvaluateIsDeterministic(t *testing.T) {
	inputs := []string{"B", "4", " b ", "x", "Four", "8"}
	for _, in := range inputs {
		first := Evaluate(in, arithmeticOptions, "B")
		second := Evaluate(in, arithmeticOptions, "B")
		assert.Equal(t, first, second, "input %q", in)
	}
}

func TestSimilaritySymmetric(t *testing.T) {
	pairs := [][2]string{
		{"kitten", "sitting"},
		{"", "abc"},
		{"go routine", "goroutine"},
		{"héllo", "hello"},
	}
	for _, p := range pairs {
		assert.Equal(t, Similarity(p[0], p[1]), Similarity(p[1], p[0]), "pair %q", p)
	}
	assert.Equal(t, 1.0, Similarity("", ""))
	assert.Equal(t, 0.8, Similarity("héllo", "hello"))
}

func TestEvaluateQuestionSkipsText(t *testing.T) {
	q := Question{ID: "q1", Type: QuestionTypeText, CorrectAnswer: "Goroutines are cheap"}

	_, ok := Evaluator{}.EvaluateQuestion(q, "Goroutines are cheap")
	assert.False(t, ok)

	q.Type = QuestionTypeMCQ
	q.Options = arithmeticOptions
	q.CorrectAnswer = "C"
	got, ok := Evaluator{}.EvaluateQuestion(q, "6")
	require.True(t, ok)
	assert.True(t, got.IsCorrect)
}
