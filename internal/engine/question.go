package engine

// QuestionType distinguishes auto-graded multiple choice from free text.
type QuestionType string

const (
	QuestionTypeMCQ  QuestionType = "mcq"
	QuestionTypeText QuestionType = "text"
)

// Difficulty is informational only; it never affects grading.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Option is one labelled choice of an MCQ question.
type Option struct {
	Label string `json:"option"`
	Text  string `json:"text"`
}

// Question is the immutable view of a question inside a running session.
type Question struct {
	ID               string       `json:"id"`
	Type             QuestionType `json:"question_type"`
	Text             string       `json:"question_text"`
	Options          []Option     `json:"mcq_options,omitempty"`
	CorrectAnswer    string       `json:"-"`
	Points           int          `json:"points"`
	TimeLimitSeconds int          `json:"time_limit_seconds"`
	Difficulty       Difficulty   `json:"difficulty_level"`
}

// IsMCQ reports whether the question is auto-graded.
func (q Question) IsMCQ() bool {
	return q.Type == QuestionTypeMCQ
}
