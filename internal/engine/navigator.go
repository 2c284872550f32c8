package engine

// QuestionStatus is the per-question badge in the navigator grid.
type QuestionStatus string

const (
	QuestionStatusAnswered   QuestionStatus = "answered"
	QuestionStatusCurrent    QuestionStatus = "current"
	QuestionStatusUnanswered QuestionStatus = "unanswered"
)

// NavigatorEntry is one cell of the navigator grid.
type NavigatorEntry struct {
	Index  int            `json:"index"`
	Status QuestionStatus `json:"status"`
	Points int            `json:"points"`
}

// NavigatorStats backs the progress widgets. AverageSecondsPerAnswered is
// display-only and never used for scoring.
type NavigatorStats struct {
	AnsweredCount             int     `json:"answered_count"`
	UnansweredCount           int     `json:"unanswered_count"`
	TotalCount                int     `json:"total_count"`
	TotalPoints               int     `json:"total_points"`
	AverageSecondsPerAnswered float64 `json:"average_seconds_per_answered"`
}

// Navigator exposes ordered access over a fixed question list.
type Navigator struct {
	questions []Question
	answers   *AnswerStore
	current   int
}

// NewNavigator creates a navigator positioned on the first question.
func NewNavigator(questions []Question, answers *AnswerStore) *Navigator {
	return &Navigator{questions: questions, answers: answers}
}

func (n *Navigator) Current() int { return n.current }
func (n *Navigator) Len() int     { return len(n.questions) }

func (n *Navigator) inRange(index int) bool {
	return index >= 0 && index < len(n.questions)
}

// Status returns the badge for index. The current question wins over answered.
func (n *Navigator) Status(index int) QuestionStatus {
	switch {
	case index == n.current:
		return QuestionStatusCurrent
	case n.answers.Has(index):
		return QuestionStatusAnswered
	default:
		return QuestionStatusUnanswered
	}
}

// GoTo moves to index. Out-of-range targets are ignored.
func (n *Navigator) GoTo(index int) bool {
	if !n.inRange(index) {
		return false
	}
	n.current = index
	return true
}

// Next advances one question, stopping at the last one.
func (n *Navigator) Next() bool {
	return n.GoTo(n.current + 1)
}

// Previous steps back one question, stopping at the first one.
func (n *Navigator) Previous() bool {
	return n.GoTo(n.current - 1)
}

// Entries returns the status of every question in order.
func (n *Navigator) Entries() []NavigatorEntry {
	out := make([]NavigatorEntry, len(n.questions))
	for i, q := range n.questions {
		out[i] = NavigatorEntry{Index: i, Status: n.Status(i), Points: q.Points}
	}
	return out
}

// Stats aggregates progress. elapsedSeconds comes from the session timer.
func (n *Navigator) Stats(elapsedSeconds int) NavigatorStats {
	answered := 0
	for i := range n.questions {
		if n.answers.Has(i) {
			answered++
		}
	}

	points := 0
	for _, q := range n.questions {
		points += q.Points
	}

	var avg float64
	if answered > 0 && elapsedSeconds > 0 {
		avg = float64(elapsedSeconds) / float64(answered)
	}

	return NavigatorStats{
		AnsweredCount:             answered,
		UnansweredCount:           len(n.questions) - answered,
		TotalCount:                len(n.questions),
		TotalPoints:               points,
		AverageSecondsPerAnswered: avg,
	}
}
