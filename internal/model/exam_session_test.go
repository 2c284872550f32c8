package model

import (
	"testing"
	"time"

	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/engine"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStatusFromEngine(t *testing.T) {
	assert.Equal(t, SessionStatusPending, SessionStatusFromEngine(engine.StatusNotStarted))
	assert.Equal(t, SessionStatusInProgress, SessionStatusFromEngine(engine.StatusInProgress))
	assert.Equal(t, SessionStatusCompleted, SessionStatusFromEngine(engine.StatusSubmitted))
	assert.Equal(t, SessionStatusExpired, SessionStatusFromEngine(engine.StatusExpired))
	assert.True(t, SessionStatusExpired.Finished())
	assert.False(t, SessionStatusInProgress.Finished())
}

func TestRemainingSeconds(t *testing.T) {
	now := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
	s := ExamSession{DurationMinutes: 30}
	assert.Equal(t, 1800, s.RemainingSeconds(now))

	started := now.Add(-10 * time.Minute)
	s.StartedAt = &started
	assert.Equal(t, 1200, s.RemainingSeconds(now))

	long := now.Add(-2 * time.Hour)
	s.StartedAt = &long
	assert.Equal(t, 0, s.RemainingSeconds(now))
}

func TestLinkExpired(t *testing.T) {
	now := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
	s := ExamSession{ExpiresAt: now.Add(-time.Minute)}
	assert.True(t, s.LinkExpired(now))

	started := now.Add(-5 * time.Minute)
	s.StartedAt = &started
	assert.False(t, s.LinkExpired(now))
}

func TestNewExamResult(t *testing.T) {
	sid := uuid.New()
	cid := uuid.New()
	at := time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)

	res, err := NewExamResult(cid, engine.Submission{
		SessionID:           sid.String(),
		Status:              engine.StatusExpired,
		TotalAutoScore:      2,
		MaxScore:            3,
		CorrectAnswers:      2,
		WrongAnswers:        1,
		UnansweredQuestions: 4,
		ElapsedSeconds:      1800,
		SubmittedAt:         at,
	})
	require.NoError(t, err)

	assert.Equal(t, sid, res.ExamSessionID)
	assert.Equal(t, 66.67, res.Percentage)
	assert.Equal(t, 4, res.SkippedQuestions)
	assert.Equal(t, SessionStatusExpired, res.FinalStatus)
	assert.Equal(t, at, res.SubmittedAt)

	_, err = NewExamResult(cid, engine.Submission{SessionID: "not-a-uuid"})
	assert.Error(t, err)
}

func TestNewCandidateQuestionsHidesKey(t *testing.T) {
	qs := NewCandidateQuestions([]engine.Question{{
		ID:            "q1",
		Type:          engine.QuestionTypeMCQ,
		Text:          "Output?\n```go\nfmt.Println(2)\n```",
		Options:       []engine.Option{{Label: "A", Text: "2"}, {Label: "B", Text: "3"}},
		CorrectAnswer: "A",
		Points:        1,
	}})

	require.Len(t, qs, 1)
	assert.Equal(t, 0, qs[0].Index)
	require.Len(t, qs[0].Segments, 2)
	assert.Equal(t, engine.SegmentCode, qs[0].Segments[1].Kind)
}

func TestDefaultSeverity(t *testing.T) {
	assert.Equal(t, SeverityHigh, DefaultSeverity(ViolationDevTools))
	assert.Equal(t, SeverityLow, DefaultSeverity(ViolationType("unknown")))
}
