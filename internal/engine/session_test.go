package engine

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mcq(id, correct string, points int) Question {
	return Question{
		ID:            id,
		Type:          QuestionTypeMCQ,
		Text:          "pick " + correct,
		Options:       []Option{{Label: "A", Text: "alpha"}, {Label: "B", Text: "bravo"}, {Label: "C", Text: "charlie"}},
		CorrectAnswer: correct,
		Points:        points,
	}
}

type submitRecorder struct {
	mu   sync.Mutex
	subs []Submission
}

func (r *submitRecorder) hook(s Submission) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs = append(r.subs, s)
}

func (r *submitRecorder) all() []Submission {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Submission(nil), r.subs...)
}

func TestSessionExpiresAndScoresAnsweredOnly(t *testing.T) {
	qs := make([]Question, 10)
	for i := range qs {
		qs[i] = mcq(fmt.Sprintf("q%d", i), "A", 1)
	}
	var rec submitRecorder
	s := NewSession("sess-1", qs, 1, WithSubmitHook(rec.hook))
	require.True(t, s.Start())

	s.SetAnswer(0, "A")
	s.SetAnswer(1, "alpha")
	s.SetAnswer(2, "B")
	s.SetAnswer(3, "a")

	var last TimerEvent
	for i := 0; i < 60; i++ {
		if ev, ok := s.Tick(); ok {
			last = ev
		}
	}

	assert.Equal(t, TimerEventTimeUp, last.Kind)
	assert.Equal(t, StatusExpired, s.Status())

	subs := rec.all()
	require.Len(t, subs, 1)
	sub := subs[0]
	assert.Equal(t, StatusExpired, sub.Status)
	assert.Len(t, sub.Answers, 4)
	assert.Len(t, sub.Evaluations, 4)
	assert.Equal(t, 3, sub.TotalAutoScore)
	assert.Equal(t, 10, sub.MaxScore)
	assert.Equal(t, 3, sub.CorrectAnswers)
	assert.Equal(t, 1, sub.WrongAnswers)
	assert.Equal(t, 6, sub.UnansweredQuestions)
	assert.Equal(t, 60, sub.ElapsedSeconds)
}

func TestSessionDoubleSubmitEmitsOnce(t *testing.T) {
	var rec submitRecorder
	s := NewSession("sess-2", []Question{mcq("q0", "B", 2)}, 5, WithSubmitHook(rec.hook))
	s.Start()
	s.SetAnswer(0, "B")

	first, ok := s.Submit()
	require.True(t, ok)
	assert.Equal(t, StatusSubmitted, first.Status)
	assert.Equal(t, 2, first.TotalAutoScore)

	_, ok = s.Submit()
	assert.False(t, ok)

	for i := 0; i < 400; i++ {
		s.Tick()
	}

	assert.Len(t, rec.all(), 1)
	assert.Equal(t, StatusSubmitted, s.Status())

	stored, ok := s.Submission()
	require.True(t, ok)
	assert.Equal(t, first, stored)
}

func TestSessionConcurrentSubmitAndExpiry(t *testing.T) {
	var rec submitRecorder
	s := NewSession("sess-3", []Question{mcq("q0", "A", 1)}, 0, WithSubmitHook(rec.hook))
	s.Start()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() { defer wg.Done(); s.Submit() }()
		go func() { defer wg.Done(); s.Tick() }()
	}
	wg.Wait()

	assert.Len(t, rec.all(), 1)
	assert.True(t, s.Status().Terminal())
}

func TestSessionGuardsMutationOutsideProgress(t *testing.T) {
	s := NewSession("sess-4", []Question{mcq("q0", "A", 1), mcq("q1", "B", 1)}, 5)

	assert.False(t, s.SetAnswer(0, "A"))
	assert.False(t, s.Next())
	_, ok := s.Tick()
	assert.False(t, ok)

	snap := s.Snapshot()
	assert.Equal(t, StatusNotStarted, snap.Status)
	assert.Equal(t, 300, snap.Timer.RemainingSeconds)
	assert.Equal(t, 0.0, snap.TimeProgress)

	require.True(t, s.Start())
	assert.False(t, s.Start())
	require.True(t, s.SetAnswer(0, "A"))
	_, ok = s.Submit()
	require.True(t, ok)

	assert.False(t, s.SetAnswer(1, "B"))
	assert.False(t, s.GoTo(1))
	assert.False(t, s.Pause())
	assert.False(t, s.Resume())

	_, has := s.Answer(1)
	assert.False(t, has)
	assert.Equal(t, 0, s.Snapshot().CurrentIndex)
}

func TestSessionOutOfRangeAnswerIgnored(t *testing.T) {
	s := NewSession("sess-5", []Question{mcq("q0", "A", 1)}, 5)
	s.Start()

	assert.False(t, s.SetAnswer(1, "A"))
	assert.False(t, s.SetAnswer(-1, "A"))
	assert.Empty(t, s.AnsweredIndices())
}

func TestSessionTextQuestionsPendingReview(t *testing.T) {
	qs := []Question{
		mcq("q0", "C", 3),
		{ID: "q1", Type: QuestionTypeText, Text: "Explain channels", Points: 5},
	}
	s := NewSession("sess-6", qs, 5)
	s.Start()
	s.SetAnswer(0, "charlie")
	s.SetAnswer(1, "They pass values between goroutines.")

	sub, ok := s.Submit()
	require.True(t, ok)
	assert.Equal(t, 3, sub.TotalAutoScore)
	assert.Equal(t, 8, sub.MaxScore)
	assert.Equal(t, 1, sub.PendingManualReview)
	assert.Len(t, sub.Answers, 2)
	assert.Len(t, sub.Evaluations, 1)
}

func TestSessionAutoSubmitOnComplete(t *testing.T) {
	var rec submitRecorder
	s := NewSession("sess-7", []Question{mcq("q0", "A", 1), mcq("q1", "B", 1)}, 5,
		WithSubmitHook(rec.hook), WithAutoSubmitOnComplete(true))
	s.Start()

	s.SetAnswer(0, "A")
	assert.Equal(t, StatusInProgress, s.Status())

	s.SetAnswer(1, "B")
	assert.Equal(t, StatusSubmitted, s.Status())
	require.Len(t, rec.all(), 1)
	assert.Equal(t, 2, rec.all()[0].TotalAutoScore)
}

func TestSessionPauseFreezesTimer(t *testing.T) {
	s := NewSession("sess-8", []Question{mcq("q0", "A", 1)}, 1)
	s.Start()
	s.Tick()

	require.True(t, s.Pause())
	for i := 0; i < 100; i++ {
		s.Tick()
	}
	snap := s.Snapshot()
	assert.True(t, snap.Paused)
	assert.Equal(t, 59, snap.Timer.RemainingSeconds)
	assert.Equal(t, StatusInProgress, snap.Status)

	require.True(t, s.SetAnswer(0, "A"))
	require.True(t, s.Resume())
	s.Tick()
	assert.Equal(t, 58, s.Snapshot().Timer.RemainingSeconds)
}

func TestSessionRestore(t *testing.T) {
	s := NewSession("sess-9", []Question{mcq("q0", "A", 1), mcq("q1", "B", 1)}, 10)
	assert.False(t, s.Restore(100, nil))

	s.Start()
	require.True(t, s.Restore(90, map[int]string{0: "A", 1: "  ", 7: "C"}))

	snap := s.Snapshot()
	assert.Equal(t, 90, snap.Timer.RemainingSeconds)
	assert.Equal(t, WarningLevelWarning, snap.Timer.WarningLevel)
	assert.Equal(t, map[int]string{0: "A"}, snap.Answers)
	assert.Equal(t, 0.5, snap.AnswerProgress)
}

func TestSessionTimerHookOrder(t *testing.T) {
	var (
		order []string
		mu    sync.Mutex
	)
	record := func(s string) {
		mu.Lock()
		defer mu.Unlock()
		order = append(order, s)
	}

	s := NewSession("sess-10", []Question{mcq("q0", "A", 1)}, 2,
		WithTimerHook(func(ev TimerEvent) { record(string(ev.Kind)) }),
		WithSubmitHook(func(Submission) { record("submit") }),
	)
	s.Start()
	for i := 0; i < 120; i++ {
		s.Tick()
	}

	assert.Equal(t, []string{"critical", "time_up", "submit"}, order)
}

func TestSessionSubmittedAtUsesClock(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s := NewSession("sess-11", []Question{mcq("q0", "A", 1)}, 5, WithClock(func() time.Time { return at }))
	s.Start()

	sub, _ := s.Submit()
	assert.Equal(t, at, sub.SubmittedAt)
}

func TestDriveStopsOnTerminal(t *testing.T) {
	s := NewSession("sess-12", []Question{mcq("q0", "A", 1)}, 0)
	s.Start()

	ticks := make(chan time.Time, 4)
	for i := 0; i < 4; i++ {
		ticks <- time.Time{}
	}

	done := make(chan struct{})
	go func() {
		Drive(context.Background(), s, ticks)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Drive did not return after expiry")
	}
	assert.Equal(t, StatusExpired, s.Status())
	assert.Len(t, ticks, 3)
}

func TestDriveStopsOnCancel(t *testing.T) {
	s := NewSession("sess-13", []Question{mcq("q0", "A", 1)}, 5)
	s.Start()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		Drive(ctx, s, make(chan time.Time))
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Drive did not return after cancel")
	}
	assert.Equal(t, StatusInProgress, s.Status())
}
