package engine

import (
	"sync"
	"time"
)

// Status is the lifecycle state of an exam session.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusSubmitted  Status = "submitted"
	StatusExpired    Status = "expired"
)

// Terminal reports whether no further mutation is allowed.
func (s Status) Terminal() bool {
	return s == StatusSubmitted || s == StatusExpired
}

// AnswerEntry is one recorded answer in a Submission.
type AnswerEntry struct {
	QuestionID string `json:"question_id"`
	Index      int    `json:"index"`
	Value      string `json:"value"`
}

// QuestionEvaluation is the evaluator output for one answered MCQ question.
type QuestionEvaluation struct {
	QuestionID   string `json:"question_id"`
	Index        int    `json:"index"`
	PointsEarned int    `json:"points_earned"`
	Evaluation
}

// Submission is the payload handed to persistence on the terminal transition.
type Submission struct {
	SessionID           string               `json:"session_id"`
	Status              Status               `json:"status"`
	Answers             []AnswerEntry        `json:"answers"`
	Evaluations         []QuestionEvaluation `json:"evaluations"`
	TotalAutoScore      int                  `json:"total_auto_score"`
	MaxScore            int                  `json:"max_score"`
	CorrectAnswers      int                  `json:"correct_answers"`
	WrongAnswers        int                  `json:"wrong_answers"`
	UnansweredQuestions int                  `json:"unanswered_questions"`
	PendingManualReview int                  `json:"pending_manual_review"`
	ElapsedSeconds      int                  `json:"elapsed_seconds"`
	SubmittedAt         time.Time            `json:"submitted_at"`
}

// Snapshot is a read-only view of a session for rendering and reconnects.
type Snapshot struct {
	SessionID      string           `json:"session_id"`
	Status         Status           `json:"status"`
	CurrentIndex   int              `json:"current_index"`
	Paused         bool             `json:"paused"`
	Timer          TimerDisplay     `json:"timer"`
	TimeProgress   float64          `json:"time_progress"`
	AnswerProgress float64          `json:"answer_progress"`
	Answers        map[int]string   `json:"answers"`
	Navigator      []NavigatorEntry `json:"navigator"`
	Stats          NavigatorStats   `json:"stats"`
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithSubmitHook registers fn to receive the Submission exactly once.
func WithSubmitHook(fn func(Submission)) SessionOption {
	return func(s *Session) { s.onSubmit = fn }
}

// WithTimerHook registers fn to receive warning, critical and time-up events.
func WithTimerHook(fn func(TimerEvent)) SessionOption {
	return func(s *Session) { s.onTimer = fn }
}

// WithAutoSubmitOnComplete submits the session as soon as every question has an answer.
func WithAutoSubmitOnComplete(enabled bool) SessionOption {
	return func(s *Session) { s.autoSubmit = enabled }
}

// WithEvaluator overrides the MCQ evaluator settings.
func WithEvaluator(e Evaluator) SessionOption {
	return func(s *Session) { s.evaluator = e }
}

// WithClock overrides the clock used to stamp SubmittedAt.
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) { s.now = now }
}

// Session is the exam lifecycle controller:
// not_started -> in_progress -> {submitted, expired}.
//
// Mutating calls made in the wrong state are ignored and return false.
// Methods are safe for concurrent use; the first terminal trigger wins.
type Session struct {
	mu sync.Mutex

	id        string
	questions []Question
	duration  int
	status    Status

	timer   Timer
	answers *AnswerStore
	nav     *Navigator

	evaluator  Evaluator
	autoSubmit bool
	now        func() time.Time
	onSubmit   func(Submission)
	onTimer    func(TimerEvent)

	submission *Submission
}

// NewSession creates a not-started session over a private copy of questions.
func NewSession(id string, questions []Question, durationMinutes int, opts ...SessionOption) *Session {
	qs := make([]Question, len(questions))
	copy(qs, questions)
	for i := range qs {
		qs[i].Options = append([]Option(nil), qs[i].Options...)
	}

	answers := NewAnswerStore()
	s := &Session{
		id:        id,
		questions: qs,
		duration:  durationMinutes,
		status:    StatusNotStarted,
		answers:   answers,
		nav:       NewNavigator(qs, answers),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start moves a not-started session into progress and arms the timer.
func (s *Session) Start() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusNotStarted {
		return false
	}
	s.timer.Start(s.duration)
	s.status = StatusInProgress
	return true
}

// Restore reloads remaining time and saved answers into a started session,
// e.g. after a reconnect or process restart. It never triggers auto-submit.
func (s *Session) Restore(remainingSeconds int, saved map[int]string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusInProgress {
		return false
	}
	s.timer.Restore(remainingSeconds)
	for idx, v := range saved {
		if idx >= 0 && idx < len(s.questions) {
			s.answers.Set(idx, v)
		}
	}
	return true
}

// SetAnswer records value for the question at index.
func (s *Session) SetAnswer(index int, value string) bool {
	s.mu.Lock()
	if s.status != StatusInProgress || index < 0 || index >= len(s.questions) {
		s.mu.Unlock()
		return false
	}
	s.answers.Set(index, value)

	var sub *Submission
	if s.autoSubmit && s.answers.Count() == len(s.questions) {
		sub = s.finishLocked(StatusSubmitted)
	}
	s.mu.Unlock()

	s.emitSubmission(sub)
	return true
}

func (s *Session) GoTo(index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusInProgress {
		return false
	}
	return s.nav.GoTo(index)
}

func (s *Session) Next() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusInProgress {
		return false
	}
	return s.nav.Next()
}

func (s *Session) Previous() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusInProgress {
		return false
	}
	return s.nav.Previous()
}

// Pause freezes the countdown. Answers and navigation stay available.
func (s *Session) Pause() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusInProgress {
		return false
	}
	s.timer.Pause()
	return true
}

func (s *Session) Resume() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusInProgress {
		return false
	}
	s.timer.Resume()
	return true
}

// Tick advances the session clock by one second. On time-up the session
// is graded and moves to expired.
func (s *Session) Tick() (TimerEvent, bool) {
	s.mu.Lock()
	if s.status != StatusInProgress {
		s.mu.Unlock()
		return TimerEvent{}, false
	}
	ev, ok := s.timer.Tick()

	var sub *Submission
	if ok && ev.Kind == TimerEventTimeUp {
		sub = s.finishLocked(StatusExpired)
	}
	s.mu.Unlock()

	if ok && s.onTimer != nil {
		s.onTimer(ev)
	}
	s.emitSubmission(sub)
	return ev, ok
}

// Submit grades the session and moves it to submitted. A second call is a no-op.
func (s *Session) Submit() (Submission, bool) {
	s.mu.Lock()
	if s.status != StatusInProgress {
		s.mu.Unlock()
		return Submission{}, false
	}
	sub := s.finishLocked(StatusSubmitted)
	s.mu.Unlock()

	s.emitSubmission(sub)
	return *sub, true
}

func (s *Session) finishLocked(status Status) *Submission {
	s.status = status
	s.timer.Stop()
	sub := s.gradeLocked(status)
	s.submission = &sub
	return &sub
}

func (s *Session) gradeLocked(status Status) Submission {
	sub := Submission{
		SessionID:      s.id,
		Status:         status,
		Answers:        []AnswerEntry{},
		Evaluations:    []QuestionEvaluation{},
		ElapsedSeconds: s.timer.Elapsed(),
		SubmittedAt:    s.now().UTC(),
	}

	for i, q := range s.questions {
		sub.MaxScore += q.Points

		value, ok := s.answers.Get(i)
		if !ok {
			sub.UnansweredQuestions++
			continue
		}
		sub.Answers = append(sub.Answers, AnswerEntry{QuestionID: q.ID, Index: i, Value: value})

		eval, graded := s.evaluator.EvaluateQuestion(q, value)
		if !graded {
			sub.PendingManualReview++
			continue
		}

		qe := QuestionEvaluation{QuestionID: q.ID, Index: i, Evaluation: eval}
		if eval.IsCorrect {
			qe.PointsEarned = q.Points
			sub.TotalAutoScore += q.Points
			sub.CorrectAnswers++
		} else {
			sub.WrongAnswers++
		}
		sub.Evaluations = append(sub.Evaluations, qe)
	}
	return sub
}

func (s *Session) emitSubmission(sub *Submission) {
	if sub != nil && s.onSubmit != nil {
		s.onSubmit(*sub)
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Session) DurationMinutes() int { return s.duration }

// Questions returns a copy of the fixed question order.
func (s *Session) Questions() []Question {
	out := make([]Question, len(s.questions))
	copy(out, s.questions)
	return out
}

// Answer returns the stored answer for index.
func (s *Session) Answer(index int) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.answers.Get(index)
}

// AnsweredIndices returns the indices holding a non-blank answer.
func (s *Session) AnsweredIndices() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.answers.AnsweredIndices()
}

// Submission returns the terminal payload once the session has finished.
func (s *Session) Submission() (Submission, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.submission == nil {
		return Submission{}, false
	}
	return *s.submission, true
}

// Snapshot captures the current state for display.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	answers := make(map[int]string, s.answers.Count())
	for _, i := range s.answers.AnsweredIndices() {
		answers[i], _ = s.answers.Get(i)
	}

	display, progress := s.timer.Display(), s.timer.Progress()
	if s.status == StatusNotStarted {
		display = TimerDisplay{RemainingSeconds: s.duration * 60, WarningLevel: WarningLevelNone}
		progress = 0
	}

	return Snapshot{
		SessionID:      s.id,
		Status:         s.status,
		CurrentIndex:   s.nav.Current(),
		Paused:         s.status == StatusInProgress && !s.timer.Active(),
		Timer:          display,
		TimeProgress:   progress,
		AnswerProgress: s.answers.ProgressFraction(len(s.questions)),
		Answers:        answers,
		Navigator:      s.nav.Entries(),
		Stats:          s.nav.Stats(s.timer.Elapsed()),
	}
}
