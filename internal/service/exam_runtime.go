package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/engine"
	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// SessionStore is the persistence the runtime needs for session rows.
type SessionStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.ExamSession, error)
	ListQuestions(ctx context.Context, sessionID uuid.UUID) ([]model.Question, error)
	MarkStarted(ctx context.Context, id uuid.UUID, at time.Time) (*model.ExamSession, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.SessionStatus) error
	ListInProgress(ctx context.Context) ([]model.ExamSession, error)
}

// AnswerCache is the fast autosave copy of a running session.
type AnswerCache interface {
	SaveAnswer(ctx context.Context, sessionID string, index int, value string) error
	LoadAnswers(ctx context.Context, sessionID string) (map[int]string, error)
	SaveTimer(ctx context.Context, sessionID string, state model.TimerState) error
	LoadTimer(ctx context.Context, sessionID string) (model.TimerState, bool, error)
	MarkSubmitted(ctx context.Context, sessionID string) error
	IsSubmitted(ctx context.Context, sessionID string) (bool, error)
}

// JobQueue hands work to the persistence workers.
type JobQueue interface {
	EnqueueAnswer(ctx context.Context, job model.AnswerJob) error
	EnqueueSubmission(ctx context.Context, job model.SubmissionJob) error
	EnqueueViolation(ctx context.Context, v model.SecurityViolation) error
}

// EventPublisher broadcasts monitor events to admins.
type EventPublisher interface {
	Publish(ctx context.Context, ev MonitorEvent) error
}

// Runtime event types pushed to subscribers.
const (
	EventState     = "state"
	EventTimer     = "timer"
	EventSubmitted = "submitted"
)

// RuntimeEvent is pushed to candidate subscribers of a live session.
type RuntimeEvent struct {
	Type       string             `json:"type"`
	Timer      *engine.TimerEvent `json:"timer,omitempty"`
	Submission *engine.Submission `json:"submission,omitempty"`
	Snapshot   *engine.Snapshot   `json:"snapshot,omitempty"`
}

// NavigateAction is a navigator move requested by the candidate.
type NavigateAction string

const (
	NavigateGoTo     NavigateAction = "goto"
	NavigateNext     NavigateAction = "next"
	NavigatePrevious NavigateAction = "previous"
)

// RuntimeOptions tunes the runtime.
type RuntimeOptions struct {
	AutoSubmitOnComplete bool
	FuzzyThreshold       float64
	// Ticker returns the tick source for one session. Defaults to a one-second time.Ticker.
	Ticker func() (<-chan time.Time, func())
	// Now defaults to time.Now.
	Now func() time.Time
	// FinishedRetention is how long a finished session stays answerable in memory.
	FinishedRetention time.Duration
}

const (
	subscriberBuffer = 16
	hookTimeout      = 5 * time.Second
	defaultRetention = 10 * time.Minute
)

type liveSession struct {
	id          uuid.UUID
	candidateID uuid.UUID
	session     *engine.Session
	cancel      context.CancelFunc

	mu      sync.Mutex
	subs    map[int]chan RuntimeEvent
	nextSub int
	closed  bool
}

func (ls *liveSession) broadcast(ev RuntimeEvent) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	if ls.closed {
		return
	}
	for _, ch := range ls.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (ls *liveSession) closeSubscribers() {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	if ls.closed {
		return
	}
	ls.closed = true
	for id, ch := range ls.subs {
		close(ch)
		delete(ls.subs, id)
	}
}

// ExamRuntime hosts one engine session per running exam, drives its timer and
// wires its hooks to autosave, the submission queue and the admin monitor.
type ExamRuntime struct {
	sessions SessionStore
	cache    AnswerCache
	queue    JobQueue
	events   EventPublisher
	opts     RuntimeOptions
	log      zerolog.Logger

	mu   sync.Mutex
	live map[uuid.UUID]*liveSession
	wg   sync.WaitGroup
}

// NewExamRuntime creates a new ExamRuntime.
func NewExamRuntime(
	sessions SessionStore,
	cache AnswerCache,
	queue JobQueue,
	events EventPublisher,
	opts RuntimeOptions,
	log zerolog.Logger,
) *ExamRuntime {
	if opts.Ticker == nil {
		opts.Ticker = func() (<-chan time.Time, func()) {
			t := time.NewTicker(time.Second)
			return t.C, t.Stop
		}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.FinishedRetention <= 0 {
		opts.FinishedRetention = defaultRetention
	}
	return &ExamRuntime{
		sessions: sessions,
		cache:    cache,
		queue:    queue,
		events:   events,
		opts:     opts,
		log:      log.With().Str("component", "exam_runtime").Logger(),
		live:     make(map[uuid.UUID]*liveSession),
	}
}

func (r *ExamRuntime) get(id uuid.UUID) (*liveSession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ls, ok := r.live[id]
	return ls, ok
}

// Start begins (or rejoins) a candidate's exam and returns its state.
// A session that was already running, e.g. before a reconnect or a process
// restart, resumes with its remaining time and autosaved answers.
func (r *ExamRuntime) Start(ctx context.Context, sessionID uuid.UUID) (*model.CandidateExamState, error) {
	if ls, ok := r.get(sessionID); ok {
		return r.state(ls), r.finishedErr(ls)
	}

	row, err := r.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	if row.Status.Finished() {
		return nil, ErrSessionFinished
	}
	if submitted, err := r.cache.IsSubmitted(ctx, sessionID.String()); err == nil && submitted {
		return nil, ErrSessionFinished
	}

	now := r.opts.Now()
	if row.LinkExpired(now) {
		if err := r.sessions.UpdateStatus(ctx, sessionID, model.SessionStatusExpired); err != nil {
			r.log.Warn().Err(err).Str("session_id", sessionID.String()).Msg("Failed to expire stale session")
		}
		return nil, ErrExamLinkExpired
	}

	rows, err := r.sessions.ListQuestions(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNoQuestions
	}

	row, err = r.sessions.MarkStarted(ctx, sessionID, now)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionFinished
		}
		return nil, fmt.Errorf("mark started: %w", err)
	}

	questions := make([]engine.Question, len(rows))
	for i := range rows {
		questions[i] = rows[i].ToEngine()
	}

	// A recorded timer excludes time spent paused, so it wins over started_at.
	remaining, paused := row.RemainingSeconds(now), false
	if saved, ok, err := r.cache.LoadTimer(ctx, sessionID.String()); err != nil {
		r.log.Warn().Err(err).Str("session_id", sessionID.String()).Msg("Timer state unavailable, using started_at")
	} else if ok {
		remaining, paused = saved.RemainingAt(now), saved.Paused
	}
	answers, err := r.cache.LoadAnswers(ctx, sessionID.String())
	if err != nil {
		r.log.Warn().Err(err).Str("session_id", sessionID.String()).Msg("Autosave unavailable, resuming without answers")
	}

	ls := &liveSession{id: sessionID, candidateID: row.CandidateID, subs: make(map[int]chan RuntimeEvent)}
	ls.session = engine.NewSession(sessionID.String(), questions, row.DurationMinutes,
		engine.WithSubmitHook(func(sub engine.Submission) { r.onSubmit(ls, sub) }),
		engine.WithTimerHook(func(ev engine.TimerEvent) { r.onTimer(ls, ev) }),
		engine.WithAutoSubmitOnComplete(r.opts.AutoSubmitOnComplete),
		engine.WithEvaluator(engine.Evaluator{FuzzyThreshold: r.opts.FuzzyThreshold}),
		engine.WithClock(r.opts.Now),
	)
	ls.session.Start()
	ls.session.Restore(remaining, answers)
	if paused {
		ls.session.Pause()
	}

	r.mu.Lock()
	if existing, ok := r.live[sessionID]; ok {
		r.mu.Unlock()
		return r.state(existing), r.finishedErr(existing)
	}
	tickCtx, cancel := context.WithCancel(context.Background())
	ls.cancel = cancel
	r.live[sessionID] = ls
	r.mu.Unlock()

	r.log.Info().
		Str("session_id", sessionID.String()).
		Int("remaining_seconds", remaining).
		Int("restored_answers", len(answers)).
		Bool("paused", paused).
		Msg("Exam session started")
	r.publish(ls, "started", map[string]any{"remaining_seconds": remaining, "total_questions": len(questions)})

	ticks, stop := r.opts.Ticker()
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer stop()
		engine.Drive(tickCtx, ls.session, ticks)
	}()

	return r.state(ls), nil
}

// ResumeAll restarts every session the database still marks in progress.
// Sessions whose time ran out while the process was down expire on their first tick.
func (r *ExamRuntime) ResumeAll(ctx context.Context) (int, error) {
	rows, err := r.sessions.ListInProgress(ctx)
	if err != nil {
		return 0, err
	}
	resumed := 0
	for _, row := range rows {
		if _, err := r.Start(ctx, row.ID); err != nil {
			r.log.Warn().Err(err).Str("session_id", row.ID.String()).Msg("Failed to resume session")
			continue
		}
		resumed++
	}
	return resumed, nil
}

// Answer records value for the question at index.
func (r *ExamRuntime) Answer(ctx context.Context, sessionID uuid.UUID, index int, value string) (*engine.Snapshot, error) {
	ls, err := r.running(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	questions := ls.session.Questions()
	if index < 0 || index >= len(questions) {
		return nil, ErrQuestionOutOfRange
	}
	if !ls.session.SetAnswer(index, value) {
		return nil, r.rejected(ls)
	}

	stored, _ := ls.session.Answer(index)
	if err := r.cache.SaveAnswer(ctx, sessionID.String(), index, stored); err != nil {
		r.log.Warn().Err(err).Str("session_id", sessionID.String()).Msg("Autosave cache write failed")
	}

	qid, err := uuid.Parse(questions[index].ID)
	if err == nil {
		job := model.AnswerJob{SessionID: sessionID, QuestionID: qid, Index: index, Value: stored, AnsweredAt: r.opts.Now().UTC()}
		if err := r.queue.EnqueueAnswer(ctx, job); err != nil {
			r.log.Error().Err(err).Str("session_id", sessionID.String()).Msg("Failed to enqueue answer")
		}
	}

	snap := ls.session.Snapshot()
	r.publish(ls, "answer", map[string]any{"answered_count": snap.Stats.AnsweredCount, "total_questions": snap.Stats.TotalCount})
	return &snap, nil
}

// Navigate moves the candidate's current question.
func (r *ExamRuntime) Navigate(ctx context.Context, sessionID uuid.UUID, action NavigateAction, index int) (*engine.Snapshot, error) {
	ls, err := r.running(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	switch action {
	case NavigateGoTo:
		if !ls.session.GoTo(index) {
			if ls.session.Status().Terminal() {
				return nil, ErrSessionFinished
			}
			return nil, ErrQuestionOutOfRange
		}
	case NavigateNext:
		ls.session.Next()
	case NavigatePrevious:
		ls.session.Previous()
	default:
		return nil, ErrActionNotAllowed
	}

	snap := ls.session.Snapshot()
	return &snap, nil
}

// Submit finishes the session. Submitting twice returns the first
// submission together with ErrSessionFinished.
func (r *ExamRuntime) Submit(ctx context.Context, sessionID uuid.UUID) (*engine.Submission, error) {
	ls, ok := r.get(sessionID)
	if !ok {
		if _, err := r.running(ctx, sessionID); err != nil {
			return nil, err
		}
		return nil, ErrSessionNotActive
	}

	if sub, ok := ls.session.Submit(); ok {
		return &sub, nil
	}
	if sub, ok := ls.session.Submission(); ok {
		return &sub, ErrSessionFinished
	}
	return nil, ErrActionNotAllowed
}

// Pause freezes a running session's countdown and records the remaining time.
func (r *ExamRuntime) Pause(ctx context.Context, sessionID uuid.UUID) (*engine.Snapshot, error) {
	ls, err := r.running(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !ls.session.Pause() {
		return nil, r.rejected(ls)
	}

	snap := ls.session.Snapshot()
	r.saveTimer(ctx, ls, snap)
	ls.broadcast(RuntimeEvent{Type: EventState, Snapshot: &snap})
	r.publish(ls, "paused", map[string]any{"remaining_seconds": snap.Timer.RemainingSeconds})
	return &snap, nil
}

// Resume restarts a paused countdown.
func (r *ExamRuntime) Resume(ctx context.Context, sessionID uuid.UUID) (*engine.Snapshot, error) {
	ls, err := r.running(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !ls.session.Resume() {
		return nil, r.rejected(ls)
	}

	snap := ls.session.Snapshot()
	r.saveTimer(ctx, ls, snap)
	ls.broadcast(RuntimeEvent{Type: EventState, Snapshot: &snap})
	r.publish(ls, "resumed", map[string]any{"remaining_seconds": snap.Timer.RemainingSeconds})
	return &snap, nil
}

// State returns the candidate view of a live session.
func (r *ExamRuntime) State(ctx context.Context, sessionID uuid.UUID) (*model.CandidateExamState, error) {
	ls, ok := r.get(sessionID)
	if !ok {
		_, err := r.running(ctx, sessionID)
		return nil, err
	}
	return r.state(ls), nil
}

// Subscribe registers for runtime events of a live session. The channel is
// closed after the submitted event or when cancel is called.
func (r *ExamRuntime) Subscribe(sessionID uuid.UUID) (<-chan RuntimeEvent, func(), error) {
	ls, ok := r.get(sessionID)
	if !ok {
		return nil, nil, ErrSessionNotActive
	}

	ch := make(chan RuntimeEvent, subscriberBuffer)
	ls.mu.Lock()
	if ls.closed {
		ls.mu.Unlock()
		return nil, nil, ErrSessionFinished
	}
	id := ls.nextSub
	ls.nextSub++
	ls.subs[id] = ch
	ls.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			ls.mu.Lock()
			defer ls.mu.Unlock()
			if c, ok := ls.subs[id]; ok {
				delete(ls.subs, id)
				close(c)
			}
		})
	}
	return ch, cancel, nil
}

// ReportViolation queues a proctoring event for a session that is being taken.
func (r *ExamRuntime) ReportViolation(ctx context.Context, sessionID uuid.UUID, req model.ReportViolationRequest) error {
	ls, err := r.running(ctx, sessionID)
	if err != nil {
		return err
	}

	vt := model.ViolationType(req.ViolationType)
	sev := model.Severity(req.Severity)
	if sev == "" {
		sev = model.DefaultSeverity(vt)
	}
	v := model.SecurityViolation{
		ExamSessionID: sessionID,
		ViolationType: vt,
		Severity:      sev,
		Details:       req.Details,
		RecordedAt:    r.opts.Now().UTC(),
	}
	if err := r.queue.EnqueueViolation(ctx, v); err != nil {
		return fmt.Errorf("enqueue violation: %w", err)
	}
	r.publish(ls, "violation", v)
	return nil
}

// Shutdown stops every ticker, records remaining time so sessions resume
// where they left off, and waits for the tick goroutines to exit.
func (r *ExamRuntime) Shutdown(ctx context.Context) {
	r.mu.Lock()
	live := make([]*liveSession, 0, len(r.live))
	for _, ls := range r.live {
		live = append(live, ls)
	}
	r.mu.Unlock()

	for _, ls := range live {
		ls.cancel()
		if ls.session.Status() != engine.StatusInProgress {
			continue
		}
		r.saveTimer(ctx, ls, ls.session.Snapshot())
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
	r.log.Info().Int("sessions", len(live)).Msg("Exam runtime stopped")
}

// saveTimer records the countdown so a restart neither charges paused time
// nor restarts a paused clock.
func (r *ExamRuntime) saveTimer(ctx context.Context, ls *liveSession, snap engine.Snapshot) {
	state := model.TimerState{
		RemainingSeconds: snap.Timer.RemainingSeconds,
		Paused:           snap.Paused,
		SavedAt:          r.opts.Now(),
	}
	if err := r.cache.SaveTimer(ctx, ls.id.String(), state); err != nil {
		r.log.Warn().Err(err).Str("session_id", ls.id.String()).Msg("Failed to record timer")
	}
}

// LiveCount returns the number of sessions held in memory.
func (r *ExamRuntime) LiveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.live)
}

// running returns the live session or maps the stored status onto an error.
func (r *ExamRuntime) running(ctx context.Context, sessionID uuid.UUID) (*liveSession, error) {
	if ls, ok := r.get(sessionID); ok {
		if ls.session.Status().Terminal() {
			return nil, ErrSessionFinished
		}
		return ls, nil
	}

	row, err := r.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	if row.Status.Finished() {
		return nil, ErrSessionFinished
	}
	return nil, ErrSessionNotActive
}

func (r *ExamRuntime) rejected(ls *liveSession) error {
	if ls.session.Status().Terminal() {
		return ErrSessionFinished
	}
	return ErrActionNotAllowed
}

func (r *ExamRuntime) finishedErr(ls *liveSession) error {
	if ls.session.Status().Terminal() {
		return ErrSessionFinished
	}
	return nil
}

func (r *ExamRuntime) state(ls *liveSession) *model.CandidateExamState {
	return &model.CandidateExamState{
		Snapshot:        ls.session.Snapshot(),
		DurationMinutes: ls.session.DurationMinutes(),
		Questions:       model.NewCandidateQuestions(ls.session.Questions()),
	}
}

func (r *ExamRuntime) onTimer(ls *liveSession, ev engine.TimerEvent) {
	ls.broadcast(RuntimeEvent{Type: EventTimer, Timer: &ev})
	r.publish(ls, "timer_"+string(ev.Kind), ev)
}

// onSubmit runs exactly once per session, on whichever goroutine finished it.
func (r *ExamRuntime) onSubmit(ls *liveSession, sub engine.Submission) {
	ctx, cancel := context.WithTimeout(context.Background(), hookTimeout)
	defer cancel()

	logger := r.log.With().Str("session_id", sub.SessionID).Str("status", string(sub.Status)).Logger()

	if err := r.cache.MarkSubmitted(ctx, sub.SessionID); err != nil {
		logger.Warn().Err(err).Msg("Failed to mark session submitted")
	}
	if err := r.queue.EnqueueSubmission(ctx, model.SubmissionJob{CandidateID: ls.candidateID, Submission: sub}); err != nil {
		logger.Error().Err(err).Msg("Failed to enqueue submission")
	}

	logger.Info().
		Int("score", sub.TotalAutoScore).
		Int("max_score", sub.MaxScore).
		Int("answered", len(sub.Answers)).
		Msg("Exam session finished")

	r.publish(ls, "submitted", map[string]any{
		"status":    model.SessionStatusFromEngine(sub.Status),
		"score":     sub.TotalAutoScore,
		"max_score": sub.MaxScore,
	})

	ls.broadcast(RuntimeEvent{Type: EventSubmitted, Submission: &sub})
	ls.closeSubscribers()
	if ls.cancel != nil {
		ls.cancel()
	}

	time.AfterFunc(r.opts.FinishedRetention, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.live[ls.id] == ls {
			delete(r.live, ls.id)
		}
	})
}

func (r *ExamRuntime) publish(ls *liveSession, kind string, data any) {
	if r.events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), hookTimeout)
	defer cancel()

	ev := MonitorEvent{Type: kind, SessionID: ls.id.String(), Data: data, At: r.opts.Now().UTC()}
	if err := r.events.Publish(ctx, ev); err != nil {
		r.log.Debug().Err(err).Str("event", kind).Msg("Monitor publish failed")
	}
}
