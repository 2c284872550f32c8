package engine

const (
	// WarningThresholdSeconds is the remaining time at which the warning event fires.
	WarningThresholdSeconds = 300
	// CriticalThresholdSeconds is the remaining time at which the critical event fires.
	CriticalThresholdSeconds = 60
)

// WarningLevel is the coarse urgency shown next to the countdown.
type WarningLevel string

const (
	WarningLevelNone     WarningLevel = "none"
	WarningLevelWarning  WarningLevel = "warning"
	WarningLevelCritical WarningLevel = "critical"
)

// TimerEventKind enumerates the events a Timer can emit from Tick.
type TimerEventKind string

const (
	TimerEventWarning  TimerEventKind = "warning"
	TimerEventCritical TimerEventKind = "critical"
	TimerEventTimeUp   TimerEventKind = "time_up"
)

// TimerEvent is emitted when a tick crosses a threshold.
type TimerEvent struct {
	Kind             TimerEventKind `json:"kind"`
	RemainingSeconds int            `json:"remaining_seconds"`
}

// TimerDisplay is the display contract for the countdown widget.
type TimerDisplay struct {
	RemainingSeconds int          `json:"remaining_seconds"`
	WarningLevel     WarningLevel `json:"warning_level"`
}

// Timer is a tick-driven countdown. It never reads the wall clock: the
// caller decides when a second has passed by calling Tick.
type Timer struct {
	total     int
	remaining int
	active    bool
	expired   bool
}

// Start arms the timer for durationMinutes and activates it.
// A non-positive duration expires on the first tick.
func (t *Timer) Start(durationMinutes int) {
	total := durationMinutes * 60
	if total < 0 {
		total = 0
	}
	t.total = total
	t.remaining = total
	t.active = true
	t.expired = false
}

// Tick advances the clock by one second. It returns the event crossed by
// this tick, if any. Ticks while paused or after expiry are no-ops.
func (t *Timer) Tick() (TimerEvent, bool) {
	if !t.active || t.expired {
		return TimerEvent{}, false
	}

	t.remaining--

	if t.remaining <= 0 {
		t.remaining = 0
		t.active = false
		t.expired = true
		return TimerEvent{Kind: TimerEventTimeUp, RemainingSeconds: 0}, true
	}

	switch t.remaining {
	case WarningThresholdSeconds:
		return TimerEvent{Kind: TimerEventWarning, RemainingSeconds: t.remaining}, true
	case CriticalThresholdSeconds:
		return TimerEvent{Kind: TimerEventCritical, RemainingSeconds: t.remaining}, true
	}
	return TimerEvent{}, false
}

// Pause stops decrements without touching any other state.
func (t *Timer) Pause() {
	t.active = false
}

// Resume re-activates a paused timer. An expired timer stays expired.
func (t *Timer) Resume() {
	if t.expired {
		return
	}
	t.active = true
}

// Stop deactivates the timer permanently, e.g. after a manual submit.
func (t *Timer) Stop() {
	t.active = false
	t.expired = true
}

// Restore sets the remaining seconds for a resumed session, clamped to [0, total].
func (t *Timer) Restore(remainingSeconds int) {
	if remainingSeconds < 0 {
		remainingSeconds = 0
	}
	if remainingSeconds > t.total {
		remainingSeconds = t.total
	}
	t.remaining = remainingSeconds
}

func (t *Timer) Remaining() int { return t.remaining }
func (t *Timer) Total() int     { return t.total }
func (t *Timer) Active() bool   { return t.active }
func (t *Timer) Expired() bool  { return t.expired }

// Elapsed returns the seconds consumed so far.
func (t *Timer) Elapsed() int {
	return t.total - t.remaining
}

// Progress returns the consumed fraction of the duration, in [0,1].
func (t *Timer) Progress() float64 {
	if t.total <= 0 {
		return 1
	}
	p := float64(t.total-t.remaining) / float64(t.total)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// Display returns the countdown view. The level follows the remaining
// time, so a short exam that starts below a threshold shows it at once.
func (t *Timer) Display() TimerDisplay {
	level := WarningLevelNone
	switch {
	case t.remaining <= CriticalThresholdSeconds:
		level = WarningLevelCritical
	case t.remaining <= WarningThresholdSeconds:
		level = WarningLevelWarning
	}
	return TimerDisplay{RemainingSeconds: t.remaining, WarningLevel: level}
}
