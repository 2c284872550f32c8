package websocket

import (
	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/engine"
	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/model"
)

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionAnswer    Action = "answer"
	ActionGoTo      Action = "goto"
	ActionNext      Action = "next"
	ActionPrevious  Action = "previous"
	ActionSubmit    Action = "submit"
	ActionState     Action = "state"
	ActionPing      Action = "ping"
	ActionViolation Action = "violation"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// AnswerRequest records the answer for one question.
type AnswerRequest struct {
	Action Action `json:"action"`
	Index  int    `json:"index"`
	Value  string `json:"value"`
}

// GoToRequest jumps to a question by index.
type GoToRequest struct {
	Action Action `json:"action"`
	Index  int    `json:"index"`
}

// ViolationRequest reports a proctoring signal from the browser.
type ViolationRequest struct {
	Action        Action `json:"action"`
	ViolationType string `json:"violation_type"`
	Severity      string `json:"severity,omitempty"`
	Details       string `json:"details,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventState     Event = "state"
	EventTimer     Event = "timer"
	EventSubmitted Event = "submitted"
	EventSuccess   Event = "success"
	EventError     Event = "error"
	EventPong      Event = "pong"
)

// StateResponse carries the full candidate view after a change or on request.
type StateResponse struct {
	Event Event                     `json:"event"`
	State *model.CandidateExamState `json:"state,omitempty"`
}

// SnapshotResponse carries the engine snapshot after an answer or move.
type SnapshotResponse struct {
	Event    Event            `json:"event"`
	Snapshot *engine.Snapshot `json:"snapshot"`
}

// TimerResponse is pushed when the countdown crosses a threshold.
type TimerResponse struct {
	Event Event             `json:"event"`
	Timer engine.TimerEvent `json:"timer"`
}

// SubmittedResponse is the final message before the server closes the stream.
type SubmittedResponse struct {
	Event   Event                   `json:"event"`
	Receipt model.SubmissionReceipt `json:"receipt"`
}

type SuccessResponse struct {
	Event  Event  `json:"event"`
	Action Action `json:"action"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Code  string `json:"code"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
