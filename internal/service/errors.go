package service

import "errors"

// Domain errors returned by the exam services. Handlers map them onto
// response.ErrCode values.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidExamToken   = errors.New("invalid exam token")
	ErrExamLinkExpired    = errors.New("exam link expired")
	ErrSessionNotFound    = errors.New("exam session not found")
	ErrSessionNotActive   = errors.New("exam session is not running")
	ErrSessionFinished    = errors.New("exam session already finished")
	ErrSessionInvalidated = errors.New("exam session token superseded")
	ErrNoQuestions        = errors.New("exam session has no questions")
	ErrNotEnoughQuestions = errors.New("not enough questions in pool")
	ErrQuestionNotFound   = errors.New("question not found")
	ErrQuestionOutOfRange = errors.New("question index out of range")
	ErrResultPending      = errors.New("result not yet persisted")
	ErrActionNotAllowed   = errors.New("action not allowed in current state")
)

// ValidationError carries per-field messages for a rejected payload.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "validation failed"
}
