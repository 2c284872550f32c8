package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden           ErrCode = "FORBIDDEN"
	ErrPermissionDenied    ErrCode = "PERMISSION_DENIED"
	ErrCandidateAccessOnly ErrCode = "CANDIDATE_ACCESS_ONLY"
	ErrAdminAccessOnly     ErrCode = "ADMIN_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// ─── Exam-specific ─────────────────────────────────────────────────
	ErrInvalidExamToken   ErrCode = "INVALID_EXAM_TOKEN"
	ErrExamNotStarted     ErrCode = "EXAM_NOT_STARTED"
	ErrExamFinished       ErrCode = "EXAM_FINISHED"
	ErrExamTokenExpired   ErrCode = "EXAM_TOKEN_EXPIRED"
	ErrNoQuestions        ErrCode = "NO_QUESTIONS"
	ErrNotEnoughQuestions ErrCode = "NOT_ENOUGH_QUESTIONS"
	ErrQuestionIndex      ErrCode = "QUESTION_INDEX_OUT_OF_RANGE"
	ErrActionRejected     ErrCode = "ACTION_REJECTED"
	ErrResultPending      ErrCode = "RESULT_PENDING"
	ErrSessionInvalidated ErrCode = "SESSION_INVALIDATED"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal    ErrCode = "INTERNAL_ERROR"
	ErrUnavailable ErrCode = "SERVICE_UNAVAILABLE"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Invalid email or password."
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid."
	case ErrTokenExpired:
		return "The authentication token has expired."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You are not allowed to access this resource."
	case ErrPermissionDenied:
		return "Permission denied."
	case ErrCandidateAccessOnly:
		return "This resource is restricted to exam candidates."
	case ErrAdminAccessOnly:
		return "This resource is restricted to administrators."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrConflict:
		return "Resource already exists."

	// ─── Exam-specific ─────────────────────────────────────────────────
	case ErrInvalidExamToken:
		return "The exam token is not valid."
	case ErrExamNotStarted:
		return "The exam has not been started."
	case ErrExamFinished:
		return "The exam has already been submitted or has expired."
	case ErrExamTokenExpired:
		return "The exam link has expired."
	case ErrNoQuestions:
		return "The exam has no questions."
	case ErrNotEnoughQuestions:
		return "Not enough questions are available for this exam."
	case ErrQuestionIndex:
		return "The question index is out of range."
	case ErrActionRejected:
		return "The action is not allowed in the current exam state."
	case ErrResultPending:
		return "The exam result is still being processed."
	case ErrSessionInvalidated:
		return "This exam was opened in another window. Please continue there."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	case ErrUnavailable:
		return "A backing service is unavailable."
	default:
		return "An unexpected error occurred."
	}
}
