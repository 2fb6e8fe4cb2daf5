package response

// ErrCode is a typed error code enum for consistent error identification
// across HTTP responses and WebSocket error events.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrTokenRequired ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid  ErrCode = "TOKEN_INVALID"
	ErrTokenExpired  ErrCode = "TOKEN_EXPIRED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrUnauthorizedAccess ErrCode = "UNAUTHORIZED_ACCESS"
	ErrStudentAccessOnly  ErrCode = "STUDENT_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation          ErrCode = "VALIDATION_ERROR"
	ErrInvalidID           ErrCode = "INVALID_ID"
	ErrInvalidPayload      ErrCode = "INVALID_PAYLOAD"
	ErrUnsupportedLanguage ErrCode = "UNSUPPORTED_LANGUAGE"

	// ─── Attempt state ─────────────────────────────────────────────────
	ErrAttemptNotFound         ErrCode = "ATTEMPT_NOT_FOUND"
	ErrExamSetNotFound         ErrCode = "EXAM_SET_NOT_FOUND"
	ErrQuestionNotFound        ErrCode = "QUESTION_NOT_FOUND"
	ErrExamAlreadyEnded        ErrCode = "EXAM_ALREADY_ENDED"
	ErrAttemptLimitReached     ErrCode = "ATTEMPT_LIMIT_REACHED"
	ErrAttemptInProgress       ErrCode = "ATTEMPT_IN_PROGRESS"
	ErrQuestionAlreadyAnswered ErrCode = "QUESTION_ALREADY_ANSWERED"

	// ─── Grading ───────────────────────────────────────────────────────
	ErrGradingFailed ErrCode = "GRADING_FAILED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrOperationFailed ErrCode = "OPERATION_FAILED"
	ErrInternal        ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable description for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid."
	case ErrTokenExpired:
		return "The authentication token has expired."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrUnauthorizedAccess:
		return "You do not own this exam attempt."
	case ErrStudentAccessOnly:
		return "This resource is restricted to students."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "The identifier format is invalid."
	case ErrInvalidPayload:
		return "The request payload is malformed."
	case ErrUnsupportedLanguage:
		return "The question's programming language is not supported."

	// ─── Attempt state ─────────────────────────────────────────────────
	case ErrAttemptNotFound:
		return "The exam attempt was not found."
	case ErrExamSetNotFound:
		return "The exam set was not found."
	case ErrQuestionNotFound:
		return "The question was not found."
	case ErrExamAlreadyEnded:
		return "This exam attempt has already ended."
	case ErrAttemptLimitReached:
		return "This exam set allows only one attempt."
	case ErrAttemptInProgress:
		return "An attempt for this exam set is still in progress."
	case ErrQuestionAlreadyAnswered:
		return "This question has already been answered."

	// ─── Grading ───────────────────────────────────────────────────────
	case ErrGradingFailed:
		return "The answer could not be graded. Please try again."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrOperationFailed:
		return "The operation failed. Please try again."
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
