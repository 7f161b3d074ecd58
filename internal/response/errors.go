package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"
	ErrEmailTaken         ErrCode = "EMAIL_ALREADY_REGISTERED"
	ErrAccountInactive    ErrCode = "ACCOUNT_INACTIVE"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden          ErrCode = "FORBIDDEN"
	ErrAccessDenied       ErrCode = "ACCESS_DENIED"
	ErrStudentAccessOnly  ErrCode = "STUDENT_ACCESS_ONLY"
	ErrInstructorOnly     ErrCode = "INSTRUCTOR_ACCESS_ONLY"
	ErrAdminAccessOnly    ErrCode = "ADMIN_ACCESS_ONLY"
	ErrCourseNotPurchased ErrCode = "COURSE_NOT_PURCHASED"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// ─── Quiz / Attempt lifecycle ──────────────────────────────────────
	ErrQuizInactive        ErrCode = "QUIZ_INACTIVE"
	ErrAlreadySubmitted    ErrCode = "ALREADY_SUBMITTED"
	ErrPrerequisiteNotMet  ErrCode = "PREREQUISITE_NOT_MET"
	ErrAttemptLimit        ErrCode = "ATTEMPT_LIMIT_EXCEEDED"
	ErrTimeLimitExceeded   ErrCode = "TIME_LIMIT_EXCEEDED"
	ErrInvalidQuestionType ErrCode = "INVALID_QUESTION_TYPE"

	// ─── Collaborators ─────────────────────────────────────────────────
	ErrDependency ErrCode = "DEPENDENCY_ERROR"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
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
	case ErrEmailTaken:
		return "This email address is already registered."
	case ErrAccountInactive:
		return "This account has been deactivated."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrAccessDenied:
		return "Access denied."
	case ErrStudentAccessOnly:
		return "This resource is restricted to students."
	case ErrInstructorOnly:
		return "This resource is restricted to instructors."
	case ErrAdminAccessOnly:
		return "This resource is restricted to administrators."
	case ErrCourseNotPurchased:
		return "You need to purchase this course to access it."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "The requested resource was not found."
	case ErrConflict:
		return "The resource already exists."

	// ─── Quiz / Attempt lifecycle ──────────────────────────────────────
	case ErrQuizInactive:
		return "This quiz is not available."
	case ErrAlreadySubmitted:
		return "This quiz attempt has already been submitted."
	case ErrPrerequisiteNotMet:
		return "You must complete the corresponding lecture before attempting this quiz."
	case ErrAttemptLimit:
		return "The maximum number of attempts for this quiz has been reached."
	case ErrTimeLimitExceeded:
		return "Time limit exceeded. Quiz submission rejected."
	case ErrInvalidQuestionType:
		return "Only questions that require manual review can be reviewed."

	// ─── Collaborators ─────────────────────────────────────────────────
	case ErrDependency:
		return "A dependent service failed. Please try again."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
