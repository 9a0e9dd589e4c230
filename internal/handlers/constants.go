package handlers

const (
	ErrInvalidFormData       = "Invalid form data"
	ErrInvalidJSON           = "Invalid JSON body"
	ErrUnauthorizedAPI       = "Unauthorized: Authentication required"
	ErrForbiddenAPI          = "Forbidden: You don't have permission to access this API"
	ErrInvalidCSRF           = "Invalid CSRF token"
	ErrTooManyRequests       = "Too many requests"
	ErrQuestionNotFound      = "Question not found"
	ErrInternalServerError   = "Internal server error"
	ErrInternalServerErrorUC = "Internal Server Error"

	CSRFFormField  = "csrf_token"
	CSRFHeaderName = "X-CSRF-Token"
)
