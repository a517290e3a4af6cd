package response

// Error codes shared by handlers and middleware
const (
	ErrCodeBadRequest        = "BAD_REQUEST"
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeUnauthorized      = "UNAUTHORIZED"
	ErrCodeForbidden         = "FORBIDDEN"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeConflict          = "CONFLICT"
	ErrCodeInvalidTransition = "INVALID_TRANSITION"
	ErrCodeActiveBookings    = "HAS_ACTIVE_BOOKINGS"
	ErrCodeNotBookable       = "EXPERIENCE_NOT_BOOKABLE"
	ErrCodeInternal          = "INTERNAL_ERROR"
	ErrCodeUnavailable       = "SERVICE_UNAVAILABLE"
)

// Response is the JSON envelope for every API reply
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorData `json:"error,omitempty"`
	Meta    any        `json:"meta,omitempty"`
}

// ErrorData describes a failed request
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// PaginationMeta is attached to list responses
type PaginationMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

func Success(data any) Response {
	return Response{Success: true, Data: data}
}

// Paginated wraps a page of items with pagination metadata
func Paginated(items any, page, limit int, total int64) Response {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Response{
		Success: true,
		Data:    items,
		Meta: PaginationMeta{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}
}

func Error(code, message string) Response {
	return Response{Success: false, Error: &ErrorData{Code: code, Message: message}}
}

// ErrorWithDetails adds a free-form hint to an error reply
func ErrorWithDetails(code, message, details string) Response {
	return Response{Success: false, Error: &ErrorData{Code: code, Message: message, Details: details}}
}

func BadRequest(message string) Response {
	return Error(ErrCodeBadRequest, message)
}

func NotFound(message string) Response {
	return Error(ErrCodeNotFound, message)
}

func Unauthorized(message string) Response {
	return Error(ErrCodeUnauthorized, message)
}

func Forbidden(message string) Response {
	return Error(ErrCodeForbidden, message)
}

func Conflict(message string) Response {
	return Error(ErrCodeConflict, message)
}

func InternalError(message string) Response {
	return Error(ErrCodeInternal, message)
}
