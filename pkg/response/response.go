// Package response defines the JSON envelope every HTTP surface of the
// platform returns: {success, data, error, meta}. Handlers build envelopes
// through the constructors here so error codes stay consistent between the
// gateway, the mailer and the provisioning endpoints.
package response

import "net/http"

// Response is the envelope wrapping every API payload.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// ErrorInfo carries a machine-readable code alongside the human message.
type ErrorInfo struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// Meta describes the page window of a list payload.
type Meta struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// Error codes the platform emits. Generic codes mirror their HTTP status;
// the business codes carry agency and provisioning semantics.
const (
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeTooManyRequests    = "TOO_MANY_REQUESTS"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"

	ErrCodeValidationFailed   = "VALIDATION_FAILED"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeUserInactive       = "USER_INACTIVE"
	ErrCodeEmailExists        = "EMAIL_EXISTS"
	ErrCodeAgencyExists       = "AGENCY_EXISTS"
	ErrCodeInvalidSlug        = "INVALID_SLUG"
	ErrCodeSendFailed         = "SEND_FAILED"
)

// codeInfo binds an error code to its HTTP status and the message used
// when the caller does not supply one.
type codeInfo struct {
	status  int
	message string
}

var codes = map[string]codeInfo{
	ErrCodeBadRequest:         {http.StatusBadRequest, "Invalid request"},
	ErrCodeUnauthorized:       {http.StatusUnauthorized, "Authentication required"},
	ErrCodeForbidden:          {http.StatusForbidden, "Access denied"},
	ErrCodeNotFound:           {http.StatusNotFound, "Resource not found"},
	ErrCodeTooManyRequests:    {http.StatusTooManyRequests, "Too many requests, please try again later"},
	ErrCodeInternalError:      {http.StatusInternalServerError, "An internal error occurred"},
	ErrCodeServiceUnavailable: {http.StatusServiceUnavailable, "Service temporarily unavailable"},
	ErrCodeValidationFailed:   {http.StatusBadRequest, "Validation failed"},
	ErrCodeInvalidCredentials: {http.StatusUnauthorized, "Invalid email or password"},
	ErrCodeUserInactive:       {http.StatusForbidden, "Account is deactivated"},
	ErrCodeEmailExists:        {http.StatusConflict, "User with this email already exists"},
	ErrCodeAgencyExists:       {http.StatusConflict, "Agency with this slug already exists"},
	ErrCodeInvalidSlug:        {http.StatusBadRequest, "Slug must be lowercase letters, digits and hyphens"},
	ErrCodeSendFailed:         {http.StatusBadGateway, "Email delivery failed"},
}

// GetHTTPStatus maps an error code to its HTTP status. Unknown codes are
// treated as internal errors.
func GetHTTPStatus(code string) int {
	if info, ok := codes[code]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}

// Success wraps data in a success envelope.
func Success(data interface{}) *Response {
	return &Response{Success: true, Data: data}
}

// Error builds an error envelope with the given code and message.
func Error(code, message string) *Response {
	if message == "" {
		if info, ok := codes[code]; ok {
			message = info.message
		}
	}
	return &Response{
		Success: false,
		Error:   &ErrorInfo{Code: code, Message: message},
	}
}

// ErrorWithDetails builds an error envelope carrying per-field details,
// typically validation failures keyed by field name.
func ErrorWithDetails(code, message string, details map[string]string) *Response {
	resp := Error(code, message)
	resp.Error.Details = details
	return resp
}

// ValidationFailed reports request validation errors keyed by field.
func ValidationFailed(details map[string]string) *Response {
	return ErrorWithDetails(ErrCodeValidationFailed, "Validation failed", details)
}

// Shorthand constructors for the codes handlers raise most often. An empty
// message falls back to the code's default.

func BadRequest(message string) *Response         { return Error(ErrCodeBadRequest, message) }
func Unauthorized(message string) *Response       { return Error(ErrCodeUnauthorized, message) }
func Forbidden(message string) *Response          { return Error(ErrCodeForbidden, message) }
func NotFound(message string) *Response           { return Error(ErrCodeNotFound, message) }
func InternalError(message string) *Response      { return Error(ErrCodeInternalError, message) }
func InvalidCredentials(message string) *Response { return Error(ErrCodeInvalidCredentials, message) }
func TooManyRequests(message string) *Response    { return Error(ErrCodeTooManyRequests, message) }
func ServiceUnavailable(message string) *Response { return Error(ErrCodeServiceUnavailable, message) }

// PaginationParams is the page window a list endpoint was asked for.
type PaginationParams struct {
	Page    int
	PerPage int
}

// DefaultPagination is the window used when the caller sends none.
func DefaultPagination() PaginationParams {
	return PaginationParams{Page: 1, PerPage: 20}
}

// Paginated wraps a page of results with its Meta block.
func Paginated(data interface{}, page, perPage int, total int64) *Response {
	totalPages := int(total) / perPage
	if int(total)%perPage > 0 {
		totalPages++
	}
	return &Response{
		Success: true,
		Data:    data,
		Meta: &Meta{
			Page:       page,
			PerPage:    perPage,
			Total:      total,
			TotalPages: totalPages,
		},
	}
}

// PaginatedFromParams is Paginated with the window taken from params.
func PaginatedFromParams(data interface{}, params PaginationParams, total int64) *Response {
	return Paginated(data, params.Page, params.PerPage, total)
}
