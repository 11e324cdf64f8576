package errs

import (
	"net/http"
)

// Settlement error codes. Clients switch on these rather than on messages.
const (
	CodeInvalidAmount       = "INVALID_AMOUNT"
	CodeInsufficientBalance = "INSUFFICIENT_BALANCE"
	CodeInvalidTransition   = "INVALID_TRANSITION"
	CodeInvalidState        = "INVALID_STATE"
)

// NewUnauthorizedError creates a 401 Unauthorized HTTPError.
func NewUnauthorizedError(message string, override bool) *HTTPError {
	return &HTTPError{
		Code:     MakeUpperCaseWithUnderscores(http.StatusText(http.StatusUnauthorized)),
		Message:  message,
		Status:   http.StatusUnauthorized,
		Override: override,
	}
}

// NewForbiddenError creates a 403 Forbidden HTTPError.
func NewForbiddenError(message string, override bool) *HTTPError {
	return &HTTPError{
		Code:     MakeUpperCaseWithUnderscores(http.StatusText(http.StatusForbidden)),
		Message:  message,
		Status:   http.StatusForbidden,
		Override: override,
	}
}

// NewBadRequestError creates a 400 Bad Request HTTPError. A nil code defaults
// to BAD_REQUEST.
func NewBadRequestError(message string, override bool, code *string, errors []FieldError, action *Action) *HTTPError {
	formattedCode := MakeUpperCaseWithUnderscores(http.StatusText(http.StatusBadRequest))

	if code != nil {
		formattedCode = *code
	}

	return &HTTPError{
		Code:     formattedCode,
		Message:  message,
		Status:   http.StatusBadRequest,
		Override: override,
		Errors:   errors,
		Action:   action,
	}
}

// NewNotFoundError creates a 404 Not Found HTTPError. A nil code defaults to
// NOT_FOUND.
func NewNotFoundError(message string, override bool, code *string) *HTTPError {
	formattedCode := MakeUpperCaseWithUnderscores(http.StatusText(http.StatusNotFound))

	if code != nil {
		formattedCode = *code
	}

	return &HTTPError{
		Code:     formattedCode,
		Message:  message,
		Status:   http.StatusNotFound,
		Override: override,
	}
}

// NewConflictError creates a 409 Conflict HTTPError for requests that are
// well-formed but clash with the current state of a resource.
func NewConflictError(message string, override bool, code *string) *HTTPError {
	formattedCode := MakeUpperCaseWithUnderscores(http.StatusText(http.StatusConflict))

	if code != nil {
		formattedCode = *code
	}

	return &HTTPError{
		Code:     formattedCode,
		Message:  message,
		Status:   http.StatusConflict,
		Override: override,
	}
}

// NewInternalServerError creates a generic 500. The real cause is logged by
// the global error handler, never sent to the client.
func NewInternalServerError() *HTTPError {
	return &HTTPError{
		Code:     MakeUpperCaseWithUnderscores(http.StatusText(http.StatusInternalServerError)),
		Message:  http.StatusText(http.StatusInternalServerError),
		Status:   http.StatusInternalServerError,
		Override: false,
	}
}

// ValidationError converts a generic validation error into a 400.
func ValidationError(err error) *HTTPError {
	return NewBadRequestError("Validation failed: "+err.Error(), false, nil, nil, nil)
}

// InvalidAmount is returned when a requested amount breaks a policy floor.
func InvalidAmount(message string) *HTTPError {
	code := CodeInvalidAmount
	return NewBadRequestError(message, true, &code, nil, nil)
}

// InsufficientBalance is returned when a withdrawal exceeds what is available.
func InsufficientBalance(message string) *HTTPError {
	code := CodeInsufficientBalance
	return NewConflictError(message, true, &code)
}

// InvalidTransition is returned when a status change is not allowed.
func InvalidTransition(message string) *HTTPError {
	code := CodeInvalidTransition
	return NewConflictError(message, true, &code)
}

// InvalidState is returned when an operation needs a different current state.
func InvalidState(message string) *HTTPError {
	code := CodeInvalidState
	return NewConflictError(message, true, &code)
}

// NotFound builds a 404 with an ENTITY_NOT_FOUND code, e.g. NotFound("withdrawal").
func NotFound(entity string) *HTTPError {
	code := MakeUpperCaseWithUnderscores(entity) + "_NOT_FOUND"
	return NewNotFoundError(capitalize(entity)+" not found", true, &code)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	if c := s[0]; c >= 'a' && c <= 'z' {
		return string(c-'a'+'A') + s[1:]
	}
	return s
}

// NewTooManyRequestsError creates a 429 returned by the rate limiter.
func NewTooManyRequestsError(message string) *HTTPError {
	return &HTTPError{
		Code:     MakeUpperCaseWithUnderscores(http.StatusText(http.StatusTooManyRequests)),
		Message:  message,
		Status:   http.StatusTooManyRequests,
		Override: true,
	}
}
