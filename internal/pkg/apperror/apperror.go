package apperror

import "net/http"

// AppError is a custom error type that includes an HTTP status code and an optional internal error code.
type AppError struct {
	Code    int    // HTTP Status Code (e.g., 400, 422)
	Message string // User-facing error message
	Err     error  // The underlying error, if any (not exposed to user)
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with a status code and message.
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new AppError wrapping an existing error.
func Wrap(err error, code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// BadRequest wraps err as a 400 carrying err's own message.
func BadRequest(err error) *AppError {
	return Wrap(err, http.StatusBadRequest, err.Error())
}

// Unprocessable wraps err as a 422 carrying err's own message.
func Unprocessable(err error) *AppError {
	return Wrap(err, http.StatusUnprocessableEntity, err.Error())
}
