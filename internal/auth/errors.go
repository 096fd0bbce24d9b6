package auth

import "net/http"

// Error is a client-facing domain error: an HTTP status, a stable translatable
// message key and the offending request field. It never carries internals.
type Error struct {
	Status  int    `json:"-"`
	Message string `json:"message"`
	Path    string `json:"path,omitempty"`
}

func (e *Error) Error() string { return e.Message }

// Unauthorized builds a 401 error with the given message key.
func Unauthorized(message string) *Error {
	return &Error{Status: http.StatusUnauthorized, Message: message}
}

var (
	ErrInvalidOTP         = &Error{Status: http.StatusUnprocessableEntity, Message: "Error.InvalidOTP", Path: "code"}
	ErrOTPExpired         = &Error{Status: http.StatusUnprocessableEntity, Message: "Error.OTPExpired", Path: "code"}
	ErrFailedToSendOTP    = &Error{Status: http.StatusUnprocessableEntity, Message: "Error.FailedToSendOTP", Path: "code"}
	ErrInvalidOTPType     = &Error{Status: http.StatusUnprocessableEntity, Message: "Error.InvalidOTPType", Path: "type"}
	ErrEmailAlreadyExists = &Error{Status: http.StatusUnprocessableEntity, Message: "Error.EmailAlreadyExists", Path: "email"}
	ErrEmailNotFound      = &Error{Status: http.StatusUnprocessableEntity, Message: "Error.EmailNotFound", Path: "email"}
	ErrInvalidPassword    = &Error{Status: http.StatusUnprocessableEntity, Message: "Error.InvalidPassword", Path: "password"}
	ErrInvalidTempID      = &Error{Status: http.StatusUnprocessableEntity, Message: "Error.InvalidTempId", Path: "tempId"}
	ErrInvalidTempSession = &Error{Status: http.StatusUnprocessableEntity, Message: "Error.InvalidTempSession", Path: "tempSessionId"}
	ErrTOTPAlreadyEnabled = &Error{Status: http.StatusUnprocessableEntity, Message: "Error.TOTPAlreadyEnabled", Path: "totpCode"}
	ErrTOTPNotEnabled     = &Error{Status: http.StatusUnprocessableEntity, Message: "Error.TOTPNotEnabled", Path: "totpCode"}
	ErrInvalidTOTPToken   = &Error{Status: http.StatusUnprocessableEntity, Message: "Error.InvalidTOTPToken", Path: "token"}
)
