package api

import (
	"encoding/json"
	"fmt"
)

// ErrorCode discriminates the error taxonomy of the service
type ErrorCode int

// Error codes as mapped from HTTP statuses and builder failures
const (
	GeneralError ErrorCode = iota
	BadRequest
	AuthorizationRequired
	NotAllowed
	NotFound
	AlreadyExists
	RateLimited
	InvalidConfiguration
	InvalidSignatureScheme
	InvalidTransformation
	InvalidURLSuffix
	InvalidTokenRequest
)

var errorCodeNames = map[ErrorCode]string{
	GeneralError:           "general error",
	BadRequest:             "bad request",
	AuthorizationRequired:  "authorization required",
	NotAllowed:             "not allowed",
	NotFound:               "not found",
	AlreadyExists:          "already exists",
	RateLimited:            "rate limited",
	InvalidConfiguration:   "invalid configuration",
	InvalidSignatureScheme: "invalid signature scheme",
	InvalidTransformation:  "invalid transformation",
	InvalidURLSuffix:       "invalid url suffix",
	InvalidTokenRequest:    "invalid token request",
}

func (c ErrorCode) String() string {
	if s, ok := errorCodeNames[c]; ok {
		return s
	}
	return "unknown error"
}

// Error is an error from the API or from one of the builders
type Error struct {
	Code     ErrorCode
	HTTPCode int    // status code for API errors, 0 otherwise
	Message  string // server or builder supplied message
	Cause    error  // underlying transport or decode error, if any
}

// Error satisfies the error interface
func (e *Error) Error() string {
	if e.HTTPCode != 0 {
		return fmt.Sprintf("%s (%d): %s", e.Code, e.HTTPCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause to errors.Is/As
func (e *Error) Unwrap() error { return e.Cause }

// NewError makes a builder error with the given code
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// NewErrorf makes a builder error with a formatted message
func NewErrorf(code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// statusCodes maps HTTP statuses to error codes
var statusCodes = map[int]ErrorCode{
	400: BadRequest,
	401: AuthorizationRequired,
	403: NotAllowed,
	404: NotFound,
	409: AlreadyExists,
	420: RateLimited,
	429: RateLimited,
	500: GeneralError,
}

// ErrorFromStatus makes an API error from an HTTP status and server message
func ErrorFromStatus(status int, message string) *Error {
	code, ok := statusCodes[status]
	if !ok {
		code = GeneralError
	}
	return &Error{Code: code, HTTPCode: status, Message: message}
}

// ErrorMessage extracts the server message from a standard error
// body, `{"error": {"message": "..."}}`, or returns "" when the body
// has some other shape
func ErrorMessage(body []byte) string {
	var parsed struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return ""
	}
	return parsed.Error.Message
}

// IsError returns the *Error if err is one, or nil
func IsError(err error) *Error {
	if e, ok := err.(*Error); ok {
		return e
	}
	return nil
}

// TransportError coerces transport and decode failures into the
// taxonomy as GeneralError, keeping the cause attached.  Errors
// already carrying a code pass through unchanged.  status is the HTTP
// status when a response was received, 0 otherwise.
func TransportError(status int, err error) error {
	if err == nil {
		return nil
	}
	if e := IsError(err); e != nil {
		return e
	}
	return &Error{Code: GeneralError, HTTPCode: status, Message: err.Error(), Cause: err}
}
