// Package errs defines the error shapes returned to API clients.
//
// Every failure a handler reports ends up as an *HTTPError, which the
// global error handler serializes as:
//
//	{"code":"BAD_REQUEST","message":"...","status":400,"override":false,"errors":[...],"action":null}
package errs

import "strings"

// FieldError is a per-parameter validation failure.
//
//	{ "field": "latitude", "error": "must be at most 90" }
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// ActionType is a hint for what the client should do next.
type ActionType string

const (
	// ActionTypeRetry tells the client the request may succeed later.
	// Value holds the suggested delay in seconds.
	ActionTypeRetry ActionType = "retry"
)

// Action is an optional client instruction attached to an error.
type Action struct {
	Type    ActionType `json:"type"`
	Message string     `json:"message"`
	Value   string     `json:"value"`
}

// HTTPError is the API error body.
//
//   - Code: machine readable code (e.g. "INTERSECTION_NOT_FOUND").
//   - Message: human readable message.
//   - Status: HTTP status code.
//   - Override: when false, the error handler may replace Message with a
//     generic one (database errors in production).
//   - Errors: field level validation errors.
//   - Action: optional client instruction.
type HTTPError struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Status   int    `json:"status"`
	Override bool   `json:"override"`

	Errors []FieldError `json:"errors"`

	Action *Action `json:"action"`

	// cause is logged with the error and never serialized.
	cause error
}

func (e *HTTPError) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.cause
}

// WithCause returns a copy of e that wraps err.
func (e *HTTPError) WithCause(err error) *HTTPError {
	c := *e
	c.cause = err
	return &c
}

// Is reports whether target is an *HTTPError of any code.
func (e *HTTPError) Is(target error) bool {
	_, ok := target.(*HTTPError)
	return ok
}

// WithMessage returns a copy of e carrying message.
func (e *HTTPError) WithMessage(message string) *HTTPError {
	return &HTTPError{
		Code:     e.Code,
		Message:  message,
		Status:   e.Status,
		Override: e.Override,
		Errors:   e.Errors,
		Action:   e.Action,
		cause:    e.cause,
	}
}

// MakeUpperCaseWithUnderscores turns "Bad Request" into "BAD_REQUEST".
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
