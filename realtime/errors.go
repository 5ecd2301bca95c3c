package realtime

import (
	"errors"

	"github.com/michat/michat-api/databases"
)

// Code identifies a routing error class. Codes travel to clients verbatim in
// error frames and map onto HTTP statuses on the REST send path.
type Code string

// Routing error codes
const (
	CodeUnauthorized   Code = "unauthorized"
	CodeForbidden      Code = "forbidden"
	CodeMuted          Code = "muted"
	CodeInvalidPayload Code = "invalid_payload"
	CodeInvalidTarget  Code = "invalid_target"
	CodeValidation     Code = "validation_error"
	CodeNotFound       Code = "not_found"
	CodeUnavailable    Code = "unavailable"
)

// Error is a routing failure with a wire-visible code. Validation and
// admission failures stay local to the offending connection; only
// CodeForbidden and CodeUnauthorized escalate to connection termination.
type Error struct {
	Code   Code
	Detail string
}

func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Detail
}

// NewError builds a routing error
func NewError(code Code, detail string) *Error {
	return &Error{Code: code, Detail: detail}
}

// CodeOf extracts the routing code from err, or CodeUnavailable for plain
// storage/transport failures
func CodeOf(err error) Code {
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr.Code
	}
	return CodeUnavailable
}

// Fatal reports whether the error must terminate the connection
func Fatal(err error) bool {
	code := CodeOf(err)
	return code == CodeForbidden || code == CodeUnauthorized
}

// fromStore translates message store failures into routing errors
func fromStore(err error) *Error {
	switch {
	case errors.Is(err, databases.ErrEmptyContent), errors.Is(err, databases.ErrContentTooLong):
		return NewError(CodeValidation, err.Error())
	case errors.Is(err, databases.ErrNotFound):
		return NewError(CodeNotFound, err.Error())
	default:
		return NewError(CodeUnavailable, "message store unavailable")
	}
}
