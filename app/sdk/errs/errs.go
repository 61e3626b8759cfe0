// Package errs provides types and support related to web error functionality.
package errs

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime"
)

// ErrCode represents an error code in the system.
type ErrCode struct {
	value int
}

// Value returns the integer value of the error code.
func (ec ErrCode) Value() int {
	return ec.value
}

// String returns the string representation of the error code.
func (ec ErrCode) String() string {
	return codeNames[ec]
}

// MarshalText implements the encoding.TextMarshaler interface.
func (ec ErrCode) MarshalText() ([]byte, error) {
	return []byte(ec.String()), nil
}

// Equal provides support for the go-cmp package and testing.
func (ec ErrCode) Equal(ec2 ErrCode) bool {
	return ec.value == ec2.value
}

// =============================================================================

// Error represents an error in the system.
type Error struct {
	Code     ErrCode           `json:"code"`
	Message  string            `json:"error"`
	Fields   map[string]string `json:"fields,omitempty"`
	Details  string            `json:"details,omitempty"`
	FuncName string            `json:"-"`
	FileName string            `json:"-"`
}

// New constructs an error based on an app error.
func New(code ErrCode, err error) *Error {
	pc, filename, line, _ := runtime.Caller(1)

	e := Error{
		Code:     code,
		Message:  err.Error(),
		FuncName: runtime.FuncForPC(pc).Name(),
		FileName: fmt.Sprintf("%s:%d", filename, line),
	}

	var ae *Error
	switch {
	case errors.As(err, &ae):
		e.Fields = ae.Fields
	default:
		if fe := GetFieldErrors(err); fe != nil {
			e.Fields = fe.Fields()
		}
	}

	return &e
}

// Errorf constructs an error based on a error message.
func Errorf(code ErrCode, format string, v ...any) *Error {
	pc, filename, line, _ := runtime.Caller(1)

	return &Error{
		Code:     code,
		Message:  fmt.Sprintf(format, v...),
		FuncName: runtime.FuncForPC(pc).Name(),
		FileName: fmt.Sprintf("%s:%d", filename, line),
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Encode implements the encoder interface. Every error body carries
// success=false next to the message.
func (e *Error) Encode() ([]byte, string, error) {
	body := struct {
		Success bool              `json:"success"`
		Error   string            `json:"error"`
		Code    ErrCode           `json:"code"`
		Fields  map[string]string `json:"fields,omitempty"`
		Details string            `json:"details,omitempty"`
	}{
		Error:   e.Message,
		Code:    e.Code,
		Fields:  e.Fields,
		Details: e.Details,
	}

	data, err := json.Marshal(body)
	return data, "application/json", err
}

// HTTPStatus implements the web package httpStatus interface so the
// web framework can use the correct http status.
func (e *Error) HTTPStatus() int {
	return httpStatus[e.Code]
}

// Equal provides support for the go-cmp package and testing.
func (e *Error) Equal(e2 *Error) bool {
	return e.Code == e2.Code && e.Message == e2.Message
}

// IsError tests the concrete error is of the Error type.
func IsError(err error) bool {
	var er *Error
	return errors.As(err, &er)
}

// GetError returns a copy of the Error.
func GetError(err error) *Error {
	var er *Error
	if !errors.As(err, &er) {
		return nil
	}

	return er
}

// =============================================================================

// NotFoundRoute is the body for a path no handler is bound to.
func NotFoundRoute() *Error {
	return &Error{
		Code:    NotFound,
		Message: "API not found",
	}
}

// =============================================================================

var httpStatus = map[ErrCode]int{
	OK:                 http.StatusOK,
	NoContent:          http.StatusNoContent,
	InvalidArgument:    http.StatusBadRequest,
	Unauthenticated:    http.StatusUnauthorized,
	PermissionDenied:   http.StatusForbidden,
	NotFound:           http.StatusNotFound,
	Aborted:            http.StatusConflict,
	AlreadyUsed:        http.StatusConflict,
	Expired:            http.StatusGone,
	FailedPrecondition: http.StatusBadRequest,
	TooLarge:           http.StatusRequestEntityTooLarge,
	Internal:           http.StatusInternalServerError,
	InternalOnlyLog:    http.StatusInternalServerError,
}
