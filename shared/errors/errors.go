package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Category sentinels. Every error produced by the storage and service layers
// unwraps to one of them, so callers can branch with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrConnection   = errors.New("store unreachable")
	ErrPartialWrite = errors.New("partial write")
)

// default error is internal service error at handler level
// if error has different status code use ErrorWithStatusCode
type ErrorWithStatusCode struct {
	Message    string
	StatusCode int
	Err        error
}

func (e *ErrorWithStatusCode) Error() string {
	return e.Message
}

func (e *ErrorWithStatusCode) Unwrap() error {
	return e.Err
}

func NotFound(message string) error {
	return &ErrorWithStatusCode{Message: message, StatusCode: http.StatusNotFound, Err: ErrNotFound}
}

func Validation(message string) error {
	return &ErrorWithStatusCode{Message: message, StatusCode: http.StatusBadRequest, Err: ErrValidation}
}

// ConnectionError is returned when the backing store cannot be reached.
// Nothing downstream is valid without a connection, so it is never swallowed.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("store unreachable: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

func (e *ConnectionError) Is(target error) bool {
	return target == ErrConnection
}

// PartialWriteError reports that a mutation committed its first steps but a
// later step failed. Id is the id of the committed document.
type PartialWriteError struct {
	Id   string
	Step string
	Err  error
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("%s committed but %s failed: %v", e.Id, e.Step, e.Err)
}

func (e *PartialWriteError) Unwrap() error {
	return e.Err
}

func (e *PartialWriteError) Is(target error) bool {
	return target == ErrPartialWrite
}

// StatusCode maps an error to the HTTP status the handlers respond with.
func StatusCode(err error) int {
	var withStatus *ErrorWithStatusCode
	if errors.As(err, &withStatus) {
		return withStatus.StatusCode
	}
	if errors.Is(err, ErrPartialWrite) {
		return http.StatusInternalServerError
	}
	if errors.Is(err, ErrConnection) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
