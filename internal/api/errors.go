package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInvalidCredentials is returned when the backend answers 401.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNoCredentials is returned by authenticated calls when the session holds no credentials.
	ErrNoCredentials = errors.New("no credentials in session")

	// ErrNetworkUnavailable matches every *NetworkError with errors.Is.
	ErrNetworkUnavailable = errors.New("network unavailable")
)

// RequestFailedError is any non-2xx answer other than 401.
type RequestFailedError struct {
	Status  int
	Message string
}

func (e *RequestFailedError) Error() string {
	return fmt.Sprintf("request failed (%d): %s", e.Status, e.Message)
}

// NetworkError means the backend could not be reached at all.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: backend unreachable: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool { return target == ErrNetworkUnavailable }

// IsNotFound reports whether err is a RequestFailedError with status 404.
func IsNotFound(err error) bool {
	var rf *RequestFailedError
	return errors.As(err, &rf) && rf.Status == http.StatusNotFound
}
