package gateway

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized is returned when the gateway rejects the credentials
	// or the login session expired.
	ErrUnauthorized = errors.New("not logged in")

	// ErrNotFound is returned for unknown questions, units or courses.
	ErrNotFound = errors.New("not found")
)

// ErrStatus is a non-success response from the gateway.
type ErrStatus struct {
	Code    int
	Message string
}

func (e *ErrStatus) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("gateway returned status %d", e.Code)
	}
	return fmt.Sprintf("gateway returned status %d: %s", e.Code, e.Message)
}

// Is maps well-known status codes onto the package sentinels.
func (e *ErrStatus) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Code == 401
	case ErrNotFound:
		return e.Code == 404
	}
	return false
}

// ErrUnavailable indicates the gateway could not be reached.
type ErrUnavailable struct {
	Err error
}

func (e *ErrUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("gateway unavailable: %v", e.Err)
	}
	return "gateway unavailable"
}

func (e *ErrUnavailable) Unwrap() error { return e.Err }

// ErrIncompatible is returned by the version handshake when the server
// speaks a different major API version.
type ErrIncompatible struct {
	Server string
	Client string
}

func (e *ErrIncompatible) Error() string {
	return fmt.Sprintf("server API %s is not compatible with client API %s", e.Server, e.Client)
}
