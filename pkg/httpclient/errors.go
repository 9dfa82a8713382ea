package httpclient

import (
	"errors"
	"fmt"
)

// StatusError reports an upstream response that the circuit breaker counted
// as a failure. The body is truncated to 1 KiB.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server error %d: %s", e.StatusCode, e.Body)
}

// StatusCodeOf returns the upstream status carried by err, if any.
func StatusCodeOf(err error) (int, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode, true
	}
	return 0, false
}

// IsClientError returns true if the HTTP status code is a 4xx client error.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}
