package api

import (
	"errors"
	"fmt"
)

// ErrPhoneRequired is returned by Authenticate when no phone number is given.
var ErrPhoneRequired = errors.New("phone number required")

// TransportError reports a failed backend call: either the request never
// completed or the backend answered with a non-success status.
type TransportError struct {
	Op         string // backend operation, e.g. "advance year"
	StatusCode int    // 0 when no response was received
	Body       string // leading part of the response body, if any
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Body != "":
		return fmt.Sprintf("%s: backend returned %d: %s", e.Op, e.StatusCode, e.Body)
	case e.StatusCode != 0 && e.Err == nil:
		return fmt.Sprintf("%s: backend returned %d", e.Op, e.StatusCode)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: backend returned %d: %v", e.Op, e.StatusCode, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsTransport reports whether err is or wraps a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
