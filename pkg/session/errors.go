package session

import (
	"errors"
	"fmt"
)

// Messages surfaced to the user when the server did not provide one.
const (
	MsgNetworkError       = "Network error: Please check your connection and try again."
	MsgProfileCheckFailed = "Failed to check user profile"
)

// ErrAuthTokenRejected is returned when the profile service answers 401 for
// the cached token. The cached credentials have been purged by the time it
// is observed.
var ErrAuthTokenRejected = errors.New("session: auth token rejected")

// ValidationError names the first invalid registration field. No I/O has
// been attempted when it is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// TransientNetworkError is a read failure that is not a token rejection. The
// reconciler degrades to cached data instead of surfacing it.
type TransientNetworkError struct {
	Op  string
	Err error
}

func (e *TransientNetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransientNetworkError) Unwrap() error { return e.Err }

// ProfileUpdateFailed is returned by CompleteRegistration when the profile
// could not be created or updated. Local state is unchanged.
type ProfileUpdateFailed struct {
	// StatusCode is 0 for transport failures.
	StatusCode int
	// Message is suitable for display.
	Message string
	Err     error
}

func (e *ProfileUpdateFailed) Error() string { return e.Message }

func (e *ProfileUpdateFailed) Unwrap() error { return e.Err }
