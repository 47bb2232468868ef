package hardware

import "errors"

// Failure classes for backend operations. Callers match these with
// errors.Is; everything crossing the Controller boundary is flattened
// to a boolean plus a logged diagnostic.
var (
	// ErrValidation reports malformed arguments (empty argv, bad range).
	ErrValidation = errors.New("invalid argument")

	// ErrTimeout reports a command or wait that exceeded its deadline.
	ErrTimeout = errors.New("operation timed out")

	// ErrNotFound reports a missing backend binary or device file. A
	// probe observing this demotes the backend's presence capability.
	ErrNotFound = errors.New("backend not found")

	// ErrBackendUnavailable reports that no capable backend exists for
	// the requested operation.
	ErrBackendUnavailable = errors.New("no capable backend")

	// ErrCircuitOpen reports a call short-circuited by an open breaker;
	// the wrapped operation was not invoked.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrPartialFailure reports a batch operation where some zone
	// writes succeeded and some failed. Succeeded zones keep their new
	// cached colors; there is no rollback.
	ErrPartialFailure = errors.New("batch operation partially failed")
)
