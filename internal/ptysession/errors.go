package ptysession

import "errors"

// Sentinel errors for the ptysession package.
var (
	// ErrWouldBlock is returned by WriteInput/TryReadOutput when the
	// operation would have to block; the caller retries on the next loop
	// iteration.
	ErrWouldBlock = errors.New("ptysession: would block")

	// ErrClosed is returned by operations attempted on a closed Session.
	ErrClosed = errors.New("ptysession: closed")

	// ErrInvalidSize is returned by Resize for non-positive dimensions.
	ErrInvalidSize = errors.New("ptysession: invalid size")
)

// SpawnErrorKind classifies why a shell failed to launch.
type SpawnErrorKind string

const (
	SpawnNotFound   SpawnErrorKind = "not_found"
	SpawnPermission SpawnErrorKind = "permission"
	SpawnIO         SpawnErrorKind = "io"
)

// SpawnError reports a failure to launch the child shell.
type SpawnError struct {
	Kind SpawnErrorKind
	Err  error
}

func (e *SpawnError) Error() string {
	return "ptysession: spawn failed (" + string(e.Kind) + "): " + e.Err.Error()
}

func (e *SpawnError) Unwrap() error { return e.Err }
