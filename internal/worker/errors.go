package worker

import "errors"

// ErrAborted is reported for requests cancelled by AbortAll. It means the
// job was superseded by a newer one, not that anything failed; callers must
// not surface it to users.
var ErrAborted = errors.New("request aborted")

// ErrReleased is reported for sends on a released channel.
var ErrReleased = errors.New("channel released")

// WorkerError carries a failure the worker reported for a specific request.
type WorkerError struct {
	ID  uint64
	Msg string
}

func (e *WorkerError) Error() string { return "worker error: " + e.Msg }

// IsAborted reports whether err indicates a superseded request.
func IsAborted(err error) bool { return errors.Is(err, ErrAborted) }

// IsWorkerError reports whether the worker itself reported the failure.
func IsWorkerError(err error) bool {
	var we *WorkerError
	return errors.As(err, &we)
}
