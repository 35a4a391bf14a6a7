package orchestrator

import (
	"errors"

	"svgod/internal/worker"
)

// ErrNoDocument is returned for settings changes before any input is loaded.
var ErrNoDocument = errors.New("no document loaded")

// ErrSuperseded marks a cycle whose result was discarded because a newer
// settings change took over. It is never a user-visible failure.
var ErrSuperseded = errors.New("superseded by a newer request")

// LoadError reports input that could not be parsed or fetched.
type LoadError struct {
	Msg string
	Err error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *LoadError) Unwrap() error { return e.Err }

// IsLoadError reports whether err indicates unusable input.
func IsLoadError(err error) bool {
	var le *LoadError
	return errors.As(err, &le)
}

// IsSuperseded reports whether err means "a newer job won", covering both
// the orchestrator's own token guard and channel-level aborts.
func IsSuperseded(err error) bool {
	return errors.Is(err, ErrSuperseded) || worker.IsAborted(err)
}

// UserMessage converts a failure into a user-visible notification with a
// contextual prefix. Superseded jobs produce none (false): they are not
// failures and must stay silent.
func UserMessage(err error) (string, bool) {
	if err == nil || IsSuperseded(err) {
		return "", false
	}
	var le *LoadError
	if errors.As(err, &le) {
		return "Load failed: " + le.Error(), true
	}
	var we *worker.WorkerError
	if errors.As(err, &we) {
		return "Minifying error: " + we.Msg, true
	}
	return err.Error(), true
}
