package httpapi

import (
	"errors"
	"net/http"

	json "github.com/goccy/go-json"

	"svgod/internal/orchestrator"
	"svgod/internal/worker"
	"svgod/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// errorStatus maps a service error to an HTTP status and client message.
// Superseded cycles are not failures but the requester still needs to know
// its result was discarded, hence 409 rather than a success body it must not
// display.
func errorStatus(err error) (int, string) {
	switch {
	case orchestrator.IsSuperseded(err):
		return http.StatusConflict, "superseded by a newer request"
	case errors.Is(err, orchestrator.ErrNoDocument):
		return http.StatusConflict, err.Error()
	case orchestrator.IsLoadError(err):
		msg, _ := orchestrator.UserMessage(err)
		return http.StatusUnprocessableEntity, msg
	}
	var we *worker.WorkerError
	if errors.As(err, &we) {
		msg, _ := orchestrator.UserMessage(err)
		return http.StatusBadGateway, msg
	}
	if he, ok := err.(HTTPError); ok {
		return he.StatusCode(), he.Error()
	}
	return http.StatusInternalServerError, err.Error()
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status})
}
