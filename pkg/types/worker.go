package types

// WorkerAction selects what the optimizer worker does with a request.
type WorkerAction string

const (
	// ActionProcess runs the optimizer over the supplied markup.
	ActionProcess WorkerAction = "process"
	// ActionWrapOriginal parses dimensions of the unmodified input without
	// optimizing it.
	ActionWrapOriginal WorkerAction = "wrapOriginal"
)

// WorkerRequest is one line of the stdin protocol to the optimizer worker.
type WorkerRequest struct {
	// Correlation id; unique and monotonically increasing per channel.
	ID       uint64       `json:"id"`
	Action   WorkerAction `json:"action"`
	Settings *Settings    `json:"settings,omitempty"`
	Data     string       `json:"data"`
}

// WorkerResult is the payload of a successful worker response.
type WorkerResult struct {
	Data   string  `json:"data"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// WorkerResponse is one line of the stdout protocol from the optimizer
// worker. Exactly one response is emitted per request id. When both Result
// and Error are set, Error wins.
type WorkerResponse struct {
	ID     uint64        `json:"id"`
	Result *WorkerResult `json:"result,omitempty"`
	Error  string        `json:"error,omitempty"`
}
