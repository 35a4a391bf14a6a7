package orchestrator

import (
	"context"
	"io"
	"sync"

	json "github.com/goccy/go-json"

	"svgod/internal/worker"
	"svgod/pkg/types"
)

// autoGen answers every request through the engine's handler in its own
// goroutine, so a handler may block to simulate a slow worker without
// stalling the generation's read loop.
type autoGen struct {
	handle   func(types.WorkerRequest) types.WorkerResponse
	lines    chan []byte
	done     chan struct{}
	stopOnce sync.Once
}

func (g *autoGen) Send(line []byte) error {
	var req types.WorkerRequest
	if err := json.Unmarshal(line, &req); err != nil {
		return err
	}
	go func() {
		resp := g.handle(req)
		b, err := json.Marshal(resp)
		if err != nil {
			return
		}
		select {
		case g.lines <- b:
		case <-g.done:
		}
	}()
	return nil
}

func (g *autoGen) Recv() ([]byte, error) {
	select {
	case line := <-g.lines:
		return line, nil
	case <-g.done:
		return nil, io.EOF
	}
}

func (g *autoGen) Stop() error {
	g.stopOnce.Do(func() { close(g.done) })
	return nil
}

func (g *autoGen) PID() int { return 42 }

type autoEngine struct {
	mu     sync.Mutex
	handle func(types.WorkerRequest) types.WorkerResponse
	starts int
}

func newAutoEngine(handle func(types.WorkerRequest) types.WorkerResponse) *autoEngine {
	return &autoEngine{handle: handle}
}

func (e *autoEngine) Start() (worker.Generation, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.starts++
	return &autoGen{
		handle: e.dispatch,
		lines:  make(chan []byte, 16),
		done:   make(chan struct{}),
	}, nil
}

func (e *autoEngine) dispatch(req types.WorkerRequest) types.WorkerResponse {
	e.mu.Lock()
	h := e.handle
	e.mu.Unlock()
	return h(req)
}

func (e *autoEngine) setHandler(h func(types.WorkerRequest) types.WorkerResponse) {
	e.mu.Lock()
	e.handle = h
	e.mu.Unlock()
}

// echoWorker mimics the real optimizer closely enough for cycle tests:
// wrapOriginal echoes the input with fixed dimensions, process prefixes the
// payload so each pass is observable in the output.
func echoWorker(req types.WorkerRequest) types.WorkerResponse {
	switch req.Action {
	case types.ActionWrapOriginal:
		return types.WorkerResponse{ID: req.ID, Result: &types.WorkerResult{Data: req.Data, Width: 640, Height: 480}}
	default:
		return types.WorkerResponse{ID: req.ID, Result: &types.WorkerResult{Data: "p:" + req.Data, Width: 640, Height: 480}}
	}
}

// memStore is an in-memory SettingsStore.
type memStore struct {
	mu       sync.Mutex
	settings types.Settings
	ok       bool
}

func (s *memStore) Load(_ context.Context) (types.Settings, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings, s.ok, nil
}

func (s *memStore) Save(_ context.Context, v types.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = v
	s.ok = true
	return nil
}
