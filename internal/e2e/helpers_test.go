package e2e

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/goccy/go-json"

	"svgod/internal/httpapi"
	"svgod/internal/orchestrator"
	"svgod/internal/preview"
	"svgod/internal/worker"
	"svgod/pkg/types"
)

// fakeGen answers every request in-process: wrapOriginal echoes the markup,
// process collapses "> <" runs the way a real optimizer would.
type fakeGen struct {
	mu    sync.Mutex
	lines chan []byte
	done  chan struct{}
	once  sync.Once
}

func newFakeGen() *fakeGen {
	return &fakeGen{lines: make(chan []byte, 64), done: make(chan struct{})}
}

func (g *fakeGen) Send(line []byte) error {
	var req types.WorkerRequest
	if err := json.Unmarshal(line, &req); err != nil {
		return err
	}
	res := types.WorkerResult{Width: 640, Height: 480}
	switch req.Action {
	case types.ActionWrapOriginal:
		res.Data = req.Data
	default:
		res.Data = strings.ReplaceAll(req.Data, "> <", "><")
	}
	out, err := json.Marshal(types.WorkerResponse{ID: req.ID, Result: &res})
	if err != nil {
		return err
	}
	select {
	case g.lines <- out:
	case <-g.done:
	}
	return nil
}

func (g *fakeGen) Recv() ([]byte, error) {
	select {
	case line := <-g.lines:
		return line, nil
	case <-g.done:
		return nil, io.EOF
	}
}

func (g *fakeGen) Stop() error {
	g.once.Do(func() { close(g.done) })
	return nil
}

func (g *fakeGen) PID() int { return 4242 }

type fakeEngine struct{}

func (fakeEngine) Start() (worker.Generation, error) { return newFakeGen(), nil }

// newTestServer wires the full stack behind an httptest server: mux,
// orchestrator, preview store, event hub and the in-process worker engine.
func newTestServer(t *testing.T) (*httptest.Server, *orchestrator.Orchestrator, *preview.Store) {
	t.Helper()
	previews := preview.NewStore()
	hub := orchestrator.NewHub()
	orch := orchestrator.New(orchestrator.Config{
		Engine:        fakeEngine{},
		Previews:      previews,
		CacheCapacity: 4,
		Publisher:     hub,
	})
	t.Cleanup(orch.Close)
	mux := httpapi.NewMux(orch, httpapi.Options{Previews: previews, Events: hub})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, orch, previews
}

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}

func httpSendJSON(t *testing.T, method, url string, payload []byte) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), method, url, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}
