package httpapi

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"svgod/internal/orchestrator"
)

func TestEventsStreamOverWebsocket(t *testing.T) {
	hub := orchestrator.NewHub()
	srv := httptest.NewServer(NewMux(&mockService{}, Options{Events: hub}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// The server subscribes shortly after the upgrade completes, so keep
	// publishing until the client observes an event.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		tick := time.NewTicker(10 * time.Millisecond)
		defer tick.Stop()
		for {
			select {
			case <-stop:
				return
			case <-tick.C:
				hub.Publish(orchestrator.Event{Name: "job_done", Fingerprint: "fp"})
			}
		}
	}()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var e orchestrator.Event
	if err := conn.ReadJSON(&e); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if e.Name != "job_done" || e.Fingerprint != "fp" {
		t.Fatalf("event: %+v", e)
	}
}
