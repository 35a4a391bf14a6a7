package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"svgod/pkg/types"
)

type mockService struct {
	loadRes  types.OptimizeResult
	loadErr  error
	applyRes types.OptimizeResult
	applyErr error
	settings types.Settings
	result   types.OptimizeResult
	hasRes   bool
	status   types.StatusResponse
	ready    bool

	gotName     string
	gotData     string
	gotSettings types.Settings
}

func (m *mockService) LoadDocument(_ context.Context, name, data string) (types.OptimizeResult, error) {
	m.gotName, m.gotData = name, data
	return m.loadRes, m.loadErr
}

func (m *mockService) ApplySettings(_ context.Context, s types.Settings) (types.OptimizeResult, error) {
	m.gotSettings = s
	return m.applyRes, m.applyErr
}

func (m *mockService) Settings() types.Settings               { return m.settings }
func (m *mockService) Result() (types.OptimizeResult, bool)   { return m.result, m.hasRes }
func (m *mockService) Status() types.StatusResponse           { return m.status }
func (m *mockService) Ready() bool                            { return m.ready }

type mockPreviews map[string]string

func (m mockPreviews) Get(token string) ([]byte, bool) {
	v, ok := m[token]
	return []byte(v), ok
}

func postJSON(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func putJSON(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPut, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestDocumentHandler(t *testing.T) {
	svc := &mockService{loadRes: types.OptimizeResult{Size: 42, PreviewToken: "tok"}}
	h := NewMux(svc, Options{})
	w := postJSON(t, h, "/document", `{"name":"a.svg","data":"<svg/>"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var res types.OptimizeResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("json: %v", err)
	}
	if res.Size != 42 || res.PreviewToken != "tok" {
		t.Fatalf("body: %+v", res)
	}
	if svc.gotName != "a.svg" || svc.gotData != "<svg/>" {
		t.Fatalf("service saw name=%q data=%q", svc.gotName, svc.gotData)
	}
}

func TestDocumentDefaultsName(t *testing.T) {
	svc := &mockService{}
	h := NewMux(svc, Options{})
	if w := postJSON(t, h, "/document", `{"data":"<svg/>"}`); w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if svc.gotName != "pasted.svg" {
		t.Fatalf("default name: %q", svc.gotName)
	}
}

func TestDocumentFromSample(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "car-lite.svg")
	if err := os.WriteFile(path, []byte("<svg><car/></svg>"), 0o644); err != nil {
		t.Fatalf("write sample: %v", err)
	}
	svc := &mockService{}
	h := NewMux(svc, Options{Samples: []types.SampleDocument{{ID: "car-lite", Name: "car-lite.svg", Path: path}}})

	if w := postJSON(t, h, "/document", `{"sample":"car-lite"}`); w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if svc.gotName != "car-lite.svg" || svc.gotData != "<svg><car/></svg>" {
		t.Fatalf("service saw name=%q data=%q", svc.gotName, svc.gotData)
	}
}

func TestDocumentUnknownSample404(t *testing.T) {
	h := NewMux(&mockService{}, Options{})
	if w := postJSON(t, h, "/document", `{"sample":"nope"}`); w.Code != http.StatusNotFound {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestDocumentDataAndSampleExclusive(t *testing.T) {
	h := NewMux(&mockService{}, Options{})
	if w := postJSON(t, h, "/document", `{"data":"<svg/>","sample":"x"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestDocumentEmptyBody400(t *testing.T) {
	h := NewMux(&mockService{}, Options{})
	if w := postJSON(t, h, "/document", `{"name":"a.svg"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestDocumentBadJSON(t *testing.T) {
	h := NewMux(&mockService{}, Options{})
	if w := postJSON(t, h, "/document", "not-json"); w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestDocumentUnsupportedMediaType(t *testing.T) {
	h := NewMux(&mockService{}, Options{})
	req := httptest.NewRequest(http.MethodPost, "/document", bytes.NewBufferString(`{"data":"<svg/>"}`))
	req.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestDocumentBodyTooLarge(t *testing.T) {
	SetMaxBodyBytes(1024)
	defer SetMaxBodyBytes(0)
	h := NewMux(&mockService{}, Options{})
	big := strings.Repeat("a", 2048)
	if w := postJSON(t, h, "/document", `{"data":"`+big+`"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for too-large body, got %d", w.Code)
	}
}

func TestSettingsPut(t *testing.T) {
	svc := &mockService{applyRes: types.OptimizeResult{Fingerprint: "fp"}}
	h := NewMux(svc, Options{})
	w := putJSON(t, h, "/settings", `{"pretty":true,"precision":3}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if !svc.gotSettings.Pretty || svc.gotSettings.Precision != 3 {
		t.Fatalf("service saw %+v", svc.gotSettings)
	}
}

func TestSettingsGet(t *testing.T) {
	svc := &mockService{settings: types.Settings{ReportGzip: true}}
	h := NewMux(svc, Options{})
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/settings", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var s types.Settings
	if err := json.Unmarshal(w.Body.Bytes(), &s); err != nil {
		t.Fatalf("json: %v", err)
	}
	if !s.ReportGzip {
		t.Fatalf("body: %+v", s)
	}
}

func TestResultHandler(t *testing.T) {
	svc := &mockService{}
	h := NewMux(svc, Options{})
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/result", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("no result should 404, got %d", w.Code)
	}

	svc.result, svc.hasRes = types.OptimizeResult{Size: 7}, true
	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/result", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestPreviewHandler(t *testing.T) {
	h := NewMux(&mockService{}, Options{Previews: mockPreviews{"tok": "<svg/>"}})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/preview/tok", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Fatalf("content-type=%s", ct)
	}
	if cc := w.Header().Get("Cache-Control"); cc != "no-store" {
		t.Fatalf("cache-control=%s", cc)
	}
	if w.Body.String() != "<svg/>" {
		t.Fatalf("body=%q", w.Body.String())
	}

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/preview/revoked", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("revoked token should 404, got %d", w.Code)
	}
}

func TestSamplesHandler(t *testing.T) {
	h := NewMux(&mockService{}, Options{Samples: []types.SampleDocument{{ID: "a"}, {ID: "b"}}})
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/samples", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var body types.SamplesResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(body.Samples) != 2 {
		t.Fatalf("samples len=%d", len(body.Samples))
	}
}

func TestStatusHandler(t *testing.T) {
	svc := &mockService{status: types.StatusResponse{State: "ready", CacheCap: 10}}
	h := NewMux(svc, Options{})
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/status", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var body types.StatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if body.State != "ready" || body.CacheCap != 10 {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestHealthz(t *testing.T) {
	h := NewMux(&mockService{}, Options{})
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestReadyz(t *testing.T) {
	h := NewMux(&mockService{ready: true}, Options{})
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestReadyz_NotReady(t *testing.T) {
	h := NewMux(&mockService{ready: false}, Options{})
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "not ready") {
		t.Fatalf("body=%q", w.Body.String())
	}
}
