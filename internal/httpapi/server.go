package httpapi

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"svgod/internal/orchestrator"
	"svgod/internal/registry"
	"svgod/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	LoadDocument(ctx context.Context, name, data string) (types.OptimizeResult, error)
	ApplySettings(ctx context.Context, s types.Settings) (types.OptimizeResult, error)
	Settings() types.Settings
	Result() (types.OptimizeResult, bool)
	Status() types.StatusResponse
	Ready() bool
}

// PreviewStore resolves preview tokens to result markup.
type PreviewStore interface {
	Get(token string) ([]byte, bool)
}

// Options carries the mux's optional collaborators.
type Options struct {
	Previews PreviewStore
	Samples  []types.SampleDocument
	Events   *orchestrator.Hub
}

func NewMux(svc Service, opts Options) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
		}))
	}
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	r.Use(MetricsMiddleware)

	r.Post("/document", func(w http.ResponseWriter, r *http.Request) {
		var req types.DocumentRequest
		if !decodeJSONBody(w, r, &req) {
			return
		}
		if req.Data != "" && req.Sample != "" {
			writeJSONError(w, http.StatusBadRequest, "data and sample are mutually exclusive")
			return
		}
		name, data := req.Name, req.Data
		if req.Sample != "" {
			sample, ok := registry.Find(opts.Samples, req.Sample)
			if !ok {
				writeJSONError(w, http.StatusNotFound, "unknown sample: "+req.Sample)
				return
			}
			b, err := os.ReadFile(sample.Path)
			if err != nil {
				writeJSONError(w, http.StatusInternalServerError, "read sample: "+err.Error())
				return
			}
			name, data = sample.Name, string(b)
		}
		if strings.TrimSpace(data) == "" {
			writeJSONError(w, http.StatusBadRequest, "data or sample is required")
			return
		}
		if name == "" {
			name = "pasted.svg"
		}

		start := time.Now()
		ctx, cancel := cycleContext(r)
		defer cancel()
		res, err := svc.LoadDocument(ctx, name, data)
		logCycle(r, "load", start, err)
		if err != nil {
			status, msg := errorStatus(err)
			writeJSONError(w, status, msg)
			return
		}
		writeJSON(w, res)
	})

	r.Put("/settings", func(w http.ResponseWriter, r *http.Request) {
		var s types.Settings
		if !decodeJSONBody(w, r, &s) {
			return
		}
		start := time.Now()
		ctx, cancel := cycleContext(r)
		defer cancel()
		res, err := svc.ApplySettings(ctx, s)
		logCycle(r, "settings", start, err)
		if err != nil {
			status, msg := errorStatus(err)
			writeJSONError(w, status, msg)
			return
		}
		writeJSON(w, res)
	})

	r.Get("/settings", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, svc.Settings())
	})

	r.Get("/result", func(w http.ResponseWriter, r *http.Request) {
		res, ok := svc.Result()
		if !ok {
			writeJSONError(w, http.StatusNotFound, "no result yet")
			return
		}
		writeJSON(w, res)
	})

	r.Get("/preview/{token}", func(w http.ResponseWriter, r *http.Request) {
		token := chi.URLParam(r, "token")
		if opts.Previews == nil {
			writeJSONError(w, http.StatusNotFound, "previews unavailable")
			return
		}
		b, ok := opts.Previews.Get(token)
		if !ok {
			IncrementPreviewMiss("revoked_or_unknown")
			writeJSONError(w, http.StatusNotFound, "unknown or revoked preview token")
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		// Tokens are revocable; a stale cached body would outlive revocation.
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write(b)
	})

	r.Get("/samples", func(w http.ResponseWriter, r *http.Request) {
		samples := opts.Samples
		if samples == nil {
			samples = []types.SampleDocument{}
		}
		writeJSON(w, types.SamplesResponse{Samples: samples})
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, svc.Status())
	})

	if opts.Events != nil {
		r.Get("/events", eventsHandler(opts.Events))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)

	return r
}

// decodeJSONBody enforces the content type and body limit, then decodes into
// dst. It writes the error response itself and reports success.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		// An exceeded MaxBytesReader surfaces here too; report 400 without
		// leaking size details.
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// cycleContext joins the server base context with the request context and
// applies the configured optimize timeout, so shutdown and slow workers both
// cancel in-flight cycles.
func cycleContext(r *http.Request) (context.Context, context.CancelFunc) {
	ctx, cancel := joinContexts(serverBaseCtx, r.Context())
	if optimizeTimeout > 0 {
		tctx, tcancel := context.WithTimeout(ctx, time.Duration(optimizeTimeout)*time.Second)
		return tctx, func() { tcancel(); cancel() }
	}
	return ctx, cancel
}

func logCycle(r *http.Request, op string, start time.Time, err error) {
	if zlog == nil || requestLogLevel(r) < LevelInfo {
		return
	}
	z := zlog.Info().Str("op", op).Dur("dur", time.Since(start))
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		z = z.Str("request_id", rid)
	}
	if err != nil {
		z = z.Err(err)
	}
	z.Msg(op + " cycle end")
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
	}
}
