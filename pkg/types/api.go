package types

// DocumentRequest loads a new input document.
type DocumentRequest struct {
	// Display name for the document.
	// example: car-lite.svg
	Name string `json:"name,omitempty" example:"car-lite.svg"`
	// Raw SVG markup. Mutually exclusive with Sample.
	Data string `json:"data,omitempty"`
	// ID of a bundled sample document to load instead of Data.
	// example: car-lite
	Sample string `json:"sample,omitempty" example:"car-lite"`
}

// OptimizeResult describes the artifact currently selected for display.
type OptimizeResult struct {
	// Fingerprint of the settings that produced this result. Empty when the
	// original input is shown.
	// example: collapse_whitespace=0;precision=3;pretty=0;strip_comments=0
	Fingerprint string `json:"fingerprint,omitempty"`
	// True when the result was served from the cache without a worker round trip.
	// example: false
	CacheHit bool `json:"cache_hit" example:"false"`
	// True when the unmodified input is shown.
	// example: false
	Original bool `json:"original" example:"false"`
	// Raw byte size of the result.
	// example: 1523
	Size int64 `json:"size" example:"1523"`
	// Gzipped byte size of the result; present only when gzip reporting is on.
	// example: 741
	GzipSize int64 `json:"gzip_size,omitempty" example:"741"`
	// Raw byte size of the unmodified input.
	// example: 4096
	OriginalSize int64 `json:"original_size" example:"4096"`
	// Gzipped byte size of the unmodified input; present with gzip reporting.
	// example: 1298
	OriginalGzipSize int64 `json:"original_gzip_size,omitempty" example:"1298"`
	// Size saving relative to the input, in percent.
	// example: 62.8
	SavingsPct float64 `json:"savings_pct" example:"62.8"`
	// Intrinsic width of the document.
	// example: 640
	Width float64 `json:"width" example:"640"`
	// Intrinsic height of the document.
	// example: 480
	Height float64 `json:"height" example:"480"`
	// Token for fetching the result markup at GET /preview/{token}.
	// example: 0b2f8a1e-7a43-4f0e-9d8b-2c1a6f3e5d90
	PreviewToken string `json:"preview_token" example:"0b2f8a1e-7a43-4f0e-9d8b-2c1a6f3e5d90"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// SampleDocument describes a bundled SVG available for loading.
type SampleDocument struct {
	// Stable identifier, derived from the filename.
	// example: car-lite
	ID string `json:"id" example:"car-lite"`
	// Human-friendly name.
	// example: car-lite.svg
	Name string `json:"name" example:"car-lite.svg"`
	// Absolute path on disk.
	// example: /usr/share/svgod/samples/car-lite.svg
	Path string `json:"path" example:"/usr/share/svgod/samples/car-lite.svg"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Overall daemon state (e.g., idle, ready, error).
	// example: ready
	State string `json:"state" example:"ready"`
	// Name of the loaded document, if any.
	// example: car-lite.svg
	Document string `json:"document,omitempty" example:"car-lite.svg"`
	// Process ID of the current worker generation (0 when not running).
	// example: 12345
	WorkerPID int `json:"worker_pid,omitempty" example:"12345"`
	// Worker generation counter; increments on every abort/restart.
	// example: 3
	WorkerGeneration uint64 `json:"worker_generation" example:"3"`
	// Requests currently awaiting a worker response.
	// example: 1
	PendingRequests int `json:"pending_requests" example:"1"`
	// Live entries in the result cache.
	// example: 4
	CacheLen int `json:"cache_len" example:"4"`
	// Result cache capacity.
	// example: 10
	CacheCap int `json:"cache_cap" example:"10"`
	// Total compression jobs issued.
	// example: 17
	JobsTotal uint64 `json:"jobs_total" example:"17"`
	// Jobs whose results were discarded because a newer job superseded them.
	// example: 2
	SupersededTotal uint64 `json:"superseded_total" example:"2"`
	// Cache hits and misses.
	// example: 9
	CacheHits   uint64 `json:"cache_hits" example:"9"`
	CacheMisses uint64 `json:"cache_misses" example:"8"`
	// Artifacts evicted from the cache under capacity pressure.
	// example: 0
	EvictionsTotal uint64 `json:"evictions_total" example:"0"`
	// Worker generation replacements (aborts and crash recoveries).
	// example: 2
	WorkerRestarts uint64 `json:"worker_restarts" example:"2"`
	// Last user-visible error observed, if any.
	LastError string `json:"last_error,omitempty"`
	// Uptime of the daemon in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}

// SamplesResponse wraps the list returned by GET /samples.
type SamplesResponse struct {
	Samples []SampleDocument `json:"samples"`
}
