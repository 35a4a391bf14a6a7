package types

// Settings captures the optimizer options a client may toggle.
//
// ShowOriginal and ReportGzip only affect presentation (what the client is
// shown and how sizes are reported); they never reach the worker and are
// excluded from result fingerprints. Everything else changes the optimized
// output and therefore the cache key.
type Settings struct {
	// Show the unmodified input instead of an optimized result.
	// example: false
	ShowOriginal bool `json:"show_original,omitempty" example:"false"`
	// Report gzipped sizes alongside raw byte sizes.
	// example: true
	ReportGzip bool `json:"report_gzip,omitempty" example:"true"`
	// Strip XML comments from the markup before optimizing (cleanup pass).
	// example: true
	StripComments bool `json:"strip_comments,omitempty" example:"true"`
	// Collapse runs of inter-tag whitespace before optimizing (cleanup pass).
	// example: false
	CollapseWhitespace bool `json:"collapse_whitespace,omitempty" example:"false"`
	// Pretty-print the optimized output.
	// example: false
	Pretty bool `json:"pretty,omitempty" example:"false"`
	// Numeric precision for path data rounding (0 = worker default).
	// example: 3
	Precision int `json:"precision,omitempty" example:"3"`
	// Per-plugin enable flags, passed through to the worker verbatim.
	Plugins map[string]bool `json:"plugins,omitempty"`
}

// NeedsCleanup reports whether any pre-compression text cleanup pass is
// requested, which also triggers the second compression pass.
func (s Settings) NeedsCleanup() bool {
	return s.StripComments || s.CollapseWhitespace
}
