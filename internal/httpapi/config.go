package httpapi

// maxBodyBytes controls the maximum allowed request body size for JSON
// endpoints. SVG uploads are markup, so the default is a generous 8 MiB.
var maxBodyBytes int64 = 8 << 20

// SetMaxBodyBytes allows configuring the maximum request body size.
func SetMaxBodyBytes(n int64) {
	if n <= 0 {
		maxBodyBytes = 8 << 20
		return
	}
	maxBodyBytes = n
}

// optimizeTimeout controls the maximum duration a document load or settings
// change may run before timing out. Zero means no additional timeout beyond
// server/connection timeouts.
var optimizeTimeout = int64(0) // seconds

// SetOptimizeTimeoutSeconds sets the optimize timeout in seconds (0 disables).
func SetOptimizeTimeoutSeconds(sec int64) {
	if sec < 0 {
		sec = 0
	}
	optimizeTimeout = sec
}

// CORS configuration (opt-in). If disabled, no CORS middleware is added.
var (
	corsEnabled        bool
	corsAllowedOrigins []string
	corsAllowedMethods []string
	corsAllowedHeaders []string
)

// SetCORSOptions configures CORS behavior for the HTTP server.
func SetCORSOptions(enabled bool, origins, methods, headers []string) {
	corsEnabled = enabled
	corsAllowedOrigins = append([]string(nil), origins...)
	corsAllowedMethods = append([]string(nil), methods...)
	corsAllowedHeaders = append([]string(nil), headers...)
}
