// Package orchestrator drives compression cycles: it reacts to document
// loads and settings changes, decides cache-hit vs cache-miss, runs jobs via
// the runner, and owns the result cache and the current display. It is
// structured into small files by concern:
//
//   - orchestrator.go: core Orchestrator type, Config, constructor, getters.
//   - cycle.go: LoadDocument/ApplySettings and the stale-token guard.
//   - fingerprint.go: deterministic cache keys from settings.
//   - cleanup.go: optional pre-compression text passes.
//   - errors.go: error types and user-visible message classification.
//   - events.go: EventPublisher, the websocket fan-out hub.
//   - status.go: /status reporting.
//   - metrics.go: Prometheus counters for the core.
//
// External packages should use public methods only; internal state is
// subject to change.
package orchestrator
