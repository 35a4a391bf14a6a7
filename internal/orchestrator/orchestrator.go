package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"svgod/internal/artifact"
	"svgod/internal/cache"
	"svgod/internal/jobs"
	"svgod/internal/worker"
	"svgod/pkg/types"
)

// State describes the orchestrator's coarse lifecycle for /status.
type State string

const (
	StateIdle  State = "idle"  // no document loaded yet
	StateReady State = "ready" // a result is on display
	StateError State = "error" // the last cycle failed
)

// SettingsStore persists the last applied settings across restarts.
type SettingsStore interface {
	Load(ctx context.Context) (types.Settings, bool, error)
	Save(ctx context.Context, s types.Settings) error
}

// Config collects the orchestrator's collaborators. Engine and Previews are
// required; everything else has a usable zero default.
type Config struct {
	Engine        worker.Engine
	Previews      artifact.Registry
	CacheCapacity int
	Store         SettingsStore
	Publisher     EventPublisher
	Log           zerolog.Logger
}

// Orchestrator owns the compression pipeline state: the loaded input, the
// result cache, the artifact currently on display, and the token that marks
// which settings change is the freshest. All mutable state is confined
// behind mu; worker round trips happen outside the lock.
type Orchestrator struct {
	ch        *worker.Channel
	runner    *jobs.Runner
	previews  artifact.Registry
	store     SettingsStore
	publisher EventPublisher
	log       zerolog.Logger
	started   time.Time

	mu          sync.Mutex
	state       State
	docName     string
	original    *artifact.Artifact
	displayed   *artifact.Artifact
	cache       *cache.Cache
	settings    types.Settings
	latestToken string
	result      types.OptimizeResult
	hasResult   bool
	lastError   string

	jobs       uint64
	superseded uint64
	hits       uint64
	misses     uint64
	evictions  uint64
}

func New(cfg Config) *Orchestrator {
	pub := cfg.Publisher
	if pub == nil {
		pub = noopPublisher{}
	}
	o := &Orchestrator{
		ch:        worker.NewChannel(cfg.Engine, cfg.Log),
		previews:  cfg.Previews,
		store:     cfg.Store,
		publisher: pub,
		log:       cfg.Log,
		started:   time.Now(),
		state:     StateIdle,
		cache:     cache.New(cfg.CacheCapacity),
	}
	o.runner = jobs.NewRunner(o.ch, cfg.Previews)
	if o.store != nil {
		if s, ok, err := o.store.Load(context.Background()); err != nil {
			o.log.Warn().Err(err).Msg("loading persisted settings failed, using defaults")
		} else if ok {
			o.settings = s
		}
	}
	return o
}

// Settings returns the last applied (or persisted) settings.
func (o *Orchestrator) Settings() types.Settings {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.settings
}

// Result returns the result currently on display, if any.
func (o *Orchestrator) Result() (types.OptimizeResult, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.result, o.hasResult
}

// Ready reports whether the daemon can serve work. An error state is
// recoverable by the next successful cycle, but readiness probes should see
// it while it lasts.
func (o *Orchestrator) Ready() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state != StateError
}

// Close tears down the worker channel. In-flight cycles settle with an
// abort; the orchestrator is unusable afterward.
func (o *Orchestrator) Close() {
	o.ch.Release()
}
