package orchestrator

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/google/uuid"

	"svgod/internal/artifact"
	"svgod/internal/worker"
	"svgod/pkg/types"
)

// LoadDocument replaces the current input. The raw markup is round-tripped
// through the worker's wrapOriginal action to validate it and extract its
// intrinsic dimensions, the result cache is purged (the old document's
// results are meaningless for the new one), and the last applied settings
// are re-applied to the new input.
func (o *Orchestrator) LoadDocument(ctx context.Context, name, data string) (types.OptimizeResult, error) {
	if !strings.Contains(data, "<svg") {
		return types.OptimizeResult{}, &LoadError{Msg: "input does not look like an SVG document"}
	}

	// Whatever is still in flight belongs to the outgoing document.
	o.ch.AbortAll()

	res, err := o.ch.Send(ctx, types.ActionWrapOriginal, nil, data)
	if err != nil {
		if worker.IsAborted(err) {
			return types.OptimizeResult{}, ErrSuperseded
		}
		var we *worker.WorkerError
		if errors.As(err, &we) {
			return types.OptimizeResult{}, &LoadError{Msg: we.Msg}
		}
		return types.OptimizeResult{}, &LoadError{Msg: "could not parse input", Err: err}
	}
	original := artifact.New(res.Data, res.Width, res.Height, o.previews)

	o.mu.Lock()
	o.cache.Purge()
	if old := o.displayed; old != nil {
		old.Release()
	}
	if old := o.original; old != nil {
		old.Release()
	}
	o.original = original
	o.displayed = nil
	o.docName = name
	o.latestToken = ""
	o.hasResult = false
	o.result = types.OptimizeResult{}
	o.lastError = ""
	settings := o.settings
	o.mu.Unlock()

	o.publisher.Publish(Event{Name: "document_loaded", Fields: map[string]any{
		"name":  name,
		"bytes": len(data),
	}})

	return o.ApplySettings(ctx, settings)
}

// ApplySettings starts a new compression cycle for the loaded input. Every
// invocation claims a fresh cycle token up front; a cycle whose token is no
// longer the latest when its job settles discards the result and reports
// ErrSuperseded. Cache hits and the show-original path skip the worker but
// still claim the token, so they invalidate any slower cycle in flight.
func (o *Orchestrator) ApplySettings(ctx context.Context, s types.Settings) (types.OptimizeResult, error) {
	o.mu.Lock()
	if o.original == nil {
		o.mu.Unlock()
		return types.OptimizeResult{}, ErrNoDocument
	}
	o.settings = s
	token := uuid.NewString()
	o.latestToken = token
	input := o.original
	o.mu.Unlock()

	if o.store != nil {
		if err := o.store.Save(ctx, s); err != nil {
			o.log.Warn().Err(err).Msg("persisting settings failed")
		}
	}

	if s.ShowOriginal {
		o.mu.Lock()
		o.displayed = input
		res, err := o.finishLocked(input, "", false, true, s)
		o.mu.Unlock()
		if err != nil {
			return types.OptimizeResult{}, err
		}
		o.publisher.Publish(Event{Name: "original_shown"})
		return res, nil
	}

	fp := Fingerprint(s)

	o.mu.Lock()
	if art := o.cache.Match(fp); art != nil {
		o.hits++
		cacheHitsTotal.Inc()
		o.displayed = art
		res, err := o.finishLocked(art, fp, true, false, s)
		o.mu.Unlock()
		if err != nil {
			return types.OptimizeResult{}, err
		}
		o.publisher.Publish(Event{Name: "cache_hit", Fingerprint: fp})
		return res, nil
	}
	o.misses++
	cacheMissesTotal.Inc()
	o.jobs++
	jobsTotal.Inc()
	o.mu.Unlock()

	art, err := o.runJob(ctx, token, s, input.Text())
	if err != nil {
		if IsSuperseded(err) {
			o.noteSuperseded(fp)
			return types.OptimizeResult{}, ErrSuperseded
		}
		msg, _ := UserMessage(err)
		o.mu.Lock()
		o.state = StateError
		o.lastError = msg
		o.mu.Unlock()
		o.publisher.Publish(Event{Name: "job_failed", Fingerprint: fp, Fields: map[string]any{"error": msg}})
		return types.OptimizeResult{}, err
	}

	o.mu.Lock()
	if o.latestToken != token {
		o.mu.Unlock()
		// Never displayed, never cached: this cycle is the sole owner.
		art.Release()
		o.noteSuperseded(fp)
		return types.OptimizeResult{}, ErrSuperseded
	}
	if o.cache.Add(fp, art) {
		o.evictions++
		evictionsTotal.Inc()
	}
	o.displayed = art
	res, err := o.finishLocked(art, fp, false, false, s)
	o.mu.Unlock()
	if err != nil {
		return types.OptimizeResult{}, err
	}
	o.publisher.Publish(Event{Name: "job_done", Fingerprint: fp, Fields: map[string]any{
		"size": res.Size,
	}})
	return res, nil
}

// runJob performs the worker round trips for one cycle. With a cleanup pass
// requested, the first compression's output is cleaned and compressed once
// more; the second pass continues the same logical job, so it must not abort
// a newer one, and it is skipped entirely when the cycle already lost its
// token.
func (o *Orchestrator) runJob(ctx context.Context, token string, s types.Settings, input string) (*artifact.Artifact, error) {
	text := input
	if s.NeedsCleanup() {
		text = Cleanup(text, s)
	}
	first, err := o.runner.Submit(ctx, s, text)
	if err != nil {
		return nil, err
	}
	if !s.NeedsCleanup() {
		return first, nil
	}
	if !o.tokenCurrent(token) {
		first.Release()
		return nil, ErrSuperseded
	}
	second, err := o.runner.Continue(ctx, s, Cleanup(first.Text(), s))
	first.Release()
	if err != nil {
		return nil, err
	}
	return second, nil
}

func (o *Orchestrator) tokenCurrent(token string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.latestToken == token
}

func (o *Orchestrator) noteSuperseded(fp string) {
	o.mu.Lock()
	o.superseded++
	o.mu.Unlock()
	supersededTotal.Inc()
	o.publisher.Publish(Event{Name: "job_superseded", Fingerprint: fp})
}

// finishLocked records a successful cycle and builds its result. Callers
// hold o.mu and have already set o.displayed.
func (o *Orchestrator) finishLocked(art *artifact.Artifact, fp string, hit, showOriginal bool, s types.Settings) (types.OptimizeResult, error) {
	size, _ := art.Size(artifact.SizeOptions{})
	origSize, _ := o.original.Size(artifact.SizeOptions{})
	res := types.OptimizeResult{
		Fingerprint:  fp,
		CacheHit:     hit,
		Original:     showOriginal,
		Size:         size,
		OriginalSize: origSize,
		Width:        art.Width(),
		Height:       art.Height(),
		PreviewToken: art.PreviewRef(),
	}
	if s.ReportGzip {
		gz, err := art.Size(artifact.SizeOptions{Compress: true})
		if err != nil {
			return types.OptimizeResult{}, err
		}
		ogz, err := o.original.Size(artifact.SizeOptions{Compress: true})
		if err != nil {
			return types.OptimizeResult{}, err
		}
		res.GzipSize = gz
		res.OriginalGzipSize = ogz
	}
	if !showOriginal && origSize > 0 {
		res.SavingsPct = math.Round((1-float64(size)/float64(origSize))*1000) / 10
	}
	o.result = res
	o.hasResult = true
	o.state = StateReady
	o.lastError = ""
	return res, nil
}
