package artifact

import (
	"compress/gzip"
	"sync"
)

// Registry is where an artifact parks its markup for preview rendering.
// Register hands out a revocable token; Revoke reclaims it.
type Registry interface {
	Register(data string) string
	Revoke(token string)
}

// SizeOptions selects which size Size reports.
type SizeOptions struct {
	// Report the gzipped byte length instead of the raw one.
	Compress bool
}

// Artifact is one computed (or original) SVG result: the markup, its
// intrinsic dimensions, and lazily derived properties. The gzipped size and
// the preview token are computed on first access and memoized.
//
// An artifact is exclusively owned by whichever slot holds it (current
// input, one cache slot, or the display); the last owner must call Release
// exactly once. Release is idempotent, so a double release is a no-op
// rather than a fault.
type Artifact struct {
	text     string
	width    float64
	height   float64
	previews Registry

	mu       sync.Mutex
	gzipSize int64
	gzipDone bool
	token    string
	hasToken bool
	disposed bool
}

func New(text string, width, height float64, previews Registry) *Artifact {
	return &Artifact{text: text, width: width, height: height, previews: previews}
}

func (a *Artifact) Text() string    { return a.text }
func (a *Artifact) Width() float64  { return a.width }
func (a *Artifact) Height() float64 { return a.height }

// Size reports the artifact's byte length. The gzipped length is computed
// lazily and memoized.
func (a *Artifact) Size(opts SizeOptions) (int64, error) {
	if !opts.Compress {
		return int64(len(a.text)), nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.gzipDone {
		n, err := gzippedLen([]byte(a.text))
		if err != nil {
			return 0, err
		}
		a.gzipSize = n
		a.gzipDone = true
	}
	return a.gzipSize, nil
}

// PreviewRef returns the artifact's preview token, registering the markup
// with the registry on first access. Returns "" once released.
func (a *Artifact) PreviewRef() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.disposed {
		return ""
	}
	if !a.hasToken {
		a.token = a.previews.Register(a.text)
		a.hasToken = true
	}
	return a.token
}

// Release revokes the preview token, if one was created. Safe to call more
// than once; only the first call does anything.
func (a *Artifact) Release() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.disposed {
		return
	}
	a.disposed = true
	if a.hasToken {
		a.previews.Revoke(a.token)
	}
}

// Released reports whether Release has been called.
func (a *Artifact) Released() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.disposed
}

type countWriter struct{ n int64 }

func (w *countWriter) Write(p []byte) (int, error) {
	w.n += int64(len(p))
	return len(p), nil
}

func gzippedLen(b []byte) (int64, error) {
	var cw countWriter
	zw := gzip.NewWriter(&cw)
	if _, err := zw.Write(b); err != nil {
		return 0, err
	}
	if err := zw.Close(); err != nil {
		return 0, err
	}
	return cw.n, nil
}
