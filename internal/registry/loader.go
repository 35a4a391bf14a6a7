// Package registry discovers the bundled sample documents a client can load
// without uploading anything.
package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"svgod/internal/common/fsutil"
	"svgod/pkg/types"
)

// LoadDir scans a directory for *.svg files and builds the sample list from
// filenames. ID is the filename without extension; Path is absolute.
func LoadDir(dir string) ([]types.SampleDocument, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var samples []types.SampleDocument
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(strings.ToLower(name), ".svg") {
			continue
		}
		samples = append(samples, types.SampleDocument{
			ID:   strings.TrimSuffix(name, filepath.Ext(name)),
			Name: name,
			Path: filepath.Join(abs, name),
		})
	}
	return samples, nil
}

// Find returns the sample with the given id, or false.
func Find(samples []types.SampleDocument, id string) (types.SampleDocument, bool) {
	for _, s := range samples {
		if s.ID == id {
			return s, true
		}
	}
	return types.SampleDocument{}, false
}
