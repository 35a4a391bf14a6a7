package orchestrator

import (
	"sort"
	"strconv"
	"strings"

	"svgod/pkg/types"
)

// Fingerprint derives the cache key from the compression-affecting subset
// of the settings. Presentation-only options (show_original, report_gzip)
// are excluded: they change what the client sees, not what the worker
// computes. The encoding is order-stable, so semantically equal settings
// always produce the same string.
func Fingerprint(s types.Settings) string {
	var b strings.Builder
	b.WriteString("collapse_whitespace=")
	b.WriteString(boolBit(s.CollapseWhitespace))
	b.WriteString(";precision=")
	b.WriteString(strconv.Itoa(s.Precision))
	b.WriteString(";pretty=")
	b.WriteString(boolBit(s.Pretty))
	b.WriteString(";strip_comments=")
	b.WriteString(boolBit(s.StripComments))

	if len(s.Plugins) > 0 {
		names := make([]string, 0, len(s.Plugins))
		for name := range s.Plugins {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			b.WriteString(";plugin:")
			b.WriteString(name)
			b.WriteString("=")
			b.WriteString(boolBit(s.Plugins[name]))
		}
	}
	return b.String()
}

func boolBit(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
