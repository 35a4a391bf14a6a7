package orchestrator

import (
	"regexp"
	"strings"

	"svgod/pkg/types"
)

var (
	xmlCommentRE = regexp.MustCompile(`(?s)<!--.*?-->`)
	interTagWsRE = regexp.MustCompile(`>\s+<`)
	wsRunRE      = regexp.MustCompile(`[ \t]+`)
)

// Cleanup applies the requested pre-compression text passes. The optimizer
// cannot see these transforms coming, which is why a cycle that uses them
// runs a second compression pass over the cleaned output of the first.
func Cleanup(text string, s types.Settings) string {
	if s.StripComments {
		text = xmlCommentRE.ReplaceAllString(text, "")
	}
	if s.CollapseWhitespace {
		text = strings.TrimSpace(text)
		text = interTagWsRE.ReplaceAllString(text, "><")
		text = wsRunRE.ReplaceAllString(text, " ")
	}
	return text
}
