package compose

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// capLayer trims layer content to its character budget. Content over budget
// is cut and a visible marker is appended so the model (and anyone reading
// logs) can see mid-layer truncation happened. Stats are recorded whether
// or not truncation occurred.
func capLayer(name, content string, maxChars int) (string, LayerStat) {
	trimmed := strings.TrimSpace(content)
	stat := LayerStat{
		Name:        name,
		SourceChars: len(trimmed),
		MaxChars:    maxChars,
	}

	if len(trimmed) <= maxChars {
		stat.FinalChars = len(trimmed)
		return trimmed, stat
	}

	// Back up to a rune boundary so a multi-byte rune straddling the cut is
	// not split into invalid UTF-8.
	cut := maxChars
	for cut > 0 && !utf8.RuneStart(trimmed[cut]) {
		cut--
	}
	marker := TruncationMarker(name)
	capped := trimmed[:cut] + marker
	stat.FinalChars = len(capped)
	stat.Truncated = true
	return capped, stat
}

// TruncationMarker returns the marker appended to an over-budget layer.
func TruncationMarker(name string) string {
	return fmt.Sprintf("\n[%s TRUNCATED FOR TOKEN SAFETY]", name)
}
