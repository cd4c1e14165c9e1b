// Package strip deterministically compresses raw chart data to its
// highest-signal lines before it is embedded in trigger and writing prompts.
// Each system keeps a small fixed set of sections and drops the rest; output
// is never longer than input and contains no randomness.
package strip

import (
	"strings"
)

// Func reduces one person's raw chart data for one interpretive system.
type Func func(raw string) string

// ForSystem returns the strip function for the given system id. Unknown
// systems get the identity-preserving generic filter.
func ForSystem(system string) Func {
	switch system {
	case "western":
		return Western
	case "vedic":
		return Vedic
	case "chinese":
		return Chinese
	case "numerology":
		return Numerology
	case "kabbalah":
		return Kabbalah
	default:
		return Generic
	}
}

// Overlay strips two persons' chart data with the same system filter and
// labels the blocks for the relational builders.
func Overlay(fn Func, person1Chart, person2Chart string) string {
	var b strings.Builder
	b.WriteString("PERSON1 CHART:\n")
	b.WriteString(fn(person1Chart))
	b.WriteString("\n\nPERSON2 CHART:\n")
	b.WriteString(fn(person2Chart))
	return b.String()
}

// Generic keeps everything except known low-signal table and transit
// sections. Used for systems without a dedicated filter.
func Generic(raw string) string {
	return filterSections(raw, nil, []string{
		"RAW TABLE", "TECHNICAL TABLE", "TRANSITS", "CURRENT WEATHER",
	})
}

// filterSections walks the chart data line by line. A section header is an
// ALL-CAPS line ending in ':'. When keep is non-nil only listed sections
// survive (plus any preamble before the first header); otherwise all
// sections survive except those listed in drop. Matching is by header
// prefix.
func filterSections(raw string, keep, drop []string) string {
	lines := strings.Split(raw, "\n")
	var out []string
	keeping := true // preamble lines before the first header are kept

	for _, line := range lines {
		if header, ok := sectionHeader(line); ok {
			keeping = sectionWanted(header, keep, drop)
		}
		if keeping {
			out = append(out, line)
		}
	}

	result := strings.TrimRight(strings.Join(out, "\n"), "\n")
	// Invariant: output never exceeds input.
	if len(result) > len(raw) {
		return raw
	}
	return result
}

func sectionWanted(header string, keep, drop []string) bool {
	if keep != nil {
		for _, k := range keep {
			if strings.HasPrefix(header, k) {
				return true
			}
		}
		return false
	}
	for _, d := range drop {
		if strings.HasPrefix(header, d) {
			return false
		}
	}
	return true
}

// sectionHeader reports whether the line opens a new section and returns
// the normalized header text.
func sectionHeader(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasSuffix(trimmed, ":") {
		return "", false
	}
	header := strings.TrimSuffix(trimmed, ":")
	if header == "" {
		return "", false
	}
	for _, r := range header {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == ' ', r == '-', r == '/', r == '(', r == ')':
		default:
			return "", false
		}
	}
	return header, true
}
