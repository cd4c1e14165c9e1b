package generation

import "strings"

// FooterMarker opens the metadata footer: the chart-signature/data lines
// the writing prompt allows at the very end of a reading.
const FooterMarker = "CHART SIGNATURE:"

// ExtractFooter splits an accepted reading into body and trailing metadata
// footer. The footer, when present, starts at the last FooterMarker line and
// runs to the end. Applying extraction to a body with the footer reattached
// yields the same footer, so the caller can round-trip safely.
func ExtractFooter(text string) (body, footer string) {
	trimmed := strings.TrimSpace(text)
	idx := strings.LastIndex(trimmed, FooterMarker)
	if idx < 0 {
		return trimmed, ""
	}
	// The marker must start its own line; a mid-sentence mention is body.
	if idx > 0 && trimmed[idx-1] != '\n' {
		return trimmed, ""
	}
	body = strings.TrimSpace(trimmed[:idx])
	footer = strings.TrimSpace(trimmed[idx:])
	return body, footer
}
