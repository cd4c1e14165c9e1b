package generation

import (
	"regexp"
	"strings"

	"github.com/oneinabillion/readings/internal/lengths"
)

// Paragraph-tightening thresholds. A non-first paragraph under
// minParagraphWords is merged into its neighbor; standalone title lines are
// capped at maxTitleLines per reading.
const (
	minParagraphWords = 25
	maxTitleLines     = 6
)

var (
	markdownHeadingRe = regexp.MustCompile(`(?m)^#{1,6}\s*`)
	bulletPrefixRe    = regexp.MustCompile(`(?m)^\s*(?:[-*•]|\d{1,2}\.)\s+`)
	emphasisRe        = regexp.MustCompile("[*_`]+")

	// Sentences defining what a house "is", which belong in a textbook, not
	// a reading.
	houseDefinitionRe = regexp.MustCompile(`(?i)\bthe (first|second|third|fourth|fifth|sixth|seventh|eighth|ninth|tenth|eleventh|twelfth) house (rules|governs|represents|is the house of)[^.!?]*[.!?]\s*`)

	// Internal scaffolding that occasionally leaks into drafts.
	controlLineRe = regexp.MustCompile(`(?m)^.*(?:===|NARRATIVE TRIGGER|CHART EXTRACT|FINAL INSTRUCTION|OUTPUT LENGTH CONTRACT|MODE RULES|PREFERENCE LENS|SUBJECTS:|TRUNCATED FOR TOKEN SAFETY).*$\n?`)
	fileTokenRe   = regexp.MustCompile(`\b[\w-]+\.(?:md|txt|json|yaml)\b`)

	dashReplacer = strings.NewReplacer(" — ", ", ", "—", ", ", " – ", ", ", "–", ", ")

	// Pronoun-after-preposition errors: "a gift for they" -> "for them".
	pronounAfterPrepRe = regexp.MustCompile(`(?i)\b(for|with|to|from|between|against|toward|towards|about|by|near)\s+(he|she|they)\b`)
	objectPronouns     = map[string]string{"he": "him", "she": "her", "they": "them"}
)

// Clean normalizes one raw model draft: markdown artifacts out, dashes
// normalized, leaked scaffolding removed, common grammar slips fixed, and
// paragraphs tightened. Idempotent in practice; safe to run after every
// pass.
func Clean(text string) string {
	out := controlLineRe.ReplaceAllString(text, "")
	out = fileTokenRe.ReplaceAllString(out, "")
	out = markdownHeadingRe.ReplaceAllString(out, "")
	out = bulletPrefixRe.ReplaceAllString(out, "")
	out = emphasisRe.ReplaceAllString(out, "")
	out = dashReplacer.Replace(out)
	out = houseDefinitionRe.ReplaceAllString(out, "")
	out = fixPronounsAfterPrepositions(out)
	out = tightenParagraphs(out)
	return strings.TrimSpace(out)
}

func fixPronounsAfterPrepositions(text string) string {
	return pronounAfterPrepRe.ReplaceAllStringFunc(text, func(match string) string {
		fields := strings.Fields(match)
		if len(fields) != 2 {
			return match
		}
		object, ok := objectPronouns[strings.ToLower(fields[1])]
		if !ok {
			return match
		}
		return fields[0] + " " + object
	})
}

// tightenParagraphs merges non-first paragraphs shorter than the merge
// threshold into the preceding prose paragraph, or forward into the next one
// when only titles precede them, and caps the number of standalone title
// lines. Title lines, the score block, and chart-signature lines are never
// merged.
func tightenParagraphs(text string) string {
	paragraphs := splitParagraphs(text)
	var out []string
	var carried []string // short paragraphs waiting for prose to merge into
	titles := 0
	lastProse := -1 // index in out of the last mergeable paragraph

	for i, p := range paragraphs {
		switch {
		case isTitleLine(p):
			titles++
			if titles > maxTitleLines {
				continue // excess titles are dropped outright
			}
			out = append(out, p)
		case isProtectedBlock(p):
			out = append(out, p)
		case i > 0 && lengths.CountWords(p) < minParagraphWords:
			if lastProse >= 0 {
				out[lastProse] = out[lastProse] + " " + p
			} else {
				carried = append(carried, p)
			}
		default:
			if len(carried) > 0 {
				p = strings.Join(append(carried, p), " ")
				carried = nil
			}
			out = append(out, p)
			lastProse = len(out) - 1
		}
	}
	if len(carried) > 0 {
		out = append(out, strings.Join(carried, " "))
	}
	return strings.Join(out, "\n\n")
}

func splitParagraphs(text string) []string {
	var out []string
	for _, p := range strings.Split(text, "\n\n") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// isTitleLine detects a standalone plain-text section title: one short line
// without terminal punctuation.
func isTitleLine(paragraph string) bool {
	if strings.Contains(paragraph, "\n") {
		return false
	}
	words := lengths.CountWords(paragraph)
	if words == 0 || words > 8 {
		return false
	}
	last := paragraph[len(paragraph)-1]
	switch last {
	case '.', '!', '?', ':', ',', ';':
		return false
	}
	return true
}

// isProtectedBlock exempts the verdict score block and chart-signature
// footers from paragraph merging.
func isProtectedBlock(paragraph string) bool {
	return strings.HasPrefix(paragraph, "SCORES:") ||
		strings.HasPrefix(paragraph, FooterMarker)
}
