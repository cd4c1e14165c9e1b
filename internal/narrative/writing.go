package narrative

import (
	"fmt"
	"strings"
)

// writingContract is the shared constraint block of every writing prompt.
const writingContract = `Constraints, all mandatory:
- The NARRATIVE TRIGGER below is the spine. Every paragraph must serve it,
  deepen it, or pay for it. A paragraph that could be moved to another
  person's reading must be cut.
- Third person only. Never address anyone as "you". Never the imperative.
- Invent NOTHING biographical that the chart data does not state. Scenes
  may dramatize a placement's meaning; they may not assert events.
- Explain every technical term from the system in plain language the first
  time it appears.
- No repair language, no advice, no affirmations, no disclaimers.`

// mythicStructure states the section-title convention of the default style.
const mythicStructure = `Structure:
- Section titles are allowed: standalone plain-text lines, no numbering,
  no markdown syntax of any kind.
- Use at most six section titles in the whole reading.`

// incarnationStructure states the Zone 2 rules of the incarnation style.
const incarnationStructure = `Structure:
- Roughly the first 600 words are Zone 1: technical placement syntax is
  allowed there, explained on first use, and standalone titles are allowed
  there only.
- Everything after that is Zone 2: NO standalone headline lines and NO
  technical placement syntax ("Planet in Sign", "X conjunct Y"). The
  system must be fully dissolved into narrative.`

// WritingPrompt builds the long-form instruction for an individual reading.
// styleID selects the structural convention; any id other than
// "incarnation" uses the standalone-title convention.
func WritingPrompt(system, personName, trigger, strippedChart string, targetWords int, styleID string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write the full %s reading for %s. At least %d words; length must come from depth, not repetition.\n\n",
		system, personName, targetWords)
	b.WriteString(writingContract)
	b.WriteString("\n")
	b.WriteString(structureFor(styleID))
	b.WriteString("\n\nNARRATIVE TRIGGER (the spine):\n")
	b.WriteString(trigger)
	b.WriteString("\n\nCHART EXTRACT:\n")
	b.WriteString(strippedChart)
	return b.String()
}

// OverlayWritingPrompt builds the long-form instruction for a two-person
// reading.
func OverlayWritingPrompt(system, person1, person2, trigger, strippedOverlay string, targetWords int, styleID string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write the full %s relationship reading for %s and %s. At least %d words.\n",
		system, person1, person2, targetWords)
	b.WriteString("This is ONE reading about ONE relationship. Narrate circuits, not two portraits: ")
	b.WriteString("what one does, what it triggers in the other, how the answer feeds back.\n\n")
	b.WriteString(writingContract)
	b.WriteString("\n")
	b.WriteString(structureFor(styleID))
	b.WriteString("\n\nNARRATIVE TRIGGER (the spine):\n")
	b.WriteString(trigger)
	b.WriteString("\n\nCHART EXTRACTS:\n")
	b.WriteString(strippedOverlay)
	return b.String()
}

func structureFor(styleID string) string {
	if styleID == "incarnation" {
		return incarnationStructure
	}
	return mythicStructure
}
