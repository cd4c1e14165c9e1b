// Package narrative builds the two model-facing instructions of a
// generation: the trigger prompt, which asks for the single central tension,
// and the writing prompt, which turns that tension into a full reading
// under explicit structural constraints.
package narrative

import (
	"fmt"
	"strings"
)

// triggerContract is the shared instruction every trigger prompt carries.
const triggerContract = `Name the single central psychological tension of
this material in EXACTLY ONE paragraph of 80 to 120 words, third person.
Rules:
- One lived-experience tension, not a label, not system jargon.
- No repair language: do not resolve, soften, or promise growth.
- Every sentence must be concrete enough to be filmed.
- The paragraph must cost something to read. If it flatters, start over.
Output only the paragraph. No title, no preamble, no commentary.`

// systemTriggerAngles gives each system its own hunting ground for the
// tension. Unknown systems get the generic line.
var systemTriggerAngles = map[string]string{
	"western":    "Hunt in the tightest hard aspects and the gap between the Sun's agenda and the Moon's hunger.",
	"vedic":      "Hunt in the friction between the lagna's vehicle and what the current dasha chapter demands of it.",
	"chinese":    "Hunt in the day master's relation to the void element: what the economy cannot produce and keeps importing.",
	"numerology": "Hunt in the distance between the soul urge's appetite and the expression number's toolkit.",
	"kabbalah":   "Hunt in the correction itself: the transaction left unpaid and the skill with which it is being avoided.",
}

// TriggerPrompt builds the find-the-central-tension instruction for one
// person in one system.
func TriggerPrompt(system, personName, strippedChart string) string {
	angle, ok := systemTriggerAngles[system]
	if !ok {
		angle = "Hunt in whatever the chart data itself marks as dominant and as absent."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Subject: %s.\n", personName)
	b.WriteString(angle)
	b.WriteString("\n\n")
	b.WriteString(triggerContract)
	b.WriteString("\n\nCHART EXTRACT:\n")
	b.WriteString(strippedChart)
	return b.String()
}

// OverlayTriggerPrompt builds the relational trigger for a two-person
// reading. The tension must belong to the circuit between the two people,
// never to either person alone.
func OverlayTriggerPrompt(system, person1, person2, strippedOverlay string) string {
	angle, ok := systemTriggerAngles[system]
	if !ok {
		angle = "Hunt in whatever the two charts mark as dominant and as absent."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Subjects: %s and %s, read as one relational field.\n", person1, person2)
	b.WriteString(angle)
	b.WriteString("\nThe tension you name must be RELATIONAL: a loop between the two people, ")
	b.WriteString("with both of them inside it. A tension that belongs to only one person is a failure.\n\n")
	b.WriteString(triggerContract)
	b.WriteString("\n\nCHART EXTRACTS:\n")
	b.WriteString(strippedOverlay)
	return b.String()
}

// VerdictTriggerPrompt builds the synthesis trigger across all analyzed
// systems. Findings is either fresh stripped chart data per system or the
// accumulated prior trigger paragraphs, depending on the verdict policy.
func VerdictTriggerPrompt(person1, person2, findings string) string {
	var b strings.Builder
	subjects := person1
	if person2 != "" {
		subjects = person1 + " and " + person2
	}
	fmt.Fprintf(&b, "Subjects: %s.\n", subjects)
	b.WriteString("Below are the findings of several interpretive systems on the same ")
	b.WriteString("material. Name the ONE tension they converge on from their different ")
	b.WriteString("directions. Do not pick one system's tension; find the deeper one that ")
	b.WriteString("explains why each system saw what it saw.\n\n")
	b.WriteString(triggerContract)
	b.WriteString("\n\nSYSTEM FINDINGS:\n")
	b.WriteString(findings)
	return b.String()
}
