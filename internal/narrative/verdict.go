package narrative

import (
	"fmt"
	"strings"
)

// ScoreDimensions are the ten 0-100 dimensions every verdict must end with,
// in this order.
var ScoreDimensions = []string{
	"Chemistry",
	"Stability",
	"Communication",
	"Growth Pressure",
	"Conflict Repair",
	"Intimacy",
	"Shared Purpose",
	"Autonomy",
	"Longevity",
	"Overall Resonance",
}

// ScoreBlockRequirement renders the fixed score-block contract embedded at
// the end of every verdict writing prompt.
func ScoreBlockRequirement() string {
	var b strings.Builder
	b.WriteString("End the verdict with EXACTLY this score block, after the final paragraph:\n")
	b.WriteString("SCORES:\n")
	for _, dim := range ScoreDimensions {
		fmt.Fprintf(&b, "%s: <0-100>\n", dim)
	}
	b.WriteString("Each score on its own line, integer 0-100, nothing after the block.")
	return b.String()
}

// VerdictWritingPrompt builds the synthesis writing instruction. Findings
// carries the per-system material (fresh or accumulated) the verdict must
// integrate.
func VerdictWritingPrompt(person1, person2, trigger, findings string, targetWords int, styleID string) string {
	subjects := person1
	if person2 != "" {
		subjects = person1 + " and " + person2
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Write the final verdict for %s: one synthesis across every system below. At least %d words.\n",
		subjects, targetWords)
	b.WriteString("The systems are witnesses, not chapters. Never output per-system mini-readings. ")
	b.WriteString("Open with the conclusion they converge on; stage their disagreements and rule on them.\n\n")
	b.WriteString(writingContract)
	b.WriteString("\n")
	b.WriteString(structureFor(styleID))
	b.WriteString("\n\n")
	b.WriteString(ScoreBlockRequirement())
	b.WriteString("\n\nNARRATIVE TRIGGER (the spine):\n")
	b.WriteString(trigger)
	b.WriteString("\n\nSYSTEM FINDINGS:\n")
	b.WriteString(findings)
	return b.String()
}
