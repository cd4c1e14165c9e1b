package compose

import (
	"fmt"

	"github.com/oneinabillion/readings/internal/lengths"
)

// modeRules returns the fixed, kind-specific instruction block.
func modeRules(kind lengths.ReadingKind) string {
	switch kind {
	case lengths.KindSynastry:
		return "MODE: RELATIONAL READING.\n" +
			"This is one reading about one relationship, not two readings stapled together. " +
			"Find the central recurring loop between these two people and name its pursuer and its withdrawer. " +
			"Every dynamic must be narrated as a circuit: what one person does, what it triggers in the other, " +
			"and how the response feeds back into the first. Individual traits may appear only in service of the loop. " +
			"Do not score the relationship and do not advise leaving or staying."
	case lengths.KindVerdict:
		return "MODE: VERDICT SYNTHESIS.\n" +
			"Integrate all prior system findings into one argument with one spine. " +
			"Never output five mini-readings under system headings; the systems are witnesses, not chapters. " +
			"Open with the conclusion every system converges on, then stage the disagreements and rule on them. " +
			"Spend no words repeating what any single system already established on its own."
	default:
		return "MODE: INDIVIDUAL PORTRAIT.\n" +
			"Build one complete portrait of one person. Every section must deepen the same central tension " +
			"rather than opening a new topic. The reading is finished when the portrait would be recognized " +
			"by the people who know the subject best and would make the subject sit down."
	}
}

// preferenceBands maps the 1-10 relationship-preference scale into five
// named bands.
var preferenceBands = []struct {
	max   int
	name  string
	gloss string
}{
	{2, "stability-first", "wants a relationship that behaves like ground: predictable, repairing, low-drama"},
	{4, "steady-warmth", "wants warmth with reliability, tolerating mild turbulence for real closeness"},
	{6, "balanced", "wants intensity and stability in roughly equal measure, traded consciously"},
	{8, "high-intensity", "wants to be altered by the relationship and accepts periodic instability as the price"},
	{10, "extreme-intensity", "wants the relationship as a transforming force and accepts volatility as constitutional"},
}

// preferenceLens renders the stated-appetite instruction. A zero scale means
// the subject stated no preference; the writer judges fit against the
// balanced band.
func preferenceLens(scale int) string {
	band := preferenceBands[2] // balanced
	stated := "The subject stated no preference; assume the balanced band."
	if scale >= 1 && scale <= 10 {
		for _, candidate := range preferenceBands {
			if scale <= candidate.max {
				band = candidate
				break
			}
		}
		stated = fmt.Sprintf("The subject placed their appetite at %d of 10.", scale)
	}
	return fmt.Sprintf(
		"PREFERENCE LENS.\n%s That places them in the %s band: %s. "+
			"Judge the fit between this stated appetite and what the charts actually compute. "+
			"If the computed dynamic feeds a different appetite than the stated one, say so plainly; "+
			"the gap between wanted and built is often the true finding.",
		stated, band.name, band.gloss)
}

// outputLengthContract encodes the per-kind word targets the orchestrator
// will later enforce.
func outputLengthContract(kind lengths.ReadingKind) string {
	c := lengths.ContractFor(kind)
	return fmt.Sprintf(
		"OUTPUT LENGTH CONTRACT.\nWrite at least %d words. Aim for %d words. Do not exceed %d words. "+
			"A reading under %d words will be rejected outright. Length must come from depth on the "+
			"central tension, never from repetition or padding.",
		c.Min, c.Target, c.Max, c.HardFloorWords)
}
