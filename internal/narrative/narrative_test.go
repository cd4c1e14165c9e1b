package narrative

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTriggerPrompt_CoreContract(t *testing.T) {
	prompt := TriggerPrompt("kabbalah", "Michael", "PRIMARY CORRECTION:\nReceiving.")

	assert.Contains(t, prompt, "Subject: Michael.")
	assert.Contains(t, prompt, "80 to 120 words")
	assert.Contains(t, prompt, "third person")
	assert.Contains(t, prompt, "cost something to read")
	assert.Contains(t, prompt, "correction itself")
	assert.Contains(t, prompt, "CHART EXTRACT:\nPRIMARY CORRECTION:")
}

func TestTriggerPrompt_UnknownSystemGetsGenericAngle(t *testing.T) {
	prompt := TriggerPrompt("runes", "A", "data")
	assert.Contains(t, prompt, "dominant and as absent")
}

func TestOverlayTriggerPrompt_DemandsRelationalTension(t *testing.T) {
	prompt := OverlayTriggerPrompt("western", "Ana", "Leo", "PERSON1 CHART:\nx\n\nPERSON2 CHART:\ny")

	assert.Contains(t, prompt, "Ana and Leo")
	assert.Contains(t, prompt, "RELATIONAL")
	assert.Contains(t, prompt, "only one person is a failure")
	assert.Contains(t, prompt, "PERSON2 CHART:")
}

func TestVerdictTriggerPrompt_SingleAndPair(t *testing.T) {
	pair := VerdictTriggerPrompt("Ana", "Leo", "findings")
	assert.Contains(t, pair, "Subjects: Ana and Leo.")
	assert.Contains(t, pair, "converge on")

	single := VerdictTriggerPrompt("Ana", "", "findings")
	assert.Contains(t, single, "Subjects: Ana.")
}

func TestWritingPrompt_EmbedsTriggerAsSpine(t *testing.T) {
	trigger := "He wins arguments he does not want to have."
	prompt := WritingPrompt("western", "Michael", trigger, "SUN:\nPisces.", 4000, "mythic")

	assert.Contains(t, prompt, "At least 4000 words")
	assert.Contains(t, prompt, "NARRATIVE TRIGGER (the spine):\n"+trigger)
	assert.Contains(t, prompt, `Never address anyone as "you"`)
	assert.Contains(t, prompt, "Invent NOTHING biographical")
	assert.Contains(t, prompt, "plain language the first")
	assert.Contains(t, prompt, "standalone plain-text lines")
	assert.NotContains(t, prompt, "Zone 2")
}

func TestWritingPrompt_IncarnationStyleBansHeadlinesInZone2(t *testing.T) {
	prompt := WritingPrompt("vedic", "A", "trigger", "data", 4000, "incarnation")

	assert.Contains(t, prompt, "Zone 1")
	assert.Contains(t, prompt, "Zone 2: NO standalone headline lines")
	assert.Contains(t, prompt, "600 words")
	assert.NotContains(t, prompt, "at most six section titles")
}

func TestOverlayWritingPrompt_NarratesCircuits(t *testing.T) {
	prompt := OverlayWritingPrompt("chinese", "Ana", "Leo", "trigger", "extracts", 3500, "mythic")

	assert.Contains(t, prompt, "Ana and Leo")
	assert.Contains(t, prompt, "ONE relationship")
	assert.Contains(t, prompt, "circuits, not two portraits")
	assert.Contains(t, prompt, "At least 3500 words")
}

func TestVerdictWritingPrompt_EmbedsScoreBlock(t *testing.T) {
	prompt := VerdictWritingPrompt("Ana", "Leo", "trigger", "findings", 2500, "mythic")

	assert.Contains(t, prompt, "witnesses, not chapters")
	assert.Contains(t, prompt, "SCORES:")
	for _, dim := range ScoreDimensions {
		assert.Contains(t, prompt, dim+": <0-100>")
	}
	// Score block appears before the trigger and findings sections. The
	// contract prose also says "NARRATIVE TRIGGER", so anchor on the
	// section header.
	assert.Less(t, strings.Index(prompt, "SCORES:"), strings.Index(prompt, "NARRATIVE TRIGGER (the spine):"))
	assert.Less(t, strings.Index(prompt, "SCORES:"), strings.Index(prompt, "SYSTEM FINDINGS:"))
}

func TestScoreBlock_HasTenDimensions(t *testing.T) {
	assert.Len(t, ScoreDimensions, 10)
}
