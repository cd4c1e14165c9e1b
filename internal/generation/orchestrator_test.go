package generation

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oneinabillion/readings/internal/layers"
	"github.com/oneinabillion/readings/internal/lengths"
	"github.com/oneinabillion/readings/internal/llm"
)

const proseParagraph = "Mira carries a restless mind that keeps its own hours. " +
	"Her attention circles a problem until the problem surrenders its shape, " +
	"and the people close to her learn that silence is not absence but work being done."

// compliantReading builds clean prose of at least the given word count.
func compliantReading(words int) string {
	var b strings.Builder
	perParagraph := lengths.CountWords(proseParagraph)
	for count := 0; count < words; count += perParagraph {
		b.WriteString(proseParagraph)
		b.WriteString("\n\n")
	}
	return strings.TrimSpace(b.String())
}

const testTrigger = "Mira learned early that being understood too quickly is a kind of theft, " +
	"so she made herself difficult to summarize and then resented the loneliness that bought her."

func newOrchestrator(client llm.Client) *Orchestrator {
	return New(client, layers.DefaultRegistry(), nil, DefaultConfig())
}

func TestGenerateSingleReading_AcceptsCompliantDraft(t *testing.T) {
	footer := FooterMarker + " Sun in Leo, Moon in Pisces, Ascendant Virgo."
	client := llm.NewScriptedClient(
		llm.ScriptedResponse{LabelPrefix: "trigger:", Text: testTrigger},
		llm.ScriptedResponse{LabelPrefix: "writing:", Text: compliantReading(120) + "\n\n" + footer},
	)

	o := newOrchestrator(client)
	result, err := o.GenerateSingleReading(context.Background(), SingleReadingOptions{
		System:         "western",
		PersonName:     "Mira",
		ChartData:      "SUN SIGN:\nLeo\n\nMOON SIGN:\nPisces",
		HardFloorWords: 100,
	})
	require.NoError(t, err)

	assert.Equal(t, "western", result.Reading.System)
	assert.Equal(t, "individual", result.Reading.Kind)
	assert.NotEmpty(t, result.Reading.ID)
	assert.Empty(t, result.Reading.Warnings)
	assert.GreaterOrEqual(t, result.Reading.WordCount, 100)
	assert.Equal(t, "mythic", result.ResolvedStyleLayerID)

	// Footer split out of the body, reassembled only by Rendered.
	assert.NotContains(t, result.Reading.Body, FooterMarker)
	assert.Equal(t, footer, result.Reading.Footer)
	assert.True(t, strings.HasSuffix(result.Reading.Rendered(), footer))

	calls := client.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "trigger:western", calls[0].Label)
	assert.Equal(t, "writing:western", calls[1].Label)

	// The trigger runs cold against the stripped chart only.
	assert.Empty(t, calls[0].Options.SystemPrompt)
	assert.Equal(t, 1024, calls[0].Options.MaxTokens)

	// The writing call carries the layered instruction stack as its system
	// prompt, without duplicating the chart data there.
	sys := calls[1].Options.SystemPrompt
	assert.Contains(t, sys, "=== STYLE ===")
	assert.Contains(t, sys, "=== SYSTEM ANALYSIS: WESTERN ===")
	assert.Contains(t, sys, "=== MODE RULES ===")
	assert.NotContains(t, sys, "=== CHART DATA ===")
	assert.Contains(t, calls[1].Prompt, "NARRATIVE TRIGGER")
}

func TestGenerateSingleReading_ExpandsToFloor(t *testing.T) {
	short := compliantReading(74)
	client := llm.NewScriptedClient(
		llm.ScriptedResponse{LabelPrefix: "trigger:", Text: testTrigger},
		llm.ScriptedResponse{LabelPrefix: "writing:", Text: short},
		llm.ScriptedResponse{LabelPrefix: "expansion:", Text: compliantReading(74)},
	)

	o := newOrchestrator(client)
	result, err := o.GenerateSingleReading(context.Background(), SingleReadingOptions{
		System:         "vedic",
		PersonName:     "Mira",
		ChartData:      "NAKSHATRA:\nRohini",
		HardFloorWords: 120,
	})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, result.Reading.WordCount, 120)

	calls := client.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, "expansion:1", calls[2].Label)
	// Small gaps still ask for a substantial continuation.
	assert.Contains(t, calls[2].Prompt, "at least 600 more words")
	assert.Contains(t, calls[2].Prompt, short)
}

func TestGenerateSingleReading_ExpansionExhaustionIsTerminal(t *testing.T) {
	responses := []llm.ScriptedResponse{
		{LabelPrefix: "trigger:", Text: testTrigger},
		{LabelPrefix: "writing:", Text: compliantReading(37)},
	}
	for i := 0; i < 5; i++ {
		responses = append(responses, llm.ScriptedResponse{LabelPrefix: "expansion:", Text: ""})
	}
	client := llm.NewScriptedClient(responses...)

	o := newOrchestrator(client)
	_, err := o.GenerateSingleReading(context.Background(), SingleReadingOptions{
		System:         "western",
		PersonName:     "Mira",
		ChartData:      "SUN SIGN:\nLeo",
		HardFloorWords: 500,
	})
	require.ErrorIs(t, err, ErrExpansionFailed)

	// One outer attempt only: running out of expansion passes means the
	// model cannot reach the floor, so a second attempt is not spent.
	assert.Len(t, client.Calls(), 7)
}

func TestGenerateSingleReading_RepairsForbiddenPhrase(t *testing.T) {
	offending := compliantReading(74) + "\n\n" +
		"He wants to delve into the old wound and name it properly, as though " +
		"naming could settle the debt the years have kept on his behalf, and in " +
		"some seasons it nearly does settle it."
	repaired := strings.ReplaceAll(offending, "delve into", "open")

	client := llm.NewScriptedClient(
		llm.ScriptedResponse{LabelPrefix: "trigger:", Text: testTrigger},
		llm.ScriptedResponse{LabelPrefix: "writing:", Text: offending},
		llm.ScriptedResponse{LabelPrefix: "repair:", Text: repaired},
	)

	o := newOrchestrator(client)
	result, err := o.GenerateSingleReading(context.Background(), SingleReadingOptions{
		System:         "numerology",
		PersonName:     "Mira",
		ChartData:      "LIFE PATH:\n7",
		HardFloorWords: 80,
	})
	require.NoError(t, err)
	assert.Empty(t, result.Reading.Warnings)
	assert.NotContains(t, result.Reading.Body, "delve into")

	calls := client.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, "repair:1", calls[2].Label)
	assert.Contains(t, calls[2].Prompt, "forbidden_phrase")
	assert.Contains(t, calls[2].Prompt, "delve into")
}

func TestGenerateSingleReading_SecondPersonToleratedWithWarning(t *testing.T) {
	slip := compliantReading(74) + "\n\n" +
		"There is a sentence she keeps ready for strangers, and it lands before " +
		"you notice the aim behind it, which is the oldest trick a guarded heart " +
		"ever taught its keeper about staying warm."

	client := llm.NewScriptedClient(
		llm.ScriptedResponse{LabelPrefix: "trigger:", Text: testTrigger},
		llm.ScriptedResponse{LabelPrefix: "writing:", Text: slip},
	)

	o := newOrchestrator(client)
	result, err := o.GenerateSingleReading(context.Background(), SingleReadingOptions{
		System:         "chinese",
		PersonName:     "Mira",
		ChartData:      "ANIMAL SIGN:\nWater Rabbit",
		HardFloorWords: 80,
	})
	require.NoError(t, err)

	// A residual second-person slip never costs a repair call.
	assert.Len(t, client.Calls(), 2)
	require.Len(t, result.Reading.Warnings, 1)
	assert.Contains(t, result.Reading.Warnings[0], "second_person")
}

func TestGenerateSingleReading_UnrepairableTextIsRejected(t *testing.T) {
	offending := compliantReading(74) + "\n\nEvery reading insists it is a testament to something larger than its subject, and this one would agree."

	client := llm.NewScriptedClient(
		llm.ScriptedResponse{LabelPrefix: "trigger:", Text: testTrigger},
		llm.ScriptedResponse{LabelPrefix: "writing:", Text: offending},
		llm.ScriptedResponse{LabelPrefix: "repair:", Text: offending},
		llm.ScriptedResponse{LabelPrefix: "repair:", Text: offending},
		llm.ScriptedResponse{LabelPrefix: "writing:", Text: offending},
		llm.ScriptedResponse{LabelPrefix: "repair:", Text: offending},
		llm.ScriptedResponse{LabelPrefix: "repair:", Text: offending},
	)

	o := newOrchestrator(client)
	_, err := o.GenerateSingleReading(context.Background(), SingleReadingOptions{
		System:         "western",
		PersonName:     "Mira",
		ChartData:      "SUN SIGN:\nLeo",
		HardFloorWords: 80,
	})
	require.ErrorIs(t, err, ErrGenerationRejected)
	assert.Len(t, client.Calls(), 7)
}

func TestGenerateSingleReading_SynastryUsesOverlay(t *testing.T) {
	client := llm.NewScriptedClient(
		llm.ScriptedResponse{LabelPrefix: "trigger:", Text: testTrigger},
		llm.ScriptedResponse{LabelPrefix: "writing:", Text: compliantReading(120)},
	)

	o := newOrchestrator(client)
	result, err := o.GenerateSingleReading(context.Background(), SingleReadingOptions{
		System:           "western",
		PersonName:       "Mira",
		Person2Name:      "Jonah",
		ChartDataPerson1: "SUN SIGN:\nLeo",
		ChartDataPerson2: "SUN SIGN:\nCapricorn",
		HardFloorWords:   100,
	})
	require.NoError(t, err)

	assert.Equal(t, "synastry", result.Reading.Kind)
	assert.Contains(t, result.ChartDataForPrompt, "PERSON1 CHART:")
	assert.Contains(t, result.ChartDataForPrompt, "PERSON2 CHART:")

	calls := client.Calls()
	require.Len(t, calls, 2)
	assert.Contains(t, calls[1].Prompt, "Mira and Jonah")
}

func TestGenerateSingleReading_AgeMismatchIsRepairable(t *testing.T) {
	offending := compliantReading(74) + "\n\n" +
		"At 52 years old she still argues with the versions of herself that made " +
		"the old bargains, and the arguments have gotten kinder without getting shorter."
	repaired := strings.ReplaceAll(offending, "At 52 years old", "At 34 years old")

	client := llm.NewScriptedClient(
		llm.ScriptedResponse{LabelPrefix: "trigger:", Text: testTrigger},
		llm.ScriptedResponse{LabelPrefix: "writing:", Text: offending},
		llm.ScriptedResponse{LabelPrefix: "repair:", Text: repaired},
	)

	o := newOrchestrator(client)
	result, err := o.GenerateSingleReading(context.Background(), SingleReadingOptions{
		System:         "western",
		PersonName:     "Mira",
		ChartData:      "SUN SIGN:\nLeo",
		HardFloorWords: 80,
		ExpectedAge:    34,
	})
	require.NoError(t, err)
	assert.Contains(t, result.Reading.Body, "34 years old")

	calls := client.Calls()
	require.Len(t, calls, 3)
	assert.Contains(t, calls[2].Prompt, "age_mismatch")
}

func TestGenerateSingleReading_EmptyTriggerFailsFast(t *testing.T) {
	client := llm.NewScriptedClient(
		llm.ScriptedResponse{LabelPrefix: "trigger:", Text: "   \n\n  "},
	)

	o := newOrchestrator(client)
	_, err := o.GenerateSingleReading(context.Background(), SingleReadingOptions{
		System:     "western",
		PersonName: "Mira",
		ChartData:  "SUN SIGN:\nLeo",
	})
	require.ErrorIs(t, err, ErrEmptyTrigger)
	assert.Len(t, client.Calls(), 1)
}
