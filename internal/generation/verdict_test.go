package generation

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oneinabillion/readings/internal/llm"
	"github.com/oneinabillion/readings/internal/narrative"
)

func scoreBlock() string {
	var b strings.Builder
	b.WriteString("SCORES:")
	for i, dim := range narrative.ScoreDimensions {
		fmt.Fprintf(&b, "\n%s: %d", dim, 60+i)
	}
	return b.String()
}

func TestGenerateVerdict_FreshFromChartData(t *testing.T) {
	verdictText := compliantReading(2600) + "\n\n" + scoreBlock()
	client := llm.NewScriptedClient(
		llm.ScriptedResponse{LabelPrefix: "trigger:verdict", Text: testTrigger},
		llm.ScriptedResponse{LabelPrefix: "writing:verdict", Text: verdictText},
	)

	o := newOrchestrator(client)
	result, err := o.GenerateVerdict(context.Background(), VerdictOptions{
		PersonName:  "Mira",
		Person2Name: "Jonah",
		Source: &FreshFromChartData{
			Systems:          []string{"western", "vedic"},
			ChartDataPerson1: "SUN SIGN:\nLeo",
			ChartDataPerson2: "SUN SIGN:\nCapricorn",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "verdict", result.Reading.System)
	assert.Equal(t, "verdict", result.Reading.Kind)
	assert.Empty(t, result.Reading.Warnings)
	assert.GreaterOrEqual(t, result.Reading.WordCount, 2500)
	assert.Contains(t, result.Reading.Body, "SCORES:")
	assert.Contains(t, result.Reading.Body, "Overall Resonance:")

	// Fresh mode re-strips the charts per system.
	assert.Contains(t, result.ChartDataForPrompt, "--- WESTERN ---")
	assert.Contains(t, result.ChartDataForPrompt, "--- VEDIC ---")
	assert.Contains(t, result.ChartDataForPrompt, "PERSON1 CHART:")

	calls := client.Calls()
	require.Len(t, calls, 2)
	assert.Contains(t, calls[1].Options.SystemPrompt, "=== VERDICT SYNTHESIS ===")
	assert.Contains(t, calls[1].Prompt, "Mira and Jonah")
	assert.Contains(t, calls[1].Prompt, "witnesses, not chapters")
}

func TestGenerateVerdict_MissingScoreBlockIsAWarning(t *testing.T) {
	client := llm.NewScriptedClient(
		llm.ScriptedResponse{LabelPrefix: "trigger:verdict", Text: testTrigger},
		llm.ScriptedResponse{LabelPrefix: "writing:verdict", Text: compliantReading(2600)},
	)

	o := newOrchestrator(client)
	result, err := o.GenerateVerdict(context.Background(), VerdictOptions{
		PersonName:  "Mira",
		Person2Name: "Jonah",
		Source: &FreshFromChartData{
			ChartDataPerson1: "SUN SIGN:\nLeo",
			ChartDataPerson2: "SUN SIGN:\nCapricorn",
		},
	})
	require.NoError(t, err)
	assert.Contains(t, result.Reading.Warnings, "score_block_missing")
}

func TestGenerateVerdict_AccumulatedConclusions(t *testing.T) {
	verdictText := compliantReading(2600) + "\n\n" + scoreBlock()
	client := llm.NewScriptedClient(
		llm.ScriptedResponse{LabelPrefix: "trigger:verdict", Text: testTrigger},
		llm.ScriptedResponse{LabelPrefix: "writing:verdict", Text: verdictText},
	)

	o := newOrchestrator(client)
	result, err := o.GenerateVerdict(context.Background(), VerdictOptions{
		PersonName:  "Mira",
		Person2Name: "Jonah",
		Source: &AccumulatedFromPriorTasks{
			Conclusions: map[string]string{
				"western":    "A fire-earth pairing that trades momentum for ballast.",
				"numerology": "Life paths 7 and 4 share a respect for structure.",
			},
		},
	})
	require.NoError(t, err)

	assert.Contains(t, result.ChartDataForPrompt, "--- WESTERN ---")
	assert.Contains(t, result.ChartDataForPrompt, "--- NUMEROLOGY ---")
	assert.NotContains(t, result.ChartDataForPrompt, "--- VEDIC ---")
}

func TestGenerateVerdict_AccumulatedWithoutConclusionsFails(t *testing.T) {
	o := newOrchestrator(llm.NewScriptedClient())
	_, err := o.GenerateVerdict(context.Background(), VerdictOptions{
		PersonName:  "Mira",
		Person2Name: "Jonah",
		Source:      &AccumulatedFromPriorTasks{},
	})
	require.ErrorIs(t, err, ErrUnsupportedVerdictMode)
}

type bogusSource struct{}

func (bogusSource) Mode() string                             { return "crystal_ball" }
func (bogusSource) Findings(context.Context) (string, error) { return "", nil }

func TestGenerateVerdict_UnknownModeIsRejected(t *testing.T) {
	o := newOrchestrator(llm.NewScriptedClient())

	_, err := o.GenerateVerdict(context.Background(), VerdictOptions{
		PersonName:  "Mira",
		Person2Name: "Jonah",
		Source:      bogusSource{},
	})
	require.ErrorIs(t, err, ErrUnsupportedVerdictMode)

	_, err = o.GenerateVerdict(context.Background(), VerdictOptions{
		PersonName: "Mira",
	})
	require.ErrorIs(t, err, ErrUnsupportedVerdictMode)
}
