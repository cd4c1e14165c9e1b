// Package compose assembles a single bounded prompt from the layer
// registry, per-job directives, and reading-kind-specific rule text. Every
// layer is capped against a fixed character budget and the result carries
// full diagnostics, so a prompt can never silently outgrow the model's
// context window.
package compose

import (
	"errors"
	"fmt"
	"strings"

	"github.com/oneinabillion/readings/internal/layers"
	"github.com/oneinabillion/readings/internal/lengths"
	"github.com/oneinabillion/readings/pkg/models"
)

// ErrInvalidInput marks composer argument errors: a caller bug, not
// retryable as-is.
var ErrInvalidInput = errors.New("compose: invalid input")

// Per-layer character budgets. Exceeding a budget truncates the layer and
// appends a visible marker; it never fails the composition.
const (
	BudgetStyle          = 12000
	BudgetSystemBlock    = 20000
	BudgetModeRules      = 1800
	BudgetPreferenceLens = 1400
	BudgetOutputLength   = 700
	BudgetContext        = 2800
	BudgetChartData      = 30000
	BudgetOutputLanguage = 250
	BudgetVerdictLayer   = 20000
)

// Input collects everything a composition needs. Person2Name is required
// unless Kind is individual.
type Input struct {
	Kind                lengths.ReadingKind
	Systems             []string
	Person1Name         string
	Person2Name         string
	ChartData           string
	PersonalContext     string
	RelationshipContext string
	OutputLanguage      string
	PreferenceScale     int // 1..10, 0 = unset
	Directive           *models.PromptLayerDirective
}

// LayerStat records how one layer fared against its budget.
type LayerStat struct {
	Name        string `json:"name"`
	SourceChars int    `json:"source_chars"`
	FinalChars  int    `json:"final_chars"`
	MaxChars    int    `json:"max_chars"`
	Truncated   bool   `json:"truncated"`
}

// Diagnostics describes the composed prompt: which layers were used, how
// each fared against its budget, and any directive ids that fell back to
// registry defaults.
type Diagnostics struct {
	StyleLayerID   string              `json:"style_layer_id"`
	SystemLayerIDs []string            `json:"system_layer_ids"`
	VerdictLayerID string              `json:"verdict_layer_id,omitempty"`
	TotalChars     int                 `json:"total_chars"`
	LayerStats     []LayerStat         `json:"layer_stats"`
	Fallbacks      []layers.Resolution `json:"fallbacks,omitempty"`
}

// Result is the composed prompt plus its diagnostics.
type Result struct {
	Prompt      string      `json:"prompt"`
	Diagnostics Diagnostics `json:"diagnostics"`
}

// Composer assembles prompts against an injected layer registry.
type Composer struct {
	registry *layers.Registry
}

// NewComposer creates a composer over the given registry.
func NewComposer(registry *layers.Registry) *Composer {
	return &Composer{registry: registry}
}

// closingInstruction terminates every composed prompt.
const closingInstruction = "FINAL INSTRUCTION: Write the reading as continuous prose. " +
	"No markdown of any kind: no #, no *, no bullet points, no numbered lists, no tables. " +
	"Plain text only, paragraphs separated by blank lines."

// Compose assembles the full prompt. It is referentially transparent given
// a fixed registry: identical inputs yield identical results.
func (c *Composer) Compose(in Input) (*Result, error) {
	if len(in.Systems) == 0 {
		return nil, fmt.Errorf("%w: at least one system is required", ErrInvalidInput)
	}
	if in.Kind != lengths.KindIndividual && in.Person2Name == "" {
		return nil, fmt.Errorf("%w: person2 name is required for %s readings", ErrInvalidInput, in.Kind)
	}

	systems := dedupeOrdered(in.Systems)
	directive := in.Directive
	if directive == nil {
		directive = &models.PromptLayerDirective{}
	}

	var (
		b     strings.Builder
		diags Diagnostics
	)

	appendLayer := func(name, content string, budget int) {
		capped, stat := capLayer(name, content, budget)
		diags.LayerStats = append(diags.LayerStats, stat)
		if capped == "" {
			return
		}
		b.WriteString("=== " + name + " ===\n")
		b.WriteString(capped)
		b.WriteString("\n\n")
	}

	// Style layer.
	styleRes := c.registry.Resolve(layers.KindStyle, directive.StyleLayerID)
	if styleRes.FellBack && directive.StyleLayerID != "" {
		diags.Fallbacks = append(diags.Fallbacks, styleRes)
	}
	diags.StyleLayerID = styleRes.ResolvedID
	styleContent, err := c.registry.Content(layers.KindStyle, styleRes.ResolvedID)
	if err != nil {
		return nil, err
	}
	appendLayer("STYLE", styleContent, BudgetStyle)

	// One analysis block per requested system. Synastry and verdict readings
	// are relational, so they use the synastry variants.
	systemKind := layers.KindSystemIndividual
	if in.Kind != lengths.KindIndividual {
		systemKind = layers.KindSystemSynastry
	}
	for _, system := range systems {
		requested := directive.SystemLayerIDs[system]
		if requested == "" {
			requested = system
		}
		res := c.registry.Resolve(systemKind, requested)
		if res.FellBack {
			diags.Fallbacks = append(diags.Fallbacks, res)
		}
		diags.SystemLayerIDs = append(diags.SystemLayerIDs, res.ResolvedID)
		content, err := c.registry.Content(systemKind, res.ResolvedID)
		if err != nil {
			return nil, err
		}
		appendLayer("SYSTEM ANALYSIS: "+strings.ToUpper(system), content, BudgetSystemBlock)

		if system == layers.SystemKabbalah && directive.EnableNameKabbalah {
			nameContent, err := c.registry.Content(systemKind, "kabbalah_name")
			if err != nil {
				return nil, err
			}
			appendLayer("SYSTEM ANALYSIS: KABBALAH NAME", nameContent, BudgetSystemBlock)
		}
	}

	appendLayer("MODE RULES", modeRules(in.Kind), BudgetModeRules)
	appendLayer("PREFERENCE LENS", preferenceLens(in.PreferenceScale), BudgetPreferenceLens)
	appendLayer("OUTPUT LENGTH", outputLengthContract(in.Kind), BudgetOutputLength)

	b.WriteString(subjectsLine(in))
	b.WriteString("\n\n")

	if context := contextBlock(in); context != "" {
		appendLayer("CONTEXT", context, BudgetContext)
	}
	appendLayer("CHART DATA", in.ChartData, BudgetChartData)
	if in.OutputLanguage != "" {
		appendLayer("OUTPUT LANGUAGE", "Write the entire reading in: "+in.OutputLanguage, BudgetOutputLanguage)
	}

	if in.Kind == lengths.KindVerdict {
		verdictRes := c.registry.Resolve(layers.KindVerdict, directive.VerdictLayerID)
		if verdictRes.FellBack && directive.VerdictLayerID != "" {
			diags.Fallbacks = append(diags.Fallbacks, verdictRes)
		}
		diags.VerdictLayerID = verdictRes.ResolvedID
		verdictContent, err := c.registry.Content(layers.KindVerdict, verdictRes.ResolvedID)
		if err != nil {
			return nil, err
		}
		appendLayer("VERDICT SYNTHESIS", verdictContent, BudgetVerdictLayer)
	}

	b.WriteString(closingInstruction)

	prompt := b.String()
	diags.TotalChars = len(prompt)
	return &Result{Prompt: prompt, Diagnostics: diags}, nil
}

// ComposeFromJobPayload adapts the job system's payload shape into a
// composition. Unrecognized job types compose as individual readings.
func (c *Composer) ComposeFromJobPayload(payload *models.JobPayload) (*Result, error) {
	in := Input{
		Kind:                KindForJobType(payload.Type),
		Systems:             payload.Systems,
		Person1Name:         payload.Person1.Name,
		ChartData:           payload.ChartData,
		PersonalContext:     payload.PersonalContext,
		RelationshipContext: payload.RelationshipContext,
		OutputLanguage:      payload.OutputLanguage,
		PreferenceScale:     payload.RelationshipPreferenceScale,
		Directive:           payload.PromptLayerDirective,
	}
	if payload.Person2 != nil {
		in.Person2Name = payload.Person2.Name
	}
	return c.Compose(in)
}

// KindForJobType maps a job payload type onto a reading kind.
func KindForJobType(jobType string) lengths.ReadingKind {
	switch jobType {
	case models.JobTypeSynastry:
		return lengths.KindSynastry
	case models.JobTypeBundleVerdict:
		return lengths.KindVerdict
	default:
		return lengths.KindIndividual
	}
}

func subjectsLine(in Input) string {
	if in.Kind == lengths.KindIndividual {
		return "SUBJECTS: " + in.Person1Name
	}
	return "SUBJECTS: " + in.Person1Name + " and " + in.Person2Name
}

func contextBlock(in Input) string {
	var parts []string
	if in.PersonalContext != "" {
		parts = append(parts, "Personal context: "+in.PersonalContext)
	}
	if in.RelationshipContext != "" {
		parts = append(parts, "Relationship context: "+in.RelationshipContext)
	}
	return strings.Join(parts, "\n")
}

func dedupeOrdered(systems []string) []string {
	seen := make(map[string]bool, len(systems))
	var out []string
	for _, s := range systems {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
