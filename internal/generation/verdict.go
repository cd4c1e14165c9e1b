package generation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/oneinabillion/readings/internal/layers"
	"github.com/oneinabillion/readings/internal/lengths"
	"github.com/oneinabillion/readings/internal/logging"
	"github.com/oneinabillion/readings/internal/narrative"
	"github.com/oneinabillion/readings/internal/strip"
	"github.com/oneinabillion/readings/pkg/models"
)

// Verdict trigger modes. Fresh re-derives the cross-system findings from the
// raw chart data; accumulated reuses condensed conclusions from readings that
// already ran in the same bundle.
const (
	VerdictModeFresh       = "fresh_from_chart_data"
	VerdictModeAccumulated = "accumulated_from_prior_tasks"
)

// VerdictTriggerSource supplies the per-system findings the verdict
// synthesizes. Mode names which policy produced them.
type VerdictTriggerSource interface {
	Mode() string
	Findings(ctx context.Context) (string, error)
}

// FreshFromChartData strips the bundle's overlay chart data per system and
// presents the result as findings. It needs no prior readings, so a verdict
// can run standalone.
type FreshFromChartData struct {
	Systems          []string
	ChartDataPerson1 string
	ChartDataPerson2 string
}

func (f *FreshFromChartData) Mode() string { return VerdictModeFresh }

func (f *FreshFromChartData) Findings(_ context.Context) (string, error) {
	systems := f.Systems
	if len(systems) == 0 {
		systems = layers.Systems()
	}
	var b strings.Builder
	for _, sys := range systems {
		fn := strip.ForSystem(sys)
		fmt.Fprintf(&b, "--- %s ---\n", strings.ToUpper(sys))
		b.WriteString(strip.Overlay(fn, f.ChartDataPerson1, f.ChartDataPerson2))
		b.WriteString("\n\n")
	}
	return strings.TrimSpace(b.String()), nil
}

// AccumulatedFromPriorTasks carries condensed conclusions from the synastry
// readings generated earlier in the bundle, keyed by system.
type AccumulatedFromPriorTasks struct {
	Conclusions map[string]string
}

func (a *AccumulatedFromPriorTasks) Mode() string { return VerdictModeAccumulated }

func (a *AccumulatedFromPriorTasks) Findings(_ context.Context) (string, error) {
	if len(a.Conclusions) == 0 {
		return "", fmt.Errorf("%w: no prior conclusions accumulated", ErrUnsupportedVerdictMode)
	}
	var b strings.Builder
	for _, sys := range layers.Systems() {
		if c, ok := a.Conclusions[sys]; ok && strings.TrimSpace(c) != "" {
			fmt.Fprintf(&b, "--- %s ---\n%s\n\n", strings.ToUpper(sys), strings.TrimSpace(c))
		}
	}
	return strings.TrimSpace(b.String()), nil
}

// VerdictOptions describes one bundle-verdict generation.
type VerdictOptions struct {
	PersonName   string
	Person2Name  string
	StyleLayerID string
	// Systems feeds the layered system prompt; empty means all five.
	Systems []string
	// PayloadBase carries job-level context (preference, language, layers).
	PayloadBase *models.JobPayload
	Source      VerdictTriggerSource
	Logger      *logging.GenerationLogger
}

// GenerateVerdict runs the verdict variant of the state machine: one trigger
// call over the cross-system findings, one synthesis writing call, then the
// same clean/expand/repair/gate path as every other reading.
func (o *Orchestrator) GenerateVerdict(ctx context.Context, opts VerdictOptions) (*SingleReadingResult, error) {
	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}
	if opts.Source == nil {
		return nil, fmt.Errorf("%w: nil trigger source", ErrUnsupportedVerdictMode)
	}
	switch opts.Source.Mode() {
	case VerdictModeFresh, VerdictModeAccumulated:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedVerdictMode, opts.Source.Mode())
	}

	contract := lengths.ContractFor(lengths.KindVerdict)

	findings, err := opts.Source.Findings(ctx)
	if err != nil {
		return nil, err
	}

	log.Section("VERDICT TRIGGER")
	log.StageStarted("trigger")
	trigger, err := o.callTrigger(ctx,
		narrative.VerdictTriggerPrompt(opts.PersonName, opts.Person2Name, findings),
		"trigger:verdict")
	if err != nil {
		log.StageError("trigger", err)
		return nil, err
	}
	log.StageCompleted("trigger", fmt.Sprintf("%d words", lengths.CountWords(trigger)))

	systems := opts.Systems
	if len(systems) == 0 {
		systems = layers.Systems()
	}
	systemPrompt, err := o.composeLayerPrompt(SingleReadingOptions{
		PersonName:   opts.PersonName,
		Person2Name:  opts.Person2Name,
		StyleLayerID: opts.StyleLayerID,
		PayloadBase:  opts.PayloadBase,
	}, lengths.KindVerdict, systems)
	if err != nil {
		return nil, err
	}

	log.Section("VERDICT WRITING")
	prompt := narrative.VerdictWritingPrompt(opts.PersonName, opts.Person2Name, trigger, findings,
		contract.Target, o.resolveStyle(opts.StyleLayerID))

	text, warnings, err := o.writeValidateLoop(ctx, writingLoopInput{
		prompt:       prompt,
		systemPrompt: systemPrompt,
		label:        "writing:verdict",
		floor:        contract.HardFloorWords,
		logger:       log,
	})
	if err != nil {
		return nil, err
	}

	if !strings.Contains(text, "SCORES:") {
		warnings = append(warnings, "score_block_missing")
		log.Log().Warn().Msg("verdict accepted without a score block")
	}

	body, footer := ExtractFooter(text)
	wordCount := lengths.CountWords(body)
	log.Completion(wordCount, warnings)

	return &SingleReadingResult{
		Reading: models.FinalReading{
			ID:          uuid.NewString(),
			System:      "verdict",
			Kind:        string(lengths.KindVerdict),
			Body:        body,
			Footer:      footer,
			WordCount:   wordCount,
			Warnings:    warnings,
			GeneratedAt: time.Now().UTC(),
		},
		ChartDataForPrompt:   findings,
		ResolvedStyleLayerID: o.resolveStyle(opts.StyleLayerID),
	}, nil
}
