// Package generation drives a reading from chart data to accepted text: the
// trigger call, the writing call, cleanup, the word-count floor, compliance
// validation, bounded expansion and repair passes, and footer extraction.
// One Orchestrator is safe for concurrent generations; it holds no mutable
// state across invocations.
package generation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/oneinabillion/readings/internal/compliance"
	"github.com/oneinabillion/readings/internal/compose"
	"github.com/oneinabillion/readings/internal/layers"
	"github.com/oneinabillion/readings/internal/lengths"
	"github.com/oneinabillion/readings/internal/llm"
	"github.com/oneinabillion/readings/internal/logging"
	"github.com/oneinabillion/readings/internal/narrative"
	"github.com/oneinabillion/readings/internal/strip"
	"github.com/oneinabillion/readings/pkg/models"
)

// Config bounds every loop in the orchestrator. All defaults guarantee
// termination: 2 outer attempts, 5 expansion passes, 2 repair passes.
type Config struct {
	MaxAttempts        int
	MaxExpansionPasses int
	MaxRepairPasses    int

	TriggerMaxTokens   int
	TriggerTemperature float64
	TriggerRetries     int

	WritingMaxTokens   int
	WritingTemperature float64
	WritingRetries     int
}

// DefaultConfig returns the production pass budgets.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:        2,
		MaxExpansionPasses: 5,
		MaxRepairPasses:    2,
		TriggerMaxTokens:   1024,
		TriggerTemperature: 0.4,
		TriggerRetries:     2,
		WritingMaxTokens:   16384,
		WritingTemperature: 0.8,
		WritingRetries:     2,
	}
}

// Orchestrator runs the generation state machine against an injected model
// client and layer registry.
type Orchestrator struct {
	client   llm.Client
	registry *layers.Registry
	composer *compose.Composer
	rules    []compliance.Rule
	cfg      Config
}

// New creates an orchestrator. A nil rules slice gets the default rule
// list.
func New(client llm.Client, registry *layers.Registry, rules []compliance.Rule, cfg Config) *Orchestrator {
	if rules == nil {
		rules = compliance.DefaultRules()
	}
	return &Orchestrator{
		client:   client,
		registry: registry,
		composer: compose.NewComposer(registry),
		rules:    rules,
		cfg:      cfg,
	}
}

// SingleReadingOptions describes one generation job.
type SingleReadingOptions struct {
	System       string
	PersonName   string
	Person2Name  string
	StyleLayerID string

	// ChartData is the single-person chart; the per-person fields are set
	// instead for overlay readings.
	ChartData        string
	ChartDataPerson1 string
	ChartDataPerson2 string

	// PayloadBase carries job-level context (kind, preference, language).
	PayloadBase *models.JobPayload

	// HardFloorWords overrides the kind's contract floor when positive.
	HardFloorWords int
	// ExpectedAge, when positive, arms the age-mismatch check against the
	// subject's age in whole years.
	ExpectedAge int
	// DocType labels the generation in logs ("individual", "overlay", ...).
	DocType string

	Logger *logging.GenerationLogger
}

// SingleReadingResult is what the caller persists.
type SingleReadingResult struct {
	Reading              models.FinalReading
	ChartDataForPrompt   string
	ResolvedStyleLayerID string
}

// GenerateSingleReading runs the full state machine for one individual or
// overlay reading.
func (o *Orchestrator) GenerateSingleReading(ctx context.Context, opts SingleReadingOptions) (*SingleReadingResult, error) {
	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}

	kind := o.kindFor(opts)
	contract := lengths.ContractFor(kind)
	floor := contract.HardFloorWords
	if opts.HardFloorWords > 0 {
		floor = opts.HardFloorWords
	}

	log.Log().Info().Str("doc_type", opts.DocType).Str("system", opts.System).
		Int("floor", floor).Msg("generation started")

	styleRes := o.registry.Resolve(layers.KindStyle, opts.StyleLayerID)
	if styleRes.FellBack && opts.StyleLayerID != "" {
		log.Log().Warn().Str("requested", opts.StyleLayerID).Str("resolved", styleRes.ResolvedID).
			Msg("style layer fell back to default")
	}

	stripped, triggerPrompt := o.prepareTrigger(opts, kind)

	log.Section("TRIGGER")
	log.StageStarted("trigger")
	trigger, err := o.callTrigger(ctx, triggerPrompt, "trigger:"+opts.System)
	if err != nil {
		log.StageError("trigger", err)
		return nil, err
	}
	log.StageCompleted("trigger", fmt.Sprintf("%d words", lengths.CountWords(trigger)))

	writingPrompt := o.buildWritingPrompt(opts, kind, styleRes.ResolvedID, trigger, stripped, contract.Target)

	systemPrompt, err := o.composeLayerPrompt(opts, kind, []string{opts.System})
	if err != nil {
		return nil, err
	}

	rules := o.rules
	if opts.ExpectedAge > 0 {
		rules = compliance.RulesWithAge(rules, opts.ExpectedAge)
	}

	log.Section("WRITING")
	text, warnings, err := o.writeValidateLoop(ctx, writingLoopInput{
		prompt:       writingPrompt,
		systemPrompt: systemPrompt,
		label:        "writing:" + opts.System,
		floor:        floor,
		rules:        rules,
		logger:       log,
	})
	if err != nil {
		return nil, err
	}

	body, footer := ExtractFooter(text)
	wordCount := lengths.CountWords(body)
	log.Completion(wordCount, warnings)

	return &SingleReadingResult{
		Reading: models.FinalReading{
			ID:          uuid.NewString(),
			System:      opts.System,
			Kind:        string(kind),
			Body:        body,
			Footer:      footer,
			WordCount:   wordCount,
			Warnings:    warnings,
			GeneratedAt: time.Now().UTC(),
		},
		ChartDataForPrompt:   stripped,
		ResolvedStyleLayerID: styleRes.ResolvedID,
	}, nil
}

// composeLayerPrompt renders the layered instruction stack as the writing
// call's system prompt. Chart data stays out of it; the human message
// carries the stripped extract, so the chart never appears twice.
func (o *Orchestrator) composeLayerPrompt(opts SingleReadingOptions, kind lengths.ReadingKind, systems []string) (string, error) {
	in := compose.Input{
		Kind:        kind,
		Systems:     systems,
		Person1Name: opts.PersonName,
		Person2Name: opts.Person2Name,
	}
	if p := opts.PayloadBase; p != nil {
		in.PersonalContext = p.PersonalContext
		in.RelationshipContext = p.RelationshipContext
		in.OutputLanguage = p.OutputLanguage
		in.PreferenceScale = p.RelationshipPreferenceScale
		in.Directive = p.PromptLayerDirective
	}
	if opts.StyleLayerID != "" {
		// Copy before overriding; the payload's directive is shared state.
		d := models.PromptLayerDirective{}
		if in.Directive != nil {
			d = *in.Directive
		}
		d.StyleLayerID = opts.StyleLayerID
		in.Directive = &d
	}
	res, err := o.composer.Compose(in)
	if err != nil {
		return "", fmt.Errorf("layer composition failed: %w", err)
	}
	return res.Prompt, nil
}

// resolveStyle maps a requested style layer id to the id actually used,
// falling back to the registry default.
func (o *Orchestrator) resolveStyle(requested string) string {
	return o.registry.Resolve(layers.KindStyle, requested).ResolvedID
}

func (o *Orchestrator) kindFor(opts SingleReadingOptions) lengths.ReadingKind {
	if opts.ChartDataPerson1 != "" && opts.ChartDataPerson2 != "" {
		return lengths.KindSynastry
	}
	return lengths.KindIndividual
}

func (o *Orchestrator) prepareTrigger(opts SingleReadingOptions, kind lengths.ReadingKind) (stripped, prompt string) {
	fn := strip.ForSystem(opts.System)
	if kind == lengths.KindSynastry {
		stripped = strip.Overlay(fn, opts.ChartDataPerson1, opts.ChartDataPerson2)
		prompt = narrative.OverlayTriggerPrompt(opts.System, opts.PersonName, opts.Person2Name, stripped)
		return stripped, prompt
	}
	stripped = fn(opts.ChartData)
	prompt = narrative.TriggerPrompt(opts.System, opts.PersonName, stripped)
	return stripped, prompt
}

func (o *Orchestrator) buildWritingPrompt(opts SingleReadingOptions, kind lengths.ReadingKind, styleID, trigger, stripped string, targetWords int) string {
	if kind == lengths.KindSynastry {
		return narrative.OverlayWritingPrompt(opts.System, opts.PersonName, opts.Person2Name, trigger, stripped, targetWords, styleID)
	}
	return narrative.WritingPrompt(opts.System, opts.PersonName, trigger, stripped, targetWords, styleID)
}

// callTrigger runs the cold, short trigger call and normalizes its output.
func (o *Orchestrator) callTrigger(ctx context.Context, prompt, label string) (string, error) {
	raw, err := o.client.Generate(ctx, llm.Request{
		Prompt: prompt,
		Label:  label,
		Options: llm.Options{
			MaxTokens:   o.cfg.TriggerMaxTokens,
			Temperature: o.cfg.TriggerTemperature,
			MaxRetries:  o.cfg.TriggerRetries,
		},
	})
	if err != nil {
		return "", fmt.Errorf("trigger call failed: %w", err)
	}
	trigger := strings.TrimSpace(Clean(raw))
	if trigger == "" {
		return "", ErrEmptyTrigger
	}
	return trigger, nil
}

type writingLoopInput struct {
	prompt       string
	systemPrompt string
	label        string
	floor        int
	rules        []compliance.Rule
	logger       *logging.GenerationLogger
}

// writeValidateLoop is the DRAFTED -> {EXPANDING|REPAIRING}* portion of the
// state machine, across up to MaxAttempts outer attempts.
func (o *Orchestrator) writeValidateLoop(ctx context.Context, in writingLoopInput) (text string, warnings []string, err error) {
	var lastErr error

	for attempt := 1; attempt <= o.cfg.MaxAttempts; attempt++ {
		in.logger.StageStarted(fmt.Sprintf("attempt %d", attempt))

		raw, callErr := o.client.Generate(ctx, llm.Request{
			Prompt: in.prompt,
			Label:  in.label,
			Options: llm.Options{
				MaxTokens:    o.cfg.WritingMaxTokens,
				Temperature:  o.cfg.WritingTemperature,
				MaxRetries:   o.cfg.WritingRetries,
				SystemPrompt: in.systemPrompt,
			},
		})
		if callErr != nil {
			lastErr = fmt.Errorf("writing call failed: %w", callErr)
			in.logger.StageError(fmt.Sprintf("attempt %d", attempt), lastErr)
			continue
		}

		draft := Clean(raw)
		in.logger.Pass("draft", attempt, lengths.CountWords(draft))

		expanded, expErr := o.expandToFloor(ctx, draft, in)
		if expErr != nil {
			return "", nil, expErr
		}

		repaired, findings := o.repairLoop(ctx, expanded, in)

		// Acceptance gate: floor met and nothing blocking left. Residual
		// second person is tolerated with a warning.
		words := lengths.CountWords(repaired)
		blocking := compliance.Blocking(findings)
		if words >= in.floor && len(blocking) == 0 {
			warnings = compliance.Warnings(findings)
			for _, w := range warnings {
				in.logger.Log().Warn().Str("finding", w).Msg("accepted with residual warning")
			}
			in.logger.StageCompleted(fmt.Sprintf("attempt %d", attempt), fmt.Sprintf("%d words", words))
			return repaired, warnings, nil
		}

		lastErr = fmt.Errorf("attempt %d rejected: %d words (floor %d), %d blocking findings",
			attempt, words, in.floor, len(blocking))
		in.logger.StageError(fmt.Sprintf("attempt %d", attempt), lastErr)
	}

	return "", nil, fmt.Errorf("%w: %v", ErrGenerationRejected, lastErr)
}

// expandToFloor appends continuation passes until the floor is met, up to
// MaxExpansionPasses. Segments are accumulated and joined once.
func (o *Orchestrator) expandToFloor(ctx context.Context, draft string, in writingLoopInput) (string, error) {
	segments := []string{draft}
	words := lengths.CountWords(draft)

	for pass := 1; words < in.floor; pass++ {
		if pass > o.cfg.MaxExpansionPasses {
			return "", fmt.Errorf("%w: %d words after %d passes (floor %d)",
				ErrExpansionFailed, words, o.cfg.MaxExpansionPasses, in.floor)
		}

		missing := in.floor - words
		askWords := missing + 300
		if askWords < 600 {
			askWords = 600
		}

		current := strings.Join(segments, "\n\n")
		raw, err := o.client.Generate(ctx, llm.Request{
			Prompt: expansionPrompt(current, askWords),
			Label:  fmt.Sprintf("expansion:%d", pass),
			Options: llm.Options{
				MaxTokens:    o.cfg.WritingMaxTokens,
				Temperature:  o.cfg.WritingTemperature,
				MaxRetries:   o.cfg.WritingRetries,
				SystemPrompt: in.systemPrompt,
			},
		})
		if err != nil {
			return "", fmt.Errorf("%w: expansion call failed: %v", ErrExpansionFailed, err)
		}

		continuation := Clean(raw)
		if continuation != "" {
			segments = append(segments, continuation)
		}
		words = lengths.CountWords(strings.Join(segments, "\n\n"))
		in.logger.Pass("expansion", pass, words)
	}

	return Clean(strings.Join(segments, "\n\n")), nil
}

// repairLoop runs up to MaxRepairPasses compliance rewrites. It returns the
// best text and the findings still present in it.
func (o *Orchestrator) repairLoop(ctx context.Context, text string, in writingLoopInput) (string, []compliance.Finding) {
	rules := in.rules
	if rules == nil {
		rules = o.rules
	}
	findings := compliance.Detect(text, rules)

	for pass := 1; pass <= o.cfg.MaxRepairPasses; pass++ {
		blocking := compliance.Blocking(findings)
		if len(blocking) == 0 {
			break
		}

		raw, err := o.client.Generate(ctx, llm.Request{
			Prompt: repairPrompt(text, blocking),
			Label:  fmt.Sprintf("repair:%d", pass),
			Options: llm.Options{
				MaxTokens:    o.cfg.WritingMaxTokens,
				Temperature:  0.3,
				MaxRetries:   o.cfg.WritingRetries,
				SystemPrompt: in.systemPrompt,
			},
		})
		if err != nil {
			in.logger.Log().Warn().Err(err).Int("pass", pass).Msg("repair call failed, keeping current text")
			break
		}

		candidate := Clean(raw)
		// A repair that guts the reading is worse than the findings it fixes.
		if lengths.CountWords(candidate) < lengths.CountWords(text)*8/10 {
			in.logger.Log().Warn().Int("pass", pass).Msg("repair shrank the text too much, discarded")
			continue
		}

		text = candidate
		findings = compliance.Detect(text, rules)
		in.logger.Pass("repair", pass, lengths.CountWords(text))
	}

	return text, findings
}

func expansionPrompt(current string, askWords int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The reading below stopped early. Continue it seamlessly for at least %d more words.\n", askWords)
	b.WriteString(`Rules:
- Pick up mid-thought as though never interrupted. No recap, no transition
  phrases, no repetition of anything already written.
- No new unverifiable factual claims about the subjects' lives.
- Third person only; never address anyone as "you".
- Same voice, same register, no markdown.
Output only the continuation.

READING SO FAR:
`)
	b.WriteString(current)
	return b.String()
}

func repairPrompt(text string, findings []compliance.Finding) string {
	var b strings.Builder
	b.WriteString(`Rewrite the reading below to remove ONLY the listed violations.
Preserve meaning, length, structure, and voice exactly; change nothing that
is not required by a violation. No markdown. Output only the full rewritten
reading.

VIOLATIONS:
`)
	b.WriteString(compliance.Describe(findings))
	b.WriteString("\nREADING:\n")
	b.WriteString(text)
	return b.String()
}
