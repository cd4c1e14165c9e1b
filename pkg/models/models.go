// Package models holds the shared data structures exchanged between the
// generation core and its callers: the job payload shape produced by the
// mobile backend, the person records inside it, and the final reading
// artifact returned for persistence.
package models

import (
	"time"
)

// Job types as delivered by the store/backend. Anything that is not
// synastry or a verdict is treated as an individual reading.
const (
	JobTypeSingleSystem    = "single_system"
	JobTypeCompleteReading = "complete_reading"
	JobTypeSynastry        = "synastry"
	JobTypeBundleVerdict   = "bundle_verdict"
)

// Person describes one subject of a reading. Birth fields are carried for
// the footer/signature only; chart computation happens upstream.
type Person struct {
	Name      string  `json:"name"`
	BirthDate string  `json:"birth_date"`
	BirthTime string  `json:"birth_time,omitempty"`
	Timezone  string  `json:"timezone,omitempty"`
	Lat       float64 `json:"lat,omitempty"`
	Long      float64 `json:"long,omitempty"`
}

// PromptLayerDirective is a per-job override selecting which registry layers
// to use. Unknown ids fall back to registry defaults.
type PromptLayerDirective struct {
	StyleLayerID       string            `json:"style_layer_id,omitempty"`
	SystemLayerIDs     map[string]string `json:"system_layer_ids,omitempty"`
	VerdictLayerID     string            `json:"verdict_layer_id,omitempty"`
	EnableNameKabbalah bool              `json:"enable_name_kabbalah,omitempty"`
}

// JobPayload is the structure handed to the pipeline by the job system.
// ChartData is pre-rendered by the external chart engine and treated as
// authoritative.
type JobPayload struct {
	Type                        string                `json:"type"`
	Systems                     []string              `json:"systems"`
	Person1                     Person                `json:"person1"`
	Person2                     *Person               `json:"person2,omitempty"`
	RelationshipPreferenceScale int                   `json:"relationship_preference_scale,omitempty"` // 1..10, 0 = unset
	PersonalContext             string                `json:"personal_context,omitempty"`
	RelationshipContext         string                `json:"relationship_context,omitempty"`
	OutputLanguage              string                `json:"output_language,omitempty"`
	PromptLayerDirective        *PromptLayerDirective `json:"prompt_layer_directive,omitempty"`
	ChartData                   string                `json:"chart_data"`
	// ChartData2 carries person2's chart for synastry and verdict jobs.
	ChartData2 string `json:"chart_data2,omitempty"`
}

// FinalReading is the only artifact the pipeline returns for persistence.
// Body never contains the footer; Footer, when present, is emitted exactly
// once at the very end of the rendered document.
type FinalReading struct {
	ID          string    `json:"id"`
	System      string    `json:"system"`
	Kind        string    `json:"kind"`
	Body        string    `json:"body"`
	Footer      string    `json:"footer,omitempty"`
	WordCount   int       `json:"word_count"`
	Warnings    []string  `json:"warnings,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Rendered returns the full document: body plus the footer reattached at
// the very end.
func (r *FinalReading) Rendered() string {
	if r.Footer == "" {
		return r.Body
	}
	return r.Body + "\n\n" + r.Footer
}
