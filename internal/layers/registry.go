// Package layers is the static catalog of prompt layers: style guides,
// per-system analysis knowledge, and verdict synthesis instructions. The
// composer resolves layer ids against this registry and loads their content
// through an injected Loader.
package layers

import "fmt"

// Kind discriminates the registry's layer families. System analysis layers
// come in two flavors because the default knowledge block for a two-person
// overlay differs from the individual one.
type Kind string

const (
	KindStyle            Kind = "style"
	KindSystemIndividual Kind = "system_individual"
	KindSystemSynastry   Kind = "system_synastry"
	KindVerdict          Kind = "verdict"
)

// Supported interpretive systems.
const (
	SystemWestern    = "western"
	SystemVedic      = "vedic"
	SystemChinese    = "chinese"
	SystemNumerology = "numerology"
	SystemKabbalah   = "kabbalah"
)

// Systems lists the supported system ids in canonical order.
func Systems() []string {
	return []string{SystemWestern, SystemVedic, SystemChinese, SystemNumerology, SystemKabbalah}
}

// KnownSystem reports whether the id names a supported interpretive system.
func KnownSystem(id string) bool {
	switch id {
	case SystemWestern, SystemVedic, SystemChinese, SystemNumerology, SystemKabbalah:
		return true
	}
	return false
}

// Entry maps a layer id to its content path.
type Entry struct {
	ID   string
	Path string
}

// Resolution records how a layer id was resolved. FellBack is set when the
// requested id was unknown (or empty) and the kind's default was used
// instead, so callers and tests can observe unexpected fallbacks.
type Resolution struct {
	Kind        Kind
	RequestedID string
	ResolvedID  string
	FellBack    bool
}

// Registry resolves layer ids and loads their content.
type Registry struct {
	loader   Loader
	entries  map[Kind]map[string]Entry
	defaults map[Kind]string
}

// DefaultRegistry returns the registry over the embedded content catalog.
func DefaultRegistry() *Registry {
	return NewRegistry(EmbeddedLoader())
}

// NewRegistry builds the static catalog with the given content loader.
func NewRegistry(loader Loader) *Registry {
	r := &Registry{
		loader:   loader,
		entries:  make(map[Kind]map[string]Entry),
		defaults: make(map[Kind]string),
	}

	r.add(KindStyle, Entry{ID: "mythic", Path: "content/styles/mythic.md"})
	r.add(KindStyle, Entry{ID: "incarnation", Path: "content/styles/incarnation.md"})
	r.defaults[KindStyle] = "mythic"

	for _, system := range Systems() {
		r.add(KindSystemIndividual, Entry{
			ID:   system,
			Path: fmt.Sprintf("content/systems/%s.md", system),
		})
		r.add(KindSystemSynastry, Entry{
			ID:   system,
			Path: fmt.Sprintf("content/systems/%s_synastry.md", system),
		})
	}
	// Name-based kabbalah analysis, selected by the job directive's policy
	// flag rather than requested directly by id.
	r.add(KindSystemIndividual, Entry{ID: "kabbalah_name", Path: "content/systems/kabbalah_name.md"})
	r.add(KindSystemSynastry, Entry{ID: "kabbalah_name", Path: "content/systems/kabbalah_name.md"})
	r.defaults[KindSystemIndividual] = SystemWestern
	r.defaults[KindSystemSynastry] = SystemWestern

	r.add(KindVerdict, Entry{ID: "standard", Path: "content/verdict/standard.md"})
	r.defaults[KindVerdict] = "standard"

	return r
}

func (r *Registry) add(kind Kind, entry Entry) {
	if r.entries[kind] == nil {
		r.entries[kind] = make(map[string]Entry)
	}
	r.entries[kind][entry.ID] = entry
}

// Resolve returns the layer id to use for the given kind. An unknown or
// empty requested id resolves to the kind's default with FellBack set; no
// error is raised so a misconfigured directive degrades to defaults.
func (r *Registry) Resolve(kind Kind, requestedID string) Resolution {
	res := Resolution{Kind: kind, RequestedID: requestedID}
	if requestedID != "" {
		if _, ok := r.entries[kind][requestedID]; ok {
			res.ResolvedID = requestedID
			return res
		}
	}
	res.ResolvedID = r.defaults[kind]
	res.FellBack = true
	return res
}

// Content loads the content for a resolved layer id. The id must exist in
// the registry; resolve first.
func (r *Registry) Content(kind Kind, id string) (string, error) {
	entry, ok := r.entries[kind][id]
	if !ok {
		return "", fmt.Errorf("layers: no %s layer with id %q", kind, id)
	}
	return r.loader.Load(entry.Path)
}

// Has reports whether the registry knows the given id for the kind.
func (r *Registry) Has(kind Kind, id string) bool {
	_, ok := r.entries[kind][id]
	return ok
}
