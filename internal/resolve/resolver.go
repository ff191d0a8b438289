// Package resolve maps provider-specific team names onto the canonical
// identity catalog. Resolution is a pure lookup: the catalog is injected at
// construction and never mutated.
package resolve

import (
	"strings"

	"github.com/seatfeed/offer-aggregator/internal/domain/team"
)

// Confidence records which rule produced a resolution. Fuzzy resolutions
// are first-match-wins over normalized substrings and should be reviewed.
type Confidence string

const (
	ConfidenceExact      Confidence = "exact"
	ConfidenceNormalized Confidence = "normalized"
	ConfidenceFuzzy      Confidence = "fuzzy"
)

// Resolution is the outcome of one lookup. When Resolved is false the
// identity is zero and RawName carries the provider spelling, which
// downstream keying must keep using so unresolved teams are not dropped.
type Resolution struct {
	Identity   team.Identity
	Resolved   bool
	RawName    string
	Confidence Confidence
}

// Name returns the canonical name when resolved, else the raw spelling.
func (r Resolution) Name() string {
	if r.Resolved {
		return r.Identity.Name
	}
	return r.RawName
}

type Resolver struct {
	identities     []team.Identity
	bySlug         map[string]team.Identity
	byCurated      map[string]team.Identity
	byExternalID   map[string]team.Identity
	normalizedSlug []string
	normalizedName []string
}

// New indexes a catalog snapshot. Curated entries come from both the
// mapping table and each identity's alias list.
func New(catalog team.Catalog) *Resolver {
	r := &Resolver{
		identities:     catalog.Identities,
		bySlug:         make(map[string]team.Identity, len(catalog.Identities)),
		byCurated:      make(map[string]team.Identity, len(catalog.Mappings)),
		byExternalID:   make(map[string]team.Identity),
		normalizedSlug: make([]string, len(catalog.Identities)),
		normalizedName: make([]string, len(catalog.Identities)),
	}

	for idx, identity := range catalog.Identities {
		r.bySlug[identity.Slug] = identity
		r.normalizedSlug[idx] = normalize(identity.Slug)
		r.normalizedName[idx] = normalize(identity.Name)
		for _, alias := range identity.Aliases {
			r.byCurated[alias] = identity
		}
		for _, externalID := range identity.ExternalIDs {
			r.byExternalID[externalID] = identity
		}
	}

	for providerName, slug := range catalog.Mappings {
		if identity, ok := r.bySlug[slug]; ok {
			r.byCurated[providerName] = identity
		}
	}

	return r
}

// Resolve maps a provider team name, optionally qualified by the provider's
// external team id, onto a canonical identity. Rules run in confidence
// order and the first hit wins.
func (r *Resolver) Resolve(providerName, externalID string) Resolution {
	providerName = strings.TrimSpace(providerName)

	// Curated lookups first: they are hand-checked and beat any heuristic
	// even when a heuristic would also land somewhere.
	if externalID != "" {
		if identity, ok := r.byExternalID[externalID]; ok {
			return Resolution{Identity: identity, Resolved: true, RawName: providerName, Confidence: ConfidenceExact}
		}
	}
	if identity, ok := r.byCurated[providerName]; ok {
		return Resolution{Identity: identity, Resolved: true, RawName: providerName, Confidence: ConfidenceExact}
	}

	normalized := normalize(providerName)
	if normalized != "" {
		for idx, identity := range r.identities {
			if normalized == r.normalizedSlug[idx] || normalized == r.normalizedName[idx] {
				return Resolution{Identity: identity, Resolved: true, RawName: providerName, Confidence: ConfidenceNormalized}
			}
		}

		// Containment is a deliberate low-precision fallback: short names
		// can land on the wrong club, so the first candidate in catalog
		// order wins and the hit is flagged fuzzy for review.
		for idx, identity := range r.identities {
			if contains(r.normalizedSlug[idx], normalized) || contains(r.normalizedName[idx], normalized) {
				return Resolution{Identity: identity, Resolved: true, RawName: providerName, Confidence: ConfidenceFuzzy}
			}
		}
	}

	return Resolution{RawName: providerName}
}

func contains(canonical, provider string) bool {
	if canonical == "" || provider == "" {
		return false
	}
	return strings.Contains(canonical, provider) || strings.Contains(provider, canonical)
}

// normalize lower-cases and strips every non-alphanumeric rune, so
// "Bodø/Glimt" and "bodoglimt" only differ by the ø transliteration.
func normalize(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range strings.ToLower(value) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
