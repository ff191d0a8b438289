package team

import (
	"fmt"
	"strings"
)

// Identity is the canonical, provider-independent record for one club.
type Identity struct {
	CanonicalID string   `json:"canonical_id" validate:"required"`
	Name        string   `json:"name" validate:"required"`
	Slug        string   `json:"slug" validate:"required"`
	Aliases     []string `json:"aliases,omitempty"`
	ExternalIDs []string `json:"external_ids,omitempty"`
}

func (i Identity) Validate() error {
	if strings.TrimSpace(i.CanonicalID) == "" {
		return fmt.Errorf("team canonical id is required")
	}
	if strings.TrimSpace(i.Name) == "" {
		return fmt.Errorf("team name is required")
	}
	if strings.TrimSpace(i.Slug) == "" {
		return fmt.Errorf("team slug is required")
	}

	return nil
}

// MappingTable maps hand-curated provider-side team names to canonical
// slugs. Curated entries always beat heuristic resolution.
type MappingTable map[string]string

// Catalog is the static identity set injected into the resolver. It is built
// once per run and never mutated afterwards.
type Catalog struct {
	Identities []Identity
	Mappings   MappingTable
}

func (c Catalog) Validate() error {
	seen := make(map[string]struct{}, len(c.Identities))
	slugs := make(map[string]struct{}, len(c.Identities))
	for _, identity := range c.Identities {
		if err := identity.Validate(); err != nil {
			return err
		}
		if _, ok := seen[identity.CanonicalID]; ok {
			return fmt.Errorf("duplicate canonical id %q", identity.CanonicalID)
		}
		seen[identity.CanonicalID] = struct{}{}
		slugs[identity.Slug] = struct{}{}
	}

	for providerName, slug := range c.Mappings {
		if strings.TrimSpace(providerName) == "" {
			return fmt.Errorf("mapping with empty provider name")
		}
		if _, ok := slugs[slug]; !ok {
			return fmt.Errorf("mapping %q points at unknown slug %q", providerName, slug)
		}
	}

	return nil
}
