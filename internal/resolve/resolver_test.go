package resolve

import (
	"testing"

	"github.com/seatfeed/offer-aggregator/internal/domain/team"
)

func testCatalog() team.Catalog {
	return team.Catalog{
		Identities: []team.Identity{
			{CanonicalID: "t-realmadrid", Name: "Real Madrid", Slug: "real-madrid"},
			{CanonicalID: "t-realsociedad", Name: "Real Sociedad", Slug: "real-sociedad"},
			{CanonicalID: "t-napoli", Name: "Napoli", Slug: "napoli"},
			{CanonicalID: "t-mancity", Name: "Man City", Slug: "manchester-city", Aliases: []string{"Manchester City"}},
			{CanonicalID: "t-bodoglimt", Name: "Bodø/Glimt", Slug: "bodoglimt", ExternalIDs: []string{"ht-9911"}},
		},
		Mappings: team.MappingTable{
			"SSC Napoli": "napoli",
		},
	}
}

func TestResolveCuratedMappingBeatsHeuristics(t *testing.T) {
	resolver := New(testCatalog())

	// The containment fallback would also land on napoli, but the curated
	// table must win and report exact confidence.
	got := resolver.Resolve("SSC Napoli", "")
	if !got.Resolved || got.Identity.Slug != "napoli" {
		t.Fatalf("curated mapping not used: %+v", got)
	}
	if got.Confidence != ConfidenceExact {
		t.Fatalf("curated hit must be exact confidence, got=%s", got.Confidence)
	}
}

func TestResolveAlias(t *testing.T) {
	resolver := New(testCatalog())

	got := resolver.Resolve("Manchester City", "")
	if !got.Resolved || got.Identity.CanonicalID != "t-mancity" {
		t.Fatalf("alias not resolved: %+v", got)
	}
	if got.Confidence != ConfidenceExact {
		t.Fatalf("alias hit must be exact confidence, got=%s", got.Confidence)
	}
}

func TestResolveExternalID(t *testing.T) {
	resolver := New(testCatalog())

	got := resolver.Resolve("FK Bodo Glimt", "ht-9911")
	if !got.Resolved || got.Identity.CanonicalID != "t-bodoglimt" {
		t.Fatalf("external id not resolved: %+v", got)
	}
}

func TestResolveNormalizedEquality(t *testing.T) {
	resolver := New(testCatalog())

	got := resolver.Resolve("real-MADRID", "")
	if !got.Resolved || got.Identity.CanonicalID != "t-realmadrid" {
		t.Fatalf("normalized equality failed: %+v", got)
	}
	if got.Confidence != ConfidenceNormalized {
		t.Fatalf("unexpected confidence: %s", got.Confidence)
	}
}

func TestResolveSubstringFirstMatchWins(t *testing.T) {
	resolver := New(testCatalog())

	// "Real" is contained in both Real Madrid and Real Sociedad; catalog
	// order decides and the hit is flagged fuzzy.
	got := resolver.Resolve("Real", "")
	if !got.Resolved || got.Identity.CanonicalID != "t-realmadrid" {
		t.Fatalf("substring fallback failed: %+v", got)
	}
	if got.Confidence != ConfidenceFuzzy {
		t.Fatalf("substring hit must be fuzzy confidence, got=%s", got.Confidence)
	}
}

func TestResolveUnresolvedKeepsRawName(t *testing.T) {
	resolver := New(testCatalog())

	got := resolver.Resolve("Wacker Burghausen", "")
	if got.Resolved {
		t.Fatalf("unexpected resolution: %+v", got)
	}
	if got.Name() != "Wacker Burghausen" {
		t.Fatalf("raw name must be carried: got=%q", got.Name())
	}
}

func TestNormalize(t *testing.T) {
	if got := normalize("S.S.C. Napoli 1926"); got != "sscnapoli1926" {
		t.Fatalf("unexpected normalization: %q", got)
	}
}
