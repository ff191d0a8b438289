package aggregate

import (
	"math/rand"
	"testing"
	"time"

	"github.com/seatfeed/offer-aggregator/internal/domain/offer"
	"github.com/seatfeed/offer-aggregator/internal/domain/team"
	"github.com/seatfeed/offer-aggregator/internal/resolve"
)

var fixtureDate = time.Date(2025, 3, 1, 19, 30, 0, 0, time.UTC)

func unresolved(name string) resolve.Resolution {
	return resolve.Resolution{RawName: name}
}

func input(sourceID string, base, bundled float64) Input {
	return Input{
		Offer: offer.RawOffer{
			SourceID:     sourceID,
			Source:       "csv",
			League:       "League X",
			HomeTeamRaw:  "Team A",
			AwayTeamRaw:  "Team B",
			EventDate:    fixtureDate,
			BasePrice:    base,
			BundledPrice: bundled,
			Currency:     "EUR",
		},
		Home: unresolved("Team A"),
		Away: unresolved("Team B"),
	}
}

func TestLowerPriceReplacesStoredOffer(t *testing.T) {
	agg := New()
	agg.Add(input("first", 120, 0))
	agg.Add(input("second", 95, 0))

	matches := agg.Matches()
	if len(matches) != 1 {
		t.Fatalf("expected one match, got=%d", len(matches))
	}
	if matches[0].MinPrice != 95 {
		t.Fatalf("unexpected min price: got=%v want=95", matches[0].MinPrice)
	}
	if matches[0].MinPriceOffer.SourceID != "second" {
		t.Fatalf("min price offer must be the cheaper one, got=%s", matches[0].MinPriceOffer.SourceID)
	}
}

func TestEqualPriceKeepsFirstSeenOffer(t *testing.T) {
	agg := New()
	agg.Add(input("first", 95, 0))
	agg.Add(input("second", 95, 0))

	matches := agg.Matches()
	if matches[0].MinPriceOffer.SourceID != "first" {
		t.Fatalf("equal price must not replace: got=%s", matches[0].MinPriceOffer.SourceID)
	}
}

func TestBundledPriceUsedForComparison(t *testing.T) {
	agg := New()
	// base 50 with a 200 bundle: the bundle is the effective price, so the
	// plain 100 offer must win.
	agg.Add(input("bundled", 50, 200))
	agg.Add(input("plain", 100, 0))

	matches := agg.Matches()
	if matches[0].MinPrice != 100 {
		t.Fatalf("bundle must beat base price in comparison: got=%v", matches[0].MinPrice)
	}
	if matches[0].MinPriceOffer.SourceID != "plain" {
		t.Fatalf("unexpected min price offer: %s", matches[0].MinPriceOffer.SourceID)
	}
}

func TestMinPriceIsOrderIndependent(t *testing.T) {
	items := []Input{
		input("a", 120, 0),
		input("b", 95, 0),
		input("c", 0, 110),
		input("d", 140, 130),
	}

	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 20; trial++ {
		shuffled := make([]Input, len(items))
		copy(shuffled, items)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		agg := New()
		agg.AddAll(shuffled)
		matches := agg.Matches()
		if len(matches) != 1 {
			t.Fatalf("trial %d: expected one match, got=%d", trial, len(matches))
		}
		if matches[0].MinPrice != 95 {
			t.Fatalf("trial %d: min price depends on order: got=%v", trial, matches[0].MinPrice)
		}
	}
}

func TestCrossSourceMergeAccumulatesSources(t *testing.T) {
	agg := New()
	first := input("csv-1001", 120, 0)
	second := input("perf-88", 140, 0)
	second.Offer.Source = "performances"
	// same fixture supplied by a second provider at a different kickoff
	// hour on the same day
	second.Offer.EventDate = fixtureDate.Add(90 * time.Minute)

	agg.Add(first)
	agg.Add(second)

	matches := agg.Matches()
	if len(matches) != 1 {
		t.Fatalf("same fixture must merge, got=%d matches", len(matches))
	}
	got := matches[0].SourceIDs()
	if len(got) != 2 || got[0] != "csv-1001" || got[1] != "perf-88" {
		t.Fatalf("unexpected contributing sources: %v", got)
	}
}

func TestNoMatchWithoutSources(t *testing.T) {
	agg := New()
	agg.Add(input("only", 80, 0))

	for _, item := range agg.Matches() {
		if item.SourceCount() == 0 {
			t.Fatal("match with empty contributing sources")
		}
	}
}

func TestAggregationIsIdempotent(t *testing.T) {
	agg := New()
	agg.AddAll([]Input{
		input("a", 120, 0),
		input("b", 95, 0),
	})
	first := agg.Matches()

	// Feed the result back in as trivial single-offer inputs.
	again := New()
	for _, item := range first {
		again.Add(Input{
			Offer:  item.MinPriceOffer,
			Fields: item.MinPriceFields,
			Home:   unresolved(item.HomeTeam.Name),
			Away:   unresolved(item.AwayTeam.Name),
		})
	}
	second := again.Matches()

	if len(second) != len(first) {
		t.Fatalf("idempotence broken: %d vs %d matches", len(second), len(first))
	}
	for idx := range first {
		if second[idx].Key != first[idx].Key {
			t.Fatalf("key changed on re-aggregation: %+v vs %+v", second[idx].Key, first[idx].Key)
		}
		if second[idx].MinPrice != first[idx].MinPrice {
			t.Fatalf("min price changed on re-aggregation: %v vs %v", second[idx].MinPrice, first[idx].MinPrice)
		}
	}
}

func TestResolvedTeamsShareKeyAcrossSpellings(t *testing.T) {
	resolver := resolve.New(testCatalogForAggregation())

	agg := New()
	first := input("a", 120, 0)
	first.Home = resolver.Resolve("Manchester City", "")
	second := input("b", 110, 0)
	second.Offer.HomeTeamRaw = "Man City"
	second.Home = resolver.Resolve("Man City", "")

	agg.Add(first)
	agg.Add(second)

	if agg.Len() != 1 {
		t.Fatalf("different spellings of a resolved team must share a key, got=%d matches", agg.Len())
	}
}

func TestOutputSortedByLeagueThenDate(t *testing.T) {
	agg := New()

	later := input("later", 90, 0)
	later.Offer.League = "League A"
	later.Offer.EventDate = fixtureDate.AddDate(0, 0, 7)
	later.Offer.HomeTeamRaw = "Team C"
	later.Home = unresolved("Team C")

	earlier := input("earlier", 70, 0)
	earlier.Offer.League = "League A"

	other := input("other", 60, 0)
	other.Offer.League = "League B"

	agg.AddAll([]Input{other, later, earlier})

	matches := agg.Matches()
	if matches[0].League != "League A" || matches[1].League != "League A" || matches[2].League != "League B" {
		t.Fatalf("league order wrong: %s %s %s", matches[0].League, matches[1].League, matches[2].League)
	}
	if !matches[0].EventDate.Before(matches[1].EventDate) {
		t.Fatal("date order wrong inside league")
	}
}

func testCatalogForAggregation() team.Catalog {
	return team.Catalog{
		Identities: []team.Identity{
			{CanonicalID: "t-mancity", Name: "Man City", Slug: "manchester-city", Aliases: []string{"Manchester City"}},
		},
	}
}
