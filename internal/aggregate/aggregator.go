// Package aggregate folds per-provider offers into one Match per fixture,
// keeping the cheapest offer seen for each composite key.
package aggregate

import (
	"sort"

	"github.com/seatfeed/offer-aggregator/internal/domain/match"
	"github.com/seatfeed/offer-aggregator/internal/domain/offer"
	"github.com/seatfeed/offer-aggregator/internal/resolve"
)

// Input is one offer with its derived annotations and resolved team sides.
type Input struct {
	Offer  offer.RawOffer
	Fields offer.ExtractedFields
	Home   resolve.Resolution
	Away   resolve.Resolution
}

// Aggregator owns the key→Match map for one aggregation pass. It is not
// safe for concurrent Add calls; parallel producers must merge whole
// batches through a single writer.
type Aggregator struct {
	byKey map[match.Key]*match.Match
}

func New() *Aggregator {
	return &Aggregator{byKey: make(map[match.Key]*match.Match, 64)}
}

// Add folds one offer in. A new key creates its Match; an existing key is
// updated only when the incoming effective price is strictly lower, so the
// first-seen offer wins equal-price ties. Source ids accumulate either way.
func (a *Aggregator) Add(item Input) {
	home := teamRef(item.Home)
	away := teamRef(item.Away)
	key := match.NewKey(item.Offer.League, home, away, item.Offer.EventDate)

	entry, ok := a.byKey[key]
	if !ok {
		entry = match.New(key, item.Offer.League, home, away, item.Offer.EventDate)
		entry.MinPrice = item.Offer.EffectivePrice()
		entry.Currency = item.Offer.Currency
		entry.MinPriceOffer = item.Offer
		entry.MinPriceFields = item.Fields
		a.byKey[key] = entry
	} else if price := item.Offer.EffectivePrice(); price < entry.MinPrice {
		entry.MinPrice = price
		entry.Currency = item.Offer.Currency
		entry.MinPriceOffer = item.Offer
		entry.MinPriceFields = item.Fields
	}

	entry.AddSource(item.Offer.SourceID)
}

// AddAll folds a batch in arrival order.
func (a *Aggregator) AddAll(items []Input) {
	for _, item := range items {
		a.Add(item)
	}
}

func (a *Aggregator) Len() int {
	return len(a.byKey)
}

// Matches returns the aggregation result sorted by (league, event date,
// key) ascending. The key tie-break only stabilizes output order for
// fixtures sharing a league and day.
func (a *Aggregator) Matches() []match.Match {
	out := make([]match.Match, 0, len(a.byKey))
	for _, entry := range a.byKey {
		out = append(out, *entry)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].League != out[j].League {
			return out[i].League < out[j].League
		}
		if !out[i].EventDate.Equal(out[j].EventDate) {
			return out[i].EventDate.Before(out[j].EventDate)
		}
		if out[i].Key.Home != out[j].Key.Home {
			return out[i].Key.Home < out[j].Key.Home
		}
		return out[i].Key.Away < out[j].Key.Away
	})

	return out
}

func teamRef(resolution resolve.Resolution) match.TeamRef {
	if resolution.Resolved {
		return match.TeamRef{CanonicalID: resolution.Identity.CanonicalID, Name: resolution.Identity.Name}
	}
	return match.TeamRef{Name: resolution.RawName}
}
