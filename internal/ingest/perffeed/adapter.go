// Package perffeed adapts the performance-API feed: paginated JSON objects
// describing one sellable event each, with the two clubs (and sometimes the
// competition itself) listed as performers on a performer's schedule.
package perffeed

import (
	"strconv"
	"strings"

	"github.com/seatfeed/offer-aggregator/internal/domain/offer"
	"github.com/seatfeed/offer-aggregator/internal/ingest"
)

const SourceName = "performances"

// Performance mirrors the provider's JSON performance object.
type Performance struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	StartDate struct {
		DateTime  string `json:"date_time"`
		LocalDate string `json:"local_date"`
	} `json:"start_date"`
	Venue struct {
		Name string `json:"name"`
		City string `json:"city"`
	} `json:"venue"`
	PriceRange struct {
		MinPrice float64 `json:"min_price"`
		MaxPrice float64 `json:"max_price"`
		Currency string  `json:"currency"`
	} `json:"price_range"`
	Performers []Performer `json:"performers"`
	URL        string      `json:"url"`
}

type Performer struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// competitionPerformers are pseudo-performers the provider attaches to a
// performance alongside the two clubs.
var competitionPerformers = map[string]struct{}{
	"uefa champions league": {},
	"uefa europa league":    {},
	"premier league":        {},
	"bundesliga":            {},
	"la liga":               {},
	"serie a":               {},
	"ligue 1":               {},
}

// externalTeamID is the provider-scoped identifier stored in team catalog
// ExternalIDs entries, e.g. "ht-292".
func externalTeamID(performerID int64) string {
	return "ht-" + strconv.FormatInt(performerID, 10)
}

func isCompetitionPerformer(name string) bool {
	_, ok := competitionPerformers[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// Adapter converts performances fetched from one performer's schedule. The
// queried performer plays at home in its own schedule listing; the first
// non-competition co-performer is the opponent.
type Adapter struct {
	league string
}

func NewAdapter(league string) *Adapter {
	return &Adapter{league: strings.TrimSpace(league)}
}

func (a *Adapter) Adapt(perf Performance, queriedPerformerID int64) (offer.RawOffer, error) {
	var home, away string
	var homeExternalID, awayExternalID string
	for _, performer := range perf.Performers {
		switch {
		case performer.ID == queriedPerformerID:
			home = strings.TrimSpace(performer.Name)
			homeExternalID = externalTeamID(performer.ID)
		case isCompetitionPerformer(performer.Name):
			// competition label, not a club
		case away == "":
			away = strings.TrimSpace(performer.Name)
			awayExternalID = externalTeamID(performer.ID)
		}
	}

	if home == "" || away == "" {
		parsedHome, parsedAway, ok := ingest.SplitFixtureTitle(perf.Name)
		if !ok {
			return offer.RawOffer{}, ingest.Invalid(SourceName, "performance %d does not name both clubs", perf.ID)
		}
		if home == "" {
			home = parsedHome
		}
		if away == "" {
			away = parsedAway
		}
	}

	eventDate, err := ingest.ParseEventDate(perf.StartDate.DateTime)
	if err != nil {
		eventDate, err = ingest.ParseEventDate(perf.StartDate.LocalDate)
	}
	if err != nil {
		return offer.RawOffer{}, ingest.Invalid(SourceName, "performance %d: bad start date: %v", perf.ID, err)
	}

	out := offer.RawOffer{
		SourceID:           strconv.FormatInt(perf.ID, 10),
		Source:             SourceName,
		League:             a.leagueFor(perf),
		HomeTeamRaw:        home,
		AwayTeamRaw:        away,
		HomeTeamExternalID: homeExternalID,
		AwayTeamExternalID: awayExternalID,
		EventDate:          eventDate,
		BasePrice:          perf.PriceRange.MinPrice,
		Currency:           strings.ToUpper(strings.TrimSpace(perf.PriceRange.Currency)),
		Description:        strings.TrimSpace(perf.Name),
		SourceURL:          strings.TrimSpace(perf.URL),
	}
	if out.EffectivePrice() <= 0 {
		return offer.RawOffer{}, ingest.Invalid(SourceName, "performance %d has no sellable price", perf.ID)
	}

	return out, nil
}

// leagueFor prefers the configured league, falling back to a competition
// pseudo-performer when the adapter is competition-agnostic.
func (a *Adapter) leagueFor(perf Performance) string {
	if a.league != "" {
		return a.league
	}
	for _, performer := range perf.Performers {
		if isCompetitionPerformer(performer.Name) {
			return strings.TrimSpace(performer.Name)
		}
	}
	return "Unknown"
}
