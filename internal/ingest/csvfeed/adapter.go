// Package csvfeed adapts the P1-style tabular offer export: one CSV row per
// ticket listing, league encoded in a ">"-separated category path.
package csvfeed

import (
	"strconv"
	"strings"

	"github.com/seatfeed/offer-aggregator/internal/domain/offer"
	"github.com/seatfeed/offer-aggregator/internal/ingest"
)

const (
	SourceName      = "csv"
	defaultCurrency = "EUR"
)

// Row is one parsed CSV record keyed by header name. Lookups are
// case-insensitive because the feed has shipped with both categoryPath and
// CategoryPath headers.
type Row map[string]string

func (r Row) get(key string) string {
	if value, ok := r[key]; ok {
		return strings.TrimSpace(value)
	}
	for k, value := range r {
		if strings.EqualFold(k, key) {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

// Adapter converts CSV rows into RawOffers for one target category.
type Adapter struct {
	category        string
	currency        string
	excludeLeagues  []string
	leaguePathDepth int
}

type Option func(*Adapter)

// WithExcludedLeagues drops rows whose category path mentions any of the
// given league names, matching the original per-league export splits.
func WithExcludedLeagues(leagues ...string) Option {
	return func(a *Adapter) {
		for _, league := range leagues {
			league = strings.ToLower(strings.TrimSpace(league))
			if league != "" {
				a.excludeLeagues = append(a.excludeLeagues, league)
			}
		}
	}
}

func WithCurrency(currency string) Option {
	return func(a *Adapter) {
		if strings.TrimSpace(currency) != "" {
			a.currency = strings.TrimSpace(currency)
		}
	}
}

// NewAdapter builds an adapter for one category, e.g. "football".
func NewAdapter(category string, opts ...Option) *Adapter {
	a := &Adapter{
		category: strings.ToLower(strings.TrimSpace(category)),
		currency: defaultCurrency,
		// category paths look like "event tickets > football > <league> > <team>"
		leaguePathDepth: 2,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Adapt converts one row. Rows outside the target category return
// ErrOutOfCategory; rows inside it that miss required fields return an
// InvalidRecordError.
func (a *Adapter) Adapt(row Row) (offer.RawOffer, error) {
	categoryPath := strings.ToLower(row.get("categoryPath"))
	if a.category != "" && !strings.Contains(categoryPath, a.category) {
		return offer.RawOffer{}, ingest.ErrOutOfCategory
	}
	for _, excluded := range a.excludeLeagues {
		if strings.Contains(categoryPath, excluded) {
			return offer.RawOffer{}, ingest.ErrOutOfCategory
		}
	}

	home := row.get("home_team_name")
	away := row.get("away_team_name")
	if home == "" || away == "" {
		return offer.RawOffer{}, ingest.Invalid(SourceName, "missing team name (home=%q away=%q)", home, away)
	}

	eventDate, err := ingest.ParseEventDate(row.get("date_start"))
	if err != nil {
		return offer.RawOffer{}, ingest.Invalid(SourceName, "bad date_start: %v", err)
	}

	basePrice := parsePrice(row.get("price"))
	bundledPrice := parsePrice(row.get("price_ticket_hotel"))
	out := offer.RawOffer{
		SourceID:         row.get("id"),
		Source:           SourceName,
		League:           leagueFromCategoryPath(row.get("categoryPath"), a.leaguePathDepth),
		HomeTeamRaw:      home,
		AwayTeamRaw:      away,
		EventDate:        eventDate,
		BasePrice:        basePrice,
		BundledPrice:     bundledPrice,
		Currency:         a.currency,
		FreeTextMetadata: row.get("extraInfo"),
		Description:      row.get("description"),
		SourceURL:        row.get("productURL"),
	}
	if out.EffectivePrice() <= 0 {
		return offer.RawOffer{}, ingest.Invalid(SourceName, "no usable price (price=%q hotel=%q)", row.get("price"), row.get("price_ticket_hotel"))
	}

	return out, nil
}

func leagueFromCategoryPath(categoryPath string, depth int) string {
	parts := strings.Split(categoryPath, ">")
	if len(parts) <= depth {
		return "Unknown"
	}
	league := strings.TrimSpace(parts[depth])
	if league == "" {
		return "Unknown"
	}
	return league
}

// parsePrice treats unparseable and negative values as absent, matching the
// feed's habit of blank price columns.
func parsePrice(value string) float64 {
	if value == "" {
		return 0
	}
	price, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", "."), 64)
	if err != nil || price < 0 {
		return 0
	}
	return price
}
