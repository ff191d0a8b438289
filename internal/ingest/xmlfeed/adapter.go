// Package xmlfeed adapts the product-catalog XML feed: one <product> node
// per listing, league carried in a sub-category element, team names
// sometimes only present inside the product title.
package xmlfeed

import (
	"encoding/xml"
	"strconv"
	"strings"

	"github.com/seatfeed/offer-aggregator/internal/domain/offer"
	"github.com/seatfeed/offer-aggregator/internal/ingest"
)

const (
	SourceName      = "xml"
	defaultCurrency = "EUR"
)

// Feed is the document root of the export.
type Feed struct {
	XMLName  xml.Name  `xml:"products"`
	Products []Product `xml:"product"`
}

// Product is one listing node.
type Product struct {
	ID             string `xml:"id"`
	Name           string `xml:"name"`
	HomeTeamName   string `xml:"home_team_name"`
	AwayTeamName   string `xml:"away_team_name"`
	DateStart      string `xml:"date_start"`
	Price          string `xml:"price"`
	PriceWithHotel string `xml:"price_ticket_hotel"`
	Subcategories  string `xml:"subsubcategories"`
	ExtraInfo      string `xml:"extraInfo"`
	Description    string `xml:"description"`
	ProductURL     string `xml:"productURL"`
}

// Adapter converts product nodes for one league filter, e.g. "bundesliga".
type Adapter struct {
	leagueFilter string
	currency     string
}

func NewAdapter(leagueFilter string) *Adapter {
	return &Adapter{
		leagueFilter: strings.ToLower(strings.TrimSpace(leagueFilter)),
		currency:     defaultCurrency,
	}
}

// Adapt converts one product node. Products outside the league filter are
// silently dropped; products inside it that cannot name both teams, even via
// the title pattern, are rejected.
func (a *Adapter) Adapt(product Product) (offer.RawOffer, error) {
	league := strings.TrimSpace(product.Subcategories)
	if a.leagueFilter != "" && !strings.Contains(strings.ToLower(league), a.leagueFilter) {
		return offer.RawOffer{}, ingest.ErrOutOfCategory
	}

	home := strings.TrimSpace(product.HomeTeamName)
	away := strings.TrimSpace(product.AwayTeamName)
	if home == "" || away == "" {
		parsedHome, parsedAway, ok := ingest.SplitFixtureTitle(product.Name)
		if !ok {
			return offer.RawOffer{}, ingest.Invalid(SourceName, "no team fields and title %q does not match a fixture pattern", product.Name)
		}
		home, away = parsedHome, parsedAway
	}

	eventDate, err := ingest.ParseEventDate(product.DateStart)
	if err != nil {
		return offer.RawOffer{}, ingest.Invalid(SourceName, "bad date_start: %v", err)
	}

	out := offer.RawOffer{
		SourceID:         strings.TrimSpace(product.ID),
		Source:           SourceName,
		League:           leagueOrUnknown(league),
		HomeTeamRaw:      home,
		AwayTeamRaw:      away,
		EventDate:        eventDate,
		BasePrice:        parsePrice(product.Price),
		BundledPrice:     parsePrice(product.PriceWithHotel),
		Currency:         a.currency,
		FreeTextMetadata: strings.TrimSpace(product.ExtraInfo),
		Description:      strings.TrimSpace(product.Description),
		SourceURL:        strings.TrimSpace(product.ProductURL),
	}
	if out.SourceID == "" {
		out.SourceID = out.SourceURL
	}
	if out.EffectivePrice() <= 0 {
		return offer.RawOffer{}, ingest.Invalid(SourceName, "no usable price for %q", product.Name)
	}

	return out, nil
}

func leagueOrUnknown(league string) string {
	if league == "" {
		return "Unknown"
	}
	return league
}

func parsePrice(value string) float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	price, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", "."), 64)
	if err != nil || price < 0 {
		return 0
	}
	return price
}
