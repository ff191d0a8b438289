// Package extract parses the providers' free-text metadata into structured
// offer annotations. Extraction never fails: anything it cannot read comes
// back as Unknown or empty.
package extract

import (
	"regexp"
	"strings"

	"github.com/seatfeed/offer-aggregator/internal/domain/offer"
)

// Strategy parses one provider's metadata convention.
type Strategy interface {
	Extract(metadata, description string) offer.ExtractedFields
}

// Extractor dispatches to a per-source strategy, defaulting to the
// pipe-delimited convention every current feed uses.
type Extractor struct {
	strategies map[string]Strategy
	fallback   Strategy
}

func New() *Extractor {
	return &Extractor{
		strategies: make(map[string]Strategy),
		fallback:   PipeDelimited{},
	}
}

// Register installs a strategy for one source name. New providers with their
// own metadata convention plug in here without touching aggregation.
func (e *Extractor) Register(source string, strategy Strategy) {
	if strategy == nil {
		return
	}
	e.strategies[source] = strategy
}

func (e *Extractor) Extract(source string, item offer.RawOffer) offer.ExtractedFields {
	strategy, ok := e.strategies[source]
	if !ok {
		strategy = e.fallback
	}
	return strategy.Extract(item.FreeTextMetadata, item.Description)
}

var (
	ticketTypeRegex  = regexp.MustCompile(`(?i)ticket type:\s*([^|]+)`)
	seatingPlanRegex = regexp.MustCompile(`(?i)seating plan:\s*([^|]+)`)
)

// premiumKeywords is the fixed vocabulary of hospitality indicators scanned
// in listing descriptions. Matches are diagnostic only: they flag offers for
// manual review, they never override the labelled ticket type.
var premiumKeywords = []string{
	"hospitality",
	"vip",
	"lounge",
	"club",
	"box",
	"suite",
	"premium",
	"dinner",
	"buffet",
	"drinks included",
	"all-inclusive",
}

// PipeDelimited reads the "Key: value | Key: value" metadata blob used by
// the tabular and XML feeds.
type PipeDelimited struct{}

func (PipeDelimited) Extract(metadata, description string) offer.ExtractedFields {
	fields := offer.ExtractedFields{TicketType: offer.TicketTypeUnknown}

	if groups := ticketTypeRegex.FindStringSubmatch(metadata); groups != nil {
		fields.TicketType = offer.NormalizeTicketType(groups[1])
	}
	if groups := seatingPlanRegex.FindStringSubmatch(metadata); groups != nil {
		fields.SeatingPlan = strings.TrimSpace(groups[1])
	}
	fields.PremiumKeywords = scanPremiumKeywords(description)

	return fields
}

func scanPremiumKeywords(description string) []string {
	if description == "" {
		return nil
	}

	lowered := strings.ToLower(description)
	var found []string
	for _, keyword := range premiumKeywords {
		if strings.Contains(lowered, keyword) {
			found = append(found, keyword)
		}
	}
	return found
}
