package offer

import (
	"fmt"
	"strings"
	"time"
)

type TicketType string

const (
	TicketTypeStandard    TicketType = "Standard"
	TicketTypeHospitality TicketType = "Hospitality"
	TicketTypeUnknown     TicketType = "Unknown"
)

// RawOffer is one provider listing for one ticket inventory item, already
// lifted out of its source-specific shape. It is immutable once built.
type RawOffer struct {
	SourceID    string
	Source      string
	League      string
	HomeTeamRaw string
	AwayTeamRaw string
	// HomeTeamExternalID and AwayTeamExternalID carry the provider's own
	// team identifiers when the feed exposes them; empty otherwise.
	HomeTeamExternalID string
	AwayTeamExternalID string
	EventDate          time.Time
	// BasePrice is the plain ticket price. BundledPrice is the
	// ticket-plus-hotel price; zero means the bundle is not offered.
	BasePrice    float64
	BundledPrice float64
	Currency     string
	// FreeTextMetadata is the provider's pipe-delimited key:value blob
	// (extraInfo); Description is the human-readable listing text.
	FreeTextMetadata string
	Description      string
	SourceURL        string
}

// EffectivePrice is the price used for cross-offer comparison: the bundled
// price when offered, otherwise the base price.
func (o RawOffer) EffectivePrice() float64 {
	if o.BundledPrice > 0 {
		return o.BundledPrice
	}
	return o.BasePrice
}

func (o RawOffer) Validate() error {
	if strings.TrimSpace(o.HomeTeamRaw) == "" {
		return fmt.Errorf("offer home team name is required")
	}
	if strings.TrimSpace(o.AwayTeamRaw) == "" {
		return fmt.Errorf("offer away team name is required")
	}
	if o.EventDate.IsZero() {
		return fmt.Errorf("offer event date is required")
	}
	if o.EffectivePrice() <= 0 {
		return fmt.Errorf("offer effective price must be greater than zero")
	}

	return nil
}

// ExtractedFields is the structured annotation derived from a raw offer's
// free-text metadata.
type ExtractedFields struct {
	TicketType  TicketType
	SeatingPlan string
	// PremiumKeywords lists the hospitality-indicator words found in the
	// description. Diagnostic only, never changes TicketType.
	PremiumKeywords []string
}

// Ambiguous reports the label/keyword disagreement worth manual review: the
// label classified the offer as Standard while the description uses premium
// language.
func (f ExtractedFields) Ambiguous() bool {
	return f.TicketType == TicketTypeStandard && len(f.PremiumKeywords) > 0
}

func NormalizeTicketType(value string) TicketType {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "single ticket", "standard":
		return TicketTypeStandard
	case "hospitality ticket", "hospitality":
		return TicketTypeHospitality
	default:
		return TicketTypeUnknown
	}
}
