package xmlfeed

import (
	"errors"
	"testing"

	"github.com/seatfeed/offer-aggregator/internal/ingest"
)

func bundesligaProduct() Product {
	return Product{
		ID:             "x-301",
		Name:           "Bayern Munich vs Borussia Dortmund – Allianz Arena",
		HomeTeamName:   "Bayern Munich",
		AwayTeamName:   "Borussia Dortmund",
		DateStart:      "2026-03-14T18:30:00",
		Price:          "145",
		PriceWithHotel: "399",
		Subcategories:  "Bundesliga",
		ExtraInfo:      "Ticket Type: Hospitality Ticket | Seating plan: Business Seats",
		Description:    "Der Klassiker with lounge access",
		ProductURL:     "https://shop.example/x-301",
	}
}

func TestAdapter_Adapt(t *testing.T) {
	adapter := NewAdapter("bundesliga")

	got, err := adapter.Adapt(bundesligaProduct())
	if err != nil {
		t.Fatalf("Adapt() error = %v", err)
	}
	if got.League != "Bundesliga" {
		t.Fatalf("League = %q", got.League)
	}
	if got.BasePrice != 145 || got.BundledPrice != 399 {
		t.Fatalf("prices = %v/%v, want 145/399", got.BasePrice, got.BundledPrice)
	}
	if got.EffectivePrice() != 399 {
		t.Fatalf("EffectivePrice() = %v, want bundled 399", got.EffectivePrice())
	}
}

func TestAdapter_Adapt_TeamsFromTitle(t *testing.T) {
	product := bundesligaProduct()
	product.HomeTeamName = ""
	product.AwayTeamName = ""

	adapter := NewAdapter("")
	got, err := adapter.Adapt(product)
	if err != nil {
		t.Fatalf("Adapt() error = %v", err)
	}
	if got.HomeTeamRaw != "Bayern Munich" || got.AwayTeamRaw != "Borussia Dortmund" {
		t.Fatalf("teams = %q vs %q, want parsed from title", got.HomeTeamRaw, got.AwayTeamRaw)
	}
}

func TestAdapter_Adapt_LeagueFilter(t *testing.T) {
	product := bundesligaProduct()
	product.Subcategories = "Serie A"

	adapter := NewAdapter("bundesliga")
	if _, err := adapter.Adapt(product); !errors.Is(err, ingest.ErrOutOfCategory) {
		t.Fatalf("Adapt() error = %v, want ErrOutOfCategory", err)
	}
}

func TestAdapter_Adapt_RejectsUnparsableTitle(t *testing.T) {
	product := bundesligaProduct()
	product.HomeTeamName = ""
	product.AwayTeamName = ""
	product.Name = "Stadium tour Munich"

	adapter := NewAdapter("")
	if _, err := adapter.Adapt(product); !ingest.IsInvalidRecord(err) {
		t.Fatalf("Adapt() error = %v, want InvalidRecordError", err)
	}
}

func TestAdapter_Adapt_SourceIDFallsBackToURL(t *testing.T) {
	product := bundesligaProduct()
	product.ID = ""

	adapter := NewAdapter("")
	got, err := adapter.Adapt(product)
	if err != nil {
		t.Fatalf("Adapt() error = %v", err)
	}
	if got.SourceID != "https://shop.example/x-301" {
		t.Fatalf("SourceID = %q, want product URL", got.SourceID)
	}
}
