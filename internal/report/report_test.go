package report

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/seatfeed/offer-aggregator/internal/aggregate"
	"github.com/seatfeed/offer-aggregator/internal/domain/offer"
	"github.com/seatfeed/offer-aggregator/internal/domain/team"
	"github.com/seatfeed/offer-aggregator/internal/ingest"
	"github.com/seatfeed/offer-aggregator/internal/resolve"
	"github.com/seatfeed/offer-aggregator/internal/usecase"
)

func reportResult(t *testing.T) usecase.PipelineResult {
	t.Helper()

	agg := aggregate.New()
	kickoff := time.Date(2026, 5, 2, 20, 0, 0, 0, time.UTC)

	resolved := func(id, name string) resolve.Resolution {
		return resolve.Resolution{
			Identity: team.Identity{CanonicalID: id, Name: name},
			Resolved: true,
			RawName:  name,
		}
	}
	unresolved := func(name string) resolve.Resolution {
		return resolve.Resolution{RawName: name}
	}

	agg.Add(aggregate.Input{
		Offer: offer.RawOffer{
			SourceID:  "csv-1",
			Source:    "csv",
			League:    "Premier League",
			EventDate: kickoff,
			BasePrice: 150,
			Currency:  "EUR",
			SourceURL: "https://tickets.example/1",
		},
		Fields: offer.ExtractedFields{TicketType: offer.TicketTypeStandard, SeatingPlan: "Longside Lower"},
		Home:   resolved("t-mancity", "Man City"),
		Away:   resolved("t-arsenal", "Arsenal"),
	})
	agg.Add(aggregate.Input{
		Offer: offer.RawOffer{
			SourceID:  "xml-7",
			Source:    "xml",
			League:    "Premier League",
			EventDate: kickoff.Add(time.Hour),
			BasePrice: 110,
			Currency:  "EUR",
			SourceURL: "https://tickets.example/7",
		},
		Fields: offer.ExtractedFields{TicketType: offer.TicketTypeStandard},
		Home:   resolved("t-mancity", "Man City"),
		Away:   resolved("t-arsenal", "Arsenal"),
	})
	agg.Add(aggregate.Input{
		Offer: offer.RawOffer{
			SourceID:  "csv-2",
			Source:    "csv",
			League:    "Eredivisie",
			EventDate: kickoff,
			BasePrice: 45,
			Currency:  "EUR",
		},
		Fields: offer.ExtractedFields{TicketType: offer.TicketTypeUnknown},
		Home:   unresolved("Ajax"),
		Away:   unresolved("PSV"),
	})

	return usecase.PipelineResult{
		Matches:         agg.Matches(),
		OfferCount:      3,
		UnresolvedTeams: 1,
		SourceStats: map[string]ingest.Stats{
			"csv": {Read: 3, Accepted: 2, Dropped: 1},
			"xml": {Read: 1, Accepted: 1},
		},
	}
}

func TestBuild_Document(t *testing.T) {
	doc := Build(reportResult(t), time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC))

	if !strings.HasPrefix(doc.RunID, "run_") {
		t.Fatalf("RunID = %q, want run_ prefix", doc.RunID)
	}
	if doc.GeneratedAt != "2026-05-01T09:00:00Z" {
		t.Fatalf("GeneratedAt = %q", doc.GeneratedAt)
	}
	if doc.MatchCount != 2 || len(doc.Matches) != 2 {
		t.Fatalf("MatchCount = %d, len(Matches) = %d, want 2", doc.MatchCount, len(doc.Matches))
	}

	// Sorted by league: Eredivisie first.
	if doc.Leagues[0].League != "Eredivisie" || doc.Leagues[0].MatchCount != 1 {
		t.Fatalf("Leagues[0] = %+v", doc.Leagues[0])
	}
	premier := doc.Leagues[1]
	if premier.MinPrice != 110 || premier.MaxPrice != 110 {
		t.Fatalf("Premier League summary = %+v, want min price 110 carried", premier)
	}

	var derby MatchDocument
	for _, m := range doc.Matches {
		if m.League == "Premier League" {
			derby = m
		}
	}
	if derby.MinPrice != 110 || derby.SourceURL != "https://tickets.example/7" {
		t.Fatalf("derby = %+v, want cheapest offer fields", derby)
	}
	if len(derby.ContributingSources) != 2 {
		t.Fatalf("ContributingSources = %v, want both source ids", derby.ContributingSources)
	}
	if derby.HomeTeam.CanonicalID == nil || *derby.HomeTeam.CanonicalID != "t-mancity" {
		t.Fatalf("HomeTeam = %+v", derby.HomeTeam)
	}

	if got := doc.Sources[0]; got.Source != "csv" || got.Dropped != 1 {
		t.Fatalf("Sources[0] = %+v", got)
	}
}

func TestBuild_UnresolvedTeamEncodesNullCanonicalID(t *testing.T) {
	doc := Build(reportResult(t), time.Now())

	raw, err := sonic.Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.Contains(string(raw), `"canonical_id":null,"name":"Ajax"`) {
		t.Fatalf("document does not carry null canonical_id for Ajax: %s", raw)
	}
}

func TestWriter_WriteFileAndSummary(t *testing.T) {
	doc := Build(reportResult(t), time.Now())
	writer := NewWriter(nil)

	path := filepath.Join(t.TempDir(), "out", "report.json")
	if err := writer.WriteFile(context.Background(), doc, path); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	var decoded Document
	if err := sonic.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("report file is not valid JSON: %v", err)
	}
	if decoded.MatchCount != doc.MatchCount {
		t.Fatalf("decoded MatchCount = %d, want %d", decoded.MatchCount, doc.MatchCount)
	}

	var summary bytes.Buffer
	if err := writer.WriteSummary(doc, &summary); err != nil {
		t.Fatalf("WriteSummary() error = %v", err)
	}
	if !strings.Contains(summary.String(), "-> 2 matches") {
		t.Fatalf("summary missing match count: %q", summary.String())
	}
}
