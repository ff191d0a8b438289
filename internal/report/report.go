// Package report serializes an aggregation pass into the JSON document
// consumed downstream, plus a console summary for operators.
package report

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/valyala/bytebufferpool"
	"go.uber.org/zap"

	"github.com/seatfeed/offer-aggregator/internal/domain/match"
	"github.com/seatfeed/offer-aggregator/internal/platform/id"
	"github.com/seatfeed/offer-aggregator/internal/platform/logging"
	"github.com/seatfeed/offer-aggregator/internal/usecase"
)

type TeamDocument struct {
	CanonicalID *string `json:"canonical_id"`
	Name        string  `json:"name"`
}

type MatchDocument struct {
	League              string       `json:"league"`
	HomeTeam            TeamDocument `json:"home_team"`
	AwayTeam            TeamDocument `json:"away_team"`
	DateStart           string       `json:"date_start"`
	MinPrice            float64      `json:"min_price"`
	Currency            string       `json:"currency"`
	SeatingPlan         string       `json:"seating_plan"`
	TicketType          string       `json:"ticket_type"`
	SourceURL           string       `json:"source_url"`
	ContributingSources []string     `json:"contributing_sources"`
}

// LeagueSummary aggregates one league's matches for the report header.
type LeagueSummary struct {
	League     string  `json:"league"`
	MatchCount int     `json:"match_count"`
	MinPrice   float64 `json:"min_price"`
	MaxPrice   float64 `json:"max_price"`
}

type SourceSummary struct {
	Source   string `json:"source"`
	Read     int    `json:"read"`
	Accepted int    `json:"accepted"`
	Dropped  int    `json:"dropped"`
	Rejected int    `json:"rejected"`
}

type Document struct {
	RunID           string               `json:"run_id"`
	GeneratedAt     string               `json:"generated_at"`
	OfferCount      int                  `json:"offer_count"`
	MatchCount      int                  `json:"match_count"`
	UnresolvedTeams int                  `json:"unresolved_teams"`
	Sources         []SourceSummary      `json:"sources"`
	Leagues         []LeagueSummary      `json:"leagues"`
	Matches         []MatchDocument      `json:"matches"`
	ReviewFlags     []usecase.ReviewFlag `json:"review_flags,omitempty"`
}

// Build converts a pipeline result into the serializable document.
func Build(result usecase.PipelineResult, now time.Time) Document {
	doc := Document{
		RunID:           id.New("run"),
		GeneratedAt:     now.UTC().Format(time.RFC3339),
		OfferCount:      result.OfferCount,
		MatchCount:      len(result.Matches),
		UnresolvedTeams: result.UnresolvedTeams,
		Matches:         make([]MatchDocument, 0, len(result.Matches)),
		ReviewFlags:     result.ReviewFlags,
	}

	for name, stats := range result.SourceStats {
		doc.Sources = append(doc.Sources, SourceSummary{
			Source:   name,
			Read:     stats.Read,
			Accepted: stats.Accepted,
			Dropped:  stats.Dropped,
			Rejected: len(stats.Rejected),
		})
	}
	sort.Slice(doc.Sources, func(i, j int) bool { return doc.Sources[i].Source < doc.Sources[j].Source })

	byLeague := make(map[string]*LeagueSummary)
	for _, m := range result.Matches {
		doc.Matches = append(doc.Matches, matchDocument(m))

		summary, ok := byLeague[m.League]
		if !ok {
			summary = &LeagueSummary{League: m.League, MinPrice: m.MinPrice, MaxPrice: m.MinPrice}
			byLeague[m.League] = summary
		}
		summary.MatchCount++
		if m.MinPrice < summary.MinPrice {
			summary.MinPrice = m.MinPrice
		}
		if m.MinPrice > summary.MaxPrice {
			summary.MaxPrice = m.MinPrice
		}
	}
	doc.Leagues = make([]LeagueSummary, 0, len(byLeague))
	for _, summary := range byLeague {
		doc.Leagues = append(doc.Leagues, *summary)
	}
	sort.Slice(doc.Leagues, func(i, j int) bool { return doc.Leagues[i].League < doc.Leagues[j].League })

	return doc
}

func matchDocument(m match.Match) MatchDocument {
	return MatchDocument{
		League:              m.League,
		HomeTeam:            teamDocument(m.HomeTeam),
		AwayTeam:            teamDocument(m.AwayTeam),
		DateStart:           m.EventDate.UTC().Format(time.RFC3339),
		MinPrice:            m.MinPrice,
		Currency:            m.Currency,
		SeatingPlan:         m.MinPriceFields.SeatingPlan,
		TicketType:          string(m.MinPriceFields.TicketType),
		SourceURL:           m.MinPriceOffer.SourceURL,
		ContributingSources: m.SourceIDs(),
	}
}

func teamDocument(ref match.TeamRef) TeamDocument {
	doc := TeamDocument{Name: ref.Name}
	if ref.Resolved() {
		canonicalID := ref.CanonicalID
		doc.CanonicalID = &canonicalID
	}
	return doc
}

// Writer emits the report document as indented JSON.
type Writer struct {
	logger *logging.Logger
}

func NewWriter(logger *logging.Logger) *Writer {
	if logger == nil {
		logger = logging.Default()
	}
	return &Writer{logger: logger}
}

func (w *Writer) Encode(doc Document, out io.Writer) error {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	raw, err := sonic.ConfigDefault.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report document: %w", err)
	}
	buf.Set(raw)
	buf.WriteByte('\n')

	if _, err := out.Write(buf.B); err != nil {
		return fmt.Errorf("write report document: %w", err)
	}
	return nil
}

// WriteFile writes the document to path, creating parent directories.
func (w *Writer) WriteFile(ctx context.Context, doc Document, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer file.Close()

	if err := w.Encode(doc, file); err != nil {
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close report file: %w", err)
	}

	w.logger.InfoContext(ctx, "report written",
		zap.String("run_id", doc.RunID),
		zap.String("path", path),
		zap.Int("matches", doc.MatchCount),
	)
	return nil
}

// WriteSummary prints the operator-facing rundown, one line per league.
func (w *Writer) WriteSummary(doc Document, out io.Writer) error {
	if _, err := fmt.Fprintf(out, "run %s: %d offers -> %d matches (%d with unresolved teams, %d review flags)\n",
		doc.RunID, doc.OfferCount, doc.MatchCount, doc.UnresolvedTeams, len(doc.ReviewFlags)); err != nil {
		return err
	}
	for _, league := range doc.Leagues {
		if _, err := fmt.Fprintf(out, "  %-28s %3d matches  %8.2f - %.2f\n",
			league.League, league.MatchCount, league.MinPrice, league.MaxPrice); err != nil {
			return err
		}
	}
	return nil
}
