package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/seatfeed/offer-aggregator/internal/aggregate"
	"github.com/seatfeed/offer-aggregator/internal/domain/match"
	"github.com/seatfeed/offer-aggregator/internal/domain/offer"
	"github.com/seatfeed/offer-aggregator/internal/extract"
	"github.com/seatfeed/offer-aggregator/internal/ingest"
	"github.com/seatfeed/offer-aggregator/internal/platform/logging"
	"github.com/seatfeed/offer-aggregator/internal/resolve"
)

// ReviewFlag marks an offer that aggregated cleanly but deserves a human
// look: an extraction label that disagrees with the listing text, or a team
// name matched only by substring containment.
type ReviewFlag struct {
	Kind     string `json:"kind"`
	Source   string `json:"source"`
	SourceID string `json:"source_id"`
	Detail   string `json:"detail"`
}

const (
	ReviewAmbiguousExtraction = "ambiguous_extraction"
	ReviewFuzzyResolution     = "fuzzy_resolution"
)

type PipelineResult struct {
	Matches     []match.Match
	SourceStats map[string]ingest.Stats
	OfferCount  int
	// UnresolvedTeams counts offers where at least one club name stayed
	// unmatched against the catalog. Those offers still aggregate under
	// their raw spelling.
	UnresolvedTeams int
	ReviewFlags     []ReviewFlag
}

// PipelineService runs one full aggregation pass: ingest every configured
// source concurrently, then extract, resolve, and aggregate the merged
// batch.
type PipelineService struct {
	sources   []ingest.Source
	extractor *extract.Extractor
	resolver  *resolve.Resolver
	logger    *logging.Logger
}

func NewPipelineService(sources []ingest.Source, extractor *extract.Extractor, resolver *resolve.Resolver, logger *logging.Logger) *PipelineService {
	if logger == nil {
		logger = logging.Default()
	}
	return &PipelineService{
		sources:   sources,
		extractor: extractor,
		resolver:  resolver,
		logger:    logger,
	}
}

type sourceBatch struct {
	name   string
	offers []offer.RawOffer
	stats  ingest.Stats
}

func (s *PipelineService) Run(ctx context.Context) (PipelineResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PipelineService.Run")
	defer span.End()

	if len(s.sources) == 0 {
		return PipelineResult{}, fmt.Errorf("%w: no ingestion sources configured", ErrInvalidInput)
	}
	if s.extractor == nil || s.resolver == nil {
		return PipelineResult{}, fmt.Errorf("%w: pipeline is not fully configured", ErrDependencyUnavailable)
	}

	batches, err := s.ingestAll(ctx)
	if err != nil {
		return PipelineResult{}, err
	}

	result := PipelineResult{SourceStats: make(map[string]ingest.Stats, len(batches))}
	agg := aggregate.New()
	for _, batch := range batches {
		result.SourceStats[batch.name] = batch.stats
		for _, raw := range batch.offers {
			fields := s.extractor.Extract(batch.name, raw)
			home := s.resolver.Resolve(raw.HomeTeamRaw, raw.HomeTeamExternalID)
			away := s.resolver.Resolve(raw.AwayTeamRaw, raw.AwayTeamExternalID)

			result.OfferCount++
			if !home.Resolved || !away.Resolved {
				result.UnresolvedTeams++
			}
			result.ReviewFlags = append(result.ReviewFlags, reviewFlags(raw, fields, home, away)...)

			agg.Add(aggregate.Input{
				Offer:  raw,
				Fields: fields,
				Home:   home,
				Away:   away,
			})
		}
	}

	result.Matches = agg.Matches()
	s.logger.InfoContext(ctx, "aggregation pass complete",
		zap.Int("sources", len(batches)),
		zap.Int("offers", result.OfferCount),
		zap.Int("matches", len(result.Matches)),
		zap.Int("unresolved_teams", result.UnresolvedTeams),
		zap.Int("review_flags", len(result.ReviewFlags)),
	)
	return result, nil
}

// ingestAll fetches every source concurrently. Batches come back sorted by
// source name so a run is deterministic regardless of fetch completion
// order.
func (s *PipelineService) ingestAll(ctx context.Context) ([]sourceBatch, error) {
	p := pool.NewWithResults[sourceBatch]().WithContext(ctx)
	for _, src := range s.sources {
		src := src
		p.Go(func(ctx context.Context) (sourceBatch, error) {
			offers, stats, err := src.Offers(ctx)
			if err != nil {
				return sourceBatch{}, fmt.Errorf("ingest source %s: %w", src.Name(), err)
			}
			for _, rejected := range stats.Rejected {
				s.logger.WarnContext(ctx, "feed record rejected",
					zap.String("source", src.Name()),
					zap.String("reason", rejected.Reason),
				)
			}
			return sourceBatch{name: src.Name(), offers: offers, stats: stats}, nil
		})
	}

	batches, err := p.Wait()
	if err != nil {
		return nil, err
	}
	sort.Slice(batches, func(i, j int) bool { return batches[i].name < batches[j].name })
	return batches, nil
}

func reviewFlags(raw offer.RawOffer, fields offer.ExtractedFields, home, away resolve.Resolution) []ReviewFlag {
	var flags []ReviewFlag
	if fields.Ambiguous() {
		flags = append(flags, ReviewFlag{
			Kind:     ReviewAmbiguousExtraction,
			Source:   raw.Source,
			SourceID: raw.SourceID,
			Detail:   fmt.Sprintf("labelled Standard but description mentions %v", fields.PremiumKeywords),
		})
	}
	for _, resolution := range []resolve.Resolution{home, away} {
		if resolution.Resolved && resolution.Confidence == resolve.ConfidenceFuzzy {
			flags = append(flags, ReviewFlag{
				Kind:     ReviewFuzzyResolution,
				Source:   raw.Source,
				SourceID: raw.SourceID,
				Detail:   fmt.Sprintf("%q matched %q by containment only", resolution.RawName, resolution.Identity.Name),
			})
		}
	}
	return flags
}
