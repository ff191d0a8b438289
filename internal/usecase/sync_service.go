package usecase

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/seatfeed/offer-aggregator/internal/domain/offer"
	"github.com/seatfeed/offer-aggregator/internal/ingest"
	"github.com/seatfeed/offer-aggregator/internal/ingest/perffeed"
	"github.com/seatfeed/offer-aggregator/internal/platform/cache"
	"github.com/seatfeed/offer-aggregator/internal/platform/logging"
)

// PerformanceLister fetches a performer's full schedule from the ticket
// provider.
type PerformanceLister interface {
	ListPerformances(ctx context.Context, performerID int64) ([]perffeed.Performance, error)
}

// SyncService pulls performances for a set of performers through a bounded
// worker pool and adapts them into offers. Schedules are cached per
// performer so repeated runs inside the TTL reuse the previous fetch.
//
// SyncService implements ingest.Source so the pipeline treats the live API
// the same way it treats file feeds.
type SyncService struct {
	lister       PerformanceLister
	adapter      *perffeed.Adapter
	performerIDs []int64
	workers      int
	schedules    *cache.Store[[]perffeed.Performance]
	logger       *logging.Logger
}

type SyncConfig struct {
	PerformerIDs []int64
	Workers      int
	CacheTTL     time.Duration
}

func NewSyncService(lister PerformanceLister, adapter *perffeed.Adapter, cfg SyncConfig, logger *logging.Logger) *SyncService {
	if logger == nil {
		logger = logging.Default()
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 4
	}
	if workers > len(cfg.PerformerIDs) && len(cfg.PerformerIDs) > 0 {
		workers = len(cfg.PerformerIDs)
	}
	return &SyncService{
		lister:       lister,
		adapter:      adapter,
		performerIDs: cfg.PerformerIDs,
		workers:      workers,
		schedules:    cache.NewStore[[]perffeed.Performance](cfg.CacheTTL),
		logger:       logger,
	}
}

func (s *SyncService) Name() string { return perffeed.SourceName }

func (s *SyncService) Offers(ctx context.Context) ([]offer.RawOffer, ingest.Stats, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncService.Offers")
	defer span.End()

	if s.lister == nil || s.adapter == nil {
		return nil, ingest.Stats{}, fmt.Errorf("%w: performance sync is not fully configured", ErrDependencyUnavailable)
	}
	if len(s.performerIDs) == 0 {
		return nil, ingest.Stats{}, fmt.Errorf("%w: no performer ids configured", ErrInvalidInput)
	}

	type performerResult struct {
		performerID int64
		offers      []offer.RawOffer
		stats       ingest.Stats
		err         error
	}

	pool, err := ants.NewPool(s.workers)
	if err != nil {
		return nil, ingest.Stats{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	results := make([]performerResult, len(s.performerIDs))
	var wg sync.WaitGroup
	for i, performerID := range s.performerIDs {
		i, performerID := i, performerID
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			offers, stats, err := s.syncPerformer(ctx, performerID)
			results[i] = performerResult{performerID: performerID, offers: offers, stats: stats, err: err}
		}); err != nil {
			wg.Done()
			results[i] = performerResult{performerID: performerID, err: fmt.Errorf("submit sync task: %w", err)}
		}
	}
	wg.Wait()

	var (
		all   []offer.RawOffer
		stats ingest.Stats
	)
	for _, res := range results {
		if res.err != nil {
			if ctx.Err() != nil {
				return nil, ingest.Stats{}, ctx.Err()
			}
			// One performer failing should not sink the whole run.
			s.logger.WarnContext(ctx, "performer sync failed",
				zap.Int64("performer_id", res.performerID),
				zap.Error(res.err),
			)
			continue
		}
		all = append(all, res.offers...)
		stats.Read += res.stats.Read
		stats.Accepted += res.stats.Accepted
		stats.Dropped += res.stats.Dropped
		stats.Rejected = append(stats.Rejected, res.stats.Rejected...)
	}

	// A performer's schedule lists every fixture it takes part in, so two
	// queried performers can both return the same performance, each with
	// itself as the home club. Keep the copy whose orientation agrees with
	// the listing title, falling back to first-seen.
	all = dedupePerformances(all)

	sort.SliceStable(all, func(i, j int) bool { return all[i].SourceID < all[j].SourceID })
	return all, stats, nil
}

func (s *SyncService) syncPerformer(ctx context.Context, performerID int64) ([]offer.RawOffer, ingest.Stats, error) {
	key := "performer:" + strconv.FormatInt(performerID, 10)
	performances, err := s.schedules.GetOrLoad(key, func() ([]perffeed.Performance, error) {
		return s.lister.ListPerformances(ctx, performerID)
	})
	if err != nil {
		return nil, ingest.Stats{}, err
	}

	var (
		offers []offer.RawOffer
		stats  ingest.Stats
	)
	for _, perf := range performances {
		stats.Read++
		adapted, err := s.adapter.Adapt(perf, performerID)
		switch {
		case err == nil:
			stats.Accepted++
			offers = append(offers, adapted)
		case ingest.IsInvalidRecord(err):
			stats.Rejected = append(stats.Rejected, ingest.RejectedRecord{
				Source: perffeed.SourceName,
				Reason: err.Error(),
			})
		default:
			return nil, ingest.Stats{}, err
		}
	}
	return offers, stats, nil
}

func dedupePerformances(offers []offer.RawOffer) []offer.RawOffer {
	seen := make(map[string]int, len(offers))
	out := offers[:0]
	for _, o := range offers {
		idx, ok := seen[o.SourceID]
		if !ok {
			seen[o.SourceID] = len(out)
			out = append(out, o)
			continue
		}
		if !orientationMatchesTitle(out[idx]) && orientationMatchesTitle(o) {
			out[idx] = o
		}
	}
	return out
}

// orientationMatchesTitle reports whether the offer's home club is also the
// first club in the listing title ("Home vs Away").
func orientationMatchesTitle(o offer.RawOffer) bool {
	titleHome, _, ok := ingest.SplitFixtureTitle(o.Description)
	if !ok {
		return false
	}
	return strings.EqualFold(titleHome, o.HomeTeamRaw)
}
