package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/seatfeed/offer-aggregator/internal/ingest/perffeed"
)

type stubLister struct {
	mu        sync.Mutex
	calls     map[int64]int
	schedules map[int64][]perffeed.Performance
	failFor   map[int64]error
}

func newStubLister() *stubLister {
	return &stubLister{
		calls:     make(map[int64]int),
		schedules: make(map[int64][]perffeed.Performance),
		failFor:   make(map[int64]error),
	}
}

func (l *stubLister) ListPerformances(_ context.Context, performerID int64) ([]perffeed.Performance, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls[performerID]++
	if err := l.failFor[performerID]; err != nil {
		return nil, err
	}
	return l.schedules[performerID], nil
}

func performanceFixture(id int64, name, date string, price float64, performers ...perffeed.Performer) perffeed.Performance {
	perf := perffeed.Performance{ID: id, Name: name, Performers: performers}
	perf.StartDate.DateTime = date
	perf.PriceRange.MinPrice = price
	perf.PriceRange.Currency = "EUR"
	return perf
}

func TestSyncService_Offers_AdaptsAndCaches(t *testing.T) {
	lister := newStubLister()
	lister.schedules[292] = []perffeed.Performance{
		performanceFixture(9001, "Real Madrid vs Sevilla", "2026-04-18T21:00:00", 85,
			perffeed.Performer{ID: 292, Name: "Real Madrid"},
			perffeed.Performer{ID: 310, Name: "Sevilla"},
		),
		// No price: rejected, not fatal.
		performanceFixture(9002, "Real Madrid vs Getafe", "2026-04-25T18:30:00", 0,
			perffeed.Performer{ID: 292, Name: "Real Madrid"},
			perffeed.Performer{ID: 315, Name: "Getafe"},
		),
	}

	svc := NewSyncService(lister, perffeed.NewAdapter("La Liga"), SyncConfig{
		PerformerIDs: []int64{292},
		Workers:      2,
		CacheTTL:     time.Minute,
	}, nil)

	offers, stats, err := svc.Offers(context.Background())
	if err != nil {
		t.Fatalf("Offers() error = %v", err)
	}
	if len(offers) != 1 {
		t.Fatalf("len(offers) = %d, want 1", len(offers))
	}
	if offers[0].HomeTeamRaw != "Real Madrid" || offers[0].AwayTeamRaw != "Sevilla" {
		t.Fatalf("offer teams = %q vs %q", offers[0].HomeTeamRaw, offers[0].AwayTeamRaw)
	}
	if offers[0].HomeTeamExternalID != "ht-292" {
		t.Fatalf("HomeTeamExternalID = %q, want ht-292", offers[0].HomeTeamExternalID)
	}
	if stats.Read != 2 || stats.Accepted != 1 || len(stats.Rejected) != 1 {
		t.Fatalf("stats = %+v, want read 2 accepted 1 rejected 1", stats)
	}

	// Second run inside the TTL must hit the schedule cache.
	if _, _, err := svc.Offers(context.Background()); err != nil {
		t.Fatalf("Offers() second run error = %v", err)
	}
	if got := lister.calls[292]; got != 1 {
		t.Fatalf("provider called %d times, want 1", got)
	}
}

func TestSyncService_Offers_SkipsFailedPerformer(t *testing.T) {
	lister := newStubLister()
	lister.schedules[292] = []perffeed.Performance{
		performanceFixture(9001, "Real Madrid vs Sevilla", "2026-04-18T21:00:00", 85,
			perffeed.Performer{ID: 292, Name: "Real Madrid"},
			perffeed.Performer{ID: 310, Name: "Sevilla"},
		),
	}
	lister.failFor[400] = errors.New("provider status=500")

	svc := NewSyncService(lister, perffeed.NewAdapter(""), SyncConfig{
		PerformerIDs: []int64{292, 400},
	}, nil)

	offers, _, err := svc.Offers(context.Background())
	if err != nil {
		t.Fatalf("Offers() error = %v", err)
	}
	if len(offers) != 1 {
		t.Fatalf("len(offers) = %d, want 1 from the healthy performer", len(offers))
	}
}

func TestSyncService_Offers_DeduplicatesSharedPerformances(t *testing.T) {
	lister := newStubLister()
	// The same performance appears in both schedules, each performer
	// claiming the home slot. The title says Real Madrid hosts.
	lister.schedules[292] = []perffeed.Performance{
		performanceFixture(9001, "Real Madrid vs Sevilla", "2026-04-18T21:00:00", 85,
			perffeed.Performer{ID: 292, Name: "Real Madrid"},
			perffeed.Performer{ID: 310, Name: "Sevilla"},
		),
	}
	lister.schedules[310] = []perffeed.Performance{
		performanceFixture(9001, "Real Madrid vs Sevilla", "2026-04-18T21:00:00", 85,
			perffeed.Performer{ID: 292, Name: "Real Madrid"},
			perffeed.Performer{ID: 310, Name: "Sevilla"},
		),
	}

	svc := NewSyncService(lister, perffeed.NewAdapter("La Liga"), SyncConfig{
		PerformerIDs: []int64{292, 310},
	}, nil)

	offers, _, err := svc.Offers(context.Background())
	if err != nil {
		t.Fatalf("Offers() error = %v", err)
	}
	if len(offers) != 1 {
		t.Fatalf("len(offers) = %d, want 1 after dedupe", len(offers))
	}
	if offers[0].HomeTeamRaw != "Real Madrid" {
		t.Fatalf("HomeTeamRaw = %q, want title orientation Real Madrid", offers[0].HomeTeamRaw)
	}
}

func TestSyncService_Offers_RequiresPerformers(t *testing.T) {
	svc := NewSyncService(newStubLister(), perffeed.NewAdapter(""), SyncConfig{}, nil)
	if _, _, err := svc.Offers(context.Background()); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("Offers() error = %v, want ErrInvalidInput", err)
	}
}
