package match

import (
	"sort"
	"time"

	"github.com/seatfeed/offer-aggregator/internal/domain/offer"
)

// TeamRef points at one side of a fixture. CanonicalID is empty when the
// provider name could not be resolved; Name then carries the raw spelling so
// unresolved teams still aggregate consistently.
type TeamRef struct {
	CanonicalID string
	Name        string
}

func (r TeamRef) Resolved() bool {
	return r.CanonicalID != ""
}

// keyPart is the identity used inside the composite key: the canonical id
// when resolved, otherwise the raw provider name.
func (r TeamRef) keyPart() string {
	if r.CanonicalID != "" {
		return r.CanonicalID
	}
	return r.Name
}

// Key identifies one fixture across all providers within an aggregation run.
// Event dates are keyed at day precision in UTC so the same fixture listed
// with different kickoff timestamps still merges.
type Key struct {
	League string
	Home   string
	Away   string
	Date   string
}

func NewKey(league string, home, away TeamRef, eventDate time.Time) Key {
	return Key{
		League: league,
		Home:   home.keyPart(),
		Away:   away.keyPart(),
		Date:   eventDate.UTC().Format("2006-01-02"),
	}
}

// Match is the aggregated output entity, one per distinct fixture. It is
// created on the first offer for its key and mutated only by the aggregator.
type Match struct {
	Key       Key
	League    string
	HomeTeam  TeamRef
	AwayTeam  TeamRef
	EventDate time.Time

	MinPrice       float64
	Currency       string
	MinPriceOffer  offer.RawOffer
	MinPriceFields offer.ExtractedFields

	sources map[string]struct{}
}

func New(key Key, league string, home, away TeamRef, eventDate time.Time) *Match {
	return &Match{
		Key:       key,
		League:    league,
		HomeTeam:  home,
		AwayTeam:  away,
		EventDate: eventDate,
		sources:   make(map[string]struct{}, 2),
	}
}

func (m *Match) AddSource(sourceID string) {
	if sourceID == "" {
		return
	}
	if m.sources == nil {
		m.sources = make(map[string]struct{}, 2)
	}
	m.sources[sourceID] = struct{}{}
}

func (m *Match) HasSource(sourceID string) bool {
	_, ok := m.sources[sourceID]
	return ok
}

func (m *Match) SourceCount() int {
	return len(m.sources)
}

// SourceIDs returns the contributing source ids in lexical order.
func (m *Match) SourceIDs() []string {
	out := make([]string, 0, len(m.sources))
	for id := range m.sources {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
