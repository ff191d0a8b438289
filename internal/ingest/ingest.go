// Package ingest defines the contract between source-specific feed adapters
// and the aggregation pipeline: every adapter turns one raw record into a
// RawOffer or a per-record rejection that the caller counts and moves past.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/seatfeed/offer-aggregator/internal/domain/offer"
)

// InvalidRecordError marks a single unusable feed record. It is never fatal:
// the pipeline counts it and continues with the next record.
type InvalidRecordError struct {
	Source string
	Reason string
}

func (e *InvalidRecordError) Error() string {
	return fmt.Sprintf("invalid %s record: %s", e.Source, e.Reason)
}

func Invalid(source, format string, args ...any) error {
	return &InvalidRecordError{Source: source, Reason: fmt.Sprintf(format, args...)}
}

func IsInvalidRecord(err error) bool {
	var target *InvalidRecordError
	return errors.As(err, &target)
}

// ErrOutOfCategory signals a record outside the feed's target category.
// Unlike a rejection it is silently dropped, not reported.
var ErrOutOfCategory = errors.New("record outside target category")

// Stats counts what happened to one source's records before aggregation.
type Stats struct {
	Read     int
	Accepted int
	Dropped  int
	Rejected []RejectedRecord
}

type RejectedRecord struct {
	Source string
	Reason string
}

// Source yields one provider's already-adapted offers. Implementations own
// all I/O; the pipeline only ever sees the finished batch.
type Source interface {
	Name() string
	Offers(ctx context.Context) ([]offer.RawOffer, Stats, error)
}

// fixtureTitleRegex matches "<A> vs <B>" and "<A> v <B>" product titles,
// tolerating a trailing dash-separated suffix such as " – Final".
var fixtureTitleRegex = regexp.MustCompile(`(?i)^(.+?)\s+(?:vs\.?|v\.?)\s+(.+?)(?:\s*[–—-]\s.*)?$`)

// SplitFixtureTitle extracts home and away team names from a listing title.
func SplitFixtureTitle(title string) (home, away string, ok bool) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", "", false
	}

	groups := fixtureTitleRegex.FindStringSubmatch(title)
	if groups == nil {
		return "", "", false
	}

	home = strings.TrimSpace(groups[1])
	away = strings.TrimSpace(groups[2])
	if home == "" || away == "" {
		return "", "", false
	}

	return home, away, true
}

var eventDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseEventDate accepts the date formats seen across the feeds. Dates
// without an explicit zone are taken as UTC.
func ParseEventDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	for _, layout := range eventDateLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("unparseable date %q", value)
}
