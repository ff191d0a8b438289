package csvfeed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/seatfeed/offer-aggregator/internal/domain/offer"
	"github.com/seatfeed/offer-aggregator/internal/ingest"
)

// Source reads a whole CSV export and adapts every row.
type Source struct {
	name    string
	adapter *Adapter
	open    func() (io.ReadCloser, error)
}

func NewSource(name string, adapter *Adapter, open func() (io.ReadCloser, error)) *Source {
	if name == "" {
		name = SourceName
	}
	return &Source{name: name, adapter: adapter, open: open}
}

func (s *Source) Name() string {
	return s.name
}

func (s *Source) Offers(ctx context.Context) ([]offer.RawOffer, ingest.Stats, error) {
	reader, err := s.open()
	if err != nil {
		return nil, ingest.Stats{}, fmt.Errorf("open csv feed %s: %w", s.name, err)
	}
	defer func() {
		_ = reader.Close()
	}()

	parser := csv.NewReader(reader)
	parser.FieldsPerRecord = -1
	parser.LazyQuotes = true

	header, err := parser.Read()
	if err != nil {
		return nil, ingest.Stats{}, fmt.Errorf("read csv header %s: %w", s.name, err)
	}

	var stats ingest.Stats
	var offers []offer.RawOffer
	for {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}

		record, err := parser.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// Malformed line, not a malformed listing. Count it as a
			// rejection and keep reading.
			stats.Read++
			stats.Rejected = append(stats.Rejected, ingest.RejectedRecord{
				Source: s.name,
				Reason: fmt.Sprintf("unreadable csv line: %v", err),
			})
			continue
		}

		stats.Read++
		row := make(Row, len(header))
		for idx, key := range header {
			if idx < len(record) {
				row[key] = record[idx]
			}
		}

		item, err := s.adapter.Adapt(row)
		switch {
		case err == nil:
			stats.Accepted++
			offers = append(offers, item)
		case errors.Is(err, ingest.ErrOutOfCategory):
			stats.Dropped++
		case ingest.IsInvalidRecord(err):
			stats.Rejected = append(stats.Rejected, ingest.RejectedRecord{Source: s.name, Reason: err.Error()})
		default:
			return nil, stats, err
		}
	}

	return offers, stats, nil
}
