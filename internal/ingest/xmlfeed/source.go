package xmlfeed

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"github.com/seatfeed/offer-aggregator/internal/domain/offer"
	"github.com/seatfeed/offer-aggregator/internal/ingest"
)

// Source decodes a whole product export and adapts every node.
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
		return nil, ingest.Stats{}, fmt.Errorf("open xml feed %s: %w", s.name, err)
	}
	defer func() {
		_ = reader.Close()
	}()

	var feed Feed
	if err := xml.NewDecoder(reader).Decode(&feed); err != nil {
		return nil, ingest.Stats{}, fmt.Errorf("decode xml feed %s: %w", s.name, err)
	}

	var stats ingest.Stats
	var offers []offer.RawOffer
	for _, product := range feed.Products {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}

		stats.Read++
		item, err := s.adapter.Adapt(product)
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
