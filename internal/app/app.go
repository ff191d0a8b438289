// Package app wires configuration into the running aggregator: catalog
// source, ingestion sources, and the pipeline itself.
package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"go.uber.org/zap"

	"github.com/seatfeed/offer-aggregator/external/hellotickets"
	"github.com/seatfeed/offer-aggregator/internal/config"
	"github.com/seatfeed/offer-aggregator/internal/domain/team"
	"github.com/seatfeed/offer-aggregator/internal/extract"
	"github.com/seatfeed/offer-aggregator/internal/infrastructure/repository/memory"
	"github.com/seatfeed/offer-aggregator/internal/infrastructure/repository/postgres"
	"github.com/seatfeed/offer-aggregator/internal/ingest"
	"github.com/seatfeed/offer-aggregator/internal/ingest/csvfeed"
	"github.com/seatfeed/offer-aggregator/internal/ingest/perffeed"
	"github.com/seatfeed/offer-aggregator/internal/ingest/xmlfeed"
	"github.com/seatfeed/offer-aggregator/internal/platform/logging"
	"github.com/seatfeed/offer-aggregator/internal/platform/resilience"
	"github.com/seatfeed/offer-aggregator/internal/resolve"
	"github.com/seatfeed/offer-aggregator/internal/usecase"
)

// Aggregator bundles everything a single run needs.
type Aggregator struct {
	Pipeline *usecase.PipelineService

	db *sqlx.DB
}

func (a *Aggregator) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

func NewAggregator(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Aggregator, error) {
	if logger == nil {
		logger = logging.Default()
	}

	agg := &Aggregator{}

	catalog, db, err := loadCatalog(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	agg.db = db

	sources, err := buildSources(cfg, logger)
	if err != nil {
		_ = agg.Close()
		return nil, err
	}
	if len(sources) == 0 {
		_ = agg.Close()
		return nil, fmt.Errorf("no feeds configured: set CSV_FEED_PATH, XML_FEED_PATH, or HELLOTICKETS_ENABLED")
	}

	agg.Pipeline = usecase.NewPipelineService(sources, extract.New(), resolve.New(catalog), logger)
	return agg, nil
}

// loadCatalog picks the identity catalog source: postgres when the DB is
// enabled, a JSON file when configured, the built-in seed otherwise.
func loadCatalog(ctx context.Context, cfg config.Config, logger *logging.Logger) (team.Catalog, *sqlx.DB, error) {
	switch {
	case cfg.DBEnabled:
		db, err := otelsqlx.ConnectContext(ctx, "postgres", cfg.DBURL,
			otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		)
		if err != nil {
			return team.Catalog{}, nil, fmt.Errorf("connect catalog database: %w", err)
		}
		catalog, err := team.LoadCatalog(ctx, postgres.NewCatalogRepository(db))
		if err != nil {
			_ = db.Close()
			return team.Catalog{}, nil, fmt.Errorf("load catalog from database: %w", err)
		}
		logger.InfoContext(ctx, "team catalog loaded",
			zap.String("source", "postgres"),
			zap.Int("identities", len(catalog.Identities)),
		)
		return catalog, db, nil

	case cfg.CatalogFilePath != "":
		catalog, err := team.LoadCatalogFile(cfg.CatalogFilePath)
		if err != nil {
			return team.Catalog{}, nil, fmt.Errorf("load catalog file: %w", err)
		}
		logger.InfoContext(ctx, "team catalog loaded",
			zap.String("source", cfg.CatalogFilePath),
			zap.Int("identities", len(catalog.Identities)),
		)
		return catalog, nil, nil

	default:
		catalog, err := team.LoadCatalog(ctx, memory.NewCatalogRepository(memory.SeedIdentities(), memory.SeedMappings()))
		if err != nil {
			return team.Catalog{}, nil, fmt.Errorf("load seed catalog: %w", err)
		}
		logger.InfoContext(ctx, "team catalog loaded",
			zap.String("source", "seed"),
			zap.Int("identities", len(catalog.Identities)),
		)
		return catalog, nil, nil
	}
}

func buildSources(cfg config.Config, logger *logging.Logger) ([]ingest.Source, error) {
	var sources []ingest.Source

	if cfg.CSVFeedPath != "" {
		adapter := csvfeed.NewAdapter("football",
			csvfeed.WithCurrency(cfg.CSVCurrency),
			csvfeed.WithExcludedLeagues(cfg.ExcludedLeagues...),
		)
		sources = append(sources, csvfeed.NewSource(csvfeed.SourceName, adapter, fileOpener(cfg.CSVFeedPath)))
	}

	if cfg.XMLFeedPath != "" {
		adapter := xmlfeed.NewAdapter(cfg.XMLLeagueFilter)
		sources = append(sources, xmlfeed.NewSource(xmlfeed.SourceName, adapter, fileOpener(cfg.XMLFeedPath)))
	}

	if cfg.HelloTicketsEnabled {
		client := hellotickets.NewClient(hellotickets.ClientConfig{
			HTTPClient: &http.Client{Timeout: cfg.HelloTicketsTimeout},
			BaseURL:    cfg.HelloTicketsBaseURL,
			PublicKey:  cfg.HelloTicketsPublicKey,
			Timeout:    cfg.HelloTicketsTimeout,
			MaxRetries: cfg.HelloTicketsMaxRetries,
			PageLimit:  cfg.HelloTicketsPageLimit,
			Logger:     logger,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				FailureThreshold:  cfg.HelloTicketsCircuitFailureCount,
				OpenTimeout:       cfg.HelloTicketsCircuitOpenTimeout,
				HalfOpenSuccesses: cfg.HelloTicketsCircuitHalfOpenReq,
			},
			CircuitEnabled: cfg.HelloTicketsCircuitEnabled,
		})
		sources = append(sources, usecase.NewSyncService(
			client,
			perffeed.NewAdapter(cfg.PerfLeagueName),
			usecase.SyncConfig{
				PerformerIDs: cfg.HelloTicketsPerformerIDs,
				Workers:      cfg.SyncWorkers,
				CacheTTL:     cfg.ScheduleTTL,
			},
			logger,
		))
	}

	return sources, nil
}

func fileOpener(path string) func() (io.ReadCloser, error) {
	return func() (io.ReadCloser, error) {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open feed file: %w", err)
		}
		return file, nil
	}
}
