package hellotickets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/seatfeed/offer-aggregator/internal/ingest/perffeed"
	"github.com/seatfeed/offer-aggregator/internal/platform/logging"
	"github.com/seatfeed/offer-aggregator/internal/platform/resilience"
	"github.com/seatfeed/offer-aggregator/internal/usecase"
)

const (
	defaultBaseURL    = "https://api-live.hellotickets.com/v1"
	defaultPageLimit  = 100
	defaultCategoryID = 1 // sports
	maxResponseBytes  = 6 << 20
	maxPages          = 50
)

var errTransient = crerr.New("hellotickets transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	PublicKey      string
	Timeout        time.Duration
	MaxRetries     int
	PageLimit      int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
	CircuitEnabled bool
}

// Client talks to the HelloTickets performances API. Requests are
// retried on transient failures, deduplicated per URL, and gated by a
// circuit breaker when enabled.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	publicKey      string
	maxRetries     int
	pageLimit      int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         *resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 30 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	pageLimit := cfg.PageLimit
	if pageLimit <= 0 {
		pageLimit = defaultPageLimit
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		publicKey:      strings.TrimSpace(cfg.PublicKey),
		maxRetries:     maxRetries,
		pageLimit:      pageLimit,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(cfg.CircuitBreaker),
		circuitEnabled: cfg.CircuitEnabled,
		flight:         resilience.NewSingleFlight(),
	}
}

type performancesEnvelope struct {
	Performances []perffeed.Performance `json:"performances"`
	TotalCount   int                    `json:"total_count"`
	PerPage      int                    `json:"per_page"`
}

// ListPerformances fetches every performance page for a performer.
func (c *Client) ListPerformances(ctx context.Context, performerID int64) ([]perffeed.Performance, error) {
	if performerID <= 0 {
		return nil, fmt.Errorf("performer id must be greater than zero")
	}

	all := make([]perffeed.Performance, 0, c.pageLimit)
	totalPages := 1
	for page := 1; page <= totalPages; page++ {
		var envelope performancesEnvelope
		if err := c.doJSON(ctx, "/performances", map[string]string{
			"performer_id": strconv.FormatInt(performerID, 10),
			"category_id":  strconv.Itoa(defaultCategoryID),
			"page":         strconv.Itoa(page),
			"limit":        strconv.Itoa(c.pageLimit),
		}, &envelope); err != nil {
			return nil, fmt.Errorf("fetch performances performer_id=%d page=%d: %w", performerID, page, err)
		}

		if page == 1 {
			perPage := envelope.PerPage
			if perPage <= 0 {
				perPage = c.pageLimit
			}
			totalPages = (envelope.TotalCount + perPage - 1) / perPage
			if totalPages > maxPages {
				c.logger.WarnContext(ctx, "performance pagination capped",
					zap.Int64("performer_id", performerID),
					zap.Int("total_pages", totalPages),
				)
				totalPages = maxPages
			}
		}

		all = append(all, envelope.Performances...)
		if len(envelope.Performances) == 0 {
			break
		}
	}

	return all, nil
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "hellotickets circuit breaker rejected request")
			return fmt.Errorf("%w: ticket provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}

	fullURL := c.baseURL + path
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	out, err := c.flight.Do(fullURL, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && crerr.Is(reqErr, errTransient) {
				c.breaker.Failure()
			} else {
				c.breaker.Success()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode provider payload: %w", err)
	}
	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-Public-Key", c.publicKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %v", errTransient, err)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: provider status=%d", errTransient, resp.StatusCode)
			default:
				return nil, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("provider request failed")
	}
	c.logger.WarnContext(ctx, "hellotickets request failed",
		zap.String("url", fullURL),
		zap.Error(lastErr),
	)
	return nil, lastErr
}

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

func abbreviateBody(raw []byte) string {
	const maxLen = 256
	body := strings.TrimSpace(string(raw))
	if len(body) > maxLen {
		return body[:maxLen] + "..."
	}
	return body
}
