package data

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"grid-backtest/internal/metrics"
	"grid-backtest/internal/model"
)

// PolygonClient fetches trade ticks from the Polygon.io trades API.
type PolygonClient struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
	Log     zerolog.Logger
}

// NewPolygonClient creates a client. If baseURL is empty, defaults to
// "https://api.polygon.io".
func NewPolygonClient(apiKey, baseURL string, log zerolog.Logger) *PolygonClient {
	if baseURL == "" {
		baseURL = "https://api.polygon.io"
	}
	return &PolygonClient{
		APIKey:  apiKey,
		BaseURL: baseURL,
		Client: &http.Client{
			Timeout: 60 * time.Second,
		},
		Log: log,
	}
}

// TradesParams defines one trades query.
type TradesParams struct {
	Symbol  string
	StartNS int64
	EndNS   int64

	// ExcludeTRF drops prints reported through a trade reporting facility.
	ExcludeTRF bool
	// MaxCorrection, when set, drops trades with a correction above it.
	MaxCorrection *int
}

// PolygonError represents an error from the Polygon API.
type PolygonError struct {
	StatusCode int
	Code       string
	Message    string
	RetryAfter string
}

func (e *PolygonError) Error() string {
	return e.Message
}

type polygonTrade struct {
	ParticipantTimestamp *int64      `json:"participant_timestamp"`
	SIPTimestamp         *int64      `json:"sip_timestamp"`
	TRFTimestamp         *int64      `json:"trf_timestamp"`
	Correction           *int        `json:"correction"`
	Price                json.Number `json:"price"`
}

type tradesPage struct {
	Results []polygonTrade `json:"results"`
	NextURL string         `json:"next_url"`
}

const (
	tradesPageLimit = 50000
	maxBackoff      = 8 * time.Second
)

// StreamTrades pages through /v3/trades/{symbol} ascending by
// participant_timestamp and invokes fn for each canonical tick. Rate limits
// (HTTP 429) are retried with exponential backoff capped at 8s. Rows with
// neither a participant nor a SIP timestamp are skipped.
func (c *PolygonClient) StreamTrades(ctx context.Context, params TradesParams, fn func(model.Tick) error) error {
	if err := c.validateAPIKey(); err != nil {
		return err
	}
	if params.Symbol == "" {
		return fmt.Errorf("symbol is required")
	}
	if params.StartNS >= params.EndNS {
		return fmt.Errorf("start must be before end")
	}

	u, err := url.Parse(fmt.Sprintf("%s/v3/trades/%s", c.BaseURL, url.PathEscape(params.Symbol)))
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	q := u.Query()
	q.Set("timestamp.gte", fmt.Sprintf("%d", params.StartNS))
	q.Set("timestamp.lt", fmt.Sprintf("%d", params.EndNS))
	q.Set("order", "asc")
	q.Set("sort", "participant_timestamp")
	q.Set("limit", fmt.Sprintf("%d", tradesPageLimit))
	q.Set("apiKey", c.APIKey)
	u.RawQuery = q.Encode()

	next := u.String()
	backoff := time.Second
	pages := 0

	for next != "" {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, next, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		started := time.Now()
		resp, err := c.Client.Do(req)
		if err != nil {
			return fmt.Errorf("failed to execute request: %w", err)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := resp.Header.Get("Retry-After")
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			metrics.FetchRetries.Inc()
			c.Log.Warn().
				Str("symbol", params.Symbol).
				Str("retry_after", retryAfter).
				Dur("backoff", backoff).
				Msg("polygon rate limited, backing off")
			if err := sleepCtx(ctx, backoff); err != nil {
				return err
			}
			if backoff *= 2; backoff > maxBackoff {
				backoff = maxBackoff
			}
			continue
		}

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return c.statusError(resp.StatusCode, string(body))
		}

		var page tradesPage
		err = json.NewDecoder(resp.Body).Decode(&page)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("failed to decode trades page: %w", err)
		}
		pages++
		metrics.FetchPages.Inc()
		c.Log.Debug().
			Str("symbol", params.Symbol).
			Int("trades", len(page.Results)).
			Dur("duration", time.Since(started)).
			Msg("polygon trades page")

		for _, tr := range page.Results {
			ns := tr.ParticipantTimestamp
			if ns == nil {
				ns = tr.SIPTimestamp
			}
			if ns == nil {
				continue
			}
			if params.ExcludeTRF && tr.TRFTimestamp != nil {
				continue
			}
			if params.MaxCorrection != nil && tr.Correction != nil && *tr.Correction > *params.MaxCorrection {
				continue
			}
			price, err := decimal.NewFromString(tr.Price.String())
			if err != nil {
				continue
			}
			metrics.TicksIngested.WithLabelValues("polygon").Inc()
			if err := fn(model.Tick{TimestampNS: *ns, Price: price}); err != nil {
				return err
			}
		}

		if page.NextURL == "" {
			break
		}
		// next_url carries the cursor and filters; only the key is re-added.
		nu, err := url.Parse(page.NextURL)
		if err != nil {
			return fmt.Errorf("invalid next_url: %w", err)
		}
		nq := nu.Query()
		nq.Set("apiKey", c.APIKey)
		nu.RawQuery = nq.Encode()
		next = nu.String()
		backoff = time.Second
	}

	c.Log.Info().
		Str("symbol", params.Symbol).
		Int("pages", pages).
		Msg("polygon trades fetch complete")
	return nil
}

// FetchTrades collects the full stream into a slice, consulting the
// development-only cache first.
func (c *PolygonClient) FetchTrades(ctx context.Context, params TradesParams) ([]model.Tick, error) {
	cache := GetCache()
	key := CacheKey(params)
	if cache != nil {
		if ticks, ok := cache.Get(key); ok {
			c.Log.Info().
				Str("symbol", params.Symbol).
				Int("ticks", len(ticks)).
				Msg("trades cache hit")
			return ticks, nil
		}
	}

	var ticks []model.Tick
	err := c.StreamTrades(ctx, params, func(t model.Tick) error {
		ticks = append(ticks, t)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if cache != nil {
		cache.Set(key, ticks)
	}
	return ticks, nil
}

func (c *PolygonClient) statusError(status int, body string) error {
	switch status {
	case http.StatusUnauthorized:
		return &PolygonError{StatusCode: status, Code: "UNAUTHORIZED", Message: "Unauthorized: invalid API key"}
	case http.StatusForbidden:
		return &PolygonError{StatusCode: status, Code: "INVALID_API_KEY", Message: "Invalid API key or insufficient permissions"}
	default:
		return &PolygonError{
			StatusCode: status,
			Code:       "API_ERROR",
			Message:    fmt.Sprintf("API returned status %d: %s", status, body),
		}
	}
}

func (c *PolygonClient) validateAPIKey() error {
	if c.APIKey == "" {
		return &PolygonError{Code: "MISSING_API_KEY", Message: "API key is required"}
	}
	if len(c.APIKey) < 10 {
		return &PolygonError{Code: "INVALID_API_KEY_FORMAT", Message: "API key appears to be invalid (too short)"}
	}
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
