package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"shoplist/internal"
	"shoplist/internal/config"
	"shoplist/internal/util"
)

const maxAttempts = 5

// Client talks to the grocery catalog HTTP API.
type Client struct {
	cfg        config.Config
	httpClient *http.Client
	limiter    *RateLimiter
	backoff    func(attempt int) time.Duration
}

// Aisle is one entry of the store layout.
type Aisle struct {
	Name       string   `json:"name"`
	Categories []string `json:"categories,omitempty"`
}

// envelope wraps every catalog response.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Errors  json.RawMessage `json:"errors"`
	Data    json.RawMessage `json:"data"`
}

type productPage struct {
	Products []json.RawMessage `json:"products"`
	ScrollID string            `json:"scrollId"`
}

type aislesPayload struct {
	Aisles []Aisle `json:"aisles"`
}

// catalogProduct is the wire shape of a grocery product.
type catalogProduct struct {
	ID        productID `json:"id"`
	SyncUID   string    `json:"syncUid"`
	Name      string    `json:"name"`
	Aisle     string    `json:"aisle"`
	Category  string    `json:"category"`
	Aliases   []string  `json:"aliases"`
	UpdatedAt string    `json:"updatedAt"`
}

// productID accepts both 12 and "12".
type productID int

func (id *productID) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(strings.Trim(string(b), `"`))
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("product id %s: %w", b, err)
	}
	*id = productID(n)
	return nil
}

func NewClient(cfg config.Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Duration(cfg.CatalogTimeoutMs) * time.Millisecond},
		limiter:    NewRateLimiter(cfg.CatalogRateLimitRPS),
		backoff:    jitterBackoff,
	}
}

// GetProductsScrollAll pages through the whole catalog.
func (c *Client) GetProductsScrollAll(ctx context.Context) ([]internal.ProductRecord, error) {
	return c.scrollProducts(ctx, url.Values{})
}

// GetProductsIncremental fetches products changed within the configured
// lookback. mode is "hour" or "day".
func (c *Client) GetProductsIncremental(ctx context.Context, mode string) ([]internal.ProductRecord, error) {
	query := url.Values{}
	switch mode {
	case "day":
		query.Set("updated_days", strconv.Itoa(c.cfg.CatalogIncrementalDays))
	case "hour":
		query.Set("updated_hours", strconv.Itoa(c.cfg.CatalogIncrementalHours))
	default:
		return nil, fmt.Errorf("unsupported incremental mode: %s", mode)
	}
	return c.scrollProducts(ctx, query)
}

// GetAisles returns the store layout.
func (c *Client) GetAisles(ctx context.Context) ([]Aisle, error) {
	var payload aislesPayload
	if err := c.get(ctx, "aisles", url.Values{}, &payload); err != nil {
		return nil, err
	}
	return payload.Aisles, nil
}

func (c *Client) scrollProducts(ctx context.Context, filter url.Values) ([]internal.ProductRecord, error) {
	all := make([]internal.ProductRecord, 0)
	seen := map[string]struct{}{}
	var scrollID string

	for page := 1; ; page++ {
		query := url.Values{}
		for k, v := range filter {
			query[k] = v
		}
		if scrollID != "" {
			query.Set("scrollId", scrollID)
		}

		var payload productPage
		if err := c.get(ctx, "products/scroll", query, &payload); err != nil {
			return nil, err
		}

		skipped := 0
		for _, raw := range payload.Products {
			product, err := decodeProduct(raw)
			if err != nil {
				skipped++
				continue
			}
			all = append(all, product)
		}
		slog.Debug("catalog scroll page", "page", page, "products", len(payload.Products), "skipped", skipped)

		if payload.ScrollID == "" || len(payload.Products) == 0 {
			break
		}
		if _, ok := seen[payload.ScrollID]; ok {
			break
		}
		seen[payload.ScrollID] = struct{}{}
		scrollID = payload.ScrollID
	}

	return all, nil
}

// get calls endpoint and decodes the envelope data into out.
func (c *Client) get(ctx context.Context, endpoint string, query url.Values, out any) error {
	if strings.TrimSpace(c.cfg.CatalogAPIToken) == "" {
		return errors.New("missing CATALOG_API_TOKEN")
	}

	u, err := url.Parse(strings.TrimRight(c.cfg.CatalogAPIBaseURL, "/") + "/" + endpoint)
	if err != nil {
		return err
	}
	u.RawQuery = query.Encode()

	body, err := c.getWithRetry(ctx, endpoint, u.String())
	if err != nil {
		return err
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("decode catalog response: %w", err)
	}
	if !env.Success {
		return fmt.Errorf("catalog api unsuccessful: %s %s", env.Message, string(env.Errors))
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode %s: %w", endpoint, err)
	}
	return nil
}

// getWithRetry returns the body of the first 2xx response. 429 and 5xx
// responses and transport errors are retried with backoff.
func (c *Client) getWithRetry(ctx context.Context, endpoint, target string) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			if err := sleepCtx(ctx, c.backoff(attempt-1)); err != nil {
				return nil, err
			}
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.cfg.CatalogAPIToken)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			continue
		}
		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return body, nil
		case isRetryableStatus(resp.StatusCode) && attempt < maxAttempts:
			lastErr = fmt.Errorf("catalog status %d", resp.StatusCode)
			slog.Warn("catalog request retry", "endpoint", endpoint, "status", resp.StatusCode, "attempt", attempt)
		default:
			return nil, fmt.Errorf("catalog api error: status=%d body=%s", resp.StatusCode, string(body))
		}
	}

	if lastErr == nil {
		lastErr = errors.New("catalog request failed")
	}
	return nil, lastErr
}

func jitterBackoff(attempt int) time.Duration {
	return time.Duration(250*(1<<(attempt-1))+rand.Intn(100)) * time.Millisecond
}

func isRetryableStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// decodeProduct turns one product object into a record. Products without a
// positive id or a name are rejected.
func decodeProduct(raw json.RawMessage) (internal.ProductRecord, error) {
	var p catalogProduct
	if err := json.Unmarshal(raw, &p); err != nil {
		return internal.ProductRecord{}, err
	}
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return internal.ProductRecord{}, errors.New("empty name")
	}
	if p.ID <= 0 {
		return internal.ProductRecord{}, errors.New("missing id")
	}

	aliases := make([]string, 0, len(p.Aliases))
	for _, alias := range p.Aliases {
		if alias = strings.TrimSpace(alias); alias != "" {
			aliases = append(aliases, alias)
		}
	}

	return internal.ProductRecord{
		ID:        int(p.ID),
		Name:      name,
		SyncUID:   optional(p.SyncUID),
		Aisle:     optional(p.Aisle),
		Category:  optional(p.Category),
		Aliases:   aliases,
		UpdatedAt: optional(p.UpdatedAt),
		RawJSON:   string(raw),
	}, nil
}

func optional(s string) *string {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return util.StringPtr(s)
}
