package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// ErrRateUnavailable is returned when the upstream price API cannot supply
// a usable ETH→NGN rate. Callers must fail their operation rather than
// fall back to a guessed rate.
var ErrRateUnavailable = errors.New("exchange rate unavailable")

const cacheKey = "rates:eth_ngn"

// Config holds price API configuration
type Config struct {
	BaseURL  string
	APIKey   string
	CacheTTL time.Duration
	Timeout  time.Duration
}

// Client fetches the ETH→NGN exchange rate from an external price API,
// with a short-lived Redis cache in front of it.
type Client struct {
	httpClient *http.Client
	redis      *redis.Client
	config     Config
}

// NewClient creates a new rate client. The redis client may be nil, in
// which case every call goes to the upstream API.
func NewClient(cfg Config, rdb *redis.Client) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = time.Minute
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		redis:      rdb,
		config:     cfg,
	}
}

type priceResponse struct {
	NGN decimal.Decimal `json:"NGN"`
}

// EthToNaira returns the current ETH→NGN rate.
func (c *Client) EthToNaira(ctx context.Context) (decimal.Decimal, error) {
	if cached, ok := c.fromCache(ctx); ok {
		return cached, nil
	}

	rate, err := c.fetch(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("ETH rate fetch failed")
		return decimal.Zero, ErrRateUnavailable
	}

	c.toCache(ctx, rate)
	return rate, nil
}

func (c *Client) fetch(ctx context.Context) (decimal.Decimal, error) {
	if strings.TrimSpace(c.config.BaseURL) == "" {
		return decimal.Zero, fmt.Errorf("rate config error: base_url is empty")
	}

	base := strings.TrimRight(c.config.BaseURL, "/")
	url := base + "/data/price?fsym=ETH&tsyms=NGN"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("rate api call failed: %w", err)
	}
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Apikey "+c.config.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("rate api call failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return decimal.Zero, fmt.Errorf("rate api call failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decimal.Zero, fmt.Errorf("rate api returned non-2xx status: %d, body: %s", resp.StatusCode, string(body))
	}

	var out priceResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse rate response: %w", err)
	}
	if out.NGN.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, fmt.Errorf("rate api returned non-positive rate %s", out.NGN)
	}

	return out.NGN, nil
}

func (c *Client) fromCache(ctx context.Context) (decimal.Decimal, bool) {
	if c.redis == nil {
		return decimal.Zero, false
	}
	val, err := c.redis.Get(ctx, cacheKey).Result()
	if err != nil {
		return decimal.Zero, false
	}
	rate, err := decimal.NewFromString(val)
	if err != nil || rate.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, false
	}
	return rate, true
}

func (c *Client) toCache(ctx context.Context, rate decimal.Decimal) {
	if c.redis == nil {
		return
	}
	if err := c.redis.Set(ctx, cacheKey, rate.String(), c.config.CacheTTL).Err(); err != nil {
		log.Warn().Err(err).Msg("failed to cache ETH rate")
	}
}
