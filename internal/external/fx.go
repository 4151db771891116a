package external

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gpudex/a100-index-backend/internal/httputil"
)

// Default EUR/USD rate used only when every live source fails.
const fallbackEURUSD = 1.08

// FXClient fetches the live EUR to USD exchange rate. European providers
// (Hostkey and friends) quote in EUR; the index is USD-denominated.
type FXClient struct {
	primaryURL  string
	fallbackURL string
	httpClient  *http.Client
	retry       httputil.RetryConfig

	mu        sync.Mutex
	cached    float64
	fetchedAt time.Time
	cacheTTL  time.Duration
}

func NewFXClient() *FXClient {
	return &FXClient{
		primaryURL:  "https://api.exchangerate-api.com/v4/latest/EUR",
		fallbackURL: "https://open.er-api.com/v6/latest/EUR",
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		cacheTTL:    1 * time.Hour,
		retry: httputil.RetryConfig{
			MaxAttempts: 2,
			BaseDelay:   1 * time.Second,
			MaxDelay:    5 * time.Second,
		},
	}
}

// EURToUSD returns the current EUR/USD rate, cached for an hour. If both
// rate sources are unreachable it returns the static fallback rather
// than failing the index run.
func (c *FXClient) EURToUSD(ctx context.Context) float64 {
	c.mu.Lock()
	if c.cached > 0 && time.Since(c.fetchedAt) < c.cacheTTL {
		rate := c.cached
		c.mu.Unlock()
		return rate
	}
	c.mu.Unlock()

	for _, url := range []string{c.primaryURL, c.fallbackURL} {
		rate, err := c.fetchRate(ctx, url)
		if err != nil {
			fmt.Printf("[FX] Rate fetch from %s failed: %v\n", url, err)
			continue
		}
		c.mu.Lock()
		c.cached = rate
		c.fetchedAt = time.Now()
		c.mu.Unlock()
		fmt.Printf("[FX] Live EUR/USD rate: %.4f\n", rate)
		return rate
	}

	fmt.Printf("[FX] No live rate available, using fallback %.2f\n", fallbackEURUSD)
	return fallbackEURUSD
}

// Convert converts a price in the given currency to USD. Unknown
// currencies pass through unchanged.
func (c *FXClient) Convert(ctx context.Context, price float64, currency string) float64 {
	switch currency {
	case "", "USD", "usd":
		return price
	case "EUR", "eur":
		return price * c.EURToUSD(ctx)
	default:
		return price
	}
}

func (c *FXClient) fetchRate(ctx context.Context, url string) (float64, error) {
	resp, err := httputil.Do(ctx, c.httpClient, c.retry, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	})
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("status %d", resp.StatusCode)
	}

	var data struct {
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return 0, fmt.Errorf("decode: %w", err)
	}

	rate, ok := data.Rates["USD"]
	if !ok || rate <= 0 {
		return 0, fmt.Errorf("no USD rate in response")
	}
	return rate, nil
}
