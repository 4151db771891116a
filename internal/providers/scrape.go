package providers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/gpudex/a100-index-backend/internal/httputil"
)

// Pricing pages accept around 1-3 MB; cap reads well above that.
const maxBodyBytes = 8 << 20

const browserUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Sanity bounds for a per-GPU hourly A100 price. Matches outside the
// range are treated as noise from unrelated numbers on the page.
const (
	minSanePrice = 0.5
	maxSanePrice = 20
)

func newScrapeClient() *http.Client {
	return &http.Client{Timeout: 20 * time.Second}
}

var defaultScrapeRetry = httputil.RetryConfig{
	MaxAttempts: 3,
	BaseDelay:   2 * time.Second,
	MaxDelay:    10 * time.Second,
}

// fetchText downloads a pricing page with browser-like headers and
// returns the raw body as a string.
func fetchText(ctx context.Context, client *http.Client, retry httputil.RetryConfig, url string) (string, error) {
	resp, err := httputil.Do(ctx, client, retry, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", browserUA)
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
		return req, nil
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(body), nil
}

// firstPrice runs the patterns in order and returns the first capture
// that parses inside [lo, hi]. Each pattern must have one capturing
// group around the numeric price.
func firstPrice(text string, patterns []*regexp.Regexp, lo, hi float64) (float64, bool) {
	for _, re := range patterns {
		m := re.FindStringSubmatch(text)
		if len(m) < 2 {
			continue
		}
		price, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		if price > lo && price < hi {
			return price, true
		}
	}
	return 0, false
}
