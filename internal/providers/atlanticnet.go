package providers

import (
	"context"
	"fmt"
	"net/http"
	"regexp"

	"github.com/gpudex/a100-index-backend/internal/httputil"
)

const atlanticPricingURL = "https://www.atlantic.net/gpu-server-hosting/"

var atlanticPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)A100.*?\$(\d+\.\d+)\s*/\s*hr`),
	regexp.MustCompile(`(?is)A100.*?\$(\d+\.\d+)\s*(?:per|/)?\s*hour`),
	regexp.MustCompile(`(?is)NVIDIA A100.*?\$(\d+\.\d+)`),
	regexp.MustCompile(`(?is)A100[^$]{0,120}\$(\d+\.\d+)`),
}

type AtlanticNet struct {
	httpClient *http.Client
	retry      httputil.RetryConfig
}

func NewAtlanticNet() *AtlanticNet {
	return &AtlanticNet{httpClient: newScrapeClient(), retry: defaultScrapeRetry}
}

func (p *AtlanticNet) Name() string { return "Atlantic.Net" }

func (p *AtlanticNet) Fetch(ctx context.Context) (*Quote, error) {
	text, err := fetchText(ctx, p.httpClient, p.retry, atlanticPricingURL)
	if err != nil {
		return nil, fmt.Errorf("atlanticnet fetch: %w", err)
	}

	price, ok := firstPrice(text, atlanticPatterns, minSanePrice, maxSanePrice)
	if !ok {
		return nil, fmt.Errorf("atlanticnet: no A100 price found")
	}

	return &Quote{
		Provider:     p.Name(),
		PricePerHour: price,
		Currency:     "USD",
		Availability: AvailabilityUnknown,
	}, nil
}
