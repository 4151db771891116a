package providers

import (
	"context"
	"fmt"
	"net/http"
	"regexp"

	"github.com/gpudex/a100-index-backend/internal/httputil"
)

const hyperstackPricingURL = "https://www.hyperstack.cloud/gpu-pricing"

var hyperstackPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)A100[^$]{0,120}\$\s*(\d+\.\d+)`),
	regexp.MustCompile(`(?is)\$\s*(\d+\.\d+)[^$]{0,120}A100`),
}

type HyperStack struct {
	httpClient *http.Client
	retry      httputil.RetryConfig
}

func NewHyperStack() *HyperStack {
	return &HyperStack{httpClient: newScrapeClient(), retry: defaultScrapeRetry}
}

func (p *HyperStack) Name() string { return "HyperStack" }

func (p *HyperStack) Fetch(ctx context.Context) (*Quote, error) {
	text, err := fetchText(ctx, p.httpClient, p.retry, hyperstackPricingURL)
	if err != nil {
		return nil, fmt.Errorf("hyperstack fetch: %w", err)
	}

	price, ok := firstPrice(text, hyperstackPatterns, minSanePrice, maxSanePrice)
	if !ok {
		return nil, fmt.Errorf("hyperstack: no A100 price found")
	}

	return &Quote{
		Provider:     p.Name(),
		PricePerHour: price,
		Currency:     "USD",
		Availability: AvailabilityUnknown,
	}, nil
}
