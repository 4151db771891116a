package providers

import (
	"context"
	"fmt"
	"net/http"
	"regexp"

	"github.com/gpudex/a100-index-backend/internal/httputil"
)

const gcpPricingURL = "https://cloud.google.com/compute/gpus-pricing"

var gcpPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)A100 40GB.*?\$\s*(\d+\.\d+)`),
	regexp.MustCompile(`(?is)nvidia-tesla-a100.*?\$\s*(\d+\.\d+)`),
	regexp.MustCompile(`(?is)a2-highgpu-1g.*?\$\s*(\d+\.\d+)`),
	regexp.MustCompile(`(?is)A100.*?\$\s*(\d+\.\d+)`),
}

type GCP struct {
	httpClient *http.Client
	retry      httputil.RetryConfig
}

func NewGCP() *GCP {
	return &GCP{httpClient: newScrapeClient(), retry: defaultScrapeRetry}
}

func (p *GCP) Name() string { return "GCP" }

func (p *GCP) Fetch(ctx context.Context) (*Quote, error) {
	text, err := fetchText(ctx, p.httpClient, p.retry, gcpPricingURL)
	if err != nil {
		return nil, fmt.Errorf("gcp fetch: %w", err)
	}

	price, ok := firstPrice(text, gcpPatterns, minSanePrice, maxSanePrice)
	if !ok {
		return nil, fmt.Errorf("gcp: no A100 price found")
	}

	return &Quote{
		Provider:     p.Name(),
		PricePerHour: price,
		Currency:     "USD",
		Availability: AvailabilityUnknown,
	}, nil
}
