package providers

import (
	"context"
	"fmt"
	"net/http"
	"regexp"

	"github.com/gpudex/a100-index-backend/internal/httputil"
)

const cudoPricingURL = "https://www.cudocompute.com/pricing"

var cudoPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)A100 PCIe.*?\$(\d+\.\d+)`),
	regexp.MustCompile(`(?is)A100 SXM.*?\$(\d+\.\d+)`),
	regexp.MustCompile(`(?is)A100.*?\$(\d+\.\d+)\s*/?\s*(?:hr|hour)`),
	regexp.MustCompile(`(?is)A100.*?\$(\d+\.\d+)`),
}

type CUDO struct {
	httpClient *http.Client
	retry      httputil.RetryConfig
}

func NewCUDO() *CUDO {
	return &CUDO{httpClient: newScrapeClient(), retry: defaultScrapeRetry}
}

func (p *CUDO) Name() string { return "CUDO Compute" }

func (p *CUDO) Fetch(ctx context.Context) (*Quote, error) {
	text, err := fetchText(ctx, p.httpClient, p.retry, cudoPricingURL)
	if err != nil {
		return nil, fmt.Errorf("cudo fetch: %w", err)
	}

	price, ok := firstPrice(text, cudoPatterns, minSanePrice, maxSanePrice)
	if !ok {
		return nil, fmt.Errorf("cudo: no A100 price found")
	}

	return &Quote{
		Provider:     p.Name(),
		PricePerHour: price,
		Currency:     "USD",
		Availability: AvailabilityUnknown,
	}, nil
}
