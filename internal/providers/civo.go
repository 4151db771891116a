package providers

import (
	"context"
	"fmt"
	"net/http"
	"regexp"

	"github.com/gpudex/a100-index-backend/internal/httputil"
)

const civoPricingURL = "https://www.civo.com/pricing"

var civoPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)Small 1 x NVIDIA A100.*?\$(\d+\.\d+) per hour`),
	regexp.MustCompile(`(?is)1 x NVIDIA A100.*?\$(\d+\.\d+) per hour`),
	regexp.MustCompile(`(?is)NVIDIA A100.*?\$(\d+\.\d+)`),
}

type Civo struct {
	httpClient *http.Client
	retry      httputil.RetryConfig
}

func NewCivo() *Civo {
	return &Civo{httpClient: newScrapeClient(), retry: defaultScrapeRetry}
}

func (p *Civo) Name() string { return "Civo" }

func (p *Civo) Fetch(ctx context.Context) (*Quote, error) {
	text, err := fetchText(ctx, p.httpClient, p.retry, civoPricingURL)
	if err != nil {
		return nil, fmt.Errorf("civo fetch: %w", err)
	}

	price, ok := firstPrice(text, civoPatterns, minSanePrice, maxSanePrice)
	if !ok {
		return nil, fmt.Errorf("civo: no A100 price found")
	}

	return &Quote{
		Provider:     p.Name(),
		PricePerHour: price,
		Currency:     "USD",
		Availability: AvailabilityUnknown,
	}, nil
}
