package providers

import (
	"context"
	"fmt"
	"net/http"
	"regexp"

	"github.com/gpudex/a100-index-backend/internal/httputil"
)

const genesisPricingURL = "https://www.genesiscloud.com/pricing"

var genesisPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)A100 SXM.*?\$(\d+\.\d+)/hr`),
	regexp.MustCompile(`(?is)A100 PCIe.*?\$(\d+\.\d+)/hr`),
	regexp.MustCompile(`(?is)A100 \(HGX\).*?\$(\d+\.\d+)/hr`),
	regexp.MustCompile(`(?is)A100.*?\$(\d+\.\d+)/hr`),
	regexp.MustCompile(`(?is)\$(\d+\.\d+)/hr.*?A100`),
	regexp.MustCompile(`(?is)A100[^$]{0,100}\$(\d+\.\d+)`),
}

type GenesisCloud struct {
	httpClient *http.Client
	retry      httputil.RetryConfig
}

func NewGenesisCloud() *GenesisCloud {
	return &GenesisCloud{httpClient: newScrapeClient(), retry: defaultScrapeRetry}
}

func (p *GenesisCloud) Name() string { return "Genesis Cloud" }

func (p *GenesisCloud) Fetch(ctx context.Context) (*Quote, error) {
	text, err := fetchText(ctx, p.httpClient, p.retry, genesisPricingURL)
	if err != nil {
		return nil, fmt.Errorf("genesis fetch: %w", err)
	}

	price, ok := firstPrice(text, genesisPatterns, minSanePrice, maxSanePrice)
	if !ok {
		return nil, fmt.Errorf("genesis: no A100 price found")
	}

	return &Quote{
		Provider:     p.Name(),
		PricePerHour: price,
		Currency:     "USD",
		Availability: AvailabilityUnknown,
	}, nil
}
