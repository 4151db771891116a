package providers

import (
	"context"
	"fmt"
	"net/http"
	"regexp"

	"github.com/gpudex/a100-index-backend/internal/httputil"
)

const hostkeyPricingURL = "https://www.hostkey.com/gpu-dedicated-servers"

// Hostkey lists prices in EUR; the quote carries the currency and the
// calculator converts via the FX client.
var hostkeyEURPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)A100.*?€(\d+\.\d+)/hr`),
	regexp.MustCompile(`(?is)A100.*?€(\d+\.\d+)\s*(?:per|/)?\s*hour`),
	regexp.MustCompile(`(?is)A100 SXM.*?€(\d+\.\d+)`),
	regexp.MustCompile(`(?is)A100 PCIe.*?€(\d+\.\d+)`),
	regexp.MustCompile(`(?is)A100 80GB.*?€(\d+\.\d+)`),
	regexp.MustCompile(`(?is)A100.*?€(\d+\.\d+)`),
}

var hostkeyUSDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)A100.*?\$(\d+\.\d+)/hr`),
	regexp.MustCompile(`(?is)A100.*?\$(\d+\.\d+)`),
}

type Hostkey struct {
	httpClient *http.Client
	retry      httputil.RetryConfig
	url        string
}

func NewHostkey() *Hostkey {
	return &Hostkey{httpClient: newScrapeClient(), retry: defaultScrapeRetry, url: hostkeyPricingURL}
}

func (p *Hostkey) Name() string { return "Hostkey" }

func (p *Hostkey) Fetch(ctx context.Context) (*Quote, error) {
	text, err := fetchText(ctx, p.httpClient, p.retry, p.url)
	if err != nil {
		return nil, fmt.Errorf("hostkey fetch: %w", err)
	}

	if price, ok := firstPrice(text, hostkeyEURPatterns, minSanePrice, maxSanePrice); ok {
		return &Quote{
			Provider:     p.Name(),
			PricePerHour: price,
			Currency:     "EUR",
			Availability: AvailabilityUnknown,
		}, nil
	}

	// Some plans are listed in USD.
	if price, ok := firstPrice(text, hostkeyUSDPatterns, minSanePrice, maxSanePrice); ok {
		return &Quote{
			Provider:     p.Name(),
			PricePerHour: price,
			Currency:     "USD",
			Availability: AvailabilityUnknown,
		}, nil
	}

	return nil, fmt.Errorf("hostkey: no A100 price found")
}
