package providers

import (
	"context"
	"fmt"
	"net/http"
	"regexp"

	"github.com/gpudex/a100-index-backend/internal/httputil"
)

const paperspacePricingURL = "https://www.paperspace.com/pricing"

var paperspacePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)A100 SXM.*?\$(\d+\.\d+)/hr`),
	regexp.MustCompile(`(?is)A100 PCIe.*?\$(\d+\.\d+)/hr`),
	regexp.MustCompile(`(?is)A100 80GB.*?\$(\d+\.\d+)/hr`),
	regexp.MustCompile(`(?is)A100 40GB.*?\$(\d+\.\d+)/hr`),
	regexp.MustCompile(`(?is)A100.*?\$(\d+\.\d+)/hr`),
	regexp.MustCompile(`(?is)A100.*?\$(\d+\.\d+)`),
}

type Paperspace struct {
	httpClient *http.Client
	retry      httputil.RetryConfig
}

func NewPaperspace() *Paperspace {
	return &Paperspace{httpClient: newScrapeClient(), retry: defaultScrapeRetry}
}

func (p *Paperspace) Name() string { return "Paperspace" }

func (p *Paperspace) Fetch(ctx context.Context) (*Quote, error) {
	text, err := fetchText(ctx, p.httpClient, p.retry, paperspacePricingURL)
	if err != nil {
		return nil, fmt.Errorf("paperspace fetch: %w", err)
	}

	price, ok := firstPrice(text, paperspacePatterns, minSanePrice, maxSanePrice)
	if !ok {
		return nil, fmt.Errorf("paperspace: no A100 price found")
	}

	return &Quote{
		Provider:     p.Name(),
		PricePerHour: price,
		Currency:     "USD",
		Availability: AvailabilityUnknown,
	}, nil
}
