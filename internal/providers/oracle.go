package providers

import (
	"context"
	"fmt"
	"net/http"
	"regexp"

	"github.com/gpudex/a100-index-backend/internal/httputil"
)

const oraclePricingURL = "https://www.oracle.com/cloud/compute/pricing/"

// OCI quotes BM.GPU4.8 (8x A100 40GB) per GPU per hour.
var oraclePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)BM\.GPU4\.8.*?\$\s*(\d+\.\d+)`),
	regexp.MustCompile(`(?is)GPU4.*?A100.*?\$\s*(\d+\.\d+)`),
	regexp.MustCompile(`(?is)A100.*?\$\s*(\d+\.\d+)`),
}

type OracleCloud struct {
	httpClient *http.Client
	retry      httputil.RetryConfig
}

func NewOracle() *OracleCloud {
	return &OracleCloud{httpClient: newScrapeClient(), retry: defaultScrapeRetry}
}

func (p *OracleCloud) Name() string { return "Oracle" }

func (p *OracleCloud) Fetch(ctx context.Context) (*Quote, error) {
	text, err := fetchText(ctx, p.httpClient, p.retry, oraclePricingURL)
	if err != nil {
		return nil, fmt.Errorf("oracle fetch: %w", err)
	}

	price, ok := firstPrice(text, oraclePatterns, minSanePrice, maxSanePrice)
	if !ok {
		return nil, fmt.Errorf("oracle: no A100 price found")
	}

	return &Quote{
		Provider:     p.Name(),
		PricePerHour: price,
		Currency:     "USD",
		Availability: AvailabilityUnknown,
	}, nil
}
