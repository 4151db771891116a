package providers

import (
	"context"
	"fmt"
	"net/http"
	"regexp"

	"github.com/gpudex/a100-index-backend/internal/httputil"
)

const lambdaPricingURL = "https://lambda.ai/pricing"

// Lambda renders prices inline with the GPU name, e.g. "SSD$1.29NVIDIA A100".
var lambdaPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\$(\d+\.\d+)NVIDIA A100`),
	regexp.MustCompile(`(?is)gpu_1x_a100.*?\$(\d+\.\d+)`),
	regexp.MustCompile(`(?is)\$(\d+\.\d+).{0,80}NVIDIA A100`),
	regexp.MustCompile(`(?is)A100.{0,80}?\$(\d+\.\d+)`),
}

type LambdaLabs struct {
	httpClient *http.Client
	retry      httputil.RetryConfig
}

func NewLambdaLabs() *LambdaLabs {
	return &LambdaLabs{httpClient: newScrapeClient(), retry: defaultScrapeRetry}
}

func (p *LambdaLabs) Name() string { return "Lambda Labs" }

func (p *LambdaLabs) Fetch(ctx context.Context) (*Quote, error) {
	text, err := fetchText(ctx, p.httpClient, p.retry, lambdaPricingURL)
	if err != nil {
		return nil, fmt.Errorf("lambda fetch: %w", err)
	}

	price, ok := firstPrice(text, lambdaPatterns, minSanePrice, maxSanePrice)
	if !ok {
		return nil, fmt.Errorf("lambda: no A100 price found")
	}

	return &Quote{
		Provider:     p.Name(),
		PricePerHour: price,
		Currency:     "USD",
		Availability: AvailabilityUnknown,
	}, nil
}
