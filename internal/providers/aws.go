package providers

import (
	"context"
	"fmt"
	"net/http"
	"regexp"

	"github.com/gpudex/a100-index-backend/internal/httputil"
)

const awsPricingURL = "https://aws.amazon.com/ec2/instance-types/p4/"

// p4d.24xlarge carries 8x A100 40GB; AWS quotes the whole instance.
const awsGPUsPerInstance = 8

var awsPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)p4d\.24xlarge.*?\$\s*(\d+\.\d+)`),
	regexp.MustCompile(`(?is)On-Demand.*?p4d.*?\$\s*(\d+\.\d+)`),
	regexp.MustCompile(`(?is)\$\s*(\d+\.\d+)\s*(?:per hour|/hr).*?p4d`),
}

type AWS struct {
	httpClient *http.Client
	retry      httputil.RetryConfig
}

func NewAWS() *AWS {
	return &AWS{httpClient: newScrapeClient(), retry: defaultScrapeRetry}
}

func (p *AWS) Name() string { return "AWS" }

func (p *AWS) Fetch(ctx context.Context) (*Quote, error) {
	text, err := fetchText(ctx, p.httpClient, p.retry, awsPricingURL)
	if err != nil {
		return nil, fmt.Errorf("aws fetch: %w", err)
	}

	// Instance price, so bounds are 8x the per-GPU sanity range.
	instPrice, ok := firstPrice(text, awsPatterns, minSanePrice*awsGPUsPerInstance, maxSanePrice*awsGPUsPerInstance)
	if !ok {
		return nil, fmt.Errorf("aws: no p4d.24xlarge price found")
	}

	return &Quote{
		Provider:     p.Name(),
		PricePerHour: instPrice / awsGPUsPerInstance,
		Currency:     "USD",
		Availability: AvailabilityUnknown,
	}, nil
}
