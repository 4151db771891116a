package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gpudex/a100-index-backend/internal/httputil"
)

const azureRetailURL = "https://prices.azure.com/api/retail/prices"

// ND96asr_v4 carries 8x A100 40GB.
const azureGPUsPerInstance = 8

type Azure struct {
	httpClient *http.Client
	retry      httputil.RetryConfig
}

func NewAzure() *Azure {
	return &Azure{httpClient: newScrapeClient(), retry: defaultScrapeRetry}
}

func (p *Azure) Name() string { return "Azure" }

func (p *Azure) Fetch(ctx context.Context) (*Quote, error) {
	filter := `serviceName eq 'Virtual Machines' and armSkuName eq 'Standard_ND96asr_v4' and priceType eq 'Consumption' and armRegionName eq 'eastus'`
	reqURL := azureRetailURL + "?$filter=" + url.QueryEscape(filter)

	resp, err := httputil.Do(ctx, p.httpClient, p.retry, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	})
	if err != nil {
		return nil, fmt.Errorf("azure fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("azure returned status %d", resp.StatusCode)
	}

	var data struct {
		Items []struct {
			RetailPrice float64 `json:"retailPrice"`
			MeterName   string  `json:"meterName"`
			ProductName string  `json:"productName"`
		} `json:"Items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("azure decode: %w", err)
	}

	// The filter still returns Spot and Low Priority meters; take the
	// cheapest plain on-demand meter.
	best := 0.0
	for _, it := range data.Items {
		if strings.Contains(it.MeterName, "Spot") || strings.Contains(it.MeterName, "Low Priority") {
			continue
		}
		if it.RetailPrice <= 0 {
			continue
		}
		if best == 0 || it.RetailPrice < best {
			best = it.RetailPrice
		}
	}
	if best == 0 {
		return nil, fmt.Errorf("azure: no on-demand ND96asr_v4 price found")
	}

	return &Quote{
		Provider:     p.Name(),
		PricePerHour: best / azureGPUsPerInstance,
		Currency:     "USD",
		Availability: AvailabilityUnknown,
	}, nil
}
