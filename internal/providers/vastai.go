package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/gpudex/a100-index-backend/internal/httputil"
)

const vastBundlesURL = "https://cloud.vast.ai/api/v0/bundles"

type VastAI struct {
	httpClient *http.Client
	retry      httputil.RetryConfig
	url        string
}

func NewVastAI() *VastAI {
	return &VastAI{httpClient: newScrapeClient(), retry: defaultScrapeRetry, url: vastBundlesURL}
}

func (p *VastAI) Name() string { return "Vast.ai" }

// Fetch reports the median per-GPU price across live A100 offers. The
// marketplace is the most volatile source, so the median rather than the
// minimum keeps single mispriced offers from moving the index.
func (p *VastAI) Fetch(ctx context.Context) (*Quote, error) {
	resp, err := httputil.Do(ctx, p.httpClient, p.retry, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", browserUA)
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("vastai fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("vastai returned status %d", resp.StatusCode)
	}

	var data struct {
		Offers []struct {
			GPUName  string  `json:"gpu_name"`
			DPHTotal float64 `json:"dph_total"`
			NumGPUs  int     `json:"num_gpus"`
			Rentable bool    `json:"rentable"`
		} `json:"offers"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("vastai decode: %w", err)
	}

	var perGPU []float64
	totalGPUs := 0
	for _, o := range data.Offers {
		if !strings.Contains(strings.ToUpper(o.GPUName), "A100") || !o.Rentable {
			continue
		}
		if o.NumGPUs <= 0 || o.DPHTotal <= 0 {
			continue
		}
		price := o.DPHTotal / float64(o.NumGPUs)
		if price <= 0.1 || price >= maxSanePrice {
			continue
		}
		perGPU = append(perGPU, price)
		totalGPUs += o.NumGPUs
	}
	if len(perGPU) == 0 {
		return nil, fmt.Errorf("vastai: no rentable A100 offers")
	}

	sort.Float64s(perGPU)
	median := perGPU[len(perGPU)/2]
	if len(perGPU)%2 == 0 {
		median = (perGPU[len(perGPU)/2-1] + perGPU[len(perGPU)/2]) / 2
	}

	return &Quote{
		Provider:     p.Name(),
		PricePerHour: median,
		Currency:     "USD",
		Availability: vastAvailability(len(perGPU)),
		GPUCount:     totalGPUs,
	}, nil
}

func vastAvailability(offers int) Availability {
	switch {
	case offers >= 50:
		return AvailabilityHigh
	case offers >= 10:
		return AvailabilityMedium
	case offers >= 1:
		return AvailabilityLow
	default:
		return AvailabilityUnavailable
	}
}
