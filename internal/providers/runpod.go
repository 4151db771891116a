package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gpudex/a100-index-backend/internal/httputil"
)

const runpodGraphQLURL = "https://api.runpod.io/graphql"

const runpodQuery = `query GpuTypes {
	gpuTypes {
		id
		displayName
		memoryInGb
		securePrice
		communityPrice
	}
}`

type RunPod struct {
	httpClient *http.Client
	retry      httputil.RetryConfig
	url        string
}

func NewRunPod() *RunPod {
	return &RunPod{httpClient: newScrapeClient(), retry: defaultScrapeRetry, url: runpodGraphQLURL}
}

func (p *RunPod) Name() string { return "RunPod" }

func (p *RunPod) Fetch(ctx context.Context) (*Quote, error) {
	body, err := json.Marshal(map[string]string{"query": runpodQuery})
	if err != nil {
		return nil, err
	}

	resp, err := httputil.Do(ctx, p.httpClient, p.retry, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("runpod fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("runpod returned status %d", resp.StatusCode)
	}

	var data struct {
		Data struct {
			GpuTypes []struct {
				DisplayName    string  `json:"displayName"`
				MemoryInGb     int     `json:"memoryInGb"`
				SecurePrice    float64 `json:"securePrice"`
				CommunityPrice float64 `json:"communityPrice"`
			} `json:"gpuTypes"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("runpod decode: %w", err)
	}

	// Take the cheapest A100 offering across secure and community cloud.
	best := 0.0
	variants := 0
	for _, g := range data.Data.GpuTypes {
		if !strings.Contains(strings.ToUpper(g.DisplayName), "A100") {
			continue
		}
		variants++
		for _, price := range []float64{g.CommunityPrice, g.SecurePrice} {
			if price <= minSanePrice || price >= maxSanePrice {
				continue
			}
			if best == 0 || price < best {
				best = price
			}
		}
	}
	if best == 0 {
		return nil, fmt.Errorf("runpod: no A100 price found")
	}

	avail := AvailabilityMedium
	if variants >= 3 {
		avail = AvailabilityHigh
	}

	return &Quote{
		Provider:     p.Name(),
		PricePerHour: best,
		Currency:     "USD",
		Availability: avail,
	}, nil
}
