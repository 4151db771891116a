package providers

import (
	"context"
)

// Availability buckets reported by providers, used by the index calculator
// for dynamic weighting. Providers that expose no inventory signal report
// AvailabilityUnknown.
type Availability string

const (
	AvailabilityHigh        Availability = "high"
	AvailabilityMedium      Availability = "medium"
	AvailabilityLow         Availability = "low"
	AvailabilityUnavailable Availability = "unavailable"
	AvailabilityUnknown     Availability = "unknown"
)

// Quote is a single provider's live A100 on-demand price. Prices are per
// GPU per hour in the quoted currency.
type Quote struct {
	Provider     string       `json:"provider"`
	PricePerHour float64      `json:"pricePerHour"`
	Currency     string       `json:"currency"`
	Availability Availability `json:"availability"`
	GPUCount     int          `json:"gpuCount,omitempty"`
}

type Provider interface {
	Name() string
	// Fetch returns the current quote or an error. There are no fallback
	// values: a provider that cannot be read is skipped for the cycle.
	Fetch(ctx context.Context) (*Quote, error)
}

// All returns every supported provider: the four hyperscalers plus the
// neocloud set.
func All() []Provider {
	return []Provider{
		NewAWS(),
		NewAzure(),
		NewGCP(),
		NewOracle(),
		NewLambdaLabs(),
		NewRunPod(),
		NewVastAI(),
		NewCivo(),
		NewCUDO(),
		NewHyperStack(),
		NewPaperspace(),
		NewHostkey(),
		NewGenesisCloud(),
		NewAtlanticNet(),
	}
}
