package index

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/gpudex/a100-index-backend/internal/providers"
)

// Weight distribution between the two halves of the index.
const (
	hyperscalerTotalWeight = 0.65
	neocloudTotalWeight    = 0.35
)

// Hyperscaler list prices are heavily discounted in practice (committed
// use, reservations, private offers). The effective price blends a
// provider-specific discount with a slice of list price.
const (
	discountedWeight = 0.80
	fullPriceWeight  = 0.20
	defaultDiscount  = 0.30
)

var hyperscalerDiscounts = map[string]float64{
	"AWS":    0.44,
	"Azure":  0.65,
	"GCP":    0.65,
	"Oracle": 0.25,
}

var hyperscalerWeights = map[string]float64{
	"AWS":    0.42,
	"Azure":  0.33,
	"GCP":    0.17,
	"Oracle": 0.08,
}

var hyperscalerAliases = map[string][]string{
	"AWS":    {"aws", "amazon", "p4d"},
	"Azure":  {"azure", "microsoft", "nd96"},
	"GCP":    {"gcp", "google", "google cloud", "a2-highgpu"},
	"Oracle": {"oracle", "oci", "bm.gpu"},
}

const defaultNeocloudWeight = 0.05

var baseNeocloudWeights = map[string]float64{
	"Civo":         0.15,
	"Vast.ai":      0.15,
	"CUDO Compute": 0.12,
	"HyperStack":   0.12,
	"RunPod":       0.15,
	"Paperspace":   0.10,
	"Hostkey":      0.08,
	"Lambda Labs":  0.13,
}

// Availability scales a neocloud's weight so that scarce supply moves
// the index less and plentiful supply moves it more.
var availabilityMultipliers = map[providers.Availability]float64{
	providers.AvailabilityHigh:        1.20,
	providers.AvailabilityMedium:      1.00,
	providers.AvailabilityLow:         0.70,
	providers.AvailabilityUnavailable: 0.30,
	providers.AvailabilityUnknown:     1.00,
}

// CurrencyConverter converts a provider quote into USD. Implemented by
// external.FXClient.
type CurrencyConverter interface {
	Convert(ctx context.Context, price float64, currency string) float64
}

type HyperscalerDetail struct {
	Provider             string  `json:"provider"`
	OriginalPrice        float64 `json:"originalPrice"`
	DiscountRate         float64 `json:"discountRate"`
	EffectivePrice       float64 `json:"effectivePrice"`
	AbsoluteWeight       float64 `json:"absoluteWeight"`
	WeightedContribution float64 `json:"weightedContribution"`
}

type NeocloudDetail struct {
	Provider             string                 `json:"provider"`
	Price                float64                `json:"price"`
	Availability         providers.Availability `json:"availability"`
	BaseWeight           float64                `json:"baseWeight"`
	AbsoluteWeight       float64                `json:"absoluteWeight"`
	WeightedContribution float64                `json:"weightedContribution"`
}

// Result is one full index computation, including the per-provider
// breakdown persisted into raw_data for debugging.
type Result struct {
	Timestamp            time.Time           `json:"timestamp"`
	GPUModel             string              `json:"gpuModel"`
	FinalIndexPrice      float64             `json:"finalIndexPrice"`
	HyperscalerComponent float64             `json:"hyperscalerComponent"`
	NeocloudComponent    float64             `json:"neocloudComponent"`
	HyperscalerCount     int                 `json:"hyperscalerCount"`
	NeocloudCount        int                 `json:"neocloudCount"`
	HyperscalerDetails   []HyperscalerDetail `json:"hyperscalerDetails"`
	NeocloudDetails      []NeocloudDetail    `json:"neocloudDetails"`
}

type Calculator struct {
	fx CurrencyConverter
}

func NewCalculator(fx CurrencyConverter) *Calculator {
	return &Calculator{fx: fx}
}

// Calculate blends the quotes into a weighted USD/hour index. At least
// one quote is required; missing providers shrink their side of the
// blend and the remaining weights are renormalized.
func (c *Calculator) Calculate(ctx context.Context, quotes []providers.Quote) (*Result, error) {
	if len(quotes) == 0 {
		return nil, fmt.Errorf("calculate: no provider quotes")
	}

	hyperscalers, neoclouds := categorize(quotes)

	res := &Result{
		Timestamp:        time.Now(),
		GPUModel:         "A100",
		HyperscalerCount: len(hyperscalers),
		NeocloudCount:    len(neoclouds),
	}

	res.HyperscalerComponent, res.HyperscalerDetails = c.hyperscalerComponent(ctx, hyperscalers)
	res.NeocloudComponent, res.NeocloudDetails = c.neocloudComponent(ctx, neoclouds)

	final := res.HyperscalerComponent + res.NeocloudComponent
	if final <= 0 {
		return nil, fmt.Errorf("calculate: index came out non-positive (%f)", final)
	}

	res.FinalIndexPrice = round(final, 2)
	res.HyperscalerComponent = round(res.HyperscalerComponent, 4)
	res.NeocloudComponent = round(res.NeocloudComponent, 4)
	return res, nil
}

// categorize splits quotes by matching provider names against the
// hyperscaler alias table; everything unmatched is a neocloud.
func categorize(quotes []providers.Quote) (hyperscalers map[string]providers.Quote, neoclouds []providers.Quote) {
	hyperscalers = make(map[string]providers.Quote)
	for _, q := range quotes {
		name := strings.ToLower(strings.TrimSpace(q.Provider))
		matched := ""
		for hs, aliases := range hyperscalerAliases {
			for _, alias := range aliases {
				if strings.Contains(name, alias) {
					matched = hs
					break
				}
			}
			if matched != "" {
				break
			}
		}
		if matched != "" {
			hyperscalers[matched] = q
		} else {
			neoclouds = append(neoclouds, q)
		}
	}
	return hyperscalers, neoclouds
}

func (c *Calculator) hyperscalerComponent(ctx context.Context, quotes map[string]providers.Quote) (float64, []HyperscalerDetail) {
	var (
		sum        float64
		weightUsed float64
		details    []HyperscalerDetail
	)

	// Deterministic order for the detail payload.
	names := make([]string, 0, len(quotes))
	for name := range quotes {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		q := quotes[name]
		listPrice := c.fx.Convert(ctx, q.PricePerHour, q.Currency)

		discount, ok := hyperscalerDiscounts[name]
		if !ok {
			discount = defaultDiscount
		}
		effective := listPrice*(1-discount)*discountedWeight + listPrice*fullPriceWeight

		relWeight, ok := hyperscalerWeights[name]
		if !ok {
			continue
		}
		absWeight := relWeight * hyperscalerTotalWeight
		contribution := effective * absWeight

		sum += contribution
		weightUsed += absWeight
		details = append(details, HyperscalerDetail{
			Provider:             name,
			OriginalPrice:        listPrice,
			DiscountRate:         discount,
			EffectivePrice:       effective,
			AbsoluteWeight:       absWeight,
			WeightedContribution: contribution,
		})
	}

	// Renormalize when some hyperscalers are missing so the component
	// still carries its full 65%.
	if weightUsed > 0 && weightUsed < hyperscalerTotalWeight {
		sum *= hyperscalerTotalWeight / weightUsed
	}
	return sum, details
}

func (c *Calculator) neocloudComponent(ctx context.Context, quotes []providers.Quote) (float64, []NeocloudDetail) {
	if len(quotes) == 0 {
		return 0, nil
	}

	// First pass: dynamic weights from availability.
	type weighted struct {
		quote      providers.Quote
		baseWeight float64
		dynWeight  float64
	}
	items := make([]weighted, 0, len(quotes))
	totalDyn := 0.0
	for _, q := range quotes {
		base, ok := baseNeocloudWeights[q.Provider]
		if !ok {
			base = defaultNeocloudWeight
		}
		mul, ok := availabilityMultipliers[q.Availability]
		if !ok {
			mul = 1.0
		}
		dyn := base * mul
		items = append(items, weighted{quote: q, baseWeight: base, dynWeight: dyn})
		totalDyn += dyn
	}

	var (
		sum     float64
		details []NeocloudDetail
	)
	for _, it := range items {
		normalized := it.dynWeight
		if totalDyn > 0 {
			normalized = it.dynWeight / totalDyn
		}
		absWeight := normalized * neocloudTotalWeight
		price := c.fx.Convert(ctx, it.quote.PricePerHour, it.quote.Currency)
		contribution := price * absWeight

		sum += contribution
		details = append(details, NeocloudDetail{
			Provider:             it.quote.Provider,
			Price:                price,
			Availability:         it.quote.Availability,
			BaseWeight:           it.baseWeight,
			AbsoluteWeight:       absWeight,
			WeightedContribution: contribution,
		})
	}
	return sum, details
}

func round(v float64, places int) float64 {
	scale := math.Pow10(places)
	return math.Round(v*scale) / scale
}
