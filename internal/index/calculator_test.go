package index

import (
	"context"
	"math"
	"testing"

	"github.com/gpudex/a100-index-backend/internal/providers"
)

// stubFX converts EUR at a fixed rate and passes USD through, standing
// in for external.FXClient.
type stubFX struct {
	eurUSD float64
}

func (s stubFX) Convert(_ context.Context, price float64, currency string) float64 {
	if currency == "EUR" {
		return price * s.eurUSD
	}
	return price
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestCalculate_SingleHyperscalerAndNeocloud(t *testing.T) {
	calc := NewCalculator(stubFX{eurUSD: 1.08})

	quotes := []providers.Quote{
		{Provider: "AWS", PricePerHour: 4.00, Currency: "USD"},
		{Provider: "RunPod", PricePerHour: 2.00, Currency: "USD", Availability: providers.AvailabilityMedium},
	}

	res, err := calc.Calculate(context.Background(), quotes)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	// AWS effective price: 4.00 * (1-0.44)*0.80 + 4.00*0.20 = 2.592.
	// As the only hyperscaler it is renormalized to carry the full 65%.
	wantHS := 2.592 * 0.65
	if !almostEqual(res.HyperscalerComponent, round(wantHS, 4)) {
		t.Fatalf("hyperscaler component %f, want %f", res.HyperscalerComponent, round(wantHS, 4))
	}

	// Single neocloud normalizes to the full 35%.
	wantNC := 2.00 * 0.35
	if !almostEqual(res.NeocloudComponent, round(wantNC, 4)) {
		t.Fatalf("neocloud component %f, want %f", res.NeocloudComponent, round(wantNC, 4))
	}

	wantFinal := round(wantHS+wantNC, 2)
	if !almostEqual(res.FinalIndexPrice, wantFinal) {
		t.Fatalf("final price %f, want %f", res.FinalIndexPrice, wantFinal)
	}

	if res.HyperscalerCount != 1 || res.NeocloudCount != 1 {
		t.Fatalf("counts %d/%d, want 1/1", res.HyperscalerCount, res.NeocloudCount)
	}
	if res.GPUModel != "A100" {
		t.Fatalf("gpu model %q", res.GPUModel)
	}
}

func TestCalculate_AllHyperscalers(t *testing.T) {
	calc := NewCalculator(stubFX{eurUSD: 1.08})

	quotes := []providers.Quote{
		{Provider: "AWS", PricePerHour: 4.10, Currency: "USD"},
		{Provider: "Azure", PricePerHour: 3.40, Currency: "USD"},
		{Provider: "GCP", PricePerHour: 3.67, Currency: "USD"},
		{Provider: "Oracle", PricePerHour: 3.05, Currency: "USD"},
	}

	res, err := calc.Calculate(context.Background(), quotes)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	effective := func(list, discount float64) float64 {
		return list*(1-discount)*0.80 + list*0.20
	}
	want := effective(4.10, 0.44)*0.42*0.65 +
		effective(3.40, 0.65)*0.33*0.65 +
		effective(3.67, 0.65)*0.17*0.65 +
		effective(3.05, 0.25)*0.08*0.65

	// All four present: no renormalization.
	if !almostEqual(res.HyperscalerComponent, round(want, 4)) {
		t.Fatalf("hyperscaler component %f, want %f", res.HyperscalerComponent, round(want, 4))
	}
	if res.NeocloudComponent != 0 {
		t.Fatalf("neocloud component should be 0, got %f", res.NeocloudComponent)
	}
	if len(res.HyperscalerDetails) != 4 {
		t.Fatalf("expected 4 details, got %d", len(res.HyperscalerDetails))
	}
}

func TestCalculate_AvailabilityWeighting(t *testing.T) {
	calc := NewCalculator(stubFX{eurUSD: 1.08})

	// Same base weight (0.15) but opposite availability: the high
	// provider should carry 1.2/0.7 times the low provider's weight.
	quotes := []providers.Quote{
		{Provider: "RunPod", PricePerHour: 2.00, Currency: "USD", Availability: providers.AvailabilityHigh},
		{Provider: "Vast.ai", PricePerHour: 1.00, Currency: "USD", Availability: providers.AvailabilityLow},
	}

	res, err := calc.Calculate(context.Background(), quotes)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	totalDyn := 0.15*1.20 + 0.15*0.70
	want := (2.00*(0.15*1.20/totalDyn) + 1.00*(0.15*0.70/totalDyn)) * 0.35
	if !almostEqual(res.NeocloudComponent, round(want, 4)) {
		t.Fatalf("neocloud component %f, want %f", res.NeocloudComponent, round(want, 4))
	}

	var high, low NeocloudDetail
	for _, d := range res.NeocloudDetails {
		switch d.Provider {
		case "RunPod":
			high = d
		case "Vast.ai":
			low = d
		}
	}
	if high.AbsoluteWeight <= low.AbsoluteWeight {
		t.Fatalf("high availability weight %f should exceed low %f", high.AbsoluteWeight, low.AbsoluteWeight)
	}
}

func TestCalculate_UnknownNeocloudGetsDefaultWeight(t *testing.T) {
	calc := NewCalculator(stubFX{eurUSD: 1.08})

	quotes := []providers.Quote{
		{Provider: "SomeNewCloud", PricePerHour: 1.80, Currency: "USD", Availability: providers.AvailabilityUnknown},
	}

	res, err := calc.Calculate(context.Background(), quotes)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if len(res.NeocloudDetails) != 1 {
		t.Fatalf("expected 1 detail, got %d", len(res.NeocloudDetails))
	}
	if res.NeocloudDetails[0].BaseWeight != defaultNeocloudWeight {
		t.Fatalf("base weight %f, want default %f", res.NeocloudDetails[0].BaseWeight, defaultNeocloudWeight)
	}
	// Sole provider still normalizes to the full neocloud share.
	if !almostEqual(res.NeocloudComponent, round(1.80*0.35, 4)) {
		t.Fatalf("neocloud component %f", res.NeocloudComponent)
	}
}

func TestCalculate_EURConversion(t *testing.T) {
	calc := NewCalculator(stubFX{eurUSD: 1.10})

	// Hostkey is the EUR-quoting source.
	quotes := []providers.Quote{
		{Provider: "Hostkey", PricePerHour: 1.50, Currency: "EUR", Availability: providers.AvailabilityMedium},
	}

	res, err := calc.Calculate(context.Background(), quotes)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	want := round(1.50*1.10*0.35, 4)
	if !almostEqual(res.NeocloudComponent, want) {
		t.Fatalf("neocloud component %f, want %f", res.NeocloudComponent, want)
	}
	if !almostEqual(res.NeocloudDetails[0].Price, 1.50*1.10) {
		t.Fatalf("detail price %f should be in USD", res.NeocloudDetails[0].Price)
	}
	if res.NeocloudDetails[0].BaseWeight != baseNeocloudWeights["Hostkey"] {
		t.Fatalf("base weight %f, want the Hostkey table entry", res.NeocloudDetails[0].BaseWeight)
	}
}

func TestCalculate_NoQuotes(t *testing.T) {
	calc := NewCalculator(stubFX{eurUSD: 1.08})
	if _, err := calc.Calculate(context.Background(), nil); err == nil {
		t.Fatal("expected error for empty quote set")
	}
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		provider string
		wantHS   string // "" means neocloud
	}{
		{"AWS", "AWS"},
		{"Amazon EC2 (p4d.24xlarge)", "AWS"},
		{"Azure", "Azure"},
		{"Microsoft Azure ND96asr", "Azure"},
		{"GCP", "GCP"},
		{"Google Cloud a2-highgpu-1g", "GCP"},
		{"Oracle Cloud", "Oracle"},
		{"OCI BM.GPU4.8", "Oracle"},
		{"RunPod", ""},
		{"Vast.ai", ""},
		{"Lambda Labs", ""},
		{"CUDO Compute", ""},
	}

	for _, tt := range tests {
		hs, nc := categorize([]providers.Quote{{Provider: tt.provider, PricePerHour: 1}})
		if tt.wantHS == "" {
			if len(nc) != 1 || len(hs) != 0 {
				t.Errorf("%q: expected neocloud, got hs=%v", tt.provider, hs)
			}
			continue
		}
		if _, ok := hs[tt.wantHS]; !ok {
			t.Errorf("%q: expected hyperscaler %q, got %v", tt.provider, tt.wantHS, hs)
		}
	}
}

func TestRound(t *testing.T) {
	if got := round(1.23456, 2); got != 1.23 {
		t.Fatalf("round(1.23456, 2) = %f", got)
	}
	if got := round(1.23456, 4); got != 1.2346 {
		t.Fatalf("round(1.23456, 4) = %f", got)
	}
	if got := round(3.0, 2); got != 3.0 {
		t.Fatalf("round(3.0, 2) = %f", got)
	}
}
