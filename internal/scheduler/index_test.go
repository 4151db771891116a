package scheduler

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/gpudex/a100-index-backend/internal/index"
	"github.com/gpudex/a100-index-backend/internal/providers"
	"github.com/gpudex/a100-index-backend/internal/publisher"
	"github.com/gpudex/a100-index-backend/internal/repository"
)

type fakeProvider struct {
	name  string
	quote providers.Quote
	err   error
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Fetch(ctx context.Context) (*providers.Quote, error) {
	if f.err != nil {
		return nil, f.err
	}
	q := f.quote
	return &q, nil
}

type fakeOracle struct {
	calls  int
	prices []float64
	err    error
}

func (f *fakeOracle) UpdatePrice(ctx context.Context, priceUSD float64) (string, error) {
	f.calls++
	f.prices = append(f.prices, priceUSD)
	if f.err != nil {
		return "", f.err
	}
	return "0xabc", nil
}

type passthroughFX struct{}

func (passthroughFX) Convert(_ context.Context, price float64, _ string) float64 { return price }

func newTestScheduler(provs []providers.Provider, store repository.IndexStore, oracle PriceOracle, force bool) *IndexScheduler {
	calc := index.NewCalculator(passthroughFX{})
	pub := publisher.New(store, 20)
	return NewIndexScheduler(provs, calc, pub, oracle, nil, IndexSchedulerConfig{
		Interval:     time.Hour,
		ForcePublish: force,
	})
}

func TestRunCycle_RecordsIndex(t *testing.T) {
	store := repository.NewMemoryIndexStore()
	oracle := &fakeOracle{}
	provs := []providers.Provider{
		&fakeProvider{name: "AWS", quote: providers.Quote{Provider: "AWS", PricePerHour: 4.00, Currency: "USD"}},
		&fakeProvider{name: "RunPod", quote: providers.Quote{Provider: "RunPod", PricePerHour: 2.00, Currency: "USD", Availability: providers.AvailabilityMedium}},
	}

	s := newTestScheduler(provs, store, oracle, false)
	rec, err := s.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle: %v", err)
	}

	if !rec.ValidationPassed {
		t.Fatal("first cycle should validate")
	}
	if rec.IndexPrice.IsZero() {
		t.Fatal("index price not recorded")
	}

	latest, err := store.Latest(context.Background())
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if latest == nil || latest.ID != rec.ID {
		t.Fatal("cycle result not persisted as latest")
	}

	if oracle.calls != 1 {
		t.Fatalf("oracle called %d times, want 1", oracle.calls)
	}
}

func TestRunCycle_SkipsFailedProviders(t *testing.T) {
	store := repository.NewMemoryIndexStore()
	provs := []providers.Provider{
		&fakeProvider{name: "AWS", err: fmt.Errorf("blocked")},
		&fakeProvider{name: "RunPod", quote: providers.Quote{Provider: "RunPod", PricePerHour: 2.00, Currency: "USD"}},
	}

	s := newTestScheduler(provs, store, nil, false)
	rec, err := s.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle should survive a single provider failure: %v", err)
	}
	if rec.NeocloudCount == nil || *rec.NeocloudCount != 1 {
		t.Fatal("only the healthy provider should be counted")
	}
}

func TestRunCycle_AllProvidersFail(t *testing.T) {
	store := repository.NewMemoryIndexStore()
	provs := []providers.Provider{
		&fakeProvider{name: "AWS", err: fmt.Errorf("blocked")},
		&fakeProvider{name: "GCP", err: fmt.Errorf("timeout")},
	}

	s := newTestScheduler(provs, store, nil, false)
	if _, err := s.RunCycle(context.Background()); err == nil {
		t.Fatal("expected error when every fetch fails")
	}

	if ledger, _ := store.Ledger(context.Background(), 10); len(ledger) != 0 {
		t.Fatal("failed cycle must not append to the ledger")
	}
}

func TestRunCycle_OracleSkippedOnValidationFailure(t *testing.T) {
	store := repository.NewMemoryIndexStore()
	oracle := &fakeOracle{}
	quote := func(price float64) []providers.Provider {
		return []providers.Provider{
			&fakeProvider{name: "RunPod", quote: providers.Quote{Provider: "RunPod", PricePerHour: price, Currency: "USD"}},
		}
	}

	s := newTestScheduler(quote(2.00), store, oracle, false)
	if _, err := s.RunCycle(context.Background()); err != nil {
		t.Fatalf("RunCycle: %v", err)
	}

	// Second cycle triples the price, failing the +/-20% validation.
	s2 := newTestScheduler(quote(6.00), store, oracle, false)
	rec, err := s2.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle: %v", err)
	}
	if rec.ValidationPassed {
		t.Fatal("tripled price should fail validation")
	}
	if oracle.calls != 1 {
		t.Fatalf("oracle called %d times, invalid price must not go on-chain", oracle.calls)
	}
}

func TestRunCycle_OracleFailureDoesNotFailCycle(t *testing.T) {
	store := repository.NewMemoryIndexStore()
	oracle := &fakeOracle{err: fmt.Errorf("rpc down")}
	provs := []providers.Provider{
		&fakeProvider{name: "RunPod", quote: providers.Quote{Provider: "RunPod", PricePerHour: 2.00, Currency: "USD"}},
	}

	s := newTestScheduler(provs, store, oracle, false)
	rec, err := s.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("a failed oracle push must not fail the cycle: %v", err)
	}
	if rec == nil || !rec.ValidationPassed {
		t.Fatal("ledger row should still be recorded and valid")
	}
}

func TestStartStop(t *testing.T) {
	store := repository.NewMemoryIndexStore()
	provs := []providers.Provider{
		&fakeProvider{name: "RunPod", quote: providers.Quote{Provider: "RunPod", PricePerHour: 2.00, Currency: "USD"}},
	}

	s := newTestScheduler(provs, store, nil, false)
	if s.Running() {
		t.Fatal("should not run before Start")
	}

	s.Start()
	if !s.Running() {
		t.Fatal("should report running after Start")
	}

	// Second Start is a no-op.
	s.Start()

	s.Stop()
	if s.Running() {
		t.Fatal("should stop after Stop")
	}

	// Second Stop is a no-op.
	s.Stop()
}
