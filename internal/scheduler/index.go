package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gpudex/a100-index-backend/internal/index"
	"github.com/gpudex/a100-index-backend/internal/models"
	"github.com/gpudex/a100-index-backend/internal/notifications"
	"github.com/gpudex/a100-index-backend/internal/providers"
	"github.com/gpudex/a100-index-backend/internal/publisher"
)

// PriceOracle is the optional on-chain sink for the index price.
// Implemented by oracle.Updater.
type PriceOracle interface {
	UpdatePrice(ctx context.Context, priceUSD float64) (string, error)
}

type IndexSchedulerConfig struct {
	Interval     time.Duration // e.g. 1*time.Hour
	CycleTimeout time.Duration
	ForcePublish bool // bypass the +/-20% validation
}

// IndexScheduler drives the full computation cycle: fetch every provider
// concurrently, blend the quotes into the index, append to the ledger,
// then best-effort push on-chain and notify.
type IndexScheduler struct {
	providers []providers.Provider
	calc      *index.Calculator
	pub       *publisher.Publisher
	oracle    PriceOracle
	notify    *notifications.Sender
	cfg       IndexSchedulerConfig

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
}

func NewIndexScheduler(provs []providers.Provider, calc *index.Calculator, pub *publisher.Publisher,
	oracle PriceOracle, notify *notifications.Sender, cfg IndexSchedulerConfig) *IndexScheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = 1 * time.Hour
	}
	if cfg.CycleTimeout <= 0 {
		cfg.CycleTimeout = 5 * time.Minute
	}
	return &IndexScheduler{
		providers: provs,
		calc:      calc,
		pub:       pub,
		oracle:    oracle,
		notify:    notify,
		cfg:       cfg,
	}
}

func (s *IndexScheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		fmt.Println("[SCHEDULER] Already running")
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	// Initial computation on startup (fire-and-forget)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.CycleTimeout)
		defer cancel()
		if _, err := s.RunCycle(ctx); err != nil {
			fmt.Printf("[SCHEDULER] Initial index cycle failed: %v\n", err)
		}
	}()

	go func() {
		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-s.stopCh:
				return
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), s.cfg.CycleTimeout)
				if _, err := s.RunCycle(ctx); err != nil {
					fmt.Printf("[SCHEDULER] Index cycle failed: %v\n", err)
				}
				cancel()
			}
		}
	}()

	fmt.Printf("[SCHEDULER] Started (every %s, %d providers)\n", s.cfg.Interval, len(s.providers))
}

func (s *IndexScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	close(s.stopCh)
	s.running = false
	fmt.Println("[SCHEDULER] Stopped")
}

func (s *IndexScheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// RunCycle performs one collect-calculate-publish pass and returns the
// recorded ledger entry.
func (s *IndexScheduler) RunCycle(ctx context.Context) (*models.IndexRecord, error) {
	quotes := s.collectQuotes(ctx)
	if len(quotes) == 0 {
		return nil, fmt.Errorf("cycle: every provider fetch failed")
	}

	res, err := s.calc.Calculate(ctx, quotes)
	if err != nil {
		return nil, fmt.Errorf("cycle: %w", err)
	}
	fmt.Printf("[SCHEDULER] Index: $%.2f/hr (hyperscalers: %d, neoclouds: %d)\n",
		res.FinalIndexPrice, res.HyperscalerCount, res.NeocloudCount)

	rec, err := s.pub.Publish(ctx, res, s.cfg.ForcePublish)
	if err != nil {
		return nil, fmt.Errorf("cycle: %w", err)
	}

	// On-chain push is best effort; a failed tx never fails the cycle.
	if s.oracle != nil && rec.ValidationPassed {
		if _, err := s.oracle.UpdatePrice(ctx, res.FinalIndexPrice); err != nil {
			fmt.Printf("[SCHEDULER] Oracle update failed: %v\n", err)
		}
	}

	if s.notify != nil {
		status := "valid"
		if !rec.ValidationPassed {
			status = "VALIDATION FAILED"
		}
		s.notify.Send(fmt.Sprintf("A100 index recorded: $%.2f/hr from %d providers (%s)",
			res.FinalIndexPrice, len(quotes), status))
	}

	return rec, nil
}

// collectQuotes fetches every provider concurrently. Failed providers
// are logged and skipped; there are no fallback prices.
func (s *IndexScheduler) collectQuotes(ctx context.Context) []providers.Quote {
	var (
		mu     sync.Mutex
		quotes []providers.Quote
		wg     sync.WaitGroup
	)

	for _, p := range s.providers {
		wg.Add(1)
		go func(p providers.Provider) {
			defer wg.Done()
			q, err := p.Fetch(ctx)
			if err != nil {
				fmt.Printf("[SCHEDULER] %s fetch failed: %v\n", p.Name(), err)
				return
			}
			mu.Lock()
			quotes = append(quotes, *q)
			mu.Unlock()
			fmt.Printf("[SCHEDULER] %s: %.2f %s/hr (%s)\n",
				q.Provider, q.PricePerHour, q.Currency, q.Availability)
		}(p)
	}
	wg.Wait()
	return quotes
}
