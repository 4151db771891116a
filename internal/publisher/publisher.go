package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gpudex/a100-index-backend/internal/index"
	"github.com/gpudex/a100-index-backend/internal/models"
	"github.com/gpudex/a100-index-backend/internal/repository"
)

// DefaultThresholdPercent is the sanity bound on cycle-to-cycle moves.
// A change beyond it marks the row validation_passed = false; the row is
// still appended so anomalies stay auditable.
const DefaultThresholdPercent = 20.0

type Publisher struct {
	store     repository.IndexStore
	threshold float64
}

func New(store repository.IndexStore, thresholdPercent float64) *Publisher {
	if thresholdPercent <= 0 {
		thresholdPercent = DefaultThresholdPercent
	}
	return &Publisher{store: store, threshold: thresholdPercent}
}

// Publish appends one index computation to the ledger. The previous
// ledger entry supplies the baseline for the change-percent validation;
// the first entry always validates with a 0% change. With force set the
// row is marked valid regardless of the computed change.
func (p *Publisher) Publish(ctx context.Context, res *index.Result, force bool) (*models.IndexRecord, error) {
	if res == nil || res.FinalIndexPrice <= 0 {
		return nil, fmt.Errorf("publish: no index price to record")
	}

	previous, err := p.store.Latest(ctx)
	if err != nil {
		return nil, fmt.Errorf("publish: fetch previous price: %w", err)
	}

	rec := &models.IndexRecord{
		RecordedAt:       res.Timestamp,
		IndexPrice:       decimal.NewFromFloat(res.FinalIndexPrice).Round(4),
		ValidationPassed: true,
	}
	if rec.RecordedAt.IsZero() {
		rec.RecordedAt = time.Now()
	}

	hsComp := decimal.NewFromFloat(res.HyperscalerComponent).Round(4)
	ncComp := decimal.NewFromFloat(res.NeocloudComponent).Round(4)
	hsCount := res.HyperscalerCount
	ncCount := res.NeocloudCount
	rec.HyperscalerComponent = &hsComp
	rec.NeocloudComponent = &ncComp
	rec.HyperscalerCount = &hsCount
	rec.NeocloudCount = &ncCount

	if previous != nil && previous.IndexPrice.IsPositive() {
		prev := previous.IndexPrice
		change := rec.IndexPrice.Sub(prev).Div(prev).Mul(decimal.NewFromInt(100)).Round(2)
		rec.PreviousPrice = &prev
		rec.PriceChangePercent = &change

		valid := change.Abs().LessThanOrEqual(decimal.NewFromFloat(p.threshold))
		if !valid && !force {
			rec.ValidationPassed = false
			fmt.Printf("[PUBLISHER] Validation failed: %s%% change vs previous $%s exceeds +/-%.0f%%, recording for audit\n",
				change, prev, p.threshold)
		} else if !valid && force {
			fmt.Printf("[PUBLISHER] Force publish: %s%% change exceeds threshold but marked valid\n", change)
		}
	}

	if raw, err := json.Marshal(res); err == nil {
		rec.RawData = raw
	}

	stored, err := p.store.Append(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("publish: append: %w", err)
	}

	fmt.Printf("[PUBLISHER] Index recorded: id=%d price=$%s valid=%v\n",
		stored.ID, stored.IndexPrice, stored.ValidationPassed)
	return stored, nil
}
