package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// IndexRecord is one entry in the A100 price index ledger. Rows are
// append-only: once inserted they are never updated or deleted.
type IndexRecord struct {
	ID                   int64            `json:"id"`
	RecordedAt           time.Time        `json:"recordedAt"`
	IndexPrice           decimal.Decimal  `json:"indexPrice"`
	HyperscalerComponent *decimal.Decimal `json:"hyperscalerComponent,omitempty"`
	NeocloudComponent    *decimal.Decimal `json:"neocloudComponent,omitempty"`
	HyperscalerCount     *int             `json:"hyperscalerCount,omitempty"`
	NeocloudCount        *int             `json:"neocloudCount,omitempty"`
	PreviousPrice        *decimal.Decimal `json:"previousPrice,omitempty"`
	PriceChangePercent   *decimal.Decimal `json:"priceChangePercent,omitempty"`
	ValidationPassed     bool             `json:"validationPassed"`
	RawData              json.RawMessage  `json:"rawData,omitempty"`
	CreatedAt            time.Time        `json:"createdAt"`
}
