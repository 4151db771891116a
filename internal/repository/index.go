package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/gpudex/a100-index-backend/internal/models"
)

type IndexRepo struct {
	pool *pgxpool.Pool
}

func NewIndexRepo(pool *pgxpool.Pool) *IndexRepo {
	return &IndexRepo{pool: pool}
}

var _ IndexStore = (*IndexRepo)(nil)

const recordColumns = `id, recorded_at, index_price, hyperscaler_component, neocloud_component,
	 hyperscaler_count, neocloud_count, previous_price, price_change_percent,
	 validation_passed, raw_data, created_at`

func (r *IndexRepo) Append(ctx context.Context, rec *models.IndexRecord) (*models.IndexRecord, error) {
	if err := validateRecord(rec); err != nil {
		return nil, err
	}
	row := r.pool.QueryRow(ctx,
		`INSERT INTO a100_index_prices
		 (recorded_at, index_price, hyperscaler_component, neocloud_component,
		  hyperscaler_count, neocloud_count, previous_price, price_change_percent,
		  validation_passed, raw_data)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		 RETURNING `+recordColumns,
		rec.RecordedAt, rec.IndexPrice, rec.HyperscalerComponent, rec.NeocloudComponent,
		rec.HyperscalerCount, rec.NeocloudCount, rec.PreviousPrice, rec.PriceChangePercent,
		rec.ValidationPassed, rec.RawData,
	)
	return scanRecord(row)
}

func (r *IndexRepo) Latest(ctx context.Context) (*models.IndexRecord, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+recordColumns+` FROM a100_index_prices ORDER BY created_at DESC LIMIT 1`,
	)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return rec, nil
}

func (r *IndexRepo) History(ctx context.Context, limit int) ([]models.IndexRecord, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+recordColumns+` FROM a100_index_prices
		 WHERE validation_passed = TRUE
		 ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRecords(rows)
}

func (r *IndexRepo) Ledger(ctx context.Context, limit int) ([]models.IndexRecord, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+recordColumns+` FROM a100_index_prices ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRecords(rows)
}

func validateRecord(rec *models.IndexRecord) error {
	if rec.RecordedAt.IsZero() {
		return fmt.Errorf("append: recorded_at is required")
	}
	if !rec.IndexPrice.IsPositive() {
		return fmt.Errorf("append: index_price must be positive, got %s", rec.IndexPrice)
	}
	return nil
}

// --- scan helpers ---

type scannable interface {
	Scan(dest ...any) error
}

func scanRecord(row scannable) (*models.IndexRecord, error) {
	var (
		rec    models.IndexRecord
		hsComp decimal.NullDecimal
		ncComp decimal.NullDecimal
		prev   decimal.NullDecimal
		change decimal.NullDecimal
	)
	err := row.Scan(
		&rec.ID, &rec.RecordedAt, &rec.IndexPrice, &hsComp, &ncComp,
		&rec.HyperscalerCount, &rec.NeocloudCount, &prev, &change,
		&rec.ValidationPassed, &rec.RawData, &rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.HyperscalerComponent = fromNull(hsComp)
	rec.NeocloudComponent = fromNull(ncComp)
	rec.PreviousPrice = fromNull(prev)
	rec.PriceChangePercent = fromNull(change)
	return &rec, nil
}

type rowsIter interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func collectRecords(rows rowsIter) ([]models.IndexRecord, error) {
	var out []models.IndexRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func fromNull(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}
