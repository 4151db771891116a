package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
)

type errRow struct {
	err error
}

func (r errRow) Scan(dest ...any) error { return r.err }

func TestScanRecord_NoRowsIsDetectable(t *testing.T) {
	// Latest treats pgx.ErrNoRows as an empty ledger. The sentinel must
	// survive wrapping, which a string comparison would not catch.
	_, err := scanRecord(errRow{err: pgx.ErrNoRows})
	if !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("expected pgx.ErrNoRows, got %v", err)
	}

	_, err = scanRecord(errRow{err: fmt.Errorf("query: %w", pgx.ErrNoRows)})
	if !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("wrapped sentinel not detected: %v", err)
	}
}

func TestScanRecord_OtherErrorsPassThrough(t *testing.T) {
	boom := errors.New("connection reset")
	_, err := scanRecord(errRow{err: boom})
	if !errors.Is(err, boom) {
		t.Fatalf("expected the scan error back, got %v", err)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		t.Fatal("unrelated error must not read as empty ledger")
	}
}
