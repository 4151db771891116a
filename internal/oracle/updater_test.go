package oracle

import (
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

func TestPriceToWei(t *testing.T) {
	tests := []struct {
		price float64
		want  string
	}{
		{1.0, "1000000000000000000"},
		{1.76, "1760000000000000000"},
		{0.0001, "100000000000000"},
		{12.3456, "12345600000000000000"},
	}
	for _, tt := range tests {
		got := PriceToWei(tt.price)
		want, _ := new(big.Int).SetString(tt.want, 10)
		// big.Float conversion can land one wei off the decimal ideal.
		diff := new(big.Int).Abs(new(big.Int).Sub(got, want))
		if diff.Cmp(big.NewInt(1000)) > 0 {
			t.Errorf("PriceToWei(%f) = %s, want ~%s", tt.price, got, want)
		}
	}
}

func TestWeiToPrice(t *testing.T) {
	wei, _ := new(big.Int).SetString("1760000000000000000", 10)
	if got := WeiToPrice(wei); got != 1.76 {
		t.Fatalf("WeiToPrice = %f, want 1.76", got)
	}
	if got := WeiToPrice(big.NewInt(0)); got != 0 {
		t.Fatalf("WeiToPrice(0) = %f", got)
	}
}

func TestPriceRoundTrip(t *testing.T) {
	for _, price := range []float64{0.5, 1.76, 3.1415, 19.99} {
		back := WeiToPrice(PriceToWei(price))
		if diff := back - price; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("round trip %f came back as %f", price, back)
		}
	}
}

func TestParseAssetID(t *testing.T) {
	hexID := "0x2d2dcb773769dec98aac013f27fbeba7c0dfe1d4edf46e4d3bfee86443ac6cde"

	id, err := ParseAssetID(hexID)
	if err != nil {
		t.Fatalf("ParseAssetID: %v", err)
	}
	if id[0] != 0x2d || id[31] != 0xde {
		t.Fatalf("unexpected bytes: %x", id)
	}

	// Without the 0x prefix.
	if _, err := ParseAssetID(hexID[2:]); err != nil {
		t.Fatalf("ParseAssetID without prefix: %v", err)
	}

	if _, err := ParseAssetID("0x1234"); err == nil {
		t.Fatal("expected error for short id")
	}
	if _, err := ParseAssetID("0xzz2dcb773769dec98aac013f27fbeba7c0dfe1d4edf46e4d3bfee86443ac6cde"); err == nil {
		t.Fatal("expected error for invalid hex")
	}
}

func TestOracleABIPacks(t *testing.T) {
	parsed, err := abi.JSON(strings.NewReader(oracleABIJSON))
	if err != nil {
		t.Fatalf("parse ABI: %v", err)
	}

	id, err := ParseAssetID("0x2d2dcb773769dec98aac013f27fbeba7c0dfe1d4edf46e4d3bfee86443ac6cde")
	if err != nil {
		t.Fatalf("ParseAssetID: %v", err)
	}

	data, err := parsed.Pack("updatePrice", id, PriceToWei(1.76))
	if err != nil {
		t.Fatalf("pack updatePrice: %v", err)
	}
	// 4-byte selector plus two 32-byte arguments.
	if len(data) != 4+32+32 {
		t.Fatalf("calldata length %d, want 68", len(data))
	}

	if _, err := parsed.Pack("getPriceData", id); err != nil {
		t.Fatalf("pack getPriceData: %v", err)
	}
}
