package external

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gpudex/a100-index-backend/internal/httputil"
)

func newTestFX(primary, fallback string) *FXClient {
	return &FXClient{
		primaryURL:  primary,
		fallbackURL: fallback,
		httpClient:  &http.Client{Timeout: 2 * time.Second},
		cacheTTL:    1 * time.Hour,
		retry: httputil.RetryConfig{
			MaxAttempts: 1,
			BaseDelay:   time.Millisecond,
			MaxDelay:    time.Millisecond,
		},
	}
}

func rateServer(t *testing.T, usd float64) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"rates":{"USD":%g}}`, usd)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func failingServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestEURToUSD_Primary(t *testing.T) {
	primary := rateServer(t, 1.12)
	fx := newTestFX(primary.URL, "http://127.0.0.1:0")

	rate := fx.EURToUSD(context.Background())
	if rate != 1.12 {
		t.Fatalf("rate %f, want 1.12", rate)
	}
}

func TestEURToUSD_FallbackSource(t *testing.T) {
	primary := failingServer(t)
	fallback := rateServer(t, 1.09)
	fx := newTestFX(primary.URL, fallback.URL)

	rate := fx.EURToUSD(context.Background())
	if rate != 1.09 {
		t.Fatalf("rate %f, want fallback source 1.09", rate)
	}
}

func TestEURToUSD_StaticFallback(t *testing.T) {
	primary := failingServer(t)
	fallback := failingServer(t)
	fx := newTestFX(primary.URL, fallback.URL)

	rate := fx.EURToUSD(context.Background())
	if rate != fallbackEURUSD {
		t.Fatalf("rate %f, want static fallback %f", rate, fallbackEURUSD)
	}
}

func TestEURToUSD_Cache(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, `{"rates":{"USD":1.10}}`)
	}))
	t.Cleanup(srv.Close)

	fx := newTestFX(srv.URL, srv.URL)
	ctx := context.Background()

	fx.EURToUSD(ctx)
	fx.EURToUSD(ctx)
	fx.EURToUSD(ctx)

	if calls != 1 {
		t.Fatalf("rate source hit %d times, cache should hold it to 1", calls)
	}
}

func TestEURToUSD_RejectsBadPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"rates":{"GBP":0.85}}`)
	}))
	t.Cleanup(srv.Close)

	fx := newTestFX(srv.URL, srv.URL)
	rate := fx.EURToUSD(context.Background())
	if rate != fallbackEURUSD {
		t.Fatalf("rate %f, want static fallback for payload without USD", rate)
	}
}

func TestConvert(t *testing.T) {
	srv := rateServer(t, 1.10)
	fx := newTestFX(srv.URL, srv.URL)
	ctx := context.Background()

	if got := fx.Convert(ctx, 2.0, "USD"); got != 2.0 {
		t.Fatalf("USD passthrough: %f", got)
	}
	if got := fx.Convert(ctx, 2.0, ""); got != 2.0 {
		t.Fatalf("empty currency passthrough: %f", got)
	}
	if got := fx.Convert(ctx, 2.0, "EUR"); got != 2.2 {
		t.Fatalf("EUR conversion: %f, want 2.2", got)
	}
	if got := fx.Convert(ctx, 2.0, "GBP"); got != 2.0 {
		t.Fatalf("unknown currency passthrough: %f", got)
	}
}
