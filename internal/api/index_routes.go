package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gpudex/a100-index-backend/internal/models"
	"github.com/gpudex/a100-index-backend/internal/repository"
)

// historyJSON is the compact projection served to charting clients: a
// strict subset of the ledger row, no id, counts, raw_data, or flag.
type historyJSON struct {
	RecordTime    time.Time `json:"record_time"`
	Price         float64   `json:"price"`
	ChangePercent *float64  `json:"change_percent,omitempty"`
	HSComponent   *float64  `json:"hs_component,omitempty"`
	NCComponent   *float64  `json:"nc_component,omitempty"`
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Latest(r.Context())
	if err != nil {
		fmt.Printf("Error fetching latest index price: %v\n", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch latest price")
		return
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, "no index data available")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, repository.DefaultHistoryLimit)
	records, err := s.store.History(r.Context(), limit)
	if err != nil {
		fmt.Printf("Error fetching index history: %v\n", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch history")
		return
	}

	out := make([]historyJSON, len(records))
	for i, rec := range records {
		out[i] = toHistoryJSON(rec)
	}
	writeJSON(w, http.StatusOK, out)
}

// handleLedger serves the unfiltered ledger, including rows that failed
// the +/-20% validation, for audit tooling.
func (s *Server) handleLedger(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, repository.DefaultHistoryLimit)
	records, err := s.store.Ledger(r.Context(), limit)
	if err != nil {
		fmt.Printf("Error fetching ledger: %v\n", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch ledger")
		return
	}
	if records == nil {
		records = []models.IndexRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func toHistoryJSON(rec models.IndexRecord) historyJSON {
	h := historyJSON{
		RecordTime: rec.RecordedAt,
		Price:      rec.IndexPrice.InexactFloat64(),
	}
	if rec.PriceChangePercent != nil {
		v := rec.PriceChangePercent.InexactFloat64()
		h.ChangePercent = &v
	}
	if rec.HyperscalerComponent != nil {
		v := rec.HyperscalerComponent.InexactFloat64()
		h.HSComponent = &v
	}
	if rec.NeocloudComponent != nil {
		v := rec.NeocloudComponent.InexactFloat64()
		h.NCComponent = &v
	}
	return h
}
