package routers

import (
	"net/http"

	"khata_ledger/internal/api/handlers/khata"
	"khata_ledger/internal/api/handlers/summary"
	"khata_ledger/internal/services"
)

func khataRouter(ledger *services.Ledger) *http.ServeMux {
	mux := http.NewServeMux()
	h := &khata.Handler{Ledger: ledger}

	mux.HandleFunc("/khata/{$}", h.ListEntriesHandler)
	mux.HandleFunc("/khata/create", h.CreateEntryHandler)
	mux.HandleFunc("/khata/{id}/settle", h.SettleEntryHandler)

	return mux
}

func summaryRouter(ledger *services.Ledger) *http.ServeMux {
	mux := http.NewServeMux()
	h := &summary.Handler{Ledger: ledger}

	mux.HandleFunc("/summary/", h.GetSummaryHandler)

	return mux
}
