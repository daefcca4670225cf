package khata

import (
	"context"
	"net/http"
	"time"

	"khata_ledger/internal/api/handlers"
	"khata_ledger/internal/services"
	"khata_ledger/pkg/utils"
)

type Handler struct {
	Ledger *services.Ledger
}

// FUNC TO RECORD MONEY LENT TO A FRIEND
func (h *Handler) CreateEntryHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.WriteError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := handlers.CallerID(w, r)
	if !ok {
		return
	}

	var req services.CreateLendingInput
	if !handlers.DecodeBody(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	entry, err := h.Ledger.CreateLendingEntry(ctx, userID, req)
	if err != nil {
		handlers.WriteServiceError(w, err)
		return
	}

	utils.WriteJSONStatus(w, http.StatusCreated, map[string]interface{}{
		"status":  "success",
		"message": "khata entry created",
		"data":    entry,
	})
}

func (h *Handler) SettleEntryHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.WriteError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := handlers.CallerID(w, r)
	if !ok {
		return
	}
	entryID, ok := handlers.PathID(w, r, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	entry, err := h.Ledger.SettleKhataEntry(ctx, userID, entryID)
	if err != nil {
		handlers.WriteServiceError(w, err)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status":  "success",
		"message": "khata entry settled",
		"data":    entry,
	})
}

func (h *Handler) ListEntriesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.WriteError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := handlers.CallerID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	entries, err := h.Ledger.ListKhataEntries(ctx, userID)
	if err != nil {
		handlers.WriteServiceError(w, err)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status": "success",
		"count":  len(entries),
		"data":   entries,
	})
}
