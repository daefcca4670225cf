package summary

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

// FUNC TO GET WHAT THE CALLER IS OWED AND OWES
func (h *Handler) GetSummaryHandler(w http.ResponseWriter, r *http.Request) {
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

	summary, err := h.Ledger.GetBalanceSummary(ctx, userID)
	if err != nil {
		handlers.WriteServiceError(w, err)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status": "success",
		"data":   summary,
	})
}
