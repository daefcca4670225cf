package expenses

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

// FUNC TO CREATE AN EXPENSE PAID BY THE CALLER
func (h *Handler) CreateExpenseHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.WriteError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := handlers.CallerID(w, r)
	if !ok {
		return
	}

	var req services.CreateExpenseInput
	if !handlers.DecodeBody(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	txn, err := h.Ledger.CreateExpense(ctx, userID, req)
	if err != nil {
		handlers.WriteServiceError(w, err)
		return
	}

	utils.WriteJSONStatus(w, http.StatusCreated, map[string]interface{}{
		"status":  "success",
		"message": "expense created",
		"data":    txn,
	})
}

// FUNC TO LIST EVERY EXPENSE THE CALLER PAID FOR OR SHARES
func (h *Handler) ListExpensesHandler(w http.ResponseWriter, r *http.Request) {
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

	txns, err := h.Ledger.ListTransactions(ctx, userID)
	if err != nil {
		handlers.WriteServiceError(w, err)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status": "success",
		"count":  len(txns),
		"data":   txns,
	})
}

func (h *Handler) GetExpenseHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.WriteError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := handlers.CallerID(w, r)
	if !ok {
		return
	}
	id, ok := handlers.PathID(w, r, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	txn, err := h.Ledger.GetTransaction(ctx, userID, id)
	if err != nil {
		handlers.WriteServiceError(w, err)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status": "success",
		"data":   txn,
	})
}

// FUNC FOR A PARTICIPANT TO MARK THEIR SPLIT AS PAID
func (h *Handler) PaySplitHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.WriteError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := handlers.CallerID(w, r)
	if !ok {
		return
	}
	splitID, ok := handlers.PathID(w, r, "split_id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	split, err := h.Ledger.MarkSplitPaid(ctx, userID, splitID)
	if err != nil {
		handlers.WriteServiceError(w, err)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status":  "success",
		"message": "split marked as paid",
		"data":    split,
	})
}

func (h *Handler) ListCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.WriteError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	categories, err := h.Ledger.ListCategories(ctx)
	if err != nil {
		handlers.WriteServiceError(w, err)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status": "success",
		"count":  len(categories),
		"data":   categories,
	})
}

func (h *Handler) CreateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.WriteError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	if _, ok := handlers.CallerID(w, r); !ok {
		return
	}

	type categoryRequest struct {
		Name string `json:"name"`
		Icon string `json:"icon"`
	}

	var req categoryRequest
	if !handlers.DecodeBody(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	category, err := h.Ledger.CreateCategory(ctx, req.Name, req.Icon)
	if err != nil {
		handlers.WriteServiceError(w, err)
		return
	}

	utils.WriteJSONStatus(w, http.StatusCreated, map[string]interface{}{
		"status":  "success",
		"message": "category created",
		"data":    category,
	})
}
