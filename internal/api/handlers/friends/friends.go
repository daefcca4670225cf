package friends

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

func (h *Handler) ListFriendsHandler(w http.ResponseWriter, r *http.Request) {
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

	friends, err := h.Ledger.ListFriends(ctx, userID)
	if err != nil {
		handlers.WriteServiceError(w, err)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status": "success",
		"count":  len(friends),
		"data":   friends,
	})
}

func (h *Handler) AddFriendHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.WriteError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := handlers.CallerID(w, r)
	if !ok {
		return
	}
	friendID, ok := handlers.PathID(w, r, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	friend, err := h.Ledger.AddFriend(ctx, userID, friendID)
	if err != nil {
		handlers.WriteServiceError(w, err)
		return
	}

	utils.WriteJSONStatus(w, http.StatusCreated, map[string]interface{}{
		"status":  "success",
		"message": "friend added",
		"data":    friend,
	})
}

func (h *Handler) RemoveFriendHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		utils.WriteError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := handlers.CallerID(w, r)
	if !ok {
		return
	}
	friendID, ok := handlers.PathID(w, r, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Ledger.RemoveFriend(ctx, userID, friendID); err != nil {
		handlers.WriteServiceError(w, err)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status":  "success",
		"message": "friend removed",
	})
}
