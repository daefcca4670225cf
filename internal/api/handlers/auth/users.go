package auth

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
	// Mail is nil when SMTP is not configured; signups then skip the
	// welcome email.
	Mail *utils.MailConfig
}

// FUNC TO REGISTER USERS
func (h *Handler) RegisterUsersHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.WriteError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	var req services.RegisterInput
	if !handlers.DecodeBody(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	user, err := h.Ledger.Register(ctx, req)
	if err != nil {
		handlers.WriteServiceError(w, err)
		return
	}

	if h.Mail != nil {
		go func(cfg utils.MailConfig, email, username string) {
			if err := utils.SendWelcomeEmail(cfg, email, username); err != nil {
				utils.Logger.Errorf("failed to send welcome email to %s: %v", email, err)
			}
		}(*h.Mail, user.Email, user.Username)
	}

	utils.WriteJSONStatus(w, http.StatusCreated, map[string]interface{}{
		"status":  "success",
		"message": "account created",
		"data":    user,
	})
}

// FUNC FOR LOGIN
func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.WriteError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	type loginRequest struct {
		AccountID string `json:"account_id"`
		Password  string `json:"password"`
	}

	var req loginRequest
	if !handlers.DecodeBody(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	user, err := h.Ledger.Authenticate(ctx, req.AccountID, req.Password)
	if err != nil {
		handlers.WriteServiceError(w, err)
		return
	}

	tokenString, err := utils.SignToken(user.ID, user.Username)
	if err != nil {
		utils.Logger.Errorf("could not create login token: %v", err)
		utils.WriteError(w, "error signing in", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "Bearer",
		Value:    tokenString,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		Expires:  time.Now().Add(24 * time.Hour),
		SameSite: http.SameSiteStrictMode,
	})

	utils.WriteJSON(w, map[string]interface{}{
		"status":  "success",
		"message": "login successful",
		"token":   tokenString,
		"user":    user,
	})
}

// FUNC FOR LOGOUT
func (h *Handler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.WriteError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "Bearer",
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		Expires:  time.Unix(0, 0),
		SameSite: http.SameSiteStrictMode,
	})

	utils.WriteJSON(w, map[string]interface{}{
		"status":  "success",
		"message": "logged out successfully",
	})
}

// MeHandler serves /users/me: GET returns the caller, DELETE removes them.
func (h *Handler) MeHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.GetMeHandler(w, r)
	case http.MethodDelete:
		h.DeleteMeHandler(w, r)
	default:
		utils.WriteError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
}

// FUNC TO GET THE CALLER'S PROFILE
func (h *Handler) GetMeHandler(w http.ResponseWriter, r *http.Request) {
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

	user, err := h.Ledger.CurrentUser(ctx, userID)
	if err != nil {
		handlers.WriteServiceError(w, err)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status": "success",
		"data":   user,
	})
}

// FUNC TO DELETE THE CALLER'S ACCOUNT
func (h *Handler) DeleteMeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		utils.WriteError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := handlers.CallerID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Ledger.DeleteUser(ctx, userID, userID); err != nil {
		handlers.WriteServiceError(w, err)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status":  "success",
		"message": "account deleted",
	})
}
