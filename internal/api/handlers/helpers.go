package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"khata_ledger/internal/services"
	"khata_ledger/pkg/utils"
)

// CallerID returns the id the JWT middleware put on the request, writing a 401
// when it is missing.
func CallerID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, ok := utils.CallerID(r.Context().Value(utils.ContextKey("userId")))
	if !ok {
		utils.WriteError(w, "unauthorized", http.StatusUnauthorized)
		return 0, false
	}
	return id, true
}

// PathID parses a numeric path value, writing a 400 when it is not one.
func PathID(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(r.PathValue(name))
	if err != nil || id <= 0 {
		utils.WriteError(w, "invalid "+name, http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// DecodeBody decodes a JSON body into dst, rejecting unknown fields.
func DecodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		utils.WriteError(w, "invalid or unexpected fields in body", http.StatusBadRequest)
		return false
	}
	return true
}

// StatusFor maps a ledger error kind to the HTTP status it is reported with.
// Unknown kinds map to 500.
func StatusFor(kind services.ErrorKind) int {
	switch kind {
	case services.KindValidation:
		return http.StatusBadRequest
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindAuthorization:
		return http.StatusForbidden
	case services.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// WriteServiceError turns a ledger error into its JSON error response.
// Internal details are logged where they happened and never sent back.
func WriteServiceError(w http.ResponseWriter, err error) {
	var le *services.LedgerError
	if !errors.As(err, &le) {
		utils.Logger.Errorf("unexpected error: %v", err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	status := StatusFor(le.Kind)
	switch le.Kind {
	case services.KindInternal:
		utils.WriteError(w, le.Message, status)
	case services.KindNotFound:
		utils.WriteError(w, le.Field+" not found", status)
	default:
		utils.WriteFieldError(w, le.Field, le.Message, status)
	}
}
