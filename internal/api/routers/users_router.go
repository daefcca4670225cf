package routers

import (
	"net/http"

	"khata_ledger/internal/api/handlers/auth"
	"khata_ledger/internal/services"
	"khata_ledger/pkg/utils"
)

func usersRouter(ledger *services.Ledger, mail *utils.MailConfig) *http.ServeMux {
	mux := http.NewServeMux()
	h := &auth.Handler{Ledger: ledger, Mail: mail}

	mux.HandleFunc("/users/signup", h.RegisterUsersHandler)
	mux.HandleFunc("/users/login", h.LoginHandler)
	mux.HandleFunc("/users/logout", h.LogoutHandler)
	mux.HandleFunc("/users/me", h.MeHandler)

	return mux
}
