package routers

import (
	"net/http"

	"khata_ledger/internal/api/handlers/friends"
	"khata_ledger/internal/services"
)

func friendsRouter(ledger *services.Ledger) *http.ServeMux {
	mux := http.NewServeMux()
	h := &friends.Handler{Ledger: ledger}

	mux.HandleFunc("/friends/", h.ListFriendsHandler)
	mux.HandleFunc("/friends/{id}/add", h.AddFriendHandler)
	mux.HandleFunc("/friends/{id}/remove", h.RemoveFriendHandler)

	return mux
}
