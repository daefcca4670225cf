package routers

import (
	"net/http"

	"khata_ledger/internal/services"
	"khata_ledger/pkg/utils"
)

// MainRouter mounts every resource router. mail may be nil.
func MainRouter(ledger *services.Ledger, mail *utils.MailConfig) *http.ServeMux {

	mux := http.NewServeMux()

	uRouter := usersRouter(ledger, mail)
	mux.Handle("/users/", uRouter)

	fRouter := friendsRouter(ledger)
	mux.Handle("/friends/", fRouter)

	cRouter := categoriesRouter(ledger)
	mux.Handle("/categories/", cRouter)

	eRouter := expensesRouter(ledger)
	mux.Handle("/expenses/", eRouter)

	kRouter := khataRouter(ledger)
	mux.Handle("/khata/", kRouter)

	sRouter := summaryRouter(ledger)
	mux.Handle("/summary/", sRouter)

	return mux
}
