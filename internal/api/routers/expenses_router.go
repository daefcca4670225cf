package routers

import (
	"net/http"

	"khata_ledger/internal/api/handlers/expenses"
	"khata_ledger/internal/services"
)

func expensesRouter(ledger *services.Ledger) *http.ServeMux {
	mux := http.NewServeMux()
	h := &expenses.Handler{Ledger: ledger}

	mux.HandleFunc("/expenses/{$}", h.ListExpensesHandler)
	mux.HandleFunc("/expenses/create", h.CreateExpenseHandler)
	mux.HandleFunc("/expenses/{id}", h.GetExpenseHandler)
	mux.HandleFunc("/expenses/splits/{split_id}/pay", h.PaySplitHandler)

	return mux
}

func categoriesRouter(ledger *services.Ledger) *http.ServeMux {
	mux := http.NewServeMux()
	h := &expenses.Handler{Ledger: ledger}

	mux.HandleFunc("/categories/", h.ListCategoriesHandler)
	mux.HandleFunc("/categories/create", h.CreateCategoryHandler)

	return mux
}
