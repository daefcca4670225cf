package models

type ExpenseCategory struct {
	ID            int    `json:"id" db:"id"`
	Name          string `json:"name" db:"name"`
	Icon          string `json:"icon" db:"icon"`
	CreatedByUser bool   `json:"created_by_user" db:"created_by_user"`
}
