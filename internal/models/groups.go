package models

import "time"

type Group struct {
	ID          int       `json:"id,omitempty" db:"id,omitempty"`
	Name        string    `json:"name,omitempty" db:"name,omitempty"`
	Description string    `json:"description,omitempty" db:"description,omitempty"`
	CreatedBy   int       `json:"created_by,omitempty" db:"created_by,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty" db:"created_at,omitempty"`
}
