package models

import "time"

type User struct {
	ID        int       `json:"id,omitempty" db:"id,omitempty"`
	Username  string    `json:"username,omitempty" db:"username,omitempty"`
	Email     string    `json:"email,omitempty" db:"email,omitempty"`
	FirstName string    `json:"first_name,omitempty" db:"first_name,omitempty"`
	LastName  string    `json:"last_name,omitempty" db:"last_name,omitempty"`
	Password  string    `json:"-" db:"password,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty" db:"created_at,omitempty"`
}
