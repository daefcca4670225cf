package models

import "time"

// Friendship is an unordered pair of users. It is always stored with
// UserLow < UserHigh so that (a, b) and (b, a) name the same row.
type Friendship struct {
	UserLow   int       `json:"user_low" db:"user_low"`
	UserHigh  int       `json:"user_high" db:"user_high"`
	CreatedAt time.Time `json:"created_at,omitempty" db:"created_at,omitempty"`
}

func NewFriendship(a, b int) Friendship {
	if a > b {
		a, b = b, a
	}
	return Friendship{UserLow: a, UserHigh: b}
}

// Other returns the member of the pair that is not userID.
func (f Friendship) Other(userID int) int {
	if f.UserLow == userID {
		return f.UserHigh
	}
	return f.UserLow
}
