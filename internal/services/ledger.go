package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"khata_ledger/internal/models"
	"khata_ledger/pkg/utils"
)

type Ledger struct {
	store Store
	now   func() time.Time
}

func NewLedger(store Store) *Ledger {
	return &Ledger{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source. Times are always stored in UTC.
func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	l.now = func() time.Time { return now().UTC() }
	return l
}

func (l *Ledger) lookupUser(ctx context.Context, id int) (models.User, error) {
	u, err := l.store.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, notFoundError("user", id)
		}
		return models.User{}, internalError("failed to load user", utils.ErrorHandler(err, "failed to load user"))
	}
	return u, nil
}
