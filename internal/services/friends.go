package services

import (
	"context"

	"khata_ledger/internal/models"
	"khata_ledger/pkg/utils"
)

func (l *Ledger) AddFriend(ctx context.Context, caller, friendID int) (models.User, error) {
	if caller == friendID {
		return models.User{}, validationError("friend_id", "you cannot add yourself as a friend")
	}
	if _, err := l.lookupUser(ctx, caller); err != nil {
		return models.User{}, err
	}
	friend, err := l.lookupUser(ctx, friendID)
	if err != nil {
		return models.User{}, err
	}

	pair := models.NewFriendship(caller, friendID)
	exists, err := l.store.AreFriends(ctx, pair)
	if err != nil {
		return models.User{}, internalError("failed to check friendship", utils.ErrorHandler(err, "failed to check friendship"))
	}
	if exists {
		return models.User{}, conflictError("already friends", friendID)
	}

	pair.CreatedAt = l.now()
	if err := l.store.AddFriendship(ctx, pair); err != nil {
		return models.User{}, internalError("failed to add friend", utils.ErrorHandler(err, "failed to add friend"))
	}
	return friend, nil
}

func (l *Ledger) RemoveFriend(ctx context.Context, caller, friendID int) error {
	removed, err := l.store.RemoveFriendship(ctx, models.NewFriendship(caller, friendID))
	if err != nil {
		return internalError("failed to remove friend", utils.ErrorHandler(err, "failed to remove friend"))
	}
	if !removed {
		return notFoundError("friend", friendID)
	}
	return nil
}

func (l *Ledger) ListFriends(ctx context.Context, caller int) ([]models.User, error) {
	friends, err := l.store.ListFriends(ctx, caller)
	if err != nil {
		return nil, internalError("failed to list friends", utils.ErrorHandler(err, "failed to list friends"))
	}
	if friends == nil {
		friends = []models.User{}
	}
	return friends, nil
}
