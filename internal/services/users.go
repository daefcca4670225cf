package services

import (
	"context"
	"database/sql"
	"errors"
	"net/mail"
	"strings"

	"khata_ledger/internal/models"
	"khata_ledger/pkg/utils"

	"github.com/sirupsen/logrus"
)

type RegisterInput struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
}

func (l *Ledger) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	in.Username = strings.ToLower(strings.TrimSpace(in.Username))
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if in.Username == "" {
		return models.User{}, validationError("username", "username is required")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return models.User{}, validationError("email", "a valid email is required")
	}
	if len(in.Password) < 8 {
		return models.User{}, validationError("password", "password must be at least 8 characters")
	}

	hashed, err := utils.HashPassword(in.Password)
	if err != nil {
		return models.User{}, internalError("error hashing password", err)
	}

	u := models.User{
		Username:  in.Username,
		Email:     in.Email,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Password:  hashed,
		CreatedAt: l.now(),
	}
	if err := l.store.CreateUser(ctx, &u); err != nil {
		if errors.Is(err, models.ErrDuplicate) {
			return models.User{}, conflictError("email or username already exists", in.Username)
		}
		return models.User{}, internalError("error signing up", utils.ErrorHandler(err, "failed to insert user"))
	}
	u.Password = ""
	return u, nil
}

// Authenticate checks a username or email against the stored password hash.
func (l *Ledger) Authenticate(ctx context.Context, accountID, password string) (models.User, error) {
	accountID = strings.ToLower(strings.TrimSpace(accountID))
	if accountID == "" || password == "" {
		return models.User{}, validationError("account_id", "email or username and password are required")
	}

	u, err := l.store.GetUserByLogin(ctx, accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, authorizationError("incorrect password or account ID", nil)
		}
		return models.User{}, internalError("failed to load user", utils.ErrorHandler(err, "failed to load user"))
	}

	ok, err := utils.VerifyPassword(password, u.Password)
	if err != nil {
		utils.Logger.WithError(err).Error("invalid encoded hash format")
	}
	if !ok {
		return models.User{}, authorizationError("incorrect password or account ID", nil)
	}
	u.Password = ""
	return u, nil
}

// CurrentUser returns the caller's own profile without the password hash.
func (l *Ledger) CurrentUser(ctx context.Context, caller int) (models.User, error) {
	u, err := l.lookupUser(ctx, caller)
	if err != nil {
		return models.User{}, err
	}
	u.Password = ""
	return u, nil
}

// DeleteUser removes the caller's account. It is refused while the user still
// has unpaid splits or unsettled khata entries on either side.
func (l *Ledger) DeleteUser(ctx context.Context, caller, userID int) error {
	if caller != userID {
		return authorizationError("you can only delete your own account", userID)
	}
	if _, err := l.lookupUser(ctx, userID); err != nil {
		return err
	}

	outstanding, err := l.store.HasOutstandingObligations(ctx, userID)
	if err != nil {
		return internalError("failed to check obligations", utils.ErrorHandler(err, "failed to check obligations"))
	}
	if outstanding {
		return conflictError("cannot delete a user with outstanding obligations", userID)
	}

	if err := l.store.DeleteUser(ctx, userID); err != nil {
		return internalError("failed to delete user", utils.ErrorHandler(err, "failed to delete user"))
	}
	utils.Logger.WithFields(logrus.Fields{"user_id": userID}).Info("user deleted")
	return nil
}

func (l *Ledger) ListDebtors(ctx context.Context) ([]models.User, error) {
	users, err := l.store.ListDebtors(ctx)
	if err != nil {
		return nil, internalError("failed to list debtors", utils.ErrorHandler(err, "failed to list debtors"))
	}
	return users, nil
}
