package services

import (
	"context"
	"strings"

	"khata_ledger/internal/models"
	"khata_ledger/pkg/utils"
)

func (l *Ledger) ListCategories(ctx context.Context) ([]models.ExpenseCategory, error) {
	categories, err := l.store.ListCategories(ctx)
	if err != nil {
		return nil, internalError("failed to list categories", utils.ErrorHandler(err, "failed to list categories"))
	}
	if categories == nil {
		categories = []models.ExpenseCategory{}
	}
	return categories, nil
}

// CreateCategory adds a user defined category.
func (l *Ledger) CreateCategory(ctx context.Context, name, icon string) (models.ExpenseCategory, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.ExpenseCategory{}, validationError("name", "name is required")
	}
	if len(name) > 50 {
		return models.ExpenseCategory{}, validationError("name", "name must be at most 50 characters")
	}

	c := models.ExpenseCategory{Name: name, Icon: strings.TrimSpace(icon), CreatedByUser: true}
	if err := l.store.CreateCategory(ctx, &c); err != nil {
		return models.ExpenseCategory{}, internalError("failed to create category", utils.ErrorHandler(err, "failed to create category"))
	}
	return c, nil
}
