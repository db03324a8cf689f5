package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/safar/coffee-shop/internal/database"
	"github.com/safar/coffee-shop/internal/models"
)

func (c *Catalog) CreateCategory(ctx context.Context, name string, active bool) (*models.Category, error) {
	category := &models.Category{}

	err := c.db.QueryRowContext(ctx,
		`INSERT INTO categories (name, is_active) VALUES ($1, $2) RETURNING id, name, is_active`,
		name, active).Scan(&category.ID, &category.Name, &category.IsActive)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}

	return category, nil
}

// ListCategories returns the active categories used by the storefront filter.
func (c *Catalog) ListCategories(ctx context.Context) ([]models.Category, error) {
	return c.queryCategories(ctx,
		`SELECT id, name, is_active FROM categories WHERE is_active = TRUE ORDER BY id`)
}

// ListAllCategories includes inactive categories for the back office.
func (c *Catalog) ListAllCategories(ctx context.Context) ([]models.Category, error) {
	return c.queryCategories(ctx, `SELECT id, name, is_active FROM categories ORDER BY id`)
}

// ToggleCategory flips is_active in a single statement and returns the new state.
func (c *Catalog) ToggleCategory(ctx context.Context, id int64) (*models.Category, error) {
	category := &models.Category{}

	err := c.db.QueryRowContext(ctx,
		`UPDATE categories SET is_active = NOT is_active WHERE id = $1 RETURNING id, name, is_active`,
		id).Scan(&category.ID, &category.Name, &category.IsActive)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("toggle category: %w", err)
	}

	return category, nil
}

func (c *Catalog) queryCategories(ctx context.Context, query string, args ...any) ([]models.Category, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var category models.Category
		if err := rows.Scan(&category.ID, &category.Name, &category.IsActive); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return categories, nil
}
