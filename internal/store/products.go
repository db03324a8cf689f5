package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/safar/coffee-shop/internal/database"
	"github.com/safar/coffee-shop/internal/models"
)

const productColumns = `id, name, brand, category, country, price, image_url, description, created_at, updated_at`

type ProductFilter struct {
	Category string
	Search   string
}

// where renders the filter as a WHERE clause with positional arguments.
func (f ProductFilter) where() (string, []any) {
	var conditions []string
	var args []any

	if f.Category != "" {
		args = append(args, f.Category)
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)))
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		args = append(args, "%"+strings.ToLower(search)+"%")
		conditions = append(conditions, fmt.Sprintf("(LOWER(name) LIKE $%d OR LOWER(brand) LIKE $%d)", len(args), len(args)))
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// Catalog is the read side of the product catalog. Checkout uses it to
// resolve the current name and price of every cart entry.
type Catalog struct {
	db *sql.DB
}

func NewCatalog(db *sql.DB) *Catalog {
	return &Catalog{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner, product *models.Product) error {
	return row.Scan(
		&product.ID,
		&product.Name,
		&product.Brand,
		&product.Category,
		&product.Country,
		&product.Price,
		&product.ImageURL,
		&product.Description,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
}

func (c *Catalog) CreateProduct(ctx context.Context, p models.Product) (*models.Product, error) {
	product := &models.Product{}

	query := `
		INSERT INTO products (name, brand, category, country, price, image_url, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING ` + productColumns

	row := c.db.QueryRowContext(ctx, query, p.Name, p.Brand, p.Category, p.Country, p.Price, p.ImageURL, p.Description)
	if err := scanProduct(row, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	return product, nil
}

func (c *Catalog) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	product := &models.Product{}

	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	if err := scanProduct(c.db.QueryRowContext(ctx, query, id), product); err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	return product, nil
}

// UpdateProduct replaces the editable fields of a product. Orders already
// placed keep their own name and price snapshot.
func (c *Catalog) UpdateProduct(ctx context.Context, id int64, p models.Product) (*models.Product, error) {
	product := &models.Product{}

	query := `
		UPDATE products
		SET name = $1, brand = $2, category = $3, country = $4, price = $5,
		    image_url = $6, description = $7, updated_at = NOW()
		WHERE id = $8
		RETURNING ` + productColumns

	row := c.db.QueryRowContext(ctx, query, p.Name, p.Brand, p.Category, p.Country, p.Price, p.ImageURL, p.Description, id)
	if err := scanProduct(row, product); err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrProductNotFound
		}
		return nil, fmt.Errorf("update product: %w", err)
	}

	return product, nil
}

func (c *Catalog) DeleteProduct(ctx context.Context, id int64) error {
	result, err := c.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return database.ErrProductNotFound
	}

	return nil
}

func (c *Catalog) ListAllProducts(ctx context.Context) ([]models.Product, error) {
	return c.queryProducts(ctx, `SELECT `+productColumns+` FROM products ORDER BY id DESC`)
}

func (c *Catalog) CountProducts(ctx context.Context, filter ProductFilter) (int64, error) {
	where, args := filter.where()

	var total int64
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`+where, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return total, nil
}

func (c *Catalog) ListProductsPaged(ctx context.Context, filter ProductFilter, page, pageSize int) (*OffsetPage, error) {
	page, pageSize = NormalizePage(page, pageSize)

	total, err := c.CountProducts(ctx, filter)
	if err != nil {
		return nil, err
	}

	where, args := filter.where()
	args = append(args, pageSize, (page-1)*pageSize)
	query := fmt.Sprintf(`SELECT %s FROM products%s ORDER BY id DESC LIMIT $%d OFFSET $%d`,
		productColumns, where, len(args)-1, len(args))

	products, err := c.queryProducts(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	return newOffsetPage(products, total, page, pageSize), nil
}

func (c *Catalog) queryProducts(ctx context.Context, query string, args ...any) ([]models.Product, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		var product models.Product
		if err := scanProduct(rows, &product); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return products, nil
}
