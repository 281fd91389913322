package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"ecostore/internal/domain"

	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound = fmt.Errorf("product %w", domain.ErrNotFound)
)

const productColumns = `id, name, description, price, image, category, stock, created_at, updated_at`

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	List(ctx context.Context) ([]*domain.Product, error)
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	Search(ctx context.Context, query, category string) ([]*domain.Product, error)
	Create(ctx context.Context, fields domain.ProductFields) (*domain.Product, error)
	Update(ctx context.Context, id int64, fields domain.ProductFields) (*domain.Product, error)
	Delete(ctx context.Context, id int64) error
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	product := &domain.Product{}
	var price decimal.Decimal
	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&price,
		&product.Image,
		&product.Category,
		&product.Stock,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	product.Price = price.InexactFloat64()
	return product, nil
}

func (r *productRepository) queryProducts(ctx context.Context, query string, args ...any) ([]*domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// List returns every product, newest first
func (r *productRepository) List(ctx context.Context) ([]*domain.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		ORDER BY created_at DESC, id DESC
	`

	products, err := r.queryProducts(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// FindByID retrieves a product by ID using parameterized queries
func (r *productRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = $1
	`

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

// Search filters products by a case-insensitive substring of name or
// description and by exact category. Empty arguments do not filter.
func (r *productRepository) Search(ctx context.Context, query, category string) ([]*domain.Product, error) {
	conditions := []string{}
	args := []any{}

	if query != "" {
		args = append(args, "%"+escapeLike(query)+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf(`(name ILIKE $%d ESCAPE '\' OR description ILIKE $%d ESCAPE '\')`, n, n))
	}

	if category != "" {
		args = append(args, category)
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)))
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	searchQuery := fmt.Sprintf(`
		SELECT %s
		FROM products
		%s
		ORDER BY created_at DESC, id DESC
	`, productColumns, whereClause)

	products, err := r.queryProducts(ctx, searchQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	return products, nil
}

// Create inserts a new product; the store assigns the id and timestamps
func (r *productRepository) Create(ctx context.Context, fields domain.ProductFields) (*domain.Product, error) {
	query := `
		INSERT INTO products (name, description, price, image, category, stock)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + productColumns

	product, err := scanProduct(r.db.QueryRowContext(
		ctx,
		query,
		fields.Name,
		fields.Description,
		decimal.NewFromFloat(fields.Price),
		fields.Image,
		fields.Category,
		fields.Stock,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}

// Update overwrites all six fields in one statement; updated_at is refreshed
// by the products_set_updated_at trigger.
func (r *productRepository) Update(ctx context.Context, id int64, fields domain.ProductFields) (*domain.Product, error) {
	query := `
		UPDATE products
		SET name = $2, description = $3, price = $4, image = $5, category = $6, stock = $7
		WHERE id = $1
		RETURNING ` + productColumns

	product, err := scanProduct(r.db.QueryRowContext(
		ctx,
		query,
		id,
		fields.Name,
		fields.Description,
		decimal.NewFromFloat(fields.Price),
		fields.Image,
		fields.Category,
		fields.Stock,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return product, nil
}

// Delete removes a product from the database using parameterized queries
func (r *productRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM products WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes LIKE wildcards in user input match literally.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
