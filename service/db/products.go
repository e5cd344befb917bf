package db

import (
	"context"
	"fmt"
	"time"
)

// Product represents an item in the store catalog. Prices are in SOL.
type Product struct {
	ID        int64
	Name      string
	Price     float64
	Image     string
	Quantity  int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateProductParams contains the parameters for creating a product.
type CreateProductParams struct {
	Name     string
	Price    float64
	Image    string
	Quantity int64
}

// UpdateProductParams contains the parameters for updating a product.
type UpdateProductParams struct {
	ID       int64
	Name     string
	Price    float64
	Image    string
	Quantity int64
}

// ListProductsParams contains pagination parameters.
type ListProductsParams struct {
	Limit  int32
	Offset int32
}

// CreateProduct inserts a new product into the catalog.
func (s *Store) CreateProduct(ctx context.Context, params CreateProductParams) (*Product, error) {
	query := `
		INSERT INTO products (name, price, image, quantity)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, price, image, quantity, created_at, updated_at
	`

	var p Product
	err := s.pool.QueryRow(ctx, query,
		params.Name, params.Price, params.Image, params.Quantity,
	).Scan(&p.ID, &p.Name, &p.Price, &p.Image, &p.Quantity, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert product: %w", err)
	}

	return &p, nil
}

// GetProduct retrieves a product by ID. Returns ErrNotFound if no such
// product exists.
func (s *Store) GetProduct(ctx context.Context, id int64) (*Product, error) {
	query := `
		SELECT id, name, price, image, quantity, created_at, updated_at
		FROM products
		WHERE id = $1
	`

	var p Product
	err := s.pool.QueryRow(ctx, query, id).
		Scan(&p.ID, &p.Name, &p.Price, &p.Image, &p.Quantity, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	return &p, nil
}

// ListProducts retrieves products with pagination, newest first.
func (s *Store) ListProducts(ctx context.Context, params ListProductsParams) ([]*Product, error) {
	query := `
		SELECT id, name, price, image, quantity, created_at, updated_at
		FROM products
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := s.pool.Query(ctx, query, params.Limit, params.Offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []*Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Image, &p.Quantity, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return products, nil
}

// UpdateProduct replaces a product's fields. Returns ErrNotFound if no such
// product exists.
func (s *Store) UpdateProduct(ctx context.Context, params UpdateProductParams) (*Product, error) {
	query := `
		UPDATE products
		SET name = $2, price = $3, image = $4, quantity = $5, updated_at = now()
		WHERE id = $1
		RETURNING id, name, price, image, quantity, created_at, updated_at
	`

	var p Product
	err := s.pool.QueryRow(ctx, query,
		params.ID, params.Name, params.Price, params.Image, params.Quantity,
	).Scan(&p.ID, &p.Name, &p.Price, &p.Image, &p.Quantity, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update product: %w", err)
	}

	return &p, nil
}

// DeleteProduct removes a product from the catalog. Returns ErrNotFound if no
// such product exists.
func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// AdjustProductQuantity adds delta (which may be negative) to a product's
// quantity. The quantity never drops below zero; a purchase that would
// oversell fails with ErrNotFound semantics at the caller's discretion.
func (s *Store) AdjustProductQuantity(ctx context.Context, id int64, delta int64) (*Product, error) {
	query := `
		UPDATE products
		SET quantity = quantity + $2, updated_at = now()
		WHERE id = $1 AND quantity + $2 >= 0
		RETURNING id, name, price, image, quantity, created_at, updated_at
	`

	var p Product
	err := s.pool.QueryRow(ctx, query, id, delta).
		Scan(&p.ID, &p.Name, &p.Price, &p.Image, &p.Quantity, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("adjust product quantity: %w", err)
	}

	return &p, nil
}
