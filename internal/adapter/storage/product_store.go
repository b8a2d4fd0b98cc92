package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rl1809/commerce-admin/internal/core/domain"
	"github.com/rl1809/commerce-admin/internal/port"
)

const productColumns = "id, name, description, price, category, created_at, updated_at"

var (
	insertProductQuery = `
		INSERT INTO products (name, description, price, category, created_at, updated_at)
		VALUES (:name, :description, :price, :category, :created_at, :updated_at)`
	listProductsQuery  = "SELECT " + productColumns + " FROM products ORDER BY id LIMIT ? OFFSET ?"
	getProductQuery    = "SELECT " + productColumns + " FROM products WHERE id = ?"
	updateProductQuery = `
		UPDATE products
		SET name = :name, description = :description, price = :price, category = :category, updated_at = :updated_at
		WHERE id = :id`
	deleteProductQuery = "DELETE FROM products WHERE id = ?"
)

func (a *SQLAdapter) CreateProduct(ctx context.Context, p *domain.Product) error {
	result, err := a.db.NamedExecContext(ctx, insertProductQuery, p)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("product id: %w", err)
	}
	p.ID = id
	return nil
}

func (a *SQLAdapter) ListProducts(ctx context.Context, offset, limit int) ([]domain.Product, error) {
	products := []domain.Product{}
	if err := a.db.SelectContext(ctx, &products, listProductsQuery, limit, offset); err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	return products, nil
}

func (a *SQLAdapter) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	err := a.db.GetContext(ctx, &p, getProductQuery, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query product: %w", err)
	}
	return &p, nil
}

func (a *SQLAdapter) UpdateProduct(ctx context.Context, p *domain.Product) error {
	result, err := a.db.NamedExecContext(ctx, updateProductQuery, p)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return port.ErrNotFound
	}
	return nil
}

// DeleteProduct relies on the schema: inventory cascades, sales and ledger
// rows keep their data with a NULL product.
func (a *SQLAdapter) DeleteProduct(ctx context.Context, id int64) error {
	result, err := a.db.ExecContext(ctx, deleteProductQuery, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return port.ErrNotFound
	}
	return nil
}
