package port

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/rl1809/commerce-admin/internal/core/domain"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicate      = errors.New("duplicate record")
	ErrOptimisticLock = errors.New("optimistic lock conflict")
)

type ProductRepository interface {
	// CreateProduct inserts p and fills in its generated ID
	CreateProduct(ctx context.Context, p *domain.Product) error

	// ListProducts returns a page of products ordered by ID
	ListProducts(ctx context.Context, offset, limit int) ([]domain.Product, error)

	// GetProduct returns nil, nil when no product has the ID
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)

	// UpdateProduct replaces all writable fields, ErrNotFound when missing
	UpdateProduct(ctx context.Context, p *domain.Product) error

	// DeleteProduct removes the product and its inventory row, ErrNotFound when missing
	DeleteProduct(ctx context.Context, id int64) error
}

type InventoryRepository interface {
	// CreateInventory inserts inv, ErrDuplicate when the product already has a row
	CreateInventory(ctx context.Context, inv *domain.Inventory) error

	// GetInventory returns nil, nil when the product has no inventory row
	GetInventory(ctx context.Context, productID int64) (*domain.Inventory, error)

	// ListLowStock returns rows with quantity at or below their threshold
	ListLowStock(ctx context.Context) ([]domain.Inventory, error)

	// UpdateInventory writes inv and appends entry (when non-nil) atomically,
	// guarded by inv.Version. ErrOptimisticLock when the row moved on.
	UpdateInventory(ctx context.Context, inv *domain.Inventory, entry *domain.InventoryHistory) error

	// ListHistory returns the newest ledger entries first
	ListHistory(ctx context.Context, productID int64, limit int) ([]domain.InventoryHistory, error)
}

type SalesRepository interface {
	// CreateSale inserts s and fills in its generated ID
	CreateSale(ctx context.Context, s *domain.Sale) error

	// ListSales returns sales ordered by sale date
	ListSales(ctx context.Context, filter domain.SaleFilter) ([]domain.Sale, error)

	// SumRevenue totals total_amount within r, restricted to category when non-empty
	SumRevenue(ctx context.Context, r domain.DateRange, category string) (decimal.Decimal, error)

	// RevenueBreakdown sums total_amount within r per product attribute
	RevenueBreakdown(ctx context.Context, r domain.DateRange, groupBy domain.GroupBy) ([]domain.RevenueGroup, error)
}
