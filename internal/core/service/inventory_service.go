package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rl1809/commerce-admin/internal/core/domain"
	"github.com/rl1809/commerce-admin/internal/port"
)

type InventoryService struct {
	inventory port.InventoryRepository
	products  port.ProductRepository
	settings  Settings
	logger    *zap.Logger
	now       func() time.Time
}

func NewInventoryService(inventory port.InventoryRepository, products port.ProductRepository, settings Settings, logger *zap.Logger) *InventoryService {
	return &InventoryService{
		inventory: inventory,
		products:  products,
		settings:  settings,
		logger:    orNop(logger),
		now:       systemClock,
	}
}

func (s *InventoryService) GetStatus(ctx context.Context, productID int64) (*domain.Inventory, error) {
	inv, err := s.inventory.GetInventory(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get inventory: %w", err)
	}
	if inv == nil {
		return nil, ErrInventoryNotFound
	}
	return inv, nil
}

func (s *InventoryService) ListLowStock(ctx context.Context) ([]domain.Inventory, error) {
	items, err := s.inventory.ListLowStock(ctx)
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	return items, nil
}

// Update applies an adjustment. A quantity change is written together with
// its ledger entry against the version that was read; if another writer got
// there first nothing is written and ErrInventoryConflict is returned.
func (s *InventoryService) Update(ctx context.Context, productID int64, u domain.InventoryUpdate) (*domain.Inventory, error) {
	if errs := u.Validate(); !errs.Empty() {
		return nil, NewValidationError(errs)
	}

	current, err := s.GetStatus(ctx, productID)
	if err != nil {
		return nil, err
	}
	if u.IsEmpty() {
		return current, nil
	}

	next, entry := current.Apply(u, s.now())

	err = s.inventory.UpdateInventory(ctx, &next, entry)
	if errors.Is(err, port.ErrOptimisticLock) {
		s.logger.Warn("inventory update lost race",
			zap.Int64("product_id", productID),
			zap.Int("read_version", current.Version),
		)
		return nil, ErrInventoryConflict
	}
	if err != nil {
		return nil, fmt.Errorf("update inventory: %w", err)
	}

	if entry != nil {
		s.logger.Info("inventory adjusted",
			zap.Int64("product_id", productID),
			zap.Int("quantity_change", entry.QuantityChange),
			zap.Int("new_quantity", entry.NewQuantity),
		)
	}
	return &next, nil
}

// History returns the newest ledger entries first. A product without any
// entries, known or not, yields an empty list.
func (s *InventoryService) History(ctx context.Context, productID int64, limit *int) ([]domain.InventoryHistory, error) {
	n, err := historyLimit(limit)
	if err != nil {
		return nil, err
	}

	history, err := s.inventory.ListHistory(ctx, productID, n)
	if err != nil {
		return nil, fmt.Errorf("list inventory history: %w", err)
	}
	return history, nil
}

// Create opens the inventory row for a product. The starting quantity is not
// a ledger entry.
func (s *InventoryService) Create(ctx context.Context, in domain.InventoryInput) (*domain.Inventory, error) {
	if errs := in.Validate(); !errs.Empty() {
		return nil, NewValidationError(errs)
	}

	p, err := s.products.GetProduct(ctx, in.ProductID)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if p == nil {
		return nil, ErrProductNotFound
	}

	threshold := s.settings.DefaultLowStockThreshold
	if in.LowStockThreshold != nil {
		threshold = *in.LowStockThreshold
	}

	inv := &domain.Inventory{
		ProductID:         in.ProductID,
		Quantity:          in.Quantity,
		LowStockThreshold: threshold,
		LastUpdated:       s.now(),
	}
	err = s.inventory.CreateInventory(ctx, inv)
	if errors.Is(err, port.ErrDuplicate) {
		return nil, ErrInventoryExists
	}
	if err != nil {
		return nil, fmt.Errorf("create inventory: %w", err)
	}

	s.logger.Info("inventory created", zap.Int64("product_id", inv.ProductID), zap.Int("quantity", inv.Quantity))
	return inv, nil
}
