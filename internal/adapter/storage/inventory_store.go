package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rl1809/commerce-admin/internal/core/domain"
	"github.com/rl1809/commerce-admin/internal/port"
)

const inventoryColumns = "id, product_id, quantity, low_stock_threshold, version, last_updated"

var (
	insertInventoryQuery = `
		INSERT INTO inventory (product_id, quantity, low_stock_threshold, version, last_updated)
		VALUES (:product_id, :quantity, :low_stock_threshold, :version, :last_updated)`
	getInventoryQuery    = "SELECT " + inventoryColumns + " FROM inventory WHERE product_id = ?"
	listLowStockQuery    = "SELECT " + inventoryColumns + " FROM inventory WHERE quantity <= low_stock_threshold ORDER BY product_id"
	updateInventoryQuery = `
		UPDATE inventory
		SET quantity = ?, low_stock_threshold = ?, last_updated = ?, version = version + 1
		WHERE product_id = ? AND version = ?`
	insertHistoryQuery = `
		INSERT INTO inventory_history (product_id, quantity_change, new_quantity, change_type, change_date)
		VALUES (:product_id, :quantity_change, :new_quantity, :change_type, :change_date)`
	listHistoryQuery = `
		SELECT id, product_id, quantity_change, new_quantity, change_type, change_date
		FROM inventory_history
		WHERE product_id = ?
		ORDER BY change_date DESC, id DESC
		LIMIT ?`
)

func (a *SQLAdapter) CreateInventory(ctx context.Context, inv *domain.Inventory) error {
	result, err := a.db.NamedExecContext(ctx, insertInventoryQuery, inv)
	if isDuplicate(err) {
		return port.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("insert inventory: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("inventory id: %w", err)
	}
	inv.ID = id
	return nil
}

func (a *SQLAdapter) GetInventory(ctx context.Context, productID int64) (*domain.Inventory, error) {
	var inv domain.Inventory
	err := a.db.GetContext(ctx, &inv, getInventoryQuery, productID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query inventory: %w", err)
	}
	return &inv, nil
}

func (a *SQLAdapter) ListLowStock(ctx context.Context) ([]domain.Inventory, error) {
	items := []domain.Inventory{}
	if err := a.db.SelectContext(ctx, &items, listLowStockQuery); err != nil {
		return nil, fmt.Errorf("query low stock: %w", err)
	}
	return items, nil
}

// UpdateInventory is the ledger write: the versioned update and the history
// append commit together or not at all. On success inv.Version and entry.ID
// reflect the stored state.
func (a *SQLAdapter) UpdateInventory(ctx context.Context, inv *domain.Inventory, entry *domain.InventoryHistory) error {
	tx, err := a.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, updateInventoryQuery,
		inv.Quantity, inv.LowStockThreshold, inv.LastUpdated,
		inv.ProductID, inv.Version,
	)
	if err != nil {
		return fmt.Errorf("update inventory: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return port.ErrOptimisticLock
	}

	var entryID int64
	if entry != nil {
		result, err := tx.NamedExecContext(ctx, insertHistoryQuery, entry)
		if err != nil {
			return fmt.Errorf("insert inventory history: %w", err)
		}
		if entryID, err = result.LastInsertId(); err != nil {
			return fmt.Errorf("inventory history id: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit inventory update: %w", err)
	}

	inv.Version++
	if entry != nil {
		entry.ID = entryID
	}
	return nil
}

func (a *SQLAdapter) ListHistory(ctx context.Context, productID int64, limit int) ([]domain.InventoryHistory, error) {
	history := []domain.InventoryHistory{}
	if err := a.db.SelectContext(ctx, &history, listHistoryQuery, productID, limit); err != nil {
		return nil, fmt.Errorf("query inventory history: %w", err)
	}
	return history, nil
}
