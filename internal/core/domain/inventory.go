package domain

import "time"

type ChangeType string

const (
	ChangeTypeRestock    ChangeType = "restock"
	ChangeTypeSale       ChangeType = "sale"
	ChangeTypeAdjustment ChangeType = "adjustment"
)

type Inventory struct {
	ID                int64     `db:"id" json:"id"`
	ProductID         int64     `db:"product_id" json:"product_id"`
	Quantity          int       `db:"quantity" json:"quantity"`
	LowStockThreshold int       `db:"low_stock_threshold" json:"low_stock_threshold"`
	Version           int       `db:"version" json:"-"` // optimistic locking
	LastUpdated       time.Time `db:"last_updated" json:"last_updated"`
}

func (i Inventory) IsLowStock() bool {
	return i.Quantity <= i.LowStockThreshold
}

// InventoryHistory is an append-only ledger entry.
type InventoryHistory struct {
	ID             int64      `db:"id" json:"id"`
	ProductID      int64      `db:"product_id" json:"product_id"`
	QuantityChange int        `db:"quantity_change" json:"quantity_change"`
	NewQuantity    int        `db:"new_quantity" json:"new_quantity"`
	ChangeType     ChangeType `db:"change_type" json:"change_type"`
	ChangeDate     time.Time  `db:"change_date" json:"change_date"`
}

type InventoryInput struct {
	ProductID         int64 `json:"product_id"`
	Quantity          int   `json:"quantity"`
	LowStockThreshold *int  `json:"low_stock_threshold"`
}

func (in InventoryInput) Validate() ValidationErrors {
	errs := ValidationErrors{}
	if in.ProductID <= 0 {
		errs.Add("product_id", "product_id must be positive")
	}
	if in.Quantity < 0 {
		errs.Add("quantity", "quantity cannot be negative")
	}
	if in.LowStockThreshold != nil && *in.LowStockThreshold < 0 {
		errs.Add("low_stock_threshold", "low_stock_threshold cannot be negative")
	}
	return errs
}

// InventoryUpdate holds the optional fields of an adjustment. Nil fields are
// left untouched.
type InventoryUpdate struct {
	Quantity          *int `json:"quantity"`
	LowStockThreshold *int `json:"low_stock_threshold"`
}

func (u InventoryUpdate) Validate() ValidationErrors {
	errs := ValidationErrors{}
	if u.Quantity != nil && *u.Quantity < 0 {
		errs.Add("quantity", "quantity cannot be negative")
	}
	if u.LowStockThreshold != nil && *u.LowStockThreshold < 0 {
		errs.Add("low_stock_threshold", "low_stock_threshold cannot be negative")
	}
	return errs
}

func (u InventoryUpdate) IsEmpty() bool {
	return u.Quantity == nil && u.LowStockThreshold == nil
}

// Apply returns the inventory as it stands after u, plus the ledger entry to
// append when u sets a quantity. Threshold changes are not recorded. The
// returned inventory keeps the version it was read at; the store bumps it.
func (i Inventory) Apply(u InventoryUpdate, at time.Time) (Inventory, *InventoryHistory) {
	next := i
	var entry *InventoryHistory

	if u.Quantity != nil {
		entry = &InventoryHistory{
			ProductID:      i.ProductID,
			QuantityChange: *u.Quantity - i.Quantity,
			NewQuantity:    *u.Quantity,
			ChangeType:     ChangeTypeAdjustment,
			ChangeDate:     at,
		}
		next.Quantity = *u.Quantity
	}
	if u.LowStockThreshold != nil {
		next.LowStockThreshold = *u.LowStockThreshold
	}
	next.LastUpdated = at

	return next, entry
}
