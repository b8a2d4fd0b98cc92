package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale is immutable once recorded. ProductID is 0 when the product has since
// been deleted.
type Sale struct {
	ID          int64           `db:"id" json:"id"`
	ProductID   int64           `db:"product_id" json:"product_id"`
	Quantity    int             `db:"quantity" json:"quantity"`
	UnitPrice   decimal.Decimal `db:"unit_price" json:"unit_price"`
	TotalAmount decimal.Decimal `db:"total_amount" json:"total_amount"`
	SaleDate    time.Time       `db:"sale_date" json:"sale_date"`
}

type SaleInput struct {
	ProductID   int64
	Quantity    int
	UnitPrice   decimal.Decimal
	TotalAmount *decimal.Decimal
	SaleDate    *time.Time
}

func (in SaleInput) Validate() ValidationErrors {
	errs := ValidationErrors{}
	if in.ProductID <= 0 {
		errs.Add("product_id", "product_id must be positive")
	}
	if in.Quantity < 1 {
		errs.Add("quantity", "quantity must be at least 1")
	}
	if !in.UnitPrice.IsPositive() {
		errs.Add("unit_price", "unit_price must be positive")
	}
	if in.TotalAmount != nil && in.TotalAmount.IsNegative() {
		errs.Add("total_amount", "total_amount cannot be negative")
	}
	return errs
}

// Total is the stored total when one was supplied, otherwise quantity times
// unit price. A supplied total is kept as-is even if it disagrees.
func (in SaleInput) Total() decimal.Decimal {
	if in.TotalAmount != nil {
		return *in.TotalAmount
	}
	return in.UnitPrice.Mul(decimal.NewFromInt(int64(in.Quantity)))
}

type SaleFilter struct {
	Start     *time.Time
	End       *time.Time
	ProductID *int64
	Offset    int
	Limit     int
}
