package storage

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/commerce-admin/internal/core/domain"
	"github.com/rl1809/commerce-admin/internal/port"
)

var baseTime = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), append([]interface{}{"want %s, got %s", want, got.String()}, msgAndArgs...)...)
}

func seedProduct(t *testing.T, a *SQLAdapter, name, category string) *domain.Product {
	t.Helper()
	p := &domain.Product{
		Name:      name,
		Price:     dec("10.00"),
		Category:  category,
		CreatedAt: baseTime,
		UpdatedAt: baseTime,
	}
	require.NoError(t, a.CreateProduct(context.Background(), p))
	return p
}

func seedInventory(t *testing.T, a *SQLAdapter, productID int64, quantity, threshold int) *domain.Inventory {
	t.Helper()
	inv := &domain.Inventory{
		ProductID:         productID,
		Quantity:          quantity,
		LowStockThreshold: threshold,
		LastUpdated:       baseTime,
	}
	require.NoError(t, a.CreateInventory(context.Background(), inv))
	return inv
}

func seedSale(t *testing.T, a *SQLAdapter, productID int64, total string, at time.Time) *domain.Sale {
	t.Helper()
	s := &domain.Sale{
		ProductID:   productID,
		Quantity:    1,
		UnitPrice:   dec(total),
		TotalAmount: dec(total),
		SaleDate:    domain.Timestamp(at),
	}
	require.NoError(t, a.CreateSale(context.Background(), s))
	return s
}

// runRepositorySuite exercises the repository contract. newAdapter must return
// an adapter over an empty, migrated schema.
func runRepositorySuite(t *testing.T, newAdapter func(t *testing.T) *SQLAdapter) {
	t.Run("ProductCRUD", func(t *testing.T) { testProductCRUD(t, newAdapter(t)) })
	t.Run("InventoryLedger", func(t *testing.T) { testInventoryLedger(t, newAdapter(t)) })
	t.Run("StaleVersionRejected", func(t *testing.T) { testStaleVersionRejected(t, newAdapter(t)) })
	t.Run("LowStockBoundary", func(t *testing.T) { testLowStockBoundary(t, newAdapter(t)) })
	t.Run("HistoryOrdering", func(t *testing.T) { testHistoryOrdering(t, newAdapter(t)) })
	t.Run("RevenueAggregation", func(t *testing.T) { testRevenueAggregation(t, newAdapter(t)) })
	t.Run("ListSales", func(t *testing.T) { testListSales(t, newAdapter(t)) })
	t.Run("DeleteProductKeepsSales", func(t *testing.T) { testDeleteProductKeepsSales(t, newAdapter(t)) })
}

func testProductCRUD(t *testing.T, a *SQLAdapter) {
	ctx := context.Background()

	first := seedProduct(t, a, "Phone", "Electronics")
	second := seedProduct(t, a, "Novel", "Books")
	assert.Greater(t, second.ID, first.ID, "ids are assigned in increasing order")

	got, err := a.GetProduct(ctx, first.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Phone", got.Name)
	assert.Nil(t, got.Description)
	assertDecimal(t, "10.00", got.Price)
	assert.True(t, baseTime.Equal(got.CreatedAt))

	page, err := a.ListProducts(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, first.ID, page[0].ID)
	assert.Equal(t, second.ID, page[1].ID)

	page, err = a.ListProducts(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, second.ID, page[0].ID)

	desc := "6.1 inch"
	got.Name = "Phone X"
	got.Description = &desc
	got.Price = dec("899.99")
	got.UpdatedAt = baseTime.Add(time.Hour)
	require.NoError(t, a.UpdateProduct(ctx, got))

	updated, err := a.GetProduct(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Phone X", updated.Name)
	require.NotNil(t, updated.Description)
	assert.Equal(t, desc, *updated.Description)
	assertDecimal(t, "899.99", updated.Price)
	assert.True(t, baseTime.Equal(updated.CreatedAt), "created_at is preserved")

	// Same values again must still count as found.
	require.NoError(t, a.UpdateProduct(ctx, updated))

	missing := *updated
	missing.ID = second.ID + 1000
	assert.ErrorIs(t, a.UpdateProduct(ctx, &missing), port.ErrNotFound)

	require.NoError(t, a.DeleteProduct(ctx, first.ID))
	gone, err := a.GetProduct(ctx, first.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
	assert.ErrorIs(t, a.DeleteProduct(ctx, first.ID), port.ErrNotFound)

	page, err = a.ListProducts(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, second.ID, page[0].ID)
}

func testInventoryLedger(t *testing.T, a *SQLAdapter) {
	ctx := context.Background()
	p := seedProduct(t, a, "Phone", "Electronics")
	seedInventory(t, a, p.ID, 15, 10)

	dup := &domain.Inventory{ProductID: p.ID, LastUpdated: baseTime}
	assert.ErrorIs(t, a.CreateInventory(ctx, dup), port.ErrDuplicate)

	inv, err := a.GetInventory(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, inv)
	assert.Equal(t, 15, inv.Quantity)
	assert.Equal(t, 0, inv.Version)

	quantity := 3
	next, entry := inv.Apply(domain.InventoryUpdate{Quantity: &quantity}, baseTime.Add(time.Minute))
	require.NoError(t, a.UpdateInventory(ctx, &next, entry))
	assert.Equal(t, 1, next.Version)
	assert.NotZero(t, entry.ID)

	stored, err := a.GetInventory(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.Quantity)
	assert.Equal(t, 1, stored.Version)

	history, err := a.ListHistory(ctx, p.ID, 100)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, -12, history[0].QuantityChange)
	assert.Equal(t, 3, history[0].NewQuantity)
	assert.Equal(t, domain.ChangeTypeAdjustment, history[0].ChangeType)
	assert.Equal(t, stored.Quantity, history[0].NewQuantity)

	low, err := a.ListLowStock(ctx)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, p.ID, low[0].ProductID)

	none, err := a.GetInventory(ctx, p.ID+1000)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func testStaleVersionRejected(t *testing.T, a *SQLAdapter) {
	ctx := context.Background()
	p := seedProduct(t, a, "Phone", "Electronics")
	seedInventory(t, a, p.ID, 15, 10)

	readA, err := a.GetInventory(ctx, p.ID)
	require.NoError(t, err)
	readB := *readA

	qA, qB := 20, 5
	nextA, entryA := readA.Apply(domain.InventoryUpdate{Quantity: &qA}, baseTime)
	require.NoError(t, a.UpdateInventory(ctx, &nextA, entryA))

	nextB, entryB := readB.Apply(domain.InventoryUpdate{Quantity: &qB}, baseTime)
	assert.ErrorIs(t, a.UpdateInventory(ctx, &nextB, entryB), port.ErrOptimisticLock)

	stored, err := a.GetInventory(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, stored.Quantity)

	history, err := a.ListHistory(ctx, p.ID, 100)
	require.NoError(t, err)
	require.Len(t, history, 1, "rejected update must not leave a ledger row")
	assert.Equal(t, 5, history[0].QuantityChange)
}

func testLowStockBoundary(t *testing.T, a *SQLAdapter) {
	ctx := context.Background()
	below := seedProduct(t, a, "A", "Toys")
	equal := seedProduct(t, a, "B", "Toys")
	above := seedProduct(t, a, "C", "Toys")
	seedInventory(t, a, below.ID, 9, 10)
	seedInventory(t, a, equal.ID, 10, 10)
	seedInventory(t, a, above.ID, 11, 10)

	low, err := a.ListLowStock(ctx)
	require.NoError(t, err)

	var ids []int64
	for _, inv := range low {
		ids = append(ids, inv.ProductID)
	}
	assert.Equal(t, []int64{below.ID, equal.ID}, ids)
}

func testHistoryOrdering(t *testing.T, a *SQLAdapter) {
	ctx := context.Background()
	p := seedProduct(t, a, "Mug", "Home & Kitchen")
	seedInventory(t, a, p.ID, 0, 1)

	for i, q := range []int{5, 8, 2} {
		inv, err := a.GetInventory(ctx, p.ID)
		require.NoError(t, err)
		quantity := q
		next, entry := inv.Apply(domain.InventoryUpdate{Quantity: &quantity}, baseTime.Add(time.Duration(i)*time.Minute))
		require.NoError(t, a.UpdateInventory(ctx, &next, entry))
	}

	history, err := a.ListHistory(ctx, p.ID, 100)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, []int{2, 8, 5}, []int{history[0].NewQuantity, history[1].NewQuantity, history[2].NewQuantity})
	assert.Equal(t, []int{-6, 3, 5}, []int{history[0].QuantityChange, history[1].QuantityChange, history[2].QuantityChange})

	limited, err := a.ListHistory(ctx, p.ID, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, 2, limited[0].NewQuantity)

	other, err := a.ListHistory(ctx, p.ID+1000, 100)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func testRevenueAggregation(t *testing.T, a *SQLAdapter) {
	ctx := context.Background()
	phone := seedProduct(t, a, "Phone", "Electronics")
	cable := seedProduct(t, a, "Cable", "Electronics")
	novel := seedProduct(t, a, "Novel", "Books")

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC)

	seedSale(t, a, phone.ID, "100.10", start)                 // on the lower bound
	seedSale(t, a, cable.ID, "0.20", start.Add(48*time.Hour)) // inside
	seedSale(t, a, novel.ID, "15.00", end)                    // on the upper bound
	seedSale(t, a, novel.ID, "99.00", end.Add(time.Second))   // outside
	seedSale(t, a, phone.ID, "500.00", start.Add(-time.Second))

	r, err := domain.NewDateRange(start, end)
	require.NoError(t, err)

	total, err := a.SumRevenue(ctx, r, "")
	require.NoError(t, err)
	assertDecimal(t, "115.30", total)

	electronics, err := a.SumRevenue(ctx, r, "Electronics")
	require.NoError(t, err)
	assertDecimal(t, "100.30", electronics)

	empty, err := a.SumRevenue(ctx, r, "Toys")
	require.NoError(t, err)
	assertDecimal(t, "0", empty)

	byCategory, err := a.RevenueBreakdown(ctx, r, domain.GroupByCategory)
	require.NoError(t, err)
	got := map[string]decimal.Decimal{}
	for _, g := range byCategory {
		got[g.Group] = g.Revenue
	}
	require.Len(t, got, 2)
	assertDecimal(t, "100.30", got["Electronics"])
	assertDecimal(t, "15.00", got["Books"])

	byName, err := a.RevenueBreakdown(ctx, r, domain.GroupByName)
	require.NoError(t, err)
	got = map[string]decimal.Decimal{}
	for _, g := range byName {
		got[g.Group] = g.Revenue
	}
	require.Len(t, got, 3)
	assertDecimal(t, "100.10", got["Phone"])
	assertDecimal(t, "0.20", got["Cable"])
	assertDecimal(t, "15.00", got["Novel"])

	_, err = a.RevenueBreakdown(ctx, r, domain.GroupBy("price"))
	assert.Error(t, err)
}

func testListSales(t *testing.T, a *SQLAdapter) {
	ctx := context.Background()
	phone := seedProduct(t, a, "Phone", "Electronics")
	novel := seedProduct(t, a, "Novel", "Books")

	s1 := seedSale(t, a, phone.ID, "10.00", baseTime)
	s2 := seedSale(t, a, novel.ID, "20.00", baseTime.Add(time.Hour))
	s3 := seedSale(t, a, phone.ID, "30.00", baseTime.Add(2*time.Hour))

	all, err := a.ListSales(ctx, domain.SaleFilter{Limit: 10})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int64{s1.ID, s2.ID, s3.ID}, []int64{all[0].ID, all[1].ID, all[2].ID})
	assertDecimal(t, "20.00", all[1].TotalAmount)

	productID := phone.ID
	from := baseTime.Add(time.Minute)
	filtered, err := a.ListSales(ctx, domain.SaleFilter{Start: &from, ProductID: &productID, Limit: 10})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, s3.ID, filtered[0].ID)

	paged, err := a.ListSales(ctx, domain.SaleFilter{Offset: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, s2.ID, paged[0].ID)
}

func testDeleteProductKeepsSales(t *testing.T, a *SQLAdapter) {
	ctx := context.Background()
	phone := seedProduct(t, a, "Phone", "Electronics")
	seedInventory(t, a, phone.ID, 5, 1)
	sale := seedSale(t, a, phone.ID, "42.00", baseTime)

	require.NoError(t, a.DeleteProduct(ctx, phone.ID))

	inv, err := a.GetInventory(ctx, phone.ID)
	require.NoError(t, err)
	assert.Nil(t, inv, "inventory row is removed with its product")

	sales, err := a.ListSales(ctx, domain.SaleFilter{Limit: 10})
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, sale.ID, sales[0].ID)
	assert.Equal(t, int64(0), sales[0].ProductID)

	r, err := domain.NewDateRange(baseTime.Add(-time.Hour), baseTime.Add(time.Hour))
	require.NoError(t, err)

	total, err := a.SumRevenue(ctx, r, "")
	require.NoError(t, err)
	assertDecimal(t, "42.00", total)

	groups, err := a.RevenueBreakdown(ctx, r, domain.GroupByCategory)
	require.NoError(t, err)
	assert.Empty(t, groups)
}
