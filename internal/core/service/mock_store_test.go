package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/rl1809/commerce-admin/internal/core/domain"
	"github.com/rl1809/commerce-admin/internal/port"
)

// Mock repositories backed by maps
type mockStore struct {
	mu        sync.Mutex
	nextID    int64
	products  map[int64]domain.Product
	inventory map[int64]domain.Inventory
	history   []domain.InventoryHistory
	sales     []domain.Sale

	// beforeUpdate runs inside UpdateInventory before the version check.
	beforeUpdate func()
	failWith     error
	lastFilter   domain.SaleFilter
}

func newMockStore() *mockStore {
	return &mockStore{
		products:  make(map[int64]domain.Product),
		inventory: make(map[int64]domain.Inventory),
	}
}

func (m *mockStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *mockStore) CreateProduct(ctx context.Context, p *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	p.ID = m.id()
	m.products[p.ID] = *p
	return nil
}

func (m *mockStore) ListProducts(ctx context.Context, offset, limit int) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	all := make([]domain.Product, 0, len(m.products))
	for _, p := range m.products {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	if offset >= len(all) {
		return []domain.Product{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (m *mockStore) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	p, ok := m.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *mockStore) UpdateProduct(ctx context.Context, p *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[p.ID]; !ok {
		return port.ErrNotFound
	}
	m.products[p.ID] = *p
	return nil
}

func (m *mockStore) DeleteProduct(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return port.ErrNotFound
	}
	delete(m.products, id)
	delete(m.inventory, id)
	for i := range m.sales {
		if m.sales[i].ProductID == id {
			m.sales[i].ProductID = 0
		}
	}
	return nil
}

func (m *mockStore) CreateInventory(ctx context.Context, inv *domain.Inventory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.inventory[inv.ProductID]; ok {
		return port.ErrDuplicate
	}
	inv.ID = m.id()
	m.inventory[inv.ProductID] = *inv
	return nil
}

func (m *mockStore) GetInventory(ctx context.Context, productID int64) (*domain.Inventory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.inventory[productID]
	if !ok {
		return nil, nil
	}
	return &inv, nil
}

func (m *mockStore) ListLowStock(ctx context.Context) ([]domain.Inventory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := []domain.Inventory{}
	for _, inv := range m.inventory {
		if inv.IsLowStock() {
			items = append(items, inv)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })
	return items, nil
}

func (m *mockStore) UpdateInventory(ctx context.Context, inv *domain.Inventory, entry *domain.InventoryHistory) error {
	if m.beforeUpdate != nil {
		m.beforeUpdate()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}

	stored, ok := m.inventory[inv.ProductID]
	if !ok || stored.Version != inv.Version {
		return port.ErrOptimisticLock
	}

	inv.Version++
	m.inventory[inv.ProductID] = *inv
	if entry != nil {
		entry.ID = m.id()
		m.history = append(m.history, *entry)
	}
	return nil
}

func (m *mockStore) ListHistory(ctx context.Context, productID int64, limit int) ([]domain.InventoryHistory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.InventoryHistory{}
	for i := len(m.history) - 1; i >= 0 && len(out) < limit; i-- {
		if m.history[i].ProductID == productID {
			out = append(out, m.history[i])
		}
	}
	return out, nil
}

// bump simulates another writer committing an update.
func (m *mockStore) bump(productID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv := m.inventory[productID]
	inv.Version++
	m.inventory[productID] = inv
}

func (m *mockStore) CreateSale(ctx context.Context, s *domain.Sale) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.ID = m.id()
	m.sales = append(m.sales, *s)
	return nil
}

func (m *mockStore) ListSales(ctx context.Context, filter domain.SaleFilter) ([]domain.Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastFilter = filter

	out := []domain.Sale{}
	for _, s := range m.sales {
		if filter.Start != nil && s.SaleDate.Before(*filter.Start) {
			continue
		}
		if filter.End != nil && s.SaleDate.After(*filter.End) {
			continue
		}
		if filter.ProductID != nil && s.ProductID != *filter.ProductID {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (m *mockStore) inRange(s domain.Sale, r domain.DateRange) bool {
	return !s.SaleDate.Before(r.Start) && !s.SaleDate.After(r.End)
}

func (m *mockStore) SumRevenue(ctx context.Context, r domain.DateRange, category string) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := decimal.Zero
	for _, s := range m.sales {
		if !m.inRange(s, r) {
			continue
		}
		if category != "" {
			p, ok := m.products[s.ProductID]
			if !ok || p.Category != category {
				continue
			}
		}
		total = total.Add(s.TotalAmount)
	}
	return total, nil
}

func (m *mockStore) RevenueBreakdown(ctx context.Context, r domain.DateRange, groupBy domain.GroupBy) ([]domain.RevenueGroup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sums := map[string]decimal.Decimal{}
	for _, s := range m.sales {
		p, ok := m.products[s.ProductID]
		if !ok || !m.inRange(s, r) {
			continue
		}
		var key string
		switch groupBy {
		case domain.GroupByCategory:
			key = p.Category
		case domain.GroupByName:
			key = p.Name
		default:
			return nil, fmt.Errorf("unsupported grouping %q", groupBy)
		}
		sums[key] = sums[key].Add(s.TotalAmount)
	}

	groups := []domain.RevenueGroup{}
	for k, v := range sums {
		groups = append(groups, domain.RevenueGroup{Group: k, Revenue: v})
	}
	return groups, nil
}

// Mock IdempotencyStore
type mockIdempotencyStore struct {
	mu   sync.Mutex
	keys map[string]bool
	err  error
}

func newMockIdempotencyStore() *mockIdempotencyStore {
	return &mockIdempotencyStore{keys: make(map[string]bool)}
}

func (m *mockIdempotencyStore) SetIdempotency(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	if m.keys[key] {
		return false, nil
	}
	m.keys[key] = true
	return true, nil
}

func (m *mockIdempotencyStore) ReleaseIdempotency(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	delete(m.keys, key)
	return nil
}

func (m *mockIdempotencyStore) Ping(ctx context.Context) error {
	return m.err
}
