package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rl1809/commerce-admin/internal/core/domain"
)

var (
	insertSaleQuery = `
		INSERT INTO sales (product_id, quantity, unit_price, total_amount, sale_date)
		VALUES (:product_id, :quantity, :unit_price, :total_amount, :sale_date)`
	sumRevenueQuery = `
		SELECT COALESCE(SUM(total_amount), 0)
		FROM sales
		WHERE sale_date BETWEEN ? AND ?`
	sumCategoryRevenueQuery = `
		SELECT COALESCE(SUM(s.total_amount), 0)
		FROM sales s
		JOIN products p ON p.id = s.product_id
		WHERE p.category = ? AND s.sale_date BETWEEN ? AND ?`
)

// Keyed by the closed set of groupings so no caller input reaches the SQL text.
var revenueBreakdownQueries = map[domain.GroupBy]string{
	domain.GroupByCategory: `
		SELECT p.category AS group_key, SUM(s.total_amount) AS revenue
		FROM sales s
		JOIN products p ON p.id = s.product_id
		WHERE s.sale_date BETWEEN ? AND ?
		GROUP BY p.category`,
	domain.GroupByName: `
		SELECT p.name AS group_key, SUM(s.total_amount) AS revenue
		FROM sales s
		JOIN products p ON p.id = s.product_id
		WHERE s.sale_date BETWEEN ? AND ?
		GROUP BY p.name`,
}

func (a *SQLAdapter) CreateSale(ctx context.Context, s *domain.Sale) error {
	result, err := a.db.NamedExecContext(ctx, insertSaleQuery, s)
	if err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("sale id: %w", err)
	}
	s.ID = id
	return nil
}

func (a *SQLAdapter) ListSales(ctx context.Context, filter domain.SaleFilter) ([]domain.Sale, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.Start != nil {
		where = append(where, "sale_date >= ?")
		args = append(args, *filter.Start)
	}
	if filter.End != nil {
		where = append(where, "sale_date <= ?")
		args = append(args, *filter.End)
	}
	if filter.ProductID != nil {
		where = append(where, "product_id = ?")
		args = append(args, *filter.ProductID)
	}

	var q strings.Builder
	q.WriteString("SELECT id, COALESCE(product_id, 0) AS product_id, quantity, unit_price, total_amount, sale_date FROM sales")
	if len(where) > 0 {
		q.WriteString(" WHERE ")
		q.WriteString(strings.Join(where, " AND "))
	}
	q.WriteString(" ORDER BY sale_date, id LIMIT ? OFFSET ?")
	args = append(args, filter.Limit, filter.Offset)

	sales := []domain.Sale{}
	if err := a.db.SelectContext(ctx, &sales, q.String(), args...); err != nil {
		return nil, fmt.Errorf("query sales: %w", err)
	}
	return sales, nil
}

func (a *SQLAdapter) SumRevenue(ctx context.Context, r domain.DateRange, category string) (decimal.Decimal, error) {
	var (
		total decimal.Decimal
		err   error
	)
	if category == "" {
		err = a.db.GetContext(ctx, &total, sumRevenueQuery, r.Start, r.End)
	} else {
		err = a.db.GetContext(ctx, &total, sumCategoryRevenueQuery, category, r.Start, r.End)
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum revenue: %w", err)
	}
	// SQLite sums DECIMAL columns as floats.
	return total.Round(2), nil
}

func (a *SQLAdapter) RevenueBreakdown(ctx context.Context, r domain.DateRange, groupBy domain.GroupBy) ([]domain.RevenueGroup, error) {
	query, ok := revenueBreakdownQueries[groupBy]
	if !ok {
		return nil, fmt.Errorf("unsupported grouping %q", groupBy)
	}

	groups := []domain.RevenueGroup{}
	if err := a.db.SelectContext(ctx, &groups, query, r.Start, r.End); err != nil {
		return nil, fmt.Errorf("query revenue breakdown: %w", err)
	}
	for i := range groups {
		groups[i].Revenue = groups[i].Revenue.Round(2)
	}
	return groups, nil
}
