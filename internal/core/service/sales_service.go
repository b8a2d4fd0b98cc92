package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rl1809/commerce-admin/internal/core/domain"
	"github.com/rl1809/commerce-admin/internal/port"
)

// SalesQuery filters a sales listing. Nil fields are not applied.
type SalesQuery struct {
	Start     *time.Time
	End       *time.Time
	ProductID *int64
	Skip      *int
	Limit     *int
}

type SalesService struct {
	sales    port.SalesRepository
	products port.ProductRepository
	settings Settings
	logger   *zap.Logger
	now      func() time.Time
}

func NewSalesService(sales port.SalesRepository, products port.ProductRepository, settings Settings, logger *zap.Logger) *SalesService {
	return &SalesService{
		sales:    sales,
		products: products,
		settings: settings,
		logger:   orNop(logger),
		now:      systemClock,
	}
}

// RecordSale stores a sale. Stock levels are not touched.
func (s *SalesService) RecordSale(ctx context.Context, in domain.SaleInput) (*domain.Sale, error) {
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

	saleDate := s.now()
	if in.SaleDate != nil {
		saleDate = domain.Timestamp(*in.SaleDate)
	}

	sale := &domain.Sale{
		ProductID:   in.ProductID,
		Quantity:    in.Quantity,
		UnitPrice:   in.UnitPrice,
		TotalAmount: in.Total(),
		SaleDate:    saleDate,
	}
	if err := s.sales.CreateSale(ctx, sale); err != nil {
		return nil, fmt.Errorf("record sale: %w", err)
	}

	s.logger.Info("sale recorded",
		zap.Int64("sale_id", sale.ID),
		zap.Int64("product_id", sale.ProductID),
		zap.String("total_amount", sale.TotalAmount.StringFixed(2)),
	)
	return sale, nil
}

func (s *SalesService) ListSales(ctx context.Context, q SalesQuery) ([]domain.Sale, error) {
	offset, size, err := s.settings.page(q.Skip, q.Limit)
	if err != nil {
		return nil, err
	}

	filter := domain.SaleFilter{ProductID: q.ProductID, Offset: offset, Limit: size}
	if q.Start != nil {
		start := domain.Timestamp(*q.Start)
		filter.Start = &start
	}
	if q.End != nil {
		end := domain.Timestamp(*q.End)
		filter.End = &end
	}
	if filter.Start != nil && filter.End != nil && filter.Start.After(*filter.End) {
		return nil, validationFailure("start_date", ErrMsgInvalidPeriod)
	}

	sales, err := s.sales.ListSales(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	return sales, nil
}

// ComparePeriods totals revenue in two inclusive periods, optionally limited
// to one category, and reports the first relative to the second.
func (s *SalesService) ComparePeriods(ctx context.Context, p1Start, p1End, p2Start, p2End time.Time, category string) (*domain.PeriodComparison, error) {
	errs := domain.ValidationErrors{}
	r1, err := domain.NewDateRange(p1Start, p1End)
	if err != nil {
		errs.Add("period_1", ErrMsgInvalidPeriod)
	}
	r2, err := domain.NewDateRange(p2Start, p2End)
	if err != nil {
		errs.Add("period_2", ErrMsgInvalidPeriod)
	}
	if !errs.Empty() {
		return nil, NewValidationError(errs)
	}

	rev1, err := s.sales.SumRevenue(ctx, r1, category)
	if err != nil {
		return nil, fmt.Errorf("period 1 revenue: %w", err)
	}
	rev2, err := s.sales.SumRevenue(ctx, r2, category)
	if err != nil {
		return nil, fmt.Errorf("period 2 revenue: %w", err)
	}

	cmp := domain.ComparePeriods(
		domain.PeriodRevenue{Start: r1.Start, End: r1.End, Revenue: rev1},
		domain.PeriodRevenue{Start: r2.Start, End: r2.End, Revenue: rev2},
	)
	return &cmp, nil
}

// RevenueBreakdown groups revenue in [start, end] by product category or
// name. An empty groupBy means category.
func (s *SalesService) RevenueBreakdown(ctx context.Context, start, end time.Time, groupBy string) ([]domain.RevenueGroup, error) {
	g, ok := domain.ParseGroupBy(groupBy)
	if !ok {
		return nil, validationFailure("group_by", ErrMsgUnsupportedGroupBy)
	}

	r, err := domain.NewDateRange(start, end)
	if err != nil {
		return nil, validationFailure("start_date", ErrMsgInvalidPeriod)
	}

	groups, err := s.sales.RevenueBreakdown(ctx, r, g)
	if err != nil {
		return nil, fmt.Errorf("revenue breakdown: %w", err)
	}
	return groups, nil
}
