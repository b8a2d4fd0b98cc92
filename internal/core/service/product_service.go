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

type ProductService struct {
	products port.ProductRepository
	settings Settings
	logger   *zap.Logger
	now      func() time.Time
}

func NewProductService(products port.ProductRepository, settings Settings, logger *zap.Logger) *ProductService {
	return &ProductService{
		products: products,
		settings: settings,
		logger:   orNop(logger),
		now:      systemClock,
	}
}

func (s *ProductService) Create(ctx context.Context, in domain.ProductInput) (*domain.Product, error) {
	if errs := in.Validate(); !errs.Empty() {
		return nil, NewValidationError(errs)
	}

	now := s.now()
	p := &domain.Product{CreatedAt: now, UpdatedAt: now}
	in.ApplyTo(p)

	if err := s.products.CreateProduct(ctx, p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.logger.Info("product created", zap.Int64("product_id", p.ID), zap.String("category", p.Category))
	return p, nil
}

func (s *ProductService) List(ctx context.Context, skip, limit *int) ([]domain.Product, error) {
	offset, size, err := s.settings.page(skip, limit)
	if err != nil {
		return nil, err
	}

	products, err := s.products.ListProducts(ctx, offset, size)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (s *ProductService) Get(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := s.products.GetProduct(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	return p, nil
}

// Update replaces every writable field of the product.
func (s *ProductService) Update(ctx context.Context, id int64, in domain.ProductInput) (*domain.Product, error) {
	if errs := in.Validate(); !errs.Empty() {
		return nil, NewValidationError(errs)
	}

	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	in.ApplyTo(p)
	p.UpdatedAt = s.now()

	err = s.products.UpdateProduct(ctx, p)
	if errors.Is(err, port.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	s.logger.Info("product updated", zap.Int64("product_id", p.ID))
	return p, nil
}

func (s *ProductService) Delete(ctx context.Context, id int64) error {
	err := s.products.DeleteProduct(ctx, id)
	if errors.Is(err, port.ErrNotFound) {
		return ErrProductNotFound
	}
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	s.logger.Info("product deleted", zap.Int64("product_id", id))
	return nil
}
