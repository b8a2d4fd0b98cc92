package service

import (
	"time"

	"go.uber.org/zap"

	"github.com/rl1809/commerce-admin/internal/core/domain"
)

const (
	DefaultHistoryLimit = 100
	MaxHistoryLimit     = 1000
)

type Settings struct {
	DefaultPageSize          int
	MaxPageSize              int
	DefaultLowStockThreshold int
}

func DefaultSettings() Settings {
	return Settings{
		DefaultPageSize:          100,
		MaxPageSize:              100,
		DefaultLowStockThreshold: 10,
	}
}

// page resolves optional skip/limit query values. An oversized limit is
// clamped rather than rejected.
func (s Settings) page(skip, limit *int) (offset, size int, err error) {
	errs := domain.ValidationErrors{}

	if skip != nil {
		if *skip < 0 {
			errs.Add("skip", "skip cannot be negative")
		} else {
			offset = *skip
		}
	}

	size = s.DefaultPageSize
	if limit != nil {
		if *limit < 1 {
			errs.Add("limit", "limit must be at least 1")
		} else {
			size = *limit
		}
	}
	if size > s.MaxPageSize {
		size = s.MaxPageSize
	}

	if !errs.Empty() {
		return 0, 0, NewValidationError(errs)
	}
	return offset, size, nil
}

func historyLimit(limit *int) (int, error) {
	if limit == nil {
		return DefaultHistoryLimit, nil
	}
	if *limit < 1 {
		return 0, validationFailure("limit", "limit must be at least 1")
	}
	if *limit > MaxHistoryLimit {
		return MaxHistoryLimit, nil
	}
	return *limit, nil
}

func systemClock() time.Time {
	return domain.Timestamp(time.Now())
}

func orNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
