package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrInvalidDateRange = errors.New("start must not be after end")

type GroupBy string

const (
	GroupByCategory GroupBy = "category"
	GroupByName     GroupBy = "name"
)

func ParseGroupBy(s string) (GroupBy, bool) {
	switch GroupBy(s) {
	case "":
		return GroupByCategory, true
	case GroupByCategory, GroupByName:
		return GroupBy(s), true
	}
	return "", false
}

// DateRange is inclusive on both ends.
type DateRange struct {
	Start time.Time
	End   time.Time
}

func NewDateRange(start, end time.Time) (DateRange, error) {
	r := DateRange{Start: Timestamp(start), End: Timestamp(end)}
	if r.Start.After(r.End) {
		return DateRange{}, ErrInvalidDateRange
	}
	return r, nil
}

type PeriodRevenue struct {
	Start   time.Time       `json:"start"`
	End     time.Time       `json:"end"`
	Revenue decimal.Decimal `json:"revenue"`
}

type PeriodComparison struct {
	Period1          PeriodRevenue   `json:"period_1"`
	Period2          PeriodRevenue   `json:"period_2"`
	Difference       decimal.Decimal `json:"difference"`
	PercentageChange decimal.Decimal `json:"percentage_change"`
}

var hundred = decimal.NewFromInt(100)

// ComparePeriods reports p1 relative to p2. The percentage is 0 when p2 has no
// revenue.
func ComparePeriods(p1, p2 PeriodRevenue) PeriodComparison {
	diff := p1.Revenue.Sub(p2.Revenue)

	pct := decimal.Zero
	if !p2.Revenue.IsZero() {
		pct = diff.Div(p2.Revenue).Mul(hundred).Round(2)
	}

	return PeriodComparison{
		Period1:          p1,
		Period2:          p2,
		Difference:       diff,
		PercentageChange: pct,
	}
}

// RevenueGroup is one row of a revenue breakdown. Rows come back in no
// particular order.
type RevenueGroup struct {
	Group   string          `db:"group_key" json:"group"`
	Revenue decimal.Decimal `db:"revenue" json:"revenue"`
}
