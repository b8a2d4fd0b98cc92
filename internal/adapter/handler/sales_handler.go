package handler

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/rl1809/commerce-admin/internal/core/domain"
	"github.com/rl1809/commerce-admin/internal/core/service"
)

type RecordSaleRequest struct {
	ProductID   int64            `json:"product_id"`
	Quantity    int              `json:"quantity"`
	UnitPrice   decimal.Decimal  `json:"unit_price"`
	TotalAmount *decimal.Decimal `json:"total_amount"`
	SaleDate    *flexibleTime    `json:"sale_date"`
}

func (req RecordSaleRequest) input() domain.SaleInput {
	in := domain.SaleInput{
		ProductID:   req.ProductID,
		Quantity:    req.Quantity,
		UnitPrice:   req.UnitPrice,
		TotalAmount: req.TotalAmount,
	}
	if req.SaleDate != nil && !req.SaleDate.IsZero() {
		t := req.SaleDate.Time
		in.SaleDate = &t
	}
	return in
}

func (h *HTTPHandler) RecordSale(w http.ResponseWriter, r *http.Request) {
	var req RecordSaleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	sale, err := h.salesService.RecordSale(r.Context(), req.input())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sale)
}

func (h *HTTPHandler) ListSales(w http.ResponseWriter, r *http.Request) {
	q := newQueryParams(r)
	query := service.SalesQuery{
		Start:     q.optionalTime("start_date"),
		End:       q.optionalTime("end_date"),
		ProductID: q.optionalInt64("product_id"),
		Skip:      q.optionalInt("skip"),
		Limit:     q.optionalInt("limit"),
	}
	if err := q.err(); err != nil {
		h.writeError(w, r, err)
		return
	}

	sales, err := h.salesService.ListSales(r.Context(), query)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sales)
}

func (h *HTTPHandler) ComparePeriods(w http.ResponseWriter, r *http.Request) {
	q := newQueryParams(r)
	p1Start := q.requiredTime("period_1_start")
	p1End := q.requiredTime("period_1_end")
	p2Start := q.requiredTime("period_2_start")
	p2End := q.requiredTime("period_2_end")
	if err := q.err(); err != nil {
		h.writeError(w, r, err)
		return
	}

	cmp, err := h.salesService.ComparePeriods(r.Context(), p1Start, p1End, p2Start, p2End, q.str("category"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cmp)
}

func (h *HTTPHandler) RevenueBreakdown(w http.ResponseWriter, r *http.Request) {
	q := newQueryParams(r)
	start := q.requiredTime("start_date")
	end := q.requiredTime("end_date")
	if err := q.err(); err != nil {
		h.writeError(w, r, err)
		return
	}

	groups, err := h.salesService.RevenueBreakdown(r.Context(), start, end, q.str("group_by"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}
