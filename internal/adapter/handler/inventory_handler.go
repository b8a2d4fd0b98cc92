package handler

import (
	"net/http"

	"github.com/rl1809/commerce-admin/internal/core/domain"
)

func (h *HTTPHandler) ListLowStock(w http.ResponseWriter, r *http.Request) {
	items, err := h.inventoryService.ListLowStock(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *HTTPHandler) GetInventoryStatus(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "product_id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	inv, err := h.inventoryService.GetStatus(r.Context(), productID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (h *HTTPHandler) CreateInventory(w http.ResponseWriter, r *http.Request) {
	var req domain.InventoryInput
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	inv, err := h.inventoryService.Create(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, inv)
}

func (h *HTTPHandler) UpdateInventory(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "product_id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req domain.InventoryUpdate
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	inv, err := h.inventoryService.Update(r.Context(), productID, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (h *HTTPHandler) GetInventoryHistory(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "product_id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	q := newQueryParams(r)
	limit := q.optionalInt("limit")
	if err := q.err(); err != nil {
		h.writeError(w, r, err)
		return
	}

	history, err := h.inventoryService.History(r.Context(), productID, limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}
