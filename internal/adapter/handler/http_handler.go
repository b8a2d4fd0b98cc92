package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/rl1809/commerce-admin/internal/core/domain"
	"github.com/rl1809/commerce-admin/internal/core/service"
)

const welcomeMessage = "Welcome to E-commerce Admin API"

type HTTPHandler struct {
	productService   *service.ProductService
	inventoryService *service.InventoryService
	salesService     *service.SalesService
	guard            *service.IdempotencyGuard
	health           *GRPCHandler
	logger           *zap.Logger
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Detail string            `json:"detail"`
	Errors map[string]string `json:"errors,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func NewHTTPHandler(
	productService *service.ProductService,
	inventoryService *service.InventoryService,
	salesService *service.SalesService,
	guard *service.IdempotencyGuard,
	health *GRPCHandler,
	logger *zap.Logger,
) *HTTPHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPHandler{
		productService:   productService,
		inventoryService: inventoryService,
		salesService:     salesService,
		guard:            guard,
		health:           health,
		logger:           logger,
	}
}

// Routes builds the full HTTP handler: routing, request ids, access logging
// and CORS.
func (h *HTTPHandler) Routes(corsOrigins []string) http.Handler {
	router := mux.NewRouter()
	router.Use(requestIDMiddleware, h.accessLogMiddleware)
	h.RegisterRoutes(router)
	return newCORS(corsOrigins).Handler(router)
}

func (h *HTTPHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/", h.Root).Methods(http.MethodGet)
	router.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(h.idempotencyMiddleware)
	for _, r := range []*mux.Router{router, api} {
		r.NotFoundHandler = http.HandlerFunc(notFound)
		r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)
	}

	api.HandleFunc("/products", h.ListProducts).Methods(http.MethodGet)
	api.HandleFunc("/products", h.CreateProduct).Methods(http.MethodPost)
	api.HandleFunc("/products/{id}", h.GetProduct).Methods(http.MethodGet)
	api.HandleFunc("/products/{id}", h.UpdateProduct).Methods(http.MethodPut)
	api.HandleFunc("/products/{id}", h.DeleteProduct).Methods(http.MethodDelete)

	api.HandleFunc("/inventory", h.CreateInventory).Methods(http.MethodPost)
	api.HandleFunc("/inventory/low-stock", h.ListLowStock).Methods(http.MethodGet)
	api.HandleFunc("/inventory/status/{product_id}", h.GetInventoryStatus).Methods(http.MethodGet)
	api.HandleFunc("/inventory/history/{product_id}", h.GetInventoryHistory).Methods(http.MethodGet)
	api.HandleFunc("/inventory/{product_id}", h.UpdateInventory).Methods(http.MethodPut)

	api.HandleFunc("/sales", h.ListSales).Methods(http.MethodGet)
	api.HandleFunc("/sales", h.RecordSale).Methods(http.MethodPost)
	api.HandleFunc("/sales/compare-periods", h.ComparePeriods).Methods(http.MethodGet)
	api.HandleFunc("/sales/revenue/breakdown", h.RevenueBreakdown).Methods(http.MethodGet)
}

func (h *HTTPHandler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, MessageResponse{Message: welcomeMessage})
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		if err := h.health.Check(r.Context()); err != nil {
			h.logger.Warn("health check failed",
				zap.String("request_id", requestIDFrom(r.Context())),
				zap.Error(err),
			)
			detail := "unavailable"
			var depErr *DependencyError
			if errors.As(err, &depErr) {
				detail = depErr.Name + ": unavailable"
			}
			writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable", Detail: detail})
			return
		}
	}
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func notFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, ErrorResponse{Detail: "Not Found"})
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Detail: "Method Not Allowed"})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError maps a service error onto its HTTP status. Unclassified errors
// are logged and reported without their cause.
func (h *HTTPHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var svcErr *service.Error
	if !errors.As(err, &svcErr) {
		h.logger.Error("request failed",
			zap.String("request_id", requestIDFrom(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Detail: service.ErrMsgDatabaseOperation})
		return
	}

	switch svcErr.Kind {
	case service.KindNotFound:
		writeJSON(w, http.StatusNotFound, ErrorResponse{Detail: svcErr.Message})
	case service.KindValidation:
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Detail: svcErr.Message, Errors: svcErr.Fields})
	case service.KindConflict:
		writeJSON(w, http.StatusConflict, ErrorResponse{Detail: svcErr.Message})
	default:
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Detail: service.ErrMsgDatabaseOperation})
	}
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Detail: message})
}

func decodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// pathID reads a positive integer path variable.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		return 0, invalidParam(name, "must be a positive integer")
	}
	return id, nil
}

func invalidParam(name, message string) error {
	return service.NewValidationError(domain.ValidationErrors{name: name + " " + message})
}
