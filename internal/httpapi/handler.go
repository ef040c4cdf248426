// Package httpapi is the order intake layer: it validates requests, creates
// PENDING orders, hands them to the saga orchestrator, and persists the
// mutated order when the saga returns.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shopsphere/order-saga/internal/order"
	"github.com/shopsphere/order-saga/internal/saga"
)

// SagaExecutor runs the order saga to completion or compensated failure.
type SagaExecutor interface {
	Execute(ctx context.Context, ord *order.Order) (bool, error)
}

// Handler handles incoming HTTP requests for the order domain.
type Handler struct {
	orders    order.Repository
	saga      SagaExecutor
	sagaStore saga.Store
}

// NewHandler initializes the handler with the order repository, the saga
// orchestrator and the saga state store used for status polling.
func NewHandler(orders order.Repository, exec SagaExecutor, store saga.Store) *Handler {
	return &Handler{
		orders:    orders,
		saga:      exec,
		sagaStore: store,
	}
}

// CreateOrder validates the request, persists a PENDING order, and triggers
// the saga in the background.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	if req.UserID == "" || len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "user_id and items are required")
		return
	}

	items := make([]order.Item, 0, len(req.Items))
	for _, it := range req.Items {
		if it.ProductID == "" || it.Quantity <= 0 {
			writeError(w, http.StatusBadRequest, "invalid_item", "product_id and a positive quantity are required")
			return
		}
		items = append(items, order.Item{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	addr := order.ShippingAddress{
		Street:  req.ShippingAddress.Street,
		City:    req.ShippingAddress.City,
		State:   req.ShippingAddress.State,
		ZipCode: req.ShippingAddress.ZipCode,
		Country: req.ShippingAddress.Country,
	}
	if addr.Country == "" {
		addr.Country = "USA"
	}

	ord := order.New(req.UserID, items, addr, req.Notes)

	if err := h.orders.Save(r.Context(), ord); err != nil {
		writeError(w, http.StatusInternalServerError, "order_store_error", err.Error())
		return
	}

	slog.InfoContext(r.Context(), "order created", "order_id", ord.ID, "order_number", ord.OrderNumber, "user_id", ord.UserID)

	// Snapshot the response before the saga starts: the orchestrator owns the
	// order exclusively while the saga runs, so it must not be read after the
	// goroutine is launched.
	resp := mapOrderToResponse(ord)

	// Detach from the request context so the saga is not cancelled when the
	// HTTP response is sent, while still propagating tracing metadata.
	sagaCtx := context.WithoutCancel(r.Context())
	go h.runOrderSaga(sagaCtx, ord)

	writeJSON(w, http.StatusCreated, resp)
}

// GetOrderByID retrieves a single order by its id.
func (h *Handler) GetOrderByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ord, err := h.orders.Get(r.Context(), id)
	if errors.Is(err, order.ErrNotFound) {
		writeError(w, http.StatusNotFound, "order_not_found", "")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "order_store_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, mapOrderToResponse(ord))
}

// ListOrders lists a user's orders. The user_id query parameter is required.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id_required", "")
		return
	}
	list, err := h.orders.ListByUser(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "order_store_error", err.Error())
		return
	}
	out := make([]OrderResponse, len(list))
	for i, o := range list {
		out[i] = mapOrderToResponse(o)
	}
	writeJSON(w, http.StatusOK, out)
}

// GetSagaByID exposes saga progress for status polling.
func (h *Handler) GetSagaByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	st, err := h.sagaStore.Get(r.Context(), id)
	if errors.Is(err, saga.ErrNotFound) {
		writeError(w, http.StatusNotFound, "saga_not_found", "")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "saga_store_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// Health is the liveness probe.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// runOrderSaga drives the saga and persists the mutated order afterwards.
// The orchestrator itself never touches storage.
func (h *Handler) runOrderSaga(ctx context.Context, ord *order.Order) {
	ok, err := h.saga.Execute(ctx, ord)
	if err != nil {
		slog.WarnContext(ctx, "order saga failed",
			"order_id", ord.ID,
			"request_id", RequestIDFromContext(ctx),
			"error", err,
		)
	}

	if saveErr := h.orders.Save(ctx, ord); saveErr != nil {
		slog.ErrorContext(ctx, "failed to persist order after saga",
			"order_id", ord.ID,
			"saga_ok", ok,
			"error", saveErr,
		)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: msg,
	})
}
