package handlers

import (
	"net/http"

	"fulfillment-platform/internal/domain"
	"fulfillment-platform/internal/logx"
)

// OrderHandler serves order ledger endpoints.
type OrderHandler struct {
	uc     orderUsecase
	logger logx.Logger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(logger logx.Logger, uc orderUsecase) *OrderHandler {
	return &OrderHandler{uc: uc, logger: logger}
}

// Create handles POST /orders.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	o, err := h.uc.Create(r.Context(), req.toModel())
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	w.Header().Set("Location", "/orders/"+o.ID)
	writeJSON(h.logger, w, r, http.StatusCreated, orderToResponse(*o))
}

// Get handles GET /orders/{id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := keyFromURL(r, "id")
	if !ok {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}

	o, err := h.uc.Get(r.Context(), id)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, orderToResponse(*o))
}

// Cancel handles POST /orders/{id}/cancel.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := keyFromURL(r, "id")
	if !ok {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}

	o, err := h.uc.Cancel(r.Context(), id)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, orderToResponse(*o))
}

// Persisted handles GET /orders/{id}/persisted, probed by inventory sagas.
func (h *OrderHandler) Persisted(w http.ResponseWriter, r *http.Request) {
	id, ok := keyFromURL(r, "id")
	if !ok {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}

	persisted, err := h.uc.IsPersisted(r.Context(), id)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, persistedResponse{Persisted: persisted})
}

// Canceled handles GET /orders/{id}/canceled, probed by restock sagas.
func (h *OrderHandler) Canceled(w http.ResponseWriter, r *http.Request) {
	id, ok := keyFromURL(r, "id")
	if !ok {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}

	canceled, err := h.uc.IsCanceled(r.Context(), id)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, canceledResponse{Canceled: canceled})
}

// UpdateStatus handles PUT /orders/{id}/status.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := keyFromURL(r, "id")
	if !ok {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}
	var req updateStatusRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	o, err := h.uc.UpdateStatus(r.Context(), id, domain.OrderStatus(req.Status))
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, orderToResponse(*o))
}
