package handlers

import (
	"net/http"

	deliverygw "fulfillment-platform/internal/gateway/delivery"
	"fulfillment-platform/internal/logx"
)

// DeliveryHandler handles HTTP requests for delivery resources.
type DeliveryHandler struct {
	usecase deliveryUsecase
	logger  logx.Logger
}

// NewDeliveryHandler creates a new DeliveryHandler.
func NewDeliveryHandler(logger logx.Logger, uc deliveryUsecase) *DeliveryHandler {
	return &DeliveryHandler{usecase: uc, logger: logger}
}

// Create handles POST /deliveries. Repeated calls for one order return the
// existing delivery with 200 instead of 201.
func (h *DeliveryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req deliverygw.CreateRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	d, created, err := h.usecase.Create(r.Context(), req.OrderID, req.UserID)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(h.logger, w, r, status, deliveryToResponse(*d))
}

// Cancel handles POST /deliveries/cancel.
func (h *DeliveryHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	var req deliverygw.CancelRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	d, err := h.usecase.Cancel(r.Context(), req.OrderID)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, deliveryToResponse(*d))
}

// Get handles GET /deliveries/{id}.
func (h *DeliveryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}

	d, err := h.usecase.Get(r.Context(), id)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, deliveryToResponse(*d))
}

// Delete handles DELETE /deliveries/{id} as a soft delete.
func (h *DeliveryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}

	d, err := h.usecase.SoftDelete(r.Context(), id)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, deliveryToResponse(*d))
}

// Restore handles POST /deliveries/{id}/restore.
func (h *DeliveryHandler) Restore(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}

	d, err := h.usecase.Restore(r.Context(), id)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, deliveryToResponse(*d))
}
