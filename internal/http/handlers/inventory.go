package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"fulfillment-platform/internal/apperr"
	"fulfillment-platform/internal/domain"
	invgw "fulfillment-platform/internal/gateway/inventory"
	"fulfillment-platform/internal/logx"
)

// InventoryHandler serves the stock ledger RPC and product admin endpoints.
type InventoryHandler struct {
	coord  coordinatorUsecase
	stock  stockUsecase
	logger logx.Logger
}

// NewInventoryHandler creates a new InventoryHandler.
func NewInventoryHandler(logger logx.Logger, coord coordinatorUsecase, stock stockUsecase) *InventoryHandler {
	return &InventoryHandler{coord: coord, stock: stock, logger: logger}
}

// Buy handles POST /inventory/buy.
// A reservation that fails part way is answered with 200 and success=false;
// products then lists the lines the caller must roll back.
func (h *InventoryHandler) Buy(w http.ResponseWriter, r *http.Request) {
	var req invgw.BuyRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	res, err := h.coord.BuyProducts(r.Context(), req.OrderID, invgw.LinesFromDTO(req.Lines))
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	resp := invgw.BuyResponse{
		Success:  res.Success,
		Reason:   res.Reason,
		Products: make([]invgw.ReservedLineDTO, 0, len(res.Lines)),
	}
	for _, l := range res.Lines {
		resp.Products = append(resp.Products, invgw.ReservedLineDTO{ProductID: l.ProductID, Quantity: l.Quantity, UnitPrice: l.UnitPrice})
	}
	writeJSON(h.logger, w, r, http.StatusOK, resp)
}

// Rollback handles POST /inventory/rollback.
func (h *InventoryHandler) Rollback(w http.ResponseWriter, r *http.Request) {
	var req invgw.RollbackRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	res, err := h.coord.Rollback(r.Context(), invgw.LinesFromDTO(req.Lines))
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, invgw.RollbackResponse{Success: res.Success, Message: res.Message})
}

// Restock handles POST /inventory/restock.
func (h *InventoryHandler) Restock(w http.ResponseWriter, r *http.Request) {
	var req invgw.RestockRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	res, err := h.coord.RestockProducts(r.Context(), req.OrderID, invgw.LinesFromDTO(req.Lines))
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, invgw.RestockResponse{Success: res.Success, Failed: res.Failed})
}

// Decrease handles POST /inventory/decrease.
func (h *InventoryHandler) Decrease(w http.ResponseWriter, r *http.Request) {
	var req invgw.LineDTO
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	// like buy, a missing product or short stock is an answer, not a failure
	var resp invgw.DecreaseResponse
	switch err := h.stock.Decrease(r.Context(), req.ProductID, req.Quantity); {
	case err == nil:
		resp = invgw.DecreaseResponse{Success: true, Message: "stock decreased"}
	case errors.Is(err, apperr.ErrNotFound):
		resp = invgw.DecreaseResponse{Message: "product not found"}
	case errors.Is(err, apperr.ErrInsufficientStock):
		resp = invgw.DecreaseResponse{Message: "insufficient stock"}
	default:
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, resp)
}

// CreateProduct handles POST /products.
func (h *InventoryHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	id, err := h.stock.CreateProduct(r.Context(), domain.Product{
		Name:      req.Name,
		Quantity:  req.Quantity,
		UnitPrice: req.UnitPrice,
		Active:    active,
	})
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	w.Header().Set("Location", "/products/"+strconv.FormatInt(id, 10))
	writeJSON(h.logger, w, r, http.StatusCreated, map[string]any{"id": id})
}

// GetProduct handles GET /products/{id}.
func (h *InventoryHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}

	p, err := h.stock.Product(r.Context(), id)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, productToResponse(*p))
}

// ListProducts handles GET /products.
func (h *InventoryHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := pagination(r)
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, err.Error())
		return
	}

	list, err := h.stock.Products(r.Context(), limit, offset)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	out := make([]productDTO, 0, len(list))
	for _, p := range list {
		out = append(out, productToResponse(p))
	}
	writeJSON(h.logger, w, r, http.StatusOK, out)
}

// RestockProduct handles POST /products/{id}/restock, an operator top-up.
func (h *InventoryHandler) RestockProduct(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}
	var req quantityRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	found, err := h.stock.Restock(r.Context(), id, req.Quantity)
	switch {
	case err != nil:
		writeAppError(h.logger, w, r, err)
	case !found:
		writeError(h.logger, w, r, http.StatusNotFound, "not found")
	default:
		writeJSON(h.logger, w, r, http.StatusOK, map[string]string{"status": "ok"})
	}
}
