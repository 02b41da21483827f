package handlers

import (
	"errors"
	"net/http"

	"fablink/db"
	"fablink/internal/errs"
	"fablink/internal/validation"
	"fablink/models"
)

// ownOrder заказ текущего дизайнера
func (h *Handler) ownOrder(r *http.Request, orderID int64) (*models.Order, error) {
	order, err := h.Store.GetOrder(r.Context(), orderID)
	if err != nil {
		return nil, err
	}
	if order.DesignerID != principal(r).ID {
		return nil, errs.NewNotFoundError("Order not found")
	}
	return order, nil
}

func (h *Handler) CreateOrderHandler(w http.ResponseWriter, r *http.Request) {
	p := principal(r)

	var req models.OrderRequest
	if err := validation.DecodeAndValidate(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	product, err := h.Store.GetProduct(r.Context(), req.ProductID)
	if errors.Is(err, db.ErrNotFound) || (err == nil && product.DesignerID != p.ID) {
		writeError(w, r, errs.NewBadRequestError("Validation failed", []errs.FieldError{
			{Field: "productId", Error: "unknown product"},
		}))
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	order := &models.Order{ProductID: product.ID}
	if err := h.Store.CreateOrder(r.Context(), order); err != nil {
		writeError(w, r, err)
		return
	}
	order.DesignerID = p.ID
	order.ProductName = product.Name

	h.mirrorOrder(r.Context(), models.OrderSnapshot{
		OrderID:    order.OrderID,
		DesignerID: p.ID,
		ProductID:  product.ID,
	})

	writeJSON(w, http.StatusCreated, order)
}

func (h *Handler) ListOrdersHandler(w http.ResponseWriter, r *http.Request) {
	params := parsePaginationParams(r)

	orders, err := h.Store.ListDesignerOrders(r.Context(), principal(r).ID, params.Limit, params.Offset)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) GetOrderHandler(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "orderId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	order, err := h.ownOrder(r, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}
