package handlers

import (
	"errors"
	"net/http"

	"fablink/db"
	"fablink/internal/errs"
	"fablink/internal/validation"
	"fablink/models"
)

func (h *Handler) CreateRequestOrderHandler(w http.ResponseWriter, r *http.Request) {
	p := principal(r)

	var req models.RequestOrderRequest
	if err := validation.DecodeAndValidate(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	phase, _ := models.ParsePhase(req.Phase)

	order, err := h.ownOrder(r, req.OrderID)
	var httpErr *errs.HTTPError
	if errors.Is(err, db.ErrNotFound) || errors.As(err, &httpErr) {
		writeError(w, r, errs.NewBadRequestError("Validation failed", []errs.FieldError{
			{Field: "orderId", Error: "unknown order"},
		}))
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	designer, err := h.Store.GetAccount(r.Context(), models.KindDesigner, p.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	ro := &models.RequestOrder{
		OrderID:       order.OrderID,
		DesignerName:  designer.Name,
		ProductName:   order.ProductName,
		Quantity:      req.Quantity,
		DueDate:       req.DueDate,
		WorkSheetPath: req.WorkSheetPath,
		Phase:         phase,
		DesignerID:    p.ID,
	}
	if err := h.Store.CreateRequestOrder(r.Context(), ro); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ro)
}

// ListRequestOrdersHandler дизайнер видит свои запросы, фабрика открытые
func (h *Handler) ListRequestOrdersHandler(w http.ResponseWriter, r *http.Request) {
	p := principal(r)
	params := parsePaginationParams(r)

	var (
		list []models.RequestOrder
		err  error
	)
	if p.Kind == models.KindFactory {
		list, err = h.Store.ListOpenRequestOrders(r.Context(), params.Limit, params.Offset)
	} else {
		list, err = h.Store.ListDesignerRequestOrders(r.Context(), p.ID, params.Limit, params.Offset)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// visibleRequestOrder запрос доступен дизайнеру-владельцу и любой фабрике
func (h *Handler) visibleRequestOrder(r *http.Request) (*models.RequestOrder, error) {
	id, err := idParam(r, "requestOrderId")
	if err != nil {
		return nil, err
	}
	ro, err := h.Store.GetRequestOrder(r.Context(), id)
	if err != nil {
		return nil, err
	}
	p := principal(r)
	if p.Kind == models.KindDesigner && ro.DesignerID != p.ID {
		return nil, errs.NewNotFoundError("Request order not found")
	}
	return ro, nil
}

func (h *Handler) GetRequestOrderHandler(w http.ResponseWriter, r *http.Request) {
	ro, err := h.visibleRequestOrder(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ro)
}

// ListRequestOrderBidsHandler ставки на запрос, только для владельца
func (h *Handler) ListRequestOrderBidsHandler(w http.ResponseWriter, r *http.Request) {
	ro, err := h.visibleRequestOrder(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	bids, err := h.Store.ListRequestOrderBids(r.Context(), ro.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bids)
}
