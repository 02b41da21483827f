package handlers

import (
	"net/http"

	"fablink/internal/errs"
	"fablink/internal/validation"
	"fablink/models"
)

// ownProduct изделие текущего дизайнера; чужое выглядит как несуществующее
func (h *Handler) ownProduct(r *http.Request) (*models.Product, error) {
	id, err := idParam(r, "productId")
	if err != nil {
		return nil, err
	}
	product, err := h.Store.GetProduct(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if product.DesignerID != principal(r).ID {
		return nil, errs.NewNotFoundError("Product not found")
	}
	return product, nil
}

func (h *Handler) CreateProductHandler(w http.ResponseWriter, r *http.Request) {
	var req models.ProductRequest
	if err := validation.DecodeAndValidate(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	product := &models.Product{DesignerID: principal(r).ID}
	req.Apply(product)
	if err := h.Store.CreateProduct(r.Context(), product); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

func (h *Handler) ListProductsHandler(w http.ResponseWriter, r *http.Request) {
	params := parsePaginationParams(r)

	products, err := h.Store.ListDesignerProducts(r.Context(), principal(r).ID, params.Limit, params.Offset)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *Handler) GetProductHandler(w http.ResponseWriter, r *http.Request) {
	product, err := h.ownProduct(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *Handler) UpdateProductHandler(w http.ResponseWriter, r *http.Request) {
	product, err := h.ownProduct(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req models.ProductRequest
	if err := validation.DecodeAndValidate(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	req.Apply(product)
	if err := h.Store.UpdateProduct(r.Context(), product); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *Handler) DeleteProductHandler(w http.ResponseWriter, r *http.Request) {
	product, err := h.ownProduct(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Store.DeleteProduct(r.Context(), product.ID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateScheduleHandler тираж не меньше 100, срок строго после сегодняшнего дня
func (h *Handler) UpdateScheduleHandler(w http.ResponseWriter, r *http.Request) {
	product, err := h.ownProduct(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	req := models.ScheduleRequest{Today: h.today()}
	if err := validation.DecodeAndValidate(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	updated, err := h.Store.UpdateProductSchedule(r.Context(), product.ID, req.Quantity, req.DueDate)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
