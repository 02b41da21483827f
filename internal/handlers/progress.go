package handlers

import (
	"net/http"
	"strconv"

	"fablink/internal/errs"
	"fablink/internal/mirror"
	"fablink/internal/validation"
	"fablink/models"

	"github.com/go-chi/chi/v5"
)

func stepIndexParam(r *http.Request) (int, error) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 1 {
		return 0, errs.NewBadRequestError("Invalid step index", nil)
	}
	return index, nil
}

func stepUpdate(req *models.StepUpdateRequest) mirror.StepUpdate {
	upd := mirror.StepUpdate{
		Status:        req.Status,
		DeliveryCode:  req.DeliveryCode,
		OverallStatus: req.OverallStatus,
	}
	if req.EndDate != nil && !req.EndDate.IsZero() {
		end := req.EndDate.String()
		upd.EndDate = &end
	}
	return upd
}

// ownedOrderID id заказа из пути, принадлежащего текущему дизайнеру
func (h *Handler) ownedOrderID(r *http.Request) (int64, error) {
	id, err := idParam(r, "orderId")
	if err != nil {
		return 0, err
	}
	if _, err := h.ownOrder(r, id); err != nil {
		return 0, err
	}
	return id, nil
}

func (h *Handler) GetDesignerProgressHandler(w http.ResponseWriter, r *http.Request) {
	orderID, err := h.ownedOrderID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	doc, err := h.Progress.DesignerOrder(r.Context(), orderID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *Handler) UpdateDesignerStepHandler(w http.ResponseWriter, r *http.Request) {
	orderID, err := h.ownedOrderID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	index, err := stepIndexParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req models.StepUpdateRequest
	if err := validation.DecodeAndValidate(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.Progress.UpdateDesignerStep(r.Context(), orderID, index, stepUpdate(&req)); err != nil {
		writeError(w, r, err)
		return
	}
	doc, err := h.Progress.DesignerOrder(r.Context(), orderID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *Handler) AddFeedbackHandler(w http.ResponseWriter, r *http.Request) {
	orderID, err := h.ownedOrderID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req models.FeedbackRequest
	if err := validation.DecodeAndValidate(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.Progress.AddDesignerFeedback(r.Context(), orderID, req.Message); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Feedback added"})
}

func (h *Handler) ListFactoryProgressHandler(w http.ResponseWriter, r *http.Request) {
	docs, err := h.Progress.FactoryOrders(r.Context(), principal(r).ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

// UpdateFactoryStepHandler phase берётся из query, по умолчанию sample
func (h *Handler) UpdateFactoryStepHandler(w http.ResponseWriter, r *http.Request) {
	orderID, err := idParam(r, "orderId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	index, err := stepIndexParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	phase, ok := models.ParsePhase(r.URL.Query().Get("phase"))
	if !ok {
		writeError(w, r, errs.NewBadRequestError("Invalid phase", nil))
		return
	}

	var req models.StepUpdateRequest
	if err := validation.DecodeAndValidate(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	err = h.Progress.UpdateFactoryStep(r.Context(), orderID, phase, principal(r).ID, index, stepUpdate(&req))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Step updated"})
}
