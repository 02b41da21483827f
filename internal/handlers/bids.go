package handlers

import (
	"errors"
	"net/http"

	"fablink/db"
	"fablink/internal/errs"
	"fablink/internal/logger"
	"fablink/internal/validation"
	"fablink/models"

	"go.uber.org/zap"
)

type matchResponse struct {
	Bid           *models.BidFactory `json:"bid"`
	CancelledBids int64              `json:"cancelledBids"`
}

func (h *Handler) CreateBidHandler(w http.ResponseWriter, r *http.Request) {
	p := principal(r)

	var req models.BidRequest
	if err := validation.DecodeAndValidate(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if _, err := h.Store.GetRequestOrder(r.Context(), req.RequestOrderID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			err = errs.NewBadRequestError("Validation failed", []errs.FieldError{
				{Field: "requestOrderId", Error: "unknown request order"},
			})
		}
		writeError(w, r, err)
		return
	}

	bid := &models.BidFactory{
		FactoryID:      p.ID,
		RequestOrderID: req.RequestOrderID,
		WorkPrice:      req.WorkPrice,
		ExpectWorkDay:  req.ExpectWorkDay,
	}
	if err := h.Store.CreateBid(r.Context(), bid); err != nil {
		if errors.Is(err, db.ErrConflict) {
			err = errs.NewConflictError("Factory has already bid on this request order")
		}
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, bid)
}

func (h *Handler) ListBidsHandler(w http.ResponseWriter, r *http.Request) {
	params := parsePaginationParams(r)

	bids, err := h.Store.ListFactoryBids(r.Context(), principal(r).ID, params.Limit, params.Offset)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bids)
}

func (h *Handler) bidFromPath(r *http.Request) (*models.BidFactory, error) {
	id, err := idParam(r, "bidId")
	if err != nil {
		return nil, err
	}
	return h.Store.GetBid(r.Context(), id)
}

// EditBidHandler фабрика меняет цену или срок, пока ставка ожидает решения
func (h *Handler) EditBidHandler(w http.ResponseWriter, r *http.Request) {
	bid, err := h.bidFromPath(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if bid.FactoryID != principal(r).ID {
		writeError(w, r, errs.NewNotFoundError("Bid not found"))
		return
	}

	var req models.BidEditRequest
	if err := validation.DecodeAndValidate(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.WorkPrice != nil {
		bid.WorkPrice = *req.WorkPrice
	}
	if req.ExpectWorkDay != nil {
		bid.ExpectWorkDay = *req.ExpectWorkDay
	}

	if err := h.Store.UpdateBidOffer(r.Context(), bid); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bid)
}

// SelectBidHandler дизайнер выбирает ставку; остальные ожидающие ставки отменяются
func (h *Handler) SelectBidHandler(w http.ResponseWriter, r *http.Request) {
	p := principal(r)

	bid, err := h.bidFromPath(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ro, err := h.Store.GetRequestOrder(r.Context(), bid.RequestOrderID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if ro.DesignerID != p.ID {
		writeError(w, r, errs.NewNotFoundError("Bid not found"))
		return
	}

	matched, cancelled, err := h.Store.MatchBid(r.Context(), bid.ID, h.today())
	if err != nil {
		writeError(w, r, err)
		return
	}

	logger.FromContext(r.Context()).Info("bid matched",
		zap.Int64("bid_id", matched.ID),
		zap.Int64("request_order_id", matched.RequestOrderID),
		zap.Int64("cancelled", cancelled))
	h.mirrorMatch(r.Context(), matched.ID)

	writeJSON(w, http.StatusOK, matchResponse{Bid: matched, CancelledBids: cancelled})
}

// UpdateSettlementHandler фабрика может отозвать ожидающую ставку,
// дизайнер завершает или отменяет выбранную
func (h *Handler) UpdateSettlementHandler(w http.ResponseWriter, r *http.Request) {
	p := principal(r)

	bid, err := h.bidFromPath(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req models.SettlementRequest
	if err := validation.DecodeAndValidate(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	to := models.SettlementStatus(req.Status)

	switch p.Kind {
	case models.KindFactory:
		if bid.FactoryID != p.ID {
			writeError(w, r, errs.NewNotFoundError("Bid not found"))
			return
		}
		if bid.SettlementStatus != models.SettlementPending {
			writeError(w, r, errs.NewForbiddenError("Factory can only withdraw a pending bid"))
			return
		}
	case models.KindDesigner:
		ro, err := h.Store.GetRequestOrder(r.Context(), bid.RequestOrderID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if ro.DesignerID != p.ID {
			writeError(w, r, errs.NewNotFoundError("Bid not found"))
			return
		}
		if !bid.IsMatched {
			writeError(w, r, errs.NewForbiddenError("Designer can only settle a matched bid"))
			return
		}
	}

	if !models.CanTransition(bid.SettlementStatus, to) {
		writeError(w, r, errs.NewConflictError(
			"Cannot change settlement status from "+string(bid.SettlementStatus)+" to "+string(to)))
		return
	}

	updated, err := h.Store.UpdateSettlementStatus(r.Context(), bid.ID, bid.SettlementStatus, to)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
