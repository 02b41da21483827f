package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"fablink/db"
	"fablink/internal/auth"
	"fablink/internal/errs"
	"fablink/internal/logger"
	"fablink/internal/mirror"
	"fablink/models"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const mirrorWriteTimeout = 5 * time.Second

// Handler HTTP-обработчики API
type Handler struct {
	Store     StorageInterface
	Tokens    *auth.TokenService
	Blacklist auth.Blacklist
	Progress  ProgressMirror

	// Location часовой пояс для «сегодня»
	Location *time.Location
	Env      string
	Now      func() time.Time
}

// NewHandler создает новый Handler
func NewHandler(store StorageInterface, tokens *auth.TokenService, blacklist auth.Blacklist, progress ProgressMirror) *Handler {
	return &Handler{
		Store:     store,
		Tokens:    tokens,
		Blacklist: blacklist,
		Progress:  progress,
		Location:  time.UTC,
		Env:       "development",
		Now:       time.Now,
	}
}

func (h *Handler) today() models.Date {
	return models.DateOf(h.Now().In(h.Location))
}

type PaginationParams struct {
	Limit  int
	Offset int
}

// parsePaginationParams парсит limit и offset из query, с дефолтами и ограничениями
func parsePaginationParams(r *http.Request) PaginationParams {
	params := PaginationParams{Limit: 20}

	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 && l <= 100 {
		params.Limit = l
	}
	if o, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && o >= 0 {
		params.Offset = o
	}
	return params
}

// idParam положительный int64 из пути
func idParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errs.NewBadRequestError("Invalid "+name, nil)
	}
	return id, nil
}

// principal аккаунт из контекста; маршруты без аутентификации его не вызывают
func principal(r *http.Request) *auth.Principal {
	p := auth.PrincipalFrom(r.Context())
	if p == nil {
		panic("handlers: route requires authentication middleware")
	}
	return p
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError переводит ошибку в HTTP-ответ; неизвестные ошибки логируются и дают 500
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var httpErr *errs.HTTPError
	switch {
	case errors.As(err, &httpErr):
	case errors.Is(err, db.ErrNotFound), errors.Is(err, mirror.ErrNotFound):
		httpErr = errs.NewNotFoundError("Resource not found")
	case errors.Is(err, mirror.ErrStepNotFound):
		httpErr = errs.NewNotFoundError("Step not found")
	case errors.Is(err, db.ErrConflict):
		httpErr = errs.NewConflictError("Resource already exists")
	case errors.Is(err, db.ErrAlreadyMatched),
		errors.Is(err, db.ErrBidNotPending),
		errors.Is(err, db.ErrStaleStatus):
		httpErr = errs.NewConflictError(err.Error())
	case errors.Is(err, db.ErrConstraint):
		httpErr = errs.NewBadRequestError("Request violates a data constraint", nil)
	case errors.Is(err, mirror.ErrDisabled):
		httpErr = errs.NewServiceUnavailableError("Progress tracking is unavailable")
	default:
		logger.FromContext(r.Context()).Error("request failed", zap.Error(err))
		httpErr = errs.NewInternalServerError()
	}
	writeJSON(w, httpErr.Status, httpErr)
}

// mirrorOrder и mirrorMatch не влияют на ответ: ошибки MongoDB только логируются
func (h *Handler) mirrorOrder(ctx context.Context, snap models.OrderSnapshot) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), mirrorWriteTimeout)
	defer cancel()
	if err := h.Progress.UpsertDesignerOrder(ctx, snap); err != nil {
		logger.FromContext(ctx).Warn("designer_orders upsert failed",
			zap.Int64("order_id", snap.OrderID), zap.Error(err))
	}
}

func (h *Handler) mirrorMatch(ctx context.Context, bidID int64) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), mirrorWriteTimeout)
	defer cancel()

	snap, err := h.Store.GetMatchSnapshot(ctx, bidID)
	if err != nil {
		logger.FromContext(ctx).Warn("match snapshot failed", zap.Int64("bid_id", bidID), zap.Error(err))
		return
	}
	if err := h.Progress.UpsertFactoryOrder(ctx, *snap); err != nil {
		logger.FromContext(ctx).Warn("factory_orders upsert failed",
			zap.Int64("order_id", snap.OrderID),
			zap.Int64("factory_id", snap.FactoryID),
			zap.Error(err))
	}
}
