package handlers

import (
	"errors"
	"net/http"

	"fablink/db"
	"fablink/internal/auth"
	"fablink/internal/errs"
	"fablink/internal/logger"
	"fablink/internal/validation"
	"fablink/models"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type loginResponse struct {
	*auth.TokenPair
	UserType models.AccountKind `json:"userType"`
	User     *models.Account    `json:"user"`
}

func kindParam(r *http.Request) (models.AccountKind, error) {
	kind, ok := models.ParseAccountKind(chi.URLParam(r, "kind"))
	if !ok {
		return "", errs.NewNotFoundError("Unknown account type")
	}
	return kind, nil
}

func (h *Handler) SignupHandler(w http.ResponseWriter, r *http.Request) {
	kind, err := kindParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req models.SignupRequest
	if err := validation.DecodeAndValidate(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	account := &models.Account{
		UserID:       req.UserID,
		Password:     hash,
		Name:         req.Name,
		ProfileImage: req.ProfileImage,
		Contact:      req.Contact,
		Address:      req.Address,
	}
	if err := h.Store.CreateAccount(r.Context(), kind, account); err != nil {
		if errors.Is(err, db.ErrConflict) {
			err = errs.NewConflictError("User ID is already taken")
		}
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, account)
}

func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	kind, err := kindParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req models.LoginRequest
	if err := validation.DecodeAndValidate(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	invalid := errs.NewUnauthorizedError("Invalid user ID or password")
	account, err := h.Store.GetAccountByUserID(r.Context(), kind, req.UserID)
	if errors.Is(err, db.ErrNotFound) {
		writeError(w, r, invalid)
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := auth.CheckPassword(account.Password, req.Password); err != nil {
		writeError(w, r, invalid)
		return
	}

	pair, err := h.Tokens.IssuePair(kind, account)
	if err != nil {
		writeError(w, r, err)
		return
	}

	logger.FromContext(r.Context()).Info("login",
		zap.String("user_type", string(kind)), zap.Int64("account_id", account.ID))
	writeJSON(w, http.StatusOK, loginResponse{TokenPair: pair, UserType: kind, User: account})
}

// RefreshHandler ротация: старый refresh отзывается, выдаётся новая пара
func (h *Handler) RefreshHandler(w http.ResponseWriter, r *http.Request) {
	var req models.RefreshRequest
	if err := validation.DecodeAndValidate(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	claims, err := h.validRefresh(r, req.Refresh)
	if err != nil {
		writeError(w, r, err)
		return
	}

	account, err := h.Store.GetAccount(r.Context(), claims.UserType, claims.AccountID())
	if errors.Is(err, db.ErrNotFound) {
		writeError(w, r, errs.NewUnauthorizedError("Account no longer exists"))
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	fresh, err := h.Blacklist.Revoke(r.Context(), claims.ID, h.Tokens.Remaining(claims))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !fresh {
		writeError(w, r, errs.NewUnauthorizedError("Refresh token has been revoked"))
		return
	}

	pair, err := h.Tokens.IssuePair(claims.UserType, account)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

func (h *Handler) validRefresh(r *http.Request, token string) (*auth.Claims, error) {
	claims, err := h.Tokens.ValidateRefresh(token)
	if err != nil {
		return nil, errs.NewUnauthorizedError("Invalid refresh token")
	}

	revoked, err := h.Blacklist.IsRevoked(r.Context(), claims.ID)
	if err != nil {
		return nil, err
	}
	if !revoked && claims.IssuedAt != nil {
		revoked, err = h.Blacklist.IsSubjectRevoked(r.Context(), claims.SubjectKey(), claims.IssuedAt.Time)
		if err != nil {
			return nil, err
		}
	}
	if revoked {
		return nil, errs.NewUnauthorizedError("Refresh token has been revoked")
	}
	return claims, nil
}

// LogoutHandler отзывает refresh из тела и текущий access токен
func (h *Handler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	p := principal(r)

	var req models.RefreshRequest
	if err := validation.DecodeAndValidate(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	claims, err := h.Tokens.ValidateRefresh(req.Refresh)
	if err != nil {
		writeError(w, r, errs.NewBadRequestError("Invalid refresh token", nil))
		return
	}
	if claims.SubjectKey() != p.Claims.SubjectKey() {
		writeError(w, r, errs.NewForbiddenError("Refresh token belongs to another account"))
		return
	}

	if _, err := h.Blacklist.Revoke(r.Context(), claims.ID, h.Tokens.Remaining(claims)); err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := h.Blacklist.Revoke(r.Context(), p.Claims.ID, h.Tokens.Remaining(p.Claims)); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

func (h *Handler) GetProfileHandler(w http.ResponseWriter, r *http.Request) {
	p := principal(r)

	account, err := h.Store.GetAccount(r.Context(), p.Kind, p.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (h *Handler) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	p := principal(r)

	var req models.ProfileUpdateRequest
	if err := validation.DecodeAndValidate(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	account, err := h.Store.GetAccount(r.Context(), p.Kind, p.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if req.Name != nil {
		account.Name = *req.Name
	}
	if req.ProfileImage != nil {
		account.ProfileImage = *req.ProfileImage
	}
	if req.Contact != nil {
		account.Contact = *req.Contact
	}
	if req.Address != nil {
		account.Address = *req.Address
	}

	if err := h.Store.UpdateAccountProfile(r.Context(), p.Kind, account); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

// ChangePasswordHandler после смены пароля все ранее выданные токены аккаунта недействительны
func (h *Handler) ChangePasswordHandler(w http.ResponseWriter, r *http.Request) {
	p := principal(r)

	var req models.PasswordChangeRequest
	if err := validation.DecodeAndValidate(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	account, err := h.Store.GetAccount(r.Context(), p.Kind, p.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := auth.CheckPassword(account.Password, req.CurrentPassword); err != nil {
		writeError(w, r, errs.NewBadRequestError("Validation failed", []errs.FieldError{
			{Field: "currentPassword", Error: "is incorrect"},
		}))
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Store.UpdateAccountPassword(r.Context(), p.Kind, p.ID, hash); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Blacklist.RevokeSubject(r.Context(), p.Claims.SubjectKey(), h.Tokens.RefreshTTL()); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Password changed"})
}
