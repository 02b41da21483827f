// Package middleware аутентификация и ограничения запросов API.
package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"fablink/internal/auth"
	"fablink/internal/errs"
	"fablink/internal/logger"
	"fablink/models"

	"go.uber.org/zap"
)

const bearerPrefix = "Bearer "

func writeError(w http.ResponseWriter, e *errs.HTTPError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.Status)
	json.NewEncoder(w).Encode(e)
}

// Authenticator проверяет access токен из заголовка Authorization и кладёт
// аккаунт в контекст. Ошибка хранилища отзывов не блокирует запрос.
func Authenticator(tokens *auth.TokenService, blacklist auth.Blacklist) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeError(w, errs.NewUnauthorizedError("Missing authorization header"))
				return
			}
			if !strings.HasPrefix(header, bearerPrefix) {
				writeError(w, errs.NewUnauthorizedError("Invalid authorization header format"))
				return
			}
			token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
			if token == "" {
				writeError(w, errs.NewUnauthorizedError("Missing token"))
				return
			}

			claims, err := tokens.ValidateAccess(token)
			if err != nil {
				msg := "Invalid token"
				if errors.Is(err, auth.ErrExpiredToken) {
					msg = "Token has expired"
				}
				writeError(w, errs.NewUnauthorizedError(msg))
				return
			}

			ctx := r.Context()
			log := logger.FromContext(ctx)
			if revoked, err := blacklist.IsRevoked(ctx, claims.ID); err != nil {
				log.Error("token blacklist check failed", zap.String("jti", claims.ID), zap.Error(err))
			} else if revoked {
				writeError(w, errs.NewUnauthorizedError("Token has been revoked"))
				return
			}
			if claims.IssuedAt != nil {
				revoked, err := blacklist.IsSubjectRevoked(ctx, claims.SubjectKey(), claims.IssuedAt.Time)
				if err != nil {
					log.Error("subject blacklist check failed", zap.String("subject", claims.SubjectKey()), zap.Error(err))
				} else if revoked {
					writeError(w, errs.NewUnauthorizedError("Token has been revoked"))
					return
				}
			}

			p := auth.PrincipalFromClaims(claims)
			ctx = auth.WithPrincipal(ctx, p)
			ctx = logger.WithContext(ctx, log.With(
				zap.String("user_type", string(p.Kind)),
				zap.Int64("account_id", p.ID),
			))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireKind пропускает только аккаунты перечисленных типов
func RequireKind(kinds ...models.AccountKind) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := auth.PrincipalFrom(r.Context())
			if p == nil {
				writeError(w, errs.NewUnauthorizedError("Authentication required"))
				return
			}
			for _, k := range kinds {
				if p.Kind == k {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeError(w, errs.NewForbiddenError("This action is not allowed for "+string(p.Kind)+" accounts"))
		})
	}
}
