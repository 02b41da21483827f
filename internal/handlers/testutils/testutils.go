package testutils

import (
	"context"
	"net/http"

	"fablink/internal/auth"
	"fablink/models"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
)

// WithChiURLParams подставляет параметры пути в контекст chi запроса для тестов.
func WithChiURLParams(req *http.Request, params map[string]string) *http.Request {
	chiCtx := chi.NewRouteContext()
	for k, v := range params {
		chiCtx.URLParams.Add(k, v)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, chiCtx))
}

// WithPrincipal кладёт в контекст аккаунт, как это делает middleware аутентификации.
func WithPrincipal(req *http.Request, kind models.AccountKind, id int64) *http.Request {
	claims := &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{ID: "test-access-jti"},
		UserID:           "user" + string(kind),
		UserType:         kind,
		TokenType:        auth.TokenTypeAccess,
	}
	if kind == models.KindFactory {
		claims.FactoryID = id
	} else {
		claims.DesignerID = id
	}
	return WithClaims(req, claims)
}

// WithClaims как WithPrincipal, но с готовыми claims (например, из выпущенного токена).
func WithClaims(req *http.Request, claims *auth.Claims) *http.Request {
	return req.WithContext(auth.WithPrincipal(req.Context(), auth.PrincipalFromClaims(claims)))
}
