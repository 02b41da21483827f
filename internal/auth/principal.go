package auth

import (
	"context"

	"fablink/models"
)

type principalKey struct{}

// Principal аутентифицированный аккаунт текущего запроса
type Principal struct {
	Kind   models.AccountKind
	ID     int64
	UserID string
	Claims *Claims
}

func PrincipalFromClaims(c *Claims) *Principal {
	return &Principal{
		Kind:   c.UserType,
		ID:     c.AccountID(),
		UserID: c.UserID,
		Claims: c,
	}
}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom nil, если запрос не прошёл аутентификацию
func PrincipalFrom(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey{}).(*Principal)
	return p
}
