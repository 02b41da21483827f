package auth

import (
	"errors"
	"strconv"
	"time"

	"fablink/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// iat и exp с точностью до миллисекунды, с ней сравнивает отзыв по аккаунту
func init() {
	jwt.TimePrecision = time.Millisecond
}

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidTokenType = errors.New("invalid token type")
	ErrInvalidClaims    = errors.New("invalid token claims")
	ErrTokenRevoked     = errors.New("token has been revoked")
)

// Claims полезная нагрузка токенов. Заполнен ровно один из DesignerID и FactoryID.
type Claims struct {
	jwt.RegisteredClaims
	DesignerID int64              `json:"designer_id,omitempty"`
	FactoryID  int64              `json:"factory_id,omitempty"`
	UserID     string             `json:"user_id"`
	Name       string             `json:"name,omitempty"`
	UserType   models.AccountKind `json:"user_type"`
	TokenType  TokenType          `json:"token_type"`
}

// AccountID id дизайнера или фабрики
func (c *Claims) AccountID() int64 {
	if c.UserType == models.KindFactory {
		return c.FactoryID
	}
	return c.DesignerID
}

// SubjectKey ключ аккаунта для отзыва всех его токенов, например "designer:12"
func (c *Claims) SubjectKey() string {
	return SubjectKey(c.UserType, c.AccountID())
}

func SubjectKey(kind models.AccountKind, id int64) string {
	return string(kind) + ":" + strconv.FormatInt(id, 10)
}

// TokenPair ответ на вход и обновление токена
type TokenPair struct {
	Access           string    `json:"access"`
	Refresh          string    `json:"refresh"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
	TokenType        string    `json:"tokenType"`
}

// TokenService выпускает и проверяет HS256 токены
type TokenService struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenService(secret, issuer string, accessTTL, refreshTTL time.Duration) *TokenService {
	return &TokenService{
		secret:     []byte(secret),
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

func (s *TokenService) RefreshTTL() time.Duration {
	return s.refreshTTL
}

// IssuePair выпускает access и refresh токены для аккаунта
func (s *TokenService) IssuePair(kind models.AccountKind, a *models.Account) (*TokenPair, error) {
	now := s.now()

	access := s.claims(kind, a, TokenTypeAccess, now, s.accessTTL)
	access.Name = a.Name
	accessToken, err := s.sign(access)
	if err != nil {
		return nil, err
	}

	refresh := s.claims(kind, a, TokenTypeRefresh, now, s.refreshTTL)
	refreshToken, err := s.sign(refresh)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		Access:           accessToken,
		Refresh:          refreshToken,
		AccessExpiresAt:  now.Add(s.accessTTL),
		RefreshExpiresAt: now.Add(s.refreshTTL),
		TokenType:        "Bearer",
	}, nil
}

func (s *TokenService) claims(kind models.AccountKind, a *models.Account, typ TokenType, now time.Time, ttl time.Duration) *Claims {
	c := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    s.issuer,
			Subject:   SubjectKey(kind, a.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:    a.UserID,
		UserType:  kind,
		TokenType: typ,
	}
	if kind == models.KindFactory {
		c.FactoryID = a.ID
	} else {
		c.DesignerID = a.ID
	}
	return c
}

func (s *TokenService) sign(c *Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
}

func (s *TokenService) ValidateAccess(token string) (*Claims, error) {
	return s.validate(token, TokenTypeAccess)
}

func (s *TokenService) ValidateRefresh(token string) (*Claims, error) {
	return s.validate(token, TokenTypeRefresh)
}

func (s *TokenService) validate(tokenString string, expected TokenType) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithIssuer(s.issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}
	if claims.TokenType != expected {
		return nil, ErrInvalidTokenType
	}
	if _, ok := models.ParseAccountKind(string(claims.UserType)); !ok || claims.AccountID() <= 0 {
		return nil, ErrInvalidClaims
	}
	return claims, nil
}

// Remaining время жизни токена, используется как TTL записи об отзыве
func (s *TokenService) Remaining(c *Claims) time.Duration {
	if c.ExpiresAt == nil {
		return s.refreshTTL
	}
	d := c.ExpiresAt.Sub(s.now())
	if d < time.Second {
		return time.Second
	}
	return d
}
