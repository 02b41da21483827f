package auth

import (
	"context"
	"testing"
	"time"

	"fablink/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-0123456789"

func newTestService(now time.Time) *TokenService {
	s := NewTokenService(testSecret, "fablink", 24*time.Hour, 7*24*time.Hour)
	s.now = func() time.Time { return now }
	return s
}

func TestIssuePair_DesignerClaims(t *testing.T) {
	now := time.Now()
	s := newTestService(now)
	account := &models.Account{ID: 7, UserID: "designer01", Name: "Kim"}

	pair, err := s.IssuePair(models.KindDesigner, account)
	require.NoError(t, err)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.WithinDuration(t, now.Add(24*time.Hour), pair.AccessExpiresAt, time.Second)

	access, err := s.ValidateAccess(pair.Access)
	require.NoError(t, err)
	assert.Equal(t, int64(7), access.DesignerID)
	assert.Zero(t, access.FactoryID)
	assert.Equal(t, int64(7), access.AccountID())
	assert.Equal(t, "designer01", access.UserID)
	assert.Equal(t, "Kim", access.Name)
	assert.Equal(t, models.KindDesigner, access.UserType)
	assert.Equal(t, "designer:7", access.SubjectKey())

	refresh, err := s.ValidateRefresh(pair.Refresh)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, refresh.TokenType)
	assert.NotEmpty(t, refresh.ID)
	assert.NotEqual(t, access.ID, refresh.ID)
}

func TestIssuePair_FactoryClaims(t *testing.T) {
	s := newTestService(time.Now())
	pair, err := s.IssuePair(models.KindFactory, &models.Account{ID: 3, UserID: "factory01"})
	require.NoError(t, err)

	claims, err := s.ValidateAccess(pair.Access)
	require.NoError(t, err)
	assert.Equal(t, int64(3), claims.FactoryID)
	assert.Equal(t, models.KindFactory, claims.UserType)
}

func TestValidate_WrongType(t *testing.T) {
	s := newTestService(time.Now())
	pair, err := s.IssuePair(models.KindDesigner, &models.Account{ID: 1, UserID: "d"})
	require.NoError(t, err)

	_, err = s.ValidateRefresh(pair.Access)
	assert.ErrorIs(t, err, ErrInvalidTokenType)
	_, err = s.ValidateAccess(pair.Refresh)
	assert.ErrorIs(t, err, ErrInvalidTokenType)
}

func TestValidate_Expired(t *testing.T) {
	issued := time.Now().Add(-48 * time.Hour)
	pair, err := newTestService(issued).IssuePair(models.KindDesigner, &models.Account{ID: 1, UserID: "d"})
	require.NoError(t, err)

	_, err = newTestService(time.Now()).ValidateAccess(pair.Access)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidate_WrongSecretOrGarbage(t *testing.T) {
	other := NewTokenService("another-secret-0123456789", "fablink", time.Hour, time.Hour)
	pair, err := other.IssuePair(models.KindDesigner, &models.Account{ID: 1, UserID: "d"})
	require.NoError(t, err)

	s := newTestService(time.Now())
	_, err = s.ValidateAccess(pair.Access)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = s.ValidateAccess("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_UnknownUserType(t *testing.T) {
	s := newTestService(time.Now())
	c := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "fablink",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		DesignerID: 1,
		UserType:   "admin",
		TokenType:  TokenTypeAccess,
	}
	token, err := s.sign(c)
	require.NoError(t, err)

	_, err = s.ValidateAccess(token)
	assert.ErrorIs(t, err, ErrInvalidClaims)
}

func TestRemaining(t *testing.T) {
	now := time.Now()
	s := newTestService(now)
	c := &Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))}}
	assert.InDelta(t, time.Hour.Seconds(), s.Remaining(c).Seconds(), 1)

	c.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Hour))
	assert.Equal(t, time.Second, s.Remaining(c))
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)
	assert.NoError(t, CheckPassword(hash, "s3cret-pass"))
	assert.ErrorIs(t, CheckPassword(hash, "wrong"), ErrPasswordMismatch)
}

func TestMemoryBlacklist_Revoke(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	b := NewMemoryBlacklist()
	b.now = func() time.Time { return now }

	first, err := b.Revoke(ctx, "jti-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, first)
	again, err := b.Revoke(ctx, "jti-1", time.Minute)
	require.NoError(t, err)
	assert.False(t, again)

	revoked, err := b.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = b.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)

	now = now.Add(2 * time.Minute)
	revoked, err = b.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestMemoryBlacklist_RevokeSubject(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	b := NewMemoryBlacklist()
	b.now = func() time.Time { return now }

	require.NoError(t, b.RevokeSubject(ctx, "designer:1", time.Hour))

	revoked, err := b.IsSubjectRevoked(ctx, "designer:1", now.Add(-time.Minute))
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = b.IsSubjectRevoked(ctx, "designer:1", now.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, revoked)

	revoked, err = b.IsSubjectRevoked(ctx, "factory:1", now.Add(-time.Minute))
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestMemoryBlacklist_RevokeAfterExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	b := NewMemoryBlacklist()
	b.now = func() time.Time { return now }

	_, err := b.Revoke(ctx, "jti-1", time.Minute)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	fresh, err := b.Revoke(ctx, "jti-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, fresh)
}

func TestMemoryBlacklist_SweepsExpiredEntries(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	b := NewMemoryBlacklist()
	b.now = func() time.Time { return now }

	for _, jti := range []string{"a", "b", "c"} {
		_, err := b.Revoke(ctx, jti, time.Minute)
		require.NoError(t, err)
	}
	require.NoError(t, b.RevokeSubject(ctx, "designer:1", time.Minute))

	now = now.Add(time.Hour)
	_, err := b.Revoke(ctx, "d", time.Minute)
	require.NoError(t, err)

	assert.Len(t, b.jtis, 1)
	assert.Contains(t, b.jtis, "d")
	assert.Empty(t, b.subjects)
}

func TestSubjectRevocation_SameSecond(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2030, 1, 15, 10, 0, 0, 500*int(time.Millisecond), time.UTC)
	s := newTestService(now)
	b := NewMemoryBlacklist()

	pair, err := s.IssuePair(models.KindDesigner, &models.Account{ID: 7, UserID: "designer01"})
	require.NoError(t, err)
	refresh, err := s.ValidateRefresh(pair.Refresh)
	require.NoError(t, err)

	b.now = func() time.Time { return now.Add(200 * time.Millisecond) }
	require.NoError(t, b.RevokeSubject(ctx, "designer:7", time.Hour))

	revoked, err := b.IsSubjectRevoked(ctx, "designer:7", refresh.IssuedAt.Time)
	require.NoError(t, err)
	assert.True(t, revoked, "token issued earlier in the same second")

	revoked, err = b.IsSubjectRevoked(ctx, "designer:7", now.Add(400*time.Millisecond))
	require.NoError(t, err)
	assert.False(t, revoked, "token issued after the revocation")
}
