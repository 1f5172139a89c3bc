package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "storefront/internal/errors"
	"storefront/internal/model"
)

func TestJWTService_IssueAndVerify(t *testing.T) {
	svc := NewJWTService("test-secret")
	userID := uuid.New()

	token, err := svc.IssueToken(userID, model.RoleAdmin)
	require.NoError(t, err)

	claims, err := svc.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, model.RoleAdmin, claims.Role)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, time.Now().Add(AccessTokenExpiry), claims.ExpiresAt.Time, 5*time.Second)
}

func TestJWTService_VerifyFailures(t *testing.T) {
	svc := NewJWTService("test-secret")
	userID := uuid.New()

	expiredSvc := NewJWTService("test-secret")
	expiredSvc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := expiredSvc.IssueToken(userID, model.RoleCustomer)
	require.NoError(t, err)

	otherKey, err := NewJWTService("other-secret").IssueToken(userID, model.RoleCustomer)
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: userID}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{name: "expired", token: expired, wantErr: apperrors.ErrTokenExpired},
		{name: "garbage", token: "not.a.token", wantErr: apperrors.ErrTokenMalformed},
		{name: "wrong secret", token: otherKey, wantErr: apperrors.ErrTokenMalformed},
		{name: "alg none", token: unsigned, wantErr: apperrors.ErrTokenMalformed},
		{name: "missing user", token: noSubject, wantErr: apperrors.ErrTokenMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := svc.VerifyToken(tt.token)
			assert.Nil(t, claims)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestPassword_HashAndCheck(t *testing.T) {
	hash, err := HashPassword("Str0ng!pass")
	require.NoError(t, err)
	assert.NotEqual(t, "Str0ng!pass", hash)
	assert.True(t, CheckPassword(hash, "Str0ng!pass"))
	assert.False(t, CheckPassword(hash, "str0ng!pass"))

	again, err := HashPassword("Str0ng!pass")
	require.NoError(t, err)
	assert.NotEqual(t, hash, again)
}

func TestPrincipal_IsElevated(t *testing.T) {
	assert.True(t, Principal{Role: model.RoleAdmin}.IsElevated())
	assert.False(t, Principal{Role: model.RoleCustomer}.IsElevated())
	assert.False(t, Principal{Role: "Admin"}.IsElevated())
}
