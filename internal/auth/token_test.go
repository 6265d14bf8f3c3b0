package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/rookgm/homechef/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthToken_CreateVerify(t *testing.T) {
	at, err := NewAuthToken("secret")
	require.NoError(t, err)

	payload := &models.TokenPayload{UserID: 42, Role: models.RoleSeller}
	token, err := at.CreateToken(payload)
	require.NoError(t, err)

	got, err := at.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestAuthToken_VerifyToken(t *testing.T) {
	at, err := NewAuthToken("secret")
	require.NoError(t, err)
	other, err := NewAuthToken("another")
	require.NoError(t, err)

	foreign, err := other.CreateToken(&models.TokenPayload{UserID: 1, Role: models.RoleAdmin})
	require.NoError(t, err)

	expired := &AuthToken{key: []byte("secret"), ttl: -time.Minute}
	old, err := expired.CreateToken(&models.TokenPayload{UserID: 1, Role: models.RoleCustomer})
	require.NoError(t, err)

	noneSigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims{Role: models.RoleAdmin}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-token"},
		{name: "wrong_key", token: foreign},
		{name: "expired", token: old},
		{name: "none_alg", token: noneSigned},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := at.VerifyToken(test.token)
			assert.ErrorIs(t, err, models.ErrInvalidToken)
		})
	}
}

func TestAuthToken_CreateToken_InvalidRole(t *testing.T) {
	at, err := NewAuthToken("secret")
	require.NoError(t, err)

	_, err = at.CreateToken(&models.TokenPayload{UserID: 1, Role: "root"})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestNewAuthToken_EmptyKey(t *testing.T) {
	_, err := NewAuthToken("")
	assert.Error(t, err)
}
