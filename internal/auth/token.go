package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/rookgm/homechef/internal/models"
)

// default token lifetime
const tokenTTL = 24 * time.Hour

type claims struct {
	jwt.RegisteredClaims
	Role models.Role `json:"role"`
}

// AuthToken signs and verifies HS256 access tokens
type AuthToken struct {
	key []byte
	ttl time.Duration
}

// NewAuthToken creates new AuthToken instance
func NewAuthToken(key string) (*AuthToken, error) {
	if key == "" {
		return nil, errors.New("token key is empty")
	}
	return &AuthToken{key: []byte(key), ttl: tokenTTL}, nil
}

// CreateToken creates signed token for payload
func (at *AuthToken) CreateToken(payload *models.TokenPayload) (string, error) {
	if !payload.Role.Valid() {
		return "", fmt.Errorf("%w: role %q", models.ErrValidation, payload.Role)
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(payload.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(at.ttl)),
		},
		Role: payload.Role,
	})

	return token.SignedString(at.key)
}

// VerifyToken checks token signature and expiry and returns its payload
func (at *AuthToken) VerifyToken(tokenString string) (*models.TokenPayload, error) {
	c := &claims{}
	token, err := jwt.ParseWithClaims(tokenString, c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, models.ErrInvalidToken
		}
		return at.key, nil
	})
	if err != nil || !token.Valid {
		return nil, models.ErrInvalidToken
	}

	userID, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil || !c.Role.Valid() {
		return nil, models.ErrInvalidToken
	}

	return &models.TokenPayload{UserID: userID, Role: c.Role}, nil
}
