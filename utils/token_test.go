package utils

import (
	"testing"
	"time"

	"github.com/Kariqs/smartbite-api/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func testCustomer() models.Customer {
	return models.Customer{Model: gorm.Model{ID: 42}, Email: "asha@example.com", IsAdmin: true}
}

func TestTokenRoundTrip(t *testing.T) {
	tokens := NewTokenManager("secret", 48*time.Hour)

	token, err := tokens.Generate(testCustomer())
	require.NoError(t, err)

	claims, err := tokens.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.CustomerID)
	assert.Equal(t, "asha@example.com", claims.Email)
	assert.True(t, claims.IsAdmin)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, tokenIssuer, claims.Issuer)
}

func TestTokenExpiresAfterTTL(t *testing.T) {
	issued := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	tokens := NewTokenManager("secret", 48*time.Hour)
	tokens.now = func() time.Time { return issued }

	token, err := tokens.Generate(testCustomer())
	require.NoError(t, err)

	tokens.now = func() time.Time { return issued.Add(47 * time.Hour) }
	_, err = tokens.Parse(token)
	assert.NoError(t, err)

	tokens.now = func() time.Time { return issued.Add(48*time.Hour + time.Second) }
	_, err = tokens.Parse(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestTokenRejectsForeignSignature(t *testing.T) {
	token, err := NewTokenManager("one", time.Hour).Generate(testCustomer())
	require.NoError(t, err)

	_, err = NewTokenManager("two", time.Hour).Parse(token)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestTokenRejectsUnsignedToken(t *testing.T) {
	claims := Claims{
		CustomerID: 1,
		IsAdmin:    true,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokenManager("secret", time.Hour).Parse(token)
	assert.Error(t, err)
}
