// ABOUTME: Tests for JWT session token verification
// ABOUTME: Verifies claim round-trips, expiration, signatures and missing claims

package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func TestVerify_RoundTrip(t *testing.T) {
	v := NewJWTVerifier(testSecret)

	token, err := v.Generate(&Principal{ID: "user-1", Username: "maria", IsAdmin: false}, time.Hour)
	require.NoError(t, err)

	p, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", p.ID)
	assert.Equal(t, "maria", p.Username)
	assert.False(t, p.IsAdmin)
}

func TestVerify_AdminFlagSurvives(t *testing.T) {
	v := NewJWTVerifier(testSecret)

	token, err := v.Generate(&Principal{ID: "admin-1", Username: "james", IsAdmin: true}, time.Hour)
	require.NoError(t, err)

	p, err := v.Verify(token)
	require.NoError(t, err)
	assert.True(t, p.IsAdmin)
}

func TestVerify_Expired(t *testing.T) {
	v := NewJWTVerifier(testSecret)

	token, err := v.Generate(&Principal{ID: "user-1", Username: "maria"}, -time.Minute)
	require.NoError(t, err)

	_, err = v.Verify(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestVerify_WrongSecret(t *testing.T) {
	other := NewJWTVerifier([]byte("other-secret"))
	token, err := other.Generate(&Principal{ID: "user-1", Username: "maria"}, time.Hour)
	require.NoError(t, err)

	v := NewJWTVerifier(testSecret)
	_, err = v.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_Garbage(t *testing.T) {
	v := NewJWTVerifier(testSecret)
	_, err := v.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_MissingClaims(t *testing.T) {
	sign := func(claims jwt.MapClaims) string {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		s, err := token.SignedString(testSecret)
		require.NoError(t, err)
		return s
	}

	v := NewJWTVerifier(testSecret)
	exp := time.Now().Add(time.Hour).Unix()

	_, err := v.Verify(sign(jwt.MapClaims{"name": "maria", "exp": exp}))
	assert.ErrorIs(t, err, ErrMissingClaim)

	_, err = v.Verify(sign(jwt.MapClaims{"sub": "user-1", "exp": exp}))
	assert.ErrorIs(t, err, ErrMissingClaim)
}

func TestVerify_AbsentAdminClaimMeansRegularUser(t *testing.T) {
	claims := jwt.MapClaims{
		"sub":  "user-1",
		"name": "maria",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)

	p, err := NewJWTVerifier(testSecret).Verify(token)
	require.NoError(t, err)
	assert.False(t, p.IsAdmin)
}
