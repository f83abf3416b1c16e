package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func TestVerifyRoundTrip(t *testing.T) {
	v, err := NewVerifier(Config{Secret: secret, Issuer: "idp", Audience: "pantry"})
	require.NoError(t, err)

	tok, err := Sign(secret, Claims{
		Email:     "ada@example.com",
		GivenName: "Ada",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  "user-123",
			Issuer:   "idp",
			Audience: jwt.ClaimStrings{"pantry"},
		},
	}, time.Hour)
	require.NoError(t, err)

	claims, err := v.Verify(tok)
	require.NoError(t, err)
	u := claims.User()
	assert.Equal(t, "user-123", u.ExternalID)
	assert.Equal(t, "ada@example.com", u.Email)
	assert.Equal(t, "Ada", u.FirstName)
}

func TestVerifyRejects(t *testing.T) {
	v, err := NewVerifier(Config{Secret: secret, Issuer: "idp"})
	require.NoError(t, err)
	sub := jwt.RegisteredClaims{Subject: "u", Issuer: "idp"}

	wrongKey, err := Sign("other", Claims{RegisteredClaims: sub}, time.Hour)
	require.NoError(t, err)
	_, err = v.Verify(wrongKey)
	assert.Error(t, err)

	expired, err := Sign(secret, Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "u",
		Issuer:    "idp",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}}, time.Hour)
	require.NoError(t, err)
	_, err = v.Verify(expired)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	wrongIssuer, err := Sign(secret, Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u", Issuer: "evil"}}, time.Hour)
	require.NoError(t, err)
	_, err = v.Verify(wrongIssuer)
	assert.ErrorIs(t, err, jwt.ErrTokenInvalidIssuer)

	noSubject, err := Sign(secret, Claims{RegisteredClaims: jwt.RegisteredClaims{Issuer: "idp"}}, time.Hour)
	require.NoError(t, err)
	_, err = v.Verify(noSubject)
	assert.Error(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{RegisteredClaims: sub})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = v.Verify(unsigned)
	assert.Error(t, err)

	_, err = NewVerifier(Config{})
	assert.Error(t, err)
}

func TestBearerToken(t *testing.T) {
	tok, ok := BearerToken("Bearer abc.def")
	assert.True(t, ok)
	assert.Equal(t, "abc.def", tok)

	_, ok = BearerToken("Basic xyz")
	assert.False(t, ok)
	_, ok = BearerToken("Bearer ")
	assert.False(t, ok)
}
