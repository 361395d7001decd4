package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userID = "11111111-1111-1111-1111-111111111111"

func TestTokenService_RoundTrip(t *testing.T) {
	svc := NewTokenService([]byte("secret"))

	token, err := svc.Issue(userID, time.Hour)
	require.NoError(t, err)

	claims, err := svc.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID())
	assert.Equal(t, "JWT", claims.Source())
	assert.NotEmpty(t, claims.TokenID)
}

func TestTokenService_Rejects(t *testing.T) {
	svc := NewTokenService([]byte("secret"))

	expired := NewTokenService([]byte("secret"))
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expiredToken, err := expired.Issue(userID, time.Hour)
	require.NoError(t, err)

	otherKey, err := NewTokenService([]byte("other")).Issue(userID, time.Hour)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: userID}).
		SignedString([]byte("secret"))
	require.NoError(t, err)

	badSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "pilot",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	cases := map[string]string{
		"expired":        expiredToken,
		"wrong key":      otherKey,
		"no expiry":      noExpiry,
		"subject not id": badSubject,
		"garbage":        "not.a.token",
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Parse(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestTokenService_IssueRequiresUUID(t *testing.T) {
	_, err := NewTokenService([]byte("secret")).Issue("pilot", time.Hour)
	assert.Error(t, err)
}
