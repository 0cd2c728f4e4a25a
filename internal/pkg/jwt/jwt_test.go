package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

func TestBearerTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("uid-1", "123456", "a@x.com", secret, time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(token, secret)
	require.NoError(t, err)
	require.Equal(t, "uid-1", claims.UserID)
	require.Equal(t, "123456", claims.Account)
	require.Equal(t, "a@x.com", claims.Email)
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken("uid-1", "123456", "a@x.com", secret, time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(token, []byte("other-secret"))
	require.Error(t, err)
}

func TestParseTokenExpired(t *testing.T) {
	token, err := GenerateToken("uid-1", "123456", "a@x.com", secret, -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(token, secret)
	require.Error(t, err)
}

func TestVerifyEmailTokenPurposeSeparation(t *testing.T) {
	verify, err := GenerateVerifyEmailToken("uid-1", secret, time.Hour)
	require.NoError(t, err)

	claims, err := ParseVerifyEmailToken(verify, secret)
	require.NoError(t, err)
	require.Equal(t, "uid-1", claims.UserID)

	// a verification token is not a bearer token and vice versa
	_, err = ParseToken(verify, secret)
	require.Error(t, err)

	bearer, err := GenerateToken("uid-1", "123456", "a@x.com", secret, time.Hour)
	require.NoError(t, err)
	_, err = ParseVerifyEmailToken(bearer, secret)
	require.Error(t, err)
}
