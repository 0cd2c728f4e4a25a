package jwt

import (
	"errors"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

const purposeVerifyEmail = "verify_email"

type Claims struct {
	UserID  string `json:"user_id"`
	Account string `json:"account,omitempty"`
	Email   string `json:"email,omitempty"`
	Purpose string `json:"purpose,omitempty"`
	jwtlib.RegisteredClaims
}

// GenerateToken issues a bearer token carrying the user's identity.
func GenerateToken(userID, account, email string, secret []byte, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID:  userID,
		Account: account,
		Email:   email,
		RegisteredClaims: jwtlib.RegisteredClaims{
			ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwtlib.NewNumericDate(time.Now()),
		},
	}
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// GenerateVerifyEmailToken issues the signed token embedded in the email
// verification link. It is tagged with a purpose so a bearer token cannot
// be replayed against the verify endpoint.
func GenerateVerifyEmailToken(userID string, secret []byte, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID:  userID,
		Purpose: purposeVerifyEmail,
		RegisteredClaims: jwtlib.RegisteredClaims{
			ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwtlib.NewNumericDate(time.Now()),
		},
	}
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func ParseToken(tokenString string, secret []byte) (*Claims, error) {
	claims, err := parse(tokenString, secret)
	if err != nil {
		return nil, err
	}
	if claims.Purpose != "" {
		return nil, errors.New("not a bearer token")
	}
	return claims, nil
}

func ParseVerifyEmailToken(tokenString string, secret []byte) (*Claims, error) {
	claims, err := parse(tokenString, secret)
	if err != nil {
		return nil, err
	}
	if claims.Purpose != purposeVerifyEmail {
		return nil, errors.New("not a verification token")
	}
	return claims, nil
}

func parse(tokenString string, secret []byte) (*Claims, error) {
	token, err := jwtlib.ParseWithClaims(tokenString, &Claims{}, func(token *jwtlib.Token) (interface{}, error) {
		if token.Method.Alg() != jwtlib.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
