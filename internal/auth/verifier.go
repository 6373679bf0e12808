package auth

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier turns a bearer token into a user id, or ErrUnauthenticated.
type Verifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// LocalVerifier checks the provider's HS256 access token against the shared
// project JWT secret, saving the network round trip to the provider's user
// endpoint. The sub claim carries the user id.
type LocalVerifier struct {
	Secret []byte
}

func (v LocalVerifier) Verify(_ context.Context, tokenString string) (string, error) {
	tok, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (any, error) {
		// enforce HS256
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.Secret, nil
	})
	if err != nil {
		return "", ErrUnauthenticated
	}

	claims, ok := tok.Claims.(*jwt.RegisteredClaims)
	if !ok || !tok.Valid || claims.Subject == "" {
		return "", ErrUnauthenticated
	}
	return claims.Subject, nil
}
