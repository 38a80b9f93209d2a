package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	TypeAccess       = "access"
	TypeConfirmation = "confirmation"
)

var ErrWrongType = errors.New("wrong token type")

// Claims identify a user by email (subject) and carry the role and token purpose.
type Claims struct {
	Role string `json:"role"`
	Type string `json:"type"`
	jwt.RegisteredClaims
}

func sign(secret []byte, email, role, typ string, exp time.Time) (string, error) {
	claims := Claims{
		Role: role,
		Type: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func NewAccessToken(secret []byte, email, role string, exp time.Time) (string, error) {
	return sign(secret, email, role, TypeAccess, exp)
}

func NewConfirmationToken(secret []byte, email, role string, exp time.Time) (string, error) {
	return sign(secret, email, role, TypeConfirmation, exp)
}

func Parse(tokenStr string, secret []byte) (*Claims, error) {
	var claims Claims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, errors.New("invalid token")
	}
	return &claims, nil
}

// ParseTyped parses the token and checks it was issued for the given purpose.
func ParseTyped(tokenStr string, secret []byte, typ string) (*Claims, error) {
	claims, err := Parse(tokenStr, secret)
	if err != nil {
		return nil, err
	}
	if claims.Type != typ {
		return nil, fmt.Errorf("%w: expected %s, got %s", ErrWrongType, typ, claims.Type)
	}
	return claims, nil
}
