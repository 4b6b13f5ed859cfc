package utils

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var jwtSecret []byte

// JWTSecret returns the signing key, loading it from the environment on
// first use so tests can set JWT_SECRET before issuing tokens.
func JWTSecret() []byte {
	if jwtSecret == nil {
		secret := os.Getenv("JWT_SECRET")
		if secret == "" {
			secret = "peelojuice-dev-secret"
		}
		jwtSecret = []byte(secret)
	}
	return jwtSecret
}

type CustomClaims struct {
	UserID  uint `json:"user_id"`
	IsStaff bool `json:"is_staff"`
	jwt.RegisteredClaims
}

func GenerateToken(userID uint, isStaff bool) (string, error) {
	claims := &CustomClaims{
		UserID:  userID,
		IsStaff: isStaff,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "peelojuice",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(JWTSecret())
}

func ParseToken(tokenString string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		return JWTSecret(), nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
