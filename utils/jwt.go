package utils

import (
	"errors"
	"fmt"
	"time"

	"marketplace/models"

	"github.com/golang-jwt/jwt"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrMissingClaim = errors.New("token is missing a required claim")
)

// GenerateToken signs an HS256 token naming the subject and its role.
func GenerateToken(secret []byte, subject string, role models.Role, duration time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": string(role),
		"iat":  now.Unix(),
		"exp":  now.Add(duration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ValidateToken parses and validates a token string and returns the token if valid.
func ValidateToken(secret []byte, tokenString string) (*jwt.Token, error) {
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return secret, nil
	})
}

// ActorFromToken returns the caller named by the sub and role claims.
func ActorFromToken(secret []byte, tokenString string) (models.Actor, error) {
	token, err := ValidateToken(secret, tokenString)
	if err != nil {
		return models.Actor{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return models.Actor{}, ErrInvalidToken
	}

	sub, _ := claims["sub"].(string)
	role, _ := claims["role"].(string)
	if sub == "" || role == "" {
		return models.Actor{}, ErrMissingClaim
	}
	actor := models.Actor{ID: sub, Role: models.Role(role)}
	if !actor.Role.Valid() {
		return models.Actor{}, fmt.Errorf("%w: unknown role %q", ErrInvalidToken, role)
	}
	return actor, nil
}
