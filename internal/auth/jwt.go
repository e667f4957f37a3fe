// Package auth validates admin JWT tokens for the storefront API.
package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dwatson/storefront/pkg/middleware"
)

// NewJWTValidator returns a TokenValidator that verifies HMAC-signed JWT
// tokens with the given secret and extracts the user claims.
func NewJWTValidator(secret string) middleware.TokenValidator {
	return func(tokenString string) (*middleware.Claims, error) {
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
			// Ensure the signing method is HMAC.
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil {
			return nil, fmt.Errorf("parse token: %w", err)
		}
		if !token.Valid {
			return nil, jwt.ErrTokenUnverifiable
		}

		mapClaims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return nil, fmt.Errorf("unexpected claims type %T", token.Claims)
		}

		userID, _ := mapClaims["user_id"].(string)
		if userID == "" {
			// Fallback: try "sub" claim.
			userID, _ = mapClaims["sub"].(string)
		}
		email, _ := mapClaims["email"].(string)
		role, _ := mapClaims["role"].(string)

		return &middleware.Claims{
			UserID: userID,
			Email:  email,
			Role:   role,
		}, nil
	}
}
