package models

import "github.com/golang-jwt/jwt/v5"

// Claims are the token claims the auth middleware extracts. Subject carries
// the principal's user id; the engine trusts it once the signature verifies.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}
