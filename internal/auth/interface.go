package auth

import "playbook/internal/domain/models"

// TokenVerifier validates bearer tokens and extracts their claims. The
// engine trusts the subject id once the signature verifies; token issuance
// happens elsewhere.
type TokenVerifier interface {
	VerifyToken(tokenString string) (*models.Claims, error)
}
