package auth

import "github.com/golang-jwt/jwt/v5"

// Authenticator issues and checks the admin tokens that guard catalog writes.
type Authenticator interface {
	GenerateToken(subject string) (string, error)
	ValidateToken(token string) (*jwt.Token, error)
}
