package shared

import "github.com/golang-jwt/jwt/v5"

// AuthClaims is the token payload issued by the external session service.
// The API only consumes it; token issuance lives elsewhere.
type AuthClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}
