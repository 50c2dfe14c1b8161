package auth

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/crmbase-app/crmbase-backend/pkg/policy"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID       int64
	Login        string
	Capabilities policy.Capabilities
	JTI          string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID    int64  `json:"user_id"`
	Login     string `json:"login"`
	Moderator bool   `json:"moderator"`
	Admin     bool   `json:"admin"`
	jwt.RegisteredClaims
}

// Capabilities rebuilds the policy surface carried by the token.
func (c *AccessTokenClaims) Capabilities() policy.Capabilities {
	return policy.Capabilities{
		Moderator: c.Moderator,
		Admin:     c.Admin,
	}
}
