package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/yulishop/storefront/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	Subject string
	Email   string
	Role    enums.AuthRole
	JTI     string
}

// AccessTokenClaims represents the typed JWT the identity provider issues.
type AccessTokenClaims struct {
	Email string         `json:"email,omitempty"`
	Role  enums.AuthRole `json:"role"`
	jwt.RegisteredClaims
}
