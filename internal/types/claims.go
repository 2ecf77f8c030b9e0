package types

import "github.com/golang-jwt/jwt/v5"

// Claims carried by access tokens issued after a successful store or admin
// sign-in.
type Claims struct {
	AccountID string `json:"account_id"`
	StoreID   string `json:"store_id,omitempty"`
	Role      string `json:"role"`
	Brand     string `json:"brand,omitempty"`
	Scope     string `json:"scope,omitempty"`
	jwt.RegisteredClaims
}

// Response is the generic success/error envelope for simple endpoints.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}
