package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims represents the access-token payload issued by the
// user-management service. PdmID identifies the caller's manager when one
// is assigned.
type JWTClaims struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	PdmID    string `json:"pdm_id,omitempty"`
	jwt.RegisteredClaims
}
