package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleMerchant UserRole = "merchant"
)

// Claims carried by a guest session token. SessionID keys the cart slot.
type Claims struct {
	SessionID string   `json:"sid"`
	Role      UserRole `json:"role"`
	jwt.RegisteredClaims
}

type CreateSessionRequest struct {
	Role UserRole `json:"role" validate:"omitempty,oneof=customer merchant"`
}

type SessionResponse struct {
	SessionID string    `json:"sessionId"`
	Role      UserRole  `json:"role"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}
