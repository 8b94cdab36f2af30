package models

import "time"

type UserResponse struct {
	Username string `json:"username"`
}

type LoginResponse struct {
	Username  string    `json:"username"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// LoginResult is what the service hands back after a successful login.
type LoginResult struct {
	Username  string
	Token     string
	SessionID string
	ExpiresAt time.Time
}
