package dto

import "time"

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ModifyPermissionRequest payload for permission changes.
type ModifyPermissionRequest struct {
	Email            string `json:"email"`
	PermissionTypeID int    `json:"permission_type_id"`
}

// UserInfo is the identity summary returned on login.
type UserInfo struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// LoginResponse mirrors the login contract: identity summary, bearer
// token with its expiry, and the human-readable permission name.
type LoginResponse struct {
	Message    string    `json:"message"`
	UserInfo   UserInfo  `json:"userInfo"`
	Token      string    `json:"token"`
	ExpiresAt  time.Time `json:"expiresAt"`
	Permission string    `json:"permission"`
}
