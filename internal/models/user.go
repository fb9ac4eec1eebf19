package models

import "time"

// Role represents the role of a user
type Role string

// Role constants
const (
	RoleAdministrator   Role = "administrator"
	RoleCommunityMember Role = "community-member"
)

// IsValid reports whether the role is one of the known roles
func (r Role) IsValid() bool {
	return r == RoleAdministrator || r == RoleCommunityMember
}

// User represents a user in the system
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize password hash
	Role         Role      `json:"role"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"createdAt"`
}

// UserResponse is the public representation of a user returned next to a token
type UserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     Role   `json:"role"`
	Email    string `json:"email"`
}

// ToResponse converts a user to its public representation
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Name:     u.Name,
		Role:     u.Role,
		Email:    u.Email,
	}
}

// Identity returns the identity asserted for this user in a session token
func (u *User) Identity() Identity {
	return Identity{
		ID:       u.ID,
		Role:     u.Role,
		Username: u.Username,
	}
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     Role   `json:"role,omitempty"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse is returned by login and registration
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}
