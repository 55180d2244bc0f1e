// Package model defines the data structures used throughout the application.
package model

import "strings"

// Role is an authorization hint shown to the user. It is not enforced client-side.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// ParseRole normalizes backend role names such as "ROLE_ADMIN". Anything
// unrecognized is treated as a regular user.
func ParseRole(s string) Role {
	r := strings.ToUpper(strings.TrimSpace(s))
	r = strings.TrimPrefix(r, "ROLE_")
	if r == string(RoleAdmin) {
		return RoleAdmin
	}
	return RoleUser
}

// User is the identity of an account on the events service.
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Role        Role   `json:"role"`
}

// Credentials is the username/password pair used to build the Basic auth
// header on every authenticated call. It is never written to durable storage.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Empty reports whether either half of the pair is missing.
func (c Credentials) Empty() bool {
	return c.Username == "" || c.Password == ""
}

// RegisterData holds the fields of the sign-up form.
type RegisterData struct {
	FullName        string `json:"fullName" validate:"required"`
	Username        string `json:"username" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone" validate:"required"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}
