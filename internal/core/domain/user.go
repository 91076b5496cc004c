package domain

import "strings"

// Role is the marketplace role carried by a credential.
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

// ParseRole normalises backend spellings ("ADMIN", "ROLE_SELLER", "buyer")
// into a Role. ok is false for anything outside the closed set.
func ParseRole(s string) (Role, bool) {
	r := strings.ToLower(strings.TrimSpace(s))
	r = strings.TrimPrefix(r, "role_")
	switch Role(r) {
	case RoleBuyer, RoleSeller, RoleAdmin:
		return Role(r), true
	}
	return "", false
}

// Wire returns the uppercase spelling the marketplace backend uses.
func (r Role) Wire() string {
	return strings.ToUpper(string(r))
}

// User is the client-side identity projection. It is derived from the
// credential and locally known profile fields; the backend stays authoritative.
type User struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Role      Role   `json:"role,omitempty"`
}

// DisplayName prefers the full name and falls back to the email.
func (u User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

// HasRole reports whether the user holds one of roles. An empty set matches
// any role.
func (u User) HasRole(roles ...Role) bool {
	if len(roles) == 0 {
		return true
	}
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

// Overlay returns u with every empty field filled from other.
func (u User) Overlay(other User) User {
	if u.Email == "" {
		u.Email = other.Email
	}
	if u.FirstName == "" {
		u.FirstName = other.FirstName
	}
	if u.LastName == "" {
		u.LastName = other.LastName
	}
	if u.Role == "" {
		u.Role = other.Role
	}
	return u
}
