package enums

import (
	"fmt"
	"strings"
)

// Role is the authorization role the backend assigns to a user.
type Role string

const (
	RoleUser    Role = "USER"
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
)

var validRoles = []Role{
	RoleUser,
	RoleAdmin,
	RoleManager,
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the value is a known Role.
func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRole converts raw input into a Role. Matching ignores case and an
// optional ROLE_ prefix.
func ParseRole(value string) (Role, error) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	normalized = strings.TrimPrefix(normalized, "ROLE_")
	for _, candidate := range validRoles {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}

// RoleOrDefault parses value and falls back to RoleUser for blank or unknown input.
func RoleOrDefault(value string) Role {
	role, err := ParseRole(value)
	if err != nil {
		return RoleUser
	}
	return role
}
