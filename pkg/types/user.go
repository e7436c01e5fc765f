// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "strings"

// Role is a user role tag. A user may hold several roles at once, so
// every permission check must test membership in the role set rather
// than compare against a single role.
type Role string

const (
	RoleAuthor  Role = "AUTHOR"
	RoleEditor  Role = "EDITOR"
	RoleReferee Role = "REFEREE"
)

// User is an account record as reported by the backend. Read-only on
// this side; the email is the identity key.
type User struct {
	Email     string `json:"email" yaml:"email"`
	Name      string `json:"name" yaml:"name"`
	RoleCodes []Role `json:"roleCodes" yaml:"roleCodes"`
}

// HasRole reports whether the user's role set contains role.
func (u *User) HasRole(role Role) bool {
	return HasRole(u.RoleCodes, role)
}

// HasRole reports whether roles contains role, comparing
// case-insensitively since older backend records used mixed case.
func HasRole(roles []Role, role Role) bool {
	for _, r := range roles {
		if strings.EqualFold(string(r), string(role)) {
			return true
		}
	}
	return false
}
