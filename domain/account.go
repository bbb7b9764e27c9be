// Package domain contains core concepts of the messaging system.
// This file defines Account entities and role precedence rules.
// No runtime, network, or UI logic should be added here.
package domain

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
	RoleOwner Role = "owner"
)

// Administrative reports whether the role belongs to the admin tier.
// Admin-tier records take precedence over plain user records sharing
// a username or an id.
func (r Role) Administrative() bool {
	return r == RoleAdmin || r == RoleOwner
}

// Account is a registered identity. Created at registration (RoleUser)
// or at first-run bootstrap (RoleOwner). Never deleted in normal
// operation; profile updates touch DisplayName and Bio only.
type Account struct {
	ID           string
	Username     string
	PasswordHash string
	DisplayName  string
	Bio          string
	Role         Role
	Banned       bool
	CreatedAt    time.Time
}

// AccountPatch carries the mutable account fields. Nil means "leave
// unchanged". Role moves the record between tiers, Banned is reserved
// for the external administrative path.
type AccountPatch struct {
	DisplayName *string
	Bio         *string
	Role        *Role
	Banned      *bool
}
