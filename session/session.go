// Package session holds the locally persisted authenticated identity and
// the Store contract used by the request-shaping layer to read it.
package session

import (
	"golang.org/x/oauth2"
)

// UserScope tags a user as confined to their own organization or as
// platform staff operating across all tenants.
type UserScope string

const (
	// ScopePlatformStaff users see every organization and are never
	// auto-scoped to one.
	ScopePlatformStaff UserScope = "platform-staff"
	// ScopeBusinessStaff users are confined to their own organization.
	ScopeBusinessStaff UserScope = "business-staff"
)

// Session is the persisted snapshot of the authenticated user. It is
// created on login or on a successful who-am-I at startup, overwritten on
// every profile refresh, and destroyed on logout. The auth façade is the
// only writer; everything else reads it fresh per call.
type Session struct {
	UserID         string       `json:"user_id"`
	Username       string       `json:"username,omitempty"`
	Email          string       `json:"email,omitempty"`
	FullName       string       `json:"full_name,omitempty"`
	Role           string       `json:"role,omitempty"`
	UserScope      UserScope    `json:"user_scope,omitempty"`
	OrganizationID string       `json:"organization_id,omitempty"`
	Tokens         oauth2.Token `json:"tokens"`
}

// HasOrganization reports whether the session is bound to a tenant.
func (s *Session) HasOrganization() bool {
	return s != nil && s.OrganizationID != ""
}

// PlatformStaff reports whether the session belongs to platform staff.
func (s *Session) PlatformStaff() bool {
	return s != nil && s.UserScope == ScopePlatformStaff
}
