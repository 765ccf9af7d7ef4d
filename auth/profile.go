package auth

import (
	"github.com/stockflowhq/stockflow-go/session"
)

// Profile is the authenticated user's account document as returned by the
// who-am-I and profile-update endpoints. Legacy field aliases are resolved
// once at this boundary by normalize; callers only ever see the canonical
// fields populated.
type Profile struct {
	ID             string            `json:"id"`
	Username       string            `json:"username,omitempty"`
	Email          string            `json:"email"`
	FullName       string            `json:"full_name,omitempty"`
	Name           string            `json:"name,omitempty"` // legacy alias of full_name
	Role           string            `json:"role,omitempty"`
	UserScope      session.UserScope `json:"user_scope,omitempty"`
	OrganizationID string            `json:"organization_id,omitempty"`
	Phone          string            `json:"phone,omitempty"`
	Avatar         string            `json:"avatar,omitempty"`
	Status         string            `json:"status,omitempty"`
}

// normalize resolves legacy naming so downstream code reads a single field.
func (p *Profile) normalize() {
	if p.FullName == "" {
		p.FullName = p.Name
	}
	p.Name = p.FullName
	if p.UserScope == "" {
		p.UserScope = session.ScopeBusinessStaff
	}
}
