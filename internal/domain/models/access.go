package models

import "fmt"

// AccessRole is the permission level a principal holds on a planning resource.
// Ordered by capability: owner > editor > viewer > none.
type AccessRole string

const (
	RoleOwner  AccessRole = "owner"
	RoleEditor AccessRole = "editor"
	RoleViewer AccessRole = "viewer"

	// RoleNone means no access. It doubles as an explicit negative grant: a
	// persisted grant row with role none suppresses access and is filtered
	// out of shared listings, which is not the same as having no row at all.
	RoleNone AccessRole = "none"
)

// CanView reports whether the role grants read access through a share.
// Ownership is not a share: read paths gate on the role not being none, so
// owners are handled by the ownership short-circuit, never by CanView.
func (r AccessRole) CanView() bool {
	return r == RoleViewer || r == RoleEditor
}

// CanEdit reports whether the role allows mutating the resource.
func (r AccessRole) CanEdit() bool {
	return r == RoleEditor || r == RoleOwner
}

// IsShareable reports whether the role may be assigned through the sharing
// API. Owner is conferred only by ownership and none only by revocation.
func (r AccessRole) IsShareable() bool {
	return r == RoleViewer || r == RoleEditor
}

func (r AccessRole) rank() int {
	switch r {
	case RoleOwner:
		return 3
	case RoleEditor:
		return 2
	case RoleViewer:
		return 1
	default:
		return 0
	}
}

// Outranks reports whether r grants strictly more capability than other.
func (r AccessRole) Outranks(other AccessRole) bool {
	return r.rank() > other.rank()
}

// ParseAccessRole converts a wire value into an AccessRole.
func ParseAccessRole(s string) (AccessRole, error) {
	switch AccessRole(s) {
	case RoleOwner, RoleEditor, RoleViewer, RoleNone:
		return AccessRole(s), nil
	default:
		return RoleNone, fmt.Errorf("unknown access role %q", s)
	}
}
