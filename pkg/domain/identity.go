package domain

// RoleAdmin is the only privileged role; it bypasses ownership checks.
const RoleAdmin = "Admin"

// Identity is the authenticated caller, taken from a verified bearer token.
// It lives for one request and is never persisted.
type Identity struct {
	ID   RecordID `json:"id"`
	Name string   `json:"name"`
	Role string   `json:"role,omitempty"`
}

// IsAdmin reports whether the identity carries the privileged role.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// IsZero reports whether no identity is present.
func (i Identity) IsZero() bool {
	return i.ID.IsZero() && i.Name == ""
}
