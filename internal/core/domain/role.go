package domain

// Role is the authorization role carried by a user.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// Roles lists every valid role, lowest rank first.
func Roles() []Role {
	return []Role{RoleUser, RoleModerator, RoleAdmin}
}

// ParseRole returns the Role named by s, or ErrInvalidRole.
func ParseRole(s string) (Role, error) {
	for _, r := range Roles() {
		if string(r) == s {
			return r, nil
		}
	}
	return "", ErrInvalidRole
}

// RoleHierarchy ranks roles for "at least" checks. Roles missing from the
// map rank 0 and never satisfy a minimum-role requirement.
type RoleHierarchy map[Role]int

// DefaultHierarchy returns user(1) < moderator(2) < admin(3).
func DefaultHierarchy() RoleHierarchy {
	return RoleHierarchy{
		RoleUser:      1,
		RoleModerator: 2,
		RoleAdmin:     3,
	}
}

// Rank returns the position of r in the hierarchy, 0 when unknown.
func (h RoleHierarchy) Rank(r Role) int {
	return h[r]
}

// AtLeast reports whether actual ranks at or above min. An unknown min role
// is unsatisfiable.
func (h RoleHierarchy) AtLeast(actual, min Role) bool {
	need := h.Rank(min)
	if need == 0 {
		return false
	}
	return h.Rank(actual) >= need
}
