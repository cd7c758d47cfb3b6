// Package authz implements role checks as composable gates over an
// authenticated session. A gate never panics and never assumes privilege:
// a missing session is always rejected as unauthenticated.
package authz

import (
	"github.com/taskmanager/task-api/internal/core/domain"
)

// Outcome is the tagged result of a gate: either Allow with the session
// that passed, or Reject with the reason.
type Outcome struct {
	Session *domain.Session
	Err     error
}

// Allow returns a passing outcome for s.
func Allow(s *domain.Session) Outcome { return Outcome{Session: s} }

// Reject returns a failing outcome.
func Reject(err error) Outcome { return Outcome{Err: err} }

// Allowed reports whether the outcome passed.
func (o Outcome) Allowed() bool { return o.Err == nil }

// Gate decides whether a session may proceed.
type Gate func(s *domain.Session) Outcome

// Evaluate runs gates in order and returns the first rejection. With no
// gates it only requires a session.
func Evaluate(s *domain.Session, gates ...Gate) Outcome {
	if s == nil {
		return Reject(domain.Unauthenticated(domain.ReasonAbsent))
	}
	for _, g := range gates {
		if out := g(s); !out.Allowed() {
			return out
		}
	}
	return Allow(s)
}

// Authorizer builds gates against a role hierarchy.
type Authorizer struct {
	hierarchy domain.RoleHierarchy
}

// New returns an Authorizer for h. A nil h uses domain.DefaultHierarchy.
func New(h domain.RoleHierarchy) *Authorizer {
	if h == nil {
		h = domain.DefaultHierarchy()
	}
	return &Authorizer{hierarchy: h}
}

// ExactRole passes when the session role is one of roles.
func (a *Authorizer) ExactRole(roles ...domain.Role) Gate {
	allowed := make(map[domain.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(s *domain.Session) Outcome {
		if s == nil {
			return Reject(domain.Unauthenticated(domain.ReasonAbsent))
		}
		if _, ok := allowed[s.Role]; !ok {
			return Reject(domain.Forbidden(s.Role, roles...))
		}
		return Allow(s)
	}
}

// MinRole passes when the session role ranks at or above min.
func (a *Authorizer) MinRole(min domain.Role) Gate {
	return func(s *domain.Session) Outcome {
		if s == nil {
			return Reject(domain.Unauthenticated(domain.ReasonAbsent))
		}
		if !a.hierarchy.AtLeast(s.Role, min) {
			return Reject(domain.Forbidden(s.Role, min))
		}
		return Allow(s)
	}
}

// SelfOr passes when the session acts on its own identity, otherwise defers
// to other.
func (a *Authorizer) SelfOr(targetID string, other Gate) Gate {
	return func(s *domain.Session) Outcome {
		if s == nil {
			return Reject(domain.Unauthenticated(domain.ReasonAbsent))
		}
		if targetID == "" || s.UserID == targetID {
			return Allow(s)
		}
		return other(s)
	}
}

// Hierarchy returns the hierarchy the authorizer ranks against.
func (a *Authorizer) Hierarchy() domain.RoleHierarchy {
	return a.hierarchy
}
