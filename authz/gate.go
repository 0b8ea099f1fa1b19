// Package authz decides which views a principal may open.
package authz

import (
	"slices"

	"github.com/infocampus/campus/models"
	"github.com/infocampus/campus/session"
)

// CanAccess reports whether p may open a route restricted to allowed.
// A nil principal or an unrecognized role is always denied.
func CanAccess(p *models.Principal, allowed []models.Role) bool {
	if p == nil || !p.Role.Valid() {
		return false
	}
	if len(allowed) == 0 {
		return true
	}
	return slices.Contains(allowed, p.Role)
}

// Outcome is the kind of a gate decision
type Outcome int

const (
	// Suspend renders nothing until the session finishes loading
	Suspend Outcome = iota
	// Allow renders the requested view
	Allow
	// Redirect sends the principal to Decision.Target
	Redirect
)

func (o Outcome) String() string {
	switch o {
	case Suspend:
		return "suspend"
	case Allow:
		return "allow"
	case Redirect:
		return "redirect"
	}
	return "unknown"
}

// Decision is the result of guarding one navigation
type Decision struct {
	Outcome Outcome
	Target  string
}

// Gate guards navigation against the static route table
type Gate struct{}

// NewGate returns a gate over the route table
func NewGate() *Gate {
	return &Gate{}
}

// Decide evaluates a navigation to path
func (g *Gate) Decide(state session.State, path string) Decision {
	if state.Loading {
		return Decision{Outcome: Suspend}
	}
	if !state.Authenticated() {
		return Decision{Outcome: Redirect, Target: LoginPath}
	}

	rule, ok := Lookup(path)
	if !ok {
		return Decision{Outcome: Redirect, Target: DashboardPath}
	}
	if !CanAccess(state.Principal, rule.AllowedRoles) {
		return Decision{Outcome: Redirect, Target: DashboardPath}
	}
	return Decision{Outcome: Allow}
}
