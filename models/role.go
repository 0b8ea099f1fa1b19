package models

import (
	"encoding/json"
	"strings"
)

// Role is the principal's role within the institution
type Role string

const (
	RoleStudent        Role = "student"
	RoleTeacher        Role = "teacher"
	RoleTreasurer      Role = "treasurer"
	RoleDirector       Role = "director"
	RoleCoordinator    Role = "coordinator"
	RoleAdministrative Role = "administrative"
)

// wireRoles maps the role names used by the REST backend and the usuarios
// table to canonical roles
var wireRoles = map[string]Role{
	"estudiante":     RoleStudent,
	"profesor":       RoleTeacher,
	"tesorero":       RoleTreasurer,
	"director":       RoleDirector,
	"coordinador":    RoleCoordinator,
	"administrativo": RoleAdministrative,
}

// AllRoles returns every known role in display order
func AllRoles() []Role {
	return []Role{
		RoleStudent,
		RoleTeacher,
		RoleTreasurer,
		RoleDirector,
		RoleCoordinator,
		RoleAdministrative,
	}
}

// ParseRole accepts canonical and backend spellings. Unknown values return
// the empty role and false.
func ParseRole(s string) (Role, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if r, ok := wireRoles[s]; ok {
		return r, true
	}
	r := Role(s)
	if r.Valid() {
		return r, true
	}
	return "", false
}

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleTreasurer, RoleDirector, RoleCoordinator, RoleAdministrative:
		return true
	}
	return false
}

// WireName returns the backend spelling of the role
func (r Role) WireName() string {
	for wire, role := range wireRoles {
		if role == r {
			return wire
		}
	}
	return string(r)
}

// String implements fmt.Stringer
func (r Role) String() string {
	return string(r)
}

// UnmarshalJSON normalizes wire spellings; unknown roles decode to the empty
// role rather than failing so that gates can deny them.
func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*r = ""
		return nil
	}
	parsed, _ := ParseRole(s)
	*r = parsed
	return nil
}
