package authz

import (
	"strings"

	"github.com/infocampus/campus/models"
)

// RouteRule binds a path pattern to the roles allowed to open it.
// An empty AllowedRoles list admits any authenticated principal.
type RouteRule struct {
	Path         string
	AllowedRoles []models.Role
}

const (
	LoginPath     = "/login"
	DashboardPath = "/dashboard"
)

var routeTable = []RouteRule{
	{Path: DashboardPath},
	{Path: "/secciones", AllowedRoles: []models.Role{models.RoleTeacher, models.RoleCoordinator}},
	{Path: "/gestion-notas/{id}", AllowedRoles: []models.Role{models.RoleTeacher, models.RoleCoordinator}},
	{Path: "/validar-pagos", AllowedRoles: []models.Role{models.RoleTreasurer}},
	{Path: "/lista-mora", AllowedRoles: []models.Role{models.RoleTreasurer}},
	{Path: "/notas", AllowedRoles: []models.Role{models.RoleStudent}},
	{Path: "/horarios", AllowedRoles: []models.Role{models.RoleStudent}},
	{Path: "/estado-cuenta", AllowedRoles: []models.Role{models.RoleStudent}},
	{Path: "/estudiante/{id}", AllowedRoles: []models.Role{
		models.RoleDirector, models.RoleCoordinator, models.RoleTreasurer, models.RoleAdministrative,
	}},
	{Path: "/malla-curricular", AllowedRoles: []models.Role{
		models.RoleDirector, models.RoleCoordinator, models.RoleAdministrative,
	}},
}

// Routes returns a copy of the route table
func Routes() []RouteRule {
	out := make([]RouteRule, len(routeTable))
	for i, r := range routeTable {
		out[i] = r.clone()
	}
	return out
}

// Lookup finds the rule whose pattern matches path and returns a copy of it
func Lookup(path string) (RouteRule, bool) {
	for _, r := range routeTable {
		if r.Match(path) {
			return r.clone(), true
		}
	}
	return RouteRule{}, false
}

func (r RouteRule) clone() RouteRule {
	return RouteRule{Path: r.Path, AllowedRoles: append([]models.Role(nil), r.AllowedRoles...)}
}

// Match reports whether path fits the rule's pattern. "{name}" segments
// match any non-empty segment.
func (r RouteRule) Match(path string) bool {
	want := splitPath(r.Path)
	got := splitPath(path)
	if len(want) != len(got) {
		return false
	}
	for i, seg := range want {
		if isParam(seg) {
			if got[i] == "" {
				return false
			}
			continue
		}
		if seg != got[i] {
			return false
		}
	}
	return true
}

func isParam(seg string) bool {
	return strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}")
}

func splitPath(p string) []string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}
