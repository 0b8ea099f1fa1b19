package authz

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/infocampus/campus/models"
	"github.com/infocampus/campus/session"
)

func principal(role models.Role) *models.Principal {
	return &models.Principal{ID: 1, Username: "u", Role: role, BearerToken: "tok"}
}

func authenticated(role models.Role) session.State {
	return session.State{Principal: principal(role)}
}

func TestCanAccess(t *testing.T) {
	ruleSets := [][]models.Role{
		nil,
		{models.RoleStudent},
		{models.RoleTeacher, models.RoleCoordinator},
		{models.RoleDirector, models.RoleCoordinator, models.RoleTreasurer, models.RoleAdministrative},
	}

	for _, role := range models.AllRoles() {
		for _, allowed := range ruleSets {
			want := len(allowed) == 0 || slices.Contains(allowed, role)
			assert.Equal(t, want, CanAccess(principal(role), allowed), "role=%s allowed=%v", role, allowed)
		}
	}

	t.Run("nil principal denied", func(t *testing.T) {
		assert.False(t, CanAccess(nil, nil))
	})
	t.Run("unknown role denied", func(t *testing.T) {
		assert.False(t, CanAccess(principal(models.Role("janitor")), nil))
		assert.False(t, CanAccess(principal(""), []models.Role{""}))
	})
}

func TestRouteRule_Match(t *testing.T) {
	rule := RouteRule{Path: "/gestion-notas/{id}"}

	assert.True(t, rule.Match("/gestion-notas/12"))
	assert.True(t, rule.Match("/gestion-notas/12/"))
	assert.True(t, rule.Match("/gestion-notas/12?tab=2"))
	assert.False(t, rule.Match("/gestion-notas"))
	assert.False(t, rule.Match("/gestion-notas/12/extra"))
	assert.False(t, rule.Match("/secciones/12"))
}

func TestGate_Decide(t *testing.T) {
	gate := NewGate()

	tests := []struct {
		name  string
		state session.State
		path  string
		want  Decision
	}{
		{"loading suspends", session.State{Loading: true}, "/notas", Decision{Outcome: Suspend}},
		{"loading suspends unknown path", session.State{Loading: true}, "/nope", Decision{Outcome: Suspend}},
		{"anonymous goes to login", session.State{}, "/notas", Decision{Outcome: Redirect, Target: LoginPath}},
		{"principal without token goes to login", session.State{Principal: &models.Principal{Role: models.RoleStudent}}, "/dashboard", Decision{Outcome: Redirect, Target: LoginPath}},
		{"student opens grades", authenticated(models.RoleStudent), "/notas", Decision{Outcome: Allow}},
		{"any role opens dashboard", authenticated(models.RoleTreasurer), "/dashboard", Decision{Outcome: Allow}},
		{"teacher opens grade sheet", authenticated(models.RoleTeacher), "/gestion-notas/7", Decision{Outcome: Allow}},
		{"student cannot validate payments", authenticated(models.RoleStudent), "/validar-pagos", Decision{Outcome: Redirect, Target: DashboardPath}},
		{"teacher cannot open student file", authenticated(models.RoleTeacher), "/estudiante/3", Decision{Outcome: Redirect, Target: DashboardPath}},
		{"administrative opens curriculum", authenticated(models.RoleAdministrative), "/malla-curricular", Decision{Outcome: Allow}},
		{"unknown role denied dashboard", authenticated(models.Role("janitor")), "/dashboard", Decision{Outcome: Redirect, Target: DashboardPath}},
		{"unknown path falls back to dashboard", authenticated(models.RoleDirector), "/nowhere", Decision{Outcome: Redirect, Target: DashboardPath}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, gate.Decide(tt.state, tt.path))
		})
	}
}

func TestSelectDashboard(t *testing.T) {
	tests := []struct {
		name  string
		state session.State
		want  Dispatch
	}{
		{"loading renders nothing", session.State{Loading: true, Principal: principal(models.RoleStudent)}, Dispatch{Suspend: true}},
		{"student", authenticated(models.RoleStudent), Dispatch{View: StudentView}},
		{"teacher", authenticated(models.RoleTeacher), Dispatch{View: TeacherView}},
		{"treasurer", authenticated(models.RoleTreasurer), Dispatch{View: TreasurerView}},
		{"director", authenticated(models.RoleDirector), Dispatch{View: DirectorView}},
		{"coordinator", authenticated(models.RoleCoordinator), Dispatch{View: CoordinatorView}},
		{"administrative shares director view", authenticated(models.RoleAdministrative), Dispatch{View: DirectorView}},
		{"unknown role", authenticated(models.Role("unknown_role")), Dispatch{ToLogin: true}},
		{"null role", authenticated(""), Dispatch{ToLogin: true}},
		{"no principal", session.State{}, Dispatch{ToLogin: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectDashboard(tt.state))
		})
	}
}

func TestSelectDashboard_TotalOverRoles(t *testing.T) {
	for _, role := range models.AllRoles() {
		d := SelectDashboard(authenticated(role))
		assert.NotEmpty(t, d.View, "role %s has no dashboard", role)
	}
}

func TestRoutes_ReturnsCopy(t *testing.T) {
	routes := Routes()
	routes[1].AllowedRoles[0] = models.RoleDirector

	rule, ok := Lookup("/secciones")
	assert.True(t, ok)
	assert.Equal(t, models.RoleTeacher, rule.AllowedRoles[0])
}

func TestLookup_ReturnsCopy(t *testing.T) {
	rule, ok := Lookup("/secciones")
	assert.True(t, ok)
	rule.AllowedRoles[0] = models.RoleStudent

	d := NewGate().Decide(authenticated(models.RoleStudent), "/secciones")
	assert.Equal(t, Redirect, d.Outcome)
	again, _ := Lookup("/secciones")
	assert.Equal(t, models.RoleTeacher, again.AllowedRoles[0])
}
