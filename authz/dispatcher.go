package authz

import (
	"github.com/infocampus/campus/models"
	"github.com/infocampus/campus/session"
)

// View names one role dashboard
type View string

const (
	StudentView     View = "student"
	TeacherView     View = "teacher"
	TreasurerView   View = "treasurer"
	DirectorView    View = "director"
	CoordinatorView View = "coordinator"
)

var dashboards = map[models.Role]View{
	models.RoleStudent:        StudentView,
	models.RoleTeacher:        TeacherView,
	models.RoleTreasurer:      TreasurerView,
	models.RoleDirector:       DirectorView,
	models.RoleCoordinator:    CoordinatorView,
	models.RoleAdministrative: DirectorView,
}

// Dispatch is the result of choosing a dashboard. Exactly one of Suspend,
// ToLogin or a non-empty View holds.
type Dispatch struct {
	Suspend bool
	ToLogin bool
	View    View
}

// SelectDashboard maps the session to a role dashboard
func SelectDashboard(state session.State) Dispatch {
	if state.Loading {
		return Dispatch{Suspend: true}
	}
	if !state.Authenticated() {
		return Dispatch{ToLogin: true}
	}
	view, ok := dashboards[state.Principal.Role]
	if !ok {
		return Dispatch{ToLogin: true}
	}
	return Dispatch{View: view}
}
