package views

import (
	"fmt"
	"io"

	"github.com/infocampus/campus/authz"
	"github.com/infocampus/campus/models"
)

// MenuItem is one navigation entry shown next to a dashboard
type MenuItem struct {
	Label string
	Path  string
}

var menus = map[models.Role][]MenuItem{
	models.RoleStudent: {
		{Label: "Inicio", Path: authz.DashboardPath},
		{Label: "Mis Notas", Path: "/notas"},
		{Label: "Horarios", Path: "/horarios"},
		{Label: "Estado de Cuenta", Path: "/estado-cuenta"},
	},
	models.RoleTeacher: {
		{Label: "Panel Control", Path: authz.DashboardPath},
		{Label: "Mis Secciones", Path: "/secciones"},
	},
	models.RoleTreasurer: {
		{Label: "Caja Principal", Path: authz.DashboardPath},
		{Label: "Validar Pagos", Path: "/validar-pagos"},
		{Label: "Lista de Mora", Path: "/lista-mora"},
	},
	models.RoleDirector: {
		{Label: "Global Insight", Path: authz.DashboardPath},
		{Label: "Malla Curricular", Path: "/malla-curricular"},
	},
	models.RoleCoordinator: {
		{Label: "Dashboard", Path: authz.DashboardPath},
		{Label: "Secciones", Path: "/secciones"},
	},
	models.RoleAdministrative: {
		{Label: "Dashboard", Path: authz.DashboardPath},
		{Label: "Malla Curricular", Path: "/malla-curricular"},
	},
}

// Menu returns the navigation entries for role. Unknown roles get none.
func Menu(role models.Role) []MenuItem {
	items := menus[role]
	return append([]MenuItem(nil), items...)
}

// RenderMenu writes the entries as a numbered list
func RenderMenu(w io.Writer, items []MenuItem) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintln(w, "Menú:")
	for i, item := range items {
		fmt.Fprintf(w, "  %d. %-18s %s\n", i+1, item.Label, item.Path)
	}
}
