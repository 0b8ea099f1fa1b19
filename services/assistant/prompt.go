package assistant

import (
	"fmt"
	"strings"

	"github.com/infocampus/campus/models"
)

// StyleInstruction closes every system prompt
const StyleInstruction = "Responde breve, amable y en español."

// FallbackReply is returned when the provider answers without choices
const FallbackReply = "No pude procesar tu solicitud."

var personas = map[models.Role]string{
	models.RoleStudent:        "Ayudas a estudiantes con sus notas, pagos, horarios y trámites.",
	models.RoleTeacher:        "Ayudas a docentes con sus secciones, listas de clase y registro de notas.",
	models.RoleTreasurer:      "Ayudas a tesorería con pagos, estados de cuenta y estudiantes en mora.",
	models.RoleDirector:       "Ayudas a la dirección con indicadores institucionales y cierre de ciclo.",
	models.RoleCoordinator:    "Ayudas a coordinación académica con materias, secciones y estudiantes.",
	models.RoleAdministrative: "Ayudas al personal administrativo con indicadores institucionales y cierre de ciclo.",
}

var statusLabels = map[models.EnrollmentStatus]string{
	models.EnrollmentInProgress: "cursando",
	models.EnrollmentApproved:   "aprobado",
	models.EnrollmentFailed:     "reprobado",
	models.EnrollmentWithdrawn:  "retirado",
}

func buildSystemPrompt(pc promptContext) string {
	p := pc.Profile
	if p == nil {
		p = models.DefaultProfile()
	}

	var b strings.Builder
	b.WriteString("Eres Esmeralda, asistente académica de Info Campus.")
	if persona, ok := personas[p.Role]; ok {
		b.WriteString(" ")
		b.WriteString(persona)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Usuario: %s\n", strings.TrimSpace(p.FirstName+" "+p.LastName))
	fmt.Fprintf(&b, "Rol: %s\n", roleLabel(p.Role))

	if pc.EnrollmentsLoaded {
		if len(pc.Enrollments) == 0 {
			b.WriteString("Notas: sin inscripciones registradas\n")
		} else {
			b.WriteString("Notas:\n")
			for _, e := range pc.Enrollments {
				grade := "sin nota"
				if e.FinalGrade != nil {
					grade = e.FinalGrade.StringFixed(2)
				}
				fmt.Fprintf(&b, "- %s: %s (%s)\n", e.Subject, grade, statusLabels[e.Status])
			}
		}
	}
	if pc.PaymentsLoaded {
		debt := "No"
		if pc.PendingPayments > 0 {
			debt = "Sí"
		}
		fmt.Fprintf(&b, "Deudas pendientes: %s\n", debt)
	}

	b.WriteString(StyleInstruction)
	return b.String()
}

func roleLabel(r models.Role) string {
	if !r.Valid() {
		return "desconocido"
	}
	return r.WireName()
}
