// Package views writes the campus dashboards and reports to a terminal.
package views

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/infocampus/campus/models"
	"github.com/infocampus/campus/services/academic"
)

const noGrade = "-"

var statusLabels = map[models.EnrollmentStatus]string{
	models.EnrollmentInProgress: "cursando",
	models.EnrollmentApproved:   "aprobado",
	models.EnrollmentFailed:     "reprobado",
	models.EnrollmentWithdrawn:  "retirado",
}

func statusLabel(s models.EnrollmentStatus) string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

func grade(d *decimal.Decimal) string {
	if d == nil {
		return noGrade
	}
	return d.StringFixed(2)
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func yesNo(b bool) string {
	if b {
		return "Sí"
	}
	return "No"
}

func arrearsLabel(inArrears bool) string {
	if inArrears {
		return "En Mora"
	}
	return "Al Día"
}

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func title(w io.Writer, text string) {
	fmt.Fprintln(w, text)
	fmt.Fprintln(w, strings.Repeat("=", len([]rune(text))))
}

// Header greets the principal and shows their role
func Header(w io.Writer, p *models.Principal) {
	if p == nil {
		return
	}
	fmt.Fprintf(w, "Info Campus | %s (%s)\n", p.FullName(), p.Role.WireName())
	if p.InArrears {
		fmt.Fprintf(w, "Estado financiero: En Mora (%s)\n", money(p.DebtTotal))
	}
	fmt.Fprintln(w)
}

// Blocked is shown to a student with a financial hold instead of the dashboard
func Blocked(w io.Writer, p *models.Principal) {
	title(w, "Acceso Restringido")
	if p != nil {
		fmt.Fprintf(w, "Hola %s.\n", p.FullName())
	}
	fmt.Fprintln(w, "Según nuestros registros posees facturas pendientes.")
	fmt.Fprintln(w, "Por favor, regulariza tu situación en Tesorería para habilitar tus módulos académicos.")
	if p != nil && p.DebtTotal.IsPositive() {
		fmt.Fprintf(w, "Deuda total: %s\n", money(p.DebtTotal))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Pagar en línea: https://pagos.infocampus.com")
	fmt.Fprintln(w, "Cerrar sesión: campus logout")
	fmt.Fprintln(w, "Departamento de Tesorería | Info Campus")
}

// StudentDashboard lists the principal's current enrollments
func StudentDashboard(w io.Writer, enrollments []academic.StudentEnrollment) {
	title(w, "Mi Expediente")
	fmt.Fprintln(w, "Resumen de carga actual")
	if len(enrollments) == 0 {
		fmt.Fprintln(w, "No tienes materias inscritas este ciclo.")
		return
	}
	tw := table(w)
	fmt.Fprintln(tw, "Código\tMateria\tSecc\tAula\tNota\tEstado")
	for _, e := range enrollments {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			e.SubjectCode, e.SubjectName, e.Section, e.Room, grade(e.FinalGrade), statusLabel(e.Status))
	}
	tw.Flush()
}

// GradeReport is the student's transcript with average and approved count
func GradeReport(w io.Writer, enrollments []academic.StudentEnrollment) {
	title(w, "Boletín de Calificaciones")
	var (
		sum      decimal.Decimal
		graded   int
		approved int
	)
	tw := table(w)
	fmt.Fprintln(tw, "Código\tAsignatura\tNota Final\tResultado")
	for _, e := range enrollments {
		if e.FinalGrade != nil {
			sum = sum.Add(*e.FinalGrade)
			graded++
		}
		if e.Status == models.EnrollmentApproved {
			approved++
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.SubjectCode, e.SubjectName, grade(e.FinalGrade), statusLabel(e.Status))
	}
	tw.Flush()

	avg := noGrade
	if graded > 0 {
		avg = sum.Div(decimal.NewFromInt(int64(graded))).StringFixed(2)
	}
	fmt.Fprintf(w, "Promedio Actual: %s\n", avg)
	fmt.Fprintf(w, "Materias Aprobadas: %d\n", approved)
}

// Schedule lists section, room and term per enrolled subject
func Schedule(w io.Writer, enrollments []academic.StudentEnrollment) {
	title(w, "Mi Horario Actual")
	if len(enrollments) == 0 {
		fmt.Fprintln(w, "No tienes materias inscritas este ciclo.")
		return
	}
	tw := table(w)
	fmt.Fprintln(tw, "Materia\tSecc\tAula\tPeriodo")
	for _, e := range enrollments {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.SubjectName, e.Section, e.Room, e.Term)
	}
	tw.Flush()
}

// AccountStatement summarizes the principal's debt position
func AccountStatement(w io.Writer, p *models.Principal) {
	title(w, "Estado de Cuenta")
	if p == nil {
		return
	}
	fmt.Fprintf(w, "Deuda Total Pendiente: %s\n", money(p.DebtTotal))
	fmt.Fprintf(w, "Estado: %s\n", arrearsLabel(p.InArrears))
	if p.IsScholarship {
		fmt.Fprintf(w, "Beca: %.0f%%\n", p.ScholarshipPct)
	}
	if p.InArrears {
		fmt.Fprintln(w, "Descarga bloqueada por mora.")
	}
}

// TeacherDashboard shows section stats and the classes taught
func TeacherDashboard(w io.Writer, d *academic.TeacherDashboard) {
	title(w, "Panel Control")
	if d == nil {
		return
	}
	fmt.Fprintf(w, "Secciones activas: %d\n", d.Stats.ActiveSections)
	fmt.Fprintf(w, "Total alumnos: %d\n", d.Stats.TotalStudents)
	fmt.Fprintf(w, "Rendimiento promedio: %s\n", d.Stats.AverageGrade.StringFixed(2))
	fmt.Fprintln(w)
	Sections(w, d.Classes)
}

// Sections lists the classes taught by the principal
func Sections(w io.Writer, classes []academic.TeacherClass) {
	if len(classes) == 0 {
		fmt.Fprintln(w, "Sin secciones asignadas.")
		return
	}
	tw := table(w)
	fmt.Fprintln(tw, "Secc.\tMateria\tCódigo\tAula\tAlumnos\tHorario")
	for _, c := range classes {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\n", c.ID, c.Subject, c.Code, c.Room, c.Enrolled, c.Schedule)
	}
	tw.Flush()
}

// GradeSheet lists a section's students with their current grade
func GradeSheet(w io.Writer, s *academic.GradeSheet) {
	if s == nil {
		return
	}
	title(w, fmt.Sprintf("%s (%s)", s.Subject, s.Code))
	fmt.Fprintf(w, "Aula: %s | Alumnos: %d\n", s.Room, s.Total)
	tw := table(w)
	fmt.Fprintln(tw, "Inscripción\tEstudiante\tCarnet\tCalificación (0-10)\tEstado\tPagado")
	for _, l := range s.Students {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			l.EnrollmentID, l.StudentName, l.StudentID, grade(l.CurrentGrade), statusLabel(l.Status), yesNo(l.Paid))
	}
	tw.Flush()
}

// GradeResult confirms a submitted grade
func GradeResult(w io.Writer, r *academic.GradeResult) {
	if r == nil {
		return
	}
	fmt.Fprintf(w, "%s\n", r.Message)
	fmt.Fprintf(w, "Inscripción %d: %s (%s)\n", r.EnrollmentID, r.FinalGrade.StringFixed(2), statusLabel(r.Status))
	if r.Standing != nil {
		fmt.Fprintf(w, "Estudiante: %s, deuda %s\n", arrearsLabel(r.Standing.InArrears), money(r.Standing.DebtTotal))
	}
}

// TreasurerDashboard shows projected against collected income
func TreasurerDashboard(w io.Writer, d *academic.FinanceDashboard) {
	title(w, "Caja Principal")
	if d == nil {
		return
	}
	fmt.Fprintf(w, "Ingreso Proyectado: %s\n", money(d.ProjectedIncome))
	fmt.Fprintf(w, "Recaudación Real: %s\n", money(d.ActualIncome))
	fmt.Fprintf(w, "Tasa de Cobranza: %s%%\n", d.CollectionRate.StringFixed(1))
	fmt.Fprintln(w)
	Debtors(w, d.Collections)
}

// Debtors lists students with outstanding obligations
func Debtors(w io.Writer, lines []academic.DebtorLine) {
	fmt.Fprintln(w, "Lista de Morosidad")
	if len(lines) == 0 {
		fmt.Fprintln(w, "Sin saldos pendientes.")
		return
	}
	tw := table(w)
	fmt.Fprintln(tw, "ID\tEstudiante\tReferencia\tEstado\tDeuda Total")
	for _, l := range lines {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", l.ID, l.FullName, l.Username, arrearsLabel(l.InArrears), money(l.DebtTotal))
	}
	tw.Flush()
}

// PaymentReceipt confirms a registered payment
func PaymentReceipt(w io.Writer, r *academic.PaymentReceipt) {
	if r == nil {
		return
	}
	fmt.Fprintln(w, r.Message)
	fmt.Fprintf(w, "Pagos registrados: %d | Monto total: %s\n", r.Payments, money(r.TotalAmount))
}

// DirectorDashboard shows the institutional overview
func DirectorDashboard(w io.Writer, d *academic.InstitutionalDashboard) {
	title(w, "Global Insight")
	if d == nil {
		return
	}
	fmt.Fprintf(w, "Estudiantes: %d | Profesores: %d | Materias: %d\n", d.TotalStudents, d.TotalTeachers, d.TotalSubjects)
	fmt.Fprintf(w, "Promedio institucional: %s\n", d.AverageGrade.StringFixed(2))
	fmt.Fprintf(w, "Ingresos Periodo: %s\n", money(d.TotalIncome))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Alertas de Gestión")
	Debtors(w, d.Debtors)
}

// CoordinatorDashboard shows the student population per career
func CoordinatorDashboard(w io.Writer, d *academic.InstitutionalDashboard) {
	title(w, "Población Estudiantil")
	if d == nil {
		return
	}
	fmt.Fprintf(w, "Estudiantes: %d | Materias: %d\n", d.TotalStudents, d.TotalSubjects)
	tw := table(w)
	fmt.Fprintln(tw, "Carrera\tAlumnos")
	for _, c := range d.StudentsByCareer {
		fmt.Fprintf(tw, "%s\t%d\n", c.Name, c.Students)
	}
	tw.Flush()
}

// Subjects lists the curriculum ordered as received
func Subjects(w io.Writer, subjects []academic.Subject) {
	title(w, "Malla Curricular")
	tw := table(w)
	fmt.Fprintln(tw, "Código\tMateria\tSemestre\tCréditos\tCarrera")
	for _, s := range subjects {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", s.Code, s.Name, s.Semester, s.Credits, s.CareerName)
	}
	tw.Flush()
}

// StudentRecord shows one student's profile and enrollments
func StudentRecord(w io.Writer, r *academic.StudentRecord) {
	if r == nil {
		return
	}
	title(w, r.FullName)
	fmt.Fprintf(w, "Usuario: %s | Email: %s\n", r.Username, r.Email)
	if r.Career != nil {
		fmt.Fprintf(w, "Carrera: %s (%s)\n", r.Career.Name, r.Career.Code)
	}
	if r.IsScholarship {
		fmt.Fprintf(w, "Beca: %.0f%%\n", r.ScholarshipPct)
	}
	fmt.Fprintf(w, "Deuda total: %s\n", money(r.DebtTotal))
	tw := table(w)
	fmt.Fprintln(tw, "Código\tMateria\tSecc\tPeriodo\tNota\tEstado\tPagado")
	for _, e := range r.Enrollments {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			e.SubjectCode, e.Subject, e.Section, e.Term, grade(e.FinalGrade), statusLabel(e.Status), yesNo(e.Paid))
	}
	tw.Flush()
}

// CycleClosure reports the result of closing the academic term
func CycleClosure(w io.Writer, c *academic.CycleClosure) {
	if c == nil {
		return
	}
	fmt.Fprintln(w, c.Message)
	fmt.Fprintf(w, "Periodo: %s (%s)\n", c.Term.Name, c.Term.Code)
	fmt.Fprintf(w, "Aprobados: %d | Reprobados: %d | Procesados: %d\n", c.Stats.Approved, c.Stats.Failed, c.Stats.Processed)
	fmt.Fprintf(w, "Aprobación: %s%%\n", c.Stats.ApprovalRate.StringFixed(1))
}
