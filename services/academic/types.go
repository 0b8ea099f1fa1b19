package academic

import (
	"github.com/shopspring/decimal"

	"github.com/infocampus/campus/models"
)

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// StudentEnrollment is one line of the student's own enrollment list
type StudentEnrollment struct {
	models.Enrollment
	SubjectCode string `json:"codigo"`
	Credits     int    `json:"creditos"`
	Section     string `json:"seccion"`
	Room        string `json:"aula"`
	Term        string `json:"periodo"`
}

// TeacherDashboard is returned by GET /dashboards/profesor
type TeacherDashboard struct {
	Stats struct {
		ActiveSections int             `json:"secciones_activas"`
		TotalStudents  int             `json:"total_alumnos"`
		AverageGrade   decimal.Decimal `json:"rendimiento_promedio"`
	} `json:"stats"`
	Classes []TeacherClass `json:"mis_clases"`
}

// TeacherClass is one section taught by the principal
type TeacherClass struct {
	ID       int64  `json:"id"`
	Subject  string `json:"materia"`
	Code     string `json:"codigo"`
	Room     string `json:"aula"`
	Enrolled int    `json:"alumnos_inscritos"`
	Schedule string `json:"horario"`
	Term     string `json:"periodo"`
}

// GradeSheet is returned by GET /inscripciones/seccion/{id}/notas
type GradeSheet struct {
	Subject  string           `json:"materia"`
	Code     string           `json:"codigo"`
	Room     string           `json:"aula"`
	Total    int              `json:"total_alumnos"`
	Students []GradeSheetLine `json:"alumnos"`
}

// GradeSheetLine is one enrolled student with their current grade
type GradeSheetLine struct {
	EnrollmentID int64                   `json:"inscripcion_id"`
	StudentName  string                  `json:"alumno_nombre"`
	StudentID    string                  `json:"alumno_carnet"`
	CurrentGrade *decimal.Decimal        `json:"nota_actual"`
	Status       models.EnrollmentStatus `json:"estado"`
	Paid         bool                    `json:"pagado"`
}

// GradeSubmission is the body of PUT /inscripciones/{id}/nota
type GradeSubmission struct {
	FinalGrade float64 `json:"nota_final" validate:"gte=0,lte=10"`
}

// GradeResult is the backend's answer to a grade submission
type GradeResult struct {
	Message      string                  `json:"message"`
	EnrollmentID int64                   `json:"inscripcion_id"`
	FinalGrade   decimal.Decimal         `json:"nota_final"`
	Status       models.EnrollmentStatus `json:"estado"`
	Standing     *FinancialStanding      `json:"estado_financiero_estudiante,omitempty"`
}

// FinancialStanding is a student's debt position after a change
type FinancialStanding struct {
	InArrears bool            `json:"en_mora"`
	DebtTotal decimal.Decimal `json:"deuda_total"`
}

// FinanceDashboard is returned by GET /dashboards/finanzas
type FinanceDashboard struct {
	ProjectedIncome decimal.Decimal `json:"ingreso_proyectado"`
	ActualIncome    decimal.Decimal `json:"ingreso_real"`
	CollectionRate  decimal.Decimal `json:"tasa_cobranza"`
	Collections     []DebtorLine    `json:"listado_cobranza"`
}

// DebtorLine is one student with outstanding obligations
type DebtorLine struct {
	ID        int64           `json:"id"`
	Username  string          `json:"username"`
	FullName  string          `json:"nombre_completo"`
	InArrears bool            `json:"en_mora"`
	DebtTotal decimal.Decimal `json:"deuda_total"`
}

// PaymentReceipt is returned by POST /estudiantes/{id}/registrar-pago
type PaymentReceipt struct {
	Message     string          `json:"message"`
	Payments    int             `json:"pagos_registrados"`
	TotalAmount decimal.Decimal `json:"monto_total"`
}

// InstitutionalDashboard is returned by GET /dashboards/institucional
type InstitutionalDashboard struct {
	TotalStudents    int             `json:"total_estudiantes"`
	TotalTeachers    int             `json:"total_profesores"`
	TotalSubjects    int             `json:"materias_totales"`
	AverageGrade     decimal.Decimal `json:"promedio_institucional"`
	TotalIncome      decimal.Decimal `json:"ingresos_totales"`
	StudentsByCareer []struct {
		Name     string `json:"nombre"`
		Students int    `json:"num_alumnos"`
	} `json:"estudiantes_por_carrera"`
	Debtors []DebtorLine `json:"alumnos_mora"`
}

// Subject is one entry of the curriculum
type Subject struct {
	ID         int64  `json:"id"`
	Name       string `json:"nombre"`
	Code       string `json:"codigo"`
	Semester   int    `json:"semestre"`
	Credits    int    `json:"creditos"`
	CareerName string `json:"carrera_nombre"`
}

// StudentRecord is returned by GET /estudiantes/{id}
type StudentRecord struct {
	ID             int64           `json:"id"`
	Username       string          `json:"username"`
	FullName       string          `json:"nombre_completo"`
	Email          string          `json:"email"`
	Role           models.Role     `json:"rol"`
	IsScholarship  bool            `json:"es_becado"`
	ScholarshipPct float64         `json:"porcentaje_beca"`
	DebtTotal      decimal.Decimal `json:"deuda_total"`
	Career         *struct {
		ID   int64  `json:"id"`
		Name string `json:"nombre"`
		Code string `json:"codigo"`
	} `json:"carrera_detalle"`
	Enrollments []struct {
		ID          int64                   `json:"id"`
		Subject     string                  `json:"materia_nombre"`
		SubjectCode string                  `json:"materia_codigo"`
		Section     string                  `json:"seccion"`
		Term        string                  `json:"periodo"`
		FinalGrade  *decimal.Decimal        `json:"nota_final"`
		Status      models.EnrollmentStatus `json:"estado"`
		Paid        bool                    `json:"pagado"`
	} `json:"inscripciones"`
}

// CycleClosure is returned by POST /periodos/cerrar-ciclo
type CycleClosure struct {
	Message string `json:"message"`
	Term    struct {
		ID   int64  `json:"id"`
		Code string `json:"codigo"`
		Name string `json:"nombre"`
	} `json:"periodo_cerrado"`
	Stats struct {
		Approved     int             `json:"aprobados"`
		Failed       int             `json:"reprobados"`
		Processed    int             `json:"total_procesados"`
		ApprovalRate decimal.Decimal `json:"tasa_aprobacion"`
	} `json:"estadisticas"`
}
