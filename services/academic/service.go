// Package academic wraps the REST backend's endpoints in typed calls.
// Every method except Login goes through the shared client's 401/403 policy;
// callers turn returned errors into messages themselves.
package academic

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/infocampus/campus/models"
	"github.com/infocampus/campus/session"
	"github.com/infocampus/campus/utils"
)

// API is the transport the service runs on; *client.Client implements it
type API interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
	DoRaw(ctx context.Context, method, path string, body any) ([]byte, error)
	Authenticate(ctx context.Context, path string, body any) ([]byte, error)
	Download(ctx context.Context, path string) ([]byte, error)
}

// Service exposes the backend grouped by domain
type Service struct {
	api         API
	loginFormat session.LoginFormat
	logger      *zap.Logger
}

// NewService creates the domain service layer
func NewService(api API, loginFormat session.LoginFormat, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{api: api, loginFormat: loginFormat, logger: logger}
}

// Login exchanges credentials for a Principal. It does not touch the session,
// and a rejected login comes back as *client.CredentialsError.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*models.Principal, error) {
	if err := utils.ValidateStruct(&req); err != nil {
		return nil, err
	}
	body, err := s.api.Authenticate(ctx, "/auth/login", req)
	if err != nil {
		return nil, err
	}
	p, err := session.NormalizeLogin(s.loginFormat, body)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("login accepted", zap.String("username", p.Username), zap.String("role", string(p.Role)))
	return p, nil
}

// Profile fetches the current user's profile and returns it with token attached
func (s *Service) Profile(ctx context.Context, token string) (*models.Principal, error) {
	body, err := s.api.DoRaw(ctx, "GET", "/auth/perfil", nil)
	if err != nil {
		return nil, err
	}
	return session.NormalizeProfile(body, token)
}

// MyEnrollments lists the student's enrollments with current grades
func (s *Service) MyEnrollments(ctx context.Context) ([]StudentEnrollment, error) {
	var out []StudentEnrollment
	if err := s.api.Get(ctx, "/inscripciones/estudiante/mis-inscripciones", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AccountStatement downloads the student's statement as PDF bytes
func (s *Service) AccountStatement(ctx context.Context) ([]byte, error) {
	return s.api.Download(ctx, "/reportes/estado-cuenta/me")
}

// TeacherDashboard returns the teacher's sections and stats
func (s *Service) TeacherDashboard(ctx context.Context) (*TeacherDashboard, error) {
	var out TeacherDashboard
	if err := s.api.Get(ctx, "/dashboards/profesor", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SectionGrades returns the grade sheet of one section
func (s *Service) SectionGrades(ctx context.Context, sectionID int64) (*GradeSheet, error) {
	var out GradeSheet
	if err := s.api.Get(ctx, fmt.Sprintf("/inscripciones/seccion/%d/notas", sectionID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitGrade records the final grade of one enrollment
func (s *Service) SubmitGrade(ctx context.Context, enrollmentID int64, grade GradeSubmission) (*GradeResult, error) {
	if err := utils.ValidateStruct(&grade); err != nil {
		return nil, err
	}
	var out GradeResult
	if err := s.api.Put(ctx, fmt.Sprintf("/inscripciones/%d/nota", enrollmentID), grade, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FinanceDashboard returns treasury income and the collection list
func (s *Service) FinanceDashboard(ctx context.Context) (*FinanceDashboard, error) {
	var out FinanceDashboard
	if err := s.api.Get(ctx, "/dashboards/finanzas", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RegisterPayment settles a student's pending enrollments
func (s *Service) RegisterPayment(ctx context.Context, studentID int64) (*PaymentReceipt, error) {
	var out PaymentReceipt
	if err := s.api.Post(ctx, fmt.Sprintf("/estudiantes/%d/registrar-pago", studentID), nil, &out); err != nil {
		return nil, err
	}
	s.logger.Info("payment registered", zap.Int64("student_id", studentID), zap.Int("payments", out.Payments))
	return &out, nil
}

// InstitutionalDashboard returns the institution-wide metrics
func (s *Service) InstitutionalDashboard(ctx context.Context) (*InstitutionalDashboard, error) {
	var out InstitutionalDashboard
	if err := s.api.Get(ctx, "/dashboards/institucional", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Subjects lists the curriculum
func (s *Service) Subjects(ctx context.Context) ([]Subject, error) {
	var out []Subject
	if err := s.api.Get(ctx, "/materias", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Student fetches one student's record
func (s *Service) Student(ctx context.Context, id int64) (*StudentRecord, error) {
	var out StudentRecord
	if err := s.api.Get(ctx, fmt.Sprintf("/estudiantes/%d", id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CloseCycle closes the active term and settles approved/failed statuses
func (s *Service) CloseCycle(ctx context.Context) (*CycleClosure, error) {
	var out CycleClosure
	if err := s.api.Post(ctx, "/periodos/cerrar-ciclo", nil, &out); err != nil {
		return nil, err
	}
	s.logger.Info("cycle closed", zap.String("term", out.Term.Code), zap.Int("processed", out.Stats.Processed))
	return &out, nil
}
