package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/infocampus/campus/models"
	"github.com/infocampus/campus/repositories"
)

// AcademicRepository implements the repositories.AcademicRepository interface
type AcademicRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewAcademicRepository creates a new academic repository
func NewAcademicRepository(db *DB, logger *zap.Logger) repositories.AcademicRepository {
	return &AcademicRepository{
		db:     db,
		logger: logger,
	}
}

// Enrollments lists a student's subjects ordered by subject name
func (r *AcademicRepository) Enrollments(ctx context.Context, studentID int64) ([]models.EnrollmentSummary, error) {
	query := `
		SELECT m.nombre, i.nota_final, i.estado
		FROM inscripciones i
		JOIN secciones s ON s.id = i.seccion_id
		JOIN materias m ON m.id = s.materia_id
		WHERE i.estudiante_id = $1
		ORDER BY m.nombre
	`

	rows, err := r.db.QueryContext(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query enrollments: %w", err)
	}
	defer rows.Close()

	enrollments := []models.EnrollmentSummary{}
	for rows.Next() {
		var (
			line  models.EnrollmentSummary
			grade decimal.NullDecimal
			state string
		)
		if err := rows.Scan(&line.Subject, &grade, &state); err != nil {
			return nil, fmt.Errorf("failed to scan enrollment: %w", err)
		}
		if grade.Valid {
			g := grade.Decimal
			line.FinalGrade = &g
		}
		line.Status = models.ParseEnrollmentStatus(state)
		enrollments = append(enrollments, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate enrollments: %w", err)
	}

	r.logger.Debug("enrollments loaded",
		zap.Int64("student_id", studentID),
		zap.Int("count", len(enrollments)))
	return enrollments, nil
}

// PendingPayments counts the student's payments still marked pendiente
func (r *AcademicRepository) PendingPayments(ctx context.Context, studentID int64) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM pagos
		WHERE estudiante_id = $1 AND estado = 'pendiente'
	`

	var count int
	if err := r.db.QueryRowContext(ctx, query, studentID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count pending payments: %w", err)
	}
	return count, nil
}
