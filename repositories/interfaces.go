package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/infocampus/campus/models"
)

// ErrNotFound is returned when a lookup matches no row
var ErrNotFound = errors.New("record not found")

// ProfileRepository reads usuarios rows for the chat function
type ProfileRepository interface {
	// GetByAuthID retrieves the profile linked to an auth identity.
	// Returns ErrNotFound when the identity has no usuarios row.
	GetByAuthID(ctx context.Context, authID uuid.UUID) (*models.AcademicProfile, error)
}

// AcademicRepository reads a student's academic and financial standing
type AcademicRepository interface {
	// Enrollments lists the student's subjects with grade and status
	Enrollments(ctx context.Context, studentID int64) ([]models.EnrollmentSummary, error)

	// PendingPayments counts the student's unpaid payment rows
	PendingPayments(ctx context.Context, studentID int64) (int, error)
}

// Repositories holds all repository instances
type Repositories struct {
	Profiles ProfileRepository
	Academic AcademicRepository
}
