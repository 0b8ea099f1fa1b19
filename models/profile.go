package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AcademicProfile is a usuarios row as seen by the chat function
type AcademicProfile struct {
	ID        int64     `json:"id" db:"id"`
	AuthID    uuid.UUID `json:"supabase_id" db:"supabase_id"`
	FirstName string    `json:"first_name" db:"first_name"`
	LastName  string    `json:"last_name" db:"last_name"`
	Role      Role      `json:"rol" db:"rol"`
}

// DefaultProfile is used when the authenticated identity has no usuarios row
func DefaultProfile() *AcademicProfile {
	return &AcademicProfile{
		FirstName: "Estudiante",
		Role:      RoleStudent,
	}
}

// HasInternalID reports whether the profile maps to a real usuarios row
func (p *AcademicProfile) HasInternalID() bool {
	return p != nil && p.ID > 0
}

// EnrollmentSummary is one subject line rendered into the assistant prompt
type EnrollmentSummary struct {
	Subject    string           `json:"subject"`
	FinalGrade *decimal.Decimal `json:"final_grade"`
	Status     EnrollmentStatus `json:"status"`
}
