package models

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// EnrollmentStatus is the academic state of an enrollment
type EnrollmentStatus string

const (
	EnrollmentInProgress EnrollmentStatus = "in_progress"
	EnrollmentApproved   EnrollmentStatus = "approved"
	EnrollmentFailed     EnrollmentStatus = "failed"
	EnrollmentWithdrawn  EnrollmentStatus = "withdrawn"
)

var wireStatuses = map[string]EnrollmentStatus{
	"cursando":  EnrollmentInProgress,
	"inscrito":  EnrollmentInProgress,
	"aprobado":  EnrollmentApproved,
	"reprobado": EnrollmentFailed,
	"retirado":  EnrollmentWithdrawn,
}

// ParseEnrollmentStatus accepts canonical and backend spellings.
// Unknown values map to in_progress.
func ParseEnrollmentStatus(s string) EnrollmentStatus {
	s = strings.ToLower(strings.TrimSpace(s))
	if st, ok := wireStatuses[s]; ok {
		return st
	}
	switch st := EnrollmentStatus(s); st {
	case EnrollmentInProgress, EnrollmentApproved, EnrollmentFailed, EnrollmentWithdrawn:
		return st
	}
	return EnrollmentInProgress
}

// UnmarshalJSON normalizes wire statuses
func (s *EnrollmentStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = ParseEnrollmentStatus(raw)
	return nil
}

// Enrollment is owned by the backend; the client only writes grades and
// payments through their endpoints.
type Enrollment struct {
	ID          int64            `json:"id"`
	SectionRef  int64            `json:"seccion_id"`
	SubjectName string           `json:"materia,omitempty"`
	FinalGrade  *decimal.Decimal `json:"nota_final,omitempty"`
	Status      EnrollmentStatus `json:"estado"`
	Paid        bool             `json:"pagado"`
}

// Graded reports whether a final grade has been recorded
func (e Enrollment) Graded() bool {
	return e.FinalGrade != nil
}
