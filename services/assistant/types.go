package assistant

import (
	"github.com/infocampus/campus/models"
)

// ChatRequest is the body posted by the campus chat widget
type ChatRequest struct {
	Message string `json:"message" validate:"required,max=2000"`
	History []Turn `json:"history" validate:"omitempty,max=50,dive"`
}

// Turn is one prior exchange line sent as conversation history
type Turn struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"max=4000"`
}

// ChatReply is the success body
type ChatReply struct {
	Response string `json:"response"`
}

// promptContext is everything the system prompt is rendered from
type promptContext struct {
	Profile     *models.AcademicProfile
	Enrollments []models.EnrollmentSummary
	// EnrollmentsLoaded is false when the lookup was skipped or failed
	EnrollmentsLoaded bool
	PendingPayments   int
	PaymentsLoaded    bool
}
