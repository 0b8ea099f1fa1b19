package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Principal is the authenticated user as held by the client session.
// It is created on login and destroyed on logout or on a 401.
type Principal struct {
	ID             int64           `json:"id"`
	Username       string          `json:"username"`
	FirstName      string          `json:"first_name"`
	LastName       string          `json:"last_name"`
	Role           Role            `json:"role"`
	CareerRef      *int64          `json:"career_ref,omitempty"`
	InArrears      bool            `json:"in_arrears"`
	DebtTotal      decimal.Decimal `json:"debt_total"`
	IsScholarship  bool            `json:"is_scholarship"`
	ScholarshipPct float64         `json:"scholarship_pct"`
	BearerToken    string          `json:"bearer_token"`
}

// FullName returns "first last", falling back to the username
func (p *Principal) FullName() string {
	name := strings.TrimSpace(p.FirstName + " " + p.LastName)
	if name == "" {
		return p.Username
	}
	return name
}

// HasToken reports whether a bearer credential is present
func (p *Principal) HasToken() bool {
	return p != nil && p.BearerToken != ""
}

// IsBlocked reports a financial hold on academic actions
func (p *Principal) IsBlocked() bool {
	return p != nil && p.InArrears
}
