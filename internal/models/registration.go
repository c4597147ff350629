package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegistrationStatus tracks the public signup lifecycle.
type RegistrationStatus string

const (
	RegistrationStatusPending   RegistrationStatus = "pending"
	RegistrationStatusCompleted RegistrationStatus = "completed"
)

// Registration is a public signup captured before the member exists.
// Completing it hands the validated record to the billing engine, which
// creates the Student.
type Registration struct {
	ID              string             `db:"id" json:"id"`
	FullName        string             `db:"full_name" json:"full_name"`
	Phone           string             `db:"phone" json:"phone"`
	Email           string             `db:"email" json:"email"`
	Plan            string             `db:"plan" json:"plan"`
	StudentDiscount bool               `db:"student_discount" json:"student_discount"`
	TotalAmount     decimal.Decimal    `db:"total_amount" json:"total_amount"`
	Status          RegistrationStatus `db:"status" json:"status"`
	StudentID       *string            `db:"student_id" json:"student_id,omitempty"`
	CreatedAt       time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time          `db:"updated_at" json:"updated_at"`
}

// Plan describes a membership plan offered on the marketing site.
type Plan struct {
	Code     string          `json:"code"`
	Label    string          `json:"label"`
	Price    decimal.Decimal `json:"price"`
	Duration string          `json:"duration"`
}

// PlanCatalogue lists the offered plans. Prices mirror the public site.
func PlanCatalogue() []Plan {
	return []Plan{
		{Code: "daily", Label: "Daily Pass", Price: decimal.NewFromInt(50), Duration: "1 day"},
		{Code: "weekly", Label: "Weekly Pass", Price: decimal.NewFromInt(300), Duration: "1 week"},
		{Code: "monthly", Label: "Monthly Pass", Price: decimal.NewFromInt(500), Duration: "1 month"},
		{Code: "quarterly", Label: "Quarterly Pass", Price: decimal.NewFromInt(1400), Duration: "3 months"},
		{Code: "yearly", Label: "Yearly Pass", Price: decimal.NewFromInt(5000), Duration: "1 year"},
	}
}

// FindPlan resolves a plan by code.
func FindPlan(code string) (Plan, bool) {
	for _, p := range PlanCatalogue() {
		if p.Code == code {
			return p, true
		}
	}
	return Plan{}, false
}
