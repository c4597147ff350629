package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// InsightsResponse summarises collection performance for the current month.
type InsightsResponse struct {
	TotalStudents   int             `json:"total_students"`
	ActiveStudents  int             `json:"active_students"`
	OverdueStudents int             `json:"overdue_students"`
	CollectionRate  decimal.Decimal `json:"collection_rate"`
	MonthlyPayments int             `json:"monthly_payments"`
	MonthlyRevenue  decimal.Decimal `json:"monthly_revenue"`
	AveragePayment  decimal.Decimal `json:"average_payment"`
}

// RiskLevel bands a member by how close they are to (or past) their due date.
type RiskLevel string

const (
	RiskHigh   RiskLevel = "high"
	RiskMedium RiskLevel = "medium"
	RiskLow    RiskLevel = "low"
)

// PaymentPrediction flags a member for follow-up.
type PaymentPrediction struct {
	StudentID string    `json:"student_id"`
	Name      string    `json:"name"`
	DueDate   time.Time `json:"due_date"`
	DaysToDue int       `json:"days_to_due"`
	Risk      RiskLevel `json:"risk"`
}

// PredictionsResponse groups predictions by risk band, highest first.
type PredictionsResponse struct {
	HighRisk    int                 `json:"high_risk"`
	MediumRisk  int                 `json:"medium_risk"`
	LowRisk     int                 `json:"low_risk"`
	Predictions []PaymentPrediction `json:"predictions"`
}
