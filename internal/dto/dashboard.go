package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/studyhub-labs/librarypro-api/internal/billing"
)

// DashboardAlert is one row of the due/overdue alert table.
type DashboardAlert struct {
	StudentID   string          `json:"student_id"`
	Name        string          `json:"name"`
	Phone       string          `json:"phone"`
	DueDate     time.Time       `json:"due_date"`
	Amount      decimal.Decimal `json:"amount"`
	Status      string          `json:"status"`
	DaysOverdue int             `json:"days_overdue,omitempty"`
}

// DashboardSummary composes the admin landing page counters.
type DashboardSummary struct {
	TotalStudents  int              `json:"total_students"`
	ActiveStudents int              `json:"active_students"`
	DueToday       int              `json:"due_today"`
	Overdue        int              `json:"overdue"`
	MonthlyRevenue decimal.Decimal  `json:"monthly_revenue"`
	Alerts         []DashboardAlert `json:"alerts"`
	GeneratedAt    time.Time        `json:"generated_at"`
}

// RevenueForecastResponse exposes the trailing window and the projection.
type RevenueForecastResponse struct {
	History  []billing.MonthRevenue `json:"history"`
	Forecast billing.ForecastResult `json:"forecast"`
}
