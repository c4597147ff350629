package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/studyhub-labs/librarypro-api/internal/models"
)

func dashboardFixture(now time.Time) (*mockStudentRepo, *mockPaymentRepo) {
	students := &mockStudentRepo{students: map[string]models.Student{
		"LIB001": {ID: "LIB001", Name: "Rahul Sharma", DueDate: now, Amount: decimal.NewFromInt(500), Status: models.StudentStatusActive},
		"LIB002": {ID: "LIB002", Name: "Priya Patel", DueDate: now.AddDate(0, 0, -6), Amount: decimal.NewFromInt(500), Status: models.StudentStatusActive},
		"LIB003": {ID: "LIB003", Name: "Amit Singh", DueDate: now.AddDate(0, 0, 12), Amount: decimal.NewFromInt(500), Status: models.StudentStatusActive},
		"LIB004": {ID: "LIB004", Name: "Left Member", DueDate: now.AddDate(0, 0, -30), Amount: decimal.NewFromInt(500), Status: models.StudentStatusInactive},
	}}
	payments := &mockPaymentRepo{payments: map[string]models.Payment{
		"PAY001": {ID: "PAY001", StudentID: "LIB003", Amount: decimal.NewFromInt(500), Date: now},
		"PAY002": {ID: "PAY002", StudentID: "LIB001", Amount: decimal.NewFromInt(650), Date: now},
	}}
	return students, payments
}

func TestDashboardServiceSummary(t *testing.T) {
	now := time.Now().UTC()
	students, payments := dashboardFixture(now)
	svc := NewDashboardService(students, payments, &stubSettings{}, nil, time.Minute, zap.NewNop())

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, summary.TotalStudents)
	assert.Equal(t, 3, summary.ActiveStudents, "inactive members never count as active")
	assert.Equal(t, 1, summary.DueToday)
	assert.Equal(t, 1, summary.Overdue)
	assert.True(t, summary.MonthlyRevenue.Equal(decimal.NewFromInt(1150)))

	require.Len(t, summary.Alerts, 2)
	assert.Equal(t, "LIB002", summary.Alerts[0].StudentID, "alerts sorted by due date, oldest first")
	assert.Equal(t, "Overdue", summary.Alerts[0].Status)
	assert.Equal(t, 6, summary.Alerts[0].DaysOverdue)
	assert.Equal(t, "LIB001", summary.Alerts[1].StudentID)
	assert.Equal(t, "Due Today", summary.Alerts[1].Status)
}

func TestDashboardServiceOverdueCounterHonoursThreshold(t *testing.T) {
	now := time.Now().UTC()
	students := &mockStudentRepo{students: map[string]models.Student{
		"LIB001": {ID: "LIB001", Name: "One Day Late", DueDate: now.AddDate(0, 0, -1), Amount: decimal.NewFromInt(500), Status: models.StudentStatusActive},
	}}
	svc := NewDashboardService(students, &mockPaymentRepo{}, &stubSettings{}, nil, time.Minute, zap.NewNop())

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)

	// A freshly late member is listed in the alert table but does not tick
	// the overdue counter until three days past due.
	assert.Equal(t, 0, summary.Overdue)
	require.Len(t, summary.Alerts, 1)
	assert.Equal(t, "LIB001", summary.Alerts[0].StudentID)
	assert.Equal(t, 1, summary.Alerts[0].DaysOverdue)
}

func TestDashboardServiceUrgentAlertsHonourThreshold(t *testing.T) {
	now := time.Now().UTC()
	students := &mockStudentRepo{students: map[string]models.Student{
		"LIB001": {ID: "LIB001", Name: "One Day Late", DueDate: now.AddDate(0, 0, -1), Status: models.StudentStatusActive},
		"LIB002": {ID: "LIB002", Name: "Six Days Late", DueDate: now.AddDate(0, 0, -6), Status: models.StudentStatusActive},
	}}
	svc := NewDashboardService(students, &mockPaymentRepo{}, &stubSettings{}, nil, time.Minute, zap.NewNop())

	alerts, err := svc.UrgentAlerts(context.Background())
	require.NoError(t, err)

	// Default threshold is three days: one day late is overdue but not urgent.
	require.Len(t, alerts, 1)
	assert.Equal(t, "LIB002", alerts[0].StudentID)
	assert.Equal(t, 6, alerts[0].DaysOverdue)
}
