package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/studyhub-labs/librarypro-api/internal/dto"
	"github.com/studyhub-labs/librarypro-api/internal/models"
)

func TestInsightsServiceInsights(t *testing.T) {
	now := time.Now().UTC()
	students, payments := dashboardFixture(now)
	svc := NewInsightsService(students, payments, &stubSettings{}, zap.NewNop())

	insights, err := svc.Insights(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, insights.TotalStudents)
	assert.Equal(t, 3, insights.ActiveStudents)
	assert.Equal(t, 1, insights.OverdueStudents)
	assert.Equal(t, 2, insights.MonthlyPayments)
	assert.True(t, insights.MonthlyRevenue.Equal(decimal.NewFromInt(1150)))
	// Two of the three active members paid this month.
	assert.True(t, insights.CollectionRate.Equal(decimal.NewFromFloat(66.7)), "got %s", insights.CollectionRate)
	assert.True(t, insights.AveragePayment.Equal(decimal.NewFromInt(575)))
}

func TestInsightsServicePredictions(t *testing.T) {
	now := time.Now().UTC()
	students := &mockStudentRepo{students: map[string]models.Student{
		"LIB001": {ID: "LIB001", Name: "Overdue", DueDate: now.AddDate(0, 0, -2), Status: models.StudentStatusActive},
		"LIB002": {ID: "LIB002", Name: "Due Soon", DueDate: now.AddDate(0, 0, 2), Status: models.StudentStatusActive},
		"LIB003": {ID: "LIB003", Name: "This Week", DueDate: now.AddDate(0, 0, 6), Status: models.StudentStatusActive},
		"LIB004": {ID: "LIB004", Name: "Far Out", DueDate: now.AddDate(0, 0, 20), Status: models.StudentStatusActive},
		"LIB005": {ID: "LIB005", Name: "Gone", DueDate: now.AddDate(0, 0, -50), Status: models.StudentStatusInactive},
	}}
	svc := NewInsightsService(students, &mockPaymentRepo{}, &stubSettings{}, zap.NewNop())

	predictions, err := svc.Predictions(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, predictions.HighRisk, "only members at or past their due date")
	assert.Equal(t, 1, predictions.MediumRisk, "due within the notification window")
	assert.Equal(t, 2, predictions.LowRisk)
	require.Len(t, predictions.Predictions, 4, "inactive members are excluded")

	assert.Equal(t, dto.RiskHigh, predictions.Predictions[0].Risk)
	assert.Equal(t, "LIB001", predictions.Predictions[0].StudentID, "highest risk with earliest due date first")
	assert.Equal(t, -2, predictions.Predictions[0].DaysToDue)
	assert.Equal(t, dto.RiskMedium, predictions.Predictions[1].Risk)
	assert.Equal(t, "LIB002", predictions.Predictions[1].StudentID, "due in two days is medium, not high")
	assert.Equal(t, dto.RiskLow, predictions.Predictions[3].Risk)
}

func TestInsightsServiceRevenueForecast(t *testing.T) {
	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	payments := &mockPaymentRepo{payments: map[string]models.Payment{
		"P1": {ID: "P1", Amount: decimal.NewFromInt(1000), Date: monthStart.AddDate(0, -2, 3)},
		"P2": {ID: "P2", Amount: decimal.NewFromInt(1500), Date: monthStart.AddDate(0, -1, 3)},
		"P3": {ID: "P3", Amount: decimal.NewFromInt(2000), Date: monthStart.AddDate(0, 0, 0)},
	}}
	svc := NewInsightsService(&mockStudentRepo{}, payments, &stubSettings{}, zap.NewNop())

	forecast, err := svc.RevenueForecast(context.Background())
	require.NoError(t, err)

	require.Len(t, forecast.History, 3)
	last := forecast.History[2]
	assert.Equal(t, now.Month(), last.Month)
	assert.True(t, last.Revenue.Equal(decimal.NewFromInt(2000)))
	// Rising 1000, 1500, 2000: trend 500, projection 2000.
	assert.True(t, forecast.Forecast.Trend.Equal(decimal.NewFromInt(500)), "got %s", forecast.Forecast.Trend)
	assert.True(t, forecast.Forecast.NextMonth.Equal(decimal.NewFromInt(2000)), "got %s", forecast.Forecast.NextMonth)
	assert.True(t, forecast.Forecast.NextQuarter.Equal(decimal.NewFromInt(7500)), "got %s", forecast.Forecast.NextQuarter)
}
