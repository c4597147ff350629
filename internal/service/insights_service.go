package service

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/studyhub-labs/librarypro-api/internal/billing"
	"github.com/studyhub-labs/librarypro-api/internal/dto"
	appErrors "github.com/studyhub-labs/librarypro-api/pkg/errors"
)

// forecastWindowMonths is the trailing window fed into the revenue
// projection.
const forecastWindowMonths = 3

// InsightsService computes collection analytics, payment risk predictions
// and the revenue forecast.
type InsightsService struct {
	students dashboardStudentRepository
	payments dashboardPaymentRepository
	settings settingsReader
	logger   *zap.Logger
}

// NewInsightsService constructs the insights service.
func NewInsightsService(students dashboardStudentRepository, payments dashboardPaymentRepository, settings settingsReader, logger *zap.Logger) *InsightsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InsightsService{students: students, payments: payments, settings: settings, logger: logger}
}

// Insights summarises collection performance for the current month.
func (s *InsightsService) Insights(ctx context.Context) (*dto.InsightsResponse, error) {
	students, err := s.students.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
	}

	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	payments, err := s.payments.ListBetween(ctx, monthStart, monthStart.AddDate(0, 1, 0))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payments")
	}

	resp := &dto.InsightsResponse{
		TotalStudents:   len(students),
		CollectionRate:  decimal.Zero,
		MonthlyPayments: len(payments),
		MonthlyRevenue:  billing.MonthlyRevenue(payments, now.Year(), now.Month()),
		AveragePayment:  decimal.Zero,
	}

	paid := map[string]bool{}
	for _, p := range payments {
		paid[p.StudentID] = true
	}

	paidActive := 0
	for _, student := range students {
		c := billing.Classify(student, now)
		if c.State == billing.StateInactive {
			continue
		}
		resp.ActiveStudents++
		if c.State == billing.StateOverdue {
			resp.OverdueStudents++
		}
		if paid[student.ID] {
			paidActive++
		}
	}

	if resp.ActiveStudents > 0 {
		resp.CollectionRate = decimal.NewFromInt(int64(paidActive)).
			Div(decimal.NewFromInt(int64(resp.ActiveStudents))).
			Mul(decimal.NewFromInt(100)).
			Round(1)
	}
	if len(payments) > 0 {
		resp.AveragePayment = resp.MonthlyRevenue.Div(decimal.NewFromInt(int64(len(payments)))).Round(2)
	}
	return resp, nil
}

// Predictions bands active members by how close they are to their due date.
// Members at or past their due date are high risk, members due within the
// notification window are medium, everyone else low.
func (s *InsightsService) Predictions(ctx context.Context) (*dto.PredictionsResponse, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	students, err := s.students.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
	}

	now := billing.Midnight(time.Now().UTC())
	resp := &dto.PredictionsResponse{Predictions: []dto.PaymentPrediction{}}
	for _, student := range students {
		c := billing.Classify(student, now)
		if c.State == billing.StateInactive {
			continue
		}

		daysToDue := int(billing.Midnight(student.DueDate).Sub(now).Hours() / 24)
		risk := dto.RiskLow
		switch {
		case daysToDue <= 0:
			risk = dto.RiskHigh
		case daysToDue <= settings.NotificationDays:
			risk = dto.RiskMedium
		}

		switch risk {
		case dto.RiskHigh:
			resp.HighRisk++
		case dto.RiskMedium:
			resp.MediumRisk++
		default:
			resp.LowRisk++
		}
		resp.Predictions = append(resp.Predictions, dto.PaymentPrediction{
			StudentID: student.ID,
			Name:      student.Name,
			DueDate:   student.DueDate,
			DaysToDue: daysToDue,
			Risk:      risk,
		})
	}

	rank := map[dto.RiskLevel]int{dto.RiskHigh: 0, dto.RiskMedium: 1, dto.RiskLow: 2}
	sort.SliceStable(resp.Predictions, func(i, j int) bool {
		a, b := resp.Predictions[i], resp.Predictions[j]
		if rank[a.Risk] != rank[b.Risk] {
			return rank[a.Risk] < rank[b.Risk]
		}
		return a.DueDate.Before(b.DueDate)
	})
	return resp, nil
}

// RevenueForecast projects next-month and next-quarter revenue from the
// trailing three-month window.
func (s *InsightsService) RevenueForecast(ctx context.Context) (*dto.RevenueForecastResponse, error) {
	now := time.Now().UTC()
	windowStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(forecastWindowMonths - 1), 0)
	windowEnd := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)

	payments, err := s.payments.ListBetween(ctx, windowStart, windowEnd)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payments")
	}

	history := billing.TrailingMonths(payments, now, forecastWindowMonths)
	return &dto.RevenueForecastResponse{
		History:  history,
		Forecast: billing.Forecast(history),
	}, nil
}
