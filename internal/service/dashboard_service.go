package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/studyhub-labs/librarypro-api/internal/billing"
	"github.com/studyhub-labs/librarypro-api/internal/dto"
	"github.com/studyhub-labs/librarypro-api/internal/models"
	appErrors "github.com/studyhub-labs/librarypro-api/pkg/errors"
)

const dashboardSummaryCacheKey = "dashboard:summary"

type dashboardStudentRepository interface {
	ListAll(ctx context.Context) ([]models.Student, error)
}

type dashboardPaymentRepository interface {
	ListBetween(ctx context.Context, from, to time.Time) ([]models.Payment, error)
}

// DashboardService aggregates the admin landing page counters and the
// due/overdue alert table.
type DashboardService struct {
	students dashboardStudentRepository
	payments dashboardPaymentRepository
	settings settingsReader
	cache    *CacheService
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewDashboardService constructs the dashboard service.
func NewDashboardService(students dashboardStudentRepository, payments dashboardPaymentRepository, settings settingsReader, cache *CacheService, cacheTTL time.Duration, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		students: students,
		payments: payments,
		settings: settings,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// Summary builds the dashboard counters, current-month revenue and the
// alert table. Results are cached briefly; any mutation of students or
// payments invalidates the cache.
func (s *DashboardService) Summary(ctx context.Context) (*dto.DashboardSummary, error) {
	var cached dto.DashboardSummary
	if hit, _ := s.cache.Get(ctx, dashboardSummaryCacheKey, &cached); hit {
		return &cached, nil
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	students, err := s.students.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
	}

	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)
	payments, err := s.payments.ListBetween(ctx, monthStart, monthEnd)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payments")
	}

	summary := &dto.DashboardSummary{
		TotalStudents:  len(students),
		MonthlyRevenue: billing.MonthlyRevenue(payments, now.Year(), now.Month()),
		Alerts:         []dto.DashboardAlert{},
		GeneratedAt:    now,
	}

	for _, student := range students {
		c := billing.Classify(student, now)
		switch c.State {
		case billing.StateActive:
			summary.ActiveStudents++
		case billing.StateDueToday:
			summary.ActiveStudents++
			summary.DueToday++
			summary.Alerts = append(summary.Alerts, alertFor(student, c))
		case billing.StateOverdue:
			summary.ActiveStudents++
			// The counter only ticks past the notification threshold; a
			// freshly late member still shows in the alert table below.
			if billing.IsUrgent(c, settings.NotificationDays) {
				summary.Overdue++
			}
			summary.Alerts = append(summary.Alerts, alertFor(student, c))
		}
	}

	sort.SliceStable(summary.Alerts, func(i, j int) bool {
		return summary.Alerts[i].DueDate.Before(summary.Alerts[j].DueDate)
	})

	if err := s.cache.Set(ctx, dashboardSummaryCacheKey, summary, s.cacheTTL); err != nil {
		s.logger.Debug("dashboard cache write failed", zap.Error(err))
	}
	return summary, nil
}

// UrgentAlerts returns the subset of alerts past the configured
// notification threshold. Being overdue and being urgent are distinct: a
// member one day late is overdue on the dashboard but not yet surfaced here.
func (s *DashboardService) UrgentAlerts(ctx context.Context) ([]dto.DashboardAlert, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	students, err := s.students.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
	}

	now := time.Now().UTC()
	alerts := []dto.DashboardAlert{}
	for _, student := range students {
		c := billing.Classify(student, now)
		if billing.IsUrgent(c, settings.NotificationDays) {
			alerts = append(alerts, alertFor(student, c))
		}
	}
	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].DueDate.Before(alerts[j].DueDate)
	})
	return alerts, nil
}

func alertFor(student models.Student, c billing.Classification) dto.DashboardAlert {
	return dto.DashboardAlert{
		StudentID:   student.ID,
		Name:        student.Name,
		Phone:       student.Phone,
		DueDate:     student.DueDate,
		Amount:      student.Amount,
		Status:      c.Label(),
		DaysOverdue: c.DaysOverdue,
	}
}
