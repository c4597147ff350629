package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/studyhub-labs/librarypro-api/internal/billing"
	"github.com/studyhub-labs/librarypro-api/internal/models"
	appErrors "github.com/studyhub-labs/librarypro-api/pkg/errors"
)

// studentDiscountPercent is the flat discount applied to signups that tick
// the student checkbox on the public form.
var studentDiscountPercent = decimal.NewFromInt(10)

type registrationRepository interface {
	List(ctx context.Context, status string, page, size int) ([]models.Registration, int, error)
	FindByID(ctx context.Context, id string) (*models.Registration, error)
	Create(ctx context.Context, registration *models.Registration) error
	MarkCompleted(ctx context.Context, id, studentID string) error
}

type registrationStudentCreator interface {
	Create(ctx context.Context, student *models.Student) error
}

type registrationPaymentRecorder interface {
	Create(ctx context.Context, payment *models.Payment) error
}

type registrationSyncNotifier interface {
	studentSyncNotifier
	paymentSyncNotifier
}

// RegisterRequest is the public signup payload.
type RegisterRequest struct {
	FullName        string `json:"full_name" validate:"required,min=2,max=120"`
	Phone           string `json:"phone" validate:"required,min=6,max=20"`
	Email           string `json:"email" validate:"omitempty,email"`
	Plan            string `json:"plan" validate:"required"`
	StudentDiscount bool   `json:"student_discount"`
}

// RegistrationService captures public signups and converts completed ones
// into members.
type RegistrationService struct {
	repo      registrationRepository
	students  registrationStudentCreator
	payments  registrationPaymentRecorder
	settings  settingsReader
	sync      registrationSyncNotifier
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRegistrationService constructs the registration service.
func NewRegistrationService(repo registrationRepository, students registrationStudentCreator, payments registrationPaymentRecorder, settings settingsReader, sync registrationSyncNotifier, validate *validator.Validate, logger *zap.Logger) *RegistrationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegistrationService{repo: repo, students: students, payments: payments, settings: settings, sync: sync, validator: validate, logger: logger}
}

// Plans returns the public plan catalogue.
func (s *RegistrationService) Plans() []models.Plan {
	return models.PlanCatalogue()
}

// Quote computes the amount due for a plan and discount combination.
func (s *RegistrationService) Quote(planCode string, studentDiscount bool) (decimal.Decimal, error) {
	plan, ok := models.FindPlan(planCode)
	if !ok {
		return decimal.Zero, appErrors.Clone(appErrors.ErrValidation, "unknown plan")
	}
	total := plan.Price
	if studentDiscount {
		discount := total.Mul(studentDiscountPercent).Div(decimal.NewFromInt(100))
		total = total.Sub(discount)
	}
	return total, nil
}

// Register captures a public signup as pending.
func (s *RegistrationService) Register(ctx context.Context, req RegisterRequest) (*models.Registration, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}
	total, err := s.Quote(req.Plan, req.StudentDiscount)
	if err != nil {
		return nil, err
	}

	registration := &models.Registration{
		FullName:        req.FullName,
		Phone:           req.Phone,
		Email:           req.Email,
		Plan:            req.Plan,
		StudentDiscount: req.StudentDiscount,
		TotalAmount:     total,
		Status:          models.RegistrationStatusPending,
	}
	if err := s.repo.Create(ctx, registration); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save registration")
	}
	s.logger.Info("registration received",
		zap.String("registration_id", registration.ID), zap.String("plan", registration.Plan))
	return registration, nil
}

// List returns registrations for the admin review queue.
func (s *RegistrationService) List(ctx context.Context, status string, page, size int) ([]models.Registration, *models.Pagination, error) {
	registrations, total, err := s.repo.List(ctx, status, page, size)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list registrations")
	}
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	return registrations, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Complete converts a pending registration into a member and records the
// signup payment at the quoted total, so revenue aggregation sees signup
// income. The first due date lands one plan length ahead, on the configured
// due day for month-based plans.
func (s *RegistrationService) Complete(ctx context.Context, id string) (*models.Student, error) {
	registration, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "registration not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load registration")
	}
	if registration.Status == models.RegistrationStatusCompleted {
		return nil, appErrors.Clone(appErrors.ErrConflict, "registration already completed")
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	joinDate := billing.Midnight(time.Now().UTC())
	student := &models.Student{
		Name:     registration.FullName,
		Phone:    registration.Phone,
		Email:    registration.Email,
		JoinDate: joinDate,
		DueDate:  firstDueDate(joinDate, registration.Plan, settings.DueDay),
		Amount:   registration.TotalAmount,
		Status:   models.StudentStatusActive,
	}
	if err := s.students.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}

	// Completion is the pay-at-library flow, so the signup money changes
	// hands as cash at the desk.
	payment := &models.Payment{
		StudentID: student.ID,
		Amount:    registration.TotalAmount,
		Date:      joinDate,
		Period:    joinDate.Format("January 2006"),
		Method:    "Cash",
		NextDue:   student.DueDate,
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record signup payment")
	}

	if err := s.repo.MarkCompleted(ctx, registration.ID, student.ID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to complete registration")
	}

	if s.sync != nil {
		s.sync.NotifyStudent(*student)
		s.sync.NotifyPayment(*payment, student.Name)
	}
	s.logger.Info("registration completed",
		zap.String("registration_id", registration.ID), zap.String("student_id", student.ID))
	return student, nil
}

// firstDueDate places the first renewal one plan length after joining.
// Day passes expire a fixed number of days out; month-based plans step
// through NextDueDate so the date always lands on the configured due day,
// clamped to short months.
func firstDueDate(joinDate time.Time, planCode string, dueDay int) time.Time {
	months := 1
	switch planCode {
	case "daily":
		return joinDate.AddDate(0, 0, 1)
	case "weekly":
		return joinDate.AddDate(0, 0, 7)
	case "quarterly":
		months = 3
	case "yearly":
		months = 12
	}
	due := joinDate
	for i := 0; i < months; i++ {
		due = billing.NextDueDate(due, dueDay)
	}
	return due
}
