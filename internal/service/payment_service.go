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

type paymentRepository interface {
	List(ctx context.Context, filter models.PaymentFilter) ([]models.PaymentDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.Payment, error)
	Create(ctx context.Context, payment *models.Payment) error
	Delete(ctx context.Context, id string) (bool, error)
}

// billingStudentRepository is the slice of the student repository the
// payment path needs.
type billingStudentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	AdvanceBilling(ctx context.Context, id string, dueDate time.Time, amount decimal.Decimal) error
}

type paymentSyncNotifier interface {
	NotifyPayment(payment models.Payment, studentName string)
}

// RecordPaymentRequest holds the payload for recording a membership payment.
// A nil amount falls back to the student's standing amount. Period is the
// billing month being settled, independent of the transaction date; left
// empty it defaults to the payment date's month.
type RecordPaymentRequest struct {
	StudentID string           `json:"student_id" validate:"required"`
	Amount    *decimal.Decimal `json:"amount"`
	Method    string           `json:"method" validate:"required,oneof=Cash UPI Card Other"`
	Date      time.Time        `json:"date"`
	Period    string           `json:"period" validate:"omitempty,max=40"`
}

// PaymentService records payments and advances the member's billing cycle.
type PaymentService struct {
	payments  paymentRepository
	students  billingStudentRepository
	settings  settingsReader
	sync      paymentSyncNotifier
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPaymentService constructs the payment service.
func NewPaymentService(payments paymentRepository, students billingStudentRepository, settings settingsReader, sync paymentSyncNotifier, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *PaymentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{
		payments:  payments,
		students:  students,
		settings:  settings,
		sync:      sync,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
	}
}

// List returns payments with pagination metadata.
func (s *PaymentService) List(ctx context.Context, filter models.PaymentFilter) ([]models.PaymentDetail, *models.Pagination, error) {
	payments, total, err := s.payments.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list payments")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return payments, pagination, nil
}

// Get returns a single payment.
func (s *PaymentService) Get(ctx context.Context, id string) (*models.Payment, error) {
	payment, err := s.payments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "payment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payment")
	}
	return payment, nil
}

// Record stores a payment and moves the member's due date one calendar
// month forward onto the configured due day. The new standing amount becomes
// the amount paid. The external sync notification is fire-and-forget: a
// failed delivery is retried in the background and never rolls the payment
// back.
func (s *PaymentService) Record(ctx context.Context, req RecordPaymentRequest) (*models.Payment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment payload")
	}

	student, err := s.students.FindByID(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	amount := student.Amount
	if req.Amount != nil {
		amount = *req.Amount
	}
	if !amount.IsPositive() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "amount must be positive")
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	date := req.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}
	period := req.Period
	if period == "" {
		period = date.Format("January 2006")
	}
	nextDue := billing.NextDueDate(student.DueDate, settings.DueDay)

	payment := &models.Payment{
		StudentID: student.ID,
		Amount:    amount,
		Date:      date,
		Period:    period,
		Method:    req.Method,
		NextDue:   nextDue,
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record payment")
	}
	if err := s.students.AdvanceBilling(ctx, student.ID, nextDue, amount); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to advance billing cycle")
	}

	s.metrics.RecordPayment(amount)
	if s.sync != nil {
		s.sync.NotifyPayment(*payment, student.Name)
	}
	s.invalidateDashboard(ctx)

	s.logger.Info("payment recorded",
		zap.String("payment_id", payment.ID),
		zap.String("student_id", student.ID),
		zap.String("amount", amount.String()),
		zap.Time("next_due", nextDue))
	return payment, nil
}

// Delete removes a payment record. The member's due date is left untouched:
// corrections go through recording a fresh payment.
func (s *PaymentService) Delete(ctx context.Context, id string) error {
	found, err := s.payments.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete payment")
	}
	if !found {
		return appErrors.Clone(appErrors.ErrNotFound, "payment not found")
	}
	s.invalidateDashboard(ctx)
	return nil
}

func (s *PaymentService) invalidateDashboard(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, "dashboard:*")
	}
}
