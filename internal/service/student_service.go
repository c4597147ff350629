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

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) (bool, error)
}

// settingsReader is the read-only slice of the settings service the other
// services depend on.
type settingsReader interface {
	Get(ctx context.Context) (models.Settings, error)
}

type studentSyncNotifier interface {
	NotifyStudent(student models.Student)
}

// CreateStudentRequest holds the payload for registering members directly.
type CreateStudentRequest struct {
	Name     string           `json:"name" validate:"required,min=2,max=120"`
	Phone    string           `json:"phone" validate:"required,min=6,max=20"`
	Email    string           `json:"email" validate:"omitempty,email"`
	JoinDate time.Time        `json:"join_date"`
	DueDate  time.Time        `json:"due_date"`
	Amount   *decimal.Decimal `json:"amount"`
}

// UpdateStudentRequest holds the payload for editing a member. Besides the
// profile fields, the join date, due date and standing amount can be set
// explicitly; nil pointers leave them untouched. The due date otherwise
// only moves through the payment-recording path.
type UpdateStudentRequest struct {
	Name     string               `json:"name" validate:"required,min=2,max=120"`
	Phone    string               `json:"phone" validate:"required,min=6,max=20"`
	Email    string               `json:"email" validate:"omitempty,email"`
	Status   models.StudentStatus `json:"status" validate:"required,oneof=active inactive"`
	JoinDate *time.Time           `json:"join_date"`
	DueDate  *time.Time           `json:"due_date"`
	Amount   *decimal.Decimal     `json:"amount"`
}

// StudentService handles member use-cases and decorates results with their
// computed billing state.
type StudentService struct {
	repo      studentRepository
	settings  settingsReader
	sync      studentSyncNotifier
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, settings settingsReader, sync studentSyncNotifier, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, settings: settings, sync: sync, cache: cache, validator: validate, logger: logger}
}

// List returns members with pagination metadata, each carrying its display
// status as of today.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentView, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}

	now := time.Now().UTC()
	views := make([]models.StudentView, 0, len(students))
	for _, student := range students {
		views = append(views, decorate(student, now))
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
	return views, pagination, nil
}

// Get returns a single member with its computed billing state.
func (s *StudentService) Get(ctx context.Context, id string) (*models.StudentView, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	view := decorate(*student, time.Now().UTC())
	return &view, nil
}

// Create registers a new member. Omitted fields fall back to the configured
// membership fee and the next occurrence of the configured due day.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	joinDate := req.JoinDate
	if joinDate.IsZero() {
		joinDate = billing.Midnight(time.Now().UTC())
	}
	dueDate := req.DueDate
	if dueDate.IsZero() {
		dueDate = billing.NextDueDate(joinDate, settings.DueDay)
	}
	amount := settings.MembershipFee
	if req.Amount != nil {
		if req.Amount.IsNegative() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "amount cannot be negative")
		}
		amount = *req.Amount
	}

	student := &models.Student{
		Name:     req.Name,
		Phone:    req.Phone,
		Email:    req.Email,
		JoinDate: billing.Midnight(joinDate),
		DueDate:  billing.Midnight(dueDate),
		Amount:   amount,
		Status:   models.StudentStatusActive,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}

	if s.sync != nil {
		s.sync.NotifyStudent(*student)
	}
	s.invalidateDashboard(ctx)
	s.logger.Info("student created", zap.String("student_id", student.ID))
	return student, nil
}

// Update modifies a member's profile fields.
func (s *StudentService) Update(ctx context.Context, id string, req UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	student.Name = req.Name
	student.Phone = req.Phone
	student.Email = req.Email
	student.Status = req.Status
	if req.JoinDate != nil {
		student.JoinDate = *req.JoinDate
	}
	if req.DueDate != nil {
		student.DueDate = *req.DueDate
	}
	if req.Amount != nil {
		if !req.Amount.IsPositive() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "amount must be positive")
		}
		student.Amount = *req.Amount
	}
	if err := s.repo.Update(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	s.invalidateDashboard(ctx)
	return student, nil
}

// Delete removes a member. Payment history is kept on purpose so financial
// records survive the deletion.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	if !found {
		return appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	s.invalidateDashboard(ctx)
	s.logger.Info("student deleted, payments retained", zap.String("student_id", id))
	return nil
}

func (s *StudentService) invalidateDashboard(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, "dashboard:*")
	}
}

func decorate(student models.Student, asOf time.Time) models.StudentView {
	c := billing.Classify(student, asOf)
	return models.StudentView{
		Student:       student,
		DisplayStatus: c.Label(),
		DaysOverdue:   c.DaysOverdue,
	}
}
