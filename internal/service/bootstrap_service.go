package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/studyhub-labs/librarypro-api/internal/billing"
	"github.com/studyhub-labs/librarypro-api/internal/models"
)

type bootstrapStudentRepository interface {
	ListAll(ctx context.Context) ([]models.Student, error)
	Create(ctx context.Context, student *models.Student) error
}

type bootstrapPaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
}

type bootstrapUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

type settingsEnsurer interface {
	EnsureDefaults(ctx context.Context) error
}

// BootstrapService seeds an empty database with demo members, one payment
// and the default configuration, and guarantees an admin account exists.
// Seeding is idempotent and only touches empty tables.
type BootstrapService struct {
	students bootstrapStudentRepository
	payments bootstrapPaymentRepository
	users    bootstrapUserRepository
	settings settingsEnsurer
	logger   *zap.Logger
}

// NewBootstrapService constructs the bootstrap service.
func NewBootstrapService(students bootstrapStudentRepository, payments bootstrapPaymentRepository, users bootstrapUserRepository, settings settingsEnsurer, logger *zap.Logger) *BootstrapService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BootstrapService{students: students, payments: payments, users: users, settings: settings, logger: logger}
}

// Run performs the startup seed.
func (s *BootstrapService) Run(ctx context.Context) error {
	if err := s.settings.EnsureDefaults(ctx); err != nil {
		return err
	}
	if err := s.ensureAdmin(ctx); err != nil {
		return err
	}
	return s.seedDemoData(ctx)
}

func (s *BootstrapService) ensureAdmin(ctx context.Context) error {
	const adminEmail = "admin@librarypro.local"
	_, err := s.users.FindByEmail(ctx, adminEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := &models.User{
		Email:        adminEmail,
		PasswordHash: string(hash),
		FullName:     "Administrator",
		Role:         models.RoleAdmin,
		Active:       true,
	}
	if err := s.users.Create(ctx, admin); err != nil {
		return err
	}
	s.logger.Warn("seeded default admin account, change the password",
		zap.String("email", adminEmail))
	return nil
}

func (s *BootstrapService) seedDemoData(ctx context.Context) error {
	existing, err := s.students.ListAll(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	today := billing.Midnight(time.Now().UTC())
	fee := decimal.NewFromInt(500)

	students := []models.Student{
		{
			ID:       "LIB001",
			Name:     "Rahul Sharma",
			Phone:    "9876543210",
			Email:    "rahul.sharma@example.com",
			JoinDate: today.AddDate(0, -3, 0),
			DueDate:  today,
			Amount:   fee,
			Status:   models.StudentStatusActive,
		},
		{
			ID:       "LIB002",
			Name:     "Priya Patel",
			Phone:    "9876543211",
			Email:    "priya.patel@example.com",
			JoinDate: today.AddDate(0, -2, 0),
			DueDate:  today.AddDate(0, 0, -6),
			Amount:   fee,
			Status:   models.StudentStatusActive,
		},
		{
			ID:       "LIB003",
			Name:     "Amit Singh",
			Phone:    "9876543212",
			Email:    "amit.singh@example.com",
			JoinDate: today.AddDate(0, -1, 0),
			DueDate:  today.AddDate(0, 0, 12),
			Amount:   fee,
			Status:   models.StudentStatusActive,
		},
	}
	for i := range students {
		if err := s.students.Create(ctx, &students[i]); err != nil {
			return err
		}
	}

	lastMonth := today.AddDate(0, -1, 0)
	payment := &models.Payment{
		ID:        "PAY001",
		StudentID: "LIB003",
		Amount:    fee,
		Date:      lastMonth,
		Period:    lastMonth.Format("January 2006"),
		Method:    "Cash",
		NextDue:   students[2].DueDate,
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		return err
	}

	s.logger.Info("seeded demo data",
		zap.Int("students", len(students)), zap.Int("payments", 1))
	return nil
}
