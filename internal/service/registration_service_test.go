package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/studyhub-labs/librarypro-api/internal/models"
	appErrors "github.com/studyhub-labs/librarypro-api/pkg/errors"
)

type mockRegistrationRepo struct {
	registrations map[string]models.Registration
}

func (m *mockRegistrationRepo) List(ctx context.Context, status string, page, size int) ([]models.Registration, int, error) {
	out := []models.Registration{}
	for _, r := range m.registrations {
		if status == "" || string(r.Status) == status {
			out = append(out, r)
		}
	}
	return out, len(out), nil
}

func (m *mockRegistrationRepo) FindByID(ctx context.Context, id string) (*models.Registration, error) {
	if r, ok := m.registrations[id]; ok {
		return &r, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockRegistrationRepo) Create(ctx context.Context, registration *models.Registration) error {
	if m.registrations == nil {
		m.registrations = make(map[string]models.Registration)
	}
	if registration.ID == "" {
		registration.ID = "generated"
	}
	m.registrations[registration.ID] = *registration
	return nil
}

func (m *mockRegistrationRepo) MarkCompleted(ctx context.Context, id, studentID string) error {
	r := m.registrations[id]
	r.Status = models.RegistrationStatusCompleted
	r.StudentID = &studentID
	m.registrations[id] = r
	return nil
}

func newRegistrationService(repo *mockRegistrationRepo, students *mockStudentRepo, payments *mockPaymentRepo, sync *stubSync) *RegistrationService {
	return NewRegistrationService(repo, students, payments, &stubSettings{}, sync, validator.New(), zap.NewNop())
}

func TestRegistrationServicePlanCatalogue(t *testing.T) {
	svc := newRegistrationService(&mockRegistrationRepo{}, &mockStudentRepo{}, &mockPaymentRepo{}, &stubSync{})

	prices := map[string]int64{}
	for _, plan := range svc.Plans() {
		prices[plan.Code] = plan.Price.IntPart()
	}
	assert.Equal(t, map[string]int64{
		"daily":     50,
		"weekly":    300,
		"monthly":   500,
		"quarterly": 1400,
		"yearly":    5000,
	}, prices, "prices mirror the public site")
}

func TestRegistrationServiceQuote(t *testing.T) {
	svc := newRegistrationService(&mockRegistrationRepo{}, &mockStudentRepo{}, &mockPaymentRepo{}, &stubSync{})

	full, err := svc.Quote("monthly", false)
	require.NoError(t, err)
	assert.True(t, full.Equal(decimal.NewFromInt(500)))

	discounted, err := svc.Quote("monthly", true)
	require.NoError(t, err)
	assert.True(t, discounted.Equal(decimal.NewFromInt(450)), "student discount takes ten percent off")

	_, err = svc.Quote("lifetime", false)
	require.Error(t, err)
}

func TestRegistrationServiceRegister(t *testing.T) {
	repo := &mockRegistrationRepo{}
	svc := newRegistrationService(repo, &mockStudentRepo{}, &mockPaymentRepo{}, &stubSync{})

	registration, err := svc.Register(context.Background(), RegisterRequest{
		FullName:        "Sneha Reddy",
		Phone:           "9876511111",
		Plan:            "quarterly",
		StudentDiscount: true,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RegistrationStatusPending, registration.Status)
	assert.True(t, registration.TotalAmount.Equal(decimal.NewFromInt(1260)))
	assert.Len(t, repo.registrations, 1)
}

func TestRegistrationServiceComplete(t *testing.T) {
	total := decimal.NewFromInt(1260)
	repo := &mockRegistrationRepo{registrations: map[string]models.Registration{
		"REG001": {ID: "REG001", FullName: "Sneha Reddy", Phone: "9876511111", Plan: "quarterly", TotalAmount: total, Status: models.RegistrationStatusPending},
	}}
	students := &mockStudentRepo{}
	payments := &mockPaymentRepo{}
	sync := &stubSync{}
	svc := newRegistrationService(repo, students, payments, sync)

	student, err := svc.Complete(context.Background(), "REG001")
	require.NoError(t, err)
	assert.Equal(t, "Sneha Reddy", student.Name)
	assert.Equal(t, models.StudentStatusActive, student.Status)
	assert.True(t, student.Amount.Equal(total), "standing amount is the quoted total")
	assert.Equal(t, 5, student.DueDate.Day(), "due date lands on the configured due day")
	assert.True(t, student.DueDate.After(student.JoinDate.AddDate(0, 2, 0)), "quarterly plan pushes the due date three months out")

	require.Len(t, payments.payments, 1, "completion records the signup payment")
	for _, p := range payments.payments {
		assert.Equal(t, student.ID, p.StudentID)
		assert.True(t, p.Amount.Equal(total))
		assert.True(t, p.NextDue.Equal(student.DueDate))
	}

	completed := repo.registrations["REG001"]
	assert.Equal(t, models.RegistrationStatusCompleted, completed.Status)
	require.NotNil(t, completed.StudentID)
	assert.Equal(t, student.ID, *completed.StudentID)
	require.Len(t, sync.students, 1)
	require.Len(t, sync.payments, 1)

	_, err = svc.Complete(context.Background(), "REG001")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestRegistrationServiceDayPassExpiry(t *testing.T) {
	repo := &mockRegistrationRepo{registrations: map[string]models.Registration{
		"REG002": {ID: "REG002", FullName: "Vikram Rao", Phone: "9876522222", Plan: "weekly", TotalAmount: decimal.NewFromInt(300), Status: models.RegistrationStatusPending},
	}}
	svc := newRegistrationService(repo, &mockStudentRepo{}, &mockPaymentRepo{}, &stubSync{})

	student, err := svc.Complete(context.Background(), "REG002")
	require.NoError(t, err)
	assert.True(t, student.DueDate.Equal(student.JoinDate.AddDate(0, 0, 7)), "weekly pass expires seven days after joining")
}

func TestRegistrationServiceCompleteNotFound(t *testing.T) {
	svc := newRegistrationService(&mockRegistrationRepo{}, &mockStudentRepo{}, &mockPaymentRepo{}, &stubSync{})

	_, err := svc.Complete(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
