package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/studyhub-labs/librarypro-api/internal/models"
	appErrors "github.com/studyhub-labs/librarypro-api/pkg/errors"
)

// stubSettings satisfies settingsReader with the default configuration.
type stubSettings struct {
	settings models.Settings
}

func (s *stubSettings) Get(ctx context.Context) (models.Settings, error) {
	if s.settings.DueDay == 0 {
		return models.DefaultSettings(), nil
	}
	return s.settings, nil
}

// stubSync records emitted sync events.
type stubSync struct {
	students []models.Student
	payments []models.Payment
}

func (s *stubSync) NotifyStudent(student models.Student) {
	s.students = append(s.students, student)
}

func (s *stubSync) NotifyPayment(payment models.Payment, studentName string) {
	s.payments = append(s.payments, payment)
}

type mockStudentRepo struct {
	students   map[string]models.Student
	deleted    []string
	lastFilter models.StudentFilter
	listTotal  int
	err        error
}

func (m *mockStudentRepo) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	m.lastFilter = filter
	if m.err != nil {
		return nil, 0, m.err
	}
	out := make([]models.Student, 0, len(m.students))
	for _, s := range m.students {
		out = append(out, s)
	}
	return out, m.listTotal, nil
}

func (m *mockStudentRepo) ListAll(ctx context.Context) ([]models.Student, error) {
	students, _, err := m.List(ctx, models.StudentFilter{})
	return students, err
}

func (m *mockStudentRepo) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := m.students[id]; ok {
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentRepo) Create(ctx context.Context, student *models.Student) error {
	if m.students == nil {
		m.students = make(map[string]models.Student)
	}
	if student.ID == "" {
		student.ID = "generated"
	}
	m.students[student.ID] = *student
	return nil
}

func (m *mockStudentRepo) Update(ctx context.Context, student *models.Student) error {
	m.students[student.ID] = *student
	return nil
}

func (m *mockStudentRepo) Delete(ctx context.Context, id string) (bool, error) {
	if _, ok := m.students[id]; !ok {
		return false, nil
	}
	delete(m.students, id)
	m.deleted = append(m.deleted, id)
	return true, nil
}

func TestStudentServiceCreateAppliesDefaults(t *testing.T) {
	repo := &mockStudentRepo{}
	sync := &stubSync{}
	svc := NewStudentService(repo, &stubSettings{}, sync, nil, validator.New(), zap.NewNop())

	student, err := svc.Create(context.Background(), CreateStudentRequest{
		Name:  "Neha Gupta",
		Phone: "9876500000",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, student.ID)
	assert.Equal(t, models.StudentStatusActive, student.Status)
	assert.True(t, student.Amount.Equal(models.DefaultSettings().MembershipFee))
	assert.Equal(t, 5, student.DueDate.Day(), "default due day lands on the configured day")
	assert.True(t, student.DueDate.After(student.JoinDate))
	require.Len(t, sync.students, 1)
	assert.Equal(t, student.ID, sync.students[0].ID)
}

func TestStudentServiceCreateRejectsInvalidPayload(t *testing.T) {
	svc := NewStudentService(&mockStudentRepo{}, &stubSettings{}, nil, nil, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateStudentRequest{Name: "X"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestStudentServiceGetDecoratesOverdue(t *testing.T) {
	dueDate := time.Now().UTC().AddDate(0, 0, -4)
	repo := &mockStudentRepo{students: map[string]models.Student{
		"LIB001": {ID: "LIB001", Name: "Rahul Sharma", DueDate: dueDate, Status: models.StudentStatusActive},
	}}
	svc := NewStudentService(repo, &stubSettings{}, nil, nil, validator.New(), zap.NewNop())

	view, err := svc.Get(context.Background(), "LIB001")
	require.NoError(t, err)
	assert.Equal(t, "Overdue", view.DisplayStatus)
	assert.Equal(t, 4, view.DaysOverdue)
}

func TestStudentServiceGetNotFound(t *testing.T) {
	svc := NewStudentService(&mockStudentRepo{}, &stubSettings{}, nil, nil, validator.New(), zap.NewNop())

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestStudentServiceUpdate(t *testing.T) {
	repo := &mockStudentRepo{students: map[string]models.Student{
		"LIB001": {ID: "LIB001", Name: "Old", Phone: "9876543210", Status: models.StudentStatusActive},
	}}
	svc := NewStudentService(repo, &stubSettings{}, nil, nil, validator.New(), zap.NewNop())

	updated, err := svc.Update(context.Background(), "LIB001", UpdateStudentRequest{
		Name:   "New Name",
		Phone:  "9876543210",
		Status: models.StudentStatusInactive,
	})
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.Name)
	assert.Equal(t, models.StudentStatusInactive, updated.Status)
}

func TestStudentServiceUpdateMovesBillingFieldsExplicitly(t *testing.T) {
	oldDue := time.Date(2024, time.December, 5, 0, 0, 0, 0, time.UTC)
	repo := &mockStudentRepo{students: map[string]models.Student{
		"LIB001": {ID: "LIB001", Name: "Rahul Sharma", Phone: "9876543210", DueDate: oldDue, Amount: decimal.NewFromInt(500), Status: models.StudentStatusActive},
	}}
	svc := NewStudentService(repo, &stubSettings{}, nil, nil, validator.New(), zap.NewNop())

	// Omitting the pointers leaves the billing fields alone.
	updated, err := svc.Update(context.Background(), "LIB001", UpdateStudentRequest{
		Name:   "Rahul Sharma",
		Phone:  "9876543210",
		Status: models.StudentStatusActive,
	})
	require.NoError(t, err)
	assert.True(t, updated.DueDate.Equal(oldDue))
	assert.True(t, updated.Amount.Equal(decimal.NewFromInt(500)))

	newDue := time.Date(2025, time.February, 5, 0, 0, 0, 0, time.UTC)
	newAmount := decimal.NewFromInt(650)
	updated, err = svc.Update(context.Background(), "LIB001", UpdateStudentRequest{
		Name:    "Rahul Sharma",
		Phone:   "9876543210",
		Status:  models.StudentStatusActive,
		DueDate: &newDue,
		Amount:  &newAmount,
	})
	require.NoError(t, err)
	assert.True(t, updated.DueDate.Equal(newDue), "explicit edit moves the due date")
	assert.True(t, updated.Amount.Equal(newAmount))

	bad := decimal.NewFromInt(-1)
	_, err = svc.Update(context.Background(), "LIB001", UpdateStudentRequest{
		Name:   "Rahul Sharma",
		Phone:  "9876543210",
		Status: models.StudentStatusActive,
		Amount: &bad,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestStudentServiceDelete(t *testing.T) {
	repo := &mockStudentRepo{students: map[string]models.Student{
		"LIB001": {ID: "LIB001", Name: "Rahul Sharma", Status: models.StudentStatusActive},
	}}
	svc := NewStudentService(repo, &stubSettings{}, nil, nil, validator.New(), zap.NewNop())

	require.NoError(t, svc.Delete(context.Background(), "LIB001"))
	assert.Contains(t, repo.deleted, "LIB001")

	err := svc.Delete(context.Background(), "LIB001")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
