package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/studyhub-labs/librarypro-api/internal/models"
)

type mockBootstrapUsers struct {
	mockUserRepo
	created []models.User
}

func (m *mockBootstrapUsers) Create(ctx context.Context, user *models.User) error {
	if m.users == nil {
		m.users = make(map[string]models.User)
	}
	if user.ID == "" {
		user.ID = "generated"
	}
	m.users[user.ID] = *user
	m.created = append(m.created, *user)
	return nil
}

func TestBootstrapServiceSeedsEmptyDatabase(t *testing.T) {
	students := &mockStudentRepo{}
	payments := &mockPaymentRepo{}
	users := &mockBootstrapUsers{}
	settings := NewSettingsService(&mockSettingsRepo{}, validator.New(), zap.NewNop())
	svc := NewBootstrapService(students, payments, users, settings, zap.NewNop())

	require.NoError(t, svc.Run(context.Background()))

	assert.Len(t, students.students, 3)
	assert.Contains(t, students.students, "LIB001")
	assert.Contains(t, students.students, "LIB002")
	assert.Contains(t, students.students, "LIB003")
	assert.Contains(t, payments.payments, "PAY001")
	require.Len(t, users.created, 1)
	assert.Equal(t, models.RoleAdmin, users.created[0].Role)
}

func TestBootstrapServiceIsIdempotent(t *testing.T) {
	students := &mockStudentRepo{}
	payments := &mockPaymentRepo{}
	users := &mockBootstrapUsers{}
	settings := NewSettingsService(&mockSettingsRepo{}, validator.New(), zap.NewNop())
	svc := NewBootstrapService(students, payments, users, settings, zap.NewNop())

	require.NoError(t, svc.Run(context.Background()))
	require.NoError(t, svc.Run(context.Background()))

	assert.Len(t, students.students, 3, "second run must not duplicate the seed")
	assert.Len(t, payments.payments, 1)
	assert.Len(t, users.created, 1)
}

func TestBootstrapServiceSkipsSeedWhenMembersExist(t *testing.T) {
	students := &mockStudentRepo{students: map[string]models.Student{
		"LIB100": {ID: "LIB100", Name: "Existing", Status: models.StudentStatusActive},
	}}
	payments := &mockPaymentRepo{}
	users := &mockBootstrapUsers{}
	settings := NewSettingsService(&mockSettingsRepo{}, validator.New(), zap.NewNop())
	svc := NewBootstrapService(students, payments, users, settings, zap.NewNop())

	require.NoError(t, svc.Run(context.Background()))
	assert.Len(t, students.students, 1)
	assert.Empty(t, payments.payments)
}
