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

type mockPaymentRepo struct {
	payments map[string]models.Payment
	deleted  []string
}

func (m *mockPaymentRepo) List(ctx context.Context, filter models.PaymentFilter) ([]models.PaymentDetail, int, error) {
	out := make([]models.PaymentDetail, 0, len(m.payments))
	for _, p := range m.payments {
		out = append(out, models.PaymentDetail{Payment: p})
	}
	return out, len(out), nil
}

func (m *mockPaymentRepo) FindByID(ctx context.Context, id string) (*models.Payment, error) {
	if p, ok := m.payments[id]; ok {
		return &p, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockPaymentRepo) ListBetween(ctx context.Context, from, to time.Time) ([]models.Payment, error) {
	out := []models.Payment{}
	for _, p := range m.payments {
		if !p.Date.Before(from) && p.Date.Before(to) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockPaymentRepo) Create(ctx context.Context, payment *models.Payment) error {
	if m.payments == nil {
		m.payments = make(map[string]models.Payment)
	}
	if payment.ID == "" {
		payment.ID = "generated"
	}
	m.payments[payment.ID] = *payment
	return nil
}

func (m *mockPaymentRepo) Delete(ctx context.Context, id string) (bool, error) {
	if _, ok := m.payments[id]; !ok {
		return false, nil
	}
	delete(m.payments, id)
	m.deleted = append(m.deleted, id)
	return true, nil
}

type mockBillingStudents struct {
	students map[string]models.Student
	advanced map[string]time.Time
}

func (m *mockBillingStudents) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := m.students[id]; ok {
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockBillingStudents) AdvanceBilling(ctx context.Context, id string, dueDate time.Time, amount decimal.Decimal) error {
	if m.advanced == nil {
		m.advanced = make(map[string]time.Time)
	}
	m.advanced[id] = dueDate
	s := m.students[id]
	s.DueDate = dueDate
	s.Amount = amount
	m.students[id] = s
	return nil
}

func newPaymentService(payments *mockPaymentRepo, students *mockBillingStudents, sync *stubSync) *PaymentService {
	return NewPaymentService(payments, students, &stubSettings{}, sync, nil, nil, validator.New(), zap.NewNop())
}

func TestPaymentServiceRecordUnknownStudent(t *testing.T) {
	svc := newPaymentService(&mockPaymentRepo{}, &mockBillingStudents{}, &stubSync{})

	_, err := svc.Record(context.Background(), RecordPaymentRequest{
		StudentID: "missing",
		Method:    "Cash",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestPaymentServiceRecordAdvancesBillingCycle(t *testing.T) {
	dueDate := time.Date(2024, time.December, 5, 0, 0, 0, 0, time.UTC)
	students := &mockBillingStudents{students: map[string]models.Student{
		"LIB001": {ID: "LIB001", Name: "Rahul Sharma", DueDate: dueDate, Amount: decimal.NewFromInt(500), Status: models.StudentStatusActive},
	}}
	payments := &mockPaymentRepo{}
	sync := &stubSync{}
	svc := newPaymentService(payments, students, sync)

	paid := decimal.NewFromInt(600)
	payment, err := svc.Record(context.Background(), RecordPaymentRequest{
		StudentID: "LIB001",
		Amount:    &paid,
		Method:    "UPI",
		Date:      time.Date(2024, time.December, 5, 14, 30, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	wantDue := time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC)
	assert.True(t, payment.NextDue.Equal(wantDue))
	assert.Equal(t, "December 2024", payment.Period)
	assert.True(t, payment.Amount.Equal(paid))

	// Student state follows the payment.
	student := students.students["LIB001"]
	assert.True(t, student.DueDate.Equal(wantDue))
	assert.True(t, student.Amount.Equal(paid))

	require.Len(t, sync.payments, 1)
	assert.Equal(t, payment.ID, sync.payments[0].ID)
}

func TestPaymentServiceRecordHonoursExplicitPeriod(t *testing.T) {
	students := &mockBillingStudents{students: map[string]models.Student{
		"LIB001": {ID: "LIB001", Name: "Rahul Sharma", DueDate: time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(500), Status: models.StudentStatusActive},
	}}
	svc := newPaymentService(&mockPaymentRepo{}, students, &stubSync{})

	// Settling a back month: the period stays independent of the
	// transaction date.
	payment, err := svc.Record(context.Background(), RecordPaymentRequest{
		StudentID: "LIB001",
		Method:    "Cash",
		Date:      time.Date(2025, time.February, 10, 0, 0, 0, 0, time.UTC),
		Period:    "January 2025",
	})
	require.NoError(t, err)
	assert.Equal(t, "January 2025", payment.Period)
}

func TestPaymentServiceRecordDefaultsToStandingAmount(t *testing.T) {
	students := &mockBillingStudents{students: map[string]models.Student{
		"LIB001": {ID: "LIB001", Name: "Rahul Sharma", DueDate: time.Now().UTC(), Amount: decimal.NewFromInt(500), Status: models.StudentStatusActive},
	}}
	svc := newPaymentService(&mockPaymentRepo{}, students, &stubSync{})

	payment, err := svc.Record(context.Background(), RecordPaymentRequest{
		StudentID: "LIB001",
		Method:    "Cash",
	})
	require.NoError(t, err)
	assert.True(t, payment.Amount.Equal(decimal.NewFromInt(500)))
}

func TestPaymentServiceRecordRejectsNonPositiveAmount(t *testing.T) {
	students := &mockBillingStudents{students: map[string]models.Student{
		"LIB001": {ID: "LIB001", DueDate: time.Now().UTC(), Amount: decimal.NewFromInt(500), Status: models.StudentStatusActive},
	}}
	svc := newPaymentService(&mockPaymentRepo{}, students, &stubSync{})

	zero := decimal.Zero
	_, err := svc.Record(context.Background(), RecordPaymentRequest{
		StudentID: "LIB001",
		Amount:    &zero,
		Method:    "Cash",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestPaymentServiceDeleteLeavesDueDateAlone(t *testing.T) {
	dueDate := time.Date(2025, time.February, 5, 0, 0, 0, 0, time.UTC)
	students := &mockBillingStudents{students: map[string]models.Student{
		"LIB001": {ID: "LIB001", DueDate: dueDate, Amount: decimal.NewFromInt(500), Status: models.StudentStatusActive},
	}}
	payments := &mockPaymentRepo{payments: map[string]models.Payment{
		"PAY001": {ID: "PAY001", StudentID: "LIB001"},
	}}
	svc := newPaymentService(payments, students, &stubSync{})

	require.NoError(t, svc.Delete(context.Background(), "PAY001"))
	assert.Contains(t, payments.deleted, "PAY001")
	assert.True(t, students.students["LIB001"].DueDate.Equal(dueDate))

	err := svc.Delete(context.Background(), "PAY001")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
