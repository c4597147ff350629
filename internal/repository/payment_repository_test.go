package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyhub-labs/librarypro-api/internal/models"
)

func paymentRows(withName bool) *sqlmock.Rows {
	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "student_id", "amount", "date", "period", "method", "next_due", "created_at", "student_name"})
	if withName {
		rows.AddRow("PAY001", "LIB001", "500", now, "November 2024", "Cash", now, now, "Rahul Sharma")
	} else {
		rows.AddRow("PAY001", "LIB001", "500", now, "November 2024", "Cash", now, now, nil)
	}
	return rows
}

func TestPaymentRepositoryListKeepsDanglingStudentRows(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	mock.ExpectQuery("SELECT p.id, p.student_id, p.amount, p.date, p.period, p.method, p.next_due, p.created_at").
		WillReturnRows(paymentRows(false))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM payments p LEFT JOIN students s").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	payments, total, err := repo.List(context.Background(), models.PaymentFilter{})
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "LIB001", payments[0].StudentID)
	assert.Nil(t, payments[0].StudentName, "a deleted student leaves the reference unresolved")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepositoryListFiltersByMonth(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	mock.ExpectQuery("EXTRACT\\(YEAR FROM p.date\\) = \\$1 AND EXTRACT\\(MONTH FROM p.date\\) = \\$2").
		WithArgs(2024, 11).
		WillReturnRows(paymentRows(true))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\)").
		WithArgs(2024, 11).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	_, _, err := repo.List(context.Background(), models.PaymentFilter{Year: 2024, Month: 11})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	mock.ExpectExec("INSERT INTO payments").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	payment := &models.Payment{
		StudentID: "LIB001",
		Amount:    decimal.NewFromInt(500),
		Date:      time.Now().UTC(),
		Period:    "December 2024",
		Method:    "UPI",
		NextDue:   time.Now().UTC().AddDate(0, 1, 0),
	}
	err := repo.Create(context.Background(), payment)
	require.NoError(t, err)
	assert.NotEmpty(t, payment.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	mock.ExpectExec("DELETE FROM payments WHERE id").
		WithArgs("PAY001").
		WillReturnResult(sqlmock.NewResult(0, 1))

	found, err := repo.Delete(context.Background(), "PAY001")
	require.NoError(t, err)
	assert.True(t, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}
