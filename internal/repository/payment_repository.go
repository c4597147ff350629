package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/studyhub-labs/librarypro-api/internal/models"
)

// PaymentRepository manages persistence for payment records. Payments are
// append-only: rows are created once and never mutated afterwards.
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository constructs a PaymentRepository.
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// List returns payments matching the provided filters, newest first. The
// join to students is LEFT so rows with a dangling student id still appear.
func (r *PaymentRepository) List(ctx context.Context, filter models.PaymentFilter) ([]models.PaymentDetail, int, error) {
	base := "FROM payments p LEFT JOIN students s ON s.id = p.student_id"
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("p.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.Year != 0 {
		conditions = append(conditions, fmt.Sprintf("EXTRACT(YEAR FROM p.date) = $%d", len(args)+1))
		args = append(args, filter.Year)
	}
	if filter.Month != 0 {
		conditions = append(conditions, fmt.Sprintf("EXTRACT(MONTH FROM p.date) = $%d", len(args)+1))
		args = append(args, filter.Month)
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT p.id, p.student_id, p.amount, p.date, p.period, p.method, p.next_due, p.created_at,
        s.name AS student_name
        %s ORDER BY p.date DESC, p.created_at DESC LIMIT %d OFFSET %d`, base, size, offset)

	var payments []models.PaymentDetail
	if err := r.db.SelectContext(ctx, &payments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list payments: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count payments: %w", err)
	}
	return payments, total, nil
}

// FindByID fetches a payment by ID.
func (r *PaymentRepository) FindByID(ctx context.Context, id string) (*models.Payment, error) {
	const query = `SELECT id, student_id, amount, date, period, method, next_due, created_at FROM payments WHERE id = $1`
	var payment models.Payment
	if err := r.db.GetContext(ctx, &payment, query, id); err != nil {
		return nil, err
	}
	return &payment, nil
}

// ListBetween returns payments whose date falls in [from, to), oldest first.
func (r *PaymentRepository) ListBetween(ctx context.Context, from, to time.Time) ([]models.Payment, error) {
	const query = `SELECT id, student_id, amount, date, period, method, next_due, created_at
        FROM payments WHERE date >= $1 AND date < $2 ORDER BY date ASC`
	var payments []models.Payment
	if err := r.db.SelectContext(ctx, &payments, query, from, to); err != nil {
		return nil, fmt.Errorf("list payments between: %w", err)
	}
	return payments, nil
}

// Create inserts a new payment record.
func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO payments (id, student_id, amount, date, period, method, next_due, created_at)
        VALUES (:id, :student_id, :amount, :date, :period, :method, :next_due, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, payment); err != nil {
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}

// Delete removes a payment by id.
func (r *PaymentRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM payments WHERE id = $1", id)
	if err != nil {
		return false, fmt.Errorf("delete payment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete payment rows: %w", err)
	}
	return affected > 0, nil
}
