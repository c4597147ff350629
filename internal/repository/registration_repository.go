package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/studyhub-labs/librarypro-api/internal/models"
)

// RegistrationRepository persists public signups.
type RegistrationRepository struct {
	db *sqlx.DB
}

// NewRegistrationRepository constructs a RegistrationRepository.
func NewRegistrationRepository(db *sqlx.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

const registrationColumns = "id, full_name, phone, email, plan, student_discount, total_amount, status, student_id, created_at, updated_at"

// List returns registrations, newest first.
func (r *RegistrationRepository) List(ctx context.Context, status string, page, size int) ([]models.Registration, int, error) {
	base := "FROM registrations"
	args := []interface{}{}
	if status != "" {
		base += " WHERE status = $1"
		args = append(args, status)
	}

	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT %d OFFSET %d", registrationColumns, base, size, offset)
	var registrations []models.Registration
	if err := r.db.SelectContext(ctx, &registrations, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list registrations: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) %s", base), args...); err != nil {
		return nil, 0, fmt.Errorf("count registrations: %w", err)
	}
	return registrations, total, nil
}

// FindByID fetches a registration by ID.
func (r *RegistrationRepository) FindByID(ctx context.Context, id string) (*models.Registration, error) {
	query := fmt.Sprintf("SELECT %s FROM registrations WHERE id = $1", registrationColumns)
	var registration models.Registration
	if err := r.db.GetContext(ctx, &registration, query, id); err != nil {
		return nil, err
	}
	return &registration, nil
}

// Create inserts a new registration.
func (r *RegistrationRepository) Create(ctx context.Context, registration *models.Registration) error {
	if registration.ID == "" {
		registration.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if registration.CreatedAt.IsZero() {
		registration.CreatedAt = now
	}
	registration.UpdatedAt = now
	const query = `INSERT INTO registrations (id, full_name, phone, email, plan, student_discount, total_amount, status, student_id, created_at, updated_at)
        VALUES (:id, :full_name, :phone, :email, :plan, :student_discount, :total_amount, :status, :student_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, registration); err != nil {
		return fmt.Errorf("create registration: %w", err)
	}
	return nil
}

// MarkCompleted links a registration to the created student.
func (r *RegistrationRepository) MarkCompleted(ctx context.Context, id, studentID string) error {
	const query = `UPDATE registrations SET status = $2, student_id = $3, updated_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, models.RegistrationStatusCompleted, studentID, time.Now().UTC()); err != nil {
		return fmt.Errorf("complete registration %s: %w", id, err)
	}
	return nil
}
