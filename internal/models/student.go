package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StudentStatus is the stored membership flag. Display states such as
// "Due Today" or "Overdue" are computed from the due date, never stored.
type StudentStatus string

const (
	StudentStatusActive   StudentStatus = "active"
	StudentStatusInactive StudentStatus = "inactive"
)

// Student represents a library member with a monthly billing cycle.
type Student struct {
	ID        string          `db:"id" json:"id"`
	Name      string          `db:"name" json:"name"`
	Phone     string          `db:"phone" json:"phone"`
	Email     string          `db:"email" json:"email"`
	JoinDate  time.Time       `db:"join_date" json:"join_date"`
	DueDate   time.Time       `db:"due_date" json:"due_date"`
	Amount    decimal.Decimal `db:"amount" json:"amount"`
	Status    StudentStatus   `db:"status" json:"status"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search    string
	Status    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// StudentView decorates a Student with its computed billing state.
type StudentView struct {
	Student
	DisplayStatus string `json:"display_status"`
	DaysOverdue   int    `json:"days_overdue,omitempty"`
}
