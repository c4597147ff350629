package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment is an immutable financial record. The student reference is weak:
// deleting a student leaves its payments in place so financial history
// survives, even with a studentId that no longer resolves.
type Payment struct {
	ID        string          `db:"id" json:"id"`
	StudentID string          `db:"student_id" json:"student_id"`
	Amount    decimal.Decimal `db:"amount" json:"amount"`
	Date      time.Time       `db:"date" json:"date"`
	Period    string          `db:"period" json:"period"`
	Method    string          `db:"method" json:"method"`
	NextDue   time.Time       `db:"next_due" json:"next_due"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// PaymentFilter encapsulates search parameters for listing payments.
type PaymentFilter struct {
	StudentID string
	Year      int
	Month     int
	Page      int
	PageSize  int
}

// PaymentDetail joins the payment with the student name when it still resolves.
type PaymentDetail struct {
	Payment
	StudentName *string `db:"student_name" json:"student_name,omitempty"`
}
