package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sync event types emitted to the main library system.
const (
	SyncEventPayment    = "payment.recorded"
	SyncEventNewStudent = "student.created"
)

// PaymentSyncEvent notifies the external system about a recorded payment.
// Delivery is best-effort; the receiver upserts idempotently by payment id.
type PaymentSyncEvent struct {
	PaymentID   string          `json:"payment_id"`
	StudentID   string          `json:"student_id"`
	StudentName string          `json:"student_name"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	Period      string          `json:"period"`
	NextDue     time.Time       `json:"next_due"`
	Method      string          `json:"method"`
	Source      string          `json:"source"`
	EmittedAt   time.Time       `json:"emitted_at"`
}

// StudentSyncEvent notifies the external system about a new member.
type StudentSyncEvent struct {
	StudentID string          `json:"student_id"`
	Name      string          `json:"name"`
	Phone     string          `json:"phone"`
	Email     string          `json:"email"`
	JoinDate  time.Time       `json:"join_date"`
	DueDate   time.Time       `json:"due_date"`
	Amount    decimal.Decimal `json:"amount"`
	Status    string          `json:"status"`
	Source    string          `json:"source"`
	EmittedAt time.Time       `json:"emitted_at"`
}
