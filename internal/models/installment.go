package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InstallmentStatus tracks whether a scheduled payment was settled
type InstallmentStatus string

const (
	StatusPending InstallmentStatus = "pending"
	StatusPaid    InstallmentStatus = "paid"
)

// Installment represents one scheduled partial payment of an appointment.
// Number is 1-based and contiguous within the appointment's plan.
type Installment struct {
	ID                int64             `json:"id"`
	AppointmentID     int64             `json:"appointment_id"`
	Number            int               `json:"number"`
	TotalInstallments int               `json:"total_installments"`
	DueDate           time.Time         `json:"due_date"`
	Amount            decimal.Decimal   `json:"amount"`
	Status            InstallmentStatus `json:"status"`
	PaymentMethod     PaymentMethod     `json:"payment_method"`
	PaidAt            *time.Time        `json:"paid_at,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}
