package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Appointment represents a scheduled procedure for a patient
type Appointment struct {
	ID            int64           `json:"id"`
	PatientID     int64           `json:"patient_id"`
	Procedure     string          `json:"procedure"`
	ProcedureDate time.Time       `json:"procedure_date"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Installments  int             `json:"installments"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
