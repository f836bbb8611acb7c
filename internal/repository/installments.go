package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/belasaude/clinic-service/internal/models"
)

const installmentColumns = `id, appointment_id, number, total_installments, due_date,
	amount, status, payment_method, paid_at, created_at, updated_at`

// ListInstallmentsByAppointment retrieves an appointment's plan ordered by
// installment number
func (r *Repository) ListInstallmentsByAppointment(appointmentID int64) ([]models.Installment, error) {
	query := `
		SELECT ` + installmentColumns + `
		FROM clinic.installments
		WHERE appointment_id = $1
		ORDER BY number`
	rows, err := r.db.Query(query, appointmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list installments: %w", err)
	}
	defer rows.Close()
	return scanInstallments(rows)
}

// MarkInstallmentPaid transitions a pending installment to paid
func (r *Repository) MarkInstallmentPaid(id int64, paidAt time.Time) (*models.Installment, error) {
	installment := &models.Installment{}
	query := `
		UPDATE clinic.installments
		SET status = $1, paid_at = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $3 AND status = $4
		RETURNING ` + installmentColumns
	err := r.db.QueryRow(query, models.StatusPaid, paidAt, id, models.StatusPending).Scan(
		&installment.ID, &installment.AppointmentID, &installment.Number, &installment.TotalInstallments,
		&installment.DueDate, &installment.Amount, &installment.Status, &installment.PaymentMethod,
		&installment.PaidAt, &installment.CreatedAt, &installment.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("pending installment %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to mark installment paid: %w", err)
	}
	return installment, nil
}

// ListInstallmentsDueBetween retrieves pending installments due inside
// [from, to], joined with patient contact details, soonest first. Overdue
// rows are included when from precedes the current date.
func (r *Repository) ListInstallmentsDueBetween(from, to time.Time) ([]models.DueInstallment, error) {
	query := `
		SELECT i.id, i.appointment_id, i.number, i.total_installments, i.due_date,
			i.amount, i.status, i.payment_method, i.paid_at, i.created_at, i.updated_at,
			p.name, p.email, a.procedure
		FROM clinic.installments i
		JOIN clinic.appointments a ON a.id = i.appointment_id
		JOIN clinic.patients p ON p.id = a.patient_id
		WHERE i.status = $1 AND i.due_date BETWEEN $2 AND $3
		ORDER BY i.due_date`
	rows, err := r.db.Query(query, models.StatusPending, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list due installments: %w", err)
	}
	defer rows.Close()

	due := []models.DueInstallment{}
	for rows.Next() {
		var d models.DueInstallment
		in := &d.Installment
		if err := rows.Scan(&in.ID, &in.AppointmentID, &in.Number, &in.TotalInstallments,
			&in.DueDate, &in.Amount, &in.Status, &in.PaymentMethod, &in.PaidAt,
			&in.CreatedAt, &in.UpdatedAt, &d.PatientName, &d.PatientEmail, &d.Procedure); err != nil {
			return nil, fmt.Errorf("failed to scan due installment: %w", err)
		}
		due = append(due, d)
	}
	return due, rows.Err()
}

func scanInstallments(rows *sql.Rows) ([]models.Installment, error) {
	installments := []models.Installment{}
	for rows.Next() {
		var in models.Installment
		if err := rows.Scan(&in.ID, &in.AppointmentID, &in.Number, &in.TotalInstallments,
			&in.DueDate, &in.Amount, &in.Status, &in.PaymentMethod, &in.PaidAt,
			&in.CreatedAt, &in.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan installment: %w", err)
		}
		installments = append(installments, in)
	}
	return installments, rows.Err()
}
