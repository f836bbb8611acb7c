package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/belasaude/clinic-service/internal/models"
)

// CreateAppointmentWithPlan inserts an appointment and every installment of
// its plan inside one transaction. Either the whole plan lands or nothing
// does; a failure mid-batch never leaves a partial set of rows behind.
func (r *Repository) CreateAppointmentWithPlan(appointment *models.Appointment, plan []models.Installment) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertAppointment(tx, appointment); err != nil {
		return err
	}
	if err := insertInstallments(tx, appointment.ID, plan); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit appointment: %w", err)
	}
	return nil
}

// ReissuePlan replaces an appointment and its installments with recomputed
// values. Edits never patch individual installment rows; the old plan is
// deleted and the new one inserted in the same transaction.
func (r *Repository) ReissuePlan(appointment *models.Appointment, plan []models.Installment) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE clinic.appointments
		SET patient_id = $1, procedure = $2, procedure_date = $3, total_amount = $4,
		    installments = $5, payment_method = $6, updated_at = CURRENT_TIMESTAMP
		WHERE id = $7
		RETURNING updated_at`
	err = tx.QueryRow(query, appointment.PatientID, appointment.Procedure, appointment.ProcedureDate,
		appointment.TotalAmount, appointment.Installments, appointment.PaymentMethod, appointment.ID).
		Scan(&appointment.UpdatedAt)
	if err == sql.ErrNoRows {
		return fmt.Errorf("appointment %d: %w", appointment.ID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM clinic.installments WHERE appointment_id = $1`, appointment.ID); err != nil {
		return fmt.Errorf("failed to clear old installments: %w", err)
	}
	if err := insertInstallments(tx, appointment.ID, plan); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reissued plan: %w", err)
	}
	return nil
}

func insertAppointment(tx *sql.Tx, appointment *models.Appointment) error {
	query := `
		INSERT INTO clinic.appointments (patient_id, procedure, procedure_date, total_amount,
			installments, payment_method, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at`
	err := tx.QueryRow(query, appointment.PatientID, appointment.Procedure, appointment.ProcedureDate,
		appointment.TotalAmount, appointment.Installments, appointment.PaymentMethod).
		Scan(&appointment.ID, &appointment.CreatedAt, &appointment.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func insertInstallments(tx *sql.Tx, appointmentID int64, plan []models.Installment) error {
	query := `
		INSERT INTO clinic.installments (appointment_id, number, total_installments, due_date,
			amount, status, payment_method, paid_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id`
	for i := range plan {
		in := &plan[i]
		in.AppointmentID = appointmentID
		err := tx.QueryRow(query, appointmentID, in.Number, in.TotalInstallments, in.DueDate,
			in.Amount, in.Status, in.PaymentMethod, in.PaidAt).Scan(&in.ID)
		if err != nil {
			return fmt.Errorf("failed to insert installment %d: %w", in.Number, err)
		}
	}
	return nil
}

// FindAppointmentByID retrieves an appointment by id
func (r *Repository) FindAppointmentByID(id int64) (*models.Appointment, error) {
	appointment := &models.Appointment{}
	query := `
		SELECT id, patient_id, procedure, procedure_date, total_amount, installments,
			payment_method, created_at, updated_at
		FROM clinic.appointments
		WHERE id = $1`
	err := r.db.QueryRow(query, id).
		Scan(&appointment.ID, &appointment.PatientID, &appointment.Procedure, &appointment.ProcedureDate,
			&appointment.TotalAmount, &appointment.Installments, &appointment.PaymentMethod,
			&appointment.CreatedAt, &appointment.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("appointment %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find appointment: %w", err)
	}
	return appointment, nil
}

// ListAppointments retrieves appointments whose procedure date falls in
// [from, to], oldest first
func (r *Repository) ListAppointments(from, to time.Time) ([]models.Appointment, error) {
	query := `
		SELECT id, patient_id, procedure, procedure_date, total_amount, installments,
			payment_method, created_at, updated_at
		FROM clinic.appointments
		WHERE procedure_date BETWEEN $1 AND $2
		ORDER BY procedure_date`
	rows, err := r.db.Query(query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	defer rows.Close()
	return scanAppointments(rows)
}

// DeleteAppointment removes an appointment and its installments in one
// transaction
func (r *Repository) DeleteAppointment(id int64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM clinic.installments WHERE appointment_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete installments: %w", err)
	}
	res, err := tx.Exec(`DELETE FROM clinic.appointments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("appointment %d: %w", id, ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}
	return nil
}

// PatientAppointments retrieves a patient's appointments, newest first
func (r *Repository) PatientAppointments(patientID int64) ([]models.Appointment, error) {
	query := `
		SELECT id, patient_id, procedure, procedure_date, total_amount, installments,
			payment_method, created_at, updated_at
		FROM clinic.appointments
		WHERE patient_id = $1
		ORDER BY procedure_date DESC`
	rows, err := r.db.Query(query, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list patient appointments: %w", err)
	}
	defer rows.Close()
	return scanAppointments(rows)
}

func scanAppointments(rows *sql.Rows) ([]models.Appointment, error) {
	appointments := []models.Appointment{}
	for rows.Next() {
		var a models.Appointment
		if err := rows.Scan(&a.ID, &a.PatientID, &a.Procedure, &a.ProcedureDate,
			&a.TotalAmount, &a.Installments, &a.PaymentMethod, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan appointment: %w", err)
		}
		appointments = append(appointments, a)
	}
	return appointments, rows.Err()
}
