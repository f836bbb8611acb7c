package repository

import (
	"database/sql"
	"fmt"

	"github.com/belasaude/clinic-service/internal/models"
)

// CreatePatient creates a new patient in the database
func (r *Repository) CreatePatient(patient *models.Patient) error {
	query := `
		INSERT INTO clinic.patients (name, phone, email, birth_date, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(query, patient.Name, patient.Phone, patient.Email, patient.BirthDate, patient.Notes).
		Scan(&patient.ID, &patient.CreatedAt, &patient.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

// FindPatientByID retrieves a patient by id
func (r *Repository) FindPatientByID(id int64) (*models.Patient, error) {
	patient := &models.Patient{}
	query := `
		SELECT id, name, phone, email, birth_date, notes, created_at, updated_at
		FROM clinic.patients
		WHERE id = $1`
	err := r.db.QueryRow(query, id).
		Scan(&patient.ID, &patient.Name, &patient.Phone, &patient.Email,
			&patient.BirthDate, &patient.Notes, &patient.CreatedAt, &patient.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("patient %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find patient: %w", err)
	}
	return patient, nil
}

// ListPatients retrieves all patients ordered by name
func (r *Repository) ListPatients() ([]models.Patient, error) {
	query := `
		SELECT id, name, phone, email, birth_date, notes, created_at, updated_at
		FROM clinic.patients
		ORDER BY name`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	defer rows.Close()

	patients := []models.Patient{}
	for rows.Next() {
		var p models.Patient
		if err := rows.Scan(&p.ID, &p.Name, &p.Phone, &p.Email,
			&p.BirthDate, &p.Notes, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan patient: %w", err)
		}
		patients = append(patients, p)
	}
	return patients, rows.Err()
}

// UpdatePatient updates the mutable fields of a patient
func (r *Repository) UpdatePatient(patient *models.Patient) error {
	query := `
		UPDATE clinic.patients
		SET name = $1, phone = $2, email = $3, birth_date = $4, notes = $5, updated_at = CURRENT_TIMESTAMP
		WHERE id = $6
		RETURNING updated_at`
	err := r.db.QueryRow(query, patient.Name, patient.Phone, patient.Email,
		patient.BirthDate, patient.Notes, patient.ID).Scan(&patient.UpdatedAt)
	if err == sql.ErrNoRows {
		return fmt.Errorf("patient %d: %w", patient.ID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
	}
	return nil
}

// DeletePatient removes a patient and, through the schema's cascade, their
// appointments and installments
func (r *Repository) DeletePatient(id int64) error {
	res, err := r.db.Exec(`DELETE FROM clinic.patients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("patient %d: %w", id, ErrNotFound)
	}
	return nil
}
