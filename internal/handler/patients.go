package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/belasaude/clinic-service/internal/models"
)

type patientRequest struct {
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	BirthDate string `json:"birth_date,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

func (req patientRequest) toModel() (*models.Patient, error) {
	patient := &models.Patient{
		Name:  req.Name,
		Phone: req.Phone,
		Email: req.Email,
		Notes: req.Notes,
	}
	if req.BirthDate != "" {
		birth, err := parseDate(req.BirthDate)
		if err != nil {
			return nil, err
		}
		patient.BirthDate = &birth
	}
	return patient, nil
}

// CreatePatient handles patient creation
func (h *Handler) CreatePatient(w http.ResponseWriter, r *http.Request) {
	var req patientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "invalid request body")
		return
	}
	patient, err := req.toModel()
	if err != nil {
		h.badRequest(w, "invalid birth date, expected YYYY-MM-DD")
		return
	}
	if err := h.svc.CreatePatient(patient); err != nil {
		h.writeError(w, err)
		return
	}
	h.respond(w, http.StatusCreated, patient)
}

// ListPatients handles the patient listing
func (h *Handler) ListPatients(w http.ResponseWriter, r *http.Request) {
	patients, err := h.svc.ListPatients()
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.respond(w, http.StatusOK, patients)
}

// GetPatient handles a single patient lookup
func (h *Handler) GetPatient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.badRequest(w, err.Error())
		return
	}
	patient, err := h.svc.GetPatient(id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.respond(w, http.StatusOK, patient)
}

// UpdatePatient handles patient edits
func (h *Handler) UpdatePatient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.badRequest(w, err.Error())
		return
	}
	var req patientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "invalid request body")
		return
	}
	patient, err := req.toModel()
	if err != nil {
		h.badRequest(w, "invalid birth date, expected YYYY-MM-DD")
		return
	}
	patient.ID = id
	patient.UpdatedAt = time.Now()
	if err := h.svc.UpdatePatient(patient); err != nil {
		h.writeError(w, err)
		return
	}
	h.respond(w, http.StatusOK, patient)
}

// DeletePatient handles patient removal
func (h *Handler) DeletePatient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.badRequest(w, err.Error())
		return
	}
	if err := h.svc.DeletePatient(id); err != nil {
		h.writeError(w, err)
		return
	}
	h.respond(w, http.StatusNoContent, nil)
}

// PatientHistory handles the client history view
func (h *Handler) PatientHistory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.badRequest(w, err.Error())
		return
	}
	history, err := h.svc.PatientHistory(id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.respond(w, http.StatusOK, history)
}
