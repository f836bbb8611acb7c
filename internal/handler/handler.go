package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/belasaude/clinic-service/internal/models"
	"github.com/belasaude/clinic-service/internal/repository"
	"github.com/belasaude/clinic-service/internal/schedule"
	"github.com/belasaude/clinic-service/internal/service"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// Service is the business-logic surface the HTTP layer depends on
type Service interface {
	Register(name, email, password string) (*models.User, error)
	Login(email, password string) (string, error)

	CreatePatient(patient *models.Patient) error
	GetPatient(id int64) (*models.Patient, error)
	ListPatients() ([]models.Patient, error)
	UpdatePatient(patient *models.Patient) error
	DeletePatient(id int64) error
	PatientHistory(patientID int64) (*models.PatientHistory, error)

	CreateAppointment(input service.AppointmentInput) (*models.AppointmentWithPlan, error)
	UpdateAppointment(id int64, input service.AppointmentInput) (*models.AppointmentWithPlan, error)
	GetAppointment(id int64) (*models.AppointmentWithPlan, error)
	ListAppointments(from, to time.Time) ([]models.Appointment, error)
	DeleteAppointment(id int64) error
	PayInstallment(id int64) (*models.Installment, error)
	UpcomingInstallments(days int) ([]models.DueInstallment, error)

	AddCashFlowEntry(entry *models.CashFlowEntry) error
	ListCashFlow(from, to time.Time) ([]models.CashFlowEntry, error)
	CashFlowSummary(from, to time.Time) (*models.CashFlowSummary, error)
}

type Handler struct {
	svc Service
	log *logrus.Logger
}

func NewHandler(svc Service, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles user registration
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "invalid request body")
		return
	}
	user, err := h.svc.Register(req.Name, req.Email, req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.respond(w, http.StatusCreated, user)
}

// Login handles user authentication
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "invalid request body")
		return
	}
	token, err := h.svc.Login(req.Email, req.Password)
	if err != nil {
		h.respond(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		return
	}
	h.respond(w, http.StatusOK, map[string]string{"token": token})
}

func (h *Handler) respond(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			h.log.Errorf("Failed to encode response: %v", err)
		}
	}
}

func (h *Handler) badRequest(w http.ResponseWriter, msg string) {
	h.respond(w, http.StatusBadRequest, map[string]string{"error": msg})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrValidation), errors.Is(err, schedule.ErrInvalidInput):
		h.respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, repository.ErrNotFound):
		h.respond(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, repository.ErrDuplicate):
		h.respond(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		h.log.Errorf("Request failed: %v", err)
		h.respond(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func pathID(r *http.Request) (int64, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

const dateLayout = "2006-01-02"

func parseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

// parseRange reads from/to query parameters, defaulting to the current month
func parseRange(r *http.Request) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0).Add(-time.Second)

	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid from date %q", raw)
		}
		from = parsed
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid to date %q", raw)
		}
		// Inclusive end of day
		to = parsed.Add(24*time.Hour - time.Second)
	}
	return from, to, nil
}
