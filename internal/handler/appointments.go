package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/belasaude/clinic-service/internal/models"
	"github.com/belasaude/clinic-service/internal/service"
	"github.com/shopspring/decimal"
)

type appointmentRequest struct {
	PatientID     int64           `json:"patient_id"`
	Procedure     string          `json:"procedure"`
	ProcedureDate string          `json:"procedure_date"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Installments  int             `json:"installments"`
	PaymentMethod string          `json:"payment_method"`
}

func (req appointmentRequest) toInput() (service.AppointmentInput, error) {
	var input service.AppointmentInput

	date, err := parseDate(req.ProcedureDate)
	if err != nil {
		return input, err
	}
	method, err := models.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		return input, err
	}

	input = service.AppointmentInput{
		PatientID:     req.PatientID,
		Procedure:     req.Procedure,
		ProcedureDate: date,
		TotalAmount:   req.TotalAmount,
		Installments:  req.Installments,
		PaymentMethod: method,
	}
	return input, nil
}

// CreateAppointment handles appointment creation with its installment plan
func (h *Handler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	var req appointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "invalid request body")
		return
	}
	input, err := req.toInput()
	if err != nil {
		h.badRequest(w, err.Error())
		return
	}
	result, err := h.svc.CreateAppointment(input)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.respond(w, http.StatusCreated, result)
}

// UpdateAppointment handles appointment edits; the plan is reissued
func (h *Handler) UpdateAppointment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.badRequest(w, err.Error())
		return
	}
	var req appointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "invalid request body")
		return
	}
	input, err := req.toInput()
	if err != nil {
		h.badRequest(w, err.Error())
		return
	}
	result, err := h.svc.UpdateAppointment(id, input)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.respond(w, http.StatusOK, result)
}

// GetAppointment handles a single appointment lookup with its plan
func (h *Handler) GetAppointment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.badRequest(w, err.Error())
		return
	}
	result, err := h.svc.GetAppointment(id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.respond(w, http.StatusOK, result)
}

// ListAppointments handles the schedule listing for a date range
func (h *Handler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseRange(r)
	if err != nil {
		h.badRequest(w, err.Error())
		return
	}
	appointments, err := h.svc.ListAppointments(from, to)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.respond(w, http.StatusOK, appointments)
}

// DeleteAppointment handles appointment removal
func (h *Handler) DeleteAppointment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.badRequest(w, err.Error())
		return
	}
	if err := h.svc.DeleteAppointment(id); err != nil {
		h.writeError(w, err)
		return
	}
	h.respond(w, http.StatusNoContent, nil)
}

// PayInstallment settles a pending installment
func (h *Handler) PayInstallment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.badRequest(w, err.Error())
		return
	}
	installment, err := h.svc.PayInstallment(id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.respond(w, http.StatusOK, installment)
}

// UpcomingInstallments lists pending installments due soon
func (h *Handler) UpcomingInstallments(w http.ResponseWriter, r *http.Request) {
	days := 7
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			h.badRequest(w, "invalid days parameter")
			return
		}
		days = parsed
	}
	due, err := h.svc.UpcomingInstallments(days)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.respond(w, http.StatusOK, due)
}
