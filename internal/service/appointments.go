package service

import (
	"fmt"
	"time"

	"github.com/belasaude/clinic-service/internal/models"
	"github.com/belasaude/clinic-service/internal/schedule"
	"github.com/shopspring/decimal"
)

// AppointmentInput carries everything a create or update request provides.
// It is an explicit, immutable request object; the scheduler never sees
// ambient state.
type AppointmentInput struct {
	PatientID     int64
	Procedure     string
	ProcedureDate time.Time
	TotalAmount   decimal.Decimal
	Installments  int
	PaymentMethod models.PaymentMethod
}

// CreateAppointment validates the input, computes the installment plan and
// persists the appointment with its plan in one transaction. On any
// persistence failure the whole plan is discarded; there is no partial
// retry.
func (s *Service) CreateAppointment(input AppointmentInput) (*models.AppointmentWithPlan, error) {
	appointment, plan, err := s.prepare(input)
	if err != nil {
		return nil, err
	}

	if err := s.store.CreateAppointmentWithPlan(appointment, plan); err != nil {
		return nil, err
	}

	s.log.Infof("Appointment %d created for patient %d: %d installment(s) of %s via %s",
		appointment.ID, appointment.PatientID, len(plan), plan[0].Amount, appointment.PaymentMethod)
	return &models.AppointmentWithPlan{Appointment: *appointment, Installments: plan}, nil
}

// UpdateAppointment recomputes the plan from the new input and reissues it.
// The old installments are deleted and replaced wholesale; individual rows
// are never patched.
func (s *Service) UpdateAppointment(id int64, input AppointmentInput) (*models.AppointmentWithPlan, error) {
	if _, err := s.store.FindAppointmentByID(id); err != nil {
		return nil, err
	}

	appointment, plan, err := s.prepare(input)
	if err != nil {
		return nil, err
	}
	appointment.ID = id

	if err := s.store.ReissuePlan(appointment, plan); err != nil {
		return nil, err
	}

	s.log.Infof("Appointment %d reissued: %d installment(s)", id, len(plan))
	return &models.AppointmentWithPlan{Appointment: *appointment, Installments: plan}, nil
}

// prepare validates the input and expands the computed plan into full
// installment records ready for insertion
func (s *Service) prepare(input AppointmentInput) (*models.Appointment, []models.Installment, error) {
	if input.Procedure == "" {
		return nil, nil, fmt.Errorf("%w: procedure description is required", ErrValidation)
	}
	if _, err := s.store.FindPatientByID(input.PatientID); err != nil {
		return nil, nil, err
	}

	plan, err := schedule.Build(schedule.Request{
		ProcedureDate: input.ProcedureDate,
		TotalAmount:   input.TotalAmount,
		Installments:  input.Installments,
		Method:        input.PaymentMethod,
	})
	if err != nil {
		return nil, nil, err
	}

	appointment := &models.Appointment{
		PatientID:     input.PatientID,
		Procedure:     input.Procedure,
		ProcedureDate: schedule.Normalize(input.ProcedureDate),
		TotalAmount:   input.TotalAmount.Round(2),
		Installments:  len(plan),
		PaymentMethod: input.PaymentMethod,
	}

	rows := make([]models.Installment, 0, len(plan))
	for _, in := range plan {
		row := models.Installment{
			Number:            in.Number,
			TotalInstallments: len(plan),
			DueDate:           in.DueDate,
			Amount:            in.Amount,
			Status:            in.Status,
			PaymentMethod:     input.PaymentMethod,
		}
		if in.Status == models.StatusPaid {
			paidAt := in.DueDate
			row.PaidAt = &paidAt
		}
		rows = append(rows, row)
	}
	return appointment, rows, nil
}

// GetAppointment retrieves an appointment with its installment plan
func (s *Service) GetAppointment(id int64) (*models.AppointmentWithPlan, error) {
	appointment, err := s.store.FindAppointmentByID(id)
	if err != nil {
		return nil, err
	}
	installments, err := s.store.ListInstallmentsByAppointment(id)
	if err != nil {
		return nil, err
	}
	return &models.AppointmentWithPlan{Appointment: *appointment, Installments: installments}, nil
}

// ListAppointments retrieves appointments in a date range
func (s *Service) ListAppointments(from, to time.Time) ([]models.Appointment, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: range end precedes start", ErrValidation)
	}
	return s.store.ListAppointments(from, to)
}

// DeleteAppointment removes an appointment and its plan
func (s *Service) DeleteAppointment(id int64) error {
	if err := s.store.DeleteAppointment(id); err != nil {
		return err
	}
	s.log.Infof("Appointment %d deleted", id)
	return nil
}

// PayInstallment settles a pending installment now
func (s *Service) PayInstallment(id int64) (*models.Installment, error) {
	installment, err := s.store.MarkInstallmentPaid(id, s.now())
	if err != nil {
		return nil, err
	}
	s.log.Infof("Installment %d paid (%s of appointment %d)",
		installment.ID, installment.Amount, installment.AppointmentID)
	return installment, nil
}

// UpcomingInstallments lists pending installments due between now and
// now+days, including any already overdue
func (s *Service) UpcomingInstallments(days int) ([]models.DueInstallment, error) {
	if days < 1 {
		return nil, fmt.Errorf("%w: days must be at least 1", ErrValidation)
	}
	now := s.now()
	// Reach back so overdue rows stay visible
	from := now.AddDate(0, -1, 0)
	return s.store.ListInstallmentsDueBetween(from, now.AddDate(0, 0, days))
}
