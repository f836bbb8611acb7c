package models

// AppointmentWithPlan pairs an appointment with its installment rows
type AppointmentWithPlan struct {
	Appointment  Appointment   `json:"appointment"`
	Installments []Installment `json:"installments"`
}

// PatientHistory is the client history view: every appointment of a patient,
// newest first, each with its full installment plan.
type PatientHistory struct {
	Patient      Patient               `json:"patient"`
	Appointments []AppointmentWithPlan `json:"appointments"`
}
