package models

// DueInstallment is an installment joined with the contact details the
// reminder job needs to notify the patient.
type DueInstallment struct {
	Installment  Installment `json:"installment"`
	PatientName  string      `json:"patient_name"`
	PatientEmail string      `json:"patient_email"`
	Procedure    string      `json:"procedure"`
}
