package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/belasaude/clinic-service/internal/config"
	"github.com/belasaude/clinic-service/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// ErrValidation is wrapped by every request-shape failure the service
// rejects before touching storage
var ErrValidation = errors.New("validation failed")

// Store is the persistence surface the service depends on. The Postgres
// repository satisfies it; tests substitute a fake.
type Store interface {
	CreateUser(user *models.User) error
	FindUserByEmail(email string) (*models.User, error)

	CreatePatient(patient *models.Patient) error
	FindPatientByID(id int64) (*models.Patient, error)
	ListPatients() ([]models.Patient, error)
	UpdatePatient(patient *models.Patient) error
	DeletePatient(id int64) error

	CreateAppointmentWithPlan(appointment *models.Appointment, plan []models.Installment) error
	ReissuePlan(appointment *models.Appointment, plan []models.Installment) error
	FindAppointmentByID(id int64) (*models.Appointment, error)
	ListAppointments(from, to time.Time) ([]models.Appointment, error)
	DeleteAppointment(id int64) error
	PatientAppointments(patientID int64) ([]models.Appointment, error)

	ListInstallmentsByAppointment(appointmentID int64) ([]models.Installment, error)
	MarkInstallmentPaid(id int64, paidAt time.Time) (*models.Installment, error)
	ListInstallmentsDueBetween(from, to time.Time) ([]models.DueInstallment, error)

	CreateCashFlowEntry(entry *models.CashFlowEntry) error
	ListCashFlowEntries(from, to time.Time) ([]models.CashFlowEntry, error)
	CashFlowSummary(from, to time.Time) (*models.CashFlowSummary, error)
}

// Service handles business logic
type Service struct {
	store  Store
	log    *logrus.Logger
	config *config.Config
	now    func() time.Time
}

// NewService initializes a new service
func NewService(store Store, log *logrus.Logger, cfg *config.Config) *Service {
	return &Service{store: store, log: log, config: cfg, now: time.Now}
}

// Register creates a new staff user with hashed password
func (s *Service) Register(name, email, password string) (*models.User, error) {
	if name == "" || email == "" {
		return nil, fmt.Errorf("%w: name and email are required", ErrValidation)
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPassword),
	}

	if err := s.store.CreateUser(user); err != nil {
		return nil, err
	}

	s.log.Infof("User registered: %s", user.Email)
	return user, nil
}

// Login authenticates a user and returns a JWT token
func (s *Service) Login(email, password string) (string, error) {
	user, err := s.store.FindUserByEmail(email)
	if err != nil {
		return "", fmt.Errorf("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", fmt.Errorf("invalid credentials")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   fmt.Sprintf("%d", user.ID),
		ExpiresAt: jwt.NewNumericDate(s.now().Add(24 * time.Hour)),
	})
	tokenString, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.log.Infof("User logged in: %s", user.Email)
	return tokenString, nil
}

// CreatePatient creates a new patient record
func (s *Service) CreatePatient(patient *models.Patient) error {
	if patient.Name == "" {
		return fmt.Errorf("%w: patient name is required", ErrValidation)
	}
	if err := s.store.CreatePatient(patient); err != nil {
		return err
	}
	s.log.Infof("Patient created: %d (%s)", patient.ID, patient.Name)
	return nil
}

// GetPatient retrieves a patient by id
func (s *Service) GetPatient(id int64) (*models.Patient, error) {
	return s.store.FindPatientByID(id)
}

// ListPatients retrieves all patients
func (s *Service) ListPatients() ([]models.Patient, error) {
	return s.store.ListPatients()
}

// UpdatePatient updates a patient record
func (s *Service) UpdatePatient(patient *models.Patient) error {
	if patient.Name == "" {
		return fmt.Errorf("%w: patient name is required", ErrValidation)
	}
	if err := s.store.UpdatePatient(patient); err != nil {
		return err
	}
	s.log.Infof("Patient updated: %d", patient.ID)
	return nil
}

// DeletePatient removes a patient and their appointment history
func (s *Service) DeletePatient(id int64) error {
	if err := s.store.DeletePatient(id); err != nil {
		return err
	}
	s.log.Infof("Patient deleted: %d", id)
	return nil
}

// PatientHistory assembles the client history view: the patient's
// appointments, newest first, each with its installment plan
func (s *Service) PatientHistory(patientID int64) (*models.PatientHistory, error) {
	patient, err := s.store.FindPatientByID(patientID)
	if err != nil {
		return nil, err
	}

	appointments, err := s.store.PatientAppointments(patientID)
	if err != nil {
		return nil, err
	}

	history := &models.PatientHistory{
		Patient:      *patient,
		Appointments: make([]models.AppointmentWithPlan, 0, len(appointments)),
	}
	for _, a := range appointments {
		installments, err := s.store.ListInstallmentsByAppointment(a.ID)
		if err != nil {
			return nil, err
		}
		history.Appointments = append(history.Appointments, models.AppointmentWithPlan{
			Appointment:  a,
			Installments: installments,
		})
	}
	return history, nil
}
