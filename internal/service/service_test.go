package service

import (
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/belasaude/clinic-service/internal/config"
	"github.com/belasaude/clinic-service/internal/models"
	"github.com/belasaude/clinic-service/internal/repository"
	"github.com/belasaude/clinic-service/internal/schedule"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory Store for service tests
type fakeStore struct {
	users        map[string]*models.User
	patients     map[int64]*models.Patient
	appointments map[int64]*models.Appointment
	installments map[int64][]models.Installment
	cashFlow     []models.CashFlowEntry
	nextID       int64
	failInserts  bool
	reissued     bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:        map[string]*models.User{},
		patients:     map[int64]*models.Patient{},
		appointments: map[int64]*models.Appointment{},
		installments: map[int64][]models.Installment{},
	}
}

func (f *fakeStore) id() int64 { f.nextID++; return f.nextID }

func (f *fakeStore) CreateUser(u *models.User) error {
	if _, ok := f.users[u.Email]; ok {
		return fmt.Errorf("user %s: %w", u.Email, repository.ErrDuplicate)
	}
	u.ID = f.id()
	f.users[u.Email] = u
	return nil
}

func (f *fakeStore) FindUserByEmail(email string) (*models.User, error) {
	u, ok := f.users[email]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", email, repository.ErrNotFound)
	}
	return u, nil
}

func (f *fakeStore) CreatePatient(p *models.Patient) error {
	p.ID = f.id()
	f.patients[p.ID] = p
	return nil
}

func (f *fakeStore) FindPatientByID(id int64) (*models.Patient, error) {
	p, ok := f.patients[id]
	if !ok {
		return nil, fmt.Errorf("patient %d: %w", id, repository.ErrNotFound)
	}
	return p, nil
}

func (f *fakeStore) ListPatients() ([]models.Patient, error) {
	out := []models.Patient{}
	for _, p := range f.patients {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeStore) UpdatePatient(p *models.Patient) error {
	if _, ok := f.patients[p.ID]; !ok {
		return fmt.Errorf("patient %d: %w", p.ID, repository.ErrNotFound)
	}
	f.patients[p.ID] = p
	return nil
}

func (f *fakeStore) DeletePatient(id int64) error {
	if _, ok := f.patients[id]; !ok {
		return fmt.Errorf("patient %d: %w", id, repository.ErrNotFound)
	}
	delete(f.patients, id)
	return nil
}

func (f *fakeStore) CreateAppointmentWithPlan(a *models.Appointment, plan []models.Installment) error {
	if f.failInserts {
		return fmt.Errorf("failed to insert installment 2: connection reset")
	}
	a.ID = f.id()
	for i := range plan {
		plan[i].ID = f.id()
		plan[i].AppointmentID = a.ID
	}
	f.appointments[a.ID] = a
	f.installments[a.ID] = plan
	return nil
}

func (f *fakeStore) ReissuePlan(a *models.Appointment, plan []models.Installment) error {
	if _, ok := f.appointments[a.ID]; !ok {
		return fmt.Errorf("appointment %d: %w", a.ID, repository.ErrNotFound)
	}
	for i := range plan {
		plan[i].ID = f.id()
		plan[i].AppointmentID = a.ID
	}
	f.appointments[a.ID] = a
	f.installments[a.ID] = plan
	f.reissued = true
	return nil
}

func (f *fakeStore) FindAppointmentByID(id int64) (*models.Appointment, error) {
	a, ok := f.appointments[id]
	if !ok {
		return nil, fmt.Errorf("appointment %d: %w", id, repository.ErrNotFound)
	}
	return a, nil
}

func (f *fakeStore) ListAppointments(from, to time.Time) ([]models.Appointment, error) {
	out := []models.Appointment{}
	for _, a := range f.appointments {
		if !a.ProcedureDate.Before(from) && !a.ProcedureDate.After(to) {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeStore) DeleteAppointment(id int64) error {
	if _, ok := f.appointments[id]; !ok {
		return fmt.Errorf("appointment %d: %w", id, repository.ErrNotFound)
	}
	delete(f.appointments, id)
	delete(f.installments, id)
	return nil
}

func (f *fakeStore) PatientAppointments(patientID int64) ([]models.Appointment, error) {
	out := []models.Appointment{}
	for _, a := range f.appointments {
		if a.PatientID == patientID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeStore) ListInstallmentsByAppointment(appointmentID int64) ([]models.Installment, error) {
	return f.installments[appointmentID], nil
}

func (f *fakeStore) MarkInstallmentPaid(id int64, paidAt time.Time) (*models.Installment, error) {
	for aid, plan := range f.installments {
		for i := range plan {
			if plan[i].ID == id && plan[i].Status == models.StatusPending {
				plan[i].Status = models.StatusPaid
				plan[i].PaidAt = &paidAt
				f.installments[aid] = plan
				return &plan[i], nil
			}
		}
	}
	return nil, fmt.Errorf("pending installment %d: %w", id, repository.ErrNotFound)
}

func (f *fakeStore) ListInstallmentsDueBetween(from, to time.Time) ([]models.DueInstallment, error) {
	out := []models.DueInstallment{}
	for _, plan := range f.installments {
		for _, in := range plan {
			if in.Status == models.StatusPending && !in.DueDate.Before(from) && !in.DueDate.After(to) {
				out = append(out, models.DueInstallment{Installment: in})
			}
		}
	}
	return out, nil
}

func (f *fakeStore) CreateCashFlowEntry(e *models.CashFlowEntry) error {
	e.ID = f.id()
	f.cashFlow = append(f.cashFlow, *e)
	return nil
}

func (f *fakeStore) ListCashFlowEntries(from, to time.Time) ([]models.CashFlowEntry, error) {
	return f.cashFlow, nil
}

func (f *fakeStore) CashFlowSummary(from, to time.Time) (*models.CashFlowSummary, error) {
	summary := &models.CashFlowSummary{From: from, To: to}
	for _, e := range f.cashFlow {
		switch e.Kind {
		case models.KindRevenue:
			summary.Revenue = summary.Revenue.Add(e.Amount)
		case models.KindExpense:
			summary.Expense = summary.Expense.Add(e.Amount)
		}
	}
	summary.NetBalance = summary.Revenue.Sub(summary.Expense)
	return summary, nil
}

func newTestService(t *testing.T, store Store) *Service {
	log := logrus.New()
	log.SetOutput(io.Discard)
	svc := NewService(store, log, &config.Config{JWTSecret: "test-secret"})
	svc.now = func() time.Time {
		return time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)
	}
	return svc
}

func seedPatient(t *testing.T, store *fakeStore) *models.Patient {
	p := &models.Patient{Name: "Maria Souza", Email: "maria@example.com"}
	require.NoError(t, store.CreatePatient(p))
	return p
}

func cardInput(patientID int64) AppointmentInput {
	return AppointmentInput{
		PatientID:     patientID,
		Procedure:     "Clareamento",
		ProcedureDate: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		TotalAmount:   decimal.RequireFromString("300.00"),
		Installments:  3,
		PaymentMethod: models.MethodCreditCard,
	}
}

func TestCreateAppointment_CreditCard(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store)
	patient := seedPatient(t, store)

	result, err := svc.CreateAppointment(cardInput(patient.ID))
	require.NoError(t, err)
	require.Len(t, result.Installments, 3)

	assert.Equal(t, 3, result.Appointment.Installments)
	for i, in := range result.Installments {
		assert.Equal(t, i+1, in.Number)
		assert.Equal(t, 3, in.TotalInstallments)
		assert.Equal(t, models.StatusPending, in.Status)
		assert.Equal(t, models.MethodCreditCard, in.PaymentMethod)
		assert.Nil(t, in.PaidAt)
		assert.True(t, in.Amount.Equal(decimal.RequireFromString("100.00")))
	}
}

func TestCreateAppointment_PixForcesSinglePaidInstallment(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store)
	patient := seedPatient(t, store)

	input := cardInput(patient.ID)
	input.PaymentMethod = models.MethodPix
	input.Installments = 5 // ignored for immediate settlement
	input.TotalAmount = decimal.RequireFromString("250.00")

	result, err := svc.CreateAppointment(input)
	require.NoError(t, err)
	require.Len(t, result.Installments, 1)

	in := result.Installments[0]
	assert.Equal(t, 1, result.Appointment.Installments)
	assert.Equal(t, models.StatusPaid, in.Status)
	require.NotNil(t, in.PaidAt)
	assert.Equal(t, in.DueDate, *in.PaidAt)
	assert.True(t, in.Amount.Equal(decimal.RequireFromString("250.00")))
}

func TestCreateAppointment_UnknownPatient(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store)

	_, err := svc.CreateAppointment(cardInput(99))
	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCreateAppointment_InvalidCount(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store)
	patient := seedPatient(t, store)

	input := cardInput(patient.ID)
	input.Installments = 0

	_, err := svc.CreateAppointment(input)
	require.Error(t, err)
	assert.ErrorIs(t, err, schedule.ErrInvalidInput)
}

func TestCreateAppointment_PersistenceFailureDiscardsPlan(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store)
	patient := seedPatient(t, store)
	store.failInserts = true

	_, err := svc.CreateAppointment(cardInput(patient.ID))
	require.Error(t, err)
	assert.Empty(t, store.appointments)
	assert.Empty(t, store.installments)
}

func TestUpdateAppointment_ReissuesPlan(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store)
	patient := seedPatient(t, store)

	created, err := svc.CreateAppointment(cardInput(patient.ID))
	require.NoError(t, err)

	input := cardInput(patient.ID)
	input.Installments = 2
	input.TotalAmount = decimal.RequireFromString("200.00")

	updated, err := svc.UpdateAppointment(created.Appointment.ID, input)
	require.NoError(t, err)

	assert.True(t, store.reissued)
	require.Len(t, updated.Installments, 2)
	assert.Equal(t, created.Appointment.ID, updated.Appointment.ID)

	stored, err := store.ListInstallmentsByAppointment(created.Appointment.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestPayInstallment(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store)
	patient := seedPatient(t, store)

	created, err := svc.CreateAppointment(cardInput(patient.ID))
	require.NoError(t, err)

	paid, err := svc.PayInstallment(created.Installments[0].ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, paid.Status)
	require.NotNil(t, paid.PaidAt)
	assert.Equal(t, svc.now(), *paid.PaidAt)

	// Paying the same installment twice fails
	_, err = svc.PayInstallment(created.Installments[0].ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestPatientHistory(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store)
	patient := seedPatient(t, store)

	_, err := svc.CreateAppointment(cardInput(patient.ID))
	require.NoError(t, err)

	input := cardInput(patient.ID)
	input.PaymentMethod = models.MethodCash
	input.Installments = 1
	_, err = svc.CreateAppointment(input)
	require.NoError(t, err)

	history, err := svc.PatientHistory(patient.ID)
	require.NoError(t, err)
	assert.Equal(t, patient.ID, history.Patient.ID)
	require.Len(t, history.Appointments, 2)
	for _, a := range history.Appointments {
		assert.NotEmpty(t, a.Installments)
	}
}

func TestRegisterAndLogin(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store)

	_, err := svc.Register("Ana", "ana@clinic.local", "short")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)

	user, err := svc.Register("Ana", "ana@clinic.local", "correct-horse")
	require.NoError(t, err)
	assert.NotEmpty(t, user.PasswordHash)

	token, err := svc.Login("ana@clinic.local", "correct-horse")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	_, err = svc.Login("ana@clinic.local", "wrong")
	require.Error(t, err)
}

func TestAddCashFlowEntry_Validation(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store)

	err := svc.AddCashFlowEntry(&models.CashFlowEntry{
		Kind:        models.KindExpense,
		Description: "",
		Amount:      decimal.RequireFromString("10.00"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)

	err = svc.AddCashFlowEntry(&models.CashFlowEntry{
		Kind:        "loan",
		Description: "material",
		Amount:      decimal.RequireFromString("10.00"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)

	entry := &models.CashFlowEntry{
		Kind:        models.KindExpense,
		Description: "material",
		Amount:      decimal.RequireFromString("10.00"),
	}
	require.NoError(t, svc.AddCashFlowEntry(entry))
	assert.Equal(t, svc.now(), entry.EntryDate, "entry date defaults to now")
}
