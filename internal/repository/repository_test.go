package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/belasaude/clinic-service/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepository(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db), mock
}

func testAppointment() *models.Appointment {
	return &models.Appointment{
		PatientID:     7,
		Procedure:     "Limpeza",
		ProcedureDate: time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC),
		TotalAmount:   decimal.RequireFromString("300.00"),
		Installments:  3,
		PaymentMethod: models.MethodCreditCard,
	}
}

func testPlan(n int) []models.Installment {
	plan := make([]models.Installment, 0, n)
	for i := 1; i <= n; i++ {
		plan = append(plan, models.Installment{
			Number:            i,
			TotalInstallments: n,
			DueDate:           time.Date(2024, time.April, i, 12, 0, 0, 0, time.UTC),
			Amount:            decimal.RequireFromString("100.00"),
			Status:            models.StatusPending,
			PaymentMethod:     models.MethodCreditCard,
		})
	}
	return plan
}

func TestCreateAppointmentWithPlan_CommitsAllRows(t *testing.T) {
	repo, mock := newMockRepository(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO clinic\.appointments`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(42, now, now))
	for i := 1; i <= 3; i++ {
		mock.ExpectQuery(`INSERT INTO clinic\.installments`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(100 + i))
	}
	mock.ExpectCommit()

	appointment := testAppointment()
	plan := testPlan(3)
	require.NoError(t, repo.CreateAppointmentWithPlan(appointment, plan))

	assert.EqualValues(t, 42, appointment.ID)
	for i, in := range plan {
		assert.EqualValues(t, 42, in.AppointmentID)
		assert.EqualValues(t, 101+i, in.ID)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAppointmentWithPlan_RollsBackOnFailure(t *testing.T) {
	repo, mock := newMockRepository(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO clinic\.appointments`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(42, now, now))
	mock.ExpectQuery(`INSERT INTO clinic\.installments`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(101))
	mock.ExpectQuery(`INSERT INTO clinic\.installments`).
		WillReturnError(fmt.Errorf("connection reset"))
	mock.ExpectRollback()

	err := repo.CreateAppointmentWithPlan(testAppointment(), testPlan(3))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "installment 2")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkInstallmentPaid_NotFound(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`UPDATE clinic\.installments`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.MarkInstallmentPaid(9, time.Now())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCashFlowSummary(t *testing.T) {
	repo, mock := newMockRepository(t)
	from := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, time.March, 31, 23, 59, 59, 0, time.UTC)

	mock.ExpectQuery(`FROM clinic\.cash_flow_entries`).
		WillReturnRows(sqlmock.NewRows([]string{"revenue", "expense"}).AddRow("150.00", "80.00"))
	mock.ExpectQuery(`FROM clinic\.installments`).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow("250.00"))

	summary, err := repo.CashFlowSummary(from, to)
	require.NoError(t, err)
	assert.True(t, summary.Revenue.Equal(decimal.RequireFromString("400.00")), "revenue %s", summary.Revenue)
	assert.True(t, summary.Expense.Equal(decimal.RequireFromString("80.00")))
	assert.True(t, summary.NetBalance.Equal(decimal.RequireFromString("320.00")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindUserByEmail_NotFound(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`FROM clinic\.users`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindUserByEmail("nobody@clinic.local")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
