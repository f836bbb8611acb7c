// Package schedule computes installment plans for appointments. It is a pure
// package: no I/O, no clock reads, deterministic for a given request.
package schedule

import (
	"errors"
	"fmt"
	"time"

	"github.com/belasaude/clinic-service/internal/models"
	"github.com/shopspring/decimal"
)

// ErrInvalidInput is wrapped by every validation failure returned from Build
var ErrInvalidInput = errors.New("invalid schedule input")

// Request carries everything needed to compute a plan. It is treated as
// immutable; Build never modifies it.
type Request struct {
	ProcedureDate time.Time
	TotalAmount   decimal.Decimal
	Installments  int
	Method        models.PaymentMethod
}

// Installment is one computed entry of a plan. Number is 1-based.
type Installment struct {
	Number  int
	DueDate time.Time
	Amount  decimal.Decimal
	Status  models.InstallmentStatus
}

// Plan is the ordered set of installments for one appointment
type Plan []Installment

// Total sums the installment amounts. For credit card plans with inexact
// division this can differ from the requested total by up to n-1 cents;
// see the note on Build.
func (p Plan) Total() decimal.Decimal {
	total := decimal.Zero
	for _, in := range p {
		total = total.Add(in.Amount)
	}
	return total
}

// Normalize pins a calendar date to noon UTC. Installment dates carry no
// time-of-day meaning, and anchoring them mid-day keeps the calendar day
// stable when the value is later serialized as an absolute instant.
func Normalize(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, time.UTC)
}

// NextBusinessDay advances a date past Saturday and Sunday to the first
// weekday at or after it. Weekday inputs are returned unchanged.
func NextBusinessDay(t time.Time) time.Time {
	for t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

// Build computes the installment plan for a request.
//
// Credit card plans have one installment per requested count. Each due date
// is 30 days after the previous adjusted due date, shifted forward off
// weekends, so weekend shifts compound across the plan. The per-installment
// amount is the plain two-decimal division of the total; when the division
// is inexact the plan total drifts from the requested total by up to
// count-1 cents. That drift is the billing contract of record here, not a
// defect to be redistributed away.
//
// Pix and cash settle immediately: a single installment due on the procedure
// date itself, already marked paid. The requested installment count is
// ignored. The single due date is not weekend-shifted; same-day settlement
// happens whenever the procedure does.
func Build(req Request) (Plan, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	procedureDate := Normalize(req.ProcedureDate)

	if req.Method.Immediate() {
		return Plan{{
			Number:  1,
			DueDate: procedureDate,
			Amount:  req.TotalAmount.Round(2),
			Status:  models.StatusPaid,
		}}, nil
	}

	count := req.Installments
	perInstallment := req.TotalAmount.Div(decimal.NewFromInt(int64(count))).Round(2)

	plan := make(Plan, 0, count)
	cursor := procedureDate
	for i := 1; i <= count; i++ {
		cursor = NextBusinessDay(cursor.AddDate(0, 0, 30))
		plan = append(plan, Installment{
			Number:  i,
			DueDate: cursor,
			Amount:  perInstallment,
			Status:  models.StatusPending,
		})
	}
	return plan, nil
}

func validate(req Request) error {
	if req.ProcedureDate.IsZero() {
		return fmt.Errorf("%w: procedure date is not set", ErrInvalidInput)
	}
	if req.TotalAmount.IsNegative() {
		return fmt.Errorf("%w: total amount %s is negative", ErrInvalidInput, req.TotalAmount)
	}
	if req.Installments < 1 {
		return fmt.Errorf("%w: installment count %d must be at least 1", ErrInvalidInput, req.Installments)
	}
	if !req.Method.Valid() {
		return fmt.Errorf("%w: unknown payment method %q", ErrInvalidInput, req.Method)
	}
	return nil
}
