package repository

import (
	"fmt"
	"time"

	"github.com/belasaude/clinic-service/internal/models"
	"github.com/shopspring/decimal"
)

// CreateCashFlowEntry creates a manual revenue or expense record
func (r *Repository) CreateCashFlowEntry(entry *models.CashFlowEntry) error {
	query := `
		INSERT INTO clinic.cash_flow_entries (kind, description, amount, entry_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(query, entry.Kind, entry.Description, entry.Amount, entry.EntryDate).
		Scan(&entry.ID, &entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create cash flow entry: %w", err)
	}
	return nil
}

// ListCashFlowEntries retrieves entries dated inside [from, to], oldest first
func (r *Repository) ListCashFlowEntries(from, to time.Time) ([]models.CashFlowEntry, error) {
	query := `
		SELECT id, kind, description, amount, entry_date, created_at, updated_at
		FROM clinic.cash_flow_entries
		WHERE entry_date BETWEEN $1 AND $2
		ORDER BY entry_date`
	rows, err := r.db.Query(query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list cash flow entries: %w", err)
	}
	defer rows.Close()

	entries := []models.CashFlowEntry{}
	for rows.Next() {
		var e models.CashFlowEntry
		if err := rows.Scan(&e.ID, &e.Kind, &e.Description, &e.Amount,
			&e.EntryDate, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan cash flow entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CashFlowSummary aggregates the period's totals. Revenue combines manual
// revenue entries with installments settled inside the period; expense is
// the manual expense entries.
func (r *Repository) CashFlowSummary(from, to time.Time) (*models.CashFlowSummary, error) {
	summary := &models.CashFlowSummary{From: from, To: to}

	var manualRevenue, manualExpense decimal.Decimal
	query := `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE kind = $1), 0),
			COALESCE(SUM(amount) FILTER (WHERE kind = $2), 0)
		FROM clinic.cash_flow_entries
		WHERE entry_date BETWEEN $3 AND $4`
	err := r.db.QueryRow(query, models.KindRevenue, models.KindExpense, from, to).
		Scan(&manualRevenue, &manualExpense)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate cash flow entries: %w", err)
	}

	var installmentRevenue decimal.Decimal
	query = `
		SELECT COALESCE(SUM(amount), 0)
		FROM clinic.installments
		WHERE status = $1 AND paid_at BETWEEN $2 AND $3`
	err = r.db.QueryRow(query, models.StatusPaid, from, to).Scan(&installmentRevenue)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate installment revenue: %w", err)
	}

	summary.Revenue = manualRevenue.Add(installmentRevenue)
	summary.Expense = manualExpense
	summary.NetBalance = summary.Revenue.Sub(summary.Expense)
	return summary, nil
}
