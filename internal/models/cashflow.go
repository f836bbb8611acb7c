package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// CashFlowKind marks an entry as money in or money out
type CashFlowKind string

const (
	KindRevenue CashFlowKind = "revenue"
	KindExpense CashFlowKind = "expense"
)

// ParseCashFlowKind validates a raw string against the two entry kinds
func ParseCashFlowKind(s string) (CashFlowKind, error) {
	switch CashFlowKind(s) {
	case KindRevenue, KindExpense:
		return CashFlowKind(s), nil
	}
	return "", fmt.Errorf("unknown cash flow kind %q", s)
}

// Valid reports whether the kind is one of the enumerated values
func (k CashFlowKind) Valid() bool {
	switch k {
	case KindRevenue, KindExpense:
		return true
	}
	return false
}

// CashFlowEntry represents a manual revenue or expense record
type CashFlowEntry struct {
	ID          int64           `json:"id"`
	Kind        CashFlowKind    `json:"kind"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	EntryDate   time.Time       `json:"entry_date"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CashFlowSummary represents revenue and expense totals for a period
type CashFlowSummary struct {
	From       time.Time       `json:"from"`
	To         time.Time       `json:"to"`
	Revenue    decimal.Decimal `json:"revenue"`
	Expense    decimal.Decimal `json:"expense"`
	NetBalance decimal.Decimal `json:"net_balance"`
}
