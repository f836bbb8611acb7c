package service

import (
	"fmt"
	"time"

	"github.com/belasaude/clinic-service/internal/models"
)

// AddCashFlowEntry records a manual revenue or expense
func (s *Service) AddCashFlowEntry(entry *models.CashFlowEntry) error {
	if entry.Description == "" {
		return fmt.Errorf("%w: description is required", ErrValidation)
	}
	if entry.Amount.IsNegative() {
		return fmt.Errorf("%w: amount must not be negative", ErrValidation)
	}
	if !entry.Kind.Valid() {
		return fmt.Errorf("%w: unknown cash flow kind %q", ErrValidation, entry.Kind)
	}
	if entry.EntryDate.IsZero() {
		entry.EntryDate = s.now()
	}
	if err := s.store.CreateCashFlowEntry(entry); err != nil {
		return err
	}
	s.log.Infof("Cash flow %s recorded: %s (%s)", entry.Kind, entry.Description, entry.Amount)
	return nil
}

// ListCashFlow retrieves the period's entries
func (s *Service) ListCashFlow(from, to time.Time) ([]models.CashFlowEntry, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: range end precedes start", ErrValidation)
	}
	return s.store.ListCashFlowEntries(from, to)
}

// CashFlowSummary aggregates revenue, expense and net balance for a period
func (s *Service) CashFlowSummary(from, to time.Time) (*models.CashFlowSummary, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: range end precedes start", ErrValidation)
	}
	return s.store.CashFlowSummary(from, to)
}
