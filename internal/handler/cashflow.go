package handler

import (
	"encoding/json"
	"net/http"

	"github.com/belasaude/clinic-service/internal/models"
	"github.com/belasaude/clinic-service/internal/reports"
	"github.com/shopspring/decimal"
)

type cashFlowRequest struct {
	Kind        string          `json:"kind"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	EntryDate   string          `json:"entry_date,omitempty"`
}

// CreateCashFlowEntry records a manual revenue or expense
func (h *Handler) CreateCashFlowEntry(w http.ResponseWriter, r *http.Request) {
	var req cashFlowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "invalid request body")
		return
	}

	entry := &models.CashFlowEntry{
		Kind:        models.CashFlowKind(req.Kind),
		Description: req.Description,
		Amount:      req.Amount,
	}
	if req.EntryDate != "" {
		date, err := parseDate(req.EntryDate)
		if err != nil {
			h.badRequest(w, "invalid entry date, expected YYYY-MM-DD")
			return
		}
		entry.EntryDate = date
	}

	if err := h.svc.AddCashFlowEntry(entry); err != nil {
		h.writeError(w, err)
		return
	}
	h.respond(w, http.StatusCreated, entry)
}

// ListCashFlow returns the period's entries
func (h *Handler) ListCashFlow(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseRange(r)
	if err != nil {
		h.badRequest(w, err.Error())
		return
	}
	entries, err := h.svc.ListCashFlow(from, to)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.respond(w, http.StatusOK, entries)
}

// CashFlowSummary returns revenue, expense and net balance for the period
func (h *Handler) CashFlowSummary(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseRange(r)
	if err != nil {
		h.badRequest(w, err.Error())
		return
	}
	summary, err := h.svc.CashFlowSummary(from, to)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.respond(w, http.StatusOK, summary)
}

// ExportCashFlow streams the period's cash flow as an XML document the
// clinic's accountant can import
func (h *Handler) ExportCashFlow(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseRange(r)
	if err != nil {
		h.badRequest(w, err.Error())
		return
	}
	entries, err := h.svc.ListCashFlow(from, to)
	if err != nil {
		h.writeError(w, err)
		return
	}
	summary, err := h.svc.CashFlowSummary(from, to)
	if err != nil {
		h.writeError(w, err)
		return
	}

	doc, err := reports.CashFlowXML(entries, summary)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="cash-flow.xml"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc); err != nil {
		h.log.Errorf("Failed to write XML export: %v", err)
	}
}
