// Package reports renders accounting exports of the clinic's cash flow.
package reports

import (
	"fmt"

	"github.com/beevik/etree"
	"github.com/belasaude/clinic-service/internal/models"
	"github.com/belasaude/clinic-service/internal/money"
)

const dateLayout = "2006-01-02"

// CashFlowXML builds the XML export for a period: one element per entry plus
// the period totals. Amounts appear twice, as machine-readable dot-decimal
// values and as the locale display string.
func CashFlowXML(entries []models.CashFlowEntry, summary *models.CashFlowSummary) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("cashFlow")
	root.CreateAttr("from", summary.From.Format(dateLayout))
	root.CreateAttr("to", summary.To.Format(dateLayout))

	entriesEl := root.CreateElement("entries")
	for _, e := range entries {
		entryEl := entriesEl.CreateElement("entry")
		entryEl.CreateAttr("id", fmt.Sprintf("%d", e.ID))
		entryEl.CreateAttr("kind", string(e.Kind))
		entryEl.CreateElement("date").SetText(e.EntryDate.Format(dateLayout))
		entryEl.CreateElement("description").SetText(e.Description)
		amountEl := entryEl.CreateElement("amount")
		amountEl.SetText(e.Amount.StringFixed(2))
		amountEl.CreateAttr("display", money.Format(e.Amount))
	}

	totalsEl := root.CreateElement("totals")
	totalsEl.CreateElement("revenue").SetText(summary.Revenue.StringFixed(2))
	totalsEl.CreateElement("expense").SetText(summary.Expense.StringFixed(2))
	totalsEl.CreateElement("netBalance").SetText(summary.NetBalance.StringFixed(2))

	doc.Indent(2)
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize cash flow export: %w", err)
	}
	return out, nil
}
