// Package export renders fleet compliance reports as XLSX workbooks and PDF
// documents.
package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/fueleu/compliance"
	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
)

// Sheet names of the XLSX workbook.
const (
	SummarySheet      = "fleet"
	TransactionsSheet = "transactions"
)

// pdfUnit avoids the subscript two, which PDF core fonts cannot encode.
const pdfUnit = "gCO2eq"

func period(r *compliance.FleetReport) string {
	if r.Year == 0 {
		return "current"
	}
	return fmt.Sprint(r.Year)
}

// FleetXLSX renders the fleet report and the given transactions as a workbook
// with a summary sheet and a transactions sheet. Values are numeric cells in
// gCO₂eq.
func FleetXLSX(r *compliance.FleetReport, txs []compliance.Transaction) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(TransactionsSheet); err != nil {
		return nil, err
	}

	_ = f.SetCellValue(SummarySheet, "A1", "Fleet Compliance Report")
	_ = f.SetCellValue(SummarySheet, "A2", "Period")
	_ = f.SetCellValue(SummarySheet, "B2", period(r))

	_ = f.SetCellValue(SummarySheet, "A4", "Ship")
	_ = f.SetCellValue(SummarySheet, "B4", "Year")
	_ = f.SetCellValue(SummarySheet, "C4", "CB ("+compliance.Unit+")")
	_ = f.SetCellValue(SummarySheet, "D4", "Status")
	_ = f.SetCellValue(SummarySheet, "E4", "Banked ("+compliance.Unit+")")
	row := 5
	for _, fr := range r.Rows {
		_ = f.SetCellValue(SummarySheet, fmt.Sprintf("A%d", row), fr.Ship)
		_ = f.SetCellValue(SummarySheet, fmt.Sprintf("B%d", row), fr.Year)
		_ = f.SetCellValue(SummarySheet, fmt.Sprintf("C%d", row), fr.Value.Float())
		_ = f.SetCellValue(SummarySheet, fmt.Sprintf("D%d", row), fr.Status.String())
		_ = f.SetCellValue(SummarySheet, fmt.Sprintf("E%d", row), fr.Banked.Float())
		row++
	}
	row++
	for _, total := range []struct {
		label string
		value compliance.CB
	}{
		{"Total surplus", r.Surplus},
		{"Total deficit", r.Deficit},
		{"Net", r.Net},
		{"Banked", r.Banked},
	} {
		_ = f.SetCellValue(SummarySheet, fmt.Sprintf("A%d", row), total.label)
		_ = f.SetCellValue(SummarySheet, fmt.Sprintf("C%d", row), total.value.Float())
		row++
	}

	for i, h := range []string{"Seq", "Time", "Ship", "Year", "Kind", "Amount", "Before", "After", "Pool", "ID"} {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		_ = f.SetCellValue(TransactionsSheet, cell, h)
	}
	for i, tx := range txs {
		row := i + 2
		_ = f.SetCellValue(TransactionsSheet, fmt.Sprintf("A%d", row), tx.Seq)
		_ = f.SetCellValue(TransactionsSheet, fmt.Sprintf("B%d", row), tx.Time.UTC().Format(time.RFC3339))
		_ = f.SetCellValue(TransactionsSheet, fmt.Sprintf("C%d", row), tx.Ship)
		_ = f.SetCellValue(TransactionsSheet, fmt.Sprintf("D%d", row), tx.Year)
		_ = f.SetCellValue(TransactionsSheet, fmt.Sprintf("E%d", row), string(tx.Kind))
		_ = f.SetCellValue(TransactionsSheet, fmt.Sprintf("F%d", row), tx.Amount.Float())
		_ = f.SetCellValue(TransactionsSheet, fmt.Sprintf("G%d", row), tx.Before.Float())
		_ = f.SetCellValue(TransactionsSheet, fmt.Sprintf("H%d", row), tx.After.Float())
		_ = f.SetCellValue(TransactionsSheet, fmt.Sprintf("I%d", row), tx.Pool)
		_ = f.SetCellValue(TransactionsSheet, fmt.Sprintf("J%d", row), tx.ID)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FleetPDF renders the fleet report and the given transactions as an A4 PDF.
func FleetPDF(r *compliance.FleetReport, txs []compliance.Transaction, generated time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Fleet Compliance Report")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Period: %s", period(r)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", generated.UTC().Format(time.RFC3339)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Ships: %d surplus, %d deficit, %d compliant",
		r.Count(compliance.Surplus), r.Count(compliance.Deficit), r.Count(compliance.Compliant)))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(40, 6, "Ship", "1", 0, "C", false, 0, "")
	pdf.CellFormat(20, 6, "Year", "1", 0, "C", false, 0, "")
	pdf.CellFormat(50, 6, "CB ("+pdfUnit+")", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 6, "Status", "1", 0, "C", false, 0, "")
	pdf.CellFormat(50, 6, "Banked ("+pdfUnit+")", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, fr := range r.Rows {
		pdf.CellFormat(40, 6, fr.Ship, "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 6, fmt.Sprint(fr.Year), "1", 0, "C", false, 0, "")
		pdf.CellFormat(50, 6, fr.Value.Number(), "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 6, fr.Status.String(), "1", 0, "C", false, 0, "")
		pdf.CellFormat(50, 6, fr.Banked.Number(), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(60, 6, "Net", "1", 0, "L", false, 0, "")
	pdf.CellFormat(50, 6, r.Net.Number(), "1", 0, "R", false, 0, "")
	pdf.CellFormat(25, 6, "", "1", 0, "C", false, 0, "")
	pdf.CellFormat(50, 6, r.Banked.Number(), "1", 0, "R", false, 0, "")
	pdf.Ln(10)

	if len(txs) > 0 {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(12, 6, "Seq", "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, "Ship", "1", 0, "C", false, 0, "")
		pdf.CellFormat(15, 6, "Year", "1", 0, "C", false, 0, "")
		pdf.CellFormat(18, 6, "Kind", "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 6, "Amount", "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 6, "Before", "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 6, "After", "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 9)
		for _, tx := range txs {
			pdf.CellFormat(12, 6, fmt.Sprint(tx.Seq), "1", 0, "R", false, 0, "")
			pdf.CellFormat(30, 6, tx.Ship, "1", 0, "L", false, 0, "")
			pdf.CellFormat(15, 6, fmt.Sprint(tx.Year), "1", 0, "C", false, 0, "")
			pdf.CellFormat(18, 6, string(tx.Kind), "1", 0, "C", false, 0, "")
			pdf.CellFormat(35, 6, tx.Amount.Number(), "1", 0, "R", false, 0, "")
			pdf.CellFormat(35, 6, tx.Before.Number(), "1", 0, "R", false, 0, "")
			pdf.CellFormat(35, 6, tx.After.Number(), "1", 0, "R", false, 0, "")
			pdf.Ln(-1)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
