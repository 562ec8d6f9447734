package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/xuri/excelize/v2"

	"github.com/deepakg932/jwellery-app-crm-erp--sub002/internal/api/dto"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/internal/domain/reconciliation"
)

const (
	sheetLines   = "Lines"
	sheetSummary = "Summary"
)

var lineHeader = []interface{}{"Ref", "Mode", "Baseline", "Active", "Outstanding", "Line Total", "Errors"}

func errorCodes(errs []reconciliation.ValidationError) string {
	codes := make([]string, 0, len(errs))
	for _, e := range errs {
		codes = append(codes, string(e.Code))
	}
	return strings.Join(codes, ",")
}

func writeTable(w io.Writer, result reconciliation.Result) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "REF\tMODE\tBASELINE\tACTIVE\tOUTSTANDING\tLINE TOTAL\tERRORS")
	for _, line := range result.Lines {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			line.Ref,
			line.TrackingMode,
			line.Baseline,
			line.Active,
			line.Outstanding,
			line.LineTotal.StringFixed(2),
			errorCodes(line.Errors),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	s := result.Summary
	fmt.Fprintf(w, "\nOrdered %s  Fulfilled %s  Pending %s  Completion %s%%\n",
		s.TotalOrdered, s.TotalFulfilled, s.Pending, s.CompletionPct.StringFixed(2))
	fmt.Fprintf(w, "Grand total %s\n", result.GrandTotal.StringFixed(2))
	if result.Blocking {
		fmt.Fprintln(w, "Blocking errors present")
	}
	return nil
}

// writeJSON emits the same document as the preview endpoint, amounts as JSON numbers
func writeJSON(w io.Writer, result reconciliation.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(dto.ToReconciliationResponse(result))
}

// writeWorkbook saves the per-line results and the totals as a two-sheet workbook
func writeWorkbook(path string, result reconciliation.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetLines); err != nil {
		return err
	}
	if err := f.SetSheetRow(sheetLines, "A1", &lineHeader); err != nil {
		return err
	}
	for i, line := range result.Lines {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			line.Ref,
			string(line.TrackingMode),
			line.Baseline.InexactFloat64(),
			line.Active.InexactFloat64(),
			line.Outstanding.InexactFloat64(),
			line.LineTotal.InexactFloat64(),
			errorCodes(line.Errors),
		}
		if err := f.SetSheetRow(sheetLines, cell, &row); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(sheetSummary); err != nil {
		return err
	}
	s := result.Summary
	summary := [][]interface{}{
		{"Total Ordered", s.TotalOrdered.InexactFloat64()},
		{"Total Fulfilled", s.TotalFulfilled.InexactFloat64()},
		{"Pending", s.Pending.InexactFloat64()},
		{"Completion %", s.CompletionPct.InexactFloat64()},
		{"Grand Total", result.GrandTotal.InexactFloat64()},
		{"Blocking", result.Blocking},
	}
	for i, row := range summary {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetSummary, cell, &row); err != nil {
			return err
		}
	}

	return f.SaveAs(path)
}
