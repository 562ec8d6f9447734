package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const receiptDoc = `
items:
  - ref: R1
    trackingMode: count
    unitRef: pcs
    ordered: 10
    count: 6
    unitCost: 100
  - ref: R2
    trackingMode: WEIGHT
    unitRef: gm
    ordered: 5
    weight: ""
    unitCost: 50
  - ref: ""
    trackingMode: COUNT
    count: 99
prior:
  R1: 2
`

func writeDoc(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCommand(strings.NewReader(stdin), &stdout, &stderr)
	cmd.SetArgs(append([]string{}, args...))
	err := cmd.Execute()
	return stdout.String(), err
}

func TestReconcileTable(t *testing.T) {
	out, err := execute(t, "", writeDoc(t, "receipt.yaml", receiptDoc))
	require.NoError(t, err)

	assert.Contains(t, out, "REF")
	assert.Contains(t, out, "MISSING_AMOUNT")
	assert.Contains(t, out, "Ordered 13  Fulfilled 6  Pending 7  Completion 46.15%")
	assert.Contains(t, out, "Grand total 600.00")
	assert.Contains(t, out, "Blocking errors present")
	assert.NotContains(t, out, "99")
}

func TestReconcileJSONFromStdin(t *testing.T) {
	doc := `{"items":[{"ref":"R1","trackingMode":"COUNT","unitRef":"pcs","ordered":"4","count":"5","unitCost":"10"}]}`

	out, err := execute(t, doc, "--json", "-")
	require.NoError(t, err)

	var result struct {
		Lines []struct {
			Ref         string      `json:"ref"`
			Outstanding json.Number `json:"outstanding"`
			LineTotal   json.Number `json:"lineTotal"`
			Errors      []struct {
				Code     string `json:"code"`
				Blocking bool   `json:"blocking"`
			} `json:"errors"`
		} `json:"lines"`
		Summary struct {
			CompletionPct json.Number `json:"completionPct"`
		} `json:"summary"`
		GrandTotal json.Number `json:"grandTotal"`
		Blocking   bool        `json:"blocking"`
	}
	dec := json.NewDecoder(strings.NewReader(out))
	dec.UseNumber()
	require.NoError(t, dec.Decode(&result))

	require.Len(t, result.Lines, 1)
	assert.Equal(t, "-1", result.Lines[0].Outstanding.String())
	assert.Equal(t, "50", result.Lines[0].LineTotal.String())
	require.Len(t, result.Lines[0].Errors, 1)
	assert.Equal(t, "EXCEEDS_ORDERED", result.Lines[0].Errors[0].Code)
	assert.False(t, result.Lines[0].Errors[0].Blocking)
	assert.Equal(t, "125", result.Summary.CompletionPct.String())
	assert.Equal(t, "50", result.GrandTotal.String())
	assert.NotContains(t, out, `"50"`, "amounts are numbers, not strings")
	assert.False(t, result.Blocking)
}

func TestReconcileStrict(t *testing.T) {
	path := writeDoc(t, "receipt.yaml", receiptDoc)

	_, err := execute(t, "", "--strict", path)
	assert.ErrorIs(t, err, ErrBlocking)

	clean := writeDoc(t, "clean.yaml", `
items:
  - {ref: R1, trackingMode: COUNT, unitRef: pcs, ordered: 2, count: 2, unitCost: 10}
`)
	_, err = execute(t, "", "--strict", clean)
	assert.NoError(t, err)
}

func TestReconcileWorkbook(t *testing.T) {
	xlsxPath := filepath.Join(t.TempDir(), "report.xlsx")

	_, err := execute(t, "", "--xlsx", xlsxPath, writeDoc(t, "receipt.yaml", receiptDoc))
	require.NoError(t, err)

	f, err := excelize.OpenFile(xlsxPath)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{sheetLines, sheetSummary}, f.GetSheetList())

	rows, err := f.GetRows(sheetLines)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Ref", rows[0][0])
	assert.Equal(t, "R1", rows[1][0])
	assert.Equal(t, "8", rows[1][2])
	assert.Equal(t, "600", rows[1][5])
	assert.Equal(t, "MISSING_AMOUNT", rows[2][6])

	total, err := f.GetCellValue(sheetSummary, "B5")
	require.NoError(t, err)
	assert.Equal(t, "600", total)
}

func TestReconcileErrors(t *testing.T) {
	_, err := execute(t, "", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = execute(t, "", writeDoc(t, "bad.yaml", "items: [unterminated"))
	assert.Error(t, err)

	_, err = execute(t, "")
	assert.Error(t, err)
}
