package gridcalc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// setInput parses ref ("A1"-style) and stores text at that cell on
// sheet "Sheet1", using the same auto-classification path a user's
// keystrokes would take (spec.md §4.6).
func setInput(t *testing.T, wb *Workbook, ref, text string) {
	t.Helper()
	r, err := ParseA1Ref(ref)
	require.NoError(t, err)
	require.NoError(t, wb.SetUserInput("Sheet1", r.Row, r.Col, text, ModeA1))
}

// evalCell evaluates the cell at ref on "Sheet1" directly, independent
// of a whole-workbook recomputation pass.
func evalCell(t *testing.T, wb *Workbook, ref string) CalcResult {
	t.Helper()
	r, err := ParseA1Ref(ref)
	require.NoError(t, err)
	return NewEvaluator(wb).Evaluate("Sheet1", r.Row, r.Col)
}

// evalFormula is a shortcut for setInput("A1","="+formula) followed by
// evalCell("A1"), for tests that only care about one expression.
func evalFormula(t *testing.T, formula string) CalcResult {
	t.Helper()
	wb := NewWorkbook()
	setInput(t, wb, "A1", "="+formula)
	return evalCell(t, wb, "A1")
}
