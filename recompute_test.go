package gridcalc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateLeavesNoUnresolvedFormulaCell(t *testing.T) {
	wb := NewWorkbook()
	setInput(t, wb, "A1", "1")
	setInput(t, wb, "A2", "=A1+1")
	wb.Evaluate()
	c, ok := wb.GetCell("Sheet1", 2, 1)
	require.True(t, ok)
	require.NotNil(t, c.Cached)
	assert.Equal(t, Num(2), *c.Cached)
}

func TestEvaluateServesCacheWhenNotDirty(t *testing.T) {
	wb := NewWorkbook()
	setInput(t, wb, "A1", "1")
	setInput(t, wb, "A2", "=A1+1")
	wb.Evaluate()
	c, _ := wb.GetCell("Sheet1", 2, 1)
	first := c.Cached
	wb.Evaluate()
	c2, _ := wb.GetCell("Sheet1", 2, 1)
	assert.Equal(t, *first, *c2.Cached)
}

func TestEvaluateReflectsEditedInputOnNextPass(t *testing.T) {
	wb := NewWorkbook()
	setInput(t, wb, "A1", "1")
	setInput(t, wb, "A2", "=A1+1")
	wb.Evaluate()
	c, ok := wb.GetCell("Sheet1", 2, 1)
	require.True(t, ok)
	require.NotNil(t, c.Cached)
	assert.Equal(t, Num(2), *c.Cached)

	require.NoError(t, wb.SetCellNumber("Sheet1", 1, 1, 10))
	wb.Evaluate()
	c2, ok := wb.GetCell("Sheet1", 2, 1)
	require.True(t, ok)
	require.NotNil(t, c2.Cached)
	assert.Equal(t, Num(11), *c2.Cached)
}

func TestEvaluateWithErrorCheckNilWhenNoErrors(t *testing.T) {
	wb := NewWorkbook()
	setInput(t, wb, "A1", "1")
	setInput(t, wb, "A2", "=A1+1")
	assert.NoError(t, wb.EvaluateWithErrorCheck())
}

func TestEvaluateWithErrorCheckReportsCircularReference(t *testing.T) {
	wb := NewWorkbook()
	setInput(t, wb, "A1", "=A2")
	setInput(t, wb, "A2", "=A1")
	err := wb.EvaluateWithErrorCheck()
	assert.EqualError(t, err, `Sheet1!A1 ('=A2'): Circular reference detected`)
}

func TestEvaluateWithErrorCheckReportsInvalidFunction(t *testing.T) {
	wb := NewWorkbook()
	setInput(t, wb, "A1", "=BOGUSFUNC(1)")
	err := wb.EvaluateWithErrorCheck()
	assert.EqualError(t, err, `Sheet1!A1 ('=BOGUSFUNC(1)'): Invalid function: BOGUSFUNC`)
}

func TestEvaluateWithErrorCheckReportsArrayLiteralNotImplemented(t *testing.T) {
	wb := NewWorkbook()
	setInput(t, wb, "A1", "={1,2,3}")
	err := wb.EvaluateWithErrorCheck()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Arrays not implemented")
}

func TestEvaluateWithErrorCheckFirstErrorInRowColumnOrder(t *testing.T) {
	wb := NewWorkbook()
	setInput(t, wb, "B1", "=1/0")
	setInput(t, wb, "A2", "=1/0")
	err := wb.EvaluateWithErrorCheck()
	assert.EqualError(t, err, `Sheet1!B1 ('=1/0'): division by zero`)
}

func TestSumFormattingScenario(t *testing.T) {
	wb := NewWorkbook()
	setInput(t, wb, "A1", "1000000")
	setInput(t, wb, "A2", "234.5")
	setInput(t, wb, "B1", "=SUM(A1:A2)")
	wb.Evaluate()
	c, ok := wb.GetCell("Sheet1", 1, 2)
	require.True(t, ok)
	require.NotNil(t, c.Cached)
	assert.Equal(t, "1,000,234.50", FormatNumber(c.Cached.Number, "#,##0.00", wb.Locale))
}
