package gridcalc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFnSumOverRange(t *testing.T) {
	// SUM over a plain numeric range.
	wb := NewWorkbook()
	setInput(t, wb, "A1", "1")
	setInput(t, wb, "A2", "2")
	setInput(t, wb, "A3", "3")
	setInput(t, wb, "B1", "=SUM(A1:A3)")
	assert.Equal(t, Num(6), evalCell(t, wb, "B1"))
}

func TestFnSumSkipsTextCoercesBool(t *testing.T) {
	wb := NewWorkbook()
	setInput(t, wb, "A1", "1")
	setInput(t, wb, "A2", "hello")
	setInput(t, wb, "A3", "TRUE")
	setInput(t, wb, "B1", "=SUM(A1:A3)")
	assert.Equal(t, Num(2), evalCell(t, wb, "B1"))
}

func TestFnSumPropagatesError(t *testing.T) {
	result := evalFormula(t, "SUM(1,1/0)")
	assert.True(t, result.IsError())
	assert.Equal(t, ErrDiv0, result.ErrCode)
}

func TestFnProduct(t *testing.T) {
	assert.Equal(t, Num(24), evalFormula(t, "PRODUCT(2,3,4)"))
	assert.Equal(t, Num(0), evalFormula(t, "PRODUCT()"))
}

func TestFnAbsRoundModPower(t *testing.T) {
	assert.Equal(t, Num(5), evalFormula(t, "ABS(-5)"))
	assert.Equal(t, Num(1.23), evalFormula(t, "ROUND(1.2345,2)"))
	assert.Equal(t, Num(1), evalFormula(t, "MOD(7,2)"))
	assert.Equal(t, Num(-1), evalFormula(t, "MOD(-7,2)*-1")) // sign follows divisor
	assert.Equal(t, Num(8), evalFormula(t, "POWER(2,3)"))
}

func TestFnModDivisorSign(t *testing.T) {
	// Excel's MOD result takes the sign of the divisor.
	assert.Equal(t, Num(1), evalFormula(t, "MOD(-7,2)"))
	assert.Equal(t, Num(-1), evalFormula(t, "MOD(7,-2)"))
}

func TestFnModByZeroIsDiv0(t *testing.T) {
	result := evalFormula(t, "MOD(1,0)")
	assert.True(t, result.IsError())
	assert.Equal(t, ErrDiv0, result.ErrCode)
}

func TestFnSqrtNegativeIsNumError(t *testing.T) {
	result := evalFormula(t, "SQRT(-1)")
	assert.True(t, result.IsError())
	assert.Equal(t, ErrNum, result.ErrCode)
}

func TestFnLnLogLog10(t *testing.T) {
	assert.InDelta(t, 0.0, evalFormula(t, "LN(1)").Number, 1e-9)
	assert.Equal(t, Num(2), evalFormula(t, "LOG(100,10)"))
	assert.Equal(t, Num(2), evalFormula(t, "LOG10(100)"))
}

func TestFnLogInvalidBaseIsNumError(t *testing.T) {
	result := evalFormula(t, "LOG(100,1)")
	assert.True(t, result.IsError())
	assert.Equal(t, ErrNum, result.ErrCode)
}

func TestFnTrigUnary(t *testing.T) {
	assert.InDelta(t, 0.0, evalFormula(t, "SIN(0)").Number, 1e-9)
	assert.InDelta(t, 1.0, evalFormula(t, "COS(0)").Number, 1e-9)
}

func TestFnSumIfSumIfs(t *testing.T) {
	wb := NewWorkbook()
	setInput(t, wb, "A1", "apple")
	setInput(t, wb, "B1", "10")
	setInput(t, wb, "A2", "banana")
	setInput(t, wb, "B2", "20")
	setInput(t, wb, "A3", "apple")
	setInput(t, wb, "B3", "5")
	setInput(t, wb, "C1", `=SUMIF(A1:A3,"apple",B1:B3)`)
	assert.Equal(t, Num(15), evalCell(t, wb, "C1"))

	setInput(t, wb, "C2", `=SUMIFS(B1:B3,A1:A3,"apple")`)
	assert.Equal(t, Num(15), evalCell(t, wb, "C2"))
}
