package gridcalc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFnIsNumberIsText(t *testing.T) {
	assert.Equal(t, Boolean(true), evalFormula(t, `ISNUMBER(1)`))
	assert.Equal(t, Boolean(false), evalFormula(t, `ISNUMBER("1")`))
	assert.Equal(t, Boolean(true), evalFormula(t, `ISTEXT("hi")`))
	assert.Equal(t, Boolean(false), evalFormula(t, `ISTEXT(1)`))
}

func TestFnIsNonText(t *testing.T) {
	assert.Equal(t, Boolean(true), evalFormula(t, `ISNONTEXT(1)`))
	assert.Equal(t, Boolean(false), evalFormula(t, `ISNONTEXT("hi")`))
}

func TestFnIsLogical(t *testing.T) {
	assert.Equal(t, Boolean(true), evalFormula(t, `ISLOGICAL(TRUE)`))
	assert.Equal(t, Boolean(false), evalFormula(t, `ISLOGICAL(1)`))
}

func TestFnIsBlank(t *testing.T) {
	wb := NewWorkbook()
	setInput(t, wb, "B1", "=ISBLANK(A1)")
	assert.Equal(t, Boolean(true), evalCell(t, wb, "B1"))

	setInput(t, wb, "A1", "1")
	assert.Equal(t, Boolean(false), evalCell(t, wb, "B1"))
}

func TestFnIsErrorVsIsErr(t *testing.T) {
	assert.Equal(t, Boolean(true), evalFormula(t, `ISERROR(1/0)`))
	assert.Equal(t, Boolean(true), evalFormula(t, `ISERROR(NA())`))
	assert.Equal(t, Boolean(true), evalFormula(t, `ISERR(1/0)`))
	assert.Equal(t, Boolean(false), evalFormula(t, `ISERR(NA())`))
}

func TestFnIsNA(t *testing.T) {
	assert.Equal(t, Boolean(true), evalFormula(t, `ISNA(NA())`))
	assert.Equal(t, Boolean(false), evalFormula(t, `ISNA(1/0)`))
}

func TestFnNAProducesNAError(t *testing.T) {
	result := evalFormula(t, `NA()`)
	assert.True(t, result.IsError())
	assert.Equal(t, ErrNA, result.ErrCode)
}

func TestFnNATakesNoArguments(t *testing.T) {
	result := evalFormula(t, `NA(1)`)
	assert.True(t, result.IsError())
	assert.Equal(t, ErrError, result.ErrCode)
}

func TestFnTypeCodes(t *testing.T) {
	assert.Equal(t, Num(1), evalFormula(t, `TYPE(1)`))
	assert.Equal(t, Num(2), evalFormula(t, `TYPE("a")`))
	assert.Equal(t, Num(4), evalFormula(t, `TYPE(TRUE)`))
	assert.Equal(t, Num(16), evalFormula(t, `TYPE(1/0)`))
}

func TestFnIsNumberWrongArgCount(t *testing.T) {
	result := evalFormula(t, `ISNUMBER(1,2)`)
	assert.True(t, result.IsError())
	assert.Equal(t, ErrError, result.ErrCode)
}
