package gridcalc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFnFvZeroRateIsLinear(t *testing.T) {
	assert.Equal(t, Num(2200), evalFormula(t, "FV(0,12,-100,-1000)"))
}

func TestFnPvZeroRateIsLinear(t *testing.T) {
	assert.Equal(t, Num(1200), evalFormula(t, "PV(0,12,-100,0)"))
}

func TestFnNperZeroRateIsLinear(t *testing.T) {
	assert.Equal(t, Num(12), evalFormula(t, "NPER(0,-100,1200,0)"))
}

func TestFnPmtCompounding(t *testing.T) {
	result := evalFormula(t, "PMT(0.005,60,10000)")
	assert.InDelta(t, -193.33, result.Number, 0.01)
}

func TestFnPmtDegenerateIsNumError(t *testing.T) {
	result := evalFormula(t, "PMT(0.1,0,1000)")
	assert.True(t, result.IsError())
	assert.Equal(t, ErrNum, result.ErrCode)
}

func TestFnRateLinearCase(t *testing.T) {
	// One period, no compounding subtleties: pv*(1+rate) = -pmt.
	result := evalFormula(t, "RATE(1,-110,100)")
	assert.InDelta(t, 0.1, result.Number, 1e-9)
}

func TestFnIpmtPpmtZeroRateSplitsEvenly(t *testing.T) {
	wb := NewWorkbook()
	setInput(t, wb, "A1", "=IPMT(0,1,12,1200)")
	assert.Equal(t, Num(0), evalCell(t, wb, "A1"))

	setInput(t, wb, "A2", "=PPMT(0,1,12,1200)")
	assert.Equal(t, Num(-100), evalCell(t, wb, "A2"))
}

func TestFnIpmtPeriodOutOfRangeIsNumError(t *testing.T) {
	result := evalFormula(t, "IPMT(0.01,13,12,1200)")
	assert.True(t, result.IsError())
	assert.Equal(t, ErrNum, result.ErrCode)
}

func TestFnNpvZeroRateSumsValues(t *testing.T) {
	assert.Equal(t, Num(300), evalFormula(t, "NPV(0,100,100,100)"))
}

func TestFnIrrRoundTripCase(t *testing.T) {
	wb := NewWorkbook()
	setInput(t, wb, "A1", "-100")
	setInput(t, wb, "A2", "110")
	setInput(t, wb, "B1", "=IRR(A1:A2)")
	result := evalCell(t, wb, "B1")
	assert.InDelta(t, 0.1, result.Number, 1e-6)
}

func TestFnIrrTooFewCashFlowsIsNumError(t *testing.T) {
	wb := NewWorkbook()
	setInput(t, wb, "A1", "-100")
	setInput(t, wb, "B1", "=IRR(A1:A1)")
	result := evalCell(t, wb, "B1")
	assert.True(t, result.IsError())
	assert.Equal(t, ErrNum, result.ErrCode)
}

func TestFnMirr(t *testing.T) {
	// -100 now and 121 two periods later at zero rates: sqrt(1.21) - 1,
	// which is 0.1 up to float64 rounding.
	wb := NewWorkbook()
	setInput(t, wb, "A1", "-100")
	setInput(t, wb, "A2", "0")
	setInput(t, wb, "A3", "121")
	setInput(t, wb, "B1", "=MIRR(A1:A3,0,0)")
	assert.InDelta(t, 0.1, evalCell(t, wb, "B1").Number, 1e-15)
}

func TestFnMirrRequiresMixedSignFlows(t *testing.T) {
	wb := NewWorkbook()
	setInput(t, wb, "A1", "100")
	setInput(t, wb, "A2", "200")
	setInput(t, wb, "B1", "=MIRR(A1:A2,0.1,0.1)")
	result := evalCell(t, wb, "B1")
	assert.True(t, result.IsError())
	assert.Equal(t, ErrDiv0, result.ErrCode)
}

func TestFnIspmt(t *testing.T) {
	assert.Equal(t, Num(-50), evalFormula(t, "ISPMT(0.1,5,10,1000)"))
}

func TestFnRri(t *testing.T) {
	assert.InDelta(t, 0.1, evalFormula(t, "RRI(2,100,121)").Number, 1e-15)
}

func TestFnRriZeroPvIsDiv0(t *testing.T) {
	result := evalFormula(t, "RRI(2,0,100)")
	assert.True(t, result.IsError())
	assert.Equal(t, ErrDiv0, result.ErrCode)
}
