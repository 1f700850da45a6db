package gridcalc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func TestFnDateYearMonthDay(t *testing.T) {
	assert.Equal(t, Num(45366), evalFormula(t, "DATE(2024,3,15)"))
	assert.Equal(t, Num(2024), evalFormula(t, "YEAR(DATE(2024,3,15))"))
	assert.Equal(t, Num(3), evalFormula(t, "MONTH(DATE(2024,3,15))"))
	assert.Equal(t, Num(15), evalFormula(t, "DAY(DATE(2024,3,15))"))
}

func TestDateSerial1900LeapYearBugRoundTrips(t *testing.T) {
	// Serial 60 is the fictitious Feb 29, 1900 (spec.md §4.8, §9 Open
	// Question (b)); it must round-trip rather than normalize away.
	assert.Equal(t, Num(60), evalFormula(t, "DATE(1900,2,29)"))
	assert.Equal(t, Num(1900), evalFormula(t, "YEAR(60)"))
	assert.Equal(t, Num(2), evalFormula(t, "MONTH(60)"))
	assert.Equal(t, Num(29), evalFormula(t, "DAY(60)"))
}

func TestDateSerialShiftsAfterFictitiousLeapDay(t *testing.T) {
	// Mar 1, 1900 is serial 61, one more than a naive day count would give.
	assert.Equal(t, Num(61), evalFormula(t, "DATE(1900,3,1)"))
}

func TestFnTodayNowUseInjectedClock(t *testing.T) {
	wb := NewWorkbook(WithClock(fixedClock{t: time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)}))
	setInput(t, wb, "A1", "=TODAY()")
	assert.Equal(t, Num(45366), evalCell(t, wb, "A1"))

	setInput(t, wb, "A2", "=NOW()")
	assert.Equal(t, Num(45366.5), evalCell(t, wb, "A2"))
}

func TestFnTodayRejectedForNonVolatileWorkbookKind(t *testing.T) {
	wb := NewWorkbook(WithKind(KindPlanCalculation))
	setInput(t, wb, "A1", "=TODAY()")
	result := evalCell(t, wb, "A1")
	assert.True(t, result.IsError())
	assert.Equal(t, ErrError, result.ErrCode)
}

func TestFnEdate(t *testing.T) {
	assert.Equal(t, Num(45366), evalFormula(t, "EDATE(DATE(2024,1,15),2)"))
}

func TestFnEdateClampsToShortMonth(t *testing.T) {
	// Jan 31 + 1 month has no Feb 31: the day is clamped to the last day
	// of February (29 days in 2024) rather than overflowing into March.
	assert.Equal(t, Num(2), evalFormula(t, "MONTH(EDATE(DATE(2024,1,31),1))"))
	assert.Equal(t, Num(29), evalFormula(t, "DAY(EDATE(DATE(2024,1,31),1))"))
}

func TestFnEomonth(t *testing.T) {
	assert.Equal(t, Num(31), evalFormula(t, "DAY(EOMONTH(DATE(2024,3,15),0))"))
	assert.Equal(t, Num(30), evalFormula(t, "DAY(EOMONTH(DATE(2024,3,15),1))"))
}

func TestFnWeekdayDefaultReturnType(t *testing.T) {
	// 2024-03-15 is a Friday: returnType 1 numbers Sunday=1..Saturday=7.
	assert.Equal(t, Num(6), evalFormula(t, "WEEKDAY(DATE(2024,3,15))"))
}

func TestFnWeekdayReturnType2And3(t *testing.T) {
	assert.Equal(t, Num(5), evalFormula(t, "WEEKDAY(DATE(2024,3,15),2)"))
	assert.Equal(t, Num(4), evalFormula(t, "WEEKDAY(DATE(2024,3,15),3)"))
}

func TestFnWeekdayUnsupportedReturnTypeIsNumError(t *testing.T) {
	result := evalFormula(t, "WEEKDAY(DATE(2024,3,15),9)")
	assert.True(t, result.IsError())
	assert.Equal(t, ErrNum, result.ErrCode)
}
