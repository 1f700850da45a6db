package gridcalc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalcResultOrderingLaw(t *testing.T) {
	// spec.md §3/§8: Number < String < Bool < Empty < Error < Range,
	// and the relation must be total (every pair comparable, never both
	// a<b and b<a).
	values := []CalcResult{
		Num(1),
		Txt("a"),
		Boolean(false),
		Empty(),
		Err(ErrValue, "Sheet1!A1", "boom"),
	}
	for i := range values {
		for j := range values {
			if i == j {
				assert.Equal(t, 0, values[i].Compare(values[j]))
				continue
			}
			a := values[i].Compare(values[j])
			b := values[j].Compare(values[i])
			if i < j {
				assert.Negative(t, a)
				assert.Positive(t, b)
			}
		}
	}
}

func TestCalcResultCompareNumberULP(t *testing.T) {
	assert.Equal(t, 0, Num(1.0).Compare(Num(1.0+1e-16)))
	assert.Negative(t, Num(1.0).Compare(Num(2.0)))
	assert.Positive(t, Num(2.0).Compare(Num(1.0)))
}

func TestCalcResultCompareStringCaseInsensitive(t *testing.T) {
	assert.Equal(t, 0, Txt("Hello").Compare(Txt("HELLO")))
	assert.Negative(t, Txt("apple").Compare(Txt("banana")))
}

func TestCalcResultCompareBool(t *testing.T) {
	assert.Negative(t, Boolean(false).Compare(Boolean(true)))
	assert.Positive(t, Boolean(true).Compare(Boolean(false)))
}

func TestCalcResultIsError(t *testing.T) {
	assert.True(t, Err(ErrDiv0, "Sheet1!A1", "div by zero").IsError())
	assert.False(t, Num(0).IsError())
	assert.False(t, Empty().IsError())
}

func TestErrorCodeString(t *testing.T) {
	assert.Equal(t, "#REF!", ErrRef.String())
	assert.Equal(t, "#VALUE!", ErrValue.String())
	assert.Equal(t, "#DIV/0!", ErrDiv0.String())
	assert.Equal(t, "#NAME?", ErrName.String())
	assert.Equal(t, "#N/A", ErrNA.String())
	assert.Equal(t, "#CIRCULAR!", ErrCircular.String())
}

func TestCalcResultCompareRangeKind(t *testing.T) {
	a := CalcResult{Kind: KindRange, RangeSheet: "Sheet1", RangeLeft: CellCoord{Row: 1, Col: 1}, RangeRight: CellCoord{Row: 2, Col: 2}}
	b := CalcResult{Kind: KindRange, RangeSheet: "Sheet1", RangeLeft: CellCoord{Row: 1, Col: 1}, RangeRight: CellCoord{Row: 3, Col: 2}}
	assert.Equal(t, 0, a.Compare(a))
	assert.Negative(t, a.Compare(b))
	assert.True(t, Err(ErrValue, "", "").Compare(a) < 0, "errors sort before ranges")
}
