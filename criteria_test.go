package gridcalc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCriteriaNumberIsExactEquality(t *testing.T) {
	c := ParseCriteria(Num(5))
	assert.Equal(t, CritEq, c.Op)
	assert.True(t, c.HasNum)
	assert.True(t, c.Match(Num(5)))
	assert.False(t, c.Match(Num(6)))
}

func TestParseCriteriaComparisonOperators(t *testing.T) {
	cases := []struct {
		text  string
		value float64
		want  bool
	}{
		{">10", 11, true},
		{">10", 10, false},
		{"<10", 9, true},
		{">=10", 10, true},
		{"<=10", 10, true},
		{"<>10", 11, true},
		{"<>10", 10, false},
	}
	for _, c := range cases {
		crit := ParseCriteria(Txt(c.text))
		assert.Equal(t, c.want, crit.Match(Num(c.value)), "criteria %q against %v", c.text, c.value)
	}
}

func TestParseCriteriaNonNumericComparandIsNotEqualOnly(t *testing.T) {
	c := ParseCriteria(Txt(">10"))
	assert.False(t, c.Match(Txt("hello")))
	c2 := ParseCriteria(Txt("<>10"))
	assert.True(t, c2.Match(Txt("hello")))
}

func TestParseCriteriaGlobPatternCaseInsensitive(t *testing.T) {
	c := ParseCriteria(Txt("appl*"))
	assert.Equal(t, CritGlob, c.Op)
	assert.True(t, c.Match(Txt("Apple")))
	assert.False(t, c.Match(Txt("banana")))
}

func TestParseCriteriaGlobSingleWildcard(t *testing.T) {
	c := ParseCriteria(Txt("a?ple"))
	assert.True(t, c.Match(Txt("apple")))
	assert.False(t, c.Match(Txt("appple")))
}

func TestParseCriteriaGlobEscapedWildcard(t *testing.T) {
	c := ParseCriteria(Txt("a~*b"))
	assert.True(t, c.Match(Txt("a*b")))
	assert.False(t, c.Match(Txt("axb")))
}

func TestParseCriteriaEmptyIsZeroEquality(t *testing.T) {
	c := ParseCriteria(Empty())
	assert.True(t, c.Match(Num(0)))
	assert.False(t, c.Match(Num(1)))
}

func TestParseCriteriaBooleanIsNumericEquality(t *testing.T) {
	c := ParseCriteria(Boolean(true))
	assert.True(t, c.Match(Num(1)))
	assert.True(t, c.Match(Boolean(true)))
	assert.False(t, c.Match(Num(0)))
}

func TestGlobMatchNestedStars(t *testing.T) {
	assert.True(t, globMatch("*LLO", "HELLO"))
	assert.True(t, globMatch("HE*O", "HELLO"))
	assert.False(t, globMatch("HE*X", "HELLO"))
}

func TestRunAggregationRowScanSum(t *testing.T) {
	criteriaRanges := [][]CalcResult{{Txt("a"), Txt("b"), Txt("a")}}
	criteria := []Criteria{ParseCriteria(Txt("a"))}
	valueRange := []CalcResult{Num(1), Num(2), Num(3)}
	result := runAggregation(nil, AggSum, criteriaRanges, criteria, valueRange)
	assert.Equal(t, Num(4), result)
}

func TestRunAggregationAverageOfNoMatchesIsDiv0(t *testing.T) {
	criteriaRanges := [][]CalcResult{{Txt("a")}}
	criteria := []Criteria{ParseCriteria(Txt("z"))}
	valueRange := []CalcResult{Num(1)}
	result := runAggregation(nil, AggAverage, criteriaRanges, criteria, valueRange)
	assert.True(t, result.IsError())
	assert.Equal(t, ErrDiv0, result.ErrCode)
}

func TestRunAggregationMaxMinIgnoreNonNumeric(t *testing.T) {
	criteriaRanges := [][]CalcResult{{Txt("a"), Txt("a"), Txt("a")}}
	criteria := []Criteria{ParseCriteria(Txt("a"))}
	valueRange := []CalcResult{Num(5), Txt("skip"), Num(9)}
	assert.Equal(t, Num(9), runAggregation(nil, AggMax, criteriaRanges, criteria, valueRange))
	assert.Equal(t, Num(5), runAggregation(nil, AggMin, criteriaRanges, criteria, valueRange))
}

func TestCriteriaAccelerableAllowsNumericEqualityAndGlob(t *testing.T) {
	criteria := []Criteria{
		ParseCriteria(Num(5)),
		ParseCriteria(Txt(">10")),
		ParseCriteria(Txt("appl*")),
	}
	assert.True(t, criteriaAccelerable(criteria))
}

func TestCriteriaAccelerableRejectsTextualInequality(t *testing.T) {
	criteria := []Criteria{ParseCriteria(Txt(">apple"))}
	assert.False(t, criteriaAccelerable(criteria))
}

// stubBackend records whether it was consulted, to prove runAggregation
// skips the installed backend entirely for an unaccelerable criterion
// rather than calling it and discarding a wrong result.
type stubBackend struct{ called bool }

func (s *stubBackend) Aggregate(op AggOp, criteriaRanges [][]CalcResult, criteria []Criteria, valueRange []CalcResult) (CalcResult, error) {
	s.called = true
	return Num(-1), nil
}

func TestRunAggregationSkipsBackendForTextualInequality(t *testing.T) {
	wb := NewWorkbook()
	backend := &stubBackend{}
	wb.mu.Lock()
	wb.aggBackend = backend
	wb.mu.Unlock()

	n := duckdbAccelerationThreshold
	criteriaCol := make([]CalcResult, n)
	valueCol := make([]CalcResult, n)
	for i := range criteriaCol {
		criteriaCol[i] = Txt("apple")
		valueCol[i] = Num(1)
	}
	criteria := []Criteria{ParseCriteria(Txt(">apple"))}
	result := runAggregation(wb, AggSum, [][]CalcResult{criteriaCol}, criteria, valueCol)
	assert.False(t, backend.called)
	assert.Equal(t, Num(0), result)
}
