package duckdbagg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridcalc/gridcalc"
)

func TestNewEngineOpensInMemoryDatabase(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)
	defer engine.Close()
	assert.NotNil(t, engine)
}

func TestEngineAggregateSum(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)
	defer engine.Close()

	criteriaRanges := [][]gridcalc.CalcResult{
		{gridcalc.Txt("apple"), gridcalc.Txt("banana"), gridcalc.Txt("apple")},
	}
	criteria := []gridcalc.Criteria{gridcalc.ParseCriteria(gridcalc.Txt("apple"))}
	valueRange := []gridcalc.CalcResult{gridcalc.Num(10), gridcalc.Num(20), gridcalc.Num(5)}

	result, err := engine.Aggregate(gridcalc.AggSum, criteriaRanges, criteria, valueRange)
	require.NoError(t, err)
	assert.Equal(t, gridcalc.Num(15), result)
}

func TestEngineAggregateCount(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)
	defer engine.Close()

	criteriaRanges := [][]gridcalc.CalcResult{
		{gridcalc.Num(1), gridcalc.Num(2), gridcalc.Num(3)},
	}
	criteria := []gridcalc.Criteria{gridcalc.ParseCriteria(gridcalc.Txt(">1"))}
	valueRange := []gridcalc.CalcResult{gridcalc.Num(1), gridcalc.Num(2), gridcalc.Num(3)}

	result, err := engine.Aggregate(gridcalc.AggCount, criteriaRanges, criteria, valueRange)
	require.NoError(t, err)
	assert.Equal(t, gridcalc.Num(2), result)
}

func TestEngineAggregateAverageNoMatchesReturnsZero(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)
	defer engine.Close()

	criteriaRanges := [][]gridcalc.CalcResult{{gridcalc.Txt("x")}}
	criteria := []gridcalc.Criteria{gridcalc.ParseCriteria(gridcalc.Txt("z"))}
	valueRange := []gridcalc.CalcResult{gridcalc.Num(5)}

	result, err := engine.Aggregate(gridcalc.AggAverage, criteriaRanges, criteria, valueRange)
	require.NoError(t, err)
	assert.Equal(t, gridcalc.Num(0), result)
}

func TestEngineAggregateMaxMin(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)
	defer engine.Close()

	criteriaRanges := [][]gridcalc.CalcResult{
		{gridcalc.Txt("a"), gridcalc.Txt("a"), gridcalc.Txt("a")},
	}
	criteria := []gridcalc.Criteria{gridcalc.ParseCriteria(gridcalc.Txt("a"))}
	valueRange := []gridcalc.CalcResult{gridcalc.Num(5), gridcalc.Num(9), gridcalc.Num(2)}

	maxResult, err := engine.Aggregate(gridcalc.AggMax, criteriaRanges, criteria, valueRange)
	require.NoError(t, err)
	assert.Equal(t, gridcalc.Num(9), maxResult)

	minResult, err := engine.Aggregate(gridcalc.AggMin, criteriaRanges, criteria, valueRange)
	require.NoError(t, err)
	assert.Equal(t, gridcalc.Num(2), minResult)
}

func TestCriteriaSQLGlobPatternTranslatesToLike(t *testing.T) {
	c := gridcalc.ParseCriteria(gridcalc.Txt("appl*"))
	sql := criteriaSQL(0, c)
	assert.Contains(t, sql, "LIKE")
	assert.Contains(t, sql, "%")
}

func TestCriteriaSQLNumericComparison(t *testing.T) {
	c := gridcalc.ParseCriteria(gridcalc.Txt(">10"))
	sql := criteriaSQL(0, c)
	assert.Equal(t, "c0_num > 10", sql)
}

func TestCellSQLValuesNumberAndString(t *testing.T) {
	num, txt := cellSQLValues(gridcalc.Num(5))
	assert.True(t, num.Valid)
	assert.False(t, txt.Valid)

	num2, txt2 := cellSQLValues(gridcalc.Txt("hello"))
	assert.False(t, num2.Valid)
	assert.True(t, txt2.Valid)
	assert.Equal(t, "HELLO", txt2.String)
}
