package gridcalc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnNameNumberRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		num  int
	}{
		{"A", 1},
		{"Z", 26},
		{"AA", 27},
		{"AZ", 52},
		{"BA", 53},
		{"XFD", MaxColumns},
	}
	for _, c := range cases {
		got, err := ColumnNumberToName(c.num)
		require.NoError(t, err)
		assert.Equal(t, c.name, got)

		num, err := ColumnNameToNumber(c.name)
		require.NoError(t, err)
		assert.Equal(t, c.num, num)

		num, err = ColumnNameToNumber(c.name[:1] + lowerRest(c.name))
		require.NoError(t, err)
		assert.Equal(t, c.num, num)
	}
}

func lowerRest(s string) string {
	if len(s) <= 1 {
		return ""
	}
	out := []byte(s[1:])
	for i := range out {
		out[i] += 'a' - 'A'
	}
	return string(out)
}

func TestColumnNameNumberBijection(t *testing.T) {
	for _, col := range []int{1, 2, 25, 26, 27, 700, 16384} {
		name, err := ColumnNumberToName(col)
		require.NoError(t, err)
		back, err := ColumnNameToNumber(name)
		require.NoError(t, err)
		assert.Equal(t, col, back, "round trip for column %d via %q", col, name)
	}
}

func TestColumnNumberToNameOutOfRange(t *testing.T) {
	_, err := ColumnNumberToName(0)
	assert.Error(t, err)
	_, err = ColumnNumberToName(MaxColumns + 1)
	assert.Error(t, err)
}

func TestColumnNameToNumberInvalid(t *testing.T) {
	_, err := ColumnNameToNumber("")
	assert.Error(t, err)
	_, err = ColumnNameToNumber("1A")
	assert.Error(t, err)
	_, err = ColumnNameToNumber("ZZZZ")
	assert.Error(t, err)
}

func TestParseA1Ref(t *testing.T) {
	ref, err := ParseA1Ref("$A$1")
	require.NoError(t, err)
	assert.Equal(t, CellRef{Row: 1, Col: 1, AbsRow: true, AbsCol: true}, ref)

	ref, err = ParseA1Ref("B12")
	require.NoError(t, err)
	assert.Equal(t, CellRef{Row: 12, Col: 2}, ref)

	ref, err = ParseA1Ref("AA7")
	require.NoError(t, err)
	assert.Equal(t, 27, ref.Col)
	assert.Equal(t, 7, ref.Row)

	_, err = ParseA1Ref("A")
	assert.Error(t, err)
	_, err = ParseA1Ref("1")
	assert.Error(t, err)
	_, err = ParseA1Ref("A1B")
	assert.Error(t, err)
}

func TestFormatA1RefRoundTrip(t *testing.T) {
	in := CellRef{Row: 5, Col: 28, AbsRow: true, AbsCol: false}
	text := FormatA1Ref(in)
	out, err := ParseA1Ref(text)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestParseR1C1Ref(t *testing.T) {
	ref, err := ParseR1C1Ref("R5C3", 10, 10)
	require.NoError(t, err)
	assert.Equal(t, CellRef{Row: 5, Col: 3, AbsRow: true, AbsCol: true}, ref)

	ref, err = ParseR1C1Ref("R[1]C[-2]", 10, 10)
	require.NoError(t, err)
	assert.Equal(t, 11, ref.Row)
	assert.Equal(t, 8, ref.Col)
	assert.False(t, ref.AbsRow)
	assert.False(t, ref.AbsCol)

	ref, err = ParseR1C1Ref("RC", 4, 6)
	require.NoError(t, err)
	assert.Equal(t, 4, ref.Row)
	assert.Equal(t, 6, ref.Col)

	_, err = ParseR1C1Ref("R5", 1, 1)
	assert.Error(t, err)
	_, err = ParseR1C1Ref("R5C3X", 1, 1)
	assert.Error(t, err)
}

func TestValidSheetName(t *testing.T) {
	assert.True(t, ValidSheetName("Sheet1"))
	assert.False(t, ValidSheetName(""))
	assert.False(t, ValidSheetName("a/b"))
	assert.False(t, ValidSheetName("thisnameiswaytoolongforasheetnametobevalidatall"))
}

func TestQuoteUnquoteSheetName(t *testing.T) {
	assert.Equal(t, "Sheet1", QuoteSheetName("Sheet1"))
	assert.Equal(t, "'My Sheet'", QuoteSheetName("My Sheet"))
	assert.Equal(t, "'it''s here'", QuoteSheetName("it's here"))
	assert.Equal(t, "it's here", UnquoteSheetName("it''s here"))
}

func TestValidDefinedName(t *testing.T) {
	assert.True(t, ValidDefinedName("MyRange"))
	assert.True(t, ValidDefinedName("_private"))
	assert.False(t, ValidDefinedName("1Range"))
	assert.False(t, ValidDefinedName("TRUE"))
	assert.False(t, ValidDefinedName("A1"))
	assert.False(t, ValidDefinedName("R"))
	assert.False(t, ValidDefinedName(""))
}
